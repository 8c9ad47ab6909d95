package selector

import (
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/testdata"
)

// Settings is the chrome around every settings section.
var Settings = struct {
	Header           locator.Locator
	Menu             locator.Locator
	Title            locator.Locator
	Form             locator.Locator
	Save             locator.Locator
	Notice           locator.Locator
	Search           locator.Locator
	SearchBox        locator.Locator
	SearchClear      locator.Locator
	SearchResults    locator.Locator
	BackToTop        locator.Locator
	BackToTopVisible locator.Locator
	Fields           locator.Locator
	MenuItem         locator.Param
	SearchResult     locator.Param
	Field            locator.Param
	FieldLabel       locator.Param
}{
	Header:           locator.NewText(locator.Admin, "settings header", "h1.settings-header", exact("Settings")),
	Menu:             locator.NewCSS(locator.Admin, "settings menu", "nav.dokan-settings-menu"),
	Title:            locator.NewCSS(locator.Admin, "settings title", "h2.settings-title"),
	Form:             locator.NewCSS(locator.Admin, "settings form", "form#settings-form"),
	Save:             locator.NewCSS(locator.Admin, "save changes", "button#submit"),
	Notice:           locator.NewCSS(locator.Admin, "settings notice", ".dokan-update-setting-top .notice-message"),
	Search:           locator.NewCSS(locator.Admin, "settings search", "#settings-search"),
	SearchBox:        locator.NewCSS(locator.Admin, "search box", "#settings-search .search-box"),
	SearchClear:      locator.NewCSS(locator.Admin, "clear search", "#settings-search .search-close"),
	SearchResults:    locator.NewCSS(locator.Admin, "search results", "#settings-search .search-results a.search-result"),
	BackToTop:        locator.NewCSS(locator.Admin, "back to top", "a.back-to-top"),
	BackToTopVisible: locator.NewCSS(locator.Admin, "back to top shown", "a.back-to-top.visible"),
	Fields:           locator.NewCSS(locator.Admin, "settings fields", "form#settings-form div.dokan-settings-field"),
	MenuItem: func(section string) locator.Locator {
		return locator.NewCSS(locator.Admin, "menu "+section, "nav.dokan-settings-menu a.menu-item"+attr("data-section", section))
	},
	SearchResult: func(label string) locator.Locator {
		return locator.NewText(locator.Admin, "search result "+label, "#settings-search .search-results a.search-result", prefix(label))
	},
	Field: func(key string) locator.Locator {
		return locator.NewCSS(locator.Admin, "field "+key, settingsField(key))
	},
	FieldLabel: func(label string) locator.Locator {
		return locator.NewText(locator.Admin, "field label "+label, "div.dokan-settings-field label.field-label", exact(label))
	},
}

// General section fields.
var General = struct {
	AdminAreaAccess         locator.Locator
	VendorStoreURL          locator.Locator
	SetupWizardMessage      locator.Locator
	SellingProductTypes     Radio
	StoreTermsAndConditions locator.Locator
	StoreProductPerPage     locator.Locator
	EnableTermsOnSignup     locator.Locator
	StoreCategory           Radio
	ShowVendorInfo          locator.Locator
	EnableMoreProductsTab   locator.Locator
}{
	AdminAreaAccess:         switchField("admin area access", "admin_access"),
	VendorStoreURL:          textField("vendor store url", "custom_store_url"),
	SetupWizardMessage:      textareaField("setup wizard message", "setup_wizard_message"),
	SellingProductTypes:     proRadio(radioField("selling product types", "selling_product_types")),
	StoreTermsAndConditions: switchField("store terms and conditions", "seller_enable_terms_and_conditions"),
	StoreProductPerPage:     textField("store products per page", "store_products_per_page"),
	EnableTermsOnSignup:     switchField("terms on registration", "enable_tc_on_reg").ProOnly(),
	StoreCategory:           proRadio(radioField("store category", "store_category_type")),
	ShowVendorInfo:          switchField("show vendor info", "show_vendor_info"),
	EnableMoreProductsTab:   switchField("more products tab", "enabled_more_products_tab"),
}

// Selling section fields.
var Selling = struct {
	CommissionType          locator.Locator
	AdminCommission         locator.Locator
	AdditionalFee           locator.Locator
	ShippingFeeRecipient    Radio
	ProductTaxFeeRecipient  Radio
	ShippingTaxFeeRecipient Radio
	EnableSelling           locator.Locator
	OnePageProductCreate    locator.Locator
	OrderStatusChange       locator.Locator
	SelectAnyCategory       locator.Locator
	NewProductStatus        Radio
	HideAddToCartButton     locator.Locator
	HideProductPrice        locator.Locator
}{
	CommissionType:          selectField("commission type", "commission_type"),
	AdminCommission:         textField("admin commission", "admin_percentage"),
	AdditionalFee:           textField("additional fee", "additional_fee"),
	ShippingFeeRecipient:    radioField("shipping fee recipient", "shipping_fee_recipient"),
	ProductTaxFeeRecipient:  radioField("tax fee recipient", "tax_fee_recipient"),
	ShippingTaxFeeRecipient: radioField("shipping tax fee recipient", "shipping_tax_fee_recipient"),
	EnableSelling:           switchField("enable selling", "new_seller_enable_selling"),
	OnePageProductCreate:    switchField("one page product creation", "one_step_product"),
	OrderStatusChange:       switchField("order status change", "order_status_change"),
	SelectAnyCategory:       switchField("select any category", "dokan_any_category_selection"),
	NewProductStatus:        proRadio(radioField("new product status", "product_status")),
	HideAddToCartButton:     switchField("hide add to cart", "catalog_mode_hide_add_to_cart_button"),
	HideProductPrice:        switchField("hide product price", "catalog_mode_hide_product_price"),
}

// Withdraw section fields.
var Withdraw = struct {
	Paypal                locator.Locator
	Bank                  locator.Locator
	Skrill                locator.Locator
	Custom                locator.Locator
	CustomMethodName      locator.Locator
	CustomMethodType      locator.Locator
	PaypalCharge          locator.Locator
	BankCharge            locator.Locator
	SkrillCharge          locator.Locator
	CustomCharge          locator.Locator
	MinimumWithdrawAmount locator.Locator
	OrderStatusCompleted  locator.Locator
	OrderStatusProcessing locator.Locator
	WithdrawThreshold     locator.Locator
	ManualDisbursement    locator.Locator
	ScheduledDisbursement locator.Locator
	Quarterly             locator.Locator
	Monthly               locator.Locator
	Biweekly              locator.Locator
	Weekly                locator.Locator
	QuarterlyMonth        locator.Locator
	QuarterlyWeek         locator.Locator
	QuarterlyDay          locator.Locator
	MonthlyWeek           locator.Locator
	MonthlyDay            locator.Locator
	BiweeklyWeek          locator.Locator
	BiweeklyDay           locator.Locator
	WeeklyDay             locator.Locator
}{
	Paypal:                switchField("withdraw paypal", "withdraw_methods.paypal"),
	Bank:                  switchField("withdraw bank", "withdraw_methods.bank"),
	Skrill:                switchField("withdraw skrill", "withdraw_methods.skrill").ProOnly(),
	Custom:                switchField("withdraw custom", "withdraw_methods.dokan_custom").ProOnly(),
	CustomMethodName:      textField("custom method name", "withdraw_method_name").ProOnly(),
	CustomMethodType:      textField("custom method type", "withdraw_method_type").ProOnly(),
	PaypalCharge:          textField("paypal charge", "withdraw_charges.paypal"),
	BankCharge:            textField("bank charge", "withdraw_charges.bank"),
	SkrillCharge:          textField("skrill charge", "withdraw_charges.skrill").ProOnly(),
	CustomCharge:          textField("custom charge", "withdraw_charges.dokan_custom").ProOnly(),
	MinimumWithdrawAmount: textField("minimum withdraw amount", "withdraw_limit"),
	OrderStatusCompleted:  switchField("withdraw completed orders", "withdraw_order_status.wc-completed"),
	OrderStatusProcessing: switchField("withdraw processing orders", "withdraw_order_status.wc-processing"),
	WithdrawThreshold:     textField("withdraw threshold", "withdraw_threshold").ProOnly(),
	ManualDisbursement:    switchField("manual disbursement", "disbursement.manual").ProOnly(),
	ScheduledDisbursement: switchField("scheduled disbursement", "disbursement.schedule").ProOnly(),
	Quarterly:             switchField("quarterly schedule", "disbursement_schedule.quarterly").ProOnly(),
	Monthly:               switchField("monthly schedule", "disbursement_schedule.monthly").ProOnly(),
	Biweekly:              switchField("biweekly schedule", "disbursement_schedule.biweekly").ProOnly(),
	Weekly:                switchField("weekly schedule", "disbursement_schedule.weekly").ProOnly(),
	QuarterlyMonth:        selectField("quarterly month", "quarterly_schedule.month").ProOnly(),
	QuarterlyWeek:         selectField("quarterly week", "quarterly_schedule.week").ProOnly(),
	QuarterlyDay:          selectField("quarterly day", "quarterly_schedule.day").ProOnly(),
	MonthlyWeek:           selectField("monthly week", "monthly_schedule.week").ProOnly(),
	MonthlyDay:            selectField("monthly day", "monthly_schedule.day").ProOnly(),
	BiweeklyWeek:          selectField("biweekly week", "biweekly_schedule.week").ProOnly(),
	BiweeklyDay:           selectField("biweekly day", "biweekly_schedule.day").ProOnly(),
	WeeklyDay:             selectField("weekly day", "weekly_schedule").ProOnly(),
}

// ReverseWithdraw section fields.
var ReverseWithdraw = struct {
	Enabled            locator.Locator
	GatewayCOD         locator.Locator
	BillingType        locator.Locator
	BalanceThreshold   locator.Locator
	GracePeriod        locator.Locator
	DisableAddToCart   locator.Locator
	HideWithdrawMenu   locator.Locator
	MakeVendorInactive locator.Locator
	DisplayNotice      locator.Locator
	SendAnnouncement   locator.Locator
}{
	Enabled:            switchField("reverse withdrawal", "enabled"),
	GatewayCOD:         switchField("reverse withdrawal cod", "payment_gateways.cod"),
	BillingType:        selectField("billing type", "billing_type"),
	BalanceThreshold:   textField("reverse balance limit", "reverse_balance_threshold"),
	GracePeriod:        textField("grace period", "due_period"),
	DisableAddToCart:   switchField("failed catalog mode", "failed_actions.enable_catalog_mode"),
	HideWithdrawMenu:   switchField("failed hide withdraw menu", "failed_actions.hide_withdraw_menu"),
	MakeVendorInactive: switchField("failed inactive vendor", "failed_actions.status_inactive"),
	DisplayNotice:      switchField("display notice", "display_notice"),
	SendAnnouncement:   switchField("send announcement", "send_announcement").ProOnly(),
}

// Pages section fields. Options are selected by page title.
var Pages = struct {
	Dashboard          locator.Locator
	MyOrders           locator.Locator
	StoreListing       locator.Locator
	TermsAndConditions locator.Locator
}{
	Dashboard:          selectField("dashboard page", "dashboard"),
	MyOrders:           selectField("my orders page", "my_orders"),
	StoreListing:       selectField("store listing page", "store_listing"),
	TermsAndConditions: selectField("terms page", "reg_tc_page"),
}

// Appearance section fields.
var Appearance = struct {
	ShowMap             locator.Locator
	MapAPISource        Radio
	GoogleMapAPIKey     locator.Locator
	ContactSeller       locator.Locator
	StoreHeaderTemplate Radio
	StoreBannerWidth    locator.Locator
	StoreBannerHeight   locator.Locator
	StoreOpenClose      locator.Locator
}{
	ShowMap:             switchField("store map", "store_map"),
	MapAPISource:        radioField("map api source", "map_api_source"),
	GoogleMapAPIKey:     textField("google map api key", "gmap_api_key"),
	ContactSeller:       switchField("contact seller", "contact_seller"),
	StoreHeaderTemplate: radioField("store header template", "store_header_template"),
	StoreBannerWidth:    textField("store banner width", "store_banner_width").ProOnly(),
	StoreBannerHeight:   textField("store banner height", "store_banner_height").ProOnly(),
	StoreOpenClose:      switchField("store open close", "store_open_close").ProOnly(),
}

// PrivacyPolicy section fields.
var PrivacyPolicy = struct {
	Enable      locator.Locator
	PrivacyPage locator.Locator
	Content     locator.Locator
}{
	Enable:      switchField("enable privacy", "enable_privacy"),
	PrivacyPage: selectField("privacy page", "privacy_page"),
	Content:     textareaField("privacy policy content", "privacy_policy"),
}

// StoreSupport section fields. The whole section belongs to its module.
var StoreSupport = struct {
	MenuItem              locator.Locator
	DisplayOnOrderDetails locator.Locator
	ProductPagePlacement  locator.Locator
	SupportButtonLabel    locator.Locator
}{
	MenuItem:              Settings.MenuItem("store_support").RequiresModule(testdata.ModuleStoreSupport),
	DisplayOnOrderDetails: switchField("support on order details", "enabled_for_customer_order").RequiresModule(testdata.ModuleStoreSupport),
	ProductPagePlacement:  selectField("support product page", "store_support_product_page").RequiresModule(testdata.ModuleStoreSupport),
	SupportButtonLabel:    textField("support button label", "support_button_label").RequiresModule(testdata.ModuleStoreSupport),
}
