package testdata

// GeneralSettings are the values of the General settings section. Fields
// marked pro only exist on the pro tier.
type GeneralSettings struct {
	SettingTitle            string
	AdminAreaAccess         bool
	VendorStoreURL          string
	SetupWizardMessage      string
	SellingProductTypes     string // pro
	StoreTermsAndConditions bool
	StoreProductPerPage     string
	EnableTermsOnSignup     bool   // pro
	StoreCategory           string // pro
	ShowVendorInfo          bool
	EnableMoreProductsTab   bool
	SaveSuccessMessage      string
}

type Commission struct {
	Type       string
	Percentage string
}

type SellingSettings struct {
	SettingTitle            string
	Commission              Commission
	AdditionalFee           string
	ShippingFeeRecipient    string
	ProductTaxFeeRecipient  string
	ShippingTaxFeeRecipient string
	EnableSelling           bool
	OnePageProductCreate    bool
	OrderStatusChange       bool
	SelectAnyCategory       bool
	NewProductStatus        string // pro
	HideAddToCartButton     bool
	HideProductPrice        bool
	SaveSuccessMessage      string
}

type WithdrawCharges struct {
	Paypal string
	Bank   string
	Skrill string // pro
	Custom string // pro
}

// WithdrawSchedule holds the pro-only scheduled disbursement choices.
type WithdrawSchedule struct {
	Quarterly      bool
	Monthly        bool
	Biweekly       bool
	Weekly         bool
	QuarterlyMonth string
	QuarterlyWeek  string
	QuarterlyDay   string
	MonthlyWeek    string
	MonthlyDay     string
	BiweeklyWeek   string
	BiweeklyDay    string
	WeeklyDay      string
}

type WithdrawSettings struct {
	SettingTitle          string
	Paypal                bool
	Bank                  bool
	Skrill                bool   // pro
	Custom                bool   // pro
	CustomMethodName      string // pro
	CustomMethodType      string // pro
	Charges               WithdrawCharges
	MinimumWithdrawAmount string
	OrderStatusCompleted  bool
	OrderStatusProcessing bool
	WithdrawThreshold     string // pro
	ManualDisbursement    bool   // pro
	ScheduledDisbursement bool   // pro
	Schedule              WithdrawSchedule
	SaveSuccessMessage    string
}

type ReverseWithdrawSettings struct {
	SettingTitle       string
	Enabled            bool
	GatewayCOD         bool
	BillingType        string
	BalanceThreshold   string
	GracePeriod        string
	DisableAddToCart   bool
	HideWithdrawMenu   bool
	MakeVendorInactive bool
	DisplayNotice      bool
	SendAnnouncement   bool // pro
	SaveSuccessMessage string
}

// PageSettings select pages by their visible title.
type PageSettings struct {
	SettingTitle       string
	Dashboard          string
	MyOrders           string
	StoreListing       string
	TermsAndConditions string
	SaveSuccessMessage string
}

type AppearanceSettings struct {
	SettingTitle        string
	ShowMap             bool
	MapAPISource        string
	GoogleMapAPIKey     string
	ContactSeller       bool
	StoreHeaderTemplate string
	StoreBannerWidth    string // pro
	StoreBannerHeight   string // pro
	StoreOpenClose      bool   // pro
	SaveSuccessMessage  string
}

type PrivacyPolicySettings struct {
	SettingTitle       string
	Enable             bool
	PrivacyPage        string
	Content            string
	SaveSuccessMessage string
}

// StoreSupportSettings belong to the store_support module.
type StoreSupportSettings struct {
	SettingTitle          string
	DisplayOnOrderDetails bool
	ProductPagePlacement  string
	SupportButtonLabel    string
	SaveSuccessMessage    string
}

// SearchQuery is a settings search and the field label it must reveal.
type SearchQuery struct {
	Query         string
	ExpectedLabel string
}
