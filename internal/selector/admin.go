package selector

import "github.com/stolasapp/mercato/internal/locator"

// Modules is the pro module manager.
var Modules = struct {
	ProNotice  locator.Locator
	Card       locator.Param
	Toggle     locator.Param
	ActiveCard locator.Param
}{
	ProNotice: locator.NewCSS(locator.Admin, "modules pro notice", "p.dokan-pro-notice"),
	Card: func(module string) locator.Locator {
		return locator.NewCSS(locator.Admin, "module "+module, ".module-card"+attr("data-module", module)).ProOnly()
	},
	Toggle: func(module string) locator.Locator {
		return locator.NewCSS(locator.Admin, "module toggle "+module, "label.switch.module-toggle"+attr("data-module", module)).ProOnly()
	},
	ActiveCard: func(module string) locator.Locator {
		return locator.NewCSS(locator.Admin, "active module "+module, ".module-card.active"+attr("data-module", module)).ProOnly()
	},
}

// WCGeneral is the store's general settings form.
var WCGeneral = struct {
	Currency     locator.Locator
	ThousandSep  locator.Locator
	DecimalSep   locator.Locator
	NumDecimals  locator.Locator
	Save         locator.Locator
	SavedMessage locator.Locator
}{
	Currency:     locator.NewCSS(locator.Admin, "currency", "select#woocommerce_currency"),
	ThousandSep:  locator.NewCSS(locator.Admin, "thousand separator", "#woocommerce_price_thousand_sep"),
	DecimalSep:   locator.NewCSS(locator.Admin, "decimal separator", "#woocommerce_price_decimal_sep"),
	NumDecimals:  locator.NewCSS(locator.Admin, "number of decimals", "#woocommerce_price_num_decimals"),
	Save:         locator.NewCSS(locator.Admin, "save woocommerce settings", "form#mainform button.woocommerce-save-button"),
	SavedMessage: locator.NewCSS(locator.Admin, "woocommerce saved", "#message.updated"),
}

// WCCheckout lists the checkout gateways.
var WCCheckout = struct {
	Table        locator.Locator
	Save         locator.Locator
	SavedMessage locator.Locator
	Gateway      locator.Param
	Enable       locator.Param
	Manage       locator.Param
}{
	Table:        locator.NewCSS(locator.Admin, "gateways", "table.wc_gateways"),
	Save:         locator.NewCSS(locator.Admin, "save gateways", "form#mainform button.woocommerce-save-button"),
	SavedMessage: locator.NewCSS(locator.Admin, "gateways saved", "#message.updated"),
	Gateway: func(id string) locator.Locator {
		return locator.NewCSS(locator.Admin, "gateway "+id, "table.wc_gateways tr"+attr("data-gateway_id", id))
	},
	Enable: func(id string) locator.Locator {
		return locator.NewCSS(locator.Admin, "enable gateway "+id, "table.wc_gateways label.switch"+attr("data-gateway", id))
	},
	Manage: func(id string) locator.Locator {
		return locator.NewCSS(locator.Admin, "manage gateway "+id, "table.wc_gateways tr"+attr("data-gateway_id", id)+" a.manage")
	},
}

// WCGateway is a single gateway's settings form. Fields are keyed by gateway
// ID.
var WCGateway = struct {
	Title          locator.Locator
	Save           locator.Locator
	SavedMessage   locator.Locator
	Enabled        locator.Param
	GatewayTitle   locator.Param
	Description    locator.Param
	TestMode       locator.Param
	PublishableKey locator.Param
	SecretKey      locator.Param
}{
	Title:          locator.NewCSS(locator.Admin, "gateway title", "h1.gateway-title"),
	Save:           locator.NewCSS(locator.Admin, "save gateway", "form#mainform button.woocommerce-save-button"),
	SavedMessage:   locator.NewCSS(locator.Admin, "gateway saved", "#message.updated"),
	Enabled:        gatewayInput("enabled", false),
	GatewayTitle:   gatewayInput("title", false),
	Description:    gatewayInput("description", false),
	TestMode:       gatewayInput("testmode", true),
	PublishableKey: gatewayInput("test_publishable_key", true),
	SecretKey:      gatewayInput("test_secret_key", true),
}

func gatewayInput(field string, module bool) locator.Param {
	return func(id string) locator.Locator {
		loc := locator.NewCSS(locator.Admin, id+" "+field, "#woocommerce_"+id+"_"+field)
		if module {
			loc = loc.ProOnly()
		}
		return loc
	}
}

// Wizard is the marketplace setup wizard.
var Wizard = struct {
	Steps                 locator.Locator
	Content               locator.Locator
	LetsGo                locator.Locator
	Continue              locator.Locator
	Skip                  locator.Locator
	VendorStoreURL        locator.Locator
	ShippingFeeRecipient  locator.Locator
	TaxFeeRecipient       locator.Locator
	EnableSelling         locator.Locator
	CommissionType        locator.Locator
	CommissionPercentage  locator.Locator
	OrderStatusChange     locator.Locator
	WithdrawPaypal        locator.Locator
	WithdrawBank          locator.Locator
	WithdrawSkrill        locator.Locator
	MinimumWithdrawLimit  locator.Locator
	OrderStatusCompleted  locator.Locator
	OrderStatusProcessing locator.Locator
	Ready                 locator.Locator
	ActiveStep            locator.Param
	StepContent           locator.Param
}{
	Steps:                 locator.NewCSS(locator.Admin, "wizard steps", "ol.wc-setup-steps"),
	Content:               locator.NewCSS(locator.Admin, "wizard content", ".wc-setup-content"),
	LetsGo:                locator.NewXPath(locator.Admin, "lets go", `//a[contains(@class,"button-next") and normalize-space()="Let's Go!"]`),
	Continue:              locator.NewCSS(locator.Admin, "wizard continue", `.wc-setup-content input[name="save_step"]`),
	Skip:                  locator.NewText(locator.Admin, "wizard skip", ".wc-setup-content a.skip", exact("Skip this step")),
	VendorStoreURL:        locator.NewCSS(locator.Admin, "wizard store url", "#custom_store_url"),
	ShippingFeeRecipient:  locator.NewCSS(locator.Admin, "wizard shipping fee", "select#shipping_fee_recipient"),
	TaxFeeRecipient:       locator.NewCSS(locator.Admin, "wizard tax fee", "select#tax_fee_recipient"),
	EnableSelling:         locator.NewCSS(locator.Admin, "wizard enable selling", "#new_seller_enable_selling"),
	CommissionType:        locator.NewCSS(locator.Admin, "wizard commission type", "select#commission_type"),
	CommissionPercentage:  locator.NewCSS(locator.Admin, "wizard admin commission", "#admin_percentage"),
	OrderStatusChange:     locator.NewCSS(locator.Admin, "wizard order status change", "#order_status_change"),
	WithdrawPaypal:        locator.NewCSS(locator.Admin, "wizard withdraw paypal", "#withdraw_methods_paypal"),
	WithdrawBank:          locator.NewCSS(locator.Admin, "wizard withdraw bank", "#withdraw_methods_bank"),
	WithdrawSkrill:        locator.NewCSS(locator.Admin, "wizard withdraw skrill", "#withdraw_methods_skrill").ProOnly(),
	MinimumWithdrawLimit:  locator.NewCSS(locator.Admin, "wizard withdraw limit", "#withdraw_limit"),
	OrderStatusCompleted:  locator.NewCSS(locator.Admin, "wizard completed orders", "#withdraw_order_status_completed"),
	OrderStatusProcessing: locator.NewCSS(locator.Admin, "wizard processing orders", "#withdraw_order_status_processing"),
	Ready:                 locator.NewCSS(locator.Admin, "wizard ready", ".dokan-setup-done h1"),
	ActiveStep: func(step string) locator.Locator {
		return locator.NewCSS(locator.Admin, "active step "+step, "ol.wc-setup-steps li.active"+attr("data-step", step))
	},
	StepContent: func(step string) locator.Locator {
		return locator.NewCSS(locator.Admin, "step "+step, ".wc-setup-content"+attr("data-step", step))
	},
}
