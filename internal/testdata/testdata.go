// Package testdata holds the typed input bundles scenarios feed to page
// objects, the default values every scenario starts from, and generators for
// per-run unique data.
package testdata

// Message texts the marketplace shows after a successful action.
const (
	SettingsSaved       = "Setting has been saved successfully."
	WooCommerceSaved    = "Your settings have been saved."
	VendorPaymentSaved  = "Your information has been saved successfully"
	WithdrawRequested   = "Your request has been received successfully and is under review!"
	MarketplaceReady    = "Your Marketplace is Ready!"
	WithdrawMinimumText = "Withdraw amount must be greater than or equal to"
)

// URL paths of the marketplace, relative to the base URL.
const (
	LoginPath          = "/login"
	LogoutPath         = "/logout"
	AdminPath          = "/admin"
	SettingsPath       = "/admin/settings"
	ModulesPath        = "/admin/modules"
	SetupWizardPath    = "/admin/setup"
	WCGeneralPath      = "/admin/wc-settings/general"
	WCCheckoutPath     = "/admin/wc-settings/checkout"
	DashboardPath      = "/dashboard"
	VendorPaymentPath  = "/dashboard/settings/payment"
	VendorWithdrawPath = "/dashboard/withdraw"
	PrivacyPolicyPath  = "/privacy-policy"
	AjaxPath           = "/wp-admin/admin-ajax.php"
	RESTPrefix         = "/wp-json"
)

// Option names under which settings sections are stored.
const (
	OptionGeneral         = "dokan_general"
	OptionSelling         = "dokan_selling"
	OptionWithdraw        = "dokan_withdraw"
	OptionReverseWithdraw = "dokan_reverse_withdrawal"
	OptionPages           = "dokan_pages"
	OptionAppearance      = "dokan_appearance"
	OptionPrivacy         = "dokan_privacy"
	OptionStoreSupport    = "dokan_store_support_setting"
	OptionWCGeneral       = "woocommerce_general"
)

// GatewayOption is the option holding a checkout gateway's settings.
func GatewayOption(id string) string {
	return "woocommerce_" + id + "_settings"
}

// MetaProfileSettings is the user meta key holding a vendor's store profile,
// including its payment methods.
const MetaProfileSettings = "dokan_profile_settings"

// Module identifiers.
const (
	ModuleMangoPay          = "mangopay"
	ModulePaypalMarketplace = "paypal_marketplace"
	ModuleRazorpay          = "razorpay"
	ModuleStripe            = "stripe"
	ModuleStripeExpress     = "stripe_express"
	ModuleStoreSupport      = "store_support"
)

// Modules lists every module the marketplace knows.
var Modules = []string{
	ModuleMangoPay,
	ModulePaypalMarketplace,
	ModuleRazorpay,
	ModuleStripe,
	ModuleStripeExpress,
	ModuleStoreSupport,
}

// PaymentModules maps payment modules to the checkout gateway they add.
var PaymentModules = map[string]string{
	ModuleMangoPay:          "dokan_mangopay",
	ModulePaypalMarketplace: "dokan_paypal_marketplace",
	ModuleRazorpay:          "dokan_razorpay",
	ModuleStripe:            "dokan-stripe-connect",
	ModuleStripeExpress:     "dokan_stripe_express",
}

// BasicGateways are the checkout gateways available without any module.
var BasicGateways = []string{"bacs", "cheque", "cod"}

// Credentials are a username and password pair.
type Credentials struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}
