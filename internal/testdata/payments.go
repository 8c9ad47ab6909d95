package testdata

// Currency is a store currency as the general WooCommerce settings list it.
type Currency struct {
	Code  string
	Label string
}

var (
	USD = Currency{Code: "USD", Label: "United States (US) dollar ($)"}
	EUR = Currency{Code: "EUR", Label: "Euro (€)"}
	GBP = Currency{Code: "GBP", Label: "Pound sterling (£)"}
	INR = Currency{Code: "INR", Label: "Indian rupee (₹)"}
)

// Currencies lists every currency the stand-in store supports.
var Currencies = []Currency{USD, EUR, GBP, INR}

// PaymentSettings is the admin checkout configuration.
type PaymentSettings struct {
	Currency           Currency
	EnabledGateways    []string
	SaveSuccessMessage string
}

// GatewaySettings configure a single module gateway.
type GatewaySettings struct {
	Module             string
	Title              string
	Description        string
	TestMode           bool
	PublishableKey     string
	SecretKey          string
	SaveSuccessMessage string
}

// GatewayID returns the checkout gateway the module provides.
func (g GatewaySettings) GatewayID() string {
	return PaymentModules[g.Module]
}

type BankAccount struct {
	AccountName   string
	AccountType   string
	AccountNumber string
	RoutingNumber string
	BankName      string
	BankAddress   string
	IBAN          string
	Swift         string
}

// VendorPaymentMethod is a payout method a vendor configures on their
// dashboard. Method is one of paypal, skrill, dokan_custom or bank.
type VendorPaymentMethod struct {
	Method             string
	Email              string
	CustomValue        string
	Bank               BankAccount
	SaveSuccessMessage string
}

// WithdrawRequest is a vendor payout request.
type WithdrawRequest struct {
	Amount         string
	Method         string
	SuccessMessage string
}

// SetupWizard carries the answers given to the marketplace setup wizard.
type SetupWizard struct {
	VendorStoreURL        string
	ShippingFeeRecipient  string
	TaxFeeRecipient       string
	EnableSelling         bool
	CommissionType        string
	CommissionPercentage  string
	OrderStatusChange     bool
	WithdrawPaypal        bool
	WithdrawBank          bool
	WithdrawSkrill        bool
	MinimumWithdrawLimit  string
	OrderStatusCompleted  bool
	OrderStatusProcessing bool
	ReadyMessage          string
}
