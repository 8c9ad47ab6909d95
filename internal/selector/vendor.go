package selector

import "github.com/stolasapp/mercato/internal/locator"

// VendorPayments is the vendor's payment method summary.
var VendorPayments = struct {
	Title   locator.Locator
	Success locator.Locator
	Method  locator.Param
	Status  locator.Param
	Manage  locator.Param
}{
	Title:   locator.NewText(locator.Vendor, "payment title", "h1.entry-title", exact("Payment Method")),
	Success: locator.NewCSS(locator.Vendor, "payment saved", ".dokan-ajax-response .dokan-alert-success"),
	Method: func(method string) locator.Locator {
		return payoutMethod(locator.NewCSS(locator.Vendor, "payment method "+method, ".dokan-payment-method"+attr("data-method", method)), method)
	},
	Status: func(method string) locator.Locator {
		return payoutMethod(locator.NewCSS(locator.Vendor, "payment status "+method, ".dokan-payment-method"+attr("data-method", method)+" .method-status"), method)
	},
	Manage: func(method string) locator.Locator {
		return payoutMethod(locator.NewCSS(locator.Vendor, "manage payment "+method, ".dokan-payment-method"+attr("data-method", method)+" a.manage-payment"), method)
	},
}

// payoutMethod tags the pro-only payout methods.
func payoutMethod(loc locator.Locator, method string) locator.Locator {
	switch method {
	case "skrill", "dokan_custom":
		return loc.ProOnly()
	default:
		return loc
	}
}

// VendorPaymentForm manages a single payout method.
var VendorPaymentForm = struct {
	Form          locator.Locator
	Email         locator.Locator
	CustomValue   locator.Locator
	AccountName   locator.Locator
	AccountType   locator.Locator
	AccountNumber locator.Locator
	RoutingNumber locator.Locator
	BankName      locator.Locator
	BankAddress   locator.Locator
	IBAN          locator.Locator
	Swift         locator.Locator
	Declaration   locator.Locator
	Update        locator.Locator
	Remove        locator.Locator
	Error         locator.Locator
}{
	Form:          locator.NewCSS(locator.Vendor, "payment form", "form#payment-form"),
	Email:         locator.NewCSS(locator.Vendor, "payment email", "form#payment-form #email"),
	CustomValue:   locator.NewCSS(locator.Vendor, "custom payment value", "form#payment-form #value").ProOnly(),
	AccountName:   locator.NewCSS(locator.Vendor, "account holder", "#ac_name"),
	AccountType:   locator.NewCSS(locator.Vendor, "account type", "select#ac_type"),
	AccountNumber: locator.NewCSS(locator.Vendor, "account number", "#ac_number"),
	RoutingNumber: locator.NewCSS(locator.Vendor, "routing number", "#routing_number"),
	BankName:      locator.NewCSS(locator.Vendor, "bank name", "#bank_name"),
	BankAddress:   locator.NewCSS(locator.Vendor, "bank address", "#bank_addr"),
	IBAN:          locator.NewCSS(locator.Vendor, "iban", "#iban"),
	Swift:         locator.NewCSS(locator.Vendor, "swift", "#swift"),
	Declaration:   locator.NewCSS(locator.Vendor, "bank declaration", "#declaration"),
	Update:        locator.NewCSS(locator.Vendor, "update account", `input[name="dokan_update_payment_settings"]`),
	Remove:        locator.NewCSS(locator.Vendor, "remove account", `button.dokan-payment-method-delete[name="dokan_remove_payment"]`),
	Error:         locator.NewCSS(locator.Vendor, "payment error", ".dokan-alert-danger"),
}

// VendorWithdraw is the vendor's withdraw dashboard.
var VendorWithdraw = struct {
	Balance  locator.Locator
	Limit    locator.Locator
	Amount   locator.Locator
	Method   locator.Locator
	Submit   locator.Locator
	Success  locator.Locator
	Error    locator.Locator
	Requests locator.Locator
}{
	Balance:  locator.NewCSS(locator.Vendor, "withdraw balance", "strong.balance-amount"),
	Limit:    locator.NewCSS(locator.Vendor, "withdraw limit", ".dokan-withdraw-limit strong"),
	Amount:   locator.NewCSS(locator.Vendor, "withdraw amount", "#withdraw-amount"),
	Method:   locator.NewCSS(locator.Vendor, "withdraw method", "select#withdraw-method"),
	Submit:   locator.NewCSS(locator.Vendor, "submit withdraw", "#dokan-withdraw-request-submit"),
	Success:  locator.NewCSS(locator.Vendor, "withdraw success", ".dokan-withdraw-content .dokan-alert-success"),
	Error:    locator.NewCSS(locator.Vendor, "withdraw error", ".dokan-withdraw-content .dokan-alert-danger"),
	Requests: locator.NewCSS(locator.Vendor, "withdraw requests", "table.dokan-withdraw-requests tr[data-withdraw]"),
}
