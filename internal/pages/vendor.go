package pages

import (
	"context"
	"net/http"
	"regexp"

	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/selector"
	"github.com/stolasapp/mercato/internal/testdata"
)

// Payout method identifiers.
const (
	MethodPaypal = "paypal"
	MethodBank   = "bank"
	MethodSkrill = "skrill"
	MethodCustom = "dokan_custom"
)

// vendorPaymentResponse matches both the redirect to the summary and a
// rejected manage form.
var vendorPaymentResponse = regexp.QuoteMeta(testdata.VendorPaymentPath)

// VendorPaymentsPage is the vendor dashboard's payout method settings.
type VendorPaymentsPage struct {
	page *harness.Page
	caps harness.Capabilities
}

func NewVendorPaymentsPage(p *harness.Page, caps harness.Capabilities) *VendorPaymentsPage {
	return &VendorPaymentsPage{page: p, caps: caps}
}

// RenderProperly expects the summary to list each of methods the tier
// offers.
func (v *VendorPaymentsPage) RenderProperly(ctx context.Context, methods ...string) error {
	p := v.page
	if err := p.GoIfNotThere(ctx, testdata.VendorPaymentPath); err != nil {
		return err
	}
	if err := p.ToBeVisible(ctx, selector.VendorPayments.Title); err != nil {
		return err
	}
	for _, method := range methods {
		loc := selector.VendorPayments.Method(method)
		if !v.caps.Allows(loc) {
			continue
		}
		if err := p.ToBeVisible(ctx, loc); err != nil {
			return err
		}
	}
	return nil
}

// Status returns the summary line of a method, "Not configured" when it has
// no account.
func (v *VendorPaymentsPage) Status(ctx context.Context, method string) (string, error) {
	if err := v.page.GoIfNotThere(ctx, testdata.VendorPaymentPath); err != nil {
		return "", err
	}
	return v.page.Text(ctx, selector.VendorPayments.Status(method))
}

// manage opens the form of method from the summary.
func (v *VendorPaymentsPage) manage(ctx context.Context, method string) error {
	link := selector.VendorPayments.Manage(method)
	if !v.caps.Allows(link) {
		return unavailable(link, v.caps)
	}
	p := v.page
	if err := p.Goto(ctx, testdata.VendorPaymentPath); err != nil {
		return err
	}
	if err := p.ClickAndWaitForResponseAndLoadState(ctx, `/manage/`+regexp.QuoteMeta(method), link); err != nil {
		return err
	}
	return p.ToBeVisible(ctx, selector.VendorPaymentForm.Form)
}

// submit sends the manage form and expects the summary's success notice.
func (v *VendorPaymentsPage) submit(ctx context.Context, button locator.Locator, message string) error {
	p := v.page
	if err := p.ClickAndWaitForResponseAndLoadState(ctx, vendorPaymentResponse, button); err != nil {
		return err
	}
	return p.ToContainText(ctx, selector.VendorPayments.Success, message)
}

// AddBasicPayment saves an email based method (paypal or skrill) or the
// custom method.
func (v *VendorPaymentsPage) AddBasicPayment(ctx context.Context, m testdata.VendorPaymentMethod) error {
	if err := v.manage(ctx, m.Method); err != nil {
		return err
	}
	plan := basicPaymentPlan(&m)
	if err := fill(ctx, v.page, v.caps, plan); err != nil {
		return err
	}
	if err := v.submit(ctx, selector.VendorPaymentForm.Update, m.SaveSuccessMessage); err != nil {
		return err
	}
	want := m.Email
	if m.Method == MethodCustom {
		want = m.CustomValue
	}
	return v.page.ToContainText(ctx, selector.VendorPayments.Status(m.Method), want)
}

func basicPaymentPlan(m *testdata.VendorPaymentMethod) []field {
	if m.Method == MethodCustom {
		return []field{text(selector.VendorPaymentForm.CustomValue, &m.CustomValue)}
	}
	return []field{text(selector.VendorPaymentForm.Email, &m.Email)}
}

// RemoveBasicPayment removes the account of method and checks the form comes
// back empty.
func (v *VendorPaymentsPage) RemoveBasicPayment(ctx context.Context, method string) error {
	empty := testdata.VendorPaymentMethod{Method: method}
	return v.remove(ctx, method, basicPaymentPlan(&empty))
}

func (v *VendorPaymentsPage) remove(ctx context.Context, method string, emptied []field) error {
	if err := v.manage(ctx, method); err != nil {
		return err
	}
	if err := v.submit(ctx, selector.VendorPaymentForm.Remove, testdata.VendorPaymentSaved); err != nil {
		return err
	}
	if err := v.manage(ctx, method); err != nil {
		return err
	}
	if err := verify(ctx, v.page, v.caps, emptied); err != nil {
		return err
	}
	return v.page.NotToBeVisible(ctx, selector.VendorPaymentForm.Remove)
}

func bankPlan(b *testdata.BankAccount, declared *bool) []field {
	f := selector.VendorPaymentForm
	return []field{
		text(f.AccountName, &b.AccountName),
		choice(f.AccountType, &b.AccountType),
		text(f.AccountNumber, &b.AccountNumber),
		text(f.RoutingNumber, &b.RoutingNumber),
		text(f.BankName, &b.BankName),
		text(f.BankAddress, &b.BankAddress),
		text(f.IBAN, &b.IBAN),
		text(f.Swift, &b.Swift),
		checkbox(f.Declaration, declared),
	}
}

// AddBankTransfer saves a bank account, attesting ownership.
func (v *VendorPaymentsPage) AddBankTransfer(ctx context.Context, m testdata.VendorPaymentMethod) error {
	if err := v.manage(ctx, MethodBank); err != nil {
		return err
	}
	declared := true
	if err := fill(ctx, v.page, v.caps, bankPlan(&m.Bank, &declared)); err != nil {
		return err
	}
	return v.submit(ctx, selector.VendorPaymentForm.Update, m.SaveSuccessMessage)
}

// AddBankTransferRejected submits a bank account without the ownership
// declaration and expects the form to refuse it.
func (v *VendorPaymentsPage) AddBankTransferRejected(ctx context.Context, m testdata.VendorPaymentMethod) error {
	if err := v.manage(ctx, MethodBank); err != nil {
		return err
	}
	declared := false
	if err := fill(ctx, v.page, v.caps, bankPlan(&m.Bank, &declared)); err != nil {
		return err
	}
	err := v.page.ClickAndExpectStatus(ctx, vendorPaymentResponse, selector.VendorPaymentForm.Update, http.StatusUnprocessableEntity)
	if err != nil {
		return err
	}
	return v.page.ToBeVisible(ctx, selector.VendorPaymentForm.Error)
}

// RemoveBankTransfer removes the bank account.
func (v *VendorPaymentsPage) RemoveBankTransfer(ctx context.Context) error {
	var empty testdata.BankAccount
	declared := false
	plan := bankPlan(&empty, &declared)
	// The account type select keeps its placeholder, which has an empty value.
	return v.remove(ctx, MethodBank, plan)
}

// WithdrawPage is the vendor's withdraw dashboard.
type WithdrawPage struct {
	page *harness.Page
}

func NewWithdrawPage(p *harness.Page) *WithdrawPage {
	return &WithdrawPage{page: p}
}

func (w *WithdrawPage) fillRequest(ctx context.Context, amount, method string) error {
	p := w.page
	if err := p.Goto(ctx, testdata.VendorWithdrawPath); err != nil {
		return err
	}
	if err := p.ClearAndType(ctx, selector.VendorWithdraw.Amount, amount); err != nil {
		return err
	}
	return p.SelectByValue(ctx, selector.VendorWithdraw.Method, method)
}

// RequestWithdraw submits a request and expects it to be accepted.
func (w *WithdrawPage) RequestWithdraw(ctx context.Context, r testdata.WithdrawRequest) error {
	if err := w.fillRequest(ctx, r.Amount, r.Method); err != nil {
		return err
	}
	p := w.page
	err := p.ClickAndWaitForResponseAndLoadState(ctx, regexp.QuoteMeta(testdata.VendorWithdrawPath), selector.VendorWithdraw.Submit)
	if err != nil {
		return err
	}
	return p.ToContainText(ctx, selector.VendorWithdraw.Success, r.SuccessMessage)
}

// RequestWithdrawRejected submits a request and expects it to be refused
// with message.
func (w *WithdrawPage) RequestWithdrawRejected(ctx context.Context, r testdata.WithdrawRequest, message string) error {
	if err := w.fillRequest(ctx, r.Amount, r.Method); err != nil {
		return err
	}
	p := w.page
	err := p.ClickAndExpectStatus(ctx, regexp.QuoteMeta(testdata.VendorWithdrawPath), selector.VendorWithdraw.Submit, http.StatusUnprocessableEntity)
	if err != nil {
		return err
	}
	return p.ToContainText(ctx, selector.VendorWithdraw.Error, message)
}

// Balance returns the formatted balance shown to the vendor.
func (w *WithdrawPage) Balance(ctx context.Context) (string, error) {
	if err := w.page.GoIfNotThere(ctx, testdata.VendorWithdrawPath); err != nil {
		return "", err
	}
	return w.page.Text(ctx, selector.VendorWithdraw.Balance)
}

// MinimumAmount returns the advertised minimum, or "" when none is set. The
// page is always reloaded since the admin may have changed the setting.
func (w *WithdrawPage) MinimumAmount(ctx context.Context) (string, error) {
	p := w.page
	if err := p.Goto(ctx, testdata.VendorWithdrawPath); err != nil {
		return "", err
	}
	shown, err := p.IsVisible(ctx, selector.VendorWithdraw.Limit)
	if err != nil || !shown {
		return "", err
	}
	return p.Text(ctx, selector.VendorWithdraw.Limit)
}

// Requests returns how many withdraw requests are listed.
func (w *WithdrawPage) Requests(ctx context.Context) (int, error) {
	if err := w.page.GoIfNotThere(ctx, testdata.VendorWithdrawPath); err != nil {
		return 0, err
	}
	return w.page.Count(ctx, selector.VendorWithdraw.Requests)
}
