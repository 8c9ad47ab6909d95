package site

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"slices"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stolasapp/mercato/internal/sec"
	"github.com/stolasapp/mercato/internal/storage/db"
	"github.com/stolasapp/mercato/internal/testdata"
)

// MetaBalance is the user meta key holding a vendor's withdrawable balance.
const MetaBalance = "dokan_balance"

var bankFields = []string{
	"ac_name", "ac_type", "ac_number", "routing_number",
	"bank_name", "bank_addr", "iban", "swift",
}

// payoutMethod is a withdraw method the admin has enabled.
type payoutMethod struct {
	ID    string
	Name  string
	Label string
}

type methodView struct {
	ID      string
	Name    string
	Summary string
}

// profile is a vendor's dokan_profile_settings document. Unknown keys are
// preserved on write.
type profile map[string]any

func (p profile) payments() map[string]any {
	payment, _ := p["payment"].(map[string]any)
	if payment == nil {
		payment = map[string]any{}
		p["payment"] = payment
	}
	return payment
}

// method returns the stored fields of one payment method as strings.
func (p profile) method(id string) map[string]string {
	out := map[string]string{}
	fields, _ := p.payments()[id].(map[string]any)
	for key, value := range fields {
		out[key] = fmt.Sprint(value)
	}
	return out
}

func (p profile) configured(id string) bool {
	for _, value := range p.method(id) {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

func (s *Site) loadProfile(ctx context.Context, userID uint64) (profile, error) {
	raw, err := s.store.GetUserMeta(ctx, userID, testdata.MetaProfileSettings)
	switch {
	case isNotFound(err):
		return profile{}, nil
	case err != nil:
		return nil, err
	}
	out := profile{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	if err = json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to decode vendor profile: %w", err)
	}
	return out, nil
}

func (s *Site) saveProfile(ctx context.Context, userID uint64, p profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.store.SetUserMeta(ctx, userID, testdata.MetaProfileSettings, string(raw))
}

// payoutMethods lists the withdraw methods the admin enabled for the tier.
func (s *Site) payoutMethods(ctx context.Context) ([]payoutMethod, error) {
	section, _ := SectionByID("withdraw")
	values, err := s.sectionValues(ctx, section)
	if err != nil {
		return nil, err
	}
	var out []payoutMethod
	if values["withdraw_methods.paypal"] == on {
		out = append(out, payoutMethod{ID: "paypal", Name: "PayPal", Label: "Email"})
	}
	if values["withdraw_methods.bank"] == on {
		out = append(out, payoutMethod{ID: "bank", Name: "Bank Transfer"})
	}
	if s.cfg.Pro && values["withdraw_methods.skrill"] == on {
		out = append(out, payoutMethod{ID: "skrill", Name: "Skrill", Label: "Email"})
	}
	if s.cfg.Pro && values["withdraw_methods.dokan_custom"] == on {
		name := cmpOr(values["withdraw_method_name"], "Custom")
		out = append(out, payoutMethod{ID: "dokan_custom", Name: name, Label: cmpOr(values["withdraw_method_type"], "Account")})
	}
	return out, nil
}

func cmpOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func summarize(id string, fields map[string]string) string {
	switch id {
	case "bank":
		number := fields["ac_number"]
		if number == "" {
			return ""
		}
		if len(number) > 4 {
			number = number[len(number)-4:]
		}
		return fields["bank_name"] + " ****" + number
	case "dokan_custom":
		return fields["value"]
	default:
		return fields["email"]
	}
}

func (s *Site) vendorHome(c echo.Context) error {
	user := sec.GetAuthenticatedUser(c.Request().Context())
	balance, err := s.balance(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return s.render(c, http.StatusOK, "vendor_home", "Vendor Dashboard", struct{ Balance string }{formatAmount(balance)})
}

func (s *Site) vendorPayments(c echo.Context) error {
	ctx := c.Request().Context()
	user := sec.GetAuthenticatedUser(ctx)
	methods, err := s.payoutMethods(ctx)
	if err != nil {
		return err
	}
	p, err := s.loadProfile(ctx, user.ID)
	if err != nil {
		return err
	}
	body := struct {
		Notice  string
		Methods []methodView
	}{}
	if c.QueryParam("saved") == "1" {
		body.Notice = testdata.VendorPaymentSaved
	}
	for _, method := range methods {
		body.Methods = append(body.Methods, methodView{
			ID:      method.ID,
			Name:    method.Name,
			Summary: summarize(method.ID, p.method(method.ID)),
		})
	}
	return s.render(c, http.StatusOK, "vendor_payment", "Payment Method", body)
}

type paymentFormView struct {
	ID         string
	Name       string
	Label      string
	Error      string
	Configured bool
	Values     map[string]string
}

func (s *Site) paymentForm(c echo.Context) (payoutMethod, profile, bool, error) {
	ctx := c.Request().Context()
	methods, err := s.payoutMethods(ctx)
	if err != nil {
		return payoutMethod{}, nil, false, err
	}
	idx := slices.IndexFunc(methods, func(m payoutMethod) bool { return m.ID == c.Param("method") })
	if idx < 0 {
		return payoutMethod{}, nil, false, nil
	}
	p, err := s.loadProfile(ctx, sec.GetAuthenticatedUser(ctx).ID)
	return methods[idx], p, true, err
}

func (s *Site) vendorPaymentForm(c echo.Context) error {
	method, p, ok, err := s.paymentForm(c)
	if err != nil {
		return err
	} else if !ok {
		return s.renderError(c, http.StatusNotFound, "This payment method is not available.")
	}
	return s.render(c, http.StatusOK, "vendor_payment_manage", method.Name, paymentFormView{
		ID:         method.ID,
		Name:       method.Name,
		Label:      method.Label,
		Configured: p.configured(method.ID),
		Values:     p.method(method.ID),
	})
}

func (s *Site) saveVendorPayment(c echo.Context) error {
	method, p, ok, err := s.paymentForm(c)
	if err != nil {
		return err
	} else if !ok {
		return s.renderError(c, http.StatusNotFound, "This payment method is not available.")
	}
	ctx := c.Request().Context()
	user := sec.GetAuthenticatedUser(ctx)

	if c.FormValue("dokan_remove_payment") != "" {
		delete(p.payments(), method.ID)
		if err = s.saveProfile(ctx, user.ID, p); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/dashboard/settings/payment?saved=1")
	}

	fields, problem := paymentFields(c, method.ID)
	if problem != "" {
		return s.render(c, http.StatusUnprocessableEntity, "vendor_payment_manage", method.Name, paymentFormView{
			ID:         method.ID,
			Name:       method.Name,
			Label:      method.Label,
			Error:      problem,
			Configured: p.configured(method.ID),
			Values:     fields,
		})
	}
	stored := make(map[string]any, len(fields))
	for key, value := range fields {
		stored[key] = value
	}
	p.payments()[method.ID] = stored
	if err = s.saveProfile(ctx, user.ID, p); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard/settings/payment?saved=1")
}

// paymentFields reads and validates the submitted method form, returning a
// user-facing problem when it is rejected.
func paymentFields(c echo.Context, id string) (map[string]string, string) {
	fields := map[string]string{}
	switch id {
	case "bank":
		for _, key := range bankFields {
			fields[key] = strings.TrimSpace(c.FormValue(key))
		}
		for _, key := range []string{"ac_name", "ac_type", "ac_number", "routing_number"} {
			if fields[key] == "" {
				return fields, "Please fill in all the required bank account fields."
			}
		}
		if c.FormValue("declaration") == "" {
			return fields, "You must attest that the bank account is yours."
		}
	case "dokan_custom":
		fields["value"] = strings.TrimSpace(c.FormValue("value"))
		if fields["value"] == "" {
			return fields, "Please enter a value."
		}
	default:
		fields["email"] = strings.TrimSpace(c.FormValue("email"))
		if _, err := mail.ParseAddress(fields["email"]); err != nil {
			return fields, "Please enter a valid email address."
		}
	}
	return fields, ""
}

func (s *Site) balance(ctx context.Context, userID uint64) (float64, error) {
	raw, err := s.store.GetUserMeta(ctx, userID, MetaBalance)
	switch {
	case isNotFound(err):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

type withdrawView struct {
	Notice   string
	Error    string
	Balance  string
	Minimum  string
	Methods  []payoutMethod
	Requests []db.Withdraw
}

func (s *Site) withdrawBody(ctx context.Context, user db.User) (withdrawView, float64, float64, error) {
	var body withdrawView
	balance, err := s.balance(ctx, user.ID)
	if err != nil {
		return body, 0, 0, err
	}
	body.Balance = formatAmount(balance)

	section, _ := SectionByID("withdraw")
	values, err := s.sectionValues(ctx, section)
	if err != nil {
		return body, 0, 0, err
	}
	minimum, _ := strconv.ParseFloat(values["withdraw_limit"], 64)
	if minimum > 0 {
		body.Minimum = values["withdraw_limit"]
	}

	methods, err := s.payoutMethods(ctx)
	if err != nil {
		return body, 0, 0, err
	}
	p, err := s.loadProfile(ctx, user.ID)
	if err != nil {
		return body, 0, 0, err
	}
	for _, method := range methods {
		if p.configured(method.ID) {
			body.Methods = append(body.Methods, method)
		}
	}
	if body.Requests, err = s.store.ListWithdraws(ctx, user.ID); err != nil {
		return body, 0, 0, err
	}
	return body, balance, minimum, nil
}

func (s *Site) vendorWithdraw(c echo.Context) error {
	ctx := c.Request().Context()
	body, _, _, err := s.withdrawBody(ctx, sec.GetAuthenticatedUser(ctx))
	if err != nil {
		return err
	}
	if c.QueryParam("requested") == "1" {
		body.Notice = testdata.WithdrawRequested
	}
	return s.render(c, http.StatusOK, "vendor_withdraw", "Withdraw", body)
}

// requestWithdraw records a pending request when the amount is at least the
// configured minimum and within the vendor's balance.
func (s *Site) requestWithdraw(c echo.Context) error {
	ctx := c.Request().Context()
	user := sec.GetAuthenticatedUser(ctx)
	body, balance, minimum, err := s.withdrawBody(ctx, user)
	if err != nil {
		return err
	}
	reject := func(message string) error {
		body.Error = message
		return s.render(c, http.StatusUnprocessableEntity, "vendor_withdraw", "Withdraw", body)
	}

	rawAmount := strings.TrimSpace(c.FormValue("witdraw_amount"))
	amount, err := strconv.ParseFloat(rawAmount, 64)
	method := c.FormValue("withdraw_method")
	switch {
	case err != nil || amount <= 0:
		return reject("Withdraw amount required")
	case minimum > 0 && amount < minimum:
		return reject(testdata.WithdrawMinimumText + " " + body.Minimum)
	case amount > balance:
		return reject("You don't have enough balance for this request")
	case !slices.ContainsFunc(body.Methods, func(m payoutMethod) bool { return m.ID == method }):
		return reject("Invalid withdraw method")
	}

	if _, err = s.store.CreateWithdraw(ctx, db.Withdraw{
		UserID: user.ID,
		Amount: formatAmount(amount),
		Method: method,
		Status: "pending",
	}); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "withdraw requested",
		slog.Uint64("user", user.ID),
		slog.String("amount", rawAmount),
		slog.String("method", method))
	return c.Redirect(http.StatusSeeOther, "/dashboard/withdraw?requested=1")
}
