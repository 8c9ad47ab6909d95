package pages

import (
	"context"
	"regexp"

	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/selector"
	"github.com/stolasapp/mercato/internal/testdata"
)

// PaymentsPage is the store's currency and checkout gateway configuration.
type PaymentsPage struct {
	page *harness.Page
	caps harness.Capabilities
}

func NewPaymentsPage(p *harness.Page, caps harness.Capabilities) *PaymentsPage {
	return &PaymentsPage{page: p, caps: caps}
}

// SetCurrency selects the store currency and saves the general form.
func (pp *PaymentsPage) SetCurrency(ctx context.Context, c testdata.Currency) error {
	p := pp.page
	if err := p.GoIfNotThere(ctx, testdata.WCGeneralPath); err != nil {
		return err
	}
	if err := p.SelectByValue(ctx, selector.WCGeneral.Currency, c.Code); err != nil {
		return err
	}
	err := p.ClickAndWaitForResponseAndLoadState(ctx, regexp.QuoteMeta(testdata.WCGeneralPath), selector.WCGeneral.Save)
	if err != nil {
		return err
	}
	if err = p.ToContainText(ctx, selector.WCGeneral.SavedMessage, testdata.WooCommerceSaved); err != nil {
		return err
	}
	return p.ToHaveValue(ctx, selector.WCGeneral.Currency, c.Code)
}

// Currency returns the code of the selected store currency.
func (pp *PaymentsPage) Currency(ctx context.Context) (string, error) {
	if err := pp.page.GoIfNotThere(ctx, testdata.WCGeneralPath); err != nil {
		return "", err
	}
	return pp.page.Value(ctx, selector.WCGeneral.Currency)
}

// SetupBasicPaymentMethods sets the currency and enables the listed checkout
// gateways.
func (pp *PaymentsPage) SetupBasicPaymentMethods(ctx context.Context, s testdata.PaymentSettings) error {
	if err := pp.SetCurrency(ctx, s.Currency); err != nil {
		return err
	}
	p := pp.page
	if err := p.GoIfNotThere(ctx, testdata.WCCheckoutPath); err != nil {
		return err
	}
	plan := make([]field, 0, len(s.EnabledGateways))
	on := true
	for _, id := range s.EnabledGateways {
		plan = append(plan, switcher(selector.WCCheckout.Enable(id), &on))
	}
	if err := fill(ctx, p, pp.caps, plan); err != nil {
		return err
	}
	err := p.ClickAndWaitForResponseAndLoadState(ctx, regexp.QuoteMeta(testdata.WCCheckoutPath), selector.WCCheckout.Save)
	if err != nil {
		return err
	}
	if err = p.ToContainText(ctx, selector.WCCheckout.SavedMessage, s.SaveSuccessMessage); err != nil {
		return err
	}
	return verify(ctx, p, pp.caps, plan)
}

// VerifyModuleGateway asserts a payment module's gateway is listed at
// checkout exactly when listed is true.
func (pp *PaymentsPage) VerifyModuleGateway(ctx context.Context, module string, listed bool) error {
	p := pp.page
	if err := p.GoIfNotThere(ctx, testdata.WCCheckoutPath); err != nil {
		return err
	}
	if err := p.ToBeVisible(ctx, selector.WCCheckout.Table); err != nil {
		return err
	}
	row := selector.WCCheckout.Gateway(testdata.PaymentModules[module]).RequiresModule(module)
	if listed {
		return p.ToBeVisible(ctx, row)
	}
	return p.NotToBeVisible(ctx, row)
}

func gatewayPlan(id string, g *testdata.GatewaySettings, enabled *bool) []field {
	gw := selector.WCGateway
	return []field{
		checkbox(gw.Enabled(id), enabled),
		text(gw.GatewayTitle(id), &g.Title),
		text(gw.Description(id), &g.Description),
		checkbox(gw.TestMode(id), &g.TestMode),
		text(gw.PublishableKey(id), &g.PublishableKey),
		text(gw.SecretKey(id), &g.SecretKey),
	}
}

// SetupGateway enables and configures the gateway of a payment module. The
// module must be active.
func (pp *PaymentsPage) SetupGateway(ctx context.Context, g testdata.GatewaySettings) error {
	id := g.GatewayID()
	row := selector.WCCheckout.Gateway(id).RequiresModule(g.Module)
	if !pp.caps.Allows(row) {
		return unavailable(row, pp.caps)
	}
	path := testdata.WCCheckoutPath + "/" + id
	p := pp.page
	if err := p.GoIfNotThere(ctx, path); err != nil {
		return err
	}
	if err := p.ToBeVisible(ctx, selector.WCGateway.Title); err != nil {
		return err
	}
	enabled := true
	plan := gatewayPlan(id, &g, &enabled)
	if err := fill(ctx, p, pp.caps, plan); err != nil {
		return err
	}
	if err := p.ClickAndWaitForResponseAndLoadState(ctx, regexp.QuoteMeta(path), selector.WCGateway.Save); err != nil {
		return err
	}
	if err := p.ToContainText(ctx, selector.WCGateway.SavedMessage, g.SaveSuccessMessage); err != nil {
		return err
	}
	return verify(ctx, p, pp.caps, plan)
}
