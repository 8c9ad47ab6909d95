package site

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/testdata"
)

// Gateway is a checkout payment gateway. Module gateways only exist while
// their module is active.
type Gateway struct {
	ID     string
	Name   string
	Module string
}

// Gateways lists every checkout gateway in display order.
var Gateways = []Gateway{
	{ID: "bacs", Name: "Direct bank transfer"},
	{ID: "cheque", Name: "Check payments"},
	{ID: "cod", Name: "Cash on delivery"},
	{ID: "dokan_mangopay", Name: "MangoPay", Module: testdata.ModuleMangoPay},
	{ID: "dokan_paypal_marketplace", Name: "PayPal Marketplace", Module: testdata.ModulePaypalMarketplace},
	{ID: "dokan_razorpay", Name: "Razorpay", Module: testdata.ModuleRazorpay},
	{ID: "dokan-stripe-connect", Name: "Stripe Connect", Module: testdata.ModuleStripe},
	{ID: "dokan_stripe_express", Name: "Stripe Express", Module: testdata.ModuleStripeExpress},
}

var wcGeneralDefaults = map[string]string{
	"woocommerce_currency":           testdata.USD.Code,
	"woocommerce_price_thousand_sep": ",",
	"woocommerce_price_decimal_sep":  ".",
	"woocommerce_price_num_decimals": "2",
}

// optionValues reads a flat option layered over defaults.
func (s *Site) optionValues(ctx context.Context, name string, defaults map[string]string) (map[string]string, error) {
	raw, err := s.store.GetOption(ctx, name)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	stored, err := decodeValues(raw)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(defaults)+len(stored))
	for key, value := range defaults {
		values[key] = value
	}
	for key, value := range stored {
		values[key] = value
	}
	return values, nil
}

func (s *Site) setOptionValues(ctx context.Context, name string, values map[string]string) error {
	encoded, err := encodeValues(values)
	if err != nil {
		return err
	}
	return s.store.SetOption(ctx, name, encoded)
}

type wcGeneralView struct {
	Saved       bool
	Error       string
	Currencies  []choiceView
	ThousandSep string
	DecimalSep  string
	NumDecimals string
}

func (s *Site) wcGeneralBody(values map[string]string) wcGeneralView {
	body := wcGeneralView{
		ThousandSep: values["woocommerce_price_thousand_sep"],
		DecimalSep:  values["woocommerce_price_decimal_sep"],
		NumDecimals: values["woocommerce_price_num_decimals"],
	}
	for _, currency := range testdata.Currencies {
		body.Currencies = append(body.Currencies, choiceView{
			Value:    currency.Code,
			Label:    currency.Label,
			Selected: currency.Code == values["woocommerce_currency"],
		})
	}
	return body
}

func (s *Site) wcGeneral(c echo.Context) error {
	values, err := s.optionValues(c.Request().Context(), testdata.OptionWCGeneral, wcGeneralDefaults)
	if err != nil {
		return err
	}
	body := s.wcGeneralBody(values)
	body.Saved = c.QueryParam("saved") == "1"
	return s.render(c, http.StatusOK, "wc_general", "General", body)
}

func (s *Site) saveWCGeneral(c echo.Context) error {
	ctx := c.Request().Context()
	values, err := s.optionValues(ctx, testdata.OptionWCGeneral, wcGeneralDefaults)
	if err != nil {
		return err
	}
	currency := c.FormValue("woocommerce_currency")
	if !slices.ContainsFunc(testdata.Currencies, func(cur testdata.Currency) bool { return cur.Code == currency }) {
		body := s.wcGeneralBody(values)
		body.Error = "Unsupported currency."
		return s.render(c, http.StatusUnprocessableEntity, "wc_general", "General", body)
	}
	values["woocommerce_currency"] = currency
	for _, key := range []string{"woocommerce_price_thousand_sep", "woocommerce_price_decimal_sep", "woocommerce_price_num_decimals"} {
		values[key] = c.FormValue(key)
	}
	if err = s.setOptionValues(ctx, testdata.OptionWCGeneral, values); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/wc-settings/general?saved=1")
}

// availableGateways returns the gateways usable with the active modules.
func (s *Site) availableGateways(c echo.Context) ([]Gateway, error) {
	active, err := s.activeModules(c)
	if err != nil {
		return nil, err
	}
	out := make([]Gateway, 0, len(Gateways))
	for _, gw := range Gateways {
		if gw.Module == "" || active[gw.Module] {
			out = append(out, gw)
		}
	}
	return out, nil
}

func gatewayDefaults(gw Gateway) map[string]string {
	return map[string]string{
		"enabled":              off,
		"title":                gw.Name,
		"description":          "",
		"testmode":             off,
		"test_publishable_key": "",
		"test_secret_key":      "",
	}
}

type gatewayRow struct {
	ID      string
	Title   string
	Enabled bool
}

func (s *Site) wcCheckout(c echo.Context) error {
	gateways, err := s.availableGateways(c)
	if err != nil {
		return err
	}
	rows := make([]gatewayRow, 0, len(gateways))
	for _, gw := range gateways {
		values, err := s.optionValues(c.Request().Context(), testdata.GatewayOption(gw.ID), gatewayDefaults(gw))
		if err != nil {
			return err
		}
		rows = append(rows, gatewayRow{ID: gw.ID, Title: values["title"], Enabled: values["enabled"] == on})
	}
	return s.render(c, http.StatusOK, "wc_checkout", "Payments", struct {
		Saved    bool
		Gateways []gatewayRow
	}{Saved: c.QueryParam("saved") == "1", Gateways: rows})
}

func (s *Site) saveWCCheckout(c echo.Context) error {
	gateways, err := s.availableGateways(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	for _, gw := range gateways {
		name := testdata.GatewayOption(gw.ID)
		values, err := s.optionValues(ctx, name, gatewayDefaults(gw))
		if err != nil {
			return err
		}
		values["enabled"] = checkbox(c, "enabled."+gw.ID)
		if err = s.setOptionValues(ctx, name, values); err != nil {
			return err
		}
	}
	return c.Redirect(http.StatusSeeOther, "/admin/wc-settings/checkout?saved=1")
}

type gatewayView struct {
	ID             string
	Name           string
	Module         string
	Saved          bool
	Enabled        bool
	Title          string
	Description    string
	TestMode       bool
	PublishableKey string
	SecretKey      string
}

func (s *Site) lookupGateway(c echo.Context) (Gateway, bool, error) {
	gateways, err := s.availableGateways(c)
	if err != nil {
		return Gateway{}, false, err
	}
	idx := slices.IndexFunc(gateways, func(gw Gateway) bool { return gw.ID == c.Param("gateway") })
	if idx < 0 {
		return Gateway{}, false, nil
	}
	return gateways[idx], true, nil
}

func (s *Site) wcGateway(c echo.Context) error {
	gw, ok, err := s.lookupGateway(c)
	if err != nil {
		return err
	} else if !ok {
		return s.renderError(c, http.StatusNotFound, "Unknown payment gateway.")
	}
	values, err := s.optionValues(c.Request().Context(), testdata.GatewayOption(gw.ID), gatewayDefaults(gw))
	if err != nil {
		return err
	}
	return s.render(c, http.StatusOK, "wc_gateway", gw.Name, gatewayView{
		ID:             gw.ID,
		Name:           gw.Name,
		Module:         gw.Module,
		Saved:          c.QueryParam("saved") == "1",
		Enabled:        values["enabled"] == on,
		Title:          values["title"],
		Description:    values["description"],
		TestMode:       values["testmode"] == on,
		PublishableKey: values["test_publishable_key"],
		SecretKey:      values["test_secret_key"],
	})
}

func (s *Site) saveWCGateway(c echo.Context) error {
	gw, ok, err := s.lookupGateway(c)
	if err != nil {
		return err
	} else if !ok {
		return s.renderError(c, http.StatusNotFound, "Unknown payment gateway.")
	}
	ctx := c.Request().Context()
	name := testdata.GatewayOption(gw.ID)
	values, err := s.optionValues(ctx, name, gatewayDefaults(gw))
	if err != nil {
		return err
	}
	values["enabled"] = checkbox(c, "enabled")
	values["title"] = strings.TrimSpace(c.FormValue("title"))
	values["description"] = strings.TrimSpace(c.FormValue("description"))
	if gw.Module != "" {
		values["testmode"] = checkbox(c, "testmode")
		values["test_publishable_key"] = strings.TrimSpace(c.FormValue("test_publishable_key"))
		values["test_secret_key"] = strings.TrimSpace(c.FormValue("test_secret_key"))
	}
	if err = s.setOptionValues(ctx, name, values); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/wc-settings/checkout/"+gw.ID+"?saved=1")
}

func checkbox(c echo.Context, name string) string {
	if c.FormValue(name) == "" {
		return off
	}
	return on
}
