package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stolasapp/mercato/internal/richtext"
	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/storage/db"
)

type restErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]int `json:"data"`
}

func restError(status int, code, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, restErrorBody{
		Code:    code,
		Message: message,
		Data:    map[string]int{"status": status},
	})
}

func (s *Site) registerAPI(api *echo.Group) {
	api.GET("", s.apiIndex)
	api.GET("/wc/v3/settings/:group", s.apiSettingsGroup)
	api.POST("/wc/v3/settings/:group/batch", s.apiSettingsBatch)
	api.GET("/dokan/v1/options/:name", s.apiGetOption)
	api.PUT("/dokan/v1/options/:name", s.apiSetOption)
	api.DELETE("/dokan/v1/options/:name", s.apiDeleteOption)
	api.PUT("/dokan/v1/privacy-policy", s.apiImportPrivacyPolicy)
	api.GET("/dokan/v1/admin/modules", s.apiModules)
	api.PUT("/dokan/v1/admin/modules/activate", s.apiToggleModules(true))
	api.PUT("/dokan/v1/admin/modules/deactivate", s.apiToggleModules(false))
	api.POST("/wc/v3/coupons", s.apiCreateCoupon)
	api.GET("/wc/v3/coupons/:id", s.apiGetCoupon)
	api.DELETE("/wc/v3/coupons/:id", s.apiDeleteCoupon)
	api.POST("/wc/v3/taxes", s.apiCreateTaxRate)
	api.GET("/wc/v3/taxes/:id", s.apiGetTaxRate)
	api.DELETE("/wc/v3/taxes/:id", s.apiDeleteTaxRate)
}

func (s *Site) apiIndex(c echo.Context) error {
	tier := "lite"
	if s.cfg.Pro {
		tier = "pro"
	}
	return c.JSON(http.StatusOK, map[string]string{"name": "Mercato", "tier": tier})
}

// SettingValue is one entry of a WooCommerce settings group.
type SettingValue struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// BatchRequest updates entries of a settings group.
type BatchRequest struct {
	Update []SettingValue `json:"update"`
}

func groupOption(group string) string {
	return "woocommerce_" + group
}

func (s *Site) apiSettingsGroup(c echo.Context) error {
	values, err := s.optionValues(c.Request().Context(), groupOption(c.Param("group")), nil)
	if err != nil {
		return err
	}
	out := make([]SettingValue, 0, len(values))
	for id, value := range values {
		out = append(out, SettingValue{ID: id, Value: value})
	}
	slices.SortFunc(out, func(a, b SettingValue) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return c.JSON(http.StatusOK, out)
}

func (s *Site) apiSettingsBatch(c echo.Context) error {
	var req BatchRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return restError(http.StatusBadRequest, "rest_invalid_json", "Invalid JSON body.")
	}
	ctx := c.Request().Context()
	name := groupOption(c.Param("group"))
	values, err := s.optionValues(ctx, name, nil)
	if err != nil {
		return err
	}
	for _, update := range req.Update {
		if update.ID == "" {
			return restError(http.StatusBadRequest, "rest_invalid_param", "Setting id is required.")
		}
		values[update.ID] = stringify(update.Value)
	}
	if err = s.setOptionValues(ctx, name, values); err != nil {
		return err
	}
	out := BatchRequest{Update: make([]SettingValue, 0, len(req.Update))}
	for _, update := range req.Update {
		out.Update = append(out.Update, SettingValue{ID: update.ID, Value: values[update.ID]})
	}
	return c.JSON(http.StatusOK, out)
}

func stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if typed {
			return on
		}
		return off
	default:
		return fmt.Sprint(typed)
	}
}

// OptionBody carries a raw option value.
type OptionBody struct {
	Name  string          `json:"name,omitempty"`
	Value json.RawMessage `json:"value"`
}

func (s *Site) apiGetOption(c echo.Context) error {
	raw, err := s.store.GetOption(c.Request().Context(), c.Param("name"))
	switch {
	case isNotFound(err):
		return restError(http.StatusNotFound, "dokan_rest_option_not_found", "Option not found.")
	case err != nil:
		return err
	}
	if !json.Valid([]byte(raw)) {
		encoded, _ := json.Marshal(raw)
		raw = string(encoded)
	}
	return c.JSON(http.StatusOK, OptionBody{Name: c.Param("name"), Value: json.RawMessage(raw)})
}

func (s *Site) apiSetOption(c echo.Context) error {
	var body OptionBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil || len(body.Value) == 0 {
		return restError(http.StatusBadRequest, "rest_invalid_json", "A JSON value is required.")
	}
	name := c.Param("name")
	if err := s.store.SetOption(c.Request().Context(), name, string(body.Value)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OptionBody{Name: name, Value: body.Value})
}

func (s *Site) apiDeleteOption(c echo.Context) error {
	if err := s.store.DeleteOption(c.Request().Context(), c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

const maxPolicySize = 1 << 20

// PolicyBody is the privacy policy as stored, in Markdown.
type PolicyBody struct {
	Markdown string `json:"markdown"`
}

// apiImportPrivacyPolicy converts an HTML or plain text document in any
// encoding and stores it as the privacy policy. The other privacy settings
// are kept.
func (s *Site) apiImportPrivacyPolicy(c echo.Context) error {
	ctx := c.Request().Context()
	document, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPolicySize))
	if err != nil {
		return err
	}
	markdown, err := richtext.Import(c.Request().Header.Get(echo.HeaderContentType), document)
	if err != nil {
		return restError(http.StatusUnsupportedMediaType, "rest_invalid_document", err.Error())
	}

	section, _ := SectionByID("privacy_policy")
	stored, err := s.store.GetOption(ctx, section.Option)
	if err != nil && !isNotFound(err) {
		return err
	}
	values, err := decodeValues(stored)
	if err != nil {
		return err
	}
	values["privacy_policy"] = string(markdown)
	encoded, err := encodeValues(values)
	if err != nil {
		return err
	}
	if err = s.store.SetOption(ctx, section.Option, encoded); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PolicyBody{Markdown: string(markdown)})
}

// ModuleBody is a module as the API reports it.
type ModuleBody struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ModuleRequest names modules to toggle.
type ModuleRequest struct {
	Module []string `json:"module"`
}

func (s *Site) moduleBodies(c echo.Context) ([]ModuleBody, error) {
	views, err := s.moduleViews(c.Request().Context())
	if err != nil {
		return nil, err
	}
	out := make([]ModuleBody, 0, len(views))
	for _, view := range views {
		out = append(out, ModuleBody(view))
	}
	return out, nil
}

func (s *Site) apiModules(c echo.Context) error {
	if !s.cfg.Pro {
		return c.JSON(http.StatusOK, []ModuleBody{})
	}
	out, err := s.moduleBodies(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Site) apiToggleModules(active bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.cfg.Pro {
			return restError(http.StatusBadRequest, "dokan_rest_pro_required", "Modules require the pro tier.")
		}
		var req ModuleRequest
		if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil || len(req.Module) == 0 {
			return restError(http.StatusBadRequest, "rest_invalid_param", "At least one module is required.")
		}
		ctx := c.Request().Context()
		for _, id := range req.Module {
			err := s.store.SetModule(ctx, id, active)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				return restError(http.StatusNotFound, "dokan_rest_invalid_module", "Unknown module "+strconv.Quote(id)+".")
			case err != nil:
				return err
			}
		}
		out, err := s.moduleBodies(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, out)
	}
}

// CouponBody is a coupon as the API reports it.
type CouponBody struct {
	ID           uint64 `json:"id,omitempty"`
	Code         string `json:"code"`
	Amount       string `json:"amount"`
	DiscountType string `json:"discount_type"`
}

func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, restError(http.StatusBadRequest, "rest_invalid_param", "Invalid ID.")
	}
	return id, nil
}

func (s *Site) apiCreateCoupon(c echo.Context) error {
	var body CouponBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil || body.Code == "" {
		return restError(http.StatusBadRequest, "rest_invalid_param", "A coupon code is required.")
	}
	if body.DiscountType == "" {
		body.DiscountType = "fixed_cart"
	}
	coupon, err := s.store.CreateCoupon(c.Request().Context(), db.Coupon{
		Code:         body.Code,
		Amount:       body.Amount,
		DiscountType: body.DiscountType,
	})
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return restError(http.StatusBadRequest, "woocommerce_rest_coupon_code_already_exists", "The coupon code already exists.")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusCreated, CouponBody(coupon))
}

func (s *Site) apiGetCoupon(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	coupon, err := s.store.GetCoupon(c.Request().Context(), id)
	switch {
	case isNotFound(err):
		return restError(http.StatusNotFound, "woocommerce_rest_shop_coupon_invalid_id", "Invalid ID.")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, CouponBody(coupon))
}

func (s *Site) apiDeleteCoupon(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	coupon, err := s.store.GetCoupon(ctx, id)
	if err == nil {
		err = s.store.DeleteCoupon(ctx, id)
	}
	switch {
	case isNotFound(err):
		return restError(http.StatusNotFound, "woocommerce_rest_shop_coupon_invalid_id", "Invalid ID.")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, CouponBody(coupon))
}

// TaxRateBody is a tax rate as the API reports it.
type TaxRateBody struct {
	ID      uint64 `json:"id,omitempty"`
	Country string `json:"country"`
	Rate    string `json:"rate"`
	Name    string `json:"name"`
	Class   string `json:"class"`
}

func taxRateBody(rate db.TaxRate) TaxRateBody {
	return TaxRateBody{ID: rate.ID, Country: rate.Country, Rate: rate.Rate, Name: rate.Name, Class: rate.TaxClass}
}

func (s *Site) apiCreateTaxRate(c echo.Context) error {
	var body TaxRateBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil || body.Rate == "" {
		return restError(http.StatusBadRequest, "rest_invalid_param", "A tax rate is required.")
	}
	if body.Class == "" {
		body.Class = "standard"
	}
	rate, err := s.store.CreateTaxRate(c.Request().Context(), db.TaxRate{
		Country:  body.Country,
		Rate:     body.Rate,
		Name:     body.Name,
		TaxClass: body.Class,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, taxRateBody(rate))
}

func (s *Site) apiGetTaxRate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	rate, err := s.store.GetTaxRate(c.Request().Context(), id)
	switch {
	case isNotFound(err):
		return restError(http.StatusNotFound, "woocommerce_rest_invalid_id", "Invalid resource ID.")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, taxRateBody(rate))
}

func (s *Site) apiDeleteTaxRate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	rate, err := s.store.GetTaxRate(ctx, id)
	if err == nil {
		err = s.store.DeleteTaxRate(ctx, id)
	}
	switch {
	case isNotFound(err):
		return restError(http.StatusNotFound, "woocommerce_rest_invalid_id", "Invalid resource ID.")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, taxRateBody(rate))
}
