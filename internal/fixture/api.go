// Package fixture establishes and restores marketplace state out of band,
// through the REST API and directly against the shared data store. Every
// failure surfaces as a failure.FixtureSetupFailure so scenarios abort before
// touching the UI.
package fixture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/testdata"
)

const restPrefix = "/wp-json"

// ErrOptionNotFound is returned by GetOption when the option is unset.
var ErrOptionNotFound = errors.New("option not found")

// APIClient talks to the marketplace REST API as an administrator.
type APIClient struct {
	base    *url.URL
	creds   testdata.Credentials
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// APIOption customizes an APIClient.
type APIOption func(*APIClient)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) APIOption {
	return func(c *APIClient) { c.client = client }
}

// WithRateLimit paces requests to at most rps per second.
func WithRateLimit(rps float64) APIOption {
	return func(c *APIClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger logs each request at debug.
func WithLogger(logger *slog.Logger) APIOption {
	return func(c *APIClient) { c.logger = logger.With(slog.String("component", "fixture.api")) }
}

// NewAPIClient returns a client for the site at baseURL.
func NewAPIClient(baseURL string, creds testdata.Credentials, opts ...APIOption) (*APIClient, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	c := &APIClient{
		base:    base,
		creds:   creds,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// restError is the error body the API returns.
type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *APIClient) do(ctx context.Context, op, method, path string, body, out any) error {
	endpoint := method + " " + restPrefix + path
	if err := c.limiter.Wait(ctx); err != nil {
		return &failure.FixtureSetupFailure{Op: op, Endpoint: endpoint, Err: err}
	}

	var (
		reader      io.Reader
		contentType = "application/json"
	)
	switch typed := body.(type) {
	case nil:
	case document:
		reader, contentType = bytes.NewReader(typed.data), typed.contentType
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			return &failure.FixtureSetupFailure{Op: op, Endpoint: endpoint, Err: err}
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(restPrefix, path).String(), reader)
	if err != nil {
		return &failure.FixtureSetupFailure{Op: op, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)

	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		return &failure.FixtureSetupFailure{Op: op, Endpoint: endpoint, Err: err}
	}
	defer func() { _ = res.Body.Close() }()
	c.logger.DebugContext(ctx, "fixture request",
		slog.String("op", op),
		slog.String("endpoint", endpoint),
		slog.Int("status", res.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var apiErr restError
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		err = errors.New(strings.TrimSpace(string(raw)))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			err = fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
		}
		return &failure.FixtureSetupFailure{Op: op, Endpoint: endpoint, Status: res.StatusCode, Err: err}
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(res.Body).Decode(out); err != nil {
		return &failure.FixtureSetupFailure{Op: op, Endpoint: endpoint, Status: res.StatusCode,
			Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// Info describes the target site.
type Info struct {
	Name string `json:"name"`
	Tier string `json:"tier"`
}

// Ping verifies the credentials and reports the site's tier.
func (c *APIClient) Ping(ctx context.Context) (Info, error) {
	var info Info
	err := c.do(ctx, "ping", http.MethodGet, "", nil, &info)
	return info, err
}

type settingValue struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

type batchRequest struct {
	Update []settingValue `json:"update"`
}

// UpdateBatchOptions sets each named setting of a WooCommerce settings group
// to exactly the given value.
func (c *APIClient) UpdateBatchOptions(ctx context.Context, group string, updates map[string]string) error {
	req := batchRequest{Update: make([]settingValue, 0, len(updates))}
	for id, value := range updates {
		req.Update = append(req.Update, settingValue{ID: id, Value: value})
	}
	var res batchRequest
	path := "/wc/v3/settings/" + url.PathEscape(group) + "/batch"
	if err := c.do(ctx, "update batch options", http.MethodPost, path, req, &res); err != nil {
		return err
	}
	for _, got := range res.Update {
		if want, ok := updates[got.ID]; ok && fmt.Sprint(got.Value) != want {
			return &failure.FixtureSetupFailure{
				Op:       "update batch options",
				Endpoint: http.MethodPost + " " + restPrefix + path,
				Err:      fmt.Errorf("%s reads back %v, want %q", got.ID, got.Value, want),
			}
		}
	}
	return nil
}

// GetBatchOptions returns the stored values of a WooCommerce settings group.
func (c *APIClient) GetBatchOptions(ctx context.Context, group string) (map[string]string, error) {
	var res []settingValue
	if err := c.do(ctx, "get batch options", http.MethodGet, "/wc/v3/settings/"+url.PathEscape(group), nil, &res); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(res))
	for _, value := range res {
		out[value.ID] = fmt.Sprint(value.Value)
	}
	return out, nil
}

type optionBody struct {
	Name  string          `json:"name,omitempty"`
	Value json.RawMessage `json:"value"`
}

// SetOption replaces the whole option blob with value, encoded as JSON.
func (c *APIClient) SetOption(ctx context.Context, name string, value any) error {
	raw, ok := value.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(value); err != nil {
			return failure.Fixture("set option", name, err)
		}
	}
	return c.do(ctx, "set option", http.MethodPut, "/dokan/v1/options/"+url.PathEscape(name), optionBody{Value: raw}, nil)
}

// GetOption returns the raw option blob. An unset option produces an error
// wrapping ErrOptionNotFound.
func (c *APIClient) GetOption(ctx context.Context, name string) (json.RawMessage, error) {
	var body optionBody
	err := c.do(ctx, "get option", http.MethodGet, "/dokan/v1/options/"+url.PathEscape(name), nil, &body)
	var setup *failure.FixtureSetupFailure
	if errors.As(err, &setup) && setup.Status == http.StatusNotFound {
		setup.Err = errors.Join(ErrOptionNotFound, setup.Err)
	}
	return body.Value, err
}

// DeleteOption removes an option; unset options are not an error.
func (c *APIClient) DeleteOption(ctx context.Context, name string) error {
	return c.do(ctx, "delete option", http.MethodDelete, "/dokan/v1/options/"+url.PathEscape(name), nil, nil)
}

// PatchOption deep merges patch into the JSON object stored under name. An
// unset option is treated as empty.
func (c *APIClient) PatchOption(ctx context.Context, name string, patch map[string]any) error {
	current := map[string]any{}
	raw, err := c.GetOption(ctx, name)
	switch {
	case errors.Is(err, ErrOptionNotFound):
	case err != nil:
		return err
	case len(raw) > 0:
		if err = json.Unmarshal(raw, &current); err != nil || current == nil {
			current = map[string]any{}
		}
	}
	return c.SetOption(ctx, name, DeepMerge(current, patch))
}

// document is a request body sent as is.
type document struct {
	contentType string
	data        []byte
}

type policyBody struct {
	Markdown string `json:"markdown"`
}

// ImportPrivacyPolicy uploads an HTML or plain text document as the privacy
// policy and returns the Markdown the site stored. The other privacy
// settings are kept.
func (c *APIClient) ImportPrivacyPolicy(ctx context.Context, contentType string, data []byte) (string, error) {
	var body policyBody
	err := c.do(ctx, "import privacy policy", http.MethodPut, "/dokan/v1/privacy-policy",
		document{contentType: contentType, data: data}, &body)
	return body.Markdown, err
}

// Module is a marketplace module and its state.
type Module struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ListModules returns every module. The lite tier has none.
func (c *APIClient) ListModules(ctx context.Context) ([]Module, error) {
	var mods []Module
	err := c.do(ctx, "list modules", http.MethodGet, "/dokan/v1/admin/modules", nil, &mods)
	return mods, err
}

// ActiveModules returns the IDs of the active modules.
func (c *APIClient) ActiveModules(ctx context.Context) ([]string, error) {
	mods, err := c.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	var active []string
	for _, mod := range mods {
		if mod.Active {
			active = append(active, mod.ID)
		}
	}
	return active, nil
}

type moduleRequest struct {
	Module []string `json:"module"`
}

// ActivateModules turns on each module.
func (c *APIClient) ActivateModules(ctx context.Context, ids ...string) error {
	return c.toggleModules(ctx, "activate", ids)
}

// DeactivateModules turns off each module.
func (c *APIClient) DeactivateModules(ctx context.Context, ids ...string) error {
	return c.toggleModules(ctx, "deactivate", ids)
}

func (c *APIClient) toggleModules(ctx context.Context, action string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.do(ctx, action+" modules", http.MethodPut, "/dokan/v1/admin/modules/"+action, moduleRequest{Module: ids}, nil)
}

// Coupon is a store coupon.
type Coupon struct {
	ID           uint64 `json:"id,omitempty"`
	Code         string `json:"code"`
	Amount       string `json:"amount"`
	DiscountType string `json:"discount_type,omitempty"`
}

// CreateCoupon creates a coupon and returns it with its ID.
func (c *APIClient) CreateCoupon(ctx context.Context, coupon Coupon) (Coupon, error) {
	var out Coupon
	err := c.do(ctx, "create coupon", http.MethodPost, "/wc/v3/coupons", coupon, &out)
	return out, err
}

// DeleteCoupon removes a coupon.
func (c *APIClient) DeleteCoupon(ctx context.Context, id uint64) error {
	return c.do(ctx, "delete coupon", http.MethodDelete, "/wc/v3/coupons/"+strconv.FormatUint(id, 10), nil, nil)
}

// TaxRate is a store tax rate.
type TaxRate struct {
	ID      uint64 `json:"id,omitempty"`
	Country string `json:"country"`
	Rate    string `json:"rate"`
	Name    string `json:"name"`
	Class   string `json:"class,omitempty"`
}

// CreateTaxRate creates a tax rate and returns it with its ID.
func (c *APIClient) CreateTaxRate(ctx context.Context, rate TaxRate) (TaxRate, error) {
	var out TaxRate
	err := c.do(ctx, "create tax rate", http.MethodPost, "/wc/v3/taxes", rate, &out)
	return out, err
}

// DeleteTaxRate removes a tax rate.
func (c *APIClient) DeleteTaxRate(ctx context.Context, id uint64) error {
	return c.do(ctx, "delete tax rate", http.MethodDelete, "/wc/v3/taxes/"+strconv.FormatUint(id, 10), nil, nil)
}
