package fixture

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/site"
	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/testdata"
)

var admin = testdata.Credentials{Username: "admin", Password: "password"}

type env struct {
	api   *APIClient
	db    *DBClient
	store storage.Store
}

func newEnv(t *testing.T, pro bool) env {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store, err := storage.NewDB(t.Context(), filepath.Join(t.TempDir(), "fixture.sqlite"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, site.Seed(t.Context(), logger, store, site.Accounts{
		Admin:  admin,
		Vendor: testdata.Credentials{Username: "vendor", Password: "password"},
	}))
	srv, err := site.New(site.Config{Pro: pro}, logger, store)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	api, err := NewAPIClient(ts.URL+"/", admin, WithHTTPClient(ts.Client()), WithRateLimit(1000), WithLogger(logger))
	require.NoError(t, err)
	return env{api: api, db: NewDBClient(store), store: store}
}

func TestAPIClient(t *testing.T) {
	t.Parallel()

	t.Run("ping", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, true)
		info, err := e.api.Ping(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "pro", info.Tier)
	})

	t.Run("bad credentials", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, false)
		e.api.creds.Password = "wrong"
		_, err := e.api.Ping(t.Context())
		var setup *failure.FixtureSetupFailure
		require.ErrorAs(t, err, &setup)
		assert.Equal(t, http.StatusUnauthorized, setup.Status)
		assert.Equal(t, "GET /wp-json", setup.Endpoint)
		assert.Equal(t, failure.KindFixtureSetup, failure.KindOf(err))
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, false)
		ctx := t.Context()

		_, err := e.api.GetOption(ctx, testdata.OptionWithdraw)
		require.ErrorIs(t, err, ErrOptionNotFound)

		want := map[string]any{"withdraw_limit": "0"}
		require.NoError(t, e.api.SetOption(ctx, testdata.OptionWithdraw, want))
		require.NoError(t, e.api.SetOption(ctx, testdata.OptionWithdraw, want), "exact state is idempotent")
		raw, err := e.api.GetOption(ctx, testdata.OptionWithdraw)
		require.NoError(t, err)
		assert.JSONEq(t, `{"withdraw_limit":"0"}`, string(raw))

		require.NoError(t, e.api.DeleteOption(ctx, testdata.OptionWithdraw))
		_, err = e.api.GetOption(ctx, testdata.OptionWithdraw)
		require.ErrorIs(t, err, ErrOptionNotFound)
	})

	t.Run("batch", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, false)
		ctx := t.Context()
		require.NoError(t, e.api.UpdateBatchOptions(ctx, "general", map[string]string{"woocommerce_currency": "INR"}))
		values, err := e.api.GetBatchOptions(ctx, "general")
		require.NoError(t, err)
		assert.Equal(t, "INR", values["woocommerce_currency"])
	})

	t.Run("modules", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		lite := newEnv(t, false)
		err := lite.api.ActivateModules(ctx, testdata.ModuleStoreSupport)
		var setup *failure.FixtureSetupFailure
		require.ErrorAs(t, err, &setup)
		assert.Equal(t, http.StatusBadRequest, setup.Status)
		require.NoError(t, lite.api.ActivateModules(ctx), "no modules is a no-op")

		pro := newEnv(t, true)
		require.NoError(t, pro.api.ActivateModules(ctx, testdata.ModuleStoreSupport, testdata.ModuleStripe))
		active, err := pro.api.ActiveModules(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{testdata.ModuleStoreSupport, testdata.ModuleStripe}, active)

		require.NoError(t, pro.api.DeactivateModules(ctx, testdata.ModuleStripe))
		active, err = pro.api.ActiveModules(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{testdata.ModuleStoreSupport}, active)
	})

	t.Run("records", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, false)
		ctx := t.Context()

		coupon, err := e.api.CreateCoupon(ctx, Coupon{Code: "autumn", Amount: "5"})
		require.NoError(t, err)
		assert.NotZero(t, coupon.ID)
		require.NoError(t, e.api.DeleteCoupon(ctx, coupon.ID))
		require.Error(t, e.api.DeleteCoupon(ctx, coupon.ID))

		rate, err := e.api.CreateTaxRate(ctx, TaxRate{Country: "GB", Rate: "20.0000", Name: "VAT"})
		require.NoError(t, err)
		require.NoError(t, e.api.DeleteTaxRate(ctx, rate.ID))
	})

	t.Run("privacy policy import", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, false)
		ctx := t.Context()
		require.NoError(t, e.api.PatchOption(ctx, testdata.OptionPrivacy, map[string]any{"enable_privacy": "on"}))

		doc := testdata.ImportedPrivacyPolicy()
		markdown, err := e.api.ImportPrivacyPolicy(ctx, doc.ContentType, doc.Data)
		require.NoError(t, err)
		assert.Equal(t, "Données personnelles\n\nNous protégeons vos données.", markdown)

		raw, err := e.api.GetOption(ctx, testdata.OptionPrivacy)
		require.NoError(t, err)
		var stored map[string]string
		require.NoError(t, json.Unmarshal(raw, &stored))
		assert.Equal(t, "on", stored["enable_privacy"], "other settings are kept")
		assert.Equal(t, markdown, stored["privacy_policy"])

		page := []byte(`<html><head><meta charset="iso-8859-1"></head>` +
			"<body><h2>Vos donn\xe9es</h2><p>Texte</p></body></html>")
		markdown, err = e.api.ImportPrivacyPolicy(ctx, "text/html", page)
		require.NoError(t, err)
		assert.Contains(t, markdown, "Vos données")
		assert.NotContains(t, markdown, "<h2>")

		_, err = e.api.ImportPrivacyPolicy(ctx, "application/pdf", []byte("%PDF"))
		var setup *failure.FixtureSetupFailure
		require.ErrorAs(t, err, &setup)
		assert.Equal(t, http.StatusUnsupportedMediaType, setup.Status)
	})
}

func TestDBClient(t *testing.T) {
	t.Parallel()
	e := newEnv(t, false)
	ctx := t.Context()

	vendorID, err := e.db.UserID(ctx, "vendor")
	require.NoError(t, err)
	_, err = e.db.UserID(ctx, "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = e.db.GetUserMeta(ctx, vendorID, testdata.MetaProfileSettings)
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, failure.KindFixtureSetup, failure.KindOf(err))

	require.NoError(t, e.db.SetUserMeta(ctx, vendorID, testdata.MetaProfileSettings, map[string]any{
		"store_name": "Vendor Store",
		"payment": map[string]any{
			"bank": map[string]any{"ac_name": "Vendor", "ac_number": "1234"},
		},
	}))
	require.NoError(t, e.db.UpdateUserMeta(ctx, vendorID, testdata.MetaProfileSettings, map[string]any{
		"payment": map[string]any{"paypal": map[string]any{"email": "paypal@g.c"}},
	}))

	raw, err := e.db.GetUserMeta(ctx, vendorID, testdata.MetaProfileSettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"store_name": "Vendor Store",
		"payment": {
			"bank": {"ac_name": "Vendor", "ac_number": "1234"},
			"paypal": {"email": "paypal@g.c"}
		}
	}`, raw)

	require.NoError(t, e.db.SetUserMeta(ctx, vendorID, site.MetaBalance, "250"))
	balance, err := e.db.GetUserMeta(ctx, vendorID, site.MetaBalance)
	require.NoError(t, err)
	assert.Equal(t, "250", balance)

	require.NoError(t, e.db.DeleteUserMeta(ctx, vendorID, testdata.MetaProfileSettings))
	require.NoError(t, e.db.UpdateUserMeta(ctx, vendorID, testdata.MetaProfileSettings, map[string]any{"a": 1}))
	raw, err = e.db.GetUserMeta(ctx, vendorID, testdata.MetaProfileSettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, raw)
}

func TestDeepMerge(t *testing.T) {
	t.Parallel()

	dst := map[string]any{
		"keep":   "x",
		"nested": map[string]any{"a": 1, "b": map[string]any{"c": 2}},
		"list":   []any{1, 2},
	}
	src := map[string]any{
		"nested": map[string]any{"b": map[string]any{"d": 3}},
		"list":   []any{3},
		"scalar": map[string]any{"now": "object"},
	}
	got := DeepMerge(dst, src)
	assert.Equal(t, map[string]any{
		"keep":   "x",
		"nested": map[string]any{"a": 1, "b": map[string]any{"c": 2, "d": 3}},
		"list":   []any{3},
		"scalar": map[string]any{"now": "object"},
	}, got)
	assert.Equal(t, map[string]any{"c": 2}, dst["nested"].(map[string]any)["b"], "inputs untouched")
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	e := newEnv(t, true)
	ctx := t.Context()

	vendorID, err := e.db.UserID(ctx, "vendor")
	require.NoError(t, err)
	require.NoError(t, e.api.SetOption(ctx, testdata.OptionGeneral, map[string]string{"store_products_per_page": "12"}))
	require.NoError(t, e.api.ActivateModules(ctx, testdata.ModuleStripe))

	scope := Scope{
		Options: []string{testdata.OptionGeneral, testdata.OptionPrivacy},
		Groups:  []string{"general"},
		Meta:    []MetaKey{{vendorID, testdata.MetaProfileSettings}, {vendorID, site.MetaBalance}},
		Modules: true,
	}
	snap, err := Capture(ctx, e.api, e.db, scope)
	require.NoError(t, err)

	require.NoError(t, e.api.SetOption(ctx, testdata.OptionGeneral, map[string]string{"store_products_per_page": "99"}))
	require.NoError(t, e.api.SetOption(ctx, testdata.OptionPrivacy, map[string]string{"enable_privacy": "on"}))
	require.NoError(t, e.api.UpdateBatchOptions(ctx, "general", map[string]string{"woocommerce_currency": "GBP"}))
	require.NoError(t, e.db.SetUserMeta(ctx, vendorID, testdata.MetaProfileSettings, `{"payment":{}}`))
	require.NoError(t, e.db.SetUserMeta(ctx, vendorID, site.MetaBalance, "1"))
	require.NoError(t, e.api.DeactivateModules(ctx, testdata.ModuleStripe))
	require.NoError(t, e.api.ActivateModules(ctx, testdata.ModuleRazorpay))

	require.NoError(t, snap.Restore(ctx))

	raw, err := e.api.GetOption(ctx, testdata.OptionGeneral)
	require.NoError(t, err)
	var general map[string]string
	require.NoError(t, json.Unmarshal(raw, &general))
	assert.Equal(t, "12", general["store_products_per_page"])

	_, err = e.api.GetOption(ctx, testdata.OptionPrivacy)
	require.ErrorIs(t, err, ErrOptionNotFound)

	_, err = e.db.GetUserMeta(ctx, vendorID, testdata.MetaProfileSettings)
	require.ErrorIs(t, err, storage.ErrNotFound)
	balance, err := e.db.GetUserMeta(ctx, vendorID, site.MetaBalance)
	require.NoError(t, err)
	assert.Equal(t, "1000", balance)

	active, err := e.api.ActiveModules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testdata.ModuleStripe}, active)
}
