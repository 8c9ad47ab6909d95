package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/testdata"
)

func TestAll(t *testing.T) {
	t.Parallel()

	all := All()
	require.NotEmpty(t, all)

	seen := map[string]bool{}
	for _, loc := range all {
		assert.NotEmpty(t, loc.Query, loc.Name)
		assert.False(t, seen[loc.Name], "duplicate locator name %q", loc.Name)
		seen[loc.Name] = true
	}
	assert.True(t, seen["minimum withdraw amount"])
	assert.True(t, seen["privacy policy content"])
	assert.False(t, seen["search result x"], "parametrized locators are not static")
}

func TestGating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		loc    locator.Locator
		tier   locator.Tier
		module string
	}{
		{"lite field", Withdraw.MinimumWithdrawAmount, locator.Lite, ""},
		{"pro field", Withdraw.Skrill, locator.Pro, ""},
		{"pro radio group", General.SellingProductTypes.Group, locator.Pro, ""},
		{"pro radio option", General.SellingProductTypes.Option("sell_digital"), locator.Pro, ""},
		{"lite radio option", Selling.ShippingFeeRecipient.Option("admin"), locator.Lite, ""},
		{"module field", StoreSupport.SupportButtonLabel, locator.Pro, testdata.ModuleStoreSupport},
		{"module menu", StoreSupport.MenuItem, locator.Pro, testdata.ModuleStoreSupport},
		{"pro payout", VendorPayments.Manage("skrill"), locator.Pro, ""},
		{"lite payout", VendorPayments.Manage("paypal"), locator.Lite, ""},
		{"module gateway field", WCGateway.PublishableKey("dokan-stripe-connect"), locator.Pro, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.tier, test.loc.Tier)
			assert.Equal(t, test.module, test.loc.Module)
		})
	}
}

func TestParams(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		`.radio-group[data-field="map_api_source"] label.radio-option[data-value="mapbox"]`,
		Appearance.MapAPISource.Option("mapbox").Query)
	assert.Equal(t,
		`nav.dokan-settings-menu a.menu-item[data-section="withdraw"]`,
		Settings.MenuItem("withdraw").Query)
	assert.Equal(t, "#woocommerce_bacs_title", WCGateway.GatewayTitle("bacs").Query)

	result := Settings.SearchResult("Minimum Withdraw Amount")
	assert.Equal(t, locator.Text, result.Strategy)
	assert.Equal(t, `^\s*Minimum Withdraw Amount`, result.Pattern)
}
