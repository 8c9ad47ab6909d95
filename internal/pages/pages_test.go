package pages

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/selector"
	"github.com/stolasapp/mercato/internal/testdata"
)

// leaves returns the address of every string and bool field of v, skipping
// the fields no form control holds.
func leaves(v reflect.Value, out []uintptr) []uintptr {
	for i := range v.NumField() {
		name := v.Type().Field(i).Name
		if name == "SettingTitle" || name == "SaveSuccessMessage" {
			continue
		}
		f := v.Field(i)
		switch f.Kind() {
		case reflect.Struct:
			out = leaves(f, out)
		case reflect.String, reflect.Bool:
			out = append(out, f.Addr().Pointer())
		default:
		}
	}
	return out
}

func bound(plan []field) []uintptr {
	out := make([]uintptr, 0, len(plan))
	for _, f := range plan {
		if f.str != nil {
			out = append(out, reflect.ValueOf(f.str).Pointer())
		} else {
			out = append(out, reflect.ValueOf(f.on).Pointer())
		}
	}
	return out
}

func TestPlansBindEveryField(t *testing.T) {
	t.Parallel()

	var (
		general  testdata.GeneralSettings
		selling  testdata.SellingSettings
		withdraw testdata.WithdrawSettings
		reverse  testdata.ReverseWithdrawSettings
		pages    testdata.PageSettings
		looks    testdata.AppearanceSettings
		privacy  testdata.PrivacyPolicySettings
		support  testdata.StoreSupportSettings
		wizard   testdata.SetupWizard
	)
	var wizardPlan []field
	wizardPlan = append(wizardPlan, storeStepPlan(&wizard)...)
	wizardPlan = append(wizardPlan, sellingStepPlan(&wizard)...)
	wizardPlan = append(wizardPlan, withdrawStepPlan(&wizard)...)
	// The ready message is asserted, not typed.
	wizardLeaves := leaves(reflect.ValueOf(&wizard).Elem(), nil)
	wizardLeaves = wizardLeaves[:len(wizardLeaves)-1]

	tests := []struct {
		name string
		want []uintptr
		plan []field
	}{
		{"general", leaves(reflect.ValueOf(&general).Elem(), nil), generalPlan(&general)},
		{"selling", leaves(reflect.ValueOf(&selling).Elem(), nil), sellingPlan(&selling)},
		{"withdraw", leaves(reflect.ValueOf(&withdraw).Elem(), nil), withdrawPlan(&withdraw)},
		{"reverse withdrawal", leaves(reflect.ValueOf(&reverse).Elem(), nil), reverseWithdrawPlan(&reverse)},
		{"pages", leaves(reflect.ValueOf(&pages).Elem(), nil), pagesPlan(&pages)},
		{"appearance", leaves(reflect.ValueOf(&looks).Elem(), nil), appearancePlan(&looks)},
		{"privacy policy", leaves(reflect.ValueOf(&privacy).Elem(), nil), privacyPlan(&privacy)},
		{"store support", leaves(reflect.ValueOf(&support).Elem(), nil), storeSupportPlan(&support)},
		{"setup wizard", wizardLeaves, wizardPlan},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.ElementsMatch(t, test.want, bound(test.plan))
		})
	}
}

func TestPlansTargetAdmin(t *testing.T) {
	t.Parallel()

	var (
		general testdata.GeneralSettings
		support testdata.StoreSupportSettings
	)
	for _, f := range append(generalPlan(&general), storeSupportPlan(&support)...) {
		assert.Equal(t, locator.Admin, f.loc.Role, f.loc.Name)
	}
	for _, f := range storeSupportPlan(&support) {
		assert.Equal(t, testdata.ModuleStoreSupport, f.loc.Module, f.loc.Name)
	}
}

func TestLitePlanSkipsProFields(t *testing.T) {
	t.Parallel()

	lite := harness.NewCapabilities(locator.Lite)
	pro := harness.NewCapabilities(locator.Pro)
	withdraw := testdata.DefaultWithdraw()

	allowed := func(caps harness.Capabilities) int {
		n := 0
		for _, f := range withdrawPlan(&withdraw) {
			if caps.Allows(f.loc) {
				n++
			}
		}
		return n
	}
	assert.Equal(t, len(withdrawPlan(&withdraw)), allowed(pro))
	// Paypal, bank, both charges, the minimum and both order statuses.
	assert.Equal(t, 7, allowed(lite))
}

func TestChecksAssertSelectedPages(t *testing.T) {
	t.Parallel()

	caps := harness.NewCapabilities(locator.Lite)
	policy := testdata.DefaultPrivacyPolicy()
	var labels []check
	for _, c := range checks(caps, privacyPlan(&policy)) {
		if c.kind == checkLabel {
			labels = append(labels, c)
		}
	}
	require.Len(t, labels, 1)
	assert.Equal(t, selector.PrivacyPolicy.PrivacyPage.Name, labels[0].loc.Name)
	assert.Equal(t, "Privacy Policy", labels[0].str)

	var unset testdata.PageSettings
	assert.Empty(t, checks(caps, pagesPlan(&unset)), "empty selects are not asserted")

	set := testdata.PageSettings{Dashboard: "Dashboard", MyOrders: "My Orders"}
	assert.Len(t, checks(caps, pagesPlan(&set)), 2)
}

func TestCheckedOption(t *testing.T) {
	t.Parallel()

	loc := checkedOption(selector.General.StoreCategory)
	assert.Equal(t, `.radio-group[data-field="store_category_type"] input[type=radio]:checked`, loc.Query)
	assert.Equal(t, locator.Pro, loc.Tier)
	assert.Equal(t, "store category checked", loc.Name)
}

func TestWizardSteps(t *testing.T) {
	t.Parallel()

	next, err := nextStep(StepIntroduction)
	require.NoError(t, err)
	assert.Equal(t, StepStore, next)

	next, err = nextStep(StepWithdraw)
	require.NoError(t, err)
	assert.Equal(t, StepNextSteps, next)

	_, err = nextStep(StepNextSteps)
	require.Error(t, err)
	_, err = nextStep("shipping")
	require.Error(t, err)

	assert.Equal(t, "/admin/setup", stepPath(StepIntroduction))
	assert.Equal(t, "/admin/setup?step=selling", stepPath(StepSelling))
	assert.Regexp(t, stepResponse(StepSelling), "http://localhost:8080/admin/setup?step=selling")
	assert.NotRegexp(t, stepResponse(StepSelling), "http://localhost:8080/admin/setup?step=store")
}

func TestSectionPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/admin/settings/reverse_withdrawal", SectionPath(SectionReverseWithdraw))
	assert.Equal(t, "/admin/settings/page", SectionPath(SectionPages))
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	err := unavailable(selector.Modules.Toggle(testdata.ModuleStripe), harness.NewCapabilities(locator.Lite))
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "module toggle stripe")
}

func TestCompare(t *testing.T) {
	t.Parallel()

	want := testdata.DefaultAppearance()
	got := want
	got.StoreBannerWidth = "1200"
	lite := harness.NewCapabilities(locator.Lite)
	pro := harness.NewCapabilities(locator.Pro)

	require.NoError(t, compare(lite, appearancePlan(&want), appearancePlan(&got)))

	err := compare(pro, appearancePlan(&want), appearancePlan(&got))
	require.Error(t, err)
	var assertion *failure.AssertionFailure
	require.ErrorAs(t, err, &assertion)
	assert.Equal(t, "625", assertion.Expected)
	assert.Equal(t, "1200", assertion.Actual)

	got = want
	got.ContactSeller = false
	err = compare(lite, appearancePlan(&want), appearancePlan(&got))
	require.ErrorAs(t, err, &assertion)
	assert.Equal(t, true, assertion.Expected)
}
