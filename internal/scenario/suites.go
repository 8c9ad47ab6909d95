package scenario

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/fixture"
	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/pages"
	"github.com/stolasapp/mercato/internal/testdata"
)

// Suites returns every suite of the marketplace, in the order they are
// reported. vendorID scopes the suites that mutate the vendor's profile.
func Suites(vendorID uint64) []*Suite {
	return []*Suite{
		authSuite(),
		settingsSuite(),
		paymentsSuite(),
		modulesSuite(),
		vendorPaymentsSuite(vendorID),
		withdrawSuite(vendorID),
		wizardSuite(),
		privacySuite(),
	}
}

// settingsOptions are the options behind every settings section.
var settingsOptions = []string{
	testdata.OptionGeneral,
	testdata.OptionSelling,
	testdata.OptionWithdraw,
	testdata.OptionReverseWithdraw,
	testdata.OptionPages,
	testdata.OptionAppearance,
	testdata.OptionPrivacy,
	testdata.OptionStoreSupport,
}

func optionResources(names ...string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = harness.OptionResource(name)
	}
	return out
}

// expectLiteTrace fails when page touched a pro-only locator on a lite site.
// Asserting a pro locator is absent does not count as touching it.
func expectLiteTrace(page *harness.Page, caps harness.Capabilities) error {
	if caps.Pro() {
		return nil
	}
	return liteTrace(page.Trace())
}

func liteTrace(trace []harness.TraceEntry) error {
	var errs []error
	for _, entry := range trace {
		if entry.Tier != locator.Pro || entry.Op == harness.OpNotToBeVisible {
			continue
		}
		errs = append(errs, &failure.AssertionFailure{
			Op:       "lite trace",
			Locator:  entry.Locator,
			Expected: locator.Lite,
			Actual:   entry.Tier,
		})
	}
	return errors.Join(errs...)
}

func authSuite() *Suite {
	return &Suite{
		Name:  "auth",
		Tags:  []Tag{TagLite},
		Roles: []locator.Role{locator.Guest},
		Scenarios: []Scenario{
			{
				Name: "vendor can log in and out",
				Tags: []Tag{TagVendor},
				Run: func(ctx context.Context, env *Env) error {
					login := pages.NewLoginPage(env.Page(locator.Guest))
					if err := login.Login(ctx, env.Accounts.Vendor); err != nil {
						return err
					}
					return login.Logout(ctx)
				},
			},
			{
				Name: "wrong password is rejected",
				Run: func(ctx context.Context, env *Env) error {
					creds := env.Accounts.Vendor
					creds.Password += env.Data.Suffix()
					return pages.NewLoginPage(env.Page(locator.Guest)).LoginRejected(ctx, creds)
				},
			},
		},
	}
}

// roundTripScenario saves bundle through the form and expects to read it
// back field for field.
func roundTripScenario(name string, bundle any, tags ...Tag) Scenario {
	return Scenario{
		Name: name + " settings round trip",
		Tags: tags,
		Run: func(ctx context.Context, env *Env) error {
			return pages.NewSettingsPage(env.Page(locator.Admin), *env.Caps).RoundTrip(ctx, bundle)
		},
	}
}

func settingsSuite() *Suite {
	return &Suite{
		Name:      "settings",
		Tags:      []Tag{TagAdmin},
		Roles:     []locator.Role{locator.Admin},
		Resources: optionResources(settingsOptions...),
		Scope:     fixture.Scope{Options: settingsOptions},
		Scenarios: []Scenario{
			{
				Name: "settings render properly",
				Tags: []Tag{TagLite},
				Run: func(ctx context.Context, env *Env) error {
					return pages.NewSettingsPage(env.Page(locator.Admin), *env.Caps).RenderProperly(ctx)
				},
			},
			{
				Name: "search finds a setting",
				Tags: []Tag{TagLite},
				Run: func(ctx context.Context, env *Env) error {
					return pages.NewSettingsPage(env.Page(locator.Admin), *env.Caps).Search(ctx, testdata.DefaultSearch())
				},
			},
			{
				Name: "back to top returns to the top",
				Tags: []Tag{TagLite, TagExploratory},
				Run: func(ctx context.Context, env *Env) error {
					return pages.NewSettingsPage(env.Page(locator.Admin), *env.Caps).ScrollToTop(ctx)
				},
			},
			roundTripScenario("general", testdata.DefaultGeneral(), TagLite),
			roundTripScenario("selling", testdata.DefaultSelling(), TagLite),
			roundTripScenario("withdraw", testdata.DefaultWithdraw(), TagLite),
			roundTripScenario("reverse withdrawal", testdata.DefaultReverseWithdraw(), TagLite),
			roundTripScenario("page", testdata.DefaultPages(), TagLite),
			roundTripScenario("appearance", testdata.DefaultAppearance(), TagLite),
			roundTripScenario("privacy policy", testdata.DefaultPrivacyPolicy(), TagLite),
			{
				Name: "lite settings never touch pro fields",
				Tags: []Tag{TagLite},
				Run: func(_ context.Context, env *Env) error {
					return expectLiteTrace(env.Page(locator.Admin), *env.Caps)
				},
			},
		},
	}
}

func paymentsSuite() *Suite {
	options := []string{testdata.OptionWCGeneral}
	for _, id := range testdata.BasicGateways {
		options = append(options, testdata.GatewayOption(id))
	}
	for _, id := range testdata.PaymentModules {
		options = append(options, testdata.GatewayOption(id))
	}
	return &Suite{
		Name:      "payments",
		Tags:      []Tag{TagAdmin},
		Roles:     []locator.Role{locator.Admin},
		Resources: append(optionResources(options...), harness.ModulesResource),
		Scope:     fixture.Scope{Options: options, Groups: []string{"general"}, Modules: true},
		Scenarios: []Scenario{
			{
				Name: "store currency can be changed",
				Tags: []Tag{TagLite},
				Run: func(ctx context.Context, env *Env) error {
					pp := pages.NewPaymentsPage(env.Page(locator.Admin), *env.Caps)
					if err := pp.SetCurrency(ctx, testdata.EUR); err != nil {
						return err
					}
					got, err := pp.Currency(ctx)
					if err != nil {
						return err
					}
					if got != testdata.EUR.Code {
						return &failure.AssertionFailure{Op: "currency", Expected: testdata.EUR.Code, Actual: got}
					}
					return nil
				},
			},
			{
				Name: "basic payment methods can be enabled",
				Tags: []Tag{TagLite},
				Run: func(ctx context.Context, env *Env) error {
					return pages.NewPaymentsPage(env.Page(locator.Admin), *env.Caps).
						SetupBasicPaymentMethods(ctx, testdata.DefaultPayments())
				},
			},
			{
				Name: "module gateways are hidden on lite",
				Tags: []Tag{TagLite},
				Run: func(ctx context.Context, env *Env) error {
					if env.Caps.Pro() {
						return nil
					}
					pp := pages.NewPaymentsPage(env.Page(locator.Admin), *env.Caps)
					for _, module := range sortedPaymentModules() {
						if err := pp.VerifyModuleGateway(ctx, module, false); err != nil {
							return err
						}
					}
					return nil
				},
			},
			{
				Name: "module gateways follow their module",
				Tags: []Tag{TagPro},
				Run: func(ctx context.Context, env *Env) error {
					for _, module := range sortedPaymentModules() {
						if err := moduleGatewayJourney(ctx, env, module); err != nil {
							return fmt.Errorf("%s: %w", module, err)
						}
					}
					return nil
				},
			},
		},
	}
}

func sortedPaymentModules() []string {
	var out []string
	for _, module := range testdata.Modules {
		if _, ok := testdata.PaymentModules[module]; ok {
			out = append(out, module)
		}
	}
	return out
}

// moduleGatewayJourney activates module out of band, configures its gateway
// and expects the gateway to disappear once the module is off again.
func moduleGatewayJourney(ctx context.Context, env *Env, module string) error {
	if err := env.API.ActivateModules(ctx, module); err != nil {
		return err
	}
	if err := env.RefreshCapabilities(ctx); err != nil {
		return err
	}
	pp := pages.NewPaymentsPage(env.Page(locator.Admin), *env.Caps)
	if err := pp.VerifyModuleGateway(ctx, module, true); err != nil {
		return err
	}
	if err := pp.SetupGateway(ctx, env.Data.Gateway(module)); err != nil {
		return err
	}
	if err := env.API.DeactivateModules(ctx, module); err != nil {
		return err
	}
	if err := env.RefreshCapabilities(ctx); err != nil {
		return err
	}
	return pages.NewPaymentsPage(env.Page(locator.Admin), *env.Caps).VerifyModuleGateway(ctx, module, false)
}

func modulesSuite() *Suite {
	return &Suite{
		Name:  "modules",
		Tags:  []Tag{TagAdmin},
		Roles: []locator.Role{locator.Admin},
		Resources: []string{
			harness.ModulesResource,
			harness.OptionResource(testdata.OptionStoreSupport),
		},
		Scope: fixture.Scope{Options: []string{testdata.OptionStoreSupport}, Modules: true},
		Scenarios: []Scenario{
			{
				Name: "modules page renders properly",
				Tags: []Tag{TagLite},
				Run: func(ctx context.Context, env *Env) error {
					return pages.NewModulesPage(env.Page(locator.Admin), env.Caps).RenderProperly(ctx)
				},
			},
			{
				Name: "store support settings follow the module",
				Tags: []Tag{TagPro},
				Run:  storeSupportJourney,
			},
			{
				Name: "stripe can be toggled from the modules page",
				Tags: []Tag{TagPro},
				Run: func(ctx context.Context, env *Env) error {
					mp := pages.NewModulesPage(env.Page(locator.Admin), env.Caps)
					if _, err := mp.Activate(ctx, testdata.ModuleStripe); err != nil {
						return err
					}
					if err := pages.NewPaymentsPage(env.Page(locator.Admin), *env.Caps).
						VerifyModuleGateway(ctx, testdata.ModuleStripe, true); err != nil {
						return err
					}
					if _, err := mp.Deactivate(ctx, testdata.ModuleStripe); err != nil {
						return err
					}
					return pages.NewPaymentsPage(env.Page(locator.Admin), *env.Caps).
						VerifyModuleGateway(ctx, testdata.ModuleStripe, false)
				},
			},
		},
	}
}

func storeSupportJourney(ctx context.Context, env *Env) error {
	if err := env.API.ActivateModules(ctx, testdata.ModuleStoreSupport); err != nil {
		return err
	}
	if err := env.RefreshCapabilities(ctx); err != nil {
		return err
	}
	sp := pages.NewSettingsPage(env.Page(locator.Admin), *env.Caps)
	if err := sp.SectionVisible(ctx, pages.SectionStoreSupport); err != nil {
		return err
	}
	if err := sp.RoundTrip(ctx, testdata.DefaultStoreSupport()); err != nil {
		return err
	}

	if err := env.API.DeactivateModules(ctx, testdata.ModuleStoreSupport); err != nil {
		return err
	}
	if err := env.RefreshCapabilities(ctx); err != nil {
		return err
	}
	sp = pages.NewSettingsPage(env.Page(locator.Admin), *env.Caps)
	if err := sp.SectionVisible(ctx, pages.SectionStoreSupport); err != nil {
		return err
	}
	err := sp.SetStoreSupport(ctx, testdata.DefaultStoreSupport())
	if !errors.Is(err, pages.ErrUnavailable) {
		return &failure.AssertionFailure{
			Op:       "store support without module",
			Expected: pages.ErrUnavailable,
			Actual:   err,
		}
	}
	return nil
}

// enableWithdrawMethods turns on every payout method the tier offers so the
// vendor forms exist.
func enableWithdrawMethods(ctx context.Context, env *Env) error {
	methods := map[string]any{
		pages.MethodPaypal: "on",
		pages.MethodBank:   "on",
	}
	if env.Caps.Pro() {
		methods[pages.MethodSkrill] = "on"
		methods[pages.MethodCustom] = "on"
	}
	return env.API.PatchOption(ctx, testdata.OptionWithdraw, map[string]any{"withdraw_methods": methods})
}

func vendorPaymentsSuite(vendorID uint64) *Suite {
	return &Suite{
		Name:  "vendor payments",
		Tags:  []Tag{TagVendor},
		Roles: []locator.Role{locator.Vendor},
		Resources: []string{
			harness.UserResource(vendorID),
			harness.OptionResource(testdata.OptionWithdraw),
		},
		Scope: fixture.Scope{
			Options: []string{testdata.OptionWithdraw},
			Meta:    []fixture.MetaKey{{UserID: vendorID, Key: testdata.MetaProfileSettings}},
		},
		BeforeAll: enableWithdrawMethods,
		Scenarios: []Scenario{
			{
				Name: "payment methods render properly",
				Tags: []Tag{TagLite},
				Run: func(ctx context.Context, env *Env) error {
					methods := []string{pages.MethodPaypal, pages.MethodBank}
					if env.Caps.Pro() {
						methods = append(methods, pages.MethodSkrill, pages.MethodCustom)
					}
					return pages.NewVendorPaymentsPage(env.Page(locator.Vendor), *env.Caps).RenderProperly(ctx, methods...)
				},
			},
			{
				Name: "paypal can be added and removed",
				Tags: []Tag{TagLite},
				Run: func(ctx context.Context, env *Env) error {
					vp := pages.NewVendorPaymentsPage(env.Page(locator.Vendor), *env.Caps)
					if err := vp.AddBasicPayment(ctx, env.Data.PaypalAccount()); err != nil {
						return err
					}
					return vp.RemoveBasicPayment(ctx, pages.MethodPaypal)
				},
			},
			{
				Name: "bank transfer can be added and removed",
				Tags: []Tag{TagLite},
				Run: func(ctx context.Context, env *Env) error {
					vp := pages.NewVendorPaymentsPage(env.Page(locator.Vendor), *env.Caps)
					if err := vp.AddBankTransfer(ctx, env.Data.BankAccount()); err != nil {
						return err
					}
					return vp.RemoveBankTransfer(ctx)
				},
			},
			{
				Name: "bank transfer needs the declaration",
				Tags: []Tag{TagLite},
				Run: func(ctx context.Context, env *Env) error {
					return pages.NewVendorPaymentsPage(env.Page(locator.Vendor), *env.Caps).
						AddBankTransferRejected(ctx, env.Data.BankAccount())
				},
			},
			{
				Name: "skrill can be added and removed",
				Tags: []Tag{TagPro},
				Run: func(ctx context.Context, env *Env) error {
					vp := pages.NewVendorPaymentsPage(env.Page(locator.Vendor), *env.Caps)
					if err := vp.AddBasicPayment(ctx, env.Data.SkrillAccount()); err != nil {
						return err
					}
					return vp.RemoveBasicPayment(ctx, pages.MethodSkrill)
				},
			},
			{
				Name: "custom method can be added and removed",
				Tags: []Tag{TagPro},
				Run: func(ctx context.Context, env *Env) error {
					vp := pages.NewVendorPaymentsPage(env.Page(locator.Vendor), *env.Caps)
					if err := vp.AddBasicPayment(ctx, env.Data.CustomAccount()); err != nil {
						return err
					}
					return vp.RemoveBasicPayment(ctx, pages.MethodCustom)
				},
			},
		},
	}
}

// withdrawAmount is below the default minimum and within the seeded balance.
const withdrawAmount = "10"

func withdrawSuite(vendorID uint64) *Suite {
	return &Suite{
		Name:  "withdraw",
		Tags:  []Tag{TagVendor, TagLite},
		Roles: []locator.Role{locator.Admin, locator.Vendor},
		Resources: []string{
			harness.UserResource(vendorID),
			harness.OptionResource(testdata.OptionWithdraw),
		},
		Scope: fixture.Scope{
			Options: []string{testdata.OptionWithdraw},
			Meta: []fixture.MetaKey{
				{UserID: vendorID, Key: testdata.MetaProfileSettings},
			},
		},
		BeforeAll: func(ctx context.Context, env *Env) error {
			if err := enableWithdrawMethods(ctx, env); err != nil {
				return err
			}
			if env.DB == nil {
				return failure.Fixture("configure vendor paypal", "user meta", errors.New("no database configured"))
			}
			return env.DB.UpdateUserMeta(ctx, env.Accounts.VendorID, testdata.MetaProfileSettings, map[string]any{
				"payment": map[string]any{
					pages.MethodPaypal: map[string]any{"email": env.Data.PaypalAccount().Email},
				},
			})
		},
		Scenarios: []Scenario{
			{
				Name: "request below the minimum is rejected",
				Run: func(ctx context.Context, env *Env) error {
					return withdrawAgainstMinimum(ctx, env, "50", false)
				},
			},
			{
				Name: "request succeeds without a minimum",
				Run: func(ctx context.Context, env *Env) error {
					return withdrawAgainstMinimum(ctx, env, "0", true)
				},
			},
		},
	}
}

// withdrawAgainstMinimum sets the minimum as admin, then requests
// withdrawAmount as the vendor and expects it to pass or be rejected.
func withdrawAgainstMinimum(ctx context.Context, env *Env, minimum string, accepted bool) error {
	if err := pages.NewSettingsPage(env.Page(locator.Admin), *env.Caps).SetMinimumWithdraw(ctx, minimum); err != nil {
		return err
	}
	wp := pages.NewWithdrawPage(env.Page(locator.Vendor))
	shown, err := wp.MinimumAmount(ctx)
	if err != nil {
		return err
	}
	if want := visibleMinimum(minimum); shown != want {
		return &failure.AssertionFailure{Op: "minimum withdraw", Expected: want, Actual: shown}
	}
	req := testdata.WithdrawRequest{
		Amount:         withdrawAmount,
		Method:         pages.MethodPaypal,
		SuccessMessage: testdata.WithdrawRequested,
	}
	if accepted {
		return wp.RequestWithdraw(ctx, req)
	}
	return wp.RequestWithdrawRejected(ctx, req, testdata.WithdrawMinimumText+" "+minimum)
}

// visibleMinimum is what the withdraw page shows for minimum; a zero minimum
// is not shown.
func visibleMinimum(minimum string) string {
	if v, err := strconv.ParseFloat(minimum, 64); err == nil && v <= 0 {
		return ""
	}
	return minimum
}

func wizardSuite() *Suite {
	options := []string{testdata.OptionGeneral, testdata.OptionSelling, testdata.OptionWithdraw}
	return &Suite{
		Name:      "setup wizard",
		Tags:      []Tag{TagAdmin, TagLite},
		Roles:     []locator.Role{locator.Admin},
		Resources: optionResources(options...),
		Scope:     fixture.Scope{Options: options},
		Scenarios: []Scenario{
			{
				Name: "wizard configures the marketplace",
				Run: func(ctx context.Context, env *Env) error {
					wizard := testdata.DefaultSetupWizard()
					if err := pages.NewSetupWizardPage(env.Page(locator.Admin), *env.Caps).Run(ctx, wizard); err != nil {
						return err
					}
					got, err := pages.NewSettingsPage(env.Page(locator.Admin), *env.Caps).ReadWithdraw(ctx)
					if err != nil {
						return err
					}
					if got.MinimumWithdrawAmount != wizard.MinimumWithdrawLimit {
						return &failure.AssertionFailure{
							Op:       "wizard minimum withdraw",
							Expected: wizard.MinimumWithdrawLimit,
							Actual:   got.MinimumWithdrawAmount,
						}
					}
					return nil
				},
			},
			{
				Name: "store step can be skipped",
				Run: func(ctx context.Context, env *Env) error {
					return pages.NewSetupWizardPage(env.Page(locator.Admin), *env.Caps).Skip(ctx, pages.StepStore)
				},
			},
		},
	}
}

func privacySuite() *Suite {
	return &Suite{
		Name:      "privacy policy",
		Tags:      []Tag{TagLite, TagCustomer},
		Roles:     []locator.Role{locator.Admin, locator.Guest},
		Resources: optionResources(testdata.OptionPrivacy),
		Scope:     fixture.Scope{Options: []string{testdata.OptionPrivacy}},
		Scenarios: []Scenario{
			{
				Name: "published policy is shown to visitors",
				Run: func(ctx context.Context, env *Env) error {
					policy := testdata.DefaultPrivacyPolicy()
					if err := pages.NewSettingsPage(env.Page(locator.Admin), *env.Caps).SetPrivacyPolicy(ctx, policy); err != nil {
						return err
					}
					got, err := pages.NewStorefrontPage(env.Page(locator.Guest)).PrivacyPolicy(ctx)
					if err != nil {
						return err
					}
					if got != policy.Content {
						return &failure.AssertionFailure{Op: "privacy policy", Expected: policy.Content, Actual: got}
					}
					return nil
				},
			},
			{
				Name: "disabled policy is not published",
				Run: func(ctx context.Context, env *Env) error {
					policy := testdata.DefaultPrivacyPolicy()
					policy.Enable = false
					if err := pages.NewSettingsPage(env.Page(locator.Admin), *env.Caps).SetPrivacyPolicy(ctx, policy); err != nil {
						return err
					}
					return pages.NewStorefrontPage(env.Page(locator.Guest)).PrivacyPolicyUnpublished(ctx)
				},
			},
			{
				Name: "imported policy is shown to visitors",
				Run: func(ctx context.Context, env *Env) error {
					doc := testdata.ImportedPrivacyPolicy()
					if err := env.API.PatchOption(ctx, testdata.OptionPrivacy, map[string]any{"enable_privacy": "on"}); err != nil {
						return err
					}
					if _, err := env.API.ImportPrivacyPolicy(ctx, doc.ContentType, doc.Data); err != nil {
						return err
					}
					got, err := pages.NewStorefrontPage(env.Page(locator.Guest)).PrivacyPolicyText(ctx)
					if err != nil {
						return err
					}
					if got != doc.Text {
						return &failure.AssertionFailure{Op: "imported privacy policy", Expected: doc.Text, Actual: got}
					}
					return nil
				},
			},
		},
	}
}
