package pages

import (
	"context"
	"fmt"

	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/selector"
	"github.com/stolasapp/mercato/internal/testdata"
)

// Settings section identifiers, as they appear in the settings URL.
const (
	SectionGeneral         = "general"
	SectionSelling         = "selling"
	SectionWithdraw        = "withdraw"
	SectionReverseWithdraw = "reverse_withdrawal"
	SectionPages           = "page"
	SectionAppearance      = "appearance"
	SectionPrivacyPolicy   = "privacy_policy"
	SectionStoreSupport    = "store_support"
)

// settingsSaveResponse matches the AJAX request the save button sends.
const settingsSaveResponse = `admin-ajax\.php`

// SettingsPage is the marketplace settings screen.
type SettingsPage struct {
	page *harness.Page
	caps harness.Capabilities
}

func NewSettingsPage(p *harness.Page, caps harness.Capabilities) *SettingsPage {
	return &SettingsPage{page: p, caps: caps}
}

// SectionPath is the URL path of a settings section.
func SectionPath(section string) string {
	return testdata.SettingsPath + "/" + section
}

// Open shows a section, navigating only when another page is loaded, and
// waits for its title.
func (s *SettingsPage) Open(ctx context.Context, section, title string) error {
	if err := s.page.GoIfNotThere(ctx, SectionPath(section)); err != nil {
		return err
	}
	return s.page.ToContainText(ctx, selector.Settings.Title, title)
}

// RenderProperly checks the settings chrome and the section menu. The store
// support entry is expected exactly when its module is active.
func (s *SettingsPage) RenderProperly(ctx context.Context) error {
	p := s.page
	if err := p.GoIfNotThere(ctx, SectionPath(SectionGeneral)); err != nil {
		return err
	}
	err := p.MultipleElementVisible(ctx,
		selector.Settings.Header,
		selector.Settings.Menu,
		selector.Settings.Search,
		selector.Settings.Form,
		selector.Settings.Save,
		selector.Settings.MenuItem(SectionGeneral),
		selector.Settings.MenuItem(SectionSelling),
		selector.Settings.MenuItem(SectionWithdraw),
		selector.Settings.MenuItem(SectionReverseWithdraw),
		selector.Settings.MenuItem(SectionPages),
		selector.Settings.MenuItem(SectionAppearance),
		selector.Settings.MenuItem(SectionPrivacyPolicy),
	)
	if err != nil {
		return err
	}
	return s.SectionVisible(ctx, SectionStoreSupport)
}

// SectionVisible asserts a section's menu entry is shown exactly when the
// site's capabilities allow it.
func (s *SettingsPage) SectionVisible(ctx context.Context, section string) error {
	item := selector.Settings.MenuItem(section)
	if section == SectionStoreSupport {
		item = selector.StoreSupport.MenuItem
	}
	if s.caps.Allows(item) {
		return s.page.ToBeVisible(ctx, item)
	}
	return s.page.NotToBeVisible(ctx, item)
}

// Search types query into the settings search, follows the matching result
// and expects the field label to be shown.
func (s *SettingsPage) Search(ctx context.Context, q testdata.SearchQuery) error {
	p := s.page
	if err := p.GoIfNotThere(ctx, SectionPath(SectionGeneral)); err != nil {
		return err
	}
	if err := p.ClearAndType(ctx, selector.Settings.SearchBox, q.Query); err != nil {
		return err
	}
	if err := p.Click(ctx, selector.Settings.SearchResult(q.ExpectedLabel)); err != nil {
		return err
	}
	return p.ToBeVisible(ctx, selector.Settings.FieldLabel(q.ExpectedLabel))
}

// ScrollToTop scrolls to the bottom of a section and uses the back to top
// button to return. The button only appears once a scroll event has been
// handled, so the whole sequence is retried.
func (s *SettingsPage) ScrollToTop(ctx context.Context) error {
	p := s.page
	if err := p.GoIfNotThere(ctx, SectionPath(SectionGeneral)); err != nil {
		return err
	}
	return p.ToPass(ctx, func(ctx context.Context) error {
		if err := p.ScrollToBottom(ctx); err != nil {
			return err
		}
		if err := p.ToBeVisible(ctx, selector.Settings.BackToTopVisible); err != nil {
			return err
		}
		if err := p.Click(ctx, selector.Settings.BackToTop); err != nil {
			return err
		}
		if err := p.NotToBeVisible(ctx, selector.Settings.BackToTopVisible); err != nil {
			return err
		}
		y, err := p.ScrollY(ctx)
		if err != nil {
			return err
		}
		if y != 0 {
			return fmt.Errorf("scrolled to %v, not to the top", y)
		}
		return nil
	})
}

// save fills a section and saves it, expecting the success notice and the
// saved values to remain in the form.
func (s *SettingsPage) save(ctx context.Context, section, title, message string, plan []field) error {
	if err := s.Open(ctx, section, title); err != nil {
		return err
	}
	if err := fill(ctx, s.page, s.caps, plan); err != nil {
		return fmt.Errorf("%s settings: %w", section, err)
	}
	if err := s.page.ClickAndWaitForResponseAndLoadState(ctx, settingsSaveResponse, selector.Settings.Save); err != nil {
		return err
	}
	if err := s.page.ToContainText(ctx, selector.Settings.Notice, message); err != nil {
		return err
	}
	return verify(ctx, s.page, s.caps, plan)
}

// load reads a section from a fresh document so only persisted values are
// observed.
func (s *SettingsPage) load(ctx context.Context, section, title string, plan []field) error {
	if err := s.page.Goto(ctx, SectionPath(section)); err != nil {
		return err
	}
	if err := s.page.ToContainText(ctx, selector.Settings.Title, title); err != nil {
		return err
	}
	if err := read(ctx, s.page, s.caps, plan); err != nil {
		return fmt.Errorf("%s settings: %w", section, err)
	}
	return nil
}

func generalPlan(v *testdata.GeneralSettings) []field {
	g := selector.General
	return []field{
		switcher(g.AdminAreaAccess, &v.AdminAreaAccess),
		text(g.VendorStoreURL, &v.VendorStoreURL),
		text(g.SetupWizardMessage, &v.SetupWizardMessage),
		radio(g.SellingProductTypes, &v.SellingProductTypes),
		switcher(g.StoreTermsAndConditions, &v.StoreTermsAndConditions),
		text(g.StoreProductPerPage, &v.StoreProductPerPage),
		switcher(g.EnableTermsOnSignup, &v.EnableTermsOnSignup),
		radio(g.StoreCategory, &v.StoreCategory),
		switcher(g.ShowVendorInfo, &v.ShowVendorInfo),
		switcher(g.EnableMoreProductsTab, &v.EnableMoreProductsTab),
	}
}

// SetGeneral applies the General section.
func (s *SettingsPage) SetGeneral(ctx context.Context, v testdata.GeneralSettings) error {
	return s.save(ctx, SectionGeneral, v.SettingTitle, v.SaveSuccessMessage, generalPlan(&v))
}

// ReadGeneral returns the persisted General section. Fields the tier lacks
// are left zero.
func (s *SettingsPage) ReadGeneral(ctx context.Context) (testdata.GeneralSettings, error) {
	v := testdata.GeneralSettings{SettingTitle: testdata.DefaultGeneral().SettingTitle}
	err := s.load(ctx, SectionGeneral, v.SettingTitle, generalPlan(&v))
	return v, err
}

func sellingPlan(v *testdata.SellingSettings) []field {
	sel := selector.Selling
	return []field{
		choice(sel.CommissionType, &v.Commission.Type),
		text(sel.AdminCommission, &v.Commission.Percentage),
		text(sel.AdditionalFee, &v.AdditionalFee),
		radio(sel.ShippingFeeRecipient, &v.ShippingFeeRecipient),
		radio(sel.ProductTaxFeeRecipient, &v.ProductTaxFeeRecipient),
		radio(sel.ShippingTaxFeeRecipient, &v.ShippingTaxFeeRecipient),
		switcher(sel.EnableSelling, &v.EnableSelling),
		switcher(sel.OnePageProductCreate, &v.OnePageProductCreate),
		switcher(sel.OrderStatusChange, &v.OrderStatusChange),
		switcher(sel.SelectAnyCategory, &v.SelectAnyCategory),
		radio(sel.NewProductStatus, &v.NewProductStatus),
		switcher(sel.HideAddToCartButton, &v.HideAddToCartButton),
		switcher(sel.HideProductPrice, &v.HideProductPrice),
	}
}

func (s *SettingsPage) SetSelling(ctx context.Context, v testdata.SellingSettings) error {
	return s.save(ctx, SectionSelling, v.SettingTitle, v.SaveSuccessMessage, sellingPlan(&v))
}

func (s *SettingsPage) ReadSelling(ctx context.Context) (testdata.SellingSettings, error) {
	v := testdata.SellingSettings{SettingTitle: testdata.DefaultSelling().SettingTitle}
	err := s.load(ctx, SectionSelling, v.SettingTitle, sellingPlan(&v))
	return v, err
}

func withdrawPlan(v *testdata.WithdrawSettings) []field {
	w := selector.Withdraw
	return []field{
		switcher(w.Paypal, &v.Paypal),
		switcher(w.Bank, &v.Bank),
		switcher(w.Skrill, &v.Skrill),
		switcher(w.Custom, &v.Custom),
		text(w.CustomMethodName, &v.CustomMethodName),
		text(w.CustomMethodType, &v.CustomMethodType),
		text(w.PaypalCharge, &v.Charges.Paypal),
		text(w.BankCharge, &v.Charges.Bank),
		text(w.SkrillCharge, &v.Charges.Skrill),
		text(w.CustomCharge, &v.Charges.Custom),
		text(w.MinimumWithdrawAmount, &v.MinimumWithdrawAmount),
		switcher(w.OrderStatusCompleted, &v.OrderStatusCompleted),
		switcher(w.OrderStatusProcessing, &v.OrderStatusProcessing),
		text(w.WithdrawThreshold, &v.WithdrawThreshold),
		switcher(w.ManualDisbursement, &v.ManualDisbursement),
		switcher(w.ScheduledDisbursement, &v.ScheduledDisbursement),
		switcher(w.Quarterly, &v.Schedule.Quarterly),
		switcher(w.Monthly, &v.Schedule.Monthly),
		switcher(w.Biweekly, &v.Schedule.Biweekly),
		switcher(w.Weekly, &v.Schedule.Weekly),
		choice(w.QuarterlyMonth, &v.Schedule.QuarterlyMonth),
		choice(w.QuarterlyWeek, &v.Schedule.QuarterlyWeek),
		choice(w.QuarterlyDay, &v.Schedule.QuarterlyDay),
		choice(w.MonthlyWeek, &v.Schedule.MonthlyWeek),
		choice(w.MonthlyDay, &v.Schedule.MonthlyDay),
		choice(w.BiweeklyWeek, &v.Schedule.BiweeklyWeek),
		choice(w.BiweeklyDay, &v.Schedule.BiweeklyDay),
		choice(w.WeeklyDay, &v.Schedule.WeeklyDay),
	}
}

func (s *SettingsPage) SetWithdraw(ctx context.Context, v testdata.WithdrawSettings) error {
	return s.save(ctx, SectionWithdraw, v.SettingTitle, v.SaveSuccessMessage, withdrawPlan(&v))
}

func (s *SettingsPage) ReadWithdraw(ctx context.Context) (testdata.WithdrawSettings, error) {
	v := testdata.WithdrawSettings{SettingTitle: testdata.DefaultWithdraw().SettingTitle}
	err := s.load(ctx, SectionWithdraw, v.SettingTitle, withdrawPlan(&v))
	return v, err
}

// SetMinimumWithdraw changes only the minimum withdraw amount.
func (s *SettingsPage) SetMinimumWithdraw(ctx context.Context, amount string) error {
	title := testdata.DefaultWithdraw().SettingTitle
	plan := []field{text(selector.Withdraw.MinimumWithdrawAmount, &amount)}
	return s.save(ctx, SectionWithdraw, title, testdata.SettingsSaved, plan)
}

func reverseWithdrawPlan(v *testdata.ReverseWithdrawSettings) []field {
	r := selector.ReverseWithdraw
	return []field{
		switcher(r.Enabled, &v.Enabled),
		switcher(r.GatewayCOD, &v.GatewayCOD),
		choice(r.BillingType, &v.BillingType),
		text(r.BalanceThreshold, &v.BalanceThreshold),
		text(r.GracePeriod, &v.GracePeriod),
		switcher(r.DisableAddToCart, &v.DisableAddToCart),
		switcher(r.HideWithdrawMenu, &v.HideWithdrawMenu),
		switcher(r.MakeVendorInactive, &v.MakeVendorInactive),
		switcher(r.DisplayNotice, &v.DisplayNotice),
		switcher(r.SendAnnouncement, &v.SendAnnouncement),
	}
}

func (s *SettingsPage) SetReverseWithdraw(ctx context.Context, v testdata.ReverseWithdrawSettings) error {
	return s.save(ctx, SectionReverseWithdraw, v.SettingTitle, v.SaveSuccessMessage, reverseWithdrawPlan(&v))
}

func (s *SettingsPage) ReadReverseWithdraw(ctx context.Context) (testdata.ReverseWithdrawSettings, error) {
	v := testdata.ReverseWithdrawSettings{SettingTitle: testdata.DefaultReverseWithdraw().SettingTitle}
	err := s.load(ctx, SectionReverseWithdraw, v.SettingTitle, reverseWithdrawPlan(&v))
	return v, err
}

func pagesPlan(v *testdata.PageSettings) []field {
	pg := selector.Pages
	return []field{
		titled(pg.Dashboard, &v.Dashboard),
		titled(pg.MyOrders, &v.MyOrders),
		titled(pg.StoreListing, &v.StoreListing),
		titled(pg.TermsAndConditions, &v.TermsAndConditions),
	}
}

// SetPages selects each page by its title.
func (s *SettingsPage) SetPages(ctx context.Context, v testdata.PageSettings) error {
	return s.save(ctx, SectionPages, v.SettingTitle, v.SaveSuccessMessage, pagesPlan(&v))
}

func (s *SettingsPage) ReadPages(ctx context.Context) (testdata.PageSettings, error) {
	v := testdata.PageSettings{SettingTitle: testdata.DefaultPages().SettingTitle}
	err := s.load(ctx, SectionPages, v.SettingTitle, pagesPlan(&v))
	return v, err
}

func appearancePlan(v *testdata.AppearanceSettings) []field {
	a := selector.Appearance
	return []field{
		switcher(a.ShowMap, &v.ShowMap),
		radio(a.MapAPISource, &v.MapAPISource),
		text(a.GoogleMapAPIKey, &v.GoogleMapAPIKey),
		switcher(a.ContactSeller, &v.ContactSeller),
		radio(a.StoreHeaderTemplate, &v.StoreHeaderTemplate),
		text(a.StoreBannerWidth, &v.StoreBannerWidth),
		text(a.StoreBannerHeight, &v.StoreBannerHeight),
		switcher(a.StoreOpenClose, &v.StoreOpenClose),
	}
}

func (s *SettingsPage) SetAppearance(ctx context.Context, v testdata.AppearanceSettings) error {
	return s.save(ctx, SectionAppearance, v.SettingTitle, v.SaveSuccessMessage, appearancePlan(&v))
}

func (s *SettingsPage) ReadAppearance(ctx context.Context) (testdata.AppearanceSettings, error) {
	v := testdata.AppearanceSettings{SettingTitle: testdata.DefaultAppearance().SettingTitle}
	err := s.load(ctx, SectionAppearance, v.SettingTitle, appearancePlan(&v))
	return v, err
}

func privacyPlan(v *testdata.PrivacyPolicySettings) []field {
	pp := selector.PrivacyPolicy
	return []field{
		switcher(pp.Enable, &v.Enable),
		titled(pp.PrivacyPage, &v.PrivacyPage),
		text(pp.Content, &v.Content),
	}
}

func (s *SettingsPage) SetPrivacyPolicy(ctx context.Context, v testdata.PrivacyPolicySettings) error {
	return s.save(ctx, SectionPrivacyPolicy, v.SettingTitle, v.SaveSuccessMessage, privacyPlan(&v))
}

func (s *SettingsPage) ReadPrivacyPolicy(ctx context.Context) (testdata.PrivacyPolicySettings, error) {
	v := testdata.PrivacyPolicySettings{SettingTitle: testdata.DefaultPrivacyPolicy().SettingTitle}
	err := s.load(ctx, SectionPrivacyPolicy, v.SettingTitle, privacyPlan(&v))
	return v, err
}

func storeSupportPlan(v *testdata.StoreSupportSettings) []field {
	ss := selector.StoreSupport
	return []field{
		switcher(ss.DisplayOnOrderDetails, &v.DisplayOnOrderDetails),
		choice(ss.ProductPagePlacement, &v.ProductPagePlacement),
		text(ss.SupportButtonLabel, &v.SupportButtonLabel),
	}
}

// SetStoreSupport applies the Store Support section, which only exists
// while its module is active.
func (s *SettingsPage) SetStoreSupport(ctx context.Context, v testdata.StoreSupportSettings) error {
	if !s.caps.Allows(selector.StoreSupport.MenuItem) {
		return unavailable(selector.StoreSupport.MenuItem, s.caps)
	}
	return s.save(ctx, SectionStoreSupport, v.SettingTitle, v.SaveSuccessMessage, storeSupportPlan(&v))
}

func (s *SettingsPage) ReadStoreSupport(ctx context.Context) (testdata.StoreSupportSettings, error) {
	v := testdata.StoreSupportSettings{SettingTitle: testdata.DefaultStoreSupport().SettingTitle}
	if !s.caps.Allows(selector.StoreSupport.MenuItem) {
		return v, unavailable(selector.StoreSupport.MenuItem, s.caps)
	}
	err := s.load(ctx, SectionStoreSupport, v.SettingTitle, storeSupportPlan(&v))
	return v, err
}

func roundTrip[T any](
	ctx context.Context,
	s *SettingsPage,
	want T,
	set func(context.Context, T) error,
	get func(context.Context) (T, error),
	plan func(*T) []field,
) error {
	if err := set(ctx, want); err != nil {
		return err
	}
	got, err := get(ctx)
	if err != nil {
		return err
	}
	return compare(s.caps, plan(&want), plan(&got))
}

// RoundTrip sets a settings bundle, reads its section back from a fresh
// document and reports every field that did not persist. Fields the site's
// capabilities do not allow are ignored.
func (s *SettingsPage) RoundTrip(ctx context.Context, bundle any) error {
	switch v := bundle.(type) {
	case testdata.GeneralSettings:
		return roundTrip(ctx, s, v, s.SetGeneral, s.ReadGeneral, generalPlan)
	case testdata.SellingSettings:
		return roundTrip(ctx, s, v, s.SetSelling, s.ReadSelling, sellingPlan)
	case testdata.WithdrawSettings:
		return roundTrip(ctx, s, v, s.SetWithdraw, s.ReadWithdraw, withdrawPlan)
	case testdata.ReverseWithdrawSettings:
		return roundTrip(ctx, s, v, s.SetReverseWithdraw, s.ReadReverseWithdraw, reverseWithdrawPlan)
	case testdata.PageSettings:
		return roundTrip(ctx, s, v, s.SetPages, s.ReadPages, pagesPlan)
	case testdata.AppearanceSettings:
		return roundTrip(ctx, s, v, s.SetAppearance, s.ReadAppearance, appearancePlan)
	case testdata.PrivacyPolicySettings:
		return roundTrip(ctx, s, v, s.SetPrivacyPolicy, s.ReadPrivacyPolicy, privacyPlan)
	case testdata.StoreSupportSettings:
		return roundTrip(ctx, s, v, s.SetStoreSupport, s.ReadStoreSupport, storeSupportPlan)
	default:
		return fmt.Errorf("unsupported settings bundle %T", bundle)
	}
}
