package pages

import (
	"context"

	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/selector"
	"github.com/stolasapp/mercato/internal/testdata"
)

const (
	moduleActivateResponse   = `/dokan/v1/admin/modules/activate`
	moduleDeactivateResponse = `/dokan/v1/admin/modules/deactivate`
)

// ModulesPage toggles pro modules. On lite it only shows an upgrade notice.
type ModulesPage struct {
	page *harness.Page
	caps *harness.Capabilities
}

// NewModulesPage binds the page to caps, which it keeps current as modules
// are toggled.
func NewModulesPage(p *harness.Page, caps *harness.Capabilities) *ModulesPage {
	return &ModulesPage{page: p, caps: caps}
}

func (m *ModulesPage) open(ctx context.Context) error {
	return m.page.GoIfNotThere(ctx, testdata.ModulesPath)
}

// RenderProperly expects every module card on pro and the upgrade notice on
// lite.
func (m *ModulesPage) RenderProperly(ctx context.Context) error {
	if err := m.open(ctx); err != nil {
		return err
	}
	if !m.caps.Pro() {
		return m.page.ToBeVisible(ctx, selector.Modules.ProNotice)
	}
	cards := make([]locator.Locator, 0, len(testdata.Modules))
	for _, module := range testdata.Modules {
		cards = append(cards, selector.Modules.Card(module))
	}
	return m.page.MultipleElementVisible(ctx, cards...)
}

// Activate turns module on and reports whether it was off before.
func (m *ModulesPage) Activate(ctx context.Context, module string) (bool, error) {
	return m.set(ctx, module, true)
}

// Deactivate turns module off and reports whether it was on before.
func (m *ModulesPage) Deactivate(ctx context.Context, module string) (bool, error) {
	return m.set(ctx, module, false)
}

func (m *ModulesPage) set(ctx context.Context, module string, active bool) (bool, error) {
	toggle := selector.Modules.Toggle(module)
	if !m.caps.Allows(toggle) {
		return false, unavailable(toggle, *m.caps)
	}
	if err := m.open(ctx); err != nil {
		return false, err
	}
	var (
		changed bool
		err     error
	)
	if active {
		changed, err = m.page.EnableSwitcherAndWaitForResponse(ctx, moduleActivateResponse, toggle)
	} else {
		changed, err = m.page.DisableSwitcherAndWaitForResponse(ctx, moduleDeactivateResponse, toggle)
	}
	if err != nil {
		return false, err
	}
	card := selector.Modules.ActiveCard(module)
	if active {
		err = m.page.ToBeVisible(ctx, card)
	} else {
		err = m.page.NotToBeVisible(ctx, card)
	}
	if err != nil {
		return changed, err
	}
	*m.caps = m.caps.WithModule(module, active)
	return changed, nil
}
