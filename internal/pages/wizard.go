package pages

import (
	"context"
	"fmt"
	"regexp"
	"slices"

	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/selector"
	"github.com/stolasapp/mercato/internal/testdata"
)

// Setup wizard steps in the order they are shown.
const (
	StepIntroduction = "introduction"
	StepStore        = "store"
	StepSelling      = "selling"
	StepWithdraw     = "withdraw"
	StepNextSteps    = "next_steps"
)

var wizardSteps = []string{StepIntroduction, StepStore, StepSelling, StepWithdraw, StepNextSteps}

// SetupWizardPage walks the marketplace setup wizard.
type SetupWizardPage struct {
	page *harness.Page
	caps harness.Capabilities
}

func NewSetupWizardPage(p *harness.Page, caps harness.Capabilities) *SetupWizardPage {
	return &SetupWizardPage{page: p, caps: caps}
}

func stepPath(step string) string {
	if step == StepIntroduction {
		return testdata.SetupWizardPath
	}
	return testdata.SetupWizardPath + "?step=" + step
}

func stepResponse(step string) string {
	return regexp.QuoteMeta(testdata.SetupWizardPath) + `\?step=` + step
}

func nextStep(step string) (string, error) {
	i := slices.Index(wizardSteps, step)
	if i < 0 || i == len(wizardSteps)-1 {
		return "", fmt.Errorf("no step follows %q", step)
	}
	return wizardSteps[i+1], nil
}

// advance clicks loc and waits for the next step to become active.
func (w *SetupWizardPage) advance(ctx context.Context, from string, loc locator.Locator) error {
	next, err := nextStep(from)
	if err != nil {
		return err
	}
	if err = w.page.ClickAndWaitForResponseAndLoadState(ctx, stepResponse(next), loc); err != nil {
		return err
	}
	return w.page.ToBeVisible(ctx, selector.Wizard.ActiveStep(next))
}

func storeStepPlan(s *testdata.SetupWizard) []field {
	wz := selector.Wizard
	return []field{
		text(wz.VendorStoreURL, &s.VendorStoreURL),
		choice(wz.ShippingFeeRecipient, &s.ShippingFeeRecipient),
		choice(wz.TaxFeeRecipient, &s.TaxFeeRecipient),
	}
}

func sellingStepPlan(s *testdata.SetupWizard) []field {
	wz := selector.Wizard
	return []field{
		checkbox(wz.EnableSelling, &s.EnableSelling),
		choice(wz.CommissionType, &s.CommissionType),
		text(wz.CommissionPercentage, &s.CommissionPercentage),
		checkbox(wz.OrderStatusChange, &s.OrderStatusChange),
	}
}

func withdrawStepPlan(s *testdata.SetupWizard) []field {
	wz := selector.Wizard
	return []field{
		checkbox(wz.WithdrawPaypal, &s.WithdrawPaypal),
		checkbox(wz.WithdrawBank, &s.WithdrawBank),
		checkbox(wz.WithdrawSkrill, &s.WithdrawSkrill),
		text(wz.MinimumWithdrawLimit, &s.MinimumWithdrawLimit),
		checkbox(wz.OrderStatusCompleted, &s.OrderStatusCompleted),
		checkbox(wz.OrderStatusProcessing, &s.OrderStatusProcessing),
	}
}

// Run completes every step of the wizard with s and expects the ready page.
func (w *SetupWizardPage) Run(ctx context.Context, s testdata.SetupWizard) error {
	p := w.page
	if err := p.Goto(ctx, stepPath(StepIntroduction)); err != nil {
		return err
	}
	if err := p.ToBeVisible(ctx, selector.Wizard.ActiveStep(StepIntroduction)); err != nil {
		return err
	}
	if err := w.advance(ctx, StepIntroduction, selector.Wizard.LetsGo); err != nil {
		return err
	}
	steps := []struct {
		step string
		plan []field
	}{
		{StepStore, storeStepPlan(&s)},
		{StepSelling, sellingStepPlan(&s)},
		{StepWithdraw, withdrawStepPlan(&s)},
	}
	for _, st := range steps {
		if err := fill(ctx, p, w.caps, st.plan); err != nil {
			return fmt.Errorf("%s step: %w", st.step, err)
		}
		if err := w.advance(ctx, st.step, selector.Wizard.Continue); err != nil {
			return fmt.Errorf("%s step: %w", st.step, err)
		}
	}
	return p.ToContainText(ctx, selector.Wizard.Ready, s.ReadyMessage)
}

// Skip opens step and skips it, expecting the following step.
func (w *SetupWizardPage) Skip(ctx context.Context, step string) error {
	if err := w.page.GoIfNotThere(ctx, stepPath(step)); err != nil {
		return err
	}
	if err := w.page.ToBeVisible(ctx, selector.Wizard.StepContent(step)); err != nil {
		return err
	}
	return w.advance(ctx, step, selector.Wizard.Skip)
}
