package site

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

type wizardStep struct {
	ID   string
	Name string
	save func(s *Site, c echo.Context) error
}

var wizardSteps = []wizardStep{
	{ID: "introduction", Name: "Introduction"},
	{ID: "store", Name: "Store", save: (*Site).saveStoreStep},
	{ID: "selling", Name: "Selling", save: (*Site).saveSellingStep},
	{ID: "withdraw", Name: "Withdraw", save: (*Site).saveWithdrawStep},
	{ID: "next_steps", Name: "Ready!"},
}

type stepView struct {
	ID     string
	Name   string
	Active bool
	Done   bool
}

type wizardView struct {
	Step   string
	Steps  []stepView
	Values map[string]string
	Error  string
}

func stepIndex(id string) int {
	if id == "" {
		return 0
	}
	return slices.IndexFunc(wizardSteps, func(step wizardStep) bool { return step.ID == id })
}

func (s *Site) setupWizard(c echo.Context) error {
	idx := stepIndex(c.QueryParam("step"))
	if idx < 0 {
		return s.renderError(c, http.StatusNotFound, "Unknown setup step.")
	}
	return s.renderWizard(c, http.StatusOK, idx, "")
}

func (s *Site) renderWizard(c echo.Context, status, idx int, message string) error {
	body := wizardView{Step: wizardSteps[idx].ID, Error: message}
	for i, step := range wizardSteps {
		body.Steps = append(body.Steps, stepView{ID: step.ID, Name: step.Name, Active: i == idx, Done: i < idx})
	}
	values, err := s.wizardValues(c.Request().Context())
	if err != nil {
		return err
	}
	body.Values = values
	return s.render(c, status, "setup", "Setup Wizard", body)
}

// wizardValues gathers the current values the wizard forms prefill from.
func (s *Site) wizardValues(ctx context.Context) (map[string]string, error) {
	values := map[string]string{}
	for _, id := range []string{"general", "selling", "withdraw"} {
		section, _ := SectionByID(id)
		sectionValues, err := s.sectionValues(ctx, section)
		if err != nil {
			return nil, err
		}
		for key, value := range sectionValues {
			values[key] = value
		}
	}
	return values, nil
}

// saveSetupStep runs the step's save handler and then advances to the next
// step.
func (s *Site) saveSetupStep(c echo.Context) error {
	idx := stepIndex(c.QueryParam("step"))
	if idx < 0 || wizardSteps[idx].save == nil {
		return s.renderError(c, http.StatusBadRequest, "This step has nothing to save.")
	}
	err := wizardSteps[idx].save(s, c)
	var invalid *ValidationError
	switch {
	case errors.As(err, &invalid):
		return s.renderWizard(c, http.StatusUnprocessableEntity, idx, invalid.Error())
	case err != nil:
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/setup?step="+wizardSteps[idx+1].ID)
}

// mergeSection validates submitted against the section and merges it into
// the stored option.
func (s *Site) mergeSection(ctx context.Context, id string, submitted map[string]string) error {
	section, _ := SectionByID(id)
	raw, err := s.store.GetOption(ctx, section.Option)
	if err != nil && !isNotFound(err) {
		return err
	}
	stored, err := decodeValues(raw)
	if err != nil {
		return err
	}
	merged, err := section.Merge(stored, submitted, s.cfg.Pro)
	if err != nil {
		return err
	}
	return s.setOptionValues(ctx, section.Option, merged)
}

func (s *Site) saveStoreStep(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.mergeSection(ctx, "general", map[string]string{
		"custom_store_url": c.FormValue("custom_store_url"),
	}); err != nil {
		return err
	}
	return s.mergeSection(ctx, "selling", map[string]string{
		"shipping_fee_recipient": c.FormValue("shipping_fee_recipient"),
		"tax_fee_recipient":      c.FormValue("tax_fee_recipient"),
	})
}

func (s *Site) saveSellingStep(c echo.Context) error {
	return s.mergeSection(c.Request().Context(), "selling", map[string]string{
		"new_seller_enable_selling": checkbox(c, "new_seller_enable_selling"),
		"commission_type":           c.FormValue("commission_type"),
		"admin_percentage":          c.FormValue("admin_percentage"),
		"order_status_change":       checkbox(c, "order_status_change"),
	})
}

// saveWithdrawStep replaces the withdraw option with only the wizard's
// answers. An empty limit is stored as 0.
func (s *Site) saveWithdrawStep(c echo.Context) error {
	section, _ := SectionByID("withdraw")
	submitted := map[string]string{
		"withdraw_methods.paypal":             checkbox(c, "withdraw_methods.paypal"),
		"withdraw_methods.bank":               checkbox(c, "withdraw_methods.bank"),
		"withdraw_limit":                      c.FormValue("withdraw_limit"),
		"withdraw_order_status.wc-completed":  checkbox(c, "withdraw_order_status.wc-completed"),
		"withdraw_order_status.wc-processing": checkbox(c, "withdraw_order_status.wc-processing"),
	}
	if s.cfg.Pro {
		submitted["withdraw_methods.skrill"] = checkbox(c, "withdraw_methods.skrill")
	}
	if submitted["withdraw_limit"] == "" {
		submitted["withdraw_limit"] = "0"
	}
	if _, err := section.Merge(nil, submitted, s.cfg.Pro); err != nil {
		return err
	}
	return s.setOptionValues(c.Request().Context(), section.Option, submitted)
}
