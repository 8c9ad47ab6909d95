package site

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/testdata"
)

type choiceView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	Key     string
	Label   string
	Kind    FieldKind
	Value   string
	On      bool
	Choices []choiceView
}

type menuItem struct {
	ID     string
	Title  string
	Active bool
}

type searchEntry struct {
	Section      string `json:"section"`
	SectionTitle string `json:"sectionTitle"`
	Key          string `json:"key"`
	Label        string `json:"label"`
}

type settingsView struct {
	ID     string
	Title  string
	Menu   []menuItem
	Fields []fieldView
	Index  []searchEntry
}

func (s *Site) adminHome(c echo.Context) error {
	return s.render(c, http.StatusOK, "admin_home", "Dashboard", nil)
}

func (s *Site) settingsRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/admin/settings/"+Sections[0].ID)
}

// sectionValues returns the stored values of a section layered over its
// defaults.
func (s *Site) sectionValues(ctx context.Context, section Section) (map[string]string, error) {
	raw, err := s.store.GetOption(ctx, section.Option)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	stored, err := decodeValues(raw)
	if err != nil {
		return nil, err
	}
	values := section.Defaults()
	for key, value := range stored {
		values[key] = value
	}
	return values, nil
}

func (s *Site) settings(c echo.Context) error {
	active, err := s.activeModules(c)
	if err != nil {
		return err
	}
	section, ok := SectionByID(c.Param("section"))
	if !ok || !section.Available(s.cfg.Pro, active) {
		return s.renderError(c, http.StatusNotFound, "The requested settings section does not exist.")
	}
	values, err := s.sectionValues(c.Request().Context(), section)
	if err != nil {
		return err
	}

	body := settingsView{ID: section.ID, Title: section.Title}
	for _, other := range Sections {
		if !other.Available(s.cfg.Pro, active) {
			continue
		}
		body.Menu = append(body.Menu, menuItem{ID: other.ID, Title: other.Title, Active: other.ID == section.ID})
		for _, field := range other.VisibleFields(s.cfg.Pro) {
			body.Index = append(body.Index, searchEntry{
				Section:      other.ID,
				SectionTitle: other.Title,
				Key:          field.Key,
				Label:        field.Label,
			})
		}
	}
	for _, field := range section.VisibleFields(s.cfg.Pro) {
		value := values[field.Key]
		fv := fieldView{Key: field.Key, Label: field.Label, Kind: field.Kind, Value: value, On: value == on}
		for _, choice := range field.choices() {
			fv.Choices = append(fv.Choices, choiceView{Value: choice.Value, Label: choice.Label, Selected: choice.Value == value})
		}
		body.Fields = append(body.Fields, fv)
	}
	return s.render(c, http.StatusOK, "settings", section.Title+" Settings", body)
}

type ajaxResponse struct {
	Success bool     `json:"success"`
	Data    ajaxData `json:"data"`
}

type ajaxData struct {
	Message  string            `json:"message"`
	Settings map[string]string `json:"settings,omitempty"`
}

func ajaxFail(c echo.Context, status int, message string) error {
	return c.JSON(status, ajaxResponse{Data: ajaxData{Message: message}})
}

// ajax handles admin-ajax actions. Only the settings save action exists.
func (s *Site) ajax(c echo.Context) error {
	if c.FormValue("action") != "dokan_save_settings" {
		return ajaxFail(c, http.StatusBadRequest, "Unknown action.")
	}
	active, err := s.activeModules(c)
	if err != nil {
		return err
	}
	section, ok := SectionByID(c.FormValue("section"))
	if !ok || !section.Available(s.cfg.Pro, active) {
		return ajaxFail(c, http.StatusBadRequest, "Invalid settings section.")
	}
	var submitted map[string]string
	if err = json.Unmarshal([]byte(c.FormValue("settings")), &submitted); err != nil {
		return ajaxFail(c, http.StatusBadRequest, "Malformed settings payload.")
	}

	ctx := c.Request().Context()
	raw, err := s.store.GetOption(ctx, section.Option)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	stored, err := decodeValues(raw)
	if err != nil {
		return err
	}
	merged, err := section.Merge(stored, submitted, s.cfg.Pro)
	var invalid *ValidationError
	switch {
	case errors.As(err, &invalid):
		return ajaxFail(c, http.StatusUnprocessableEntity, invalid.Error())
	case err != nil:
		return err
	}
	encoded, err := encodeValues(merged)
	if err != nil {
		return err
	}
	if err = s.store.SetOption(ctx, section.Option, encoded); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ajaxResponse{
		Success: true,
		Data:    ajaxData{Message: testdata.SettingsSaved, Settings: merged},
	})
}

type moduleView struct {
	ID     string
	Name   string
	Active bool
}

// ModuleNames are the display names of the known modules.
var ModuleNames = map[string]string{
	testdata.ModuleMangoPay:          "MangoPay",
	testdata.ModulePaypalMarketplace: "PayPal Marketplace",
	testdata.ModuleRazorpay:          "Razorpay",
	testdata.ModuleStripe:            "Stripe Connect",
	testdata.ModuleStripeExpress:     "Stripe Express",
	testdata.ModuleStoreSupport:      "Store Support",
}

func (s *Site) moduleViews(ctx context.Context) ([]moduleView, error) {
	mods, err := s.store.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]moduleView, 0, len(mods))
	for _, mod := range mods {
		out = append(out, moduleView{ID: mod.ID, Name: ModuleNames[mod.ID], Active: mod.Active})
	}
	return out, nil
}

func (s *Site) modules(c echo.Context) error {
	var body []moduleView
	if s.cfg.Pro {
		var err error
		if body, err = s.moduleViews(c.Request().Context()); err != nil {
			return err
		}
	}
	return s.render(c, http.StatusOK, "modules", "Modules", body)
}
