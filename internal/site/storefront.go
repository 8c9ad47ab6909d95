package site

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stolasapp/mercato/internal/richtext"
)

func pageTitle(id string) string {
	for _, page := range Pages {
		if page.ID == id {
			return page.Title
		}
	}
	return "Privacy Policy"
}

// privacyPolicy renders the admin-authored policy for any visitor.
func (s *Site) privacyPolicy(c echo.Context) error {
	section, _ := SectionByID("privacy_policy")
	values, err := s.sectionValues(c.Request().Context(), section)
	if err != nil {
		return err
	}
	if values["enable_privacy"] != on {
		return s.renderError(c, http.StatusNotFound, "The privacy policy is not published.")
	}
	rendered, err := richtext.Render([]byte(values["privacy_policy"]))
	if err != nil {
		return err
	}
	//nolint:gosec // sanitized by richtext.Render
	return s.render(c, http.StatusOK, "privacy", pageTitle(values["privacy_page"]), template.HTML(rendered))
}
