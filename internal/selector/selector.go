// Package selector is the typed registry of every element the harness
// touches, grouped by page and scoped by role. Page objects never build
// locators from literals: renaming an element in the marketplace changes
// exactly one entry here.
package selector

import (
	"regexp"
	"strconv"

	"github.com/stolasapp/mercato/internal/locator"
)

// Radio is a radio group and a constructor for its options.
type Radio struct {
	Group  locator.Locator
	Option locator.Param
}

// All returns every static locator in the registry.
func All() []locator.Locator {
	return locator.Collect(
		Login,
		AdminBar,
		Settings,
		General,
		Selling,
		Withdraw,
		ReverseWithdraw,
		Pages,
		Appearance,
		PrivacyPolicy,
		StoreSupport,
		Modules,
		WCGeneral,
		WCCheckout,
		WCGateway,
		Wizard,
		VendorPayments,
		VendorPaymentForm,
		VendorWithdraw,
		Storefront,
		ErrorPage,
	)
}

// ClientRendered lists the locators whose elements only exist after the
// page's scripts run.
func ClientRendered() []locator.Locator {
	return []locator.Locator{
		Settings.SearchResults,
		Settings.BackToTopVisible,
		Settings.SearchResult("x"),
		Modules.ActiveCard("x"),
	}
}

// exact matches the whole trimmed text of an element.
func exact(text string) string {
	return `^\s*` + regexp.QuoteMeta(text) + `\s*$`
}

// prefix matches text that starts with text, for elements carrying trailing
// decorations.
func prefix(text string) string {
	return `^\s*` + regexp.QuoteMeta(text)
}

func attr(name, value string) string {
	return "[" + name + "=" + strconv.Quote(value) + "]"
}

// settingsField is the wrapper the settings form renders around each field.
func settingsField(key string) string {
	return "div.dokan-settings-field" + attr("data-field", key)
}

func textField(name, key string) locator.Locator {
	return locator.NewCSS(locator.Admin, name, settingsField(key)+" input"+attr("name", key))
}

func textareaField(name, key string) locator.Locator {
	return locator.NewCSS(locator.Admin, name, settingsField(key)+" textarea"+attr("name", key))
}

func selectField(name, key string) locator.Locator {
	return locator.NewCSS(locator.Admin, name, settingsField(key)+" select"+attr("name", key))
}

func switchField(name, key string) locator.Locator {
	return locator.NewCSS(locator.Admin, name, "label.switch"+attr("data-field", key))
}

func radioField(name, key string) Radio {
	group := ".radio-group" + attr("data-field", key)
	return Radio{
		Group: locator.NewCSS(locator.Admin, name, group),
		Option: func(value string) locator.Locator {
			return locator.NewCSS(locator.Admin, name+" "+value, group+" label.radio-option"+attr("data-value", value))
		},
	}
}

// proRadio marks the group and every option as pro-only.
func proRadio(r Radio) Radio {
	option := r.Option
	return Radio{
		Group:  r.Group.ProOnly(),
		Option: func(value string) locator.Locator { return option(value).ProOnly() },
	}
}
