// Package locator models named, role-scoped references to UI elements. A
// Locator is pure data: resolving it against a live page is the harness's job.
package locator

import (
	"fmt"
	"reflect"
	"strings"
)

// Role is the user role a locator (or session) is scoped to.
type Role string

// Roles.
const (
	Admin    Role = "admin"
	Vendor   Role = "vendor"
	Customer Role = "customer"
	Guest    Role = "guest"
)

// Roles lists the authenticated roles.
var Roles = []Role{Admin, Vendor, Customer}

// Tier is the product tier required for an element to exist.
type Tier string

// Tiers.
const (
	Lite Tier = "lite"
	Pro  Tier = "pro"
)

// ParseTier converts a config value into a Tier.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case Lite, "":
		return Lite, nil
	case Pro:
		return Pro, nil
	default:
		return "", fmt.Errorf("unknown tier %q", s)
	}
}

// Strategy determines how the Query is interpreted.
type Strategy uint8

// Strategies.
const (
	CSS Strategy = iota
	XPath
	// Text matches the CSS Query whose text content matches the Pattern
	// (a JavaScript regular expression).
	Text
)

func (s Strategy) String() string {
	switch s {
	case CSS:
		return "css"
	case XPath:
		return "xpath"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("strategy(%d)", s)
	}
}

// Locator is a named reference to a UI element.
type Locator struct {
	Name     string
	Role     Role
	Strategy Strategy
	Query    string
	Pattern  string
	Tier     Tier
	Module   string
}

// Param builds a locator for repeated-shape elements from a value.
type Param func(value string) Locator

// NewCSS returns a CSS locator.
func NewCSS(role Role, name, query string) Locator {
	return Locator{Name: name, Role: role, Strategy: CSS, Query: query, Tier: Lite}
}

// NewXPath returns an XPath locator.
func NewXPath(role Role, name, query string) Locator {
	return Locator{Name: name, Role: role, Strategy: XPath, Query: query, Tier: Lite}
}

// NewText returns a locator matching elements selected by the CSS query whose
// text matches pattern.
func NewText(role Role, name, query, pattern string) Locator {
	return Locator{Name: name, Role: role, Strategy: Text, Query: query, Pattern: pattern, Tier: Lite}
}

// ProOnly marks the locator as existing only in the pro tier.
func (l Locator) ProOnly() Locator {
	l.Tier = Pro
	return l
}

// RequiresModule marks the locator as existing only while module is active.
// Module-gated elements are always pro-tier.
func (l Locator) RequiresModule(module string) Locator {
	l.Tier = Pro
	l.Module = module
	return l
}

// Within scopes the locator under a parent CSS locator. Only CSS locators can
// be nested.
func (l Locator) Within(parent Locator) Locator {
	if parent.Strategy != CSS || l.Strategy == XPath {
		panic(fmt.Sprintf("locator: cannot nest %s under %s", l.Name, parent.Name))
	}
	l.Query = parent.Query + " " + l.Query
	return l
}

// Gated reports whether the element depends on a tier or module.
func (l Locator) Gated() bool {
	return l.Tier == Pro || l.Module != ""
}

// String identifies the locator in errors and reports.
func (l Locator) String() string {
	switch l.Strategy {
	case Text:
		return fmt.Sprintf("%s(%s %q /%s/)", l.Name, l.Strategy, l.Query, l.Pattern)
	default:
		return fmt.Sprintf("%s(%s %q)", l.Name, l.Strategy, l.Query)
	}
}

// Collect walks v (a Locator, a struct or pointer to struct of locators, or a
// slice of either) and returns every static Locator it contains. Parametrized
// locators are skipped since they have no value until called.
func Collect(values ...any) []Locator {
	var out []Locator
	for _, v := range values {
		out = collect(reflect.ValueOf(v), out)
	}
	return out
}

var locatorType = reflect.TypeFor[Locator]()

func collect(v reflect.Value, out []Locator) []Locator {
	if !v.IsValid() {
		return out
	}
	if v.Type() == locatorType {
		return append(out, v.Interface().(Locator)) //nolint:forcetypeassert // checked above
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return out
		}
		return collect(v.Elem(), out)
	case reflect.Struct:
		for i := range v.NumField() {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			out = collect(v.Field(i), out)
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			out = collect(v.Index(i), out)
		}
	default:
	}
	return out
}
