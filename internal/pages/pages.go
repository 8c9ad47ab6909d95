// Package pages holds the page objects scenarios drive. Each page object wraps
// a harness.Page, takes its locators from the selector registry and its
// inputs from testdata bundles, and skips fields the site's capabilities do
// not allow.
package pages

import (
	"context"
	"errors"
	"fmt"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/selector"
)

// ErrUnavailable is returned for a step whose element is gated to a tier or
// module the site does not have.
var ErrUnavailable = errors.New("not available on this site")

func unavailable(loc locator.Locator, caps harness.Capabilities) error {
	return fmt.Errorf("%s on %s: %w", loc.Name, caps, ErrUnavailable)
}

type fieldKind uint8

const (
	kindText fieldKind = iota
	kindSwitch
	kindCheckbox
	kindSelectValue
	kindSelectLabel
	kindRadio
)

// field binds one form control to the bundle value it writes and reads back.
// The same plan drives both directions, so a bundle round-trips through the
// form field for field.
type field struct {
	kind  fieldKind
	loc   locator.Locator
	radio selector.Radio
	str   *string
	on    *bool
}

func text(loc locator.Locator, v *string) field {
	return field{kind: kindText, loc: loc, str: v}
}

func switcher(loc locator.Locator, v *bool) field {
	return field{kind: kindSwitch, loc: loc, on: v}
}

func checkbox(loc locator.Locator, v *bool) field {
	return field{kind: kindCheckbox, loc: loc, on: v}
}

func choice(loc locator.Locator, v *string) field {
	return field{kind: kindSelectValue, loc: loc, str: v}
}

func titled(loc locator.Locator, v *string) field {
	return field{kind: kindSelectLabel, loc: loc, str: v}
}

func radio(r selector.Radio, v *string) field {
	return field{kind: kindRadio, loc: r.Group, radio: r, str: v}
}

// checkedOption matches the selected input of a radio group.
func checkedOption(r selector.Radio) locator.Locator {
	loc := r.Group
	loc.Name += " checked"
	loc.Query += " input[type=radio]:checked"
	return loc
}

// fill writes every allowed field of the plan.
func fill(ctx context.Context, p *harness.Page, caps harness.Capabilities, plan []field) error {
	for _, f := range plan {
		if !caps.Allows(f.loc) {
			continue
		}
		var err error
		switch f.kind {
		case kindText:
			err = p.ClearAndType(ctx, f.loc, *f.str)
		case kindSwitch:
			err = p.SetSwitcher(ctx, f.loc, *f.on)
		case kindCheckbox:
			err = p.SetChecked(ctx, f.loc, *f.on)
		case kindSelectValue:
			if *f.str != "" {
				err = p.SelectByValue(ctx, f.loc, *f.str)
			}
		case kindSelectLabel:
			if *f.str != "" {
				err = p.SelectByLabel(ctx, f.loc, *f.str)
			}
		case kindRadio:
			if *f.str != "" {
				err = p.Check(ctx, f.radio.Option(*f.str))
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// read loads every allowed field of the plan back into the bundle. Fields
// the site does not allow keep their zero value.
func read(ctx context.Context, p *harness.Page, caps harness.Capabilities, plan []field) error {
	for _, f := range plan {
		if !caps.Allows(f.loc) {
			continue
		}
		var err error
		switch f.kind {
		case kindText, kindSelectValue:
			*f.str, err = p.Value(ctx, f.loc)
		case kindSwitch, kindCheckbox:
			*f.on, err = p.IsChecked(ctx, f.loc)
		case kindSelectLabel:
			*f.str, err = p.SelectedLabel(ctx, f.loc)
		case kindRadio:
			*f.str, err = p.Value(ctx, checkedOption(f.radio))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type checkKind uint8

const (
	checkValue checkKind = iota
	checkChecked
	checkLabel
)

// check is one assertion verify makes after a save.
type check struct {
	kind checkKind
	loc  locator.Locator
	str  string
	on   bool
}

// checks lists the assertions that prove every allowed field of the plan
// holds its bundle value. Selects and radios left empty are not asserted.
func checks(caps harness.Capabilities, plan []field) []check {
	var out []check
	for _, f := range plan {
		if !caps.Allows(f.loc) {
			continue
		}
		switch f.kind {
		case kindText, kindSelectValue:
			out = append(out, check{kind: checkValue, loc: f.loc, str: *f.str})
		case kindSwitch, kindCheckbox:
			out = append(out, check{kind: checkChecked, loc: f.loc, on: *f.on})
		case kindSelectLabel:
			if *f.str != "" {
				out = append(out, check{kind: checkLabel, loc: f.loc, str: *f.str})
			}
		case kindRadio:
			if *f.str != "" {
				out = append(out, check{kind: checkChecked, loc: f.radio.Option(*f.str), on: true})
			}
		}
	}
	return out
}

// verify asserts every allowed field of the plan holds its bundle value.
func verify(ctx context.Context, p *harness.Page, caps harness.Capabilities, plan []field) error {
	var errs []error
	for _, c := range checks(caps, plan) {
		switch c.kind {
		case checkValue:
			errs = append(errs, p.ToHaveValue(ctx, c.loc, c.str))
		case checkChecked:
			errs = append(errs, p.ToBeChecked(ctx, c.loc, c.on))
		case checkLabel:
			errs = append(errs, p.ToHaveSelectedLabel(ctx, c.loc, c.str))
		}
	}
	return errors.Join(errs...)
}

// compare reports every allowed field whose value in got differs from want.
// Both plans must come from the same plan constructor.
func compare(caps harness.Capabilities, want, got []field) error {
	var errs []error
	for i, f := range want {
		if !caps.Allows(f.loc) {
			continue
		}
		var expected, actual any
		if f.str != nil {
			expected, actual = *f.str, *got[i].str
		} else {
			expected, actual = *f.on, *got[i].on
		}
		if expected != actual {
			errs = append(errs, &failure.AssertionFailure{
				Op:       "round trip",
				Locator:  f.loc.String(),
				Expected: expected,
				Actual:   actual,
			})
		}
	}
	return errors.Join(errs...)
}
