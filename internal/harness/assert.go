package harness

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/go-rod/rod"
	"gopkg.in/cenkalti/backoff.v1"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/locator"
)

var errNotYet = errors.New("condition not met")

// OpNotToBeVisible is the trace op of an absence assertion.
const OpNotToBeVisible = "not to be visible"

// expect polls probe until it reports success or the page timeout expires,
// failing with the last observed value.
func (p *Page) expect(ctx context.Context, op string, loc locator.Locator, expected any, probe func(rp *rod.Page) (actual any, ok bool)) error {
	p.record(op, loc)
	var actual any
	err := p.within(ctx, func(rp *rod.Page) error {
		ctx := rp.GetContext()
		return backoff.Retry(func() error {
			var ok bool
			if actual, ok = probe(rp); !ok {
				return errNotYet
			}
			return nil
		}, backoff.WithContext(backoff.NewConstantBackOff(pollInterval), ctx))
	})
	if err != nil {
		return &failure.AssertionFailure{Op: op, Locator: loc.String(), Expected: expected, Actual: actual}
	}
	return nil
}

func visibility(rp *rod.Page, loc locator.Locator) string {
	el, found, _ := lookup(rp, loc)
	if !found {
		return "absent"
	}
	if ok, err := el.Visible(); err != nil || !ok {
		return "hidden"
	}
	return "visible"
}

// ToBeVisible waits for the element to be visible.
func (p *Page) ToBeVisible(ctx context.Context, loc locator.Locator) error {
	return p.expect(ctx, "to be visible", loc, "visible", func(rp *rod.Page) (any, bool) {
		state := visibility(rp, loc)
		return state, state == "visible"
	})
}

// NotToBeVisible waits for the element to be hidden or absent.
func (p *Page) NotToBeVisible(ctx context.Context, loc locator.Locator) error {
	return p.expect(ctx, OpNotToBeVisible, loc, "hidden", func(rp *rod.Page) (any, bool) {
		state := visibility(rp, loc)
		return state, state != "visible"
	})
}

// MultipleElementVisible asserts every locator is visible, reporting every
// failure.
func (p *Page) MultipleElementVisible(ctx context.Context, locs ...locator.Locator) error {
	var errs []error
	for _, loc := range locs {
		errs = append(errs, p.ToBeVisible(ctx, loc))
	}
	return errors.Join(errs...)
}

// ToContainText waits for the element's text to contain text.
func (p *Page) ToContainText(ctx context.Context, loc locator.Locator, text string) error {
	return p.expect(ctx, "to contain text", loc, text, func(rp *rod.Page) (any, bool) {
		el, found, _ := lookup(rp, loc)
		if !found {
			return nil, false
		}
		got, err := el.Text()
		return got, err == nil && strings.Contains(got, text)
	})
}

// ToHaveValue waits for a form control to hold value.
func (p *Page) ToHaveValue(ctx context.Context, loc locator.Locator, value string) error {
	return p.expect(ctx, "to have value", loc, value, func(rp *rod.Page) (any, bool) {
		el, found, _ := lookup(rp, loc)
		if !found {
			return nil, false
		}
		got, err := elementValue(el)
		return got, err == nil && got == value
	})
}

// ToHaveClass waits for the element's class list to include class.
func (p *Page) ToHaveClass(ctx context.Context, loc locator.Locator, class string) error {
	return p.expect(ctx, "to have class", loc, class, func(rp *rod.Page) (any, bool) {
		el, found, _ := lookup(rp, loc)
		if !found {
			return nil, false
		}
		got, err := el.Attribute("class")
		if err != nil || got == nil {
			return nil, false
		}
		return *got, slices.Contains(strings.Fields(*got), class)
	})
}

// ToBeChecked waits for a checkbox, radio or switch to reach want.
func (p *Page) ToBeChecked(ctx context.Context, loc locator.Locator, want bool) error {
	return p.expect(ctx, "to be checked", loc, want, func(rp *rod.Page) (any, bool) {
		el, found, _ := lookup(rp, loc)
		if !found {
			return nil, false
		}
		got, err := isChecked(el)
		return got, err == nil && got == want
	})
}

// IsVisible reports whether the element is visible right now.
func (p *Page) IsVisible(ctx context.Context, loc locator.Locator) (bool, error) {
	p.record("is visible", loc)
	var ok bool
	err := p.within(ctx, func(rp *rod.Page) error {
		el, found, err := lookup(rp, loc)
		if err != nil || !found {
			return err
		}
		ok, err = el.Visible()
		return err
	})
	return ok, err
}

// Value returns the current value of a form control.
func (p *Page) Value(ctx context.Context, loc locator.Locator) (string, error) {
	p.record("value", loc)
	var out string
	err := p.within(ctx, func(rp *rod.Page) error {
		el, err := resolve(rp, loc)
		if err != nil {
			return &failure.LocatorTimeout{Op: "value", Locator: loc.String(), State: "attached", Err: err}
		}
		out, err = elementValue(el)
		return err
	})
	return out, err
}

func elementValue(el *rod.Element) (string, error) {
	prop, err := el.Property("value")
	if err != nil {
		return "", err
	}
	return prop.Str(), nil
}

// Text returns the rendered text of a visible element.
func (p *Page) Text(ctx context.Context, loc locator.Locator) (string, error) {
	p.record("text", loc)
	var out string
	err := p.within(ctx, func(rp *rod.Page) error {
		el, err := visible(rp, "text", loc)
		if err != nil {
			return err
		}
		out, err = el.Text()
		return err
	})
	return strings.TrimSpace(out), err
}

// IsChecked returns the checked state of a checkbox, radio or switch.
func (p *Page) IsChecked(ctx context.Context, loc locator.Locator) (bool, error) {
	p.record("is checked", loc)
	var out bool
	err := p.within(ctx, func(rp *rod.Page) error {
		el, err := resolve(rp, loc)
		if err != nil {
			return &failure.LocatorTimeout{Op: "is checked", Locator: loc.String(), State: "attached", Err: err}
		}
		out, err = isChecked(el)
		return err
	})
	return out, err
}

// Count returns how many elements match right now.
func (p *Page) Count(ctx context.Context, loc locator.Locator) (int, error) {
	p.record("count", loc)
	var n int
	err := p.within(ctx, func(rp *rod.Page) error {
		els, err := lookupAll(rp, loc)
		n = len(els)
		return err
	})
	return n, err
}

// InnerHTML returns the markup inside a visible element.
func (p *Page) InnerHTML(ctx context.Context, loc locator.Locator) (string, error) {
	p.record("inner html", loc)
	var out string
	err := p.within(ctx, func(rp *rod.Page) error {
		el, err := visible(rp, "inner html", loc)
		if err != nil {
			return err
		}
		res, err := el.Eval(`() => this.innerHTML`)
		if err != nil {
			return err
		}
		out = res.Value.Str()
		return nil
	})
	return out, err
}

func selectedLabel(el *rod.Element) (string, error) {
	res, err := el.Eval(`() => { const o = this.selectedOptions[0]; return o ? o.text : '' }`)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Value.Str()), nil
}

// SelectedLabel returns the text of a select's chosen option.
func (p *Page) SelectedLabel(ctx context.Context, loc locator.Locator) (string, error) {
	p.record("selected label", loc)
	var out string
	err := p.within(ctx, func(rp *rod.Page) error {
		el, err := resolve(rp, loc)
		if err != nil {
			return &failure.LocatorTimeout{Op: "selected label", Locator: loc.String(), State: "attached", Err: err}
		}
		out, err = selectedLabel(el)
		return err
	})
	return out, err
}

// ToHaveSelectedLabel waits for a select's chosen option to read label.
func (p *Page) ToHaveSelectedLabel(ctx context.Context, loc locator.Locator, label string) error {
	return p.expect(ctx, "to have selected label", loc, label, func(rp *rod.Page) (any, bool) {
		el, found, _ := lookup(rp, loc)
		if !found {
			return nil, false
		}
		got, err := selectedLabel(el)
		return got, err == nil && got == label
	})
}
