package harness

import (
	"context"
	"regexp"
	"strconv"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/locator"
)

// checkedJS reads the checked state of a checkbox, radio, or a label or
// switch wrapping one.
const checkedJS = `() => {
	const input = this.matches('input') ? this : this.querySelector('input[type=checkbox], input[type=radio]');
	return !!(input && input.checked);
}`

// Click clicks the element once it is visible and enabled.
func (p *Page) Click(ctx context.Context, loc locator.Locator) error {
	p.record("click", loc)
	return p.within(ctx, func(rp *rod.Page) error {
		return click(rp, "click", loc)
	})
}

func click(rp *rod.Page, op string, loc locator.Locator) error {
	el, err := enabled(rp, op, loc)
	if err != nil {
		return err
	}
	if err = el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return &failure.LocatorTimeout{Op: op, Locator: loc.String(), State: "clickable", Err: err}
	}
	return nil
}

// ClearAndType replaces the value of an input or textarea.
func (p *Page) ClearAndType(ctx context.Context, loc locator.Locator, text string) error {
	p.record("type", loc)
	return p.within(ctx, func(rp *rod.Page) error {
		el, err := enabled(rp, "type", loc)
		if err != nil {
			return err
		}
		if _, err = el.Eval(`() => { this.value = '' }`); err == nil {
			err = el.Input(text)
		}
		if err != nil {
			return &failure.LocatorTimeout{Op: "type", Locator: loc.String(), State: "writable", Err: err}
		}
		return nil
	})
}

// SelectByValue picks the option of a select whose value is value.
func (p *Page) SelectByValue(ctx context.Context, loc locator.Locator, value string) error {
	p.record("select", loc)
	return p.selectOption(ctx, loc, optionByValue(value), rod.SelectorTypeCSSSector)
}

func optionByValue(value string) string {
	return "option[value=" + strconv.Quote(value) + "]"
}

// SelectByLabel picks the option of a select whose text is label.
func (p *Page) SelectByLabel(ctx context.Context, loc locator.Locator, label string) error {
	p.record("select", loc)
	return p.selectOption(ctx, loc, `^\s*`+regexp.QuoteMeta(label)+`\s*$`, rod.SelectorTypeRegex)
}

func (p *Page) selectOption(ctx context.Context, loc locator.Locator, option string, kind rod.SelectorType) error {
	return p.within(ctx, func(rp *rod.Page) error {
		el, err := enabled(rp, "select", loc)
		if err != nil {
			return err
		}
		if err = el.Select([]string{option}, true, kind); err != nil {
			return &failure.LocatorTimeout{Op: "select", Locator: loc.String(), State: "selectable " + option, Err: err}
		}
		return nil
	})
}

// Check ensures a checkbox or radio is checked.
func (p *Page) Check(ctx context.Context, loc locator.Locator) error {
	return p.SetChecked(ctx, loc, true)
}

// Uncheck ensures a checkbox is unchecked.
func (p *Page) Uncheck(ctx context.Context, loc locator.Locator) error {
	return p.SetChecked(ctx, loc, false)
}

// SetChecked clicks the element only when its checked state differs from
// want, then waits for the new state.
func (p *Page) SetChecked(ctx context.Context, loc locator.Locator, want bool) error {
	op := "check"
	if !want {
		op = "uncheck"
	}
	p.record(op, loc)
	return p.within(ctx, func(rp *rod.Page) error {
		return toggle(rp, op, loc, want)
	})
}

// EnableSwitcher turns a switch on unless it already is.
func (p *Page) EnableSwitcher(ctx context.Context, loc locator.Locator) error {
	p.record("enable switcher", loc)
	return p.within(ctx, func(rp *rod.Page) error {
		return toggle(rp, "enable switcher", loc, true)
	})
}

// DisableSwitcher turns a switch off unless it already is.
func (p *Page) DisableSwitcher(ctx context.Context, loc locator.Locator) error {
	p.record("disable switcher", loc)
	return p.within(ctx, func(rp *rod.Page) error {
		return toggle(rp, "disable switcher", loc, false)
	})
}

// SetSwitcher turns a switch on or off.
func (p *Page) SetSwitcher(ctx context.Context, loc locator.Locator, on bool) error {
	if on {
		return p.EnableSwitcher(ctx, loc)
	}
	return p.DisableSwitcher(ctx, loc)
}

func toggle(rp *rod.Page, op string, loc locator.Locator, want bool) error {
	el, err := enabled(rp, op, loc)
	if err != nil {
		return err
	}
	checked, err := isChecked(el)
	if err != nil {
		return &failure.LocatorTimeout{Op: op, Locator: loc.String(), State: "checkable", Err: err}
	}
	if checked == want {
		return nil
	}
	if err = el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return &failure.LocatorTimeout{Op: op, Locator: loc.String(), State: "clickable", Err: err}
	}
	if checked, err = isChecked(el); err != nil || checked != want {
		return &failure.AssertionFailure{Op: op, Locator: loc.String(), Expected: want, Actual: checked, Err: err}
	}
	return nil
}

func isChecked(el *rod.Element) (bool, error) {
	res, err := el.Eval(checkedJS)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// ScrollToTop scrolls the window to the top.
func (p *Page) ScrollToTop(ctx context.Context) error {
	return p.scroll(ctx, `() => window.scrollTo(0, 0)`)
}

// ScrollToBottom scrolls the window to the end of the document.
func (p *Page) ScrollToBottom(ctx context.Context) error {
	return p.scroll(ctx, `() => window.scrollTo(0, document.documentElement.scrollHeight)`)
}

func (p *Page) scroll(ctx context.Context, js string) error {
	return p.within(ctx, func(rp *rod.Page) error {
		_, err := rp.Eval(js)
		return err
	})
}

// ScrollY returns the vertical scroll offset of the window.
func (p *Page) ScrollY(ctx context.Context) (float64, error) {
	var y float64
	err := p.within(ctx, func(rp *rod.Page) error {
		res, err := rp.Eval(`() => window.scrollY`)
		if err != nil {
			return err
		}
		y = res.Value.Num()
		return nil
	})
	return y, err
}
