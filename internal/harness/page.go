// Package harness drives a real browser on behalf of page objects. Page wraps
// a go-rod page with bounded waits, typed failures and a trace of every
// locator it touched; Browser and Session manage role-bound browser contexts
// seeded from stored authentication state.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/go-rod/rod"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/locator"
)

const (
	// DefaultTimeout bounds every single element wait and assertion.
	DefaultTimeout = 10 * time.Second
	// DefaultRetryTimeout bounds ToPass.
	DefaultRetryTimeout = 30 * time.Second

	pollInterval = 100 * time.Millisecond
)

// PageOptions tune the waits of a Page.
type PageOptions struct {
	Timeout      time.Duration
	RetryTimeout time.Duration
}

func (o PageOptions) withDefaults() PageOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RetryTimeout <= 0 {
		o.RetryTimeout = DefaultRetryTimeout
	}
	return o
}

// TraceEntry records one primitive applied to a locator.
type TraceEntry struct {
	Op      string
	Locator string
	Tier    locator.Tier
	Module  string
}

// Page is the base page object. It is not safe for concurrent use; a
// scenario drives its pages sequentially.
type Page struct {
	page   *rod.Page
	base   *url.URL
	role   locator.Role
	opts   PageOptions
	logger *slog.Logger

	mu    sync.Mutex
	navs  int
	trace []TraceEntry
}

// NewPage wraps an open rod page. Relative paths resolve against base.
func NewPage(rp *rod.Page, base *url.URL, role locator.Role, opts PageOptions, logger *slog.Logger) *Page {
	return &Page{
		page:   rp,
		base:   base,
		role:   role,
		opts:   opts.withDefaults(),
		logger: logger.With(slog.String("component", "harness.page"), slog.String("role", string(role))),
	}
}

// Role is the role of the session the page belongs to.
func (p *Page) Role() locator.Role { return p.role }

// Rod exposes the underlying page for diagnostics such as screenshots.
func (p *Page) Rod() *rod.Page { return p.page }

// Close closes the browser tab.
func (p *Page) Close() error { return p.page.Close() }

// Trace returns a copy of every primitive applied so far.
func (p *Page) Trace() []TraceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.trace)
}

// Navigations returns how many times the page navigated or reloaded.
func (p *Page) Navigations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navs
}

func (p *Page) record(op string, loc locator.Locator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trace = append(p.trace, TraceEntry{Op: op, Locator: loc.Name, Tier: loc.Tier, Module: loc.Module})
}

func (p *Page) navigated() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navs++
}

// URL resolves path against the base URL.
func (p *Page) URL(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	return p.base.ResolveReference(ref), nil
}

// CurrentURL returns the URL of the loaded document.
func (p *Page) CurrentURL(ctx context.Context) (*url.URL, error) {
	var current *url.URL
	err := p.within(ctx, func(rp *rod.Page) error {
		info, err := rp.Info()
		if err != nil {
			return err
		}
		current, err = url.Parse(info.URL)
		return err
	})
	return current, err
}

// Goto navigates to path and waits for the load event.
func (p *Page) Goto(ctx context.Context, path string) error {
	target, err := p.URL(path)
	if err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "navigate", slog.String("url", target.String()))
	p.navigated()
	return p.within(ctx, func(rp *rod.Page) error {
		if err := rp.Navigate(target.String()); err != nil {
			return fmt.Errorf("failed to navigate to %s: %w", target, err)
		}
		if err := rp.WaitLoad(); err != nil {
			return fmt.Errorf("failed to load %s: %w", target, err)
		}
		return nil
	})
}

// GoIfNotThere navigates to path unless the current document already has the
// same path and query.
func (p *Page) GoIfNotThere(ctx context.Context, path string) error {
	target, err := p.URL(path)
	if err != nil {
		return err
	}
	current, err := p.CurrentURL(ctx)
	if err == nil && samePage(current, target) {
		return nil
	}
	return p.Goto(ctx, path)
}

// samePage compares two URLs ignoring the fragment.
func samePage(a, b *url.URL) bool {
	return a.Scheme == b.Scheme &&
		a.Host == b.Host &&
		a.EscapedPath() == b.EscapedPath() &&
		a.Query().Encode() == b.Query().Encode()
}

// Reload reloads the current document.
func (p *Page) Reload(ctx context.Context) error {
	p.navigated()
	return p.within(ctx, func(rp *rod.Page) error {
		if err := rp.Reload(); err != nil {
			return fmt.Errorf("failed to reload: %w", err)
		}
		return rp.WaitLoad()
	})
}

// within runs fn against the page bound to a context limited by the page
// timeout.
func (p *Page) within(ctx context.Context, fn func(rp *rod.Page) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()
	return fn(p.page.Context(ctx))
}

// resolve waits for the locator to match an element.
func resolve(rp *rod.Page, loc locator.Locator) (*rod.Element, error) {
	switch loc.Strategy {
	case locator.XPath:
		return rp.ElementX(loc.Query)
	case locator.Text:
		return rp.ElementR(loc.Query, loc.Pattern)
	default:
		return rp.Element(loc.Query)
	}
}

// lookup returns the matching element without waiting.
func lookup(rp *rod.Page, loc locator.Locator) (*rod.Element, bool, error) {
	var (
		found bool
		el    *rod.Element
		err   error
	)
	switch loc.Strategy {
	case locator.XPath:
		found, el, err = rp.HasX(loc.Query)
	case locator.Text:
		found, el, err = rp.HasR(loc.Query, loc.Pattern)
	default:
		found, el, err = rp.Has(loc.Query)
	}
	return el, found && err == nil, err
}

// lookupAll returns every matching element without waiting.
func lookupAll(rp *rod.Page, loc locator.Locator) (rod.Elements, error) {
	switch loc.Strategy {
	case locator.XPath:
		return rp.ElementsX(loc.Query)
	case locator.Text:
		els, err := rp.Elements(loc.Query)
		if err != nil {
			return nil, err
		}
		pattern, err := regexp.Compile(loc.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for %s: %w", loc.Name, err)
		}
		var out rod.Elements
		for _, el := range els {
			if text, err := el.Text(); err == nil && pattern.MatchString(text) {
				out = append(out, el)
			}
		}
		return out, nil
	default:
		return rp.Elements(loc.Query)
	}
}

// visible waits for the locator to match a visible element.
func visible(rp *rod.Page, op string, loc locator.Locator) (*rod.Element, error) {
	el, err := resolve(rp, loc)
	if err == nil {
		err = el.WaitVisible()
	}
	if err != nil {
		return nil, &failure.LocatorTimeout{Op: op, Locator: loc.String(), State: "visible", Err: err}
	}
	return el, nil
}

// enabled waits for the locator to match a visible, enabled element.
func enabled(rp *rod.Page, op string, loc locator.Locator) (*rod.Element, error) {
	el, err := visible(rp, op, loc)
	if err != nil {
		return nil, err
	}
	if err = el.WaitEnabled(); err != nil {
		return nil, &failure.LocatorTimeout{Op: op, Locator: loc.String(), State: "enabled", Err: err}
	}
	return el, nil
}
