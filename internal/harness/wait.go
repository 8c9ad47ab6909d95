package harness

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"gopkg.in/cenkalti/backoff.v1"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/locator"
)

// Retry calls fn with exponential backoff until it returns nil or timeout
// elapses. fn must be idempotent. The last error is returned wrapped.
func Retry(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = pollInterval
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = timeout

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		return fn(ctx)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("did not pass after %d attempts: %w", attempts, err)
	}
	return nil
}

// ToPass retries fn until it passes or the page retry timeout elapses.
func (p *Page) ToPass(ctx context.Context, fn func(ctx context.Context) error) error {
	return Retry(ctx, p.opts.RetryTimeout, fn)
}

// ClickAndWaitForResponseAndLoadState clicks loc and waits for a response
// whose URL matches urlPattern, then for the page to finish loading. A
// response with an error status fails the step.
func (p *Page) ClickAndWaitForResponseAndLoadState(ctx context.Context, urlPattern string, loc locator.Locator) error {
	const op = "click and wait for response"
	status, url, err := p.clickAndWait(ctx, op, urlPattern, loc)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return &failure.AssertionFailure{
			Op:       op,
			Locator:  url,
			Expected: "status < 400",
			Actual:   status,
		}
	}
	return nil
}

// ClickAndExpectStatus clicks loc and waits for a response matching
// urlPattern that carries exactly status, as when a form submission is
// expected to be rejected.
func (p *Page) ClickAndExpectStatus(ctx context.Context, urlPattern string, loc locator.Locator, status int) error {
	const op = "click and expect status"
	got, url, err := p.clickAndWait(ctx, op, urlPattern, loc)
	if err != nil {
		return err
	}
	if got != status {
		return &failure.AssertionFailure{Op: op, Locator: url, Expected: status, Actual: got}
	}
	return nil
}

func (p *Page) clickAndWait(ctx context.Context, op, urlPattern string, loc locator.Locator) (int, string, error) {
	p.record(op, loc)
	pattern, err := regexp.Compile(urlPattern)
	if err != nil {
		return 0, "", fmt.Errorf("invalid response pattern %q: %w", urlPattern, err)
	}
	var (
		matched  bool
		document bool
		status   int
		url      string
	)
	err = p.within(ctx, func(rp *rod.Page) error {
		// Subscribe before clicking so a fast response is never missed.
		wait := rp.EachEvent(
			func(e *proto.NetworkResponseReceived) bool {
				if matched || !pattern.MatchString(e.Response.URL) {
					return false
				}
				matched, status, url = true, e.Response.Status, e.Response.URL
				document = e.Type == proto.NetworkResourceTypeDocument
				return !document
			},
			func(*proto.PageLoadEventFired) bool {
				return matched && document
			},
		)
		if err := click(rp, op, loc); err != nil {
			return err
		}
		wait()

		if !matched {
			return &failure.NetworkWaitTimeout{Op: op, Pattern: urlPattern, Locator: loc.String(), Err: rp.GetContext().Err()}
		}
		p.logger.DebugContext(rp.GetContext(), "response received",
			slog.String("url", url),
			slog.Int("status", status),
			slog.Bool("document", document),
		)
		if document {
			p.navigated()
		}
		if err := rp.WaitLoad(); err != nil {
			return &failure.NetworkWaitTimeout{Op: op, Pattern: urlPattern, Locator: loc.String(), Err: err}
		}
		return nil
	})
	return status, url, err
}

// EnableSwitcherAndWaitForResponse turns a switch on and waits for the
// request it triggers. It reports false without acting when the switch is
// already on.
func (p *Page) EnableSwitcherAndWaitForResponse(ctx context.Context, urlPattern string, loc locator.Locator) (bool, error) {
	return p.switchAndWait(ctx, urlPattern, loc, true)
}

// DisableSwitcherAndWaitForResponse is the inverse of
// EnableSwitcherAndWaitForResponse.
func (p *Page) DisableSwitcherAndWaitForResponse(ctx context.Context, urlPattern string, loc locator.Locator) (bool, error) {
	return p.switchAndWait(ctx, urlPattern, loc, false)
}

func (p *Page) switchAndWait(ctx context.Context, urlPattern string, loc locator.Locator, want bool) (bool, error) {
	if err := p.ToBeVisible(ctx, loc); err != nil {
		return false, err
	}
	checked, err := p.IsChecked(ctx, loc)
	if err != nil {
		return false, err
	}
	if checked == want {
		return false, nil
	}
	if err = p.ClickAndWaitForResponseAndLoadState(ctx, urlPattern, loc); err != nil {
		return false, err
	}
	return true, p.ToBeChecked(ctx, loc, want)
}
