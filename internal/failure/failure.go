// Package failure defines the typed errors surfaced by the harness. Each error
// identifies the operation and its target so a failed scenario can be
// localized to a single UI action, network wait, or fixture call.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for reporting.
type Kind string

// Failure kinds.
const (
	KindLocatorTimeout     Kind = "LocatorTimeout"
	KindAssertion          Kind = "AssertionFailure"
	KindFixtureSetup       Kind = "FixtureSetupFailure"
	KindNetworkWaitTimeout Kind = "NetworkWaitTimeout"
	KindUnknown            Kind = "Error"
)

// Kinded is implemented by every failure in this package.
type Kinded interface {
	error
	Kind() Kind
}

// LocatorTimeout is returned when an element does not reach the required
// state within the bounded wait.
type LocatorTimeout struct {
	Op      string
	Locator string
	State   string
	Err     error
}

func (e *LocatorTimeout) Error() string {
	return fmt.Sprintf("%s: %s did not become %s: %v", e.Op, e.Locator, e.State, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *LocatorTimeout) Unwrap() error { return e.Err }

// Kind satisfies [Kinded].
func (*LocatorTimeout) Kind() Kind { return KindLocatorTimeout }

// AssertionFailure is returned when an observed value does not match the
// expectation.
type AssertionFailure struct {
	Op       string
	Locator  string
	Expected any
	Actual   any
	Err      error
}

func (e *AssertionFailure) Error() string {
	msg := fmt.Sprintf("%s: %s: expected %q, got %q", e.Op, e.Locator, fmt.Sprint(e.Expected), fmt.Sprint(e.Actual))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error, if any.
func (e *AssertionFailure) Unwrap() error { return e.Err }

// Kind satisfies [Kinded].
func (*AssertionFailure) Kind() Kind { return KindAssertion }

// FixtureSetupFailure is returned when an out-of-band API or data store call
// fails. Scenarios abort before any UI interaction when they see it.
type FixtureSetupFailure struct {
	Op       string
	Endpoint string
	Status   int
	Err      error
}

func (e *FixtureSetupFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fixture %s %s: status %d: %v", e.Op, e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("fixture %s %s: %v", e.Op, e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *FixtureSetupFailure) Unwrap() error { return e.Err }

// Kind satisfies [Kinded].
func (*FixtureSetupFailure) Kind() Kind { return KindFixtureSetup }

// NetworkWaitTimeout is returned when an expected backend response never
// arrives after a UI action.
type NetworkWaitTimeout struct {
	Op      string
	Pattern string
	Locator string
	Err     error
}

func (e *NetworkWaitTimeout) Error() string {
	return fmt.Sprintf("%s: no response matching %q after %s: %v", e.Op, e.Pattern, e.Locator, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkWaitTimeout) Unwrap() error { return e.Err }

// Kind satisfies [Kinded].
func (*NetworkWaitTimeout) Kind() Kind { return KindNetworkWaitTimeout }

// KindOf returns the kind of the first failure found in err's chain, or
// [KindUnknown].
func KindOf(err error) Kind {
	var kinded Kinded
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	return KindUnknown
}

// Fixture wraps err as a [FixtureSetupFailure] unless it already is one.
func Fixture(op, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	var existing *FixtureSetupFailure
	if errors.As(err, &existing) {
		return err
	}
	return &FixtureSetupFailure{Op: op, Endpoint: endpoint, Err: err}
}
