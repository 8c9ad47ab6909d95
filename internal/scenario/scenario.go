// Package scenario declares the browser suites and runs them. A suite groups
// tagged scenarios that share role sessions, resource locks and a snapshot of
// the global state they mutate; the runner executes suites concurrently and
// scenarios within a suite in order.
package scenario

import (
	"context"
	"log/slog"
	"slices"

	"github.com/stolasapp/mercato/internal/fixture"
	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/testdata"
)

// Tag labels scenarios for filtering.
type Tag string

const (
	TagLite        Tag = "lite"
	TagPro         Tag = "pro"
	TagAdmin       Tag = "admin"
	TagVendor      Tag = "vendor"
	TagCustomer    Tag = "customer"
	TagExploratory Tag = "exploratory"
)

// Func is the body of a scenario.
type Func func(ctx context.Context, env *Env) error

// Scenario is one sequential journey.
type Scenario struct {
	Name string
	Tags []Tag
	Run  Func
}

// Suite is a set of scenarios run in order against shared sessions.
type Suite struct {
	Name string
	Tags []Tag
	// Roles are the sessions opened for the suite.
	Roles []locator.Role
	// Resources are lock keys held for the whole suite.
	Resources []string
	// Scope is captured before the suite and restored after it.
	Scope     fixture.Scope
	BeforeAll Func
	AfterAll  Func
	Scenarios []Scenario
}

// tags returns the suite's tags followed by the scenario's, without
// duplicates.
func (s *Suite) tags(sc Scenario) []Tag {
	out := slices.Clone(s.Tags)
	for _, tag := range sc.Tags {
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// Accounts are the credentials and identifiers scenarios act with.
type Accounts struct {
	Admin    testdata.Credentials
	Vendor   testdata.Credentials
	Customer testdata.Credentials
	VendorID uint64
}

// Credentials returns the login of role.
func (a Accounts) Credentials(role locator.Role) testdata.Credentials {
	switch role {
	case locator.Admin:
		return a.Admin
	case locator.Vendor:
		return a.Vendor
	case locator.Customer:
		return a.Customer
	default:
		return testdata.Credentials{}
	}
}

// Env is what a scenario receives: one page per suite role, the fixture
// clients and the site's capabilities.
type Env struct {
	Caps     *harness.Capabilities
	API      *fixture.APIClient
	DB       *fixture.DBClient
	Data     *testdata.Generator
	Accounts Accounts
	Logger   *slog.Logger

	pages map[locator.Role]*harness.Page
}

// Page returns the page of role's session. It is nil when the suite did not
// declare the role.
func (e *Env) Page(role locator.Role) *harness.Page {
	return e.pages[role]
}

// RefreshCapabilities re-reads the active modules after a scenario toggled
// one out of band.
func (e *Env) RefreshCapabilities(ctx context.Context) error {
	if e.API == nil {
		return nil
	}
	return e.Caps.Refresh(ctx, e.API)
}
