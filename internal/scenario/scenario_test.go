package scenario

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/fixture"
	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/selector"
	"github.com/stolasapp/mercato/internal/site"
	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/testdata"
)

func TestCompileFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		expr    string
		wantErr string
	}{
		{name: "empty", expr: ""},
		{name: "tag membership", expr: `"vendor" in tags`},
		{name: "string extension", expr: `name.lowerAscii().contains("paypal")`},
		{name: "syntax error", expr: `tags in`, wantErr: "failed to compile filter"},
		{name: "unknown variable", expr: `role == "admin"`, wantErr: "failed to compile filter"},
		{name: "not a bool", expr: `suite + name`, wantErr: "must return bool"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			f, err := CompileFilter(test.expr)
			if test.wantErr != "" {
				require.ErrorContains(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			if test.expr == "" {
				assert.Nil(t, f)
				assert.Equal(t, "true", f.String())
				return
			}
			assert.Equal(t, test.expr, f.String())
		})
	}
}

func TestFilterMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr  string
		suite string
		name  string
		tags  []Tag
		tier  string
		want  bool
	}{
		{expr: `"vendor" in tags`, suite: "withdraw", name: "x", tags: []Tag{TagVendor}, tier: "lite", want: true},
		{expr: `"vendor" in tags`, suite: "settings", name: "x", tags: []Tag{TagAdmin}, tier: "lite", want: false},
		{expr: `!("exploratory" in tags)`, suite: "settings", name: "x", tags: []Tag{TagExploratory}, tier: "pro", want: false},
		{expr: `suite == "settings" && name.startsWith("general")`, suite: "settings", name: "general settings round trip", tier: "pro", want: true},
		{expr: `tier == "pro"`, suite: "modules", name: "x", tier: "lite", want: false},
		{expr: `size(tags) == 0`, suite: "auth", name: "x", want: true},
	}
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			t.Parallel()
			f, err := CompileFilter(test.expr)
			require.NoError(t, err)
			got, err := f.Match(test.suite, test.name, test.tags, test.tier)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}

	t.Run("nil matches", func(t *testing.T) {
		t.Parallel()
		var f *Filter
		got, err := f.Match("any", "any", nil, "lite")
		require.NoError(t, err)
		assert.True(t, got)
	})
}

func TestReport(t *testing.T) {
	t.Parallel()

	r := newReport()
	r.add(Result{Suite: "withdraw", Scenario: "minimum", Status: StatusPassed, Duration: 1500 * time.Millisecond})
	r.add(Result{
		Suite:    "auth",
		Scenario: "login",
		Status:   StatusFailed,
		Kind:     failure.KindAssertion,
		Err:      errors.New("boom"),
	})
	r.add(Result{Suite: "auth", Scenario: "skrill", Status: StatusSkipped, Reason: "requires pro"})
	r.addTeardown("auth", nil)
	assert.Equal(t, 1, r.Count(StatusFailed))
	assert.Empty(t, r.TeardownErrors())

	r.addTeardown("withdraw", failure.Fixture("restore", "dokan_withdraw", errors.New("gone")))

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	assert.Equal(t,
		"FAIL auth/login (0s) [AssertionFailure] boom\n"+
			"SKIP auth/skrill (0s) requires pro\n"+
			"PASS withdraw/minimum (1.5s)\n"+
			"TEARDOWN withdraw [FixtureSetupFailure] fixture restore dokan_withdraw: gone\n"+
			"1 passed, 1 failed, 1 skipped\n",
		buf.String())
	assert.True(t, r.Failed())

	clean := newReport()
	clean.add(Result{Suite: "auth", Scenario: "login", Status: StatusPassed})
	assert.False(t, clean.Failed())
}

type fakeSession struct {
	role          locator.Role
	authenticated bool
	saved         atomic.Bool
	closed        atomic.Bool
}

func (s *fakeSession) Authenticated() bool { return s.authenticated }

func (s *fakeSession) NewPage(context.Context) (*harness.Page, error) { return nil, nil }

func (s *fakeSession) SaveAuthState(context.Context) error {
	s.saved.Store(true)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed.Store(true)
	return nil
}

type fakeOpener struct {
	mu       sync.Mutex
	sessions []*fakeSession
	// stored marks roles whose auth state already exists.
	stored map[locator.Role]bool
}

func (o *fakeOpener) Open(_ context.Context, role locator.Role) (Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := &fakeSession{role: role, authenticated: o.stored[role]}
	o.sessions = append(o.sessions, s)
	return s, nil
}

func newRunner(opener Opener) *Runner {
	return &Runner{
		Sessions: opener,
		Caps:     harness.NewCapabilities(locator.Lite),
		Seed:     1,
		Logger:   slog.New(slog.DiscardHandler),
	}
}

func pass(context.Context, *Env) error { return nil }

func resultsByName(report *Report) map[string]Result {
	out := map[string]Result{}
	for _, res := range report.Results() {
		out[res.Suite+"/"+res.Scenario] = res
	}
	return out
}

func TestRunner(t *testing.T) {
	t.Parallel()

	t.Run("runs scenarios in order", func(t *testing.T) {
		t.Parallel()
		var order []string
		record := func(name string, err error) Func {
			return func(context.Context, *Env) error {
				order = append(order, name)
				return err
			}
		}
		suite := &Suite{
			Name: "ordered",
			Scenarios: []Scenario{
				{Name: "first", Run: record("first", nil)},
				{Name: "second", Run: record("second", &failure.AssertionFailure{Op: "x"})},
				{Name: "third", Run: record("third", nil)},
			},
		}
		report, err := newRunner(&fakeOpener{}).Run(t.Context(), []*Suite{suite})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "third"}, order)

		results := report.Results()
		require.Len(t, results, 3)
		assert.Equal(t, StatusPassed, results[0].Status)
		assert.Equal(t, StatusFailed, results[1].Status)
		assert.Equal(t, failure.KindAssertion, results[1].Kind)
		assert.Equal(t, StatusPassed, results[2].Status)
	})

	t.Run("skips pro scenarios on lite and filtered ones", func(t *testing.T) {
		t.Parallel()
		ran := atomic.Int32{}
		count := func(context.Context, *Env) error {
			ran.Add(1)
			return nil
		}
		suite := &Suite{
			Name: "tiers",
			Tags: []Tag{TagAdmin},
			Scenarios: []Scenario{
				{Name: "lite", Tags: []Tag{TagLite}, Run: count},
				{Name: "pro", Tags: []Tag{TagPro}, Run: count},
				{Name: "exploratory", Tags: []Tag{TagLite, TagExploratory}, Run: count},
			},
		}
		runner := newRunner(&fakeOpener{})
		filter, err := CompileFilter(`!("exploratory" in tags)`)
		require.NoError(t, err)
		runner.Filter = filter

		report, err := runner.Run(t.Context(), []*Suite{suite})
		require.NoError(t, err)
		assert.EqualValues(t, 1, ran.Load())

		results := resultsByName(report)
		assert.Equal(t, StatusPassed, results["tiers/lite"].Status)
		assert.Equal(t, StatusSkipped, results["tiers/pro"].Status)
		assert.Equal(t, "requires pro", results["tiers/pro"].Reason)
		assert.Equal(t, StatusSkipped, results["tiers/exploratory"].Status)
		assert.Equal(t, []Tag{TagAdmin, TagLite, TagExploratory}, results["tiers/exploratory"].Tags)
	})

	t.Run("runs pro scenarios on pro", func(t *testing.T) {
		t.Parallel()
		suite := &Suite{
			Name:      "tiers",
			Scenarios: []Scenario{{Name: "pro", Tags: []Tag{TagPro}, Run: pass}},
		}
		runner := newRunner(&fakeOpener{})
		runner.Caps = harness.NewCapabilities(locator.Pro)
		report, err := runner.Run(t.Context(), []*Suite{suite})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Count(StatusPassed))
	})

	t.Run("opens and authenticates a session per role", func(t *testing.T) {
		t.Parallel()
		opener := &fakeOpener{stored: map[locator.Role]bool{locator.Vendor: true}}
		var (
			mu       sync.Mutex
			loggedIn []locator.Role
		)
		runner := newRunner(opener)
		runner.SaveAuth = true
		runner.Login = func(_ context.Context, _ *harness.Page, role locator.Role) error {
			mu.Lock()
			defer mu.Unlock()
			loggedIn = append(loggedIn, role)
			return nil
		}
		suite := &Suite{
			Name:      "roles",
			Roles:     []locator.Role{locator.Admin, locator.Vendor, locator.Guest},
			Scenarios: []Scenario{{Name: "noop", Run: pass}},
		}
		report, err := runner.Run(t.Context(), []*Suite{suite})
		require.NoError(t, err)
		assert.False(t, report.Failed())

		assert.Equal(t, []locator.Role{locator.Admin}, loggedIn)
		require.Len(t, opener.sessions, 3)
		for _, s := range opener.sessions {
			assert.True(t, s.closed.Load(), s.role)
			assert.Equal(t, s.role == locator.Admin, s.saved.Load(), s.role)
		}
	})

	t.Run("setup failure fails every scenario and still tears down", func(t *testing.T) {
		t.Parallel()
		afterAll := atomic.Bool{}
		opener := &fakeOpener{}
		suite := &Suite{
			Name:  "broken",
			Roles: []locator.Role{locator.Admin},
			BeforeAll: func(context.Context, *Env) error {
				return failure.Fixture("seed", "dokan_withdraw", errors.New("down"))
			},
			AfterAll: func(context.Context, *Env) error {
				afterAll.Store(true)
				return nil
			},
			Scenarios: []Scenario{
				{Name: "one", Run: pass},
				{Name: "two", Run: pass},
			},
		}
		report, err := newRunner(opener).Run(t.Context(), []*Suite{suite})
		require.NoError(t, err)
		for _, res := range report.Results() {
			assert.Equal(t, StatusFailed, res.Status, res.Scenario)
			assert.Equal(t, failure.KindFixtureSetup, res.Kind, res.Scenario)
		}
		assert.Equal(t, 2, report.Count(StatusFailed))
		assert.True(t, afterAll.Load())
		require.Len(t, opener.sessions, 1)
		assert.True(t, opener.sessions[0].closed.Load())
	})

	t.Run("teardown errors are reported", func(t *testing.T) {
		t.Parallel()
		suite := &Suite{
			Name: "leaky",
			AfterAll: func(context.Context, *Env) error {
				return errors.New("cleanup failed")
			},
			Scenarios: []Scenario{{Name: "one", Run: pass}},
		}
		report, err := newRunner(&fakeOpener{}).Run(t.Context(), []*Suite{suite})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Count(StatusPassed))
		require.Contains(t, report.TeardownErrors(), "leaky")
		assert.True(t, report.Failed())
	})

	t.Run("scenario timeout", func(t *testing.T) {
		t.Parallel()
		suite := &Suite{
			Name: "slow",
			Scenarios: []Scenario{{Name: "hangs", Run: func(ctx context.Context, _ *Env) error {
				<-ctx.Done()
				return ctx.Err()
			}}},
		}
		runner := newRunner(&fakeOpener{})
		runner.ScenarioTimeout = 10 * time.Millisecond
		report, err := runner.Run(t.Context(), []*Suite{suite})
		require.NoError(t, err)
		results := report.Results()
		require.Len(t, results, 1)
		require.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	})

	t.Run("suites sharing a resource never overlap", func(t *testing.T) {
		t.Parallel()
		var inside, overlaps atomic.Int32
		hold := func(context.Context, *Env) error {
			if inside.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(5 * time.Millisecond)
			inside.Add(-1)
			return nil
		}
		var suites []*Suite
		for _, name := range []string{"a", "b", "c", "d"} {
			suites = append(suites, &Suite{
				Name:      name,
				Resources: []string{harness.OptionResource(testdata.OptionWithdraw)},
				Scenarios: []Scenario{{Name: "hold", Run: hold}},
			})
		}
		runner := newRunner(&fakeOpener{})
		runner.Parallel = 4
		report, err := runner.Run(t.Context(), suites)
		require.NoError(t, err)
		assert.Equal(t, 4, report.Count(StatusPassed))
		assert.Zero(t, overlaps.Load())
	})

	t.Run("parallel limit", func(t *testing.T) {
		t.Parallel()
		var inside, peak atomic.Int32
		hold := func(context.Context, *Env) error {
			n := inside.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inside.Add(-1)
			return nil
		}
		var suites []*Suite
		for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
			suites = append(suites, &Suite{Name: name, Scenarios: []Scenario{{Name: "hold", Run: hold}}})
		}
		runner := newRunner(&fakeOpener{})
		runner.Parallel = 2
		report, err := runner.Run(t.Context(), suites)
		require.NoError(t, err)
		assert.Equal(t, 6, report.Count(StatusPassed))
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("restores the suite scope", func(t *testing.T) {
		t.Parallel()
		api := newSiteAPI(t)
		suite := &Suite{
			Name:  "mutating",
			Scope: fixture.Scope{Options: []string{testdata.OptionWithdraw}},
			Scenarios: []Scenario{{Name: "set minimum", Run: func(ctx context.Context, env *Env) error {
				return env.API.PatchOption(ctx, testdata.OptionWithdraw, map[string]any{"withdraw_limit": "0"})
			}}},
		}
		runner := newRunner(&fakeOpener{})
		runner.API = api
		report, err := runner.Run(t.Context(), []*Suite{suite})
		require.NoError(t, err)
		assert.False(t, report.Failed())

		_, err = api.GetOption(t.Context(), testdata.OptionWithdraw)
		require.ErrorIs(t, err, fixture.ErrOptionNotFound)
	})
}

func newSiteAPI(t *testing.T) *fixture.APIClient {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store, err := storage.NewDB(t.Context(), filepath.Join(t.TempDir(), "scenario.sqlite"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	admin := testdata.Credentials{Username: "admin", Password: "password"}
	require.NoError(t, site.Seed(t.Context(), logger, store, site.Accounts{Admin: admin}))
	srv, err := site.New(site.Config{}, logger, store)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	api, err := fixture.NewAPIClient(ts.URL+"/", admin,
		fixture.WithHTTPClient(ts.Client()), fixture.WithRateLimit(1000), fixture.WithLogger(logger))
	require.NoError(t, err)
	return api
}

func TestSuites(t *testing.T) {
	t.Parallel()

	suites := Suites(7)
	names := map[string]bool{}
	for _, suite := range suites {
		assert.False(t, names[suite.Name], "duplicate suite %s", suite.Name)
		names[suite.Name] = true
		assert.NotEmpty(t, suite.Scenarios, suite.Name)

		scenarios := map[string]bool{}
		for _, sc := range suite.Scenarios {
			assert.NotNil(t, sc.Run, sc.Name)
			assert.False(t, scenarios[sc.Name], "duplicate scenario %s/%s", suite.Name, sc.Name)
			scenarios[sc.Name] = true
		}
		if len(suite.Scope.Options) > 0 {
			for _, option := range suite.Scope.Options {
				if option == testdata.OptionWCGeneral {
					continue
				}
				assert.Contains(t, suite.Resources, harness.OptionResource(option), suite.Name)
			}
		}
		if suite.Scope.Modules {
			assert.Contains(t, suite.Resources, harness.ModulesResource, suite.Name)
		}
		for _, key := range suite.Scope.Meta {
			assert.Equal(t, uint64(7), key.UserID, suite.Name)
			assert.Contains(t, suite.Resources, harness.UserResource(7), suite.Name)
		}
	}
}

func TestVisibleMinimum(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "50", visibleMinimum("50"))
	assert.Empty(t, visibleMinimum("0"))
	assert.Empty(t, visibleMinimum("0.00"))
}

func TestExpectLiteTrace(t *testing.T) {
	t.Parallel()
	// A page with no trace passes on both tiers.
	page := harness.NewPage(nil, nil, locator.Admin, harness.PageOptions{}, slog.New(slog.DiscardHandler))
	require.NoError(t, expectLiteTrace(page, harness.NewCapabilities(locator.Lite)))
	require.NoError(t, expectLiteTrace(page, harness.NewCapabilities(locator.Pro)))
}

func TestLiteTrace(t *testing.T) {
	t.Parallel()

	support := selector.StoreSupport.MenuItem
	entry := func(op string, loc locator.Locator) harness.TraceEntry {
		return harness.TraceEntry{Op: op, Locator: loc.Name, Tier: loc.Tier, Module: loc.Module}
	}

	// The settings render check on lite only asserts the store support menu
	// is absent.
	rendered := []harness.TraceEntry{
		entry("to be visible", selector.Settings.Header),
		entry("to be visible", selector.Settings.MenuItem("general")),
		entry(harness.OpNotToBeVisible, support),
	}
	require.NoError(t, liteTrace(rendered))

	touched := append(rendered, entry("to be visible", support))
	err := liteTrace(touched)
	var assertion *failure.AssertionFailure
	require.ErrorAs(t, err, &assertion)
	assert.Equal(t, support.Name, assertion.Locator)
	assert.Equal(t, locator.Pro, assertion.Actual)
}
