package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/fixture"
	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/pages"
	"github.com/stolasapp/mercato/internal/testdata"
)

// DefaultScenarioTimeout bounds a scenario when the runner sets none.
const DefaultScenarioTimeout = 3 * time.Minute

// Session is a role-bound browser context.
type Session interface {
	Authenticated() bool
	NewPage(ctx context.Context) (*harness.Page, error)
	SaveAuthState(ctx context.Context) error
	Close() error
}

// Opener opens sessions for a role.
type Opener interface {
	Open(ctx context.Context, role locator.Role) (Session, error)
}

// OpenerFunc adapts a function to [Opener].
type OpenerFunc func(ctx context.Context, role locator.Role) (Session, error)

func (fn OpenerFunc) Open(ctx context.Context, role locator.Role) (Session, error) {
	return fn(ctx, role)
}

// BrowserOpener opens sessions in a launched browser.
func BrowserOpener(b *harness.Browser) Opener {
	return OpenerFunc(func(ctx context.Context, role locator.Role) (Session, error) {
		s, err := b.NewSession(ctx, role)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Authenticator signs role in on a page of a session without stored state.
type Authenticator func(ctx context.Context, page *harness.Page, role locator.Role) error

// LoginWith signs roles in through the login form with their accounts.
func LoginWith(accounts Accounts) Authenticator {
	return func(ctx context.Context, page *harness.Page, role locator.Role) error {
		return pages.NewLoginPage(page).Login(ctx, accounts.Credentials(role))
	}
}

// Runner executes suites.
type Runner struct {
	Sessions Opener
	// Login authenticates sessions that did not restore a stored state.
	Login Authenticator
	// SaveAuth stores the state of sessions Login authenticated.
	SaveAuth bool
	API      *fixture.APIClient
	DB       *fixture.DBClient
	Caps     harness.Capabilities
	Accounts Accounts
	Locks    *harness.Locks
	Filter   *Filter
	// Seed feeds the data generator of each suite; zero derives it from the
	// clock.
	Seed            uint64
	Parallel        int
	ScenarioTimeout time.Duration
	Logger          *slog.Logger
}

// Run executes suites, at most Parallel at a time, and reports every
// scenario. The error is only non-nil when ctx ends or a filter cannot be
// evaluated.
func (r *Runner) Run(ctx context.Context, suites []*Suite) (*Report, error) {
	report := newReport()
	if r.Locks == nil {
		r.Locks = harness.NewLocks()
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.DiscardHandler)
	}
	var grp errgroup.Group
	grp.SetLimit(max(r.Parallel, 1))
	for _, suite := range suites {
		grp.Go(func() error {
			return r.runSuite(ctx, suite, report)
		})
	}
	if err := grp.Wait(); err != nil {
		return report, err
	}
	return report, ctx.Err()
}

// plan decides which scenarios of suite run, recording the skipped ones.
func (r *Runner) plan(suite *Suite, report *Report) ([]Scenario, error) {
	var out []Scenario
	for _, sc := range suite.Scenarios {
		tags := suite.tags(sc)
		matched, err := r.Filter.Match(suite.Name, sc.Name, tags, string(r.Caps.Tier))
		if err != nil {
			return nil, err
		}
		switch {
		case !matched:
			report.add(Result{Suite: suite.Name, Scenario: sc.Name, Tags: tags, Status: StatusSkipped, Reason: "filtered out"})
		case slices.Contains(tags, TagPro) && !r.Caps.Pro():
			report.add(Result{Suite: suite.Name, Scenario: sc.Name, Tags: tags, Status: StatusSkipped, Reason: "requires pro"})
		default:
			out = append(out, sc)
		}
	}
	return out, nil
}

func (r *Runner) runSuite(ctx context.Context, suite *Suite, report *Report) error {
	logger := r.Logger.With(slog.String("suite", suite.Name))
	selected, err := r.plan(suite, report)
	if err != nil || len(selected) == 0 {
		return err
	}

	release, err := r.Locks.Acquire(ctx, suite.Resources...)
	if err != nil {
		r.failAll(suite, selected, report, err)
		return ctx.Err()
	}
	logger.DebugContext(ctx, "acquired resources", slog.Any("resources", suite.Resources))

	caps := r.Caps
	caps.Modules = maps.Clone(r.Caps.Modules)
	seed := r.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	env := &Env{
		Caps:     &caps,
		API:      r.API,
		DB:       r.DB,
		Data:     testdata.NewGenerator(seed),
		Accounts: r.Accounts,
		Logger:   logger,
		pages:    map[locator.Role]*harness.Page{},
	}

	var (
		snapshot *fixture.Snapshot
		sessions []Session
	)
	defer func() {
		teardown := []error{}
		if suite.AfterAll != nil {
			teardown = append(teardown, suite.AfterAll(context.WithoutCancel(ctx), env))
		}
		if snapshot != nil {
			teardown = append(teardown, snapshot.Restore(context.WithoutCancel(ctx)))
		}
		for _, s := range sessions {
			teardown = append(teardown, s.Close())
		}
		release()
		report.addTeardown(suite.Name, errors.Join(teardown...))
	}()

	if err = r.setup(ctx, suite, env, &snapshot, &sessions); err != nil {
		logger.ErrorContext(ctx, "suite setup failed", slog.Any("error", err))
		r.failAll(suite, selected, report, err)
		return nil
	}

	for _, sc := range selected {
		if ctx.Err() != nil {
			r.failAll(suite, []Scenario{sc}, report, ctx.Err())
			continue
		}
		report.add(r.runScenario(ctx, suite, sc, env, logger))
	}
	return nil
}

// setup captures the suite's scope, refreshes capabilities, opens and
// authenticates sessions and runs BeforeAll.
func (r *Runner) setup(ctx context.Context, suite *Suite, env *Env, snapshot **fixture.Snapshot, sessions *[]Session) error {
	if r.API != nil && !emptyScope(suite.Scope) {
		snap, err := fixture.Capture(ctx, r.API, r.DB, suite.Scope)
		if err != nil {
			return err
		}
		*snapshot = snap
	}
	if err := env.RefreshCapabilities(ctx); err != nil {
		return failure.Fixture("refresh capabilities", "GET "+testdata.RESTPrefix+"/dokan/v1/admin/modules", err)
	}
	for _, role := range suite.Roles {
		s, err := r.Sessions.Open(ctx, role)
		if err != nil {
			return fmt.Errorf("failed to open %s session: %w", role, err)
		}
		*sessions = append(*sessions, s)
		page, err := s.NewPage(ctx)
		if err != nil {
			return err
		}
		env.pages[role] = page
		if err = r.authenticate(ctx, s, page, role); err != nil {
			return err
		}
	}
	if suite.BeforeAll != nil {
		return suite.BeforeAll(ctx, env)
	}
	return nil
}

func (r *Runner) authenticate(ctx context.Context, s Session, page *harness.Page, role locator.Role) error {
	if role == locator.Guest || s.Authenticated() || r.Login == nil {
		return nil
	}
	if err := r.Login(ctx, page, role); err != nil {
		return fmt.Errorf("failed to sign in as %s: %w", role, err)
	}
	if r.SaveAuth {
		return s.SaveAuthState(ctx)
	}
	return nil
}

func (r *Runner) runScenario(ctx context.Context, suite *Suite, sc Scenario, env *Env, logger *slog.Logger) Result {
	timeout := r.ScenarioTimeout
	if timeout <= 0 {
		timeout = DefaultScenarioTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := Result{Suite: suite.Name, Scenario: sc.Name, Tags: suite.tags(sc)}
	logger = logger.With(slog.String("scenario", sc.Name))
	start := time.Now()
	err := sc.Run(ctx, env)
	res.Duration = time.Since(start)
	if err != nil {
		res.Status, res.Kind, res.Err = StatusFailed, failure.KindOf(err), err
		logger.ErrorContext(ctx, "scenario failed",
			slog.String("kind", string(res.Kind)),
			slog.Any("error", err),
			slog.Duration("duration", res.Duration),
		)
		return res
	}
	res.Status = StatusPassed
	logger.InfoContext(ctx, "scenario passed", slog.Duration("duration", res.Duration))
	return res
}

func (r *Runner) failAll(suite *Suite, scenarios []Scenario, report *Report, err error) {
	for _, sc := range scenarios {
		report.add(Result{
			Suite:    suite.Name,
			Scenario: sc.Name,
			Tags:     suite.tags(sc),
			Status:   StatusFailed,
			Kind:     failure.KindOf(err),
			Err:      err,
		})
	}
}

func emptyScope(s fixture.Scope) bool {
	return len(s.Options) == 0 && len(s.Groups) == 0 && len(s.Meta) == 0 && !s.Modules
}
