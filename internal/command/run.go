package command

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stolasapp/mercato/internal/config"
	"github.com/stolasapp/mercato/internal/fixture"
	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/scenario"
)

// errScenariosFailed makes the process exit non-zero after a failed run.
var errScenariosFailed = errors.New("one or more scenarios failed")

func runCommand() *cobra.Command {
	var (
		filter   string
		parallel int
		saveAuth bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the browser suites against the marketplace",
		Long: "Runs every suite whose scenarios match the filter, prints one line per\n" +
			"scenario and exits non-zero when any scenario or teardown failed.\n\n" +
			"Filters are CEL expressions over name, suite, tags and tier, e.g.\n" +
			"  mercato run --filter '\"vendor\" in tags && tier == \"lite\"'",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("filter") {
				cfg.Run.Filter = filter
			}
			if cmd.Flags().Changed("parallel") {
				cfg.Run.Parallel = parallel
			}
			compiled, err := scenario.CompileFilter(cfg.Run.Filter)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			api, err := newAPIClient(cfg, logger)
			if err != nil {
				return err
			}
			info, err := api.Ping(ctx)
			if err != nil {
				return err
			}
			if info.Tier != string(cfg.ParsedTier()) {
				logger.WarnContext(ctx, "configured tier differs from the site",
					slog.String("configured", cfg.Tier),
					slog.String("site", info.Tier),
				)
			}

			dbc, err := fixture.OpenDB(ctx, cfg.DSN, logger)
			if err != nil {
				return err
			}
			defer func() { runErr = errors.Join(runErr, dbc.Close()) }()

			accounts, err := resolveAccounts(cmd, cfg, dbc)
			if err != nil {
				return err
			}

			caps := harness.NewCapabilities(cfg.ParsedTier())
			if err = caps.Refresh(ctx, api); err != nil {
				return err
			}

			browser, err := harness.Launch(ctx, cfg.BaseURL, cfg.BrowserConfig(), logger)
			if err != nil {
				return err
			}
			defer func() { runErr = errors.Join(runErr, browser.Close()) }()

			runner := &scenario.Runner{
				Sessions:        scenario.BrowserOpener(browser),
				Login:           scenario.LoginWith(accounts),
				SaveAuth:        saveAuth,
				API:             api,
				DB:              dbc,
				Caps:            caps,
				Accounts:        accounts,
				Filter:          compiled,
				Seed:            cfg.Run.Seed,
				Parallel:        cfg.Run.Parallel,
				ScenarioTimeout: cfg.Run.ScenarioTimeout,
				Logger:          logger,
			}
			logger.InfoContext(ctx, "running suites",
				slog.String("capabilities", caps.String()),
				slog.String("filter", compiled.String()),
				slog.Int("parallel", cfg.Run.Parallel),
			)
			report, err := runner.Run(ctx, scenario.Suites(accounts.VendorID))
			if writeErr := report.Write(cmd.OutOrStdout()); writeErr != nil {
				return errors.Join(err, writeErr)
			}
			if err != nil {
				return err
			}
			if report.Failed() {
				return errScenariosFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "CEL expression selecting scenarios")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "suites run at once")
	cmd.Flags().BoolVar(&saveAuth, "save-auth", true, "store the state of sessions that had to log in")
	return cmd
}

// resolveAccounts fills in the vendor's user ID from the store when the
// configuration does not set it.
func resolveAccounts(cmd *cobra.Command, cfg *config.Config, dbc *fixture.DBClient) (scenario.Accounts, error) {
	accounts := scenario.Accounts{
		Admin:    cfg.Accounts.Admin,
		Vendor:   cfg.Accounts.Vendor,
		Customer: cfg.Accounts.Customer,
		VendorID: cfg.VendorID,
	}
	if accounts.VendorID != 0 {
		return accounts, nil
	}
	id, err := dbc.UserID(cmd.Context(), accounts.Vendor.Username)
	if err != nil {
		return accounts, fmt.Errorf("failed to resolve vendor %q: %w", accounts.Vendor.Username, err)
	}
	accounts.VendorID = id
	return accounts, nil
}
