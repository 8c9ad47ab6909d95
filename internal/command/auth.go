package command

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/scenario"
)

func authCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "auth [ROLE...]",
		Short: "log in as each role and store its session",
		Long: "Logs in through the browser as every given role (admin, vendor or\n" +
			"customer; all of them by default) and stores the cookies under\n" +
			"browser.auth_dir, where suites pick them up instead of logging in.",
		ValidArgs: []string{string(locator.Admin), string(locator.Vendor), string(locator.Customer)},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			cfg, logger, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			roles := locator.Roles
			if len(args) > 0 {
				roles = roles[:0:0]
				for _, arg := range args {
					roles = append(roles, locator.Role(arg))
				}
			}

			ctx := cmd.Context()
			browserCfg := cfg.BrowserConfig()
			browserCfg.FreshLogin = true
			browser, err := harness.Launch(ctx, cfg.BaseURL, browserCfg, logger)
			if err != nil {
				return err
			}
			defer func() { runErr = errors.Join(runErr, browser.Close()) }()

			login := scenario.LoginWith(scenario.Accounts{
				Admin:    cfg.Accounts.Admin,
				Vendor:   cfg.Accounts.Vendor,
				Customer: cfg.Accounts.Customer,
			})
			for _, role := range roles {
				if err = storeAuth(cmd, browser, login, role); err != nil {
					return err
				}
				logger.InfoContext(ctx, "stored auth state",
					slog.String("role", string(role)),
					slog.String("path", harness.AuthStatePath(browserCfg.AuthDir, role)),
				)
			}
			return nil
		},
	}
}

func storeAuth(cmd *cobra.Command, browser *harness.Browser, login scenario.Authenticator, role locator.Role) (err error) {
	ctx := cmd.Context()
	session, err := browser.NewSession(ctx, role)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, session.Close()) }()
	page, err := session.NewPage(ctx)
	if err != nil {
		return err
	}
	if err = login(ctx, page, role); err != nil {
		return fmt.Errorf("failed to log in as %s: %w", role, err)
	}
	return session.SaveAuthState(ctx)
}
