package command

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/server"
	"github.com/stolasapp/mercato/internal/site"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the stand-in marketplace the browser suites run against",
		Long: "Seeds the configured accounts into the store and serves the stand-in\n" +
			"marketplace on site.address with the configured tier.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			if err = site.Seed(cmd.Context(), logger, store, site.Accounts{
				Admin:    cfg.Accounts.Admin,
				Vendor:   cfg.Accounts.Vendor,
				Customer: cfg.Accounts.Customer,
			}); err != nil {
				return err
			}

			handler, err := site.New(site.Config{
				Pro:        cfg.ParsedTier() == locator.Pro,
				DevMode:    cfg.DevMode,
				SessionTTL: cfg.Site.SessionTTL,
			}, logger, store)
			if err != nil {
				return err
			}

			grp, ctx := errgroup.WithContext(cmd.Context())
			addr, err := server.Start(ctx, grp, cfg.Site.Address, handler)
			if err != nil {
				return err
			}
			logger.InfoContext(ctx,
				"starting marketplace server...",
				slog.String("address", addr),
				slog.String("tier", string(cfg.ParsedTier())),
			)
			return grp.Wait()
		},
	}
}
