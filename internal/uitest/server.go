// Package uitest runs the browser suites against in-process stand-in sites.
package uitest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/mercato/internal/fixture"
	"github.com/stolasapp/mercato/internal/scenario"
	"github.com/stolasapp/mercato/internal/server"
	"github.com/stolasapp/mercato/internal/site"
	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/testdata"
)

// TestSeed is the fixed seed used for reproducible test data.
const TestSeed uint64 = 12345

var accounts = site.Accounts{
	Admin:    testdata.Credentials{Username: "admin", Password: "admin-password"},
	Vendor:   testdata.Credentials{Username: "vendor", Password: "vendor-password"},
	Customer: testdata.Credentials{Username: "customer", Password: "customer-password"},
}

// Server is a stand-in marketplace of one tier backed by a throwaway store.
type Server struct {
	baseURL  string
	vendorID uint64
	dir      string
	cancel   context.CancelFunc
	grp      *errgroup.Group
	store    storage.Store
	logger   *slog.Logger
}

// newTestServer creates, seeds and starts a site. It panics on errors since
// it also runs outside of a test's goroutine.
func newTestServer(pro bool) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	grp, ctx := errgroup.WithContext(ctx)
	logger := slog.New(slog.DiscardHandler)

	dir, err := os.MkdirTemp("", "mercato-uitest-")
	if err != nil {
		cancel()
		panic(fmt.Sprintf("failed to create temp dir: %v", err))
	}
	store, err := storage.NewDB(ctx, filepath.Join(dir, "site.sqlite"), logger)
	if err != nil {
		cancel()
		panic(fmt.Sprintf("failed to create storage: %v", err))
	}
	if err = site.Seed(ctx, logger, store, accounts); err != nil {
		cancel()
		_ = store.Close()
		panic(fmt.Sprintf("failed to seed storage: %v", err))
	}
	vendor, err := store.GetUserByName(ctx, accounts.Vendor.Username)
	if err != nil {
		cancel()
		_ = store.Close()
		panic(fmt.Sprintf("failed to find vendor: %v", err))
	}

	handler, err := site.New(site.Config{Pro: pro, DevMode: true}, logger, store)
	if err != nil {
		cancel()
		_ = store.Close()
		panic(fmt.Sprintf("failed to create site: %v", err))
	}
	addr, err := server.Start(ctx, grp, "127.0.0.1:0", handler)
	if err != nil {
		cancel()
		_ = store.Close()
		panic(fmt.Sprintf("failed to start site: %v", err))
	}

	return &Server{
		baseURL:  "http://" + addr + "/",
		vendorID: vendor.ID,
		dir:      dir,
		cancel:   cancel,
		grp:      grp,
		store:    store,
		logger:   logger,
	}
}

// BaseURL returns the base URL of the test server.
func (s *Server) BaseURL() string {
	return s.baseURL
}

// AuthDir is where sessions of this site store their login.
func (s *Server) AuthDir() string {
	return filepath.Join(s.dir, "auth")
}

// Accounts are the seeded logins.
func (s *Server) Accounts() scenario.Accounts {
	return scenario.Accounts{
		Admin:    accounts.Admin,
		Vendor:   accounts.Vendor,
		Customer: accounts.Customer,
		VendorID: s.vendorID,
	}
}

// API returns a REST client for the site as the admin.
func (s *Server) API() (*fixture.APIClient, error) {
	return fixture.NewAPIClient(s.baseURL, accounts.Admin,
		fixture.WithRateLimit(1000), //nolint:mnd // local site
		fixture.WithLogger(s.logger),
	)
}

// DB returns a client on the site's store.
func (s *Server) DB() *fixture.DBClient {
	return fixture.NewDBClient(s.store)
}

// Close shuts down the test server.
// Errors are ignored since this runs during test cleanup where failures
// are typically unrecoverable and already logged by the errgroup.
func (s *Server) Close() {
	s.cancel()
	_ = s.grp.Wait()
	_ = s.store.Close()
	_ = os.RemoveAll(s.dir)
}
