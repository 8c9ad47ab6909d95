package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/stolasapp/mercato/internal/sec"
	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/storage/db"
	"github.com/stolasapp/mercato/internal/testdata"
)

// Accounts are the logins seeded for each role.
type Accounts struct {
	Admin    testdata.Credentials
	Vendor   testdata.Credentials
	Customer testdata.Credentials
}

// DefaultVendorBalance is the withdrawable balance seeded for the vendor.
const DefaultVendorBalance = 1000

// Seed makes the store usable by the harness: every module is registered and
// each role account exists with the configured password. Existing accounts
// keep their IDs so saved state survives a reseed.
func Seed(ctx context.Context, logger *slog.Logger, store storage.Store, accounts Accounts) error {
	for _, id := range testdata.Modules {
		if err := store.RegisterModule(ctx, id); err != nil {
			return fmt.Errorf("failed to register module %s: %w", id, err)
		}
	}
	gen := testdata.NewGenerator(0)
	seeds := []struct {
		creds testdata.Credentials
		role  string
	}{
		{accounts.Admin, RoleAdministrator},
		{accounts.Vendor, RoleSeller},
		{accounts.Customer, RoleCustomer},
	}
	for _, seed := range seeds {
		if seed.creds.Username == "" {
			continue
		}
		id, err := seedUser(ctx, store, gen, seed.creds, seed.role)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "seeded account",
			slog.String("user", seed.creds.Username),
			slog.String("role", seed.role),
		)
		if seed.role != RoleSeller {
			continue
		}
		_, err = store.GetUserMeta(ctx, id, MetaBalance)
		if errors.Is(err, storage.ErrNotFound) {
			err = store.SetUserMeta(ctx, id, MetaBalance, strconv.Itoa(DefaultVendorBalance))
		}
		if err != nil {
			return fmt.Errorf("failed to seed vendor balance: %w", err)
		}
	}
	return nil
}

func seedUser(ctx context.Context, store storage.Users, gen *testdata.Generator, creds testdata.Credentials, role string) (uint64, error) {
	hash, err := sec.HashPassword(creds.Password)
	if err != nil {
		return 0, err
	}
	user, err := store.GetUserByName(ctx, creds.Username)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		user = db.User{Name: creds.Username, Email: gen.Email()}
	case err != nil:
		return 0, err
	}
	user.Role = role
	user.PasswordHash = string(hash)
	id, err := store.UpsertUser(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("failed to seed %s: %w", creds.Username, err)
	}
	return id, nil
}
