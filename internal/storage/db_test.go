package storage

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/mercato/internal/storage/db"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	store, err := NewDB(t.Context(), filepath.Join(t.TempDir(), "db.sqlite"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDB(t *testing.T) {
	t.Parallel()

	store := newTestDB(t)

	const userName = "vendor_one"
	userID, err := store.UpsertUser(t.Context(), db.User{
		Name: userName,
		Role: "seller",
	})
	require.NoError(t, err)
	require.NotZero(t, userID)

	t.Run("UserCRUD", func(t *testing.T) {
		t.Parallel()

		actual, err := store.GetUser(t.Context(), userID)
		require.NoError(t, err)
		assert.Equal(t, userName, actual.Name)

		_, err = store.GetUser(t.Context(), 0)
		require.ErrorIs(t, err, ErrNotFound)

		actual, err = store.GetUserByName(t.Context(), userName)
		require.NoError(t, err)
		assert.Equal(t, userID, actual.ID)

		_, err = store.GetUserByName(t.Context(), "not a real user")
		require.ErrorIs(t, err, ErrNotFound)

		_, err = store.UpsertUser(t.Context(), db.User{Name: userName})
		require.ErrorIs(t, err, ErrAlreadyExists)

		_, err = store.UpsertUser(t.Context(), db.User{Name: "ab"})
		require.ErrorIs(t, err, ErrInvalidUsername)

		_, err = store.UpsertUser(t.Context(), db.User{Name: "invalid/name"})
		require.ErrorIs(t, err, ErrInvalidUsername)

		users, err := store.ListUsers(t.Context())
		require.NoError(t, err)
		assert.NotEmpty(t, users)
	})

	t.Run("Sessions", func(t *testing.T) {
		t.Parallel()

		live := db.Session{Token: "live", UserID: userID, ExpiresAt: time.Now().Add(time.Hour).Unix()}
		require.NoError(t, store.CreateSession(t.Context(), live))

		actual, err := store.GetSession(t.Context(), live.Token)
		require.NoError(t, err)
		assert.Equal(t, live, actual)

		require.NoError(t, store.DeleteSession(t.Context(), live.Token))
		_, err = store.GetSession(t.Context(), live.Token)
		require.ErrorIs(t, err, ErrNotFound)

		stale := db.Session{Token: "stale", UserID: userID, ExpiresAt: time.Now().Add(-time.Hour).Unix()}
		require.NoError(t, store.CreateSession(t.Context(), stale))
		_, err = store.GetSession(t.Context(), stale.Token)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Options", func(t *testing.T) {
		t.Parallel()

		name := t.Name()
		_, err := store.GetOption(t.Context(), name)
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, store.SetOption(t.Context(), name, `{"withdraw_limit":"50"}`))
		require.NoError(t, store.SetOption(t.Context(), name, `{"withdraw_limit":"0"}`))

		value, err := store.GetOption(t.Context(), name)
		require.NoError(t, err)
		assert.JSONEq(t, `{"withdraw_limit":"0"}`, value)

		require.NoError(t, store.DeleteOption(t.Context(), name))
		_, err = store.GetOption(t.Context(), name)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UserMeta", func(t *testing.T) {
		t.Parallel()

		_, err := store.GetUserMeta(t.Context(), userID, "dokan_profile_settings")
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, store.SetUserMeta(t.Context(), userID, "dokan_profile_settings", `{}`))
		value, err := store.GetUserMeta(t.Context(), userID, "dokan_profile_settings")
		require.NoError(t, err)
		assert.Equal(t, `{}`, value)

		err = store.SetUserMeta(t.Context(), 42, "dokan_profile_settings", `{}`)
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, store.DeleteUserMeta(t.Context(), userID, "dokan_profile_settings"))
		_, err = store.GetUserMeta(t.Context(), userID, "dokan_profile_settings")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Modules", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, store.SetModule(t.Context(), "unknown", true), ErrNotFound)

		require.NoError(t, store.RegisterModule(t.Context(), "store_support"))
		require.NoError(t, store.SetModule(t.Context(), "store_support", true))
		require.NoError(t, store.RegisterModule(t.Context(), "store_support"))

		mods, err := store.ListModules(t.Context())
		require.NoError(t, err)
		assert.Contains(t, mods, db.Module{ID: "store_support", Active: true})
	})

	t.Run("Records", func(t *testing.T) {
		t.Parallel()

		coupon, err := store.CreateCoupon(t.Context(), db.Coupon{Code: "save10", Amount: "10", DiscountType: "percent"})
		require.NoError(t, err)
		_, err = store.CreateCoupon(t.Context(), db.Coupon{Code: "save10", Amount: "5", DiscountType: "fixed_cart"})
		require.ErrorIs(t, err, ErrAlreadyExists)

		actual, err := store.GetCoupon(t.Context(), coupon.ID)
		require.NoError(t, err)
		assert.Equal(t, coupon, actual)
		require.NoError(t, store.DeleteCoupon(t.Context(), coupon.ID))
		require.ErrorIs(t, store.DeleteCoupon(t.Context(), coupon.ID), ErrNotFound)

		rate, err := store.CreateTaxRate(t.Context(), db.TaxRate{Country: "US", Rate: "5", Name: "Tax", TaxClass: "standard"})
		require.NoError(t, err)
		require.NoError(t, store.DeleteTaxRate(t.Context(), rate.ID))
		_, err = store.GetTaxRate(t.Context(), rate.ID)
		require.ErrorIs(t, err, ErrNotFound)

		first, err := store.CreateWithdraw(t.Context(), db.Withdraw{UserID: userID, Amount: "50", Method: "paypal", Status: "pending", CreatedAt: 1})
		require.NoError(t, err)
		second, err := store.CreateWithdraw(t.Context(), db.Withdraw{UserID: userID, Amount: "75", Method: "bank", Status: "pending", CreatedAt: 2})
		require.NoError(t, err)
		list, err := store.ListWithdraws(t.Context(), userID)
		require.NoError(t, err)
		assert.Equal(t, []db.Withdraw{second, first}, list)
	})
}
