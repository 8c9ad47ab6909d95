package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/influxdata/influxdb/pkg/snowflake"

	"github.com/stolasapp/mercato/internal/storage/db"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 64
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func validateUsername(name string) bool {
	return len(name) >= minUsernameLen &&
		len(name) <= maxUsernameLen &&
		usernameRegex.MatchString(name)
}

// DB is a [Store] backed by SQLite or PostgreSQL.
type DB struct {
	ids     *snowflake.Generator
	db      *sql.DB
	queries *db.Queries
	now     func() time.Time
}

// NewDB opens the database identified by dsn and migrates it.
func NewDB(ctx context.Context, dsn string, logger *slog.Logger) (*DB, error) {
	handle, dialect, err := db.Open(ctx, logger, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{
		ids:     snowflake.New(rand.IntN(1023)), //nolint:gosec,mnd // this isn't for crypto
		db:      handle,
		queries: db.New(handle, dialect),
		now:     time.Now,
	}, nil
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.db.Close()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}

// ListUsers satisfies the [Users] interface.
func (d *DB) ListUsers(ctx context.Context) ([]db.User, error) {
	return d.queries.GetUsers(ctx)
}

// GetUser satisfies the [Users] interface.
func (d *DB) GetUser(ctx context.Context, userID uint64) (db.User, error) {
	user, err := d.queries.GetUser(ctx, userID)
	return user, notFound(err)
}

// GetUserByName satisfies the [Users] interface.
func (d *DB) GetUserByName(ctx context.Context, name string) (db.User, error) {
	user, err := d.queries.GetUserByName(ctx, name)
	return user, notFound(err)
}

// UpsertUser satisfies the [Users] interface.
func (d *DB) UpsertUser(ctx context.Context, user db.User) (uint64, error) {
	if !validateUsername(user.Name) {
		return 0, ErrInvalidUsername
	}
	if user.ID == 0 {
		user.ID = d.ids.Next()
	}
	switch err := d.queries.UpsertUser(ctx, user); {
	case isUniqueViolation(err):
		return 0, ErrAlreadyExists
	case err != nil:
		return 0, err
	}
	return user.ID, nil
}

// CreateSession satisfies the [Users] interface.
func (d *DB) CreateSession(ctx context.Context, session db.Session) error {
	if err := d.queries.DeleteExpiredSessions(ctx, d.now().Unix()); err != nil {
		return err
	}
	return d.queries.CreateSession(ctx, session)
}

// GetSession satisfies the [Users] interface.
func (d *DB) GetSession(ctx context.Context, token string) (db.Session, error) {
	session, err := d.queries.GetSession(ctx, token)
	if err != nil {
		return session, notFound(err)
	}
	if session.ExpiresAt < d.now().Unix() {
		return db.Session{}, ErrNotFound
	}
	return session, nil
}

// DeleteSession satisfies the [Users] interface.
func (d *DB) DeleteSession(ctx context.Context, token string) error {
	return d.queries.DeleteSession(ctx, token)
}

// GetOption satisfies the [Options] interface.
func (d *DB) GetOption(ctx context.Context, name string) (string, error) {
	opt, err := d.queries.GetOption(ctx, name)
	return opt.Value, notFound(err)
}

// SetOption satisfies the [Options] interface.
func (d *DB) SetOption(ctx context.Context, name, value string) error {
	return d.queries.UpsertOption(ctx, db.Option{Name: name, Value: value})
}

// DeleteOption satisfies the [Options] interface.
func (d *DB) DeleteOption(ctx context.Context, name string) error {
	return d.queries.DeleteOption(ctx, name)
}

// GetUserMeta satisfies the [Meta] interface.
func (d *DB) GetUserMeta(ctx context.Context, userID uint64, key string) (string, error) {
	meta, err := d.queries.GetUserMeta(ctx, userID, key)
	return meta.Value, notFound(err)
}

// SetUserMeta satisfies the [Meta] interface.
func (d *DB) SetUserMeta(ctx context.Context, userID uint64, key, value string) error {
	if _, err := d.GetUser(ctx, userID); err != nil {
		return err
	}
	return d.queries.UpsertUserMeta(ctx, db.UserMeta{UserID: userID, Key: key, Value: value})
}

// DeleteUserMeta satisfies the [Meta] interface.
func (d *DB) DeleteUserMeta(ctx context.Context, userID uint64, key string) error {
	return d.queries.DeleteUserMeta(ctx, userID, key)
}

// ListModules satisfies the [Modules] interface.
func (d *DB) ListModules(ctx context.Context) ([]db.Module, error) {
	return d.queries.GetModules(ctx)
}

// SetModule satisfies the [Modules] interface.
func (d *DB) SetModule(ctx context.Context, id string, active bool) error {
	mods, err := d.queries.GetModules(ctx)
	if err != nil {
		return err
	}
	for _, mod := range mods {
		if mod.ID == id {
			return d.queries.UpsertModule(ctx, db.Module{ID: id, Active: active})
		}
	}
	return ErrNotFound
}

// RegisterModule satisfies the [Modules] interface.
func (d *DB) RegisterModule(ctx context.Context, id string) error {
	mods, err := d.queries.GetModules(ctx)
	if err != nil {
		return err
	}
	for _, mod := range mods {
		if mod.ID == id {
			return nil
		}
	}
	return d.queries.UpsertModule(ctx, db.Module{ID: id})
}

// CreateCoupon satisfies the [Records] interface. Codes are unique.
func (d *DB) CreateCoupon(ctx context.Context, coupon db.Coupon) (db.Coupon, error) {
	coupon.ID = d.ids.Next()
	if err := d.queries.CreateCoupon(ctx, coupon); err != nil {
		if isUniqueViolation(err) {
			return db.Coupon{}, ErrAlreadyExists
		}
		return db.Coupon{}, err
	}
	return coupon, nil
}

// GetCoupon satisfies the [Records] interface.
func (d *DB) GetCoupon(ctx context.Context, id uint64) (db.Coupon, error) {
	coupon, err := d.queries.GetCoupon(ctx, id)
	return coupon, notFound(err)
}

// DeleteCoupon satisfies the [Records] interface.
func (d *DB) DeleteCoupon(ctx context.Context, id uint64) error {
	n, err := d.queries.DeleteCoupon(ctx, id)
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// CreateTaxRate satisfies the [Records] interface.
func (d *DB) CreateTaxRate(ctx context.Context, rate db.TaxRate) (db.TaxRate, error) {
	rate.ID = d.ids.Next()
	return rate, d.queries.CreateTaxRate(ctx, rate)
}

// GetTaxRate satisfies the [Records] interface.
func (d *DB) GetTaxRate(ctx context.Context, id uint64) (db.TaxRate, error) {
	rate, err := d.queries.GetTaxRate(ctx, id)
	return rate, notFound(err)
}

// DeleteTaxRate satisfies the [Records] interface.
func (d *DB) DeleteTaxRate(ctx context.Context, id uint64) error {
	n, err := d.queries.DeleteTaxRate(ctx, id)
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// CreateWithdraw satisfies the [Records] interface.
func (d *DB) CreateWithdraw(ctx context.Context, withdraw db.Withdraw) (db.Withdraw, error) {
	withdraw.ID = d.ids.Next()
	if withdraw.CreatedAt == 0 {
		withdraw.CreatedAt = d.now().Unix()
	}
	return withdraw, d.queries.CreateWithdraw(ctx, withdraw)
}

// ListWithdraws satisfies the [Records] interface.
func (d *DB) ListWithdraws(ctx context.Context, userID uint64) ([]db.Withdraw, error) {
	return d.queries.GetWithdraws(ctx, userID)
}

var _ Store = (*DB)(nil)
