// Package storage provides the state management behind the stand-in
// marketplace: accounts, sessions, site options, user meta, modules and the
// records the REST fixtures create.
package storage

import (
	"context"

	"github.com/stolasapp/mercato/internal/storage/db"
)

const (
	// ErrNotFound is returned when a record cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if a unique record already exists.
	ErrAlreadyExists Error = "already exists"
	// ErrInvalidUsername is returned when a username fails validation.
	ErrInvalidUsername Error = "username must be 3-64 characters, alphanumeric and underscores only"
	// ErrInternal is returned for any other type of error.
	ErrInternal Error = "internal error"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Users are the methods responsible for accounts and their login sessions.
type Users interface {
	// ListUsers returns every account ordered by name.
	ListUsers(ctx context.Context) ([]db.User, error)
	// GetUser returns a single user with the specified ID. An [ErrNotFound] is
	// returned if the user ID does not exist.
	GetUser(ctx context.Context, userID uint64) (db.User, error)
	// GetUserByName returns a single user with the specified name. An
	// [ErrNotFound] is returned if the user name does not exist.
	GetUserByName(ctx context.Context, name string) (db.User, error)
	// UpsertUser creates or updates the user. A zero ID is assigned a new one,
	// which is returned. An [ErrAlreadyExists] error is returned if the
	// username is in use by another account.
	UpsertUser(ctx context.Context, user db.User) (uint64, error)
	// CreateSession stores a login session.
	CreateSession(ctx context.Context, session db.Session) error
	// GetSession returns an unexpired session. Expired or unknown tokens
	// produce [ErrNotFound].
	GetSession(ctx context.Context, token string) (db.Session, error)
	// DeleteSession removes a session; unknown tokens are ignored.
	DeleteSession(ctx context.Context, token string) error
}

// Options are the site-wide named settings. Values are opaque strings,
// typically JSON documents.
type Options interface {
	// GetOption returns the stored value or [ErrNotFound].
	GetOption(ctx context.Context, name string) (string, error)
	// SetOption writes the whole value of an option.
	SetOption(ctx context.Context, name, value string) error
	// DeleteOption removes an option; unknown names are ignored.
	DeleteOption(ctx context.Context, name string) error
}

// Meta is per-user key/value data.
type Meta interface {
	// GetUserMeta returns the stored value or [ErrNotFound].
	GetUserMeta(ctx context.Context, userID uint64, key string) (string, error)
	// SetUserMeta writes the whole value for the key.
	SetUserMeta(ctx context.Context, userID uint64, key, value string) error
	// DeleteUserMeta removes the key; unknown keys are ignored.
	DeleteUserMeta(ctx context.Context, userID uint64, key string) error
}

// Modules tracks which optional marketplace modules are active.
type Modules interface {
	ListModules(ctx context.Context) ([]db.Module, error)
	// SetModule activates or deactivates a module. Unknown IDs produce
	// [ErrNotFound].
	SetModule(ctx context.Context, id string, active bool) error
	// RegisterModule makes a module known without changing an existing
	// activation state.
	RegisterModule(ctx context.Context, id string) error
}

// Records are the disposable rows created through the REST surface and the
// vendor dashboard.
type Records interface {
	CreateCoupon(ctx context.Context, coupon db.Coupon) (db.Coupon, error)
	GetCoupon(ctx context.Context, id uint64) (db.Coupon, error)
	DeleteCoupon(ctx context.Context, id uint64) error
	CreateTaxRate(ctx context.Context, rate db.TaxRate) (db.TaxRate, error)
	GetTaxRate(ctx context.Context, id uint64) (db.TaxRate, error)
	DeleteTaxRate(ctx context.Context, id uint64) error
	CreateWithdraw(ctx context.Context, withdraw db.Withdraw) (db.Withdraw, error)
	ListWithdraws(ctx context.Context, userID uint64) ([]db.Withdraw, error)
}

// Store is the combination of every storage concern.
type Store interface {
	Users
	Options
	Meta
	Modules
	Records
	// Close releases any resources held by the store. An error is returned if
	// the store cannot be cleanly closed.
	Close() error
}
