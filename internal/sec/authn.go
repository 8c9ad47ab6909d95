package sec

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/storage/db"
)

var (
	// ErrMissingCredentials is returned when a request carries no Basic Auth
	// header.
	ErrMissingCredentials = errors.New("invalid authorization header")
	// ErrBadCredentials is returned for an unknown user or a wrong password.
	ErrBadCredentials = errors.New("invalid username or password")
)

// Authenticate resolves the user from the Basic Auth header of req.
func Authenticate(ctx context.Context, req *http.Request, store storage.Users) (db.User, error) {
	username, password, ok := req.BasicAuth()
	if !ok {
		return db.User{}, ErrMissingCredentials
	}
	return CheckPassword(ctx, store, username, password)
}

// CheckPassword returns the named user if password matches its stored hash.
func CheckPassword(ctx context.Context, store storage.Users, username, password string) (db.User, error) {
	user, err := store.GetUserByName(ctx, username)
	if err != nil {
		return db.User{}, ErrBadCredentials
	}
	if err = ComparePassword(password, []byte(user.PasswordHash)); err != nil {
		return db.User{}, ErrBadCredentials
	}
	return user, nil
}

// NewSessionToken returns a random session identifier.
func NewSessionToken() string {
	return uuid.NewString()
}

type userKey struct{}

// GetAuthenticatedUser returns the user information for the authenticated user.
// Returns a zero-value User if the context has no authenticated user.
func GetAuthenticatedUser(ctx context.Context) db.User {
	if user, ok := ctx.Value(userKey{}).(db.User); ok {
		return user
	}
	return db.User{}
}

// SetAuthenticatedUser sets the user information for an authenticated user.
func SetAuthenticatedUser(ctx context.Context, user db.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}
