package sec

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/storage/db"
)

type fakeUsers struct {
	storage.Users
	users map[string]db.User
}

func (f fakeUsers) GetUserByName(_ context.Context, name string) (db.User, error) {
	if user, ok := f.users[name]; ok {
		return user, nil
	}
	return db.User{}, storage.ErrNotFound
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("password")
	require.NoError(t, err)
	store := fakeUsers{users: map[string]db.User{
		"admin": {ID: 1, Name: "admin", Role: "administrator", PasswordHash: string(hash)},
	}}

	tests := []struct {
		name     string
		user     string
		password string
		noHeader bool
		wantErr  error
	}{
		{name: "valid", user: "admin", password: "password"},
		{name: "wrong password", user: "admin", password: "nope", wantErr: ErrBadCredentials},
		{name: "unknown user", user: "ghost", password: "password", wantErr: ErrBadCredentials},
		{name: "missing header", noHeader: true, wantErr: ErrMissingCredentials},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest("GET", "/wp-json/dokan/v1/admin/modules", nil)
			if !test.noHeader {
				req.SetBasicAuth(test.user, test.password)
			}
			user, err := Authenticate(t.Context(), req, store)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(1), user.ID)
		})
	}
}

func TestAuthenticatedUserContext(t *testing.T) {
	t.Parallel()

	assert.Zero(t, GetAuthenticatedUser(t.Context()))
	ctx := SetAuthenticatedUser(t.Context(), db.User{ID: 2, Name: "vendor"})
	assert.Equal(t, "vendor", GetAuthenticatedUser(ctx).Name)
	assert.NotEqual(t, NewSessionToken(), NewSessionToken())
}
