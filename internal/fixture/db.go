package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/stolasapp/mercato/internal/failure"
	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/storage/db"
)

// MetaStore is the slice of storage the DB client needs.
type MetaStore interface {
	storage.Meta
	GetUserByName(ctx context.Context, name string) (db.User, error)
}

// DBClient reads and writes user meta directly in the shared store, for
// fixtures the REST API does not expose.
type DBClient struct {
	store  MetaStore
	closer func() error
}

// OpenDB connects to the store described by dsn.
func OpenDB(ctx context.Context, dsn string, logger *slog.Logger) (*DBClient, error) {
	store, err := storage.NewDB(ctx, dsn, logger)
	if err != nil {
		return nil, failure.Fixture("open store", dsn, err)
	}
	return &DBClient{store: store, closer: store.Close}, nil
}

// NewDBClient wraps an already open store. Closing the client leaves the
// store open.
func NewDBClient(store MetaStore) *DBClient {
	return &DBClient{store: store, closer: func() error { return nil }}
}

// Close releases the store if the client opened it.
func (c *DBClient) Close() error {
	return c.closer()
}

func metaEndpoint(userID uint64, key string) string {
	return fmt.Sprintf("usermeta[%d].%s", userID, key)
}

// UserID resolves an account name.
func (c *DBClient) UserID(ctx context.Context, name string) (uint64, error) {
	user, err := c.store.GetUserByName(ctx, name)
	if err != nil {
		return 0, failure.Fixture("lookup user", "users."+name, err)
	}
	return user.ID, nil
}

// GetUserMeta returns the raw stored value. A missing key produces a failure
// wrapping storage.ErrNotFound.
func (c *DBClient) GetUserMeta(ctx context.Context, userID uint64, key string) (string, error) {
	value, err := c.store.GetUserMeta(ctx, userID, key)
	if err != nil {
		return "", failure.Fixture("get user meta", metaEndpoint(userID, key), err)
	}
	return value, nil
}

// SetUserMeta writes value exactly. Strings are stored as-is; anything else
// is encoded as JSON.
func (c *DBClient) SetUserMeta(ctx context.Context, userID uint64, key string, value any) error {
	raw, err := encodeMeta(value)
	if err == nil {
		err = c.store.SetUserMeta(ctx, userID, key, raw)
	}
	return failure.Fixture("set user meta", metaEndpoint(userID, key), err)
}

// UpdateUserMeta deep merges patch into the JSON object stored under key.
// Nested objects merge key by key; any other value replaces what was there.
// A missing or non-object value is treated as empty.
func (c *DBClient) UpdateUserMeta(ctx context.Context, userID uint64, key string, patch map[string]any) error {
	endpoint := metaEndpoint(userID, key)
	current := map[string]any{}
	raw, err := c.store.GetUserMeta(ctx, userID, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return failure.Fixture("update user meta", endpoint, err)
	default:
		var decoded any
		if json.Unmarshal([]byte(raw), &decoded) == nil {
			if obj, ok := decoded.(map[string]any); ok {
				current = obj
			}
		}
	}
	merged, err := json.Marshal(DeepMerge(current, patch))
	if err == nil {
		err = c.store.SetUserMeta(ctx, userID, key, string(merged))
	}
	return failure.Fixture("update user meta", endpoint, err)
}

// DeleteUserMeta removes the key.
func (c *DBClient) DeleteUserMeta(ctx context.Context, userID uint64, key string) error {
	return failure.Fixture("delete user meta", metaEndpoint(userID, key), c.store.DeleteUserMeta(ctx, userID, key))
}

// DeepMerge returns dst with src merged in. Neither input is modified.
func DeepMerge(dst, src map[string]any) map[string]any {
	out := maps.Clone(dst)
	if out == nil {
		out = map[string]any{}
	}
	for key, value := range src {
		incoming, isObj := value.(map[string]any)
		existing, wasObj := out[key].(map[string]any)
		if isObj && wasObj {
			out[key] = DeepMerge(existing, incoming)
			continue
		}
		out[key] = value
	}
	return out
}

func encodeMeta(value any) (string, error) {
	switch typed := value.(type) {
	case string:
		return typed, nil
	case json.RawMessage:
		return string(typed), nil
	default:
		raw, err := json.Marshal(value)
		return string(raw), err
	}
}
