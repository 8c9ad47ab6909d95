package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/stolasapp/mercato/internal/storage"
)

// MetaKey names one user meta entry.
type MetaKey struct {
	UserID uint64
	Key    string
}

// Scope lists the global state a suite mutates and must restore.
type Scope struct {
	Options []string
	// Groups are WooCommerce settings groups restored key by key.
	Groups  []string
	Meta    []MetaKey
	Modules bool
}

// Snapshot holds the values captured before a suite ran. Absent entries are
// deleted again on restore.
type Snapshot struct {
	api     *APIClient
	db      *DBClient
	options map[string]json.RawMessage
	groups  map[string]map[string]string
	meta    map[MetaKey]*string
	modules []string
}

// Capture records the current value of everything in scope. A nil db skips
// user meta.
func Capture(ctx context.Context, api *APIClient, db *DBClient, scope Scope) (*Snapshot, error) {
	snap := &Snapshot{
		api:     api,
		db:      db,
		options: map[string]json.RawMessage{},
		groups:  map[string]map[string]string{},
		meta:    map[MetaKey]*string{},
	}
	for _, name := range scope.Options {
		value, err := api.GetOption(ctx, name)
		switch {
		case errors.Is(err, ErrOptionNotFound):
			snap.options[name] = nil
		case err != nil:
			return nil, err
		default:
			snap.options[name] = value
		}
	}
	for _, group := range scope.Groups {
		values, err := api.GetBatchOptions(ctx, group)
		if err != nil {
			return nil, err
		}
		snap.groups[group] = values
	}
	if db != nil {
		for _, key := range scope.Meta {
			value, err := db.GetUserMeta(ctx, key.UserID, key.Key)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				snap.meta[key] = nil
			case err != nil:
				return nil, err
			default:
				snap.meta[key] = &value
			}
		}
	}
	if scope.Modules {
		active, err := api.ActiveModules(ctx)
		if err != nil {
			return nil, err
		}
		snap.modules = active
		if snap.modules == nil {
			snap.modules = []string{}
		}
	}
	return snap, nil
}

// Restore writes every captured value back, continuing past failures. The
// returned error joins every failure.
func (s *Snapshot) Restore(ctx context.Context) error {
	var errs []error
	for name, value := range s.options {
		if value == nil {
			errs = append(errs, s.api.DeleteOption(ctx, name))
			continue
		}
		errs = append(errs, s.api.SetOption(ctx, name, value))
	}
	for group, values := range s.groups {
		if len(values) > 0 {
			errs = append(errs, s.api.UpdateBatchOptions(ctx, group, values))
		}
	}
	for key, value := range s.meta {
		if value == nil {
			errs = append(errs, s.db.DeleteUserMeta(ctx, key.UserID, key.Key))
			continue
		}
		errs = append(errs, s.db.SetUserMeta(ctx, key.UserID, key.Key, *value))
	}
	if s.modules != nil {
		errs = append(errs, s.restoreModules(ctx))
	}
	return errors.Join(errs...)
}

func (s *Snapshot) restoreModules(ctx context.Context) error {
	mods, err := s.api.ListModules(ctx)
	if err != nil {
		return err
	}
	var activate, deactivate []string
	for _, mod := range mods {
		want := slices.Contains(s.modules, mod.ID)
		switch {
		case want && !mod.Active:
			activate = append(activate, mod.ID)
		case !want && mod.Active:
			deactivate = append(deactivate, mod.ID)
		}
	}
	return errors.Join(
		s.api.ActivateModules(ctx, activate...),
		s.api.DeactivateModules(ctx, deactivate...),
	)
}
