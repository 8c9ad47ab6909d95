package harness

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ModulesResource is the key for the set of active modules.
const ModulesResource = "modules"

// OptionResource names an option blob.
func OptionResource(name string) string { return "option:" + name }

// UserResource names the state of one user.
func UserResource(id uint64) string { return fmt.Sprintf("user:%d", id) }

// Locks serializes writers of shared global state. Each key is a binary
// semaphore; keys are always acquired in sorted order so two holders of
// overlapping sets cannot deadlock.
type Locks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewLocks returns an empty lock table.
func NewLocks() *Locks {
	return &Locks{sems: map[string]*semaphore.Weighted{}}
}

func (l *Locks) sem(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}
	return sem
}

// Acquire blocks until every key is held or ctx is done. The returned
// release func is safe to call more than once.
func (l *Locks) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*semaphore.Weighted, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release(1)
		}
		held = held[:0]
	}
	for _, key := range keys {
		sem := l.sem(key)
		if err := sem.Acquire(ctx, 1); err != nil {
			release()
			return func() {}, fmt.Errorf("failed to lock %s: %w", key, err)
		}
		held = append(held, sem)
	}
	var once sync.Once
	return func() { once.Do(release) }, nil
}
