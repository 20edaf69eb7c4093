// Package sessionstore persists quiz conversations between turns for hosts
// that serve many sessions.
package sessionstore

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/abhisek/codequiz/internal/session"
)

// Memory keeps sessions in process memory and expires idle ones.
type Memory struct {
	cache *cache.Cache
}

var _ session.Store = (*Memory)(nil)

// NewMemory creates a store whose sessions expire after ttl without a save.
// A zero ttl keeps sessions until deleted.
func NewMemory(ttl time.Duration) *Memory {
	exp := ttl
	if exp <= 0 {
		exp = cache.NoExpiration
	}
	return &Memory{cache: cache.New(exp, 10*time.Minute)}
}

func (m *Memory) Save(_ context.Context, st *session.State) error {
	m.cache.Set(st.ID, st.Clone(), cache.DefaultExpiration)
	return nil
}

func (m *Memory) Load(_ context.Context, id string) (*session.State, error) {
	if x, found := m.cache.Get(id); found {
		return x.(*session.State).Clone(), nil
	}
	return nil, session.ErrSessionNotFound
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

func (m *Memory) List(_ context.Context) ([]string, error) {
	items := m.cache.Items()
	states := make([]*session.State, 0, len(items))
	for _, it := range items {
		states = append(states, it.Object.(*session.State))
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].UpdatedAt.Equal(states[j].UpdatedAt) {
			return states[i].ID < states[j].ID
		}
		return states[i].UpdatedAt.After(states[j].UpdatedAt)
	})

	ids := make([]string, len(states))
	for i, st := range states {
		ids[i] = st.ID
	}
	return ids, nil
}
