package session

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned by a Store for unknown or expired ids.
var ErrSessionNotFound = errors.New("session not found")

// Store persists conversations between turns for a host. Implementations
// store copies; mutating a loaded State does not affect the stored one.
type Store interface {
	Save(ctx context.Context, st *State) error
	Load(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
	// List returns the ids of live sessions, most recently updated first.
	List(ctx context.Context) ([]string, error)
}
