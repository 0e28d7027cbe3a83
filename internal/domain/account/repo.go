package account

import "context"

// Storage is the persistent key/value space of a workspace, the server-side
// counterpart of browser local storage. Get reports ok=false for a missing
// key.
type Storage interface {
	Get(ctx context.Context, sessionID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID string, keys ...string) error
}
