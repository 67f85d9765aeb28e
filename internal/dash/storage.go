package dash

import "context"

// Storage is durable client-side key/value storage. It plays the role
// browser local storage plays for the web dashboard: a handful of small
// records under fixed keys that survive restarts.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
