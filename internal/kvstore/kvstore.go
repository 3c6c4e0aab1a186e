// ABOUTME: KV interface and well-known keys for the client's durable key/value storage
// ABOUTME: Backends persist string values across process restarts; ownership is partitioned by key

package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("key not found")

// Well-known keys. Each key (or prefix) is owned by exactly one subsystem;
// no subsystem reads or writes another's keys directly.
const (
	KeyUser         = "user"                // session: JSON user blob
	KeyAuthToken    = "authToken"           // session: opaque auth token
	KeyPushToken    = "fcmPushToken"        // push: platform device token
	KeyProfileCache = "@user_profile_cache" // profile screen cache, cleared on full logout

	PrefixChat     = "@chat_"      // chat cache key space
	PrefixChatSync = "@chat_sync_" // chat sync-cursor key space
)

// KV is durable string key/value storage shared by the session, push, and
// cache subsystems. Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// GetMulti returns the stored values for the given keys. Absent keys are
	// simply omitted from the result.
	GetMulti(ctx context.Context, keys []string) (map[string]string, error)

	// RemoveMulti deletes all the given keys. Absent keys are skipped.
	RemoveMulti(ctx context.Context, keys []string) error

	// Keys returns every stored key.
	Keys(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
