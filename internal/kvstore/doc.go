// Package kvstore provides the client's durable key/value storage.
//
// # Architecture
//
// The KV interface models the async string storage a mobile client keeps
// its session, auth token, push token, and cache entries in. Three backends
// implement it:
//
//   - SQLiteKV: default, single database file with WAL mode
//   - RedisKV: hosted/simulator runs, namespaced keys in a shared Redis
//   - MemoryKV: tests and ephemeral --memory runs
//
// # Key ownership
//
// Key space is partitioned between subsystems:
//
//   - session: "user", "authToken", "@user_profile_cache"
//   - push: "fcmPushToken"
//   - chat cache: "@chat_" and "@chat_sync_" prefixes
//
// No subsystem reads or writes another's keys directly; full logout is the
// only operation allowed to enumerate and sweep foreign prefixes.
//
// # Error Handling
//
// Get returns ErrNotFound for absent keys. Remove and RemoveMulti treat
// absent keys as success. All methods accept context.Context.
package kvstore
