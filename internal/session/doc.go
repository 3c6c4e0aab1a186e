// Package session owns the authenticated user's in-memory snapshot and its
// persisted copy.
//
// # Local-first reconciliation
//
// Cached state is authoritative for immediate UI purposes. The boot-time
// load (LoadLocal) sets the in-memory session before any network traffic,
// then validates against the backend only when the user is onboarded and a
// token is stored. Validation applies non-destructively:
//
//   - transient failures (offline, fetch errors) keep the local session
//   - a genuine invalidation forces logout, removing only the credential keys
//   - a valid result merges remote fields with the local onboarding flag pinned
//
// # Logout asymmetry
//
// Logout (user action) clears the domain cache, the fixed keys, and all
// chat-prefixed keys. ForcedLogout (credential invalidation) removes only
// the user and auth token keys, preserving caches for a faster re-login.
// The asymmetry is deliberate.
//
// # Background work
//
// UpdateUser and CompleteOnboarding apply synchronously and persist/sync in
// tracked background tasks. A per-store generation counter, bumped on every
// logout, makes stale completions no-ops. Flush waits for pending tasks.
package session
