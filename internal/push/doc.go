// Package push owns the push notification token lifecycle and abstracts the
// OS push/permission layer behind the Port and Events interfaces.
//
// # Token lifecycle
//
// The Registrar drives the token through None -> Requested -> Obtained ->
// Registered. A failure at any step halts at the last successful stage and
// is never retried automatically; the caller re-invokes setup. Logout drives
// Registered -> None via backend unregistration plus local key removal.
//
// # Port implementations
//
// Production ports wrap the platform messaging SDK; FakePort backs tests and
// simulator runs. The registrar is the only writer of the fcmPushToken key.
package push
