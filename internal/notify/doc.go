// Package notify owns the notification list, unread count, app badge, and
// the pending navigation slot.
//
// Refreshes replace the list wholesale from a full server snapshot, so
// concurrent refreshes need no merging: the last one to resolve wins. A
// generation counter bumped by Cleanup discards refreshes that resolve after
// logout. The pending navigation intent is a single slot written by the tap
// listener and consumed exactly once by the UI via ClearPendingNavigation.
package notify
