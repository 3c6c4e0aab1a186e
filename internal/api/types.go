// ABOUTME: Wire types for the Ember backend session and notification endpoints
// ABOUTME: All responses share a {success, message?, data?} envelope

package api

import (
	"encoding/json"
	"time"
)

// envelope is the common response wrapper used by every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// RemoteUser is the backend's partial view of a user. Pointer fields
// distinguish "absent" from zero values so merges never clobber local state.
type RemoteUser struct {
	ID                 string            `json:"id,omitempty"`
	Name               *string           `json:"name,omitempty"`
	Phone              *string           `json:"phone,omitempty"`
	Email              *string           `json:"email,omitempty"`
	PhotoURL           *string           `json:"photoUrl,omitempty"`
	School             *string           `json:"school,omitempty"`
	College            *string           `json:"college,omitempty"`
	Office             *string           `json:"office,omitempty"`
	HomeLocation       *string           `json:"homeLocation,omitempty"`
	SituationResponses map[string]string `json:"situationResponses,omitempty"`
	IsOnboarded        *bool             `json:"isOnboarded,omitempty"`
	IsFaceVerified     *bool             `json:"isFaceVerified,omitempty"`
}

// ValidateSessionResult is the outcome of a session validation call.
// Valid=false carries a message that callers classify as transient or genuine.
type ValidateSessionResult struct {
	Valid   bool        `json:"valid"`
	Message string      `json:"message,omitempty"`
	User    *RemoteUser `json:"user,omitempty"`
}

// ProfileUpdate is the allow-listed field set sent to the profile endpoint.
type ProfileUpdate map[string]any

// Notification is a single notification record, ordered by server recency.
type Notification struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	IsRead    bool              `json:"isRead"`
	CreatedAt time.Time         `json:"createdAt"`
	Data      map[string]string `json:"data,omitempty"`
	ImageURL  string            `json:"imageUrl,omitempty"`
}

// notificationsData is the data payload of the notification list endpoint.
type notificationsData struct {
	Notifications []Notification `json:"notifications"`
}

// unreadCountData is the data payload of the unread count endpoint.
type unreadCountData struct {
	Count int `json:"count"`
}
