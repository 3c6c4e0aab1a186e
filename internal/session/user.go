// ABOUTME: User snapshot, partial-update patch, and merge rules for the session
// ABOUTME: Local isOnboarded=true is never downgraded by a remote merge

package session

import (
	"encoding/json"
	"fmt"

	"github.com/emberapp/ember-core/internal/api"
)

// User is the authenticated user's identity and profile snapshot. It is
// owned exclusively by the session store and persisted as one JSON blob.
type User struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name,omitempty"`
	Phone              string            `json:"phone,omitempty"`
	Email              string            `json:"email,omitempty"`
	PhotoURL           string            `json:"photoUrl,omitempty"`
	School             string            `json:"school,omitempty"`
	College            string            `json:"college,omitempty"`
	Office             string            `json:"office,omitempty"`
	HomeLocation       string            `json:"homeLocation,omitempty"`
	SituationResponses map[string]string `json:"situationResponses,omitempty"`
	IsOnboarded        bool              `json:"isOnboarded"`
	IsFaceVerified     bool              `json:"isFaceVerified"`
}

// Patch is a partial update to the user. Nil fields are left untouched.
type Patch struct {
	Name               *string
	Phone              *string
	Email              *string
	PhotoURL           *string
	School             *string
	College            *string
	Office             *string
	HomeLocation       *string
	SituationResponses map[string]string
	IsFaceVerified     *bool
}

// apply shallow-merges the patch onto u.
func (p Patch) apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PhotoURL != nil {
		u.PhotoURL = *p.PhotoURL
	}
	if p.School != nil {
		u.School = *p.School
	}
	if p.College != nil {
		u.College = *p.College
	}
	if p.Office != nil {
		u.Office = *p.Office
	}
	if p.HomeLocation != nil {
		u.HomeLocation = *p.HomeLocation
	}
	if p.SituationResponses != nil {
		u.SituationResponses = p.SituationResponses
	}
	if p.IsFaceVerified != nil {
		u.IsFaceVerified = *p.IsFaceVerified
	}
}

// syncPayload returns the allow-listed subset of the patch sent to the
// backend profile endpoint. Only fields present in the patch are included;
// an empty result means no sync call is made.
func (p Patch) syncPayload() api.ProfileUpdate {
	payload := api.ProfileUpdate{}
	if p.Name != nil {
		payload["name"] = *p.Name
	}
	if p.School != nil {
		payload["school"] = *p.School
	}
	if p.College != nil {
		payload["college"] = *p.College
	}
	if p.Office != nil {
		payload["office"] = *p.Office
	}
	if p.HomeLocation != nil {
		payload["homeLocation"] = *p.HomeLocation
	}
	if p.SituationResponses != nil {
		payload["situationResponses"] = p.SituationResponses
	}
	return payload
}

// mergeRemote applies the backend's partial view onto u. The local
// IsOnboarded value always wins: validation must never undo onboarding.
func mergeRemote(u *User, r *api.RemoteUser) {
	if r == nil {
		return
	}
	if r.ID != "" {
		u.ID = r.ID
	}
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Phone != nil {
		u.Phone = *r.Phone
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.PhotoURL != nil {
		u.PhotoURL = *r.PhotoURL
	}
	if r.School != nil {
		u.School = *r.School
	}
	if r.College != nil {
		u.College = *r.College
	}
	if r.Office != nil {
		u.Office = *r.Office
	}
	if r.HomeLocation != nil {
		u.HomeLocation = *r.HomeLocation
	}
	if r.SituationResponses != nil {
		u.SituationResponses = r.SituationResponses
	}
	if r.IsFaceVerified != nil {
		u.IsFaceVerified = *r.IsFaceVerified
	}
	// r.IsOnboarded deliberately ignored
}

// decodeStoredUser parses the persisted JSON blob. hadOnboardedField reports
// whether the record carried an isOnboarded field at all; records written
// before the flag existed need a one-time migration to an explicit false.
func decodeStoredUser(raw string) (user *User, hadOnboardedField bool, err error) {
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false, fmt.Errorf("parsing stored user: %w", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, false, fmt.Errorf("parsing stored user: %w", err)
	}
	_, hadOnboardedField = probe["isOnboarded"]

	return &u, hadOnboardedField, nil
}
