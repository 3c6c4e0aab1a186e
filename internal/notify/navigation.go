// ABOUTME: Fixed mapping from notification payload types to navigation targets
// ABOUTME: Produces the single-slot pending navigation intent consumed once by the UI

package notify

// Screen names the UI can navigate to from a notification tap.
const (
	ScreenMatches       = "Matches"
	ScreenChat          = "Chat"
	ScreenIncomingCall  = "IncomingCall"
	ScreenLikes         = "Likes"
	ScreenProfile       = "Profile"
	ScreenSettings      = "Settings"
	ScreenNotifications = "Notifications"
)

// NavigationIntent is a queued UI instruction produced by a notification tap.
// It is held in a single slot and consumed exactly once.
type NavigationIntent struct {
	Screen string
	Params map[string]string
}

// intentForPayload maps a tap payload to its navigation target. Unrecognized
// types land on the notification list.
func intentForPayload(data map[string]string) NavigationIntent {
	switch data["type"] {
	case "match", "unmatch":
		return NavigationIntent{Screen: ScreenMatches}
	case "message", "voice_note":
		if id := data["matchId"]; id != "" {
			return NavigationIntent{Screen: ScreenChat, Params: map[string]string{"matchId": id}}
		}
		return NavigationIntent{Screen: ScreenMatches}
	case "call":
		if id := data["callId"]; id != "" {
			return NavigationIntent{Screen: ScreenIncomingCall, Params: map[string]string{"callId": id}}
		}
		return NavigationIntent{Screen: ScreenMatches}
	case "like", "profile_view":
		return NavigationIntent{Screen: ScreenLikes}
	case "referral_reward", "reward_used":
		return NavigationIntent{Screen: ScreenProfile}
	case "report":
		return NavigationIntent{Screen: ScreenSettings}
	default:
		return NavigationIntent{Screen: ScreenNotifications}
	}
}
