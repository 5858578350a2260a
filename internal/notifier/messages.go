package notifier

import (
	"fmt"

	"github.com/shenikar/hazard_alert_relay/internal/classifier"
	"github.com/shenikar/hazard_alert_relay/internal/models"
)

// Canned safety guidance appended to a danger notification, keyed by
// event type. Types without an entry get no extra guidance.
var guidance = map[models.EventType]string{
	models.EventQuake: "Drop, cover and hold on. Stay away from windows and do not use elevators.",
	models.EventSmoke: "Leave the area immediately, stay low and do not use elevators.",
}

// RequestLocationText asks a user to share their location for the
// given event.
func RequestLocationText(eventLabel string) string {
	return fmt.Sprintf("⚠️ Hazard alert: %s\nPlease share your location so we can check if you are in the danger zone.", eventLabel)
}

// AllClearText is broadcast when the event closes.
func AllClearText() string {
	return "✅ All clear. The hazard event is over, no further action is needed."
}

// InformationalText is broadcast for non-hazard report tags.
func InformationalText(eventLabel string) string {
	return fmt.Sprintf("ℹ️ %s", eventLabel)
}

// ReportOpenedText is sent to the reporter after a chat-opened event.
func ReportOpenedText() string {
	return "Your hazard report is open. Share your location to pin the incident, and use /describe <text> to add details."
}

// ClassificationText builds the personalized danger/safe message for a
// single user's classification result.
func ClassificationText(res classifier.Result, ev models.Event, eventLabel string) string {
	switch res.Status {
	case classifier.StatusDanger:
		text := fmt.Sprintf("🚨 You are in the danger zone of: %s", eventLabel)
		if res.DistanceKm != nil {
			text = fmt.Sprintf("%s\nDistance to the event: %.1f km.", text, *res.DistanceKm)
		}
		if g, ok := guidance[ev.Type]; ok {
			text += "\n" + g
		}
		return text
	case classifier.StatusSafe:
		if res.DistanceKm == nil {
			// No active event or no usable data: no distance to show.
			return fmt.Sprintf("✅ Thanks, location received. %s.", eventLabel)
		}
		return fmt.Sprintf("✅ You are outside the danger zone of: %s\nDistance to the event: %.1f km.", eventLabel, *res.DistanceKm)
	default:
		return RequestLocationText(eventLabel)
	}
}

// UnrecognizedText is the static reply to a text the bot does not
// understand.
func UnrecognizedText() string {
	return "Sorry, I did not understand that. Use /help to see what I can do."
}

// WelcomeText greets a user on /start.
func WelcomeText() string {
	return `Welcome to the hazard alert relay.
I will message you when a hazard is reported near you and ask for your location.
Use /help to see all commands.`
}

// HelpText lists the chat commands.
func HelpText() string {
	return `Available commands:
/start - register with the relay
/help - show this help
/report - report a hazard near you
/describe <text> - add details to your open report
/allclear - close the current event

Share your location at any time to get your danger status.`
}
