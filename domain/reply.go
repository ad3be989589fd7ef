package domain

// Callback tokens attached to the echo menu. The transport returns the
// token verbatim when the user picks a choice.
const (
	CallbackCount = "count"
	CallbackList  = "list"
)

// TimeUpText is the fixed notification sent when a timer fires.
const TimeUpText = "Time's up!"

// Choice is one labeled button of an interactive menu.
type Choice struct {
	Label string
	Token string
}

// Reply is the single outbound answer to an inbound event.
// Menu is nil for plain text replies.
type Reply struct {
	ChatID string
	Text   string
	Menu   []Choice
}

// EchoMenu returns the two-choice menu attached to every echo reply.
func EchoMenu() []Choice {
	return []Choice{
		{Label: "Message count", Token: CallbackCount},
		{Label: "My messages", Token: CallbackList},
	}
}
