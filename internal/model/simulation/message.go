package simulation

// Message roles as sent to the completion service. Order within a
// transcript is significant: it is the literal context for each turn.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
