package simulation

import "time"

// Session status values. Nothing in the current contract transitions a
// session to completed; the value exists for forward compatibility with
// assessment flows that close a conversation explicitly.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Session is the persisted conversational state for one simulation.
// Messages[0] is always the persona's system prompt, set once at
// creation. Each successful turn appends one user and one assistant
// entry.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	Messages  []Message `json:"messages"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New seeds a session with the persona's system prompt.
func New(id, personaID, systemPrompt string) Session {
	now := time.Now().UTC()
	return Session{
		ID:        id,
		PersonaID: personaID,
		Messages:  []Message{{Role: RoleSystem, Content: systemPrompt}},
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a transcript entry and bumps UpdatedAt.
func (s *Session) Append(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
	s.UpdatedAt = time.Now().UTC()
}
