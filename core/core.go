package core

import "github.com/google/uuid"

// Conversational roles carried by history entries and backend messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleDeveloper = "developer"
	RoleSystem    = "system"
)

// NewID generates a new unique identifier.
//
// Used for correlation IDs on turn records and for synthetic response IDs in
// test doubles. Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }
