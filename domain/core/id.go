package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SessionID ID
	TokenID   ID
)

func (id SessionID) String() string { return ID(id).String() }
func (id TokenID) String() string   { return ID(id).String() }

// NewSessionID creates a fresh session identifier
func NewSessionID() SessionID { return SessionID(NewID()) }

// NewTokenID creates a fresh cancellation token identifier
func NewTokenID() TokenID { return TokenID(NewID()) }

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}
