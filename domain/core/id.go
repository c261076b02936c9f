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
	AlertID  ID
	UploadID ID
)

func (id AlertID) String() string  { return ID(id).String() }
func (id UploadID) String() string { return ID(id).String() }

func (id AlertID) IsEmpty() bool  { return ID(id).IsEmpty() }
func (id UploadID) IsEmpty() bool { return ID(id).IsEmpty() }

// NewAlertID returns a fresh alert identifier.
func NewAlertID() AlertID { return AlertID(NewID()) }

// NewUploadID returns a fresh identifier for an upload batch.
func NewUploadID() UploadID { return UploadID(NewID()) }

// ParseAlertID parses and validates an alert identifier.
func ParseAlertID(s string) (AlertID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("alert ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid alert ID %q: %w", s, err)
	}
	return AlertID(s), nil
}
