// Package id defines the identifier type of job board entities.
package id

import (
	"github.com/google/uuid"
)

// ID identifies job posts, attributes and related entities.
type ID = uuid.UUID

// New returns a time-ordered UUIDv7, falling back to a random UUID.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse reads an ID from its string form.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// IsNil reports whether v is the zero ID.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

