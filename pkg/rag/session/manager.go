package session

import (
	"github.com/google/uuid"
)

// Resolve returns id unchanged, or a fresh UUID v4 when the caller supplied none.
// Sessions are implicit: nothing checks that a supplied id was seen before, and
// any non-empty string, whitespace included, is a valid id.
func Resolve(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
