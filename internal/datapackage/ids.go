package datapackage

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator returns a fresh mediaID or observationID.
type IDGenerator func() string

// NewID returns an 8 hex digit token taken from a random UUID.
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}

const maxIDAttempts = 32

// Unique wraps newID so the returned generator never repeats an identifier.
// A generator that keeps colliding gets a positional suffix. A nil newID
// uses NewID.
func Unique(newID IDGenerator) IDGenerator {
	if newID == nil {
		newID = NewID
	}
	used := make(map[string]struct{})
	return func() string {
		for attempt := 0; ; attempt++ {
			id := newID()
			if attempt >= maxIDAttempts {
				id = fmt.Sprintf("%s-%d", id, len(used))
			}
			if _, taken := used[id]; !taken {
				used[id] = struct{}{}
				return id
			}
		}
	}
}
