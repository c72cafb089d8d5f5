package util

import (
	"github.com/google/uuid"
)

// GenerateID returns a random identifier for new documents.
func GenerateID() string {
	return uuid.NewString()
}
