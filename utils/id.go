package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/google/uuid"
)

// NewID returns a random UUIDv4 string used as a record identifier.
func NewID() string {
	return uuid.NewString()
}

// NewRequestID returns a short URL-safe identifier for correlating log lines.
func NewRequestID() string {
	id, err := gonanoid.New(12)
	if err != nil {
		return uuid.NewString()
	}
	return id
}
