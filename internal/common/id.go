package common

import (
	"github.com/google/uuid"

	"github.com/ternarybob/doccrawl/internal/models"
)

// NewSessionToken generates a browser session token
// Format: <prefix>_<uuid>
func NewSessionToken(prefix string) models.SessionToken {
	if prefix == "" {
		prefix = "session"
	}
	return models.SessionToken(prefix + "_" + uuid.New().String())
}
