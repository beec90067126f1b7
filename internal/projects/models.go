package projects

import (
	"time"

	"github.com/google/uuid"
)

// Project is the scope under which runs are recorded and deduplicated.
type Project struct {
	ID             uuid.UUID
	Slug           string
	Name           string
	WebhookURL     *string
	WebhookEnabled bool
	CreatedAt      time.Time
}
