package domain

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID         int64             `json:"id"`
	PartyID    uuid.UUID         `json:"party_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  time.Time         `json:"created_on"`
}
