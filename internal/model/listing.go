package model

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a service offered by a provider. Requests and quotes hang off
// listings, and listing titles feed the notification messages.
type Listing struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type CreateListingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}
