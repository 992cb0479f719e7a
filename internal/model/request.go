package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusOpen   RequestStatus = "open"
	RequestStatusQuoted RequestStatus = "quoted"
	RequestStatusBooked RequestStatus = "booked"
	RequestStatusClosed RequestStatus = "closed"
)

// Request is a customer's ask for a service against a listing.
type Request struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	UserID        uuid.UUID     `db:"user_id" json:"user_id"`
	ListingID     uuid.UUID     `db:"listing_id" json:"listing_id"`
	Description   string        `db:"description" json:"description"`
	Location      string        `db:"location" json:"location"`
	PreferredDate *time.Time    `db:"preferred_date" json:"preferred_date"`
	Status        RequestStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

type CreateRequestRequest struct {
	ListingID     uuid.UUID  `json:"listing_id" binding:"required"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	PreferredDate *time.Time `json:"preferred_date"`
}
