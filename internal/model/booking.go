package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusScheduled  BookingStatus = "scheduled"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// Booking binds an accepted quote to a scheduled time.
type Booking struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	QuoteID       uuid.UUID     `db:"quote_id" json:"quote_id"`
	CustomerID    uuid.UUID     `db:"customer_id" json:"customer_id"`
	ProviderID    uuid.UUID     `db:"provider_id" json:"provider_id"`
	ListingID     uuid.UUID     `db:"listing_id" json:"listing_id"`
	ScheduledTime time.Time     `db:"scheduled_time" json:"scheduled_time"`
	Status        BookingStatus `db:"status" json:"status"`
	HasReview     bool          `db:"has_review" json:"has_review"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

type CreateBookingRequest struct {
	QuoteID       uuid.UUID `json:"quote_id" binding:"required"`
	ScheduledTime time.Time `json:"scheduled_time" binding:"required,future"`
}
