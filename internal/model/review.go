package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is left by the customer against a completed booking.
type Review struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BookingID  uuid.UUID `db:"booking_id" json:"booking_id"`
	ReviewerID uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	RevieweeID uuid.UUID `db:"reviewee_id" json:"reviewee_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   string    `json:"comment"`
}
