package model

import (
	"time"

	"github.com/google/uuid"
)

type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// Quote is a provider's offer against an open request.
type Quote struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	ProviderID uuid.UUID   `db:"provider_id" json:"provider_id"`
	RequestID  uuid.UUID   `db:"request_id" json:"request_id"`
	ListingID  uuid.UUID   `db:"listing_id" json:"listing_id"`
	Price      float64     `db:"price" json:"price"`
	Message    string      `db:"message" json:"message"`
	Status     QuoteStatus `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

type CreateQuoteRequest struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	Price     float64   `json:"price" binding:"required,gt=0"`
	Message   string    `json:"message"`
}
