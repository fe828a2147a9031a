package model

import "time"

// Appointment statuses. Pending appointments that the seller never confirms
// are moved to expired by the jobs worker.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

type Appointment struct {
	ID           string
	ProductID    string
	SellerID     string
	BuyerID      string
	MeetingDate  time.Time
	MeetingTime  string // HH:MM
	Quantity     int
	Status       string
	ExpiresAt    time.Time
	ConfirmedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
	CreatedAt    time.Time
}

// ProductSnapshot is the locally projected view of a catalog product, kept
// fresh by the catalog.product.updated.v1 consumer.
type ProductSnapshot struct {
	ProductID    string
	SellerID     string
	Title        string
	Stock        int
	PriceCredits int
	Status       string
	UpdatedAt    time.Time
}
