package model

import "time"

// Listing moderation statuses. New listings start pending and are hidden from
// public browse until an admin approves them.
const (
	ListingPending  = "pending"
	ListingApproved = "approved"
	ListingRejected = "rejected"
)

type Product struct {
	ID              string    `json:"id"`
	SellerID        string    `json:"seller_id"`
	CategoryID      string    `json:"category_id"`
	MeetingPointID  string    `json:"meeting_point_id,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	PriceCredits    int       `json:"price_credits"`
	Stock           int       `json:"stock"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type MeetingPoint struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Rating struct {
	ID            string    `json:"id"`
	SellerID      string    `json:"seller_id"`
	BuyerID       string    `json:"buyer_id"`
	AppointmentID string    `json:"appointment_id"`
	Score         int       `json:"score"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RatingSummary is the per-seller aggregate maintained alongside each new
// rating.
type RatingSummary struct {
	SellerID    string  `json:"seller_id"`
	RatingCount int     `json:"rating_count"`
	RatingTotal int     `json:"rating_total"`
	Average     float64 `json:"average"`
}

// AvailabilityRule mirrors the resolver's rule shape: minutes since midnight,
// weekday 0 (Sunday) through 6 (Saturday), declared order preserved.
type AvailabilityRule struct {
	Weekday     int  `json:"weekday"`
	StartMinute int  `json:"start_minute"`
	EndMinute   int  `json:"end_minute"`
	Active      bool `json:"active"`
}
