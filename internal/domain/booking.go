package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Booking struct {
	ID          string
	UserID      int
	ShowID      int
	Seats       []string
	Amount      decimal.Decimal
	Paid        bool
	PaymentLink string
	CreatedAt   time.Time
}

// NewBooking builds an unpaid booking for the given seats. The amount is the
// show price multiplied by the seat count.
func NewBooking(userID int, show *Show, seats []string) Booking {
	return Booking{
		ID:     uuid.New().String(),
		UserID: userID,
		ShowID: show.ID,
		Seats:  seats,
		Amount: show.Price.Mul(decimal.NewFromInt(int64(len(seats)))),
	}
}

type BookingSummary struct {
	ID         string
	UserID     int
	MovieTitle string
	ShowTime   time.Time
	Seats      []string
	Amount     decimal.Decimal
	Paid       bool
	CreatedAt  time.Time
}

// BookingDetail carries the booking together with the fields needed for the
// confirmation email.
type BookingDetail struct {
	Booking
	UserName   string
	UserEmail  string
	MovieTitle string
	ShowTime   time.Time
}

type DashboardStats struct {
	TotalBookings    int
	TotalRevenue     decimal.Decimal
	TotalUsers       int
	TotalActiveShows int
}

type BookingRepository interface {
	// CreateWithSeats inserts the booking and reserves its seats in a single
	// transaction. When any requested seat is already occupied the whole
	// operation fails with *SeatConflictError and nothing is reserved.
	CreateWithSeats(ctx context.Context, booking *Booking) error
	GetById(ctx context.Context, id string) (*Booking, error)
	GetDetailById(ctx context.Context, id string) (*BookingDetail, error)
	SetPaymentLink(ctx context.Context, id, sessionId, url string) error
	// MarkPaid flips the booking to paid and clears the payment link, only if
	// it is still unpaid. Reports whether the transition happened.
	MarkPaid(ctx context.Context, id string) (bool, error)
	// DeleteIfUnpaid removes the booking and frees its seats, only if it is
	// still unpaid. A paid or already-deleted booking is left untouched.
	// It serves both the hold expiry and the compensating cleanup when
	// opening the payment session fails.
	DeleteIfUnpaid(ctx context.Context, id string) (bool, error)
	GetSummariesByUserId(ctx context.Context, userId int) ([]BookingSummary, error)
	GetAllSummaries(ctx context.Context) ([]BookingSummary, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}
