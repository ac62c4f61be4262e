package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Show struct {
	ID        int
	MovieID   int
	StartsAt  time.Time
	Price     decimal.Decimal
	Active    bool
	CreatedAt time.Time
}

type ShowRepository interface {
	Create(ctx context.Context, show *Show) error
	GetById(ctx context.Context, id int) (*Show, error)
	// GetUpcomingByMovieId returns the movie's active shows starting in the
	// future, earliest first. Past and deactivated shows are not bookable and
	// stay out of the listings.
	GetUpcomingByMovieId(ctx context.Context, movieId int) ([]*Show, error)
	// GetUpcoming returns all shows starting in the future, earliest first.
	GetUpcoming(ctx context.Context) ([]*Show, error)
	Delete(ctx context.Context, id int) error
	ToggleActive(ctx context.Context, id int) (bool, error)
}

// SeatRepository reads the seat occupancy of a show. The booking flow owns
// the writes; occupancy rows are created and removed together with bookings.
type SeatRepository interface {
	GetOccupiedSeats(ctx context.Context, showId int) ([]string, error)
}
