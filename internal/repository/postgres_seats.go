package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSeatRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatRepository(db *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

// GetOccupiedSeats returns the seat labels currently reserved for the show,
// across paid and pending bookings alike. A show without reservations yields
// an empty slice.
func (p *PostgresSeatRepository) GetOccupiedSeats(ctx context.Context, showId int) ([]string, error) {
	query := `
		SELECT seat_label
		FROM booking_seats
		WHERE show_id = $1
		ORDER BY seat_label
	`

	rows, err := p.db.Query(ctx, query, showId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := []string{}

	for rows.Next() {
		var seat string

		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
