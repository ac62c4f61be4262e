package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickshow/quickshow-api/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// CreateWithSeats inserts the booking and its seat reservations in one
// transaction. The primary key on booking_seats (show_id, seat_label) makes
// the reservation atomic: when any seat is taken the whole transaction rolls
// back and the conflicting seats are reported, so a concurrent booking on
// overlapping seats can never half-succeed.
func (p *PostgresBookingRepository) CreateWithSeats(ctx context.Context, booking *domain.Booking) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO bookings (id, user_id, show_id, amount)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			booking.ID,
			booking.UserID,
			booking.ShowID,
			booking.Amount,
		).Scan(&booking.CreatedAt)

		if err != nil {
			return err
		}

		query = `
			INSERT INTO booking_seats (show_id, seat_label, booking_id, user_id)
			SELECT $1, unnest($2::text[]), $3, $4
		`

		_, err = tx.Exec(ctx, query, booking.ShowID, booking.Seats, booking.ID, booking.UserID)

		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			seats, seatsErr := p.conflictingSeats(ctx, booking.ShowID, booking.Seats)
			if seatsErr != nil {
				return seatsErr
			}

			return &domain.SeatConflictError{Seats: seats}
		}

		return err
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (p *PostgresBookingRepository) conflictingSeats(ctx context.Context, showId int, seats []string) ([]string, error) {
	query := `
		SELECT seat_label
		FROM booking_seats
		WHERE show_id = $1 AND seat_label = ANY($2::text[])
		ORDER BY seat_label
	`

	rows, err := p.db.Query(ctx, query, showId, seats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conflicting := []string{}

	for rows.Next() {
		var seat string

		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}

		conflicting = append(conflicting, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return conflicting, nil
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT b.id, b.user_id, b.show_id, b.amount, b.paid, b.payment_link, b.created_at,
			COALESCE(array_agg(bs.seat_label ORDER BY bs.seat_label)
				FILTER (WHERE bs.seat_label IS NOT NULL), '{}')
		FROM bookings b
		LEFT JOIN booking_seats bs ON bs.booking_id = b.id
		WHERE b.id = $1
		GROUP BY b.id
	`

	var booking domain.Booking

	err := p.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowID,
		&booking.Amount,
		&booking.Paid,
		&booking.PaymentLink,
		&booking.CreatedAt,
		&booking.Seats,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) GetDetailById(ctx context.Context, id string) (*domain.BookingDetail, error) {
	query := `
		SELECT b.id, b.user_id, b.show_id, b.amount, b.paid, b.created_at,
			u.name, u.email, m.title, s.starts_at,
			COALESCE(array_agg(bs.seat_label ORDER BY bs.seat_label)
				FILTER (WHERE bs.seat_label IS NOT NULL), '{}')
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN shows s ON s.id = b.show_id
		JOIN movies m ON m.id = s.movie_id
		LEFT JOIN booking_seats bs ON bs.booking_id = b.id
		WHERE b.id = $1
		GROUP BY b.id, u.name, u.email, m.title, s.starts_at
	`

	var detail domain.BookingDetail

	err := p.db.QueryRow(ctx, query, id).Scan(
		&detail.ID,
		&detail.UserID,
		&detail.ShowID,
		&detail.Amount,
		&detail.Paid,
		&detail.CreatedAt,
		&detail.UserName,
		&detail.UserEmail,
		&detail.MovieTitle,
		&detail.ShowTime,
		&detail.Seats,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &detail, nil
}

func (p *PostgresBookingRepository) SetPaymentLink(ctx context.Context, id, sessionId, url string) error {
	query := `
		UPDATE bookings
		SET checkout_session_id = $1, payment_link = $2
		WHERE id = $3
	`

	tag, err := p.db.Exec(ctx, query, sessionId, url, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// MarkPaid is the webhook-side transition of the two-writer race: it commits
// only when the booking still exists and is unpaid. Redelivered events hit
// the same guard and become no-ops.
func (p *PostgresBookingRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE bookings
		SET paid = TRUE, payment_link = '', checkout_session_id = ''
		WHERE id = $1 AND NOT paid
	`

	tag, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteIfUnpaid is the scheduler-side transition: it removes the booking only
// while it is still unpaid. Seat rows go with it via ON DELETE CASCADE, which
// frees the seats in the same statement.
func (p *PostgresBookingRepository) DeleteIfUnpaid(ctx context.Context, id string) (bool, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1 AND NOT paid`, id)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (p *PostgresBookingRepository) GetSummariesByUserId(ctx context.Context, userId int) ([]domain.BookingSummary, error) {
	query := `
		SELECT b.id, b.user_id, m.title, s.starts_at, b.amount, b.paid, b.created_at,
			COALESCE(array_agg(bs.seat_label ORDER BY bs.seat_label)
				FILTER (WHERE bs.seat_label IS NOT NULL), '{}')
		FROM bookings b
		JOIN shows s ON s.id = b.show_id
		JOIN movies m ON m.id = s.movie_id
		LEFT JOIN booking_seats bs ON bs.booking_id = b.id
		WHERE b.user_id = $1
		GROUP BY b.id, m.title, s.starts_at
		ORDER BY b.created_at DESC
	`

	return p.querySummaries(ctx, query, userId)
}

func (p *PostgresBookingRepository) GetAllSummaries(ctx context.Context) ([]domain.BookingSummary, error) {
	query := `
		SELECT b.id, b.user_id, m.title, s.starts_at, b.amount, b.paid, b.created_at,
			COALESCE(array_agg(bs.seat_label ORDER BY bs.seat_label)
				FILTER (WHERE bs.seat_label IS NOT NULL), '{}')
		FROM bookings b
		JOIN shows s ON s.id = b.show_id
		JOIN movies m ON m.id = s.movie_id
		LEFT JOIN booking_seats bs ON bs.booking_id = b.id
		GROUP BY b.id, m.title, s.starts_at
		ORDER BY b.created_at DESC
	`

	return p.querySummaries(ctx, query)
}

func (p *PostgresBookingRepository) querySummaries(ctx context.Context, query string, args ...any) ([]domain.BookingSummary, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []domain.BookingSummary{}

	for rows.Next() {
		var summary domain.BookingSummary

		err := rows.Scan(
			&summary.ID,
			&summary.UserID,
			&summary.MovieTitle,
			&summary.ShowTime,
			&summary.Amount,
			&summary.Paid,
			&summary.CreatedAt,
			&summary.Seats,
		)

		if err != nil {
			return nil, err
		}

		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (p *PostgresBookingRepository) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM bookings WHERE paid),
			(SELECT COALESCE(SUM(amount), 0) FROM bookings WHERE paid),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM shows WHERE active AND starts_at > now())
	`

	var stats domain.DashboardStats

	err := p.db.QueryRow(ctx, query).Scan(
		&stats.TotalBookings,
		&stats.TotalRevenue,
		&stats.TotalUsers,
		&stats.TotalActiveShows,
	)

	if err != nil {
		return nil, err
	}

	return &stats, nil
}
