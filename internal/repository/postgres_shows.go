package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickshow/quickshow-api/internal/domain"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

func (p *PostgresShowRepository) Create(ctx context.Context, show *domain.Show) error {
	query := `
		INSERT INTO shows (movie_id, starts_at, price, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		show.MovieID,
		show.StartsAt,
		show.Price,
		show.Active,
	).Scan(&show.ID, &show.CreatedAt)
}

func (p *PostgresShowRepository) GetById(ctx context.Context, id int) (*domain.Show, error) {
	query := `
		SELECT id, movie_id, starts_at, price, active, created_at
		FROM shows
		WHERE id = $1
	`

	var show domain.Show

	err := p.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.MovieID,
		&show.StartsAt,
		&show.Price,
		&show.Active,
		&show.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &show, nil
}

func (p *PostgresShowRepository) GetUpcomingByMovieId(ctx context.Context, movieId int) ([]*domain.Show, error) {
	query := `
		SELECT id, movie_id, starts_at, price, active, created_at
		FROM shows
		WHERE movie_id = $1 AND active AND starts_at > now()
		ORDER BY starts_at
	`

	return p.queryShows(ctx, query, movieId)
}

func (p *PostgresShowRepository) GetUpcoming(ctx context.Context) ([]*domain.Show, error) {
	query := `
		SELECT id, movie_id, starts_at, price, active, created_at
		FROM shows
		WHERE starts_at > now()
		ORDER BY starts_at
	`

	return p.queryShows(ctx, query)
}

func (p *PostgresShowRepository) queryShows(ctx context.Context, query string, args ...any) ([]*domain.Show, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shows := []*domain.Show{}

	for rows.Next() {
		var show domain.Show

		err := rows.Scan(
			&show.ID,
			&show.MovieID,
			&show.StartsAt,
			&show.Price,
			&show.Active,
			&show.CreatedAt,
		)

		if err != nil {
			return nil, err
		}

		shows = append(shows, &show)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return shows, nil
}

func (p *PostgresShowRepository) Delete(ctx context.Context, id int) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM shows WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresShowRepository) ToggleActive(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE shows
		SET active = NOT active
		WHERE id = $1
		RETURNING active
	`

	var active bool

	err := p.db.QueryRow(ctx, query, id).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrRecordNotFound
		}

		return false, err
	}

	return active, nil
}
