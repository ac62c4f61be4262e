package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickshow/quickshow-api/internal/domain"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

func (p *PostgresMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	query := `
		INSERT INTO movies (title, overview, genres, language, tagline, release_date,
			runtime, rating, poster_url, backdrop_url, now_playing)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		movie.Title,
		movie.Overview,
		movie.Genres,
		movie.Language,
		movie.Tagline,
		movie.ReleaseDate,
		movie.Runtime,
		movie.Rating,
		movie.PosterUrl,
		movie.BackdropUrl,
		movie.NowPlaying,
	).Scan(&movie.ID, &movie.CreatedAt, &movie.UpdatedAt)

	return err
}

func (p *PostgresMovieRepository) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	query := `
		SELECT id, title, overview, genres, language, tagline, release_date,
			runtime, rating, poster_url, backdrop_url, now_playing, created_at, updated_at
		FROM movies
		WHERE id = $1
	`

	var movie domain.Movie

	err := p.db.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Overview,
		&movie.Genres,
		&movie.Language,
		&movie.Tagline,
		&movie.ReleaseDate,
		&movie.Runtime,
		&movie.Rating,
		&movie.PosterUrl,
		&movie.BackdropUrl,
		&movie.NowPlaying,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &movie, nil
}

func (p *PostgresMovieRepository) GetNowPlaying(ctx context.Context) ([]*domain.Movie, error) {
	query := `
		SELECT m.id, m.title, m.overview, m.genres, m.language, m.tagline, m.release_date,
			m.runtime, m.rating, m.poster_url, m.backdrop_url, m.now_playing, m.created_at, m.updated_at
		FROM movies m
		WHERE m.now_playing
			AND EXISTS (
				SELECT 1 FROM shows s
				WHERE s.movie_id = m.id AND s.active AND s.starts_at > now()
			)
		ORDER BY m.release_date DESC
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := []*domain.Movie{}

	for rows.Next() {
		var movie domain.Movie

		err := rows.Scan(
			&movie.ID,
			&movie.Title,
			&movie.Overview,
			&movie.Genres,
			&movie.Language,
			&movie.Tagline,
			&movie.ReleaseDate,
			&movie.Runtime,
			&movie.Rating,
			&movie.PosterUrl,
			&movie.BackdropUrl,
			&movie.NowPlaying,
			&movie.CreatedAt,
			&movie.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		movies = append(movies, &movie)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return movies, nil
}

func (p *PostgresMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	query := `
		UPDATE movies
		SET title = $1, overview = $2, genres = $3, language = $4, tagline = $5,
			release_date = $6, runtime = $7, rating = $8, poster_url = $9,
			backdrop_url = $10, updated_at = now()
		WHERE id = $11
		RETURNING updated_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		movie.Title,
		movie.Overview,
		movie.Genres,
		movie.Language,
		movie.Tagline,
		movie.ReleaseDate,
		movie.Runtime,
		movie.Rating,
		movie.PosterUrl,
		movie.BackdropUrl,
		movie.ID,
	).Scan(&movie.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}

		return err
	}

	return nil
}

func (p *PostgresMovieRepository) Delete(ctx context.Context, id int) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresMovieRepository) ToggleNowPlaying(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE movies
		SET now_playing = NOT now_playing, updated_at = now()
		WHERE id = $1
		RETURNING now_playing
	`

	var nowPlaying bool

	err := p.db.QueryRow(ctx, query, id).Scan(&nowPlaying)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrRecordNotFound
		}

		return false, err
	}

	return nowPlaying, nil
}
