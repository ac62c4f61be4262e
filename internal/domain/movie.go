package domain

import (
	"context"
	"time"
)

type Movie struct {
	ID          int
	Title       string
	Overview    string
	Genres      []string
	Language    string
	Tagline     string
	ReleaseDate time.Time
	Runtime     int
	Rating      float64
	PosterUrl   string
	BackdropUrl string
	NowPlaying  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MovieRepository interface {
	Create(ctx context.Context, movie *Movie) error
	GetById(ctx context.Context, id int) (*Movie, error)
	// GetNowPlaying returns now-playing movies that have at least one
	// upcoming active show.
	GetNowPlaying(ctx context.Context) ([]*Movie, error)
	Update(ctx context.Context, movie *Movie) error
	Delete(ctx context.Context, id int) error
	ToggleNowPlaying(ctx context.Context, id int) (bool, error)
}
