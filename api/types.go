// Package api contains the request and response types of the HTTP API.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validation_errors"`
	RequestId        string            `json:"request_id,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SeatConflictResponse struct {
	Message          string    `json:"message"`
	UnavailableSeats []string  `json:"unavailable_seats"`
	RequestId        string    `json:"request_id,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"system_info"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	Id        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Movie struct {
	Id          int       `json:"id"`
	Title       string    `json:"title"`
	Overview    string    `json:"overview"`
	Genres      []string  `json:"genres"`
	Language    string    `json:"language,omitempty"`
	Tagline     string    `json:"tagline,omitempty"`
	ReleaseDate time.Time `json:"release_date"`
	Runtime     int       `json:"runtime"`
	Rating      float64   `json:"rating"`
	PosterUrl   string    `json:"poster_url,omitempty"`
	BackdropUrl string    `json:"backdrop_url,omitempty"`
	NowPlaying  bool      `json:"now_playing"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateMovieRequest struct {
	Title       string   `json:"title" validate:"required,min=2,max=200"`
	Overview    string   `json:"overview" validate:"required,min=10"`
	Genres      []string `json:"genres" validate:"required,min=1,dive,required"`
	Language    string   `json:"language" validate:"omitempty,max=50"`
	Tagline     string   `json:"tagline" validate:"omitempty,max=200"`
	ReleaseDate string   `json:"release_date" validate:"required,datetime=2006-01-02"`
	Runtime     int      `json:"runtime" validate:"required,min=1"`
	Rating      float64  `json:"rating" validate:"min=0,max=10"`
	PosterUrl   string   `json:"poster_url" validate:"omitempty,url"`
	BackdropUrl string   `json:"backdrop_url" validate:"omitempty,url"`
}

type UpdateMovieRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=2,max=200"`
	Overview    *string   `json:"overview" validate:"omitempty,min=10"`
	Genres      *[]string `json:"genres" validate:"omitempty,min=1,dive,required"`
	Language    *string   `json:"language" validate:"omitempty,max=50"`
	Tagline     *string   `json:"tagline" validate:"omitempty,max=200"`
	ReleaseDate *string   `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Runtime     *int      `json:"runtime" validate:"omitempty,min=1"`
	Rating      *float64  `json:"rating" validate:"omitempty,min=0,max=10"`
	PosterUrl   *string   `json:"poster_url" validate:"omitempty,url"`
	BackdropUrl *string   `json:"backdrop_url" validate:"omitempty,url"`
}

type MovieListResponse struct {
	Movies []Movie `json:"movies"`
}

type MovieDetailsResponse struct {
	Movie Movie  `json:"movie"`
	Shows []Show `json:"shows"`
}

type Show struct {
	Id       int             `json:"id"`
	MovieId  int             `json:"movie_id"`
	StartsAt time.Time       `json:"starts_at"`
	Price    decimal.Decimal `json:"price"`
	Active   bool            `json:"active"`
}

type CreateShowRequest struct {
	StartsAt time.Time       `json:"starts_at" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"required"`
}

type ShowListResponse struct {
	Shows []Show `json:"shows"`
}

type OccupiedSeatsResponse struct {
	ShowId        int      `json:"show_id"`
	OccupiedSeats []string `json:"occupied_seats"`
}

type CreateBookingRequest struct {
	ShowId int      `json:"show_id" validate:"required,min=1"`
	Seats  []string `json:"seats" validate:"required,min=1,max=10,unique,dive,seat_label"`
}

type Booking struct {
	Id        string          `json:"id"`
	ShowId    int             `json:"show_id"`
	Seats     []string        `json:"seats"`
	Amount    decimal.Decimal `json:"amount"`
	Paid      bool            `json:"paid"`
	CreatedAt time.Time       `json:"created_at"`
}

type CreateBookingResponse struct {
	Booking     Booking `json:"booking"`
	RedirectUrl string  `json:"redirect_url"`
}

type BookingSummary struct {
	Id         string          `json:"id"`
	MovieTitle string          `json:"movie_title"`
	ShowTime   time.Time       `json:"show_time"`
	Seats      []string        `json:"seats"`
	Amount     decimal.Decimal `json:"amount"`
	Paid       bool            `json:"paid"`
	CreatedAt  time.Time       `json:"created_at"`
}

type UserBookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
}

type AdminBookingsResponse struct {
	Total    int              `json:"total"`
	Bookings []BookingSummary `json:"bookings"`
}

type DashboardResponse struct {
	TotalBookings    int             `json:"total_bookings"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalUsers       int             `json:"total_users"`
	TotalActiveShows int             `json:"total_active_shows"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
