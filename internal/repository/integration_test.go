package repository_test

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickshow/quickshow-api/internal/domain"
	"github.com/quickshow/quickshow-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbName     = "quickshow"
	dbUser     = "test_user"
	dbPassword = "test_password"
	dbImage    = "postgres:17-alpine"
)

// BookingRepositorySuite exercises the booking SQL against a real database:
// the booking_seats primary key that keeps seat reservations exclusive, and
// the MarkPaid/DeleteIfUnpaid transitions that let the payment webhook and
// the hold expiry race safely.
type BookingRepositorySuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *pgxpool.Pool

	users    *repository.PostgresUserRepository
	movies   *repository.PostgresMovieRepository
	shows    *repository.PostgresShowRepository
	seats    *repository.PostgresSeatRepository
	bookings *repository.PostgresBookingRepository
}

func TestBookingRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(BookingRepositorySuite))
}

func (s *BookingRepositorySuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx, dbImage,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	s.Require().NoError(err, "failed to start database container")
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.Require().NoError(repository.Migrate(dsn), "failed to run migrations")

	db, err := pgxpool.New(ctx, dsn)
	s.Require().NoError(err)
	s.db = db

	s.users = repository.NewPostgresUserRepository(db)
	s.movies = repository.NewPostgresMovieRepository(db)
	s.shows = repository.NewPostgresShowRepository(db)
	s.seats = repository.NewPostgresSeatRepository(db)
	s.bookings = repository.NewPostgresBookingRepository(db)
}

func (s *BookingRepositorySuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}

	if s.container != nil {
		if err := testcontainers.TerminateContainer(s.container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

func (s *BookingRepositorySuite) SetupTest() {
	_, err := s.db.Exec(context.Background(),
		`TRUNCATE booking_seats, bookings, shows, movies, users RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *BookingRepositorySuite) createUser(email string) *domain.User {
	user := &domain.User{
		Name:  "Jane Doe",
		Email: email,
		Role:  domain.RoleUser,
	}
	s.Require().NoError(user.Password.Set("Sup3r$ecret"))
	s.Require().NoError(s.users.Create(context.Background(), user))

	return user
}

func (s *BookingRepositorySuite) createShow(startsAt time.Time, active bool) *domain.Show {
	movie := &domain.Movie{
		Title:       "Inception",
		Overview:    "A thief who steals corporate secrets.",
		Genres:      []string{"Sci-Fi"},
		ReleaseDate: time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC),
		Runtime:     148,
	}
	s.Require().NoError(s.movies.Create(context.Background(), movie))

	show := &domain.Show{
		MovieID:  movie.ID,
		StartsAt: startsAt,
		Price:    decimal.NewFromInt(15),
		Active:   active,
	}
	s.Require().NoError(s.shows.Create(context.Background(), show))

	return show
}

func (s *BookingRepositorySuite) TestConcurrentOverlappingBookingsOneWins() {
	ctx := context.Background()
	user := s.createUser("jane@example.com")
	show := s.createShow(time.Now().Add(48*time.Hour), true)

	first := domain.NewBooking(user.ID, show, []string{"A1", "A2"})
	second := domain.NewBooking(user.ID, show, []string{"A2", "A3"})

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i, booking := range []*domain.Booking{&first, &second} {
		wg.Add(1)

		go func() {
			defer wg.Done()
			errs[i] = s.bookings.CreateWithSeats(ctx, booking)
		}()
	}

	wg.Wait()

	var conflicts []*domain.SeatConflictError
	for _, err := range errs {
		if err == nil {
			continue
		}

		var seatConflict *domain.SeatConflictError
		s.Require().ErrorAs(err, &seatConflict)
		conflicts = append(conflicts, seatConflict)
	}

	s.Require().Len(conflicts, 1, "exactly one of the overlapping bookings must lose")
	s.Equal([]string{"A2"}, conflicts[0].Seats)

	occupied, err := s.seats.GetOccupiedSeats(ctx, show.ID)
	s.Require().NoError(err)
	s.Len(occupied, 2, "only the winning booking's seats stay reserved")
	s.Contains(occupied, "A2")
}

func (s *BookingRepositorySuite) TestSeatConflictReportsContestedSeatsOnly() {
	ctx := context.Background()
	user := s.createUser("jane@example.com")
	show := s.createShow(time.Now().Add(48*time.Hour), true)

	first := domain.NewBooking(user.ID, show, []string{"A1", "A2"})
	s.Require().NoError(s.bookings.CreateWithSeats(ctx, &first))

	second := domain.NewBooking(user.ID, show, []string{"A2", "B1"})
	err := s.bookings.CreateWithSeats(ctx, &second)

	var seatConflict *domain.SeatConflictError
	s.Require().ErrorAs(err, &seatConflict)
	s.Equal([]string{"A2"}, seatConflict.Seats)

	occupied, err := s.seats.GetOccupiedSeats(ctx, show.ID)
	s.Require().NoError(err)
	s.Equal([]string{"A1", "A2"}, occupied, "the losing booking must not reserve any seat")
}

func (s *BookingRepositorySuite) TestPaymentBeforeExpiryKeepsBooking() {
	ctx := context.Background()
	user := s.createUser("jane@example.com")
	show := s.createShow(time.Now().Add(48*time.Hour), true)

	booking := domain.NewBooking(user.ID, show, []string{"C4"})
	s.Require().NoError(s.bookings.CreateWithSeats(ctx, &booking))

	marked, err := s.bookings.MarkPaid(ctx, booking.ID)
	s.Require().NoError(err)
	s.True(marked)

	released, err := s.bookings.DeleteIfUnpaid(ctx, booking.ID)
	s.Require().NoError(err)
	s.False(released, "a paid booking must survive the hold expiry")

	got, err := s.bookings.GetById(ctx, booking.ID)
	s.Require().NoError(err)
	s.True(got.Paid)
	s.Equal([]string{"C4"}, got.Seats)
}

func (s *BookingRepositorySuite) TestExpiryBeforePaymentFreesSeats() {
	ctx := context.Background()
	user := s.createUser("jane@example.com")
	show := s.createShow(time.Now().Add(48*time.Hour), true)

	booking := domain.NewBooking(user.ID, show, []string{"C4", "C5"})
	s.Require().NoError(s.bookings.CreateWithSeats(ctx, &booking))

	released, err := s.bookings.DeleteIfUnpaid(ctx, booking.ID)
	s.Require().NoError(err)
	s.True(released)

	marked, err := s.bookings.MarkPaid(ctx, booking.ID)
	s.Require().NoError(err)
	s.False(marked, "a released booking can no longer be marked paid")

	occupied, err := s.seats.GetOccupiedSeats(ctx, show.ID)
	s.Require().NoError(err)
	s.Empty(occupied, "released seats must be bookable again")

	_, err = s.bookings.GetById(ctx, booking.ID)
	s.ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *BookingRepositorySuite) TestMarkPaidIsIdempotent() {
	ctx := context.Background()
	user := s.createUser("jane@example.com")
	show := s.createShow(time.Now().Add(48*time.Hour), true)

	booking := domain.NewBooking(user.ID, show, []string{"D1"})
	s.Require().NoError(s.bookings.CreateWithSeats(ctx, &booking))

	marked, err := s.bookings.MarkPaid(ctx, booking.ID)
	s.Require().NoError(err)
	s.True(marked)

	marked, err = s.bookings.MarkPaid(ctx, booking.ID)
	s.Require().NoError(err)
	s.False(marked, "a replayed payment event must not transition twice")
}

func (s *BookingRepositorySuite) TestGetUpcomingByMovieIdSkipsPastAndInactiveShows() {
	ctx := context.Background()

	upcoming := s.createShow(time.Now().Add(48*time.Hour), true)

	past := &domain.Show{
		MovieID:  upcoming.MovieID,
		StartsAt: time.Now().Add(-time.Hour),
		Price:    decimal.NewFromInt(15),
		Active:   true,
	}
	s.Require().NoError(s.shows.Create(ctx, past))

	inactive := &domain.Show{
		MovieID:  upcoming.MovieID,
		StartsAt: time.Now().Add(72 * time.Hour),
		Price:    decimal.NewFromInt(15),
		Active:   false,
	}
	s.Require().NoError(s.shows.Create(ctx, inactive))

	shows, err := s.shows.GetUpcomingByMovieId(ctx, upcoming.MovieID)
	s.Require().NoError(err)

	s.Require().Len(shows, 1)
	s.Equal(upcoming.ID, shows[0].ID)
}
