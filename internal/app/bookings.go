package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quickshow/quickshow-api/api"
	"github.com/quickshow/quickshow-api/internal/domain"
)

// CreateBookingHandler reserves seats for a show and opens a payment session
// for them. The seats are held from the moment the booking row is written;
// if anything after that fails the booking is deleted again so the seats do
// not leak. On success a deferred release is armed, which frees the seats
// when the booking is still unpaid once the hold window lapses.
func (app *Application) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateBookingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	show, err := app.showRepo.GetById(r.Context(), input.ShowId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if !show.Active || show.StartsAt.Before(time.Now()) {
		app.badRequestResponse(w, r, domain.ErrShowNotActive)
		return
	}

	userId := app.contextGetUserId(r)

	user, err := app.userRepo.GetById(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), show.MovieID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	booking := domain.NewBooking(userId, show, input.Seats)

	err = app.bookingRepo.CreateWithSeats(r.Context(), &booking)
	if err != nil {
		var seatConflict *domain.SeatConflictError

		switch {
		case errors.As(err, &seatConflict):
			logger.Info("booking rejected, seats taken", "show_id", show.ID, "seats", seatConflict.Seats)
			app.seatConflictResponse(w, r, seatConflict)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	expiresAt := time.Now().Add(app.config.booking.holdWindow)

	checkoutSession, err := app.paymentProvider.CreateCheckoutSession(&booking, show, movie, user, expiresAt)
	if err != nil {
		app.abandonBooking(w, r, booking.ID, fmt.Errorf("creating checkout session: %w", err))
		return
	}

	err = app.bookingRepo.SetPaymentLink(r.Context(), booking.ID, checkoutSession.ID, checkoutSession.URL)
	if err != nil {
		app.abandonBooking(w, r, booking.ID, fmt.Errorf("storing payment link: %w", err))
		return
	}

	err = app.holdScheduler.ScheduleHoldExpiry(r.Context(), booking.ID, app.config.booking.holdWindow)
	if err != nil {
		app.abandonBooking(w, r, booking.ID, fmt.Errorf("arming hold expiry: %w", err))
		return
	}

	logger.Info("booking created",
		"booking_id", booking.ID,
		"show_id", show.ID,
		"seats", booking.Seats,
		"expires_at", expiresAt,
	)

	booking.PaymentLink = checkoutSession.URL

	resp := api.CreateBookingResponse{
		Booking:     toApiBooking(&booking),
		RedirectUrl: checkoutSession.URL,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// abandonBooking is the compensating cleanup for a booking whose payment
// session or deferred release could not be set up. Without it the seats
// would stay held with no path to ever being released. The unpaid guard
// means a booking that got paid in the meantime is never torn down.
func (app *Application) abandonBooking(w http.ResponseWriter, r *http.Request, bookingId string, cause error) {
	_, err := app.bookingRepo.DeleteIfUnpaid(r.Context(), bookingId)
	if err != nil {
		app.contextGetLogger(r).Error("failed to clean up abandoned booking",
			"booking_id", bookingId,
			"error", err,
		)
	}

	app.serverErrorResponse(w, r, cause)
}

func (app *Application) GetUserBookingsHandler(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)

	summaries, err := app.bookingRepo.GetSummariesByUserId(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserBookingsResponse{
		Bookings: toApiBookingSummaries(summaries),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiBooking(booking *domain.Booking) api.Booking {
	if booking == nil {
		return api.Booking{}
	}

	return api.Booking{
		Id:        booking.ID,
		ShowId:    booking.ShowID,
		Seats:     booking.Seats,
		Amount:    booking.Amount,
		Paid:      booking.Paid,
		CreatedAt: booking.CreatedAt,
	}
}

func toApiBookingSummaries(summaries []domain.BookingSummary) []api.BookingSummary {
	apiSummaries := make([]api.BookingSummary, len(summaries))

	for i, v := range summaries {
		apiSummaries[i] = api.BookingSummary{
			Id:         v.ID,
			MovieTitle: v.MovieTitle,
			ShowTime:   v.ShowTime,
			Seats:      v.Seats,
			Amount:     v.Amount,
			Paid:       v.Paid,
			CreatedAt:  v.CreatedAt,
		}
	}

	return apiSummaries
}
