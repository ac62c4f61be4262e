package app

import "context"

// ReleaseExpiredBooking is the consumer side of the deferred hold check. It
// frees the seats of a booking that is still unpaid after the hold window.
// A booking that was paid in time, or already released by an expired-session
// webhook, is left alone, which also makes redelivered messages harmless.
func (app *Application) ReleaseExpiredBooking(ctx context.Context, bookingId string) error {
	released, err := app.bookingRepo.DeleteIfUnpaid(ctx, bookingId)
	if err != nil {
		return err
	}

	if released {
		app.logger.Info("released seats for expired hold", "booking_id", bookingId)
	} else {
		app.logger.Info("hold expired with nothing to release", "booking_id", bookingId)
	}

	return nil
}
