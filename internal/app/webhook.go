package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quickshow/quickshow-api/api"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	stripeEventDedupPrefix = "stripe:event:"
	stripeEventDedupTTL    = 24 * time.Hour
)

// StripeWebhookHandler processes payment events. Signature failures get a 400,
// processing failures a 500 so Stripe retries, and events we do not care
// about a 200 acknowledgement. Handling is idempotent end to end: a replayed
// completed or expired event finds the booking already transitioned and does
// nothing.
func (app *Application) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, 65536)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		app.config.stripe.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logger.Warn("webhook signature verification failed", "error", err)
		app.badRequestResponse(w, r, err)
		return
	}

	if app.eventAlreadyProcessed(r, event.ID) {
		logger.Info("skipping already processed webhook event", "event_id", event.ID)

		err = app.writeJSON(w, http.StatusOK, api.WebhookResponse{Received: true}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	switch event.Type {
	case "checkout.session.completed":
		err = app.handleCheckoutCompleted(r, event.Data.Raw)
	case "checkout.session.expired":
		err = app.handleCheckoutExpired(r, event.Data.Raw)
	default:
		logger.Info("ignoring webhook event", "type", event.Type)
	}

	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.WebhookResponse{Received: true}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// eventAlreadyProcessed marks the event id in Redis and reports whether it was
// seen before. A Redis outage only disables this first line of dedup; the
// booking state transitions are idempotent on their own.
func (app *Application) eventAlreadyProcessed(r *http.Request, eventId string) bool {
	set, err := app.redis.SetNX(r.Context(), stripeEventDedupPrefix+eventId, 1, stripeEventDedupTTL).Result()
	if err != nil {
		app.contextGetLogger(r).Warn("webhook dedup check failed", "error", err)
		return false
	}

	return !set
}

func (app *Application) handleCheckoutCompleted(r *http.Request, raw json.RawMessage) error {
	logger := app.contextGetLogger(r)

	var session stripe.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return err
	}

	bookingId := session.Metadata["booking_id"]
	if bookingId == "" {
		logger.Warn("completed checkout session without booking metadata", "session_id", session.ID)
		return nil
	}

	marked, err := app.bookingRepo.MarkPaid(r.Context(), bookingId)
	if err != nil {
		return err
	}

	if !marked {
		logger.Info("booking already paid or gone", "booking_id", bookingId)
		return nil
	}

	logger.Info("booking paid", "booking_id", bookingId)

	app.sendBookingConfirmation(r, bookingId)

	return nil
}

// handleCheckoutExpired releases the seats as soon as Stripe reports the
// session gone, instead of waiting out the rest of the hold window.
func (app *Application) handleCheckoutExpired(r *http.Request, raw json.RawMessage) error {
	logger := app.contextGetLogger(r)

	var session stripe.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return err
	}

	bookingId := session.Metadata["booking_id"]
	if bookingId == "" {
		logger.Warn("expired checkout session without booking metadata", "session_id", session.ID)
		return nil
	}

	released, err := app.bookingRepo.DeleteIfUnpaid(r.Context(), bookingId)
	if err != nil {
		return err
	}

	if released {
		logger.Info("released seats for expired checkout", "booking_id", bookingId)
	}

	return nil
}

func (app *Application) sendBookingConfirmation(r *http.Request, bookingId string) {
	logger := app.contextGetLogger(r)

	// The email outlives the webhook request, so detach from its cancellation
	// while keeping the trace context.
	ctx := context.WithoutCancel(r.Context())

	app.background(func() {
		detail, err := app.bookingRepo.GetDetailById(ctx, bookingId)
		if err != nil {
			logger.Error("failed to load booking for confirmation email", "booking_id", bookingId, "error", err)
			return
		}

		data := map[string]any{
			"userName":   detail.UserName,
			"movieTitle": detail.MovieTitle,
			"showTime":   detail.ShowTime.Format("Mon, Jan 2, 2006 at 15:04"),
			"seats":      strings.Join(detail.Seats, ", "),
			"amount":     detail.Amount.StringFixed(2),
			"bookingId":  detail.ID,
		}

		err = app.mailer.Send(detail.UserEmail, "booking_confirmation.tmpl", data)
		if err != nil {
			logger.Error("failed to send confirmation email", "booking_id", bookingId, "error", err)
		} else {
			logger.Info("confirmation email sent", "booking_id", bookingId)
		}
	})
}
