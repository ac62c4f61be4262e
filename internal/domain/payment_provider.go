package domain

import (
	"time"

	"github.com/stripe/stripe-go/v82"
)

type PaymentProvider interface {
	// CreateCheckoutSession opens a payment session for the booking amount,
	// tagged with the booking id and expiring at the given time.
	CreateCheckoutSession(booking *Booking, show *Show, movie *Movie, user *User, expiresAt time.Time) (*stripe.CheckoutSession, error)
}
