package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/quickshow/quickshow-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// MinHoldWindow is the shortest usable seat hold. Stripe rejects checkout
// sessions set to expire less than 30 minutes after creation, and the session
// expiry tracks the hold window, so shorter holds cannot be offered.
const MinHoldWindow = 30 * time.Minute

type StripePaymentProvider struct {
	cancelUrl  string
	successUrl string
}

func NewStripePaymentProvider(cancelUrl, successUrl string) *StripePaymentProvider {
	return &StripePaymentProvider{
		cancelUrl:  cancelUrl,
		successUrl: successUrl,
	}
}

func (s *StripePaymentProvider) CreateCheckoutSession(
	booking *domain.Booking,
	show *domain.Show,
	movie *domain.Movie,
	user *domain.User,
	expiresAt time.Time) (*stripe.CheckoutSession, error) {

	priceCents := show.Price.Mul(decimal.NewFromInt(100)).IntPart()

	lineItem := &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(priceCents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(fmt.Sprintf("🎬 %s", movie.Title)),
				Description: stripe.String(fmt.Sprintf(
					"Showtime: %s • Seats: %s",
					show.StartsAt.Format("Jan 2, 2006 15:04"),
					strings.Join(booking.Seats, ", "),
				)),
			},
		},
		Quantity: stripe.Int64(int64(len(booking.Seats))),
	}

	params := &stripe.CheckoutSessionParams{
		LineItems:  []*stripe.CheckoutSessionLineItemParams{lineItem},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successUrl),
		CancelURL:  stripe.String(s.cancelUrl),
		// The session expiry matches the seat hold window, so an abandoned
		// checkout and the deferred release agree on the same deadline. Startup
		// config validation guarantees the window clears Stripe's 30-minute
		// floor on expires_at.
		ExpiresAt: stripe.Int64(expiresAt.Unix()),
		Metadata: map[string]string{
			"booking_id": booking.ID,
		},
		CustomerEmail:     &user.Email,
		ClientReferenceID: stripe.String(booking.ID),
	}

	return session.New(params)
}
