package mocks

import (
	"time"

	"github.com/quickshow/quickshow-api/internal/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"
)

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	booking *domain.Booking,
	show *domain.Show,
	movie *domain.Movie,
	user *domain.User,
	expiresAt time.Time) (*stripe.CheckoutSession, error) {

	args := m.Called(booking, show, movie, user, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}
