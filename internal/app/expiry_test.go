package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/quickshow/quickshow-api/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ExpiryTestSuite struct {
	suite.Suite
	app         *Application
	bookingRepo *mocks.MockBookingRepo
}

func (s *ExpiryTestSuite) SetupTest() {
	s.bookingRepo = new(mocks.MockBookingRepo)

	s.app = newTestApplication(func(a *Application) {
		a.bookingRepo = s.bookingRepo
	})
}

func TestExpirySuite(t *testing.T) {
	suite.Run(t, new(ExpiryTestSuite))
}

func (s *ExpiryTestSuite) TestReleasesUnpaidBooking() {
	s.bookingRepo.On("DeleteIfUnpaid", mock.Anything, "booking-1").Return(true, nil)

	err := s.app.ReleaseExpiredBooking(context.Background(), "booking-1")

	s.NoError(err)
	s.bookingRepo.AssertExpectations(s.T())
}

func (s *ExpiryTestSuite) TestPaidBookingIsLeftAlone() {
	s.bookingRepo.On("DeleteIfUnpaid", mock.Anything, "booking-1").Return(false, nil)

	err := s.app.ReleaseExpiredBooking(context.Background(), "booking-1")

	s.NoError(err)
}

func (s *ExpiryTestSuite) TestStoreErrorPropagatesForRedelivery() {
	s.bookingRepo.On("DeleteIfUnpaid", mock.Anything, "booking-1").Return(false, fmt.Errorf("database error"))

	err := s.app.ReleaseExpiredBooking(context.Background(), "booking-1")

	s.Error(err)
}
