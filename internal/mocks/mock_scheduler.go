package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockHoldScheduler struct {
	mock.Mock
}

func (m *MockHoldScheduler) ScheduleHoldExpiry(ctx context.Context, bookingId string, delay time.Duration) error {
	args := m.Called(ctx, bookingId, delay)
	return args.Error(0)
}
