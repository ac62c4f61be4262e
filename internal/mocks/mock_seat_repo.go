package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockSeatRepo struct {
	mock.Mock
}

func (m *MockSeatRepo) GetOccupiedSeats(ctx context.Context, showId int) ([]string, error) {
	args := m.Called(ctx, showId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
