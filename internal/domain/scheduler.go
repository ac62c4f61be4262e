package domain

import (
	"context"
	"time"
)

// HoldScheduler arms a deferred check for a booking: after the delay elapses
// the booking is re-read and released if still unpaid. Delivery is
// at-least-once; the release handler must be idempotent.
type HoldScheduler interface {
	ScheduleHoldExpiry(ctx context.Context, bookingId string, delay time.Duration) error
}
