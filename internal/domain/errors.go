package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrRecordNotFound    = errors.New("record not found")
	ErrEditConflict      = errors.New("edit conflict")
	ErrShowNotActive     = errors.New("show is not open for booking")
)

// SeatConflictError reports which of the requested seats are already taken.
// The booking attempt fails as a whole; no seats are reserved.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat(s) already occupied: %s", strings.Join(e.Seats, ", "))
}
