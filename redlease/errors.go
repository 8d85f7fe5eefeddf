package redlease

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotObtained is returned when the lease could not be acquired
	// within the configured attempt budget. It is an ordinary outcome of
	// contention, not a transport failure.
	ErrNotObtained = errors.New("lease not obtained")

	// ErrExtendBudgetExceeded is returned by RunAutoExtended when the
	// lease needed one more extension than the budget allows.
	ErrExtendBudgetExceeded = errors.New("lease extension budget exhausted")

	// ErrExtendFailed is returned by RunAutoExtended when the lease could
	// not be extended, typically because it expired or was taken over.
	ErrExtendFailed = errors.New("lease extension failed")

	// ErrTimeout matches TimeoutError values via errors.Is.
	ErrTimeout = errors.New("operation timed out")
)

// TimeoutError reports that a protected operation outran its lease budget.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation timed out after %s", e.Timeout)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
