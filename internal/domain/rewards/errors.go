package rewards

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyCompleted    = errors.New("quest already completed")
	ErrAlreadyClaimed      = errors.New("daily reward already claimed today")
	ErrAlreadySpun         = errors.New("wheel already spun today")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCatalog      = errors.New("invalid reward catalog")

	// Store contract errors. Components translate these into the errors above.
	ErrDuplicate       = errors.New("duplicate key")
	ErrConditionFailed = errors.New("condition not met")
)

// SpinCooldownError is returned when the wheel was already spun today.
type SpinCooldownError struct {
	NextAvailableAt time.Time
}

func (e *SpinCooldownError) Error() string {
	return fmt.Sprintf("%s, next spin at %s", ErrAlreadySpun, e.NextAvailableAt.Format(time.RFC3339))
}

func (e *SpinCooldownError) Unwrap() error {
	return ErrAlreadySpun
}

// IsBenign reports whether err is one of the idempotent "already done" outcomes.
func IsBenign(err error) bool {
	return errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrAlreadyClaimed) ||
		errors.Is(err, ErrAlreadySpun)
}
