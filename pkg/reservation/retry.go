package reservation

import (
	"errors"
	"time"

	"context"

	"github.com/staynest/reservation-engine/pkg/storage"
)

const (
	maxReadRetries = 2
	initialBackoff = 50 * time.Millisecond
)

// retryRead runs a read-only storage call, retrying transient failures with
// bounded exponential backoff. Only reads go through here: a write whose
// outcome is unknown must never be re-submitted, since replaying it could
// double-book or double-refund. A cancelled context stops immediately and
// leaves state untouched.
func (c *Coordinator) retryRead(ctx context.Context, fn func() error) error {
	backoff := initialBackoff
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !transient(err) || attempt == maxReadRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// domainErrs are definitive outcomes that retrying cannot change.
var domainErrs = []error{
	storage.ErrInvalidRange,
	storage.ErrInvalidArgument,
	storage.ErrDoubleBooking,
	storage.ErrInsufficientFunds,
	storage.ErrNotFound,
	storage.ErrAlreadyExists,
	storage.ErrForbidden,
	storage.ErrInvalidTransition,
	storage.ErrAlreadySettled,
	storage.ErrListingNotBookable,
	storage.ErrVersionConflict,
}

// transient reports whether an error is worth retrying: anything that is not
// a definitive domain outcome or a context cancellation.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	for _, domainErr := range domainErrs {
		if errors.Is(err, domainErr) {
			return false
		}
	}
	return true
}
