package scheduler

import (
	"context"
	"time"
)

// SweepRequest asks the status sweeper to re-derive one booking's status.
type SweepRequest struct {
	BookingID string `json:"booking_id"`
}

// Scheduler defines the interface for a component that schedules a booking
// status sweep for later processing.
type Scheduler interface {
	// ScheduleStatusSweep enqueues a sweep for the booking after delay.
	ScheduleStatusSweep(ctx context.Context, bookingID string, delay time.Duration) error
}
