package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/staynest/reservation-engine/pkg/models"
)

// sweepStatuses are the statuses the clock can move forward. CANCELLED and
// COMPLETED are terminal and never touched by a sweep.
var sweepStatuses = []models.BookingStatus{models.PENDING, models.UPCOMING, models.CURRENT}

// AdvanceBookingStatuses recomputes the time-derived status of every
// non-terminal booking. It is a pure function of now and safe to re-run;
// bookings that raced with a cancellation are skipped.
func (s *Store) AdvanceBookingStatuses(ctx context.Context, now time.Time) (int, error) {
	updated := 0
	for _, status := range sweepStatuses {
		bookings, err := s.listBookingsByStatus(ctx, status)
		if err != nil {
			return updated, err
		}
		for i := range bookings {
			booking := &bookings[i]
			desired := booking.DerivedStatus(now)
			if desired == booking.Status {
				continue
			}
			ok, err := s.transitionBookingStatus(ctx, booking.Id, booking.Status, desired, now)
			if err != nil {
				return updated, err
			}
			if ok {
				updated++
			}
		}
	}
	return updated, nil
}

// AdvanceBookingStatus advances a single booking if the clock has moved past
// one of its boundaries. Returns false when no transition was needed or the
// booking raced with a cancellation.
func (s *Store) AdvanceBookingStatus(ctx context.Context, bookingID string, now time.Time) (bool, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return false, fmt.Errorf("failed to get booking for status advance: %w", err)
	}
	if booking.Status == models.CANCELLED || booking.Status == models.COMPLETED {
		return false, nil
	}
	desired := booking.DerivedStatus(now)
	if desired == booking.Status {
		return false, nil
	}
	return s.transitionBookingStatus(ctx, booking.Id, booking.Status, desired, now)
}

func (s *Store) listBookingsByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.BookingsTableName),
		IndexName:              aws.String(statusIndex),
		KeyConditionExpression: aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by status: %w", err)
	}

	var bookings []models.Booking
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &bookings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookings: %w", err)
	}

	return bookings, nil
}

// transitionBookingStatus performs a conditional status update. The condition
// on the previous status is what keeps a sweep from racing a cancellation:
// if the booking moved underneath us the check fails and we report no-op.
func (s *Store) transitionBookingStatus(ctx context.Context, bookingID string, from, to models.BookingStatus, now time.Time) (bool, error) {
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return false, fmt.Errorf("failed to marshal timestamp for status update: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.BookingsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: bookingID},
		},
		UpdateExpression:    aws.String("SET #status = :to, updated_at = :now"),
		ConditionExpression: aws.String("#status = :from"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":to":   &types.AttributeValueMemberS{Value: string(to)},
			":from": &types.AttributeValueMemberS{Value: string(from)},
			":now":  nowAV,
		},
	}

	_, err = s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			slog.Log(ctx, slog.LevelDebug, "booking status moved during sweep", "booking_id", bookingID)
			return false, nil
		}
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}

	return true, nil
}
