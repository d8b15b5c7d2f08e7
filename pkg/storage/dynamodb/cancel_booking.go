package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/settlement"
	"github.com/staynest/reservation-engine/pkg/storage"
)

// Positions of the operations inside the cancel transaction.
const (
	cancelOpBooking = iota
	cancelOpRefundEntry
	cancelOpClawbackEntry
	cancelOpGuestWallet
	cancelOpHostWallet
	cancelOpListing
)

// CancelBooking atomically transitions the booking to CANCELLED and commits
// the compensating refund: guest credit, host clawback, the refund ledger
// pair and the listing sale counter. A booking is never observable as
// CANCELLED without its refund entries, and vice versa.
func (s *Store) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking for cancellation: %w", err)
	}

	if !booking.Cancellable() {
		if booking.Status == models.CANCELLED {
			return nil, storage.ErrAlreadySettled
		}
		return nil, storage.ErrInvalidTransition
	}

	listing, err := s.GetListing(ctx, booking.ListingId)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing for cancellation: %w", err)
	}
	guestWallet, err := s.GetWallet(ctx, booking.GuestId)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest's wallet for cancellation: %w", err)
	}
	hostWallet, err := s.GetWallet(ctx, booking.HostId)
	if err != nil {
		return nil, fmt.Errorf("failed to get host's wallet for cancellation: %w", err)
	}

	now := time.Now()
	entries := settlement.RefundEntries(booking, now)
	refundAV, err := attributevalue.MarshalMap(entries[0])
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refund entry: %w", err)
	}
	clawbackAV, err := attributevalue.MarshalMap(entries[1])
	if err != nil {
		return nil, fmt.Errorf("failed to marshal clawback entry: %w", err)
	}
	amountAV, err := attributevalue.Marshal(booking.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal amount for cancellation: %w", err)
	}
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp for cancellation: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Condition on the cancellable statuses rather than the one
				// we read, so a concurrent PENDING -> UPCOMING sweep does
				// not fail an otherwise valid cancellation.
				Update: &types.Update{
					TableName:           aws.String(s.BookingsTableName),
					Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: booking.Id}},
					UpdateExpression:    aws.String("SET #status = :cancelled, updated_at = :now"),
					ConditionExpression: aws.String("#status IN (:pending, :upcoming)"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":cancelled": &types.AttributeValueMemberS{Value: string(models.CANCELLED)},
						":pending":   &types.AttributeValueMemberS{Value: string(models.PENDING)},
						":upcoming":  &types.AttributeValueMemberS{Value: string(models.UPCOMING)},
						":now":       nowAV,
					},
				},
			},
			{
				// The deterministic entry ID makes this the idempotency
				// guard: a second cancellation trips attribute_not_exists.
				Put: &types.Put{
					TableName:           aws.String(s.LedgerTableName),
					Item:                refundAV,
					ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.LedgerTableName),
					Item:                clawbackAV,
					ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
				},
			},
			{
				Update: &types.Update{
					TableName:           aws.String(s.WalletsTableName),
					Key:                 map[string]types.AttributeValue{"user_id": &types.AttributeValueMemberS{Value: booking.GuestId}},
					UpdateExpression:    aws.String("SET balance = balance + :amount, version = version + :inc"),
					ConditionExpression: aws.String("version = :version"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount":  amountAV,
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", guestWallet.Version)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
			{
				// Host escrow may legitimately go negative here depending on
				// payout cadence, so no balance condition.
				Update: &types.Update{
					TableName:           aws.String(s.WalletsTableName),
					Key:                 map[string]types.AttributeValue{"user_id": &types.AttributeValueMemberS{Value: booking.HostId}},
					UpdateExpression:    aws.String("SET balance = balance - :amount, version = version + :inc"),
					ConditionExpression: aws.String("version = :version"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount":  amountAV,
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", hostWallet.Version)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
			{
				Update: &types.Update{
					TableName:           aws.String(s.ListingsTableName),
					Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: listing.Id}},
					UpdateExpression:    aws.String("SET version = version + :inc, sale_amount = sale_amount - :amount"),
					ConditionExpression: aws.String("version = :version"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount":  amountAV,
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", listing.Version)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return nil, s.mapCancelCancellation(ctx, tce, booking.Id)
		}
		return nil, fmt.Errorf("failed to execute cancellation transaction: %w", err)
	}

	booking.Status = models.CANCELLED
	booking.UpdatedAt = now
	return booking, nil
}

// mapCancelCancellation maps a failed cancel transaction to a domain error.
func (s *Store) mapCancelCancellation(ctx context.Context, tce *types.TransactionCanceledException, bookingID string) error {
	for i, reason := range tce.CancellationReasons {
		if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
			continue
		}
		switch i {
		case cancelOpBooking:
			// The status condition failed. Re-read to tell a concurrent
			// cancellation (benign, already settled) from a stay that has
			// started in the meantime.
			current, err := s.GetBooking(ctx, bookingID)
			if err == nil && current.Status == models.CANCELLED {
				return storage.ErrAlreadySettled
			}
			return storage.ErrInvalidTransition
		case cancelOpRefundEntry, cancelOpClawbackEntry:
			return storage.ErrAlreadySettled
		default:
			return storage.ErrVersionConflict
		}
	}
	return fmt.Errorf("cancellation transaction cancelled: %w", tce)
}
