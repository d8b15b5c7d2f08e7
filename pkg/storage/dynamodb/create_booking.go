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
	"github.com/google/uuid"

	"github.com/staynest/reservation-engine/pkg/availability"
	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/settlement"
	"github.com/staynest/reservation-engine/pkg/storage"
)

// Positions of the operations inside the create transaction, used to map
// CancellationReasons back to domain errors.
const (
	createOpListing = iota
	createOpBooking
	createOpGuestWallet
	createOpHostWallet
	createOpDebitEntry
	createOpCreditEntry
)

// CreateBooking atomically inserts the booking, debits the guest, credits the
// host escrow, appends the funding ledger pair and bumps the listing's
// version and aggregate counters. If any condition fails nothing is written.
func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	// 1. Read current state for the optimistic version checks.
	listing, err := s.GetListing(ctx, booking.ListingId)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	// 2. Authoritative overlap check, taken after the version read. A booking
	// this snapshot misses committed later, so it bumped the listing version
	// and the condition below rejects us; a booking committed earlier is in
	// the snapshot. Either way two overlapping writers cannot both commit.
	existing, err := s.ListBookingsByListingID(ctx, booking.ListingId)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing bookings: %w", err)
	}
	free, err := availability.IsAvailable(booking.ListingId, booking.Range(), existing)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, storage.ErrDoubleBooking
	}

	guestWallet, err := s.GetWallet(ctx, booking.GuestId)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest's wallet: %w", err)
	}
	hostWallet, err := s.GetWallet(ctx, listing.HostId)
	if err != nil {
		return nil, fmt.Errorf("failed to get host's wallet: %w", err)
	}

	// 3. Complete the booking with server-side details.
	now := time.Now()
	booking.Id = uuid.New().String()
	booking.HostId = listing.HostId
	booking.Status = models.PENDING
	booking.CreatedAt = now
	booking.UpdatedAt = now

	slog.Log(ctx, slog.LevelDebug, "creating booking", "booking", booking)

	bookingAV, err := attributevalue.MarshalMap(booking)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking: %w", err)
	}

	entries := settlement.FundingEntries(booking, now)
	debitAV, err := attributevalue.MarshalMap(entries[0])
	if err != nil {
		return nil, fmt.Errorf("failed to marshal debit entry: %w", err)
	}
	creditAV, err := attributevalue.MarshalMap(entries[1])
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credit entry: %w", err)
	}

	amountAV, err := attributevalue.Marshal(booking.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal total cost: %w", err)
	}

	// 4. Construct the TransactWriteItems input. The order of the items
	// must match the createOp* constants above.
	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// The listing version check is the per-listing exclusivity
				// guarantee: every booking write bumps it, so two concurrent
				// writers for the same listing cannot both commit against
				// the same availability snapshot.
				Update: &types.Update{
					TableName: aws.String(s.ListingsTableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: listing.Id},
					},
					UpdateExpression:    aws.String("SET version = version + :inc, booking_number = booking_number + :inc, sale_amount = sale_amount + :amount"),
					ConditionExpression: aws.String("version = :version"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount":  amountAV,
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", listing.Version)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.BookingsTableName),
					Item:                bookingAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				Update: &types.Update{
					TableName: aws.String(s.WalletsTableName),
					Key: map[string]types.AttributeValue{
						"user_id": &types.AttributeValueMemberS{Value: booking.GuestId},
					},
					UpdateExpression:    aws.String("SET balance = balance - :amount, version = version + :inc"),
					ConditionExpression: aws.String("balance >= :amount AND version = :version"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount":  amountAV,
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", guestWallet.Version)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
			{
				Update: &types.Update{
					TableName: aws.String(s.WalletsTableName),
					Key: map[string]types.AttributeValue{
						"user_id": &types.AttributeValueMemberS{Value: listing.HostId},
					},
					UpdateExpression:    aws.String("SET balance = balance + :amount, version = version + :inc"),
					ConditionExpression: aws.String("version = :version"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount":  amountAV,
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", hostWallet.Version)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.LedgerTableName),
					Item:                debitAV,
					ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.LedgerTableName),
					Item:                creditAV,
					ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
				},
			},
		},
	}

	// 5. Execute the transaction and map conditional failures to domain errors.
	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return nil, s.mapCreateCancellation(tce, guestWallet, booking.TotalCost)
		}
		return nil, fmt.Errorf("failed to execute booking transaction: %w", err)
	}

	return booking, nil
}

// mapCreateCancellation inspects the per-operation cancellation reasons of a
// failed create transaction and returns the matching domain error.
func (s *Store) mapCreateCancellation(tce *types.TransactionCanceledException, guestWallet *models.Wallet, amount int64) error {
	for i, reason := range tce.CancellationReasons {
		if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
			continue
		}
		switch i {
		case createOpListing, createOpHostWallet:
			return storage.ErrVersionConflict
		case createOpGuestWallet:
			// The guest wallet condition covers both the balance and the
			// version. Distinguish by the balance we read: if it could have
			// covered the cost, we lost a version race, not funding.
			if guestWallet.Balance >= amount {
				return storage.ErrVersionConflict
			}
			return storage.ErrInsufficientFunds
		case createOpBooking, createOpDebitEntry, createOpCreditEntry:
			return fmt.Errorf("booking id collision: %w", storage.ErrVersionConflict)
		}
	}
	return fmt.Errorf("booking transaction cancelled: %w", tce)
}
