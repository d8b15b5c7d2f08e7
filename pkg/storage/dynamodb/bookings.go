package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/storage"
)

const (
	listingIDIndex = "listing_id-check_in-index"
	guestIDIndex   = "guest_id-index"
	statusIndex    = "status-check_in-index"
)

// GetBooking retrieves a booking from DynamoDB by its ID.
func (s *Store) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.BookingsTableName),
		Key:       key,
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, storage.ErrNotFound)
	}

	var booking models.Booking
	if err := attributevalue.UnmarshalMap(result.Item, &booking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking: %w", err)
	}

	return &booking, nil
}

// ListBookingsByListingID retrieves all bookings for a listing via the
// (listing_id, check_in) index. This is the authoritative read behind
// availability checks.
func (s *Store) ListBookingsByListingID(ctx context.Context, listingID string) ([]models.Booking, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.BookingsTableName),
		IndexName:              aws.String(listingIDIndex),
		KeyConditionExpression: aws.String("listing_id = :listingID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":listingID": &types.AttributeValueMemberS{Value: listingID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by listing ID: %w", err)
	}

	var bookings []models.Booking
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &bookings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookings: %w", err)
	}

	return bookings, nil
}

// ListBookingsByGuestID retrieves all bookings made by a guest.
func (s *Store) ListBookingsByGuestID(ctx context.Context, guestID string) ([]models.Booking, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.BookingsTableName),
		IndexName:              aws.String(guestIDIndex),
		KeyConditionExpression: aws.String("guest_id = :guestID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":guestID": &types.AttributeValueMemberS{Value: guestID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by guest ID: %w", err)
	}

	var bookings []models.Booking
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &bookings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookings: %w", err)
	}

	return bookings, nil
}
