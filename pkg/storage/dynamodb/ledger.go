package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/staynest/reservation-engine/pkg/models"
)

const (
	ledgerGSI      = "gsi1pk-created_at-index"
	bookingIDIndex = "booking_id-index"
)

// ListSettlementEntries retrieves the most recent settlement entries.
func (s *Store) ListSettlementEntries(ctx context.Context, limit int32) ([]models.SettlementEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.LedgerTableName),
		IndexName:              aws.String(ledgerGSI),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "SETTLEMENT_ENTRIES"},
		},
		ScanIndexForward: aws.Bool(false), // Sort by created_at in descending order
		Limit:            &limit,
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for settlement entries: %w", err)
	}

	var entries []models.SettlementEntry
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settlement entries: %w", err)
	}

	return entries, nil
}

// ListSettlementEntriesByBookingID retrieves all ledger entries for a booking.
func (s *Store) ListSettlementEntriesByBookingID(ctx context.Context, bookingID string) ([]models.SettlementEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.LedgerTableName),
		IndexName:              aws.String(bookingIDIndex),
		KeyConditionExpression: aws.String("booking_id = :bookingID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":bookingID": &types.AttributeValueMemberS{Value: bookingID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement entries by booking ID: %w", err)
	}

	var entries []models.SettlementEntry
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settlement entries: %w", err)
	}

	return entries, nil
}
