package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/storage"
)

// GetListing retrieves a listing from DynamoDB by its ID.
func (s *Store) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": listingID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.ListingsTableName),
		Key:       key,
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("listing %s: %w", listingID, storage.ErrNotFound)
	}

	var listing models.Listing
	if err := attributevalue.UnmarshalMap(result.Item, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
	}

	return &listing, nil
}

// ListListings retrieves all listings from DynamoDB, the candidate set for
// nearby search.
func (s *Store) ListListings(ctx context.Context) ([]models.Listing, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.ListingsTableName),
	}

	result, err := s.Client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan listings table: %w", err)
	}

	var listings []models.Listing
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &listings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listings: %w", err)
	}

	return listings, nil
}
