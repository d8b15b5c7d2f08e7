package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/staynest/reservation-engine/pkg/storage"
)

// DynamoDBAPI captures the subset of the DynamoDB client this store uses.
// Having an interface here lets tests inject a mock client.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
//
// All invariant-carrying writes (booking creation with funding, cancellation
// with refund) go through single TransactWriteItems calls so a losing
// concurrent writer fails atomically with nothing written. The listing item
// carries a version attribute bumped by every booking write for that listing;
// that condition is the per-listing exclusivity guarantee behind the
// no-double-booking rule.
type Store struct {
	Client            DynamoDBAPI
	BookingsTableName string
	ListingsTableName string
	WalletsTableName  string
	LedgerTableName   string
}

// New creates a new Store.
func New(client DynamoDBAPI, bookingsTable, listingsTable, walletsTable, ledgerTable string) *Store {
	return &Store{
		Client:            client,
		BookingsTableName: bookingsTable,
		ListingsTableName: listingsTable,
		WalletsTableName:  walletsTable,
		LedgerTableName:   ledgerTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
