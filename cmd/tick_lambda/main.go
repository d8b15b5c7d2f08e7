package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/staynest/reservation-engine/pkg/storage"
	dydbstore "github.com/staynest/reservation-engine/pkg/storage/dynamodb"
)

var store storage.Storage

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)

	bookingsTable := os.Getenv("DYNAMODB_BOOKINGS_TABLE_NAME")
	listingsTable := os.Getenv("DYNAMODB_LISTINGS_TABLE_NAME")
	walletsTable := os.Getenv("DYNAMODB_WALLETS_TABLE_NAME")
	ledgerTable := os.Getenv("DYNAMODB_LEDGER_TABLE_NAME")

	if bookingsTable == "" || listingsTable == "" || walletsTable == "" || ledgerTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	store = dydbstore.New(dbClient, bookingsTable, listingsTable, walletsTable, ledgerTable)
}

// HandleRequest is triggered by an EventBridge Schedule. It sweeps every live
// booking and re-derives its status from today's date, catching any boundary
// the queued per-booking sweeps missed.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting periodic status sweep...")

	updated, err := store.AdvanceBookingStatuses(ctx, time.Now())
	if err != nil {
		log.Printf("ERROR: status sweep failed: %v", err)
		return err
	}

	if updated == 0 {
		log.Println("No bookings needed a status change.")
		return nil
	}

	log.Printf("Advanced the status of %d bookings.", updated)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
