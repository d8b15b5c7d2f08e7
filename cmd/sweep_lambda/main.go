package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/staynest/reservation-engine/pkg/scheduler"
	"github.com/staynest/reservation-engine/pkg/storage"
	dydbstore "github.com/staynest/reservation-engine/pkg/storage/dynamodb"
)

var store storage.Storage

func init() {
	// Load environment variables from .env file (useful for local testing).
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize dependencies once.
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

// HandleRequest processes queued sweep requests and re-derives each booking's
// status from the clock.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	now := time.Now()
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var req scheduler.SweepRequest
		if err := json.Unmarshal([]byte(message.Body), &req); err != nil {
			log.Printf("ERROR: failed to unmarshal sweep request from SQS message %s: %v", message.MessageId, err)
			// Returning an error will cause SQS to retry the message, which is appropriate here.
			return err
		}

		updated, err := store.AdvanceBookingStatus(ctx, req.BookingID, now)
		if err != nil {
			log.Printf("ERROR: failed to sweep booking %s: %v", req.BookingID, err)
			return err
		}
		if updated {
			log.Printf("Advanced status of booking %s", req.BookingID)
		} else {
			log.Printf("Booking %s already up to date", req.BookingID)
		}
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
