package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/staynest/reservation-engine/pkg/handlers/ledger"
	"github.com/staynest/reservation-engine/pkg/handlers/listings"
	"github.com/staynest/reservation-engine/pkg/handlers/reservations"
	"github.com/staynest/reservation-engine/pkg/handlers/wallets"
	"github.com/staynest/reservation-engine/pkg/middleware"
	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/reservation"
	"github.com/staynest/reservation-engine/pkg/scheduler"
	"github.com/staynest/reservation-engine/pkg/storage"
	dydbstore "github.com/staynest/reservation-engine/pkg/storage/dynamodb"
	memorystore "github.com/staynest/reservation-engine/pkg/storage/memory"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	store, sched := buildStore()
	coordinator := reservation.NewCoordinator(store, sched)

	reservationsHandler := reservations.NewReservationsHandler(coordinator, store)
	listingsHandler := listings.NewListingsHandler(coordinator, store)
	walletsHandler := wallets.NewWalletsHandler(store)
	ledgerHandler := ledger.NewLedgerHandler(store)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.NewStructuredLogger(logger))
	router.Use(chimiddleware.Recoverer)

	router.Post("/reservations", reservationsHandler.CreateReservation)
	router.Get("/reservations/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		reservationsHandler.GetReservationById(w, r, chi.URLParam(r, "bookingId"))
	})
	router.Post("/reservations/{bookingId}/cancel", func(w http.ResponseWriter, r *http.Request) {
		reservationsHandler.CancelReservationById(w, r, chi.URLParam(r, "bookingId"))
	})
	router.Get("/guests/{guestId}/reservations", func(w http.ResponseWriter, r *http.Request) {
		reservationsHandler.ListReservationsByGuestId(w, r, chi.URLParam(r, "guestId"))
	})
	router.Post("/tick", reservationsHandler.Tick)

	router.Get("/listings/{listingId}", func(w http.ResponseWriter, r *http.Request) {
		listingsHandler.GetListingById(w, r, chi.URLParam(r, "listingId"))
	})
	router.Get("/listings/{listingId}/availability", func(w http.ResponseWriter, r *http.Request) {
		listingsHandler.GetAvailability(w, r, chi.URLParam(r, "listingId"))
	})
	router.Get("/listings/{listingId}/booked-ranges", func(w http.ResponseWriter, r *http.Request) {
		listingsHandler.GetBookedRanges(w, r, chi.URLParam(r, "listingId"))
	})
	router.Get("/search/nearby", listingsHandler.SearchNearby)

	router.Post("/wallets", walletsHandler.CreateWallet)
	router.Get("/wallets", walletsHandler.ListWallets)
	router.Get("/wallets/{userId}", func(w http.ResponseWriter, r *http.Request) {
		walletsHandler.GetWalletByUserId(w, r, chi.URLParam(r, "userId"))
	})
	router.Post("/wallets/{userId}/funds", func(w http.ResponseWriter, r *http.Request) {
		walletsHandler.AddFunds(w, r, chi.URLParam(r, "userId"))
	})

	router.Get("/ledger", ledgerHandler.ListSettlementEntries)
	router.Get("/bookings/{bookingId}/ledger", func(w http.ResponseWriter, r *http.Request) {
		ledgerHandler.ListSettlementEntriesByBookingId(w, r, chi.URLParam(r, "bookingId"))
	})

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	log.Printf("Starting server on port %s", port)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildStore wires the storage backend from the environment. The default is
// DynamoDB; STORAGE_BACKEND=memory runs fully in-process with seeded demo
// data for local development.
func buildStore() (storage.ApiStore, scheduler.Scheduler) {
	if os.Getenv("STORAGE_BACKEND") == "memory" {
		store := memorystore.New()
		seedDemoData(store)
		return store, scheduler.NoOpScheduler{}
	}

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

	var sched scheduler.Scheduler = scheduler.NoOpScheduler{}
	if sqsQueueURL := os.Getenv("SQS_QUEUE_URL"); sqsQueueURL != "" {
		sched = scheduler.NewSQSScheduler(sqs.NewFromConfig(cfg), sqsQueueURL)
	} else {
		log.Println("SQS_QUEUE_URL not set, status sweeps rely on the periodic tick only")
	}

	return dydbstore.New(dbClient, bookingsTable, listingsTable, walletsTable, ledgerTable), sched
}

// seedDemoData gives the in-memory backend something to book against.
func seedDemoData(store *memorystore.Store) {
	ctx := context.Background()

	store.AddListing(models.Listing{
		Id:           "listing-nyc",
		HostId:       "host-ada",
		CostPerNight: 10000,
		Location:     models.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
		Status:       models.PUBLISHED,
	})
	store.AddListing(models.Listing{
		Id:           "listing-la",
		HostId:       "host-grace",
		CostPerNight: 15000,
		Location:     models.Coordinate{Latitude: 34.0522, Longitude: -118.2437},
		Status:       models.PUBLISHED,
	})

	for _, wallet := range []*models.Wallet{
		{UserId: "guest-lin", Name: "Lin", Balance: 100000, Version: 1},
		{UserId: "host-ada", Name: "Ada", Balance: 0, Version: 1},
		{UserId: "host-grace", Name: "Grace", Balance: 0, Version: 1},
	} {
		if _, err := store.CreateWallet(ctx, wallet); err != nil {
			log.Fatalf("failed to seed wallet %s: %v", wallet.UserId, err)
		}
	}
}
