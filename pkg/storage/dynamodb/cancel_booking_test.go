package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/storage"
	"github.com/staynest/reservation-engine/pkg/storage/dynamodb/mocks"
)

func cancellableBooking(status models.BookingStatus) *models.Booking {
	return &models.Booking{
		Id:        "booking-1",
		ListingId: "listing-1",
		GuestId:   "guest-1",
		HostId:    "host-1",
		CheckIn:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
		TotalCost: 30000,
		Status:    status,
	}
}

// expectCancelReads queues the four GetItem reads CancelBooking performs:
// booking, listing, guest wallet, host wallet.
func expectCancelReads(mockClient *mocks.DynamoDBAPI, booking *models.Booking) {
	listing := &models.Listing{Id: "listing-1", HostId: "host-1", Version: 4, SaleAmount: 30000}
	guestWallet := &models.Wallet{UserId: "guest-1", Balance: 20000, Version: 3}
	hostWallet := &models.Wallet{UserId: "host-1", Balance: 30000, Version: 2}

	bookingAV, _ := attributevalue.MarshalMap(booking)
	listingAV, _ := attributevalue.MarshalMap(listing)
	guestAV, _ := attributevalue.MarshalMap(guestWallet)
	hostAV, _ := attributevalue.MarshalMap(hostWallet)

	mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: bookingAV}, nil)
	mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: listingAV}, nil)
	mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: guestAV}, nil)
	mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: hostAV}, nil)
}

func TestCancelBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)
		booking := cancellableBooking(models.UPCOMING)

		expectCancelReads(mockClient, booking)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			return len(input.TransactItems) == 6
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		cancelled, err := store.CancelBooking(context.Background(), "booking-1")

		assert.NoError(t, err)
		assert.Equal(t, models.CANCELLED, cancelled.Status)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Cancelled", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)
		booking := cancellableBooking(models.CANCELLED)

		bookingAV, _ := attributevalue.MarshalMap(booking)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: bookingAV}, nil)

		_, err := store.CancelBooking(context.Background(), "booking-1")

		assert.True(t, errors.Is(err, storage.ErrAlreadySettled))
		mockClient.AssertExpectations(t)
	})

	t.Run("Stay In Progress", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)
		booking := cancellableBooking(models.CURRENT)

		bookingAV, _ := attributevalue.MarshalMap(booking)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: bookingAV}, nil)

		_, err := store.CancelBooking(context.Background(), "booking-1")

		assert.True(t, errors.Is(err, storage.ErrInvalidTransition))
		mockClient.AssertExpectations(t)
	})

	t.Run("Refund Entry Collision Means Already Settled", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)
		booking := cancellableBooking(models.PENDING)

		expectCancelReads(mockClient, booking)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, canceled("None", "ConditionalCheckFailed", "None", "None", "None", "None"))

		_, err := store.CancelBooking(context.Background(), "booking-1")

		assert.True(t, errors.Is(err, storage.ErrAlreadySettled))
		mockClient.AssertExpectations(t)
	})

	t.Run("Lost Status Race To Concurrent Cancel", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)
		booking := cancellableBooking(models.PENDING)

		expectCancelReads(mockClient, booking)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, canceled("ConditionalCheckFailed", "None", "None", "None", "None", "None"))

		// The post-failure re-read finds the booking cancelled by the winner.
		cancelledAV, _ := attributevalue.MarshalMap(cancellableBooking(models.CANCELLED))
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: cancelledAV}, nil)

		_, err := store.CancelBooking(context.Background(), "booking-1")

		assert.True(t, errors.Is(err, storage.ErrAlreadySettled))
		mockClient.AssertExpectations(t)
	})

	t.Run("Lost Status Race To Stay Start", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)
		booking := cancellableBooking(models.UPCOMING)

		expectCancelReads(mockClient, booking)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, canceled("ConditionalCheckFailed", "None", "None", "None", "None", "None"))

		currentAV, _ := attributevalue.MarshalMap(cancellableBooking(models.CURRENT))
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: currentAV}, nil)

		_, err := store.CancelBooking(context.Background(), "booking-1")

		assert.True(t, errors.Is(err, storage.ErrInvalidTransition))
		mockClient.AssertExpectations(t)
	})

	t.Run("Booking Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		_, err := store.CancelBooking(context.Background(), "missing")

		assert.True(t, errors.Is(err, storage.ErrNotFound))
		mockClient.AssertExpectations(t)
	})
}
