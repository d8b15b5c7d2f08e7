package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
)

type captureSQS struct {
	lastInput *sqs.SendMessageInput
	err       error
}

func (c *captureSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	c.lastInput = params
	if c.err != nil {
		return nil, c.err
	}
	return &sqs.SendMessageOutput{}, nil
}

func TestScheduleStatusSweep(t *testing.T) {
	t.Run("Sends Sweep Request With Delay", func(t *testing.T) {
		client := &captureSQS{}
		s := NewSQSScheduler(client, "https://sqs.test/queue")

		err := s.ScheduleStatusSweep(context.Background(), "booking-1", 5*time.Minute)

		assert.NoError(t, err)
		assert.Equal(t, "https://sqs.test/queue", *client.lastInput.QueueUrl)
		assert.Equal(t, int32(300), client.lastInput.DelaySeconds)

		var req SweepRequest
		assert.NoError(t, json.Unmarshal([]byte(*client.lastInput.MessageBody), &req))
		assert.Equal(t, "booking-1", req.BookingID)
	})

	t.Run("Clamps Delay To SQS Maximum", func(t *testing.T) {
		client := &captureSQS{}
		s := NewSQSScheduler(client, "https://sqs.test/queue")

		err := s.ScheduleStatusSweep(context.Background(), "booking-1", 48*time.Hour)

		assert.NoError(t, err)
		assert.Equal(t, int32(900), client.lastInput.DelaySeconds)
	})

	t.Run("Clamps Negative Delay To Zero", func(t *testing.T) {
		client := &captureSQS{}
		s := NewSQSScheduler(client, "https://sqs.test/queue")

		err := s.ScheduleStatusSweep(context.Background(), "booking-1", -time.Hour)

		assert.NoError(t, err)
		assert.Equal(t, int32(0), client.lastInput.DelaySeconds)
	})

	t.Run("Send Failure", func(t *testing.T) {
		client := &captureSQS{err: errors.New("queue unreachable")}
		s := NewSQSScheduler(client, "https://sqs.test/queue")

		err := s.ScheduleStatusSweep(context.Background(), "booking-1", time.Minute)

		assert.Error(t, err)
	})
}
