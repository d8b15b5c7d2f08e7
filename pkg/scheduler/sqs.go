package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// maxSQSDelay is the longest delay SQS accepts for a single message.
const maxSQSDelay = 15 * time.Minute

// SQSAPI captures the subset of the SQS client the scheduler uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSScheduler implements the Scheduler interface using AWS SQS.
type SQSScheduler struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client SQSAPI, queueURL string) *SQSScheduler {
	return &SQSScheduler{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Scheduler = (*SQSScheduler)(nil)

// ScheduleStatusSweep sends the sweep request to an SQS queue. Delays longer
// than the SQS maximum are clamped; the periodic sweep picks up the rest.
func (s *SQSScheduler) ScheduleStatusSweep(ctx context.Context, bookingID string, delay time.Duration) error {
	body, err := json.Marshal(SweepRequest{BookingID: bookingID})
	if err != nil {
		return fmt.Errorf("failed to marshal sweep request for SQS: %w", err)
	}

	if delay < 0 {
		delay = 0
	}
	if delay > maxSQSDelay {
		delay = maxSQSDelay
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})

	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}

// NoOpScheduler discards sweep requests; used when no queue is configured.
type NoOpScheduler struct{}

// ScheduleStatusSweep does nothing.
func (NoOpScheduler) ScheduleStatusSweep(ctx context.Context, bookingID string, delay time.Duration) error {
	return nil
}
