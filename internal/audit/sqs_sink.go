package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the subset of the SQS client the sink uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSSink forwards events to an SQS queue for downstream consumers.
type SQSSink struct {
	client   SQSAPI
	queueURL string
}

// NewSQSSink creates an SQSSink.
func NewSQSSink(client SQSAPI, queueURL string) *SQSSink {
	return &SQSSink{client: client, queueURL: queueURL}
}

func (s *SQSSink) Publish(ctx context.Context, event Event) error {
	event = stamp(ctx, event)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	attrs := map[string]types.MessageAttributeValue{
		"EventType": {
			StringValue: aws.String(string(event.Type)),
			DataType:    aws.String("String"),
		},
		"Account": {
			StringValue: aws.String(event.Account),
			DataType:    aws.String("String"),
		},
	}
	if event.CorrelationID != "" {
		attrs["CorrelationID"] = types.MessageAttributeValue{
			StringValue: aws.String(event.CorrelationID),
			DataType:    aws.String("String"),
		}
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("failed to send audit event to SQS: %w", err)
	}
	return nil
}
