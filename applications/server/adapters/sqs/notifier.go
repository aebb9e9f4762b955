package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/chunkd/chunkd/applications/server/domain"
	"github.com/chunkd/chunkd/applications/server/interfaces"
)

// Notifier publishes assembled-file events to an SQS queue so
// downstream consumers learn about finished uploads without polling
// the destination store.
type Notifier struct {
	client   *awssqs.Client
	queueURL string
}

func NewNotifier(client *awssqs.Client, queueURL string) *Notifier {
	return &Notifier{
		client:   client,
		queueURL: queueURL,
	}
}

var _ interfaces.CompletionNotifier = (*Notifier)(nil)

type assembledMessage struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
}

func (n *Notifier) NotifyAssembled(ctx context.Context, file domain.AssembledFile) error {
	body, err := json.Marshal(assembledMessage{
		SessionID: file.SessionID,
		Path:      file.Path,
	})
	if err != nil {
		return err
	}

	_, err = n.client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
