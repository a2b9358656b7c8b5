// Package review publishes normalization results that need human attention.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"

	"transcript-workers/internal/common/logger"
	"transcript-workers/internal/models"
)

// Publisher is satisfied by the SNS client.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Message is the body published for each flagged call.
type Message struct {
	MessageID      string        `json:"messageId"`
	CallIdentifier string        `json:"callIdentifier"`
	StatusCode     string        `json:"statusCode"`
	Flags          []models.Flag `json:"flags"`
	Intent         *string       `json:"intent"`
	DateCount      int           `json:"dateCount"`
	PublishedAt    time.Time     `json:"publishedAt"`
}

type Notifier struct {
	publisher Publisher
	topicARN  string
	logger    logger.Logger
	now       func() time.Time
}

// NewNotifier returns a Notifier. A nil publisher disables publishing.
func NewNotifier(publisher Publisher, topicARN string, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Notifier{
		publisher: publisher,
		topicARN:  topicARN,
		logger:    log.WithFields(map[string]interface{}{"component": "review"}),
		now:       time.Now,
	}
}

// NotifyIfFlagged publishes a review message when the result carries the
// DateRejected flag or is missing required entities. It reports whether a
// message was sent.
func (n *Notifier) NotifyIfFlagged(ctx context.Context, callIdentifier string, result *models.NormalizationResult) (bool, error) {
	if n == nil || n.publisher == nil || result == nil || !result.NeedsReview() {
		return false, nil
	}

	msg := Message{
		MessageID:      uuid.NewString(),
		CallIdentifier: callIdentifier,
		StatusCode:     string(result.StatusCode),
		Flags:          result.Flags,
		Intent:         result.Intent,
		DateCount:      len(result.Dates),
		PublishedAt:    n.now().UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return false, fmt.Errorf("marshal review message: %w", err)
	}

	out, err := n.publisher.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String("Transcript needs review"),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"statusCode": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(result.StatusCode)),
			},
			"dateRejected": {
				DataType:    aws.String("String"),
				StringValue: aws.String(fmt.Sprintf("%t", result.DateRejected())),
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("publish review message: %w", err)
	}

	fields := map[string]interface{}{
		"callIdentifier": callIdentifier,
		"messageId":      msg.MessageID,
	}
	if out != nil && out.MessageId != nil {
		fields["snsMessageId"] = *out.MessageId
	}
	n.logger.Info("review notification published", fields)
	return true, nil
}
