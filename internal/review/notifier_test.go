package review

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"transcript-workers/internal/common/logger"
	"transcript-workers/internal/models"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

const topic = "arn:aws:sns:us-east-1:123456789012:transcript-review"

func flaggedResult() *models.NormalizationResult {
	return &models.NormalizationResult{
		Dates:      []models.DateInfo{{}},
		Flags:      []models.Flag{models.FlagDateRejected},
		StatusCode: models.StatusMissingEntities,
	}
}

func TestNotifier_PublishesFlaggedResult(t *testing.T) {
	pub := new(MockPublisher)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	pub.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		if aws.ToString(in.TopicArn) != topic {
			return false
		}
		var msg Message
		if err := json.Unmarshal([]byte(aws.ToString(in.Message)), &msg); err != nil {
			return false
		}
		return msg.CallIdentifier == "call-9" &&
			msg.StatusCode == "MissingEntities" &&
			msg.DateCount == 1 &&
			msg.MessageID != "" &&
			msg.PublishedAt.Equal(fixed) &&
			aws.ToString(in.MessageAttributes["dateRejected"].StringValue) == "true"
	})).Return(&sns.PublishOutput{MessageId: aws.String("sns-1")}, nil).Once()

	n := NewNotifier(pub, topic, logger.NewTestLogger(t))
	n.now = func() time.Time { return fixed }

	sent, err := n.NotifyIfFlagged(context.Background(), "call-9", flaggedResult())
	require.NoError(t, err)
	assert.True(t, sent)
	pub.AssertExpectations(t)
}

func TestNotifier_SkipsCleanResult(t *testing.T) {
	pub := new(MockPublisher)
	n := NewNotifier(pub, topic, nil)

	clean := &models.NormalizationResult{Flags: []models.Flag{}, StatusCode: models.StatusOK}
	sent, err := n.NotifyIfFlagged(context.Background(), "call-1", clean)
	require.NoError(t, err)
	assert.False(t, sent)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestNotifier_Disabled(t *testing.T) {
	sent, err := NewNotifier(nil, "", nil).NotifyIfFlagged(context.Background(), "call-1", flaggedResult())
	require.NoError(t, err)
	assert.False(t, sent)

	var nilNotifier *Notifier
	sent, err = nilNotifier.NotifyIfFlagged(context.Background(), "call-1", flaggedResult())
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestNotifier_PublishError(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()

	sent, err := NewNotifier(pub, topic, nil).NotifyIfFlagged(context.Background(), "call-1", flaggedResult())
	assert.ErrorContains(t, err, "throttled")
	assert.False(t, sent)
	pub.AssertExpectations(t)
}
