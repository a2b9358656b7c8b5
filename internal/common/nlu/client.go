// Package nlu queries the hosted language-understanding application that
// turns a normalized transcript into intents and entities.
package nlu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpclient "transcript-workers/internal/common/http"
	"transcript-workers/internal/common/logger"
	"transcript-workers/internal/common/metrics"
	"transcript-workers/internal/extraction"
	"transcript-workers/internal/models"
)

var (
	ErrNLURequestFailed   = errors.New("NLU_REQUEST_FAILED")
	ErrNLUTimeout         = errors.New("NLU_TIMEOUT")
	ErrNLUResponseInvalid = errors.New("NLU_RESPONSE_INVALID")
)

type Config struct {
	Endpoint        string
	AppID           string
	SubscriptionKey string
	Timeout         time.Duration
	MaxRetries      int
	Staging         bool
	Verbose         bool
	TimezoneOffset  int
}

// Client issues prediction queries. It is safe for concurrent use.
type Client struct {
	config *Config
	http   *httpclient.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		config: config,
		http:   httpclient.NewClient(config.Timeout),
		logger: log.WithFields(map[string]interface{}{"component": "nlu"}),
	}
}

// Query sends text to the prediction endpoint and decodes the reply.
// Non-200 replies and transport errors are retried MaxRetries times.
func (c *Client) Query(ctx context.Context, text string) (*models.NLUResponse, error) {
	reqURL, err := c.buildURL(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNLURequestFailed, err)
	}

	start := time.Now()
	body, err := c.fetch(ctx, reqURL)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrNLUTimeout) {
			outcome = "timeout"
		}
		metrics.NLURequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		return nil, err
	}
	metrics.NLURequestDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	resp, err := extraction.DecodeResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNLUResponseInvalid, err)
	}
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrNLUTimeout
			}
			c.logger.Warn("retrying nlu query", map[string]interface{}{
				"attempt": attempt,
				"error":   lastErr,
			})
		}

		status, body, err := c.http.GetJSON(ctx, reqURL)
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, ErrNLUTimeout
		}
		if err != nil {
			lastErr = err
			continue
		}
		if status != http.StatusOK {
			lastErr = fmt.Errorf("status %d", status)
			continue
		}
		return body, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrNLURequestFailed, lastErr)
}

func (c *Client) buildURL(text string) (string, error) {
	base, err := url.Parse(strings.TrimRight(c.config.Endpoint, "/"))
	if err != nil {
		return "", err
	}
	base.Path += "/luis/v2.0/apps/" + url.PathEscape(c.config.AppID)

	q := url.Values{}
	q.Set("subscription-key", c.config.SubscriptionKey)
	q.Set("verbose", strconv.FormatBool(c.config.Verbose))
	q.Set("timezoneOffset", strconv.Itoa(c.config.TimezoneOffset))
	q.Set("staging", strconv.FormatBool(c.config.Staging))
	q.Set("q", text)
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
