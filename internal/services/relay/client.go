// Package relay is the HTTP client of the bet history relay.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/internal/domain"
	"github.com/vadiminshakov/roulette/pkg/retrier"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 10 * time.Second
	betsPath       = "/api/bets"
)

// errRetryable marks failures worth another attempt: transport errors and 5xx.
var errRetryable = errors.New("retryable relay error")

type betRequest struct {
	Player  string  `json:"player"`
	Amount  float64 `json:"amount"`
	BetType string  `json:"betType"`
	Result  int     `json:"result"`
	Win     bool    `json:"win"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client posts settled bets to the relay server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retrier    *retrier.Retrier
	logger     *zap.Logger
}

// NewClient creates a relay client for baseURL, e.g. http://localhost:3000.
func NewClient(baseURL string, logger *zap.Logger, opts ...retrier.Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}

	base := []retrier.Option{
		retrier.WithMaxRetries(2),
		retrier.WithInitialInterval(500 * time.Millisecond),
		retrier.WithMaxInterval(2 * time.Second),
		retrier.WithRetryIf(func(err error) bool { return errors.Is(err, errRetryable) }),
		retrier.WithOnRetry(func(attempt int, err error) {
			logger.Warn("retrying relay request", zap.Int("attempt", attempt), zap.Error(err))
		}),
	}
	c.retrier = retrier.New(append(base, opts...)...)

	return c
}

// Record appends one bet and returns it with the id and timestamp assigned by the relay.
func (c *Client) Record(ctx context.Context, rec domain.BetRecord) (domain.BetRecord, error) {
	payload, err := json.Marshal(betRequest{
		Player:  rec.Player,
		Amount:  rec.Amount,
		BetType: rec.BetType,
		Result:  rec.Result,
		Win:     rec.Win,
	})
	if err != nil {
		return domain.BetRecord{}, errors.Wrap(err, "marshal bet")
	}

	requestID := uuid.NewString()

	stored, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (domain.BetRecord, error) {
		var out domain.BetRecord
		err := c.do(ctx, http.MethodPost, c.baseURL+betsPath, requestID, payload, http.StatusCreated, &out)
		return out, err
	})
	if err != nil {
		return domain.BetRecord{}, errors.Wrapf(domain.ErrStorage, "record bet: %v", err)
	}

	c.logger.Debug("bet recorded", zap.Uint64("id", stored.ID), zap.String("request_id", requestID))
	return stored, nil
}

// Recent lists the newest bets of player, newest first. An empty player lists everyone.
func (c *Client) Recent(ctx context.Context, player string, limit int) ([]domain.BetRecord, error) {
	q := url.Values{}
	if player != "" {
		q.Set("player", player)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	endpoint := c.baseURL + betsPath
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	records, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) ([]domain.BetRecord, error) {
		var out []domain.BetRecord
		err := c.do(ctx, http.MethodGet, endpoint, uuid.NewString(), nil, http.StatusOK, &out)
		return out, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "list bets")
	}
	return records, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, requestID string, body []byte, want int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create HTTP request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrapf(errRetryable, "HTTP request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(errRetryable, "failed to read response body: %v", err)
	}

	if resp.StatusCode != want {
		msg := strings.TrimSpace(string(data))
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return errors.Wrapf(errRetryable, "relay returned status %d: %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("relay returned status %d: %s", resp.StatusCode, msg)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}
	return nil
}
