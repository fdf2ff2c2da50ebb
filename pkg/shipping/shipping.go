// Package shipping is a thin client for the carrier status endpoint. It
// normalizes the upstream payload into a timeline and never retries; retry
// policy belongs to the caller.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnavailable = errors.New("shipping status endpoint unavailable")
	ErrMalformed   = errors.New("shipping status response is malformed")
)

const maxResponseSizeBytes = 1 << 20

type Config struct {
	URL     string        `split_words:"true" required:"true"`
	Timeout time.Duration `split_words:"true" default:"5s"`
}

// Option customizes Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("shipping status url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid shipping status url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

func MustNew(cfg Config, opts ...Option) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

type TimelineEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
}

// TrackingStatus is the normalized view of one status lookup. Events are
// ordered oldest first and may be empty.
type TrackingStatus struct {
	TrackingCode string          `json:"tracking_code"`
	Carrier      string          `json:"carrier"`
	Status       string          `json:"status"`
	ETA          string          `json:"eta,omitempty"`
	Events       []TimelineEvent `json:"events"`
}

type statusRequest struct {
	OrderStatus    string `json:"orderStatus"`
	TrackingNumber string `json:"trackingNumber"`
}

// statusResponse matches the upstream shape; unknown fields are ignored.
type statusResponse struct {
	Info struct {
		TrackingCode string `json:"trackingCode"`
		Carrier      string `json:"carrier"`
		Status       string `json:"status"`
		ETA          string `json:"eta"`
	} `json:"info"`
	Timeline struct {
		Events []TimelineEvent `json:"events"`
	} `json:"timeline"`
}

func (c *Client) Status(ctx context.Context, orderStatus, trackingNumber string) (*TrackingStatus, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, errors.New("tracking number is required")
	}

	body, err := json.Marshal(statusRequest{
		OrderStatus:    strings.TrimSpace(orderStatus),
		TrackingNumber: trackingNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal status request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: http status=%d", ErrUnavailable, resp.StatusCode)
	}

	var parsed statusResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if parsed.Info.TrackingCode == "" && parsed.Info.Carrier == "" && parsed.Info.Status == "" {
		return nil, fmt.Errorf("%w: missing info block", ErrMalformed)
	}

	events := append([]TimelineEvent(nil), parsed.Timeline.Events...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	return &TrackingStatus{
		TrackingCode: parsed.Info.TrackingCode,
		Carrier:      parsed.Info.Carrier,
		Status:       parsed.Info.Status,
		ETA:          parsed.Info.ETA,
		Events:       events,
	}, nil
}
