// Package loki pushes gateway events to Grafana Loki.
package loki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Job is the job label on every stream the worker pushes.
const Job = "cognisecure-gateway"

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single stream with labels and log entries.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // each entry is [timestamp_ns, log_line]
}

// labelSanitize replaces characters that are invalid in Loki label values we set.
var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:.]`)

// eventFields picks the low-cardinality fields of a gateway event used as stream labels.
// Officer and session ids stay in the log line; as labels they would explode stream count.
type eventFields struct {
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	Outcome   string    `json:"outcome"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
}

// Client pushes log lines to a Loki instance.
type Client struct {
	http *resty.Client
}

// NewClient returns a Client for the Loki base URL (e.g. http://localhost:3100).
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("loki: base URL is empty")
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}, nil
}

// PushEventJSON parses the event JSON (Kafka message value), extracts timestamp and labels, and pushes to Loki.
// If parsing fails, the raw line is pushed with the current time and only the job label.
func (c *Client) PushEventJSON(ctx context.Context, rawJSON []byte) error {
	labels := map[string]string{}
	ts := time.Now().UTC()
	var fields eventFields
	if err := json.Unmarshal(rawJSON, &fields); err == nil {
		labels["event_type"] = fields.EventType
		labels["source"] = fields.Source
		labels["outcome"] = fields.Outcome
		labels["stage"] = fields.Stage
		if !fields.CreatedAt.IsZero() {
			ts = fields.CreatedAt
		}
	}
	return c.PushEvent(ctx, ts, string(rawJSON), labels)
}

// PushEvent sends a single log line. Empty label values are dropped. Returns an error if the request fails
// or Loki returns non-2xx.
func (c *Client) PushEvent(ctx context.Context, timestamp time.Time, line string, labels map[string]string) error {
	streamLabels := make(map[string]string, len(labels)+1)
	streamLabels["job"] = Job
	for k, v := range labels {
		if sanitized := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_"); sanitized != "" {
			streamLabels[k] = sanitized
		}
	}
	body := PushRequest{
		Streams: []Stream{{
			Stream: streamLabels,
			Values: [][]string{{strconv.FormatInt(timestamp.UnixNano(), 10), line}},
		}},
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/loki/api/v1/push")
	if err != nil {
		return fmt.Errorf("loki: push: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("loki: push returned %s", resp.Status())
	}
	return nil
}
