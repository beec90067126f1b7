package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// RunRecordedMessage is the payload delivered to a project webhook after
// a run has been persisted.
type RunRecordedMessage struct {
	Event        string `json:"event"`
	Project      string `json:"project"`
	RunID        string `json:"run_id"`
	Branch       string `json:"branch"`
	Environment  string `json:"environment"`
	Total        int    `json:"total"`
	Passed       int    `json:"passed"`
	Failed       int    `json:"failed"`
	Flaky        int    `json:"flaky"`
	Skipped      int    `json:"skipped"`
	Duration     string `json:"duration"`
	DashboardURL string `json:"dashboard_url"`
}

// Client delivers webhook notifications.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a webhook client with the specified timeout.
func NewClient(timeoutMS int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		timeout: time.Duration(timeoutMS) * time.Millisecond,
	}
}

// PostRunRecorded sends a run-recorded notification to a webhook URL.
// This method NEVER returns errors to the caller - all failures are
// logged at WARN level so webhook trouble cannot impact ingestion.
func (c *Client) PostRunRecorded(ctx context.Context, webhookURL string, msg RunRecordedMessage) {
	if msg.Event == "" {
		msg.Event = "run.recorded"
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		log.Warn().
			Err(err).
			Str("project", msg.Project).
			Str("run_id", msg.RunID).
			Msg("Failed to marshal webhook payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, "POST", webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		log.Warn().
			Err(err).
			Str("project", msg.Project).
			Msg("Failed to create webhook request")
		return
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			log.Warn().
				Err(err).
				Dur("timeout", c.timeout).
				Str("project", msg.Project).
				Str("run_id", msg.RunID).
				Msg("Webhook notification timed out")
		} else {
			log.Warn().
				Err(err).
				Str("project", msg.Project).
				Str("run_id", msg.RunID).
				Msg("Failed to send webhook notification")
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn().
			Int("status_code", resp.StatusCode).
			Str("project", msg.Project).
			Str("run_id", msg.RunID).
			Msg("Webhook returned error status")
		return
	}

	log.Info().
		Str("project", msg.Project).
		Str("run_id", msg.RunID).
		Int("status_code", resp.StatusCode).
		Msg("Webhook notification sent successfully")
}
