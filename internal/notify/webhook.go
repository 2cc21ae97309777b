// Package notify implements an optional completion webhook: a single POST
// of the run's final diag.Stats to a caller-supplied URL. Delivery failure
// is never fatal to the sort itself (spec.md's stance that progress
// reporting is a non-authoritative collaborator).
package notify

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/binarysort/extsort/internal/diag"
)

// WebhookClient posts run completion notifications to a configured URL.
type WebhookClient struct {
	client *resty.Client
	url    string
}

// New constructs a WebhookClient targeting url.
func New(url string) *WebhookClient {
	return &WebhookClient{client: resty.New(), url: url}
}

type completionPayload struct {
	RunID          string  `json:"run_id"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	PeakRSSMB      float64 `json:"peak_rss_mb"`
	AvgMBPerSecond float64 `json:"avg_mb_per_s"`
}

// Notify POSTs the run's stats to the configured URL.
func (c *WebhookClient) Notify(ctx context.Context, runID string, stats diag.Stats) error {
	body := completionPayload{
		RunID:          runID,
		ElapsedSeconds: stats.ElapsedSeconds,
		PeakRSSMB:      stats.PeakRSSMB,
		AvgMBPerSecond: stats.AvgMBPerSecond,
	}
	_, err := c.client.R().SetContext(ctx).SetBody(&body).Post(c.url)
	return err
}
