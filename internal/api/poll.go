package api

import (
	"context"
	"fmt"
	"time"
)

// BatchStatus is the client-side view of the server's status report.
type BatchStatus struct {
	BatchID    string `json:"batch_id"`
	Status     string `json:"status"`
	Stable     bool   `json:"stable"`
	NextAction string `json:"next_action,omitempty"`
	PageCount  int    `json:"page_count"`
	Splits     int    `json:"splits"`
	Extracted  int    `json:"extracted"`
	Validated  int    `json:"validated"`
}

// PollOptions bounds a status poll. Zero values get sane defaults.
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
}

// PollStatus polls a batch's status until the server reports a stable
// status, the attempt budget is exhausted, or the context is cancelled.
// The last observed status is returned alongside any error.
func (c *Client) PollStatus(ctx context.Context, batchID string, opts PollOptions) (*BatchStatus, error) {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 150
	}

	var last *BatchStatus
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return last, ctx.Err()
			case <-time.After(opts.Interval):
			}
		}

		var st BatchStatus
		if err := c.Get(ctx, "/api/v1/batches/"+batchID+"/status", &st); err != nil {
			return last, err
		}
		last = &st
		if st.Stable {
			return last, nil
		}
	}

	return last, fmt.Errorf("batch %s not stable after %d attempts", batchID, opts.MaxAttempts)
}
