package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/splitscan/splitscan/internal/split"
)

const boundarySystemPrompt = `You segment a multi-page scanned batch into individual invoices.
Given per-page text, return the page numbers where one invoice ENDS
(its last page), with a confidence between 0 and 1 for each. Do not
include the final page of the batch; it is always an implicit boundary.`

// boundarySchema constrains the detector's structured output.
var boundarySchema = json.RawMessage(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["boundaries"],
	"properties": {
		"boundaries": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["page", "confidence"],
				"properties": {
					"page": {"type": "integer"},
					"confidence": {"type": "number"}
				}
			}
		}
	}
}`)

// ChatBoundaryDetector implements BoundaryDetector on top of the chat
// client.
type ChatBoundaryDetector struct {
	client *ChatClient
}

// NewChatBoundaryDetector creates a chat-backed boundary detector.
func NewChatBoundaryDetector(client *ChatClient) *ChatBoundaryDetector {
	return &ChatBoundaryDetector{client: client}
}

// DetectBoundaries proposes last-page boundaries from per-page text.
func (d *ChatBoundaryDetector) DetectBoundaries(ctx context.Context, layout *Layout) ([]split.Boundary, error) {
	var user strings.Builder
	fmt.Fprintf(&user, "The batch has %d pages.\n", layout.Pages)
	for page := 1; page <= layout.Pages; page++ {
		text := layout.PageText(page, page)
		if len(text) > 2000 {
			text = text[:2000]
		}
		fmt.Fprintf(&user, "--- page %d ---\n%s\n", page, text)
	}

	completion, err := d.client.Complete(ctx, boundarySystemPrompt, user.String(), boundarySchema)
	if err != nil {
		return nil, &DetectionError{Err: err}
	}

	raw, err := parseStructuredJSON(completion.Content)
	if err != nil {
		return nil, &DetectionError{Err: err}
	}

	var parsed struct {
		Boundaries []split.Boundary `json:"boundaries"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &DetectionError{Err: fmt.Errorf("malformed boundary output: %w", err)}
	}
	return parsed.Boundaries, nil
}
