package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const extractSystemPrompt = `You extract structured invoice data from scanned document text.
Respond with a single JSON object conforming to the provided schema.
Use the table header glossary as a soft prior for locating line items;
tables with unusual headers may still be line-item tables. Leave fields
you cannot read out of the output rather than guessing.`

// ChatExtractor implements RecordExtractor on top of the chat client.
type ChatExtractor struct {
	client *ChatClient
}

// NewChatExtractor creates a chat-backed record extractor.
func NewChatExtractor(client *ChatClient) *ChatExtractor {
	return &ChatExtractor{client: client}
}

// Extract asks the model for structured invoice data. A completion cut
// off by the output token limit is reported as the distinguished
// truncated case.
func (e *ChatExtractor) Extract(ctx context.Context, content, hintsGlossary string, targetSchema json.RawMessage) (json.RawMessage, error) {
	var user strings.Builder
	if hintsGlossary != "" {
		user.WriteString("Detected table headers:\n")
		user.WriteString(hintsGlossary)
		user.WriteString("\n")
	}
	user.WriteString("Document text:\n")
	user.WriteString(content)

	completion, err := e.client.Complete(ctx, extractSystemPrompt, user.String(), targetSchema)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}
	if completion.FinishReason == "length" {
		return nil, &ExtractionError{
			Err:       fmt.Errorf("output cut off at token limit"),
			Truncated: true,
		}
	}

	raw, err := parseStructuredJSON(completion.Content)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}
	return raw, nil
}

// parseStructuredJSON parses JSON from model output, with lightweight
// recovery for markdown code fences and surrounding text.
func parseStructuredJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty structured output")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			normalized, mErr := json.Marshal(parsed)
			if mErr != nil {
				return nil, fmt.Errorf("failed to normalize structured output: %w", mErr)
			}
			return normalized, nil
		}
	}

	return nil, fmt.Errorf("failed to parse structured JSON")
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractJSONCandidate(content string) string {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(trimmed, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}
