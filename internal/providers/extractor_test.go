package providers

import (
	"net/http"
	"testing"
)

func TestParseStructuredJSON(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fence without language", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding prose", in: "Here is the result:\n{\"a\":1}\nDone.", want: `{"a":1}`},
		{name: "empty", in: "  ", wantErr: true},
		{name: "no json at all", in: "I could not read the document.", wantErr: true},
		{name: "truncated object", in: `{"a":`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseStructuredJSON(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("got %s, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	if got := stripCodeFences("no fences here"); got != "" {
		t.Errorf("got %q for unfenced input, want empty", got)
	}
	if got := stripCodeFences("```json\n{}\n```"); got != "{}" {
		t.Errorf("got %q, want {}", got)
	}
	// Unterminated fence still yields the body.
	if got := stripCodeFences("```\n{}"); got != "{}" {
		t.Errorf("got %q, want {}", got)
	}
}

func TestShouldRetryStatus(t *testing.T) {
	retryable := []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, 520, 524}
	for _, code := range retryable {
		if !shouldRetryStatus(code) {
			t.Errorf("status %d not retried", code)
		}
	}
	terminal := []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusOK}
	for _, code := range terminal {
		if shouldRetryStatus(code) {
			t.Errorf("status %d retried", code)
		}
	}
}
