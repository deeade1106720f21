package api

import (
	"bytes"
	"strings"
	"testing"
)

func TestOutputTo(t *testing.T) {
	data := map[string]any{"batch_id": "abc", "pages": 10}

	var buf bytes.Buffer
	if err := OutputTo(&buf, OutputFormatJSON, data); err != nil {
		t.Fatalf("json output failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"batch_id": "abc"`) {
		t.Errorf("json output %q missing field", buf.String())
	}

	buf.Reset()
	if err := OutputTo(&buf, OutputFormatYAML, data); err != nil {
		t.Fatalf("yaml output failed: %v", err)
	}
	if !strings.Contains(buf.String(), "batch_id: abc") {
		t.Errorf("yaml output %q missing field", buf.String())
	}

	if err := OutputTo(&buf, OutputFormat("xml"), data); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestSetOutputFormat(t *testing.T) {
	t.Cleanup(func() { SetOutputFormat("yaml") })

	SetOutputFormat("json")
	if GetOutputFormat() != OutputFormatJSON {
		t.Errorf("got %s, want json", GetOutputFormat())
	}
	SetOutputFormat("bogus")
	if GetOutputFormat() != DefaultOutput {
		t.Errorf("got %s, want default", GetOutputFormat())
	}
}
