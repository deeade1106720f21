package batch

import (
	"testing"
)

func TestNewBatch(t *testing.T) {
	b := New("scan.pdf", "/tmp/scan.pdf", 12)
	if b.ID == "" {
		t.Error("batch ID empty")
	}
	if b.Status != StatusUploaded {
		t.Errorf("status %s, want UPLOADED", b.Status)
	}
	if b.PageCount != 12 {
		t.Errorf("page count %d, want 12", b.PageCount)
	}
	if b.CreatedAt.IsZero() || b.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := New("scan.pdf", "", 10)
	b.SplitProposal = []SplitRange{{StartPage: 1, EndPage: 10, Confidence: 1}}
	b.Validated = []bool{false}
	b.ExtractionErrors = []string{""}
	b.Error = &ErrorDetail{Stage: StatusProcessing, Message: "boom"}

	c := b.Clone()
	c.SplitProposal[0].EndPage = 5
	c.Validated[0] = true
	c.ExtractionErrors[0] = "changed"
	c.Error.Message = "changed"

	if b.SplitProposal[0].EndPage != 10 {
		t.Error("clone shares SplitProposal backing array")
	}
	if b.Validated[0] {
		t.Error("clone shares Validated backing array")
	}
	if b.ExtractionErrors[0] != "" {
		t.Error("clone shares ExtractionErrors backing array")
	}
	if b.Error.Message != "boom" {
		t.Error("clone shares Error pointer")
	}
}

func TestAllValidated(t *testing.T) {
	b := New("scan.pdf", "", 10)
	if b.AllValidated() {
		t.Error("AllValidated true before extraction")
	}

	b.ValidatedSplits = []SplitRange{{StartPage: 1, EndPage: 5}, {StartPage: 6, EndPage: 10}}
	b.Validated = []bool{true, false}
	if b.AllValidated() {
		t.Error("AllValidated true with an unconfirmed invoice")
	}

	b.Validated[1] = true
	if !b.AllValidated() {
		t.Error("AllValidated false with every invoice confirmed")
	}
}
