package split

import (
	"errors"
	"testing"

	"github.com/splitscan/splitscan/internal/batch"
)

func TestPlanSynthesizesRanges(t *testing.T) {
	ranges, err := Plan(10, []Boundary{
		{Page: 4, Confidence: 0.9},
		{Page: 7, Confidence: 0.8},
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	want := []batch.SplitRange{
		{StartPage: 1, EndPage: 4, Confidence: 0.9},
		{StartPage: 5, EndPage: 7, Confidence: 0.8},
		{StartPage: 8, EndPage: 10, Confidence: 1},
	}
	if len(ranges) != len(want) {
		t.Fatalf("got %d ranges, want %d: %+v", len(ranges), len(want), ranges)
	}
	for i, r := range ranges {
		if r != want[i] {
			t.Errorf("range %d: got %+v, want %+v", i, r, want[i])
		}
	}
}

func TestPlanNoBoundaries(t *testing.T) {
	ranges, err := Plan(5, nil)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1", len(ranges))
	}
	if r := ranges[0]; r.StartPage != 1 || r.EndPage != 5 || r.Confidence != 1 {
		t.Errorf("got %+v, want full-document range with confidence 1", r)
	}
}

func TestPlanDuplicateBoundariesKeepHigherConfidence(t *testing.T) {
	ranges, err := Plan(10, []Boundary{
		{Page: 4, Confidence: 0.3},
		{Page: 4, Confidence: 0.95},
		{Page: 4, Confidence: 0.5},
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges, want 2", len(ranges))
	}
	if ranges[0].Confidence != 0.95 {
		t.Errorf("got confidence %v, want 0.95", ranges[0].Confidence)
	}
}

func TestPlanDiscardsOutOfRangeBoundaries(t *testing.T) {
	ranges, err := Plan(10, []Boundary{
		{Page: 0, Confidence: 0.9},
		{Page: -3, Confidence: 0.9},
		{Page: 11, Confidence: 0.9},
		{Page: 5, Confidence: 0.7},
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges, want 2: %+v", len(ranges), ranges)
	}
	if ranges[0].EndPage != 5 {
		t.Errorf("got end page %d, want 5", ranges[0].EndPage)
	}
}

func TestPlanBoundaryAtLastPage(t *testing.T) {
	// A boundary at the final page is redundant, not an extra range.
	ranges, err := Plan(10, []Boundary{
		{Page: 10, Confidence: 0.6},
		{Page: 4, Confidence: 0.9},
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges, want 2: %+v", len(ranges), ranges)
	}
	if last := ranges[1]; last.EndPage != 10 || last.Confidence != 1 {
		t.Errorf("got final range %+v, want end 10 confidence 1", last)
	}
}

func TestPlanRejectsNonPositivePageCount(t *testing.T) {
	_, err := Plan(0, nil)
	var ie *batch.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("got %v, want InputError", err)
	}
}

func TestCheckPartitionValid(t *testing.T) {
	ranges := []batch.SplitRange{
		{StartPage: 1, EndPage: 4},
		{StartPage: 5, EndPage: 7},
		{StartPage: 8, EndPage: 10},
	}
	if err := CheckPartition(ranges, 10); err != nil {
		t.Fatalf("CheckPartition failed on valid partition: %v", err)
	}
}

func TestCheckPartitionAggregatesReasons(t *testing.T) {
	ranges := []batch.SplitRange{
		{StartPage: 2, EndPage: 4}, // wrong first page
		{StartPage: 4, EndPage: 6}, // overlap
		{StartPage: 9, EndPage: 8}, // inverted plus gap
	}
	err := CheckPartition(ranges, 10)
	var ise *InvalidSplitError
	if !errors.As(err, &ise) {
		t.Fatalf("got %v, want InvalidSplitError", err)
	}
	if len(ise.Reasons) < 4 {
		t.Errorf("got %d reasons %v, want all violations reported together", len(ise.Reasons), ise.Reasons)
	}
}

func TestCheckPartitionEmpty(t *testing.T) {
	err := CheckPartition(nil, 10)
	var ise *InvalidSplitError
	if !errors.As(err, &ise) {
		t.Fatalf("got %v, want InvalidSplitError", err)
	}
}

func TestCheckPartitionSingleRange(t *testing.T) {
	if err := CheckPartition([]batch.SplitRange{{StartPage: 1, EndPage: 3}}, 3); err != nil {
		t.Fatalf("CheckPartition failed: %v", err)
	}
}
