// Package split reconciles boundary-detector output and manual edits
// into a validated page partition.
package split

import (
	"fmt"
	"sort"
	"strings"

	"github.com/splitscan/splitscan/internal/batch"
)

// Boundary is one candidate document boundary: the last page of a
// document, with the detector's confidence in [0,1].
type Boundary struct {
	Page       int     `json:"page"`
	Confidence float64 `json:"confidence"`
}

// InvalidSplitError reports every way a proposed partition violates the
// partition invariant. Callers keep the prior valid proposal unchanged.
type InvalidSplitError struct {
	Reasons []string
}

func (e *InvalidSplitError) Error() string {
	return "invalid split ranges: " + strings.Join(e.Reasons, "; ")
}

// Plan synthesizes a split proposal from detector output. Candidate
// boundaries are sorted and deduplicated (the higher-confidence entry
// wins on duplicates) and boundaries outside [1, pageCount] are
// discarded. The resulting ranges always cover [1, pageCount] exactly.
//
// The final range is closed by the document's last page rather than a
// detected boundary, so it carries confidence 1.
func Plan(pageCount int, boundaries []Boundary) ([]batch.SplitRange, error) {
	if pageCount < 1 {
		return nil, &batch.InputError{Detail: fmt.Sprintf("page count must be positive, got %d", pageCount)}
	}

	best := make(map[int]float64)
	for _, b := range boundaries {
		if b.Page < 1 || b.Page > pageCount {
			continue
		}
		if conf, ok := best[b.Page]; !ok || b.Confidence > conf {
			best[b.Page] = b.Confidence
		}
	}

	pages := make([]int, 0, len(best))
	for p := range best {
		if p == pageCount {
			// Redundant: the last range always ends at pageCount.
			continue
		}
		pages = append(pages, p)
	}
	sort.Ints(pages)

	ranges := make([]batch.SplitRange, 0, len(pages)+1)
	start := 1
	for _, p := range pages {
		ranges = append(ranges, batch.SplitRange{
			StartPage:  start,
			EndPage:    p,
			Confidence: best[p],
		})
		start = p + 1
	}
	ranges = append(ranges, batch.SplitRange{
		StartPage:  start,
		EndPage:    pageCount,
		Confidence: 1,
	})

	return ranges, nil
}

// CheckPartition verifies that ranges are sorted, mutually
// non-overlapping, contiguous, and that their union is exactly
// [1, pageCount]. All violations are reported together.
func CheckPartition(ranges []batch.SplitRange, pageCount int) error {
	var reasons []string

	if len(ranges) == 0 {
		reasons = append(reasons, "no ranges")
		return &InvalidSplitError{Reasons: reasons}
	}

	for i, r := range ranges {
		if r.StartPage > r.EndPage {
			reasons = append(reasons, fmt.Sprintf("range %d: start page %d after end page %d", i, r.StartPage, r.EndPage))
		}
	}

	if first := ranges[0].StartPage; first != 1 {
		reasons = append(reasons, fmt.Sprintf("first range starts at page %d, want 1", first))
	}
	if last := ranges[len(ranges)-1].EndPage; last != pageCount {
		reasons = append(reasons, fmt.Sprintf("last range ends at page %d, want %d", last, pageCount))
	}

	for i := 1; i < len(ranges); i++ {
		prev, cur := ranges[i-1], ranges[i]
		switch {
		case cur.StartPage <= prev.EndPage:
			reasons = append(reasons, fmt.Sprintf("range %d overlaps range %d", i, i-1))
		case cur.StartPage != prev.EndPage+1:
			reasons = append(reasons, fmt.Sprintf("gap between page %d and page %d", prev.EndPage, cur.StartPage))
		}
	}

	if len(reasons) > 0 {
		return &InvalidSplitError{Reasons: reasons}
	}
	return nil
}
