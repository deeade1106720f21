package batch

import "testing"

func TestHappyPathTransitions(t *testing.T) {
	path := []Status{
		StatusUploaded,
		StatusProcessing,
		StatusSplitProposed,
		StatusSplitting,
		StatusSplitValidated,
		StatusExtractingData,
		StatusDataValidationPending,
		StatusCompleted,
	}
	for i := 1; i < len(path); i++ {
		if !CanTransition(path[i-1], path[i]) {
			t.Errorf("transition %s -> %s rejected", path[i-1], path[i])
		}
	}
}

func TestAutomatedStagesCanFail(t *testing.T) {
	for _, stage := range []Status{StatusProcessing, StatusSplitting, StatusExtractingData} {
		if !CanTransition(stage, StatusError) {
			t.Errorf("transition %s -> ERROR rejected", stage)
		}
	}
	// Human-decision statuses never fail into ERROR.
	for _, s := range []Status{StatusUploaded, StatusSplitProposed, StatusDataValidationPending, StatusCompleted} {
		if CanTransition(s, StatusError) {
			t.Errorf("transition %s -> ERROR allowed", s)
		}
	}
}

func TestNoSkippingStages(t *testing.T) {
	bad := []struct{ from, to Status }{
		{StatusUploaded, StatusSplitProposed},
		{StatusUploaded, StatusCompleted},
		{StatusSplitProposed, StatusExtractingData},
		{StatusSplitValidated, StatusCompleted},
		{StatusCompleted, StatusUploaded},
		{StatusCompleted, StatusProcessing},
	}
	for _, tc := range bad {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("transition %s -> %s allowed", tc.from, tc.to)
		}
	}
}

func TestReextractionFromValidationPending(t *testing.T) {
	if !CanTransition(StatusDataValidationPending, StatusExtractingData) {
		t.Error("re-extraction from DATA_VALIDATION_PENDING rejected")
	}
}

func TestTerminalStatuses(t *testing.T) {
	stable := map[Status]bool{
		StatusCompleted:             true,
		StatusError:                 true,
		StatusSplitProposed:         true,
		StatusSplitValidated:        true,
		StatusDataValidationPending: true,
	}
	all := []Status{
		StatusUploaded, StatusProcessing, StatusSplitProposed, StatusSplitting,
		StatusSplitValidated, StatusExtractingData, StatusDataValidationPending,
		StatusCompleted, StatusError,
	}
	for _, s := range all {
		if s.Terminal() != stable[s] {
			t.Errorf("Terminal(%s) = %v, want %v", s, s.Terminal(), stable[s])
		}
	}
}

func TestEntryStatus(t *testing.T) {
	cases := map[Status]Status{
		StatusProcessing:     StatusUploaded,
		StatusSplitting:      StatusSplitProposed,
		StatusExtractingData: StatusSplitValidated,
	}
	for stage, want := range cases {
		if got := EntryStatus(stage); got != want {
			t.Errorf("EntryStatus(%s) = %s, want %s", stage, got, want)
		}
	}
}

func TestValid(t *testing.T) {
	if !StatusUploaded.Valid() {
		t.Error("UPLOADED reported invalid")
	}
	if Status("BOGUS").Valid() {
		t.Error("unknown status reported valid")
	}
}
