package batch

// Status is the lifecycle state of a document batch.
type Status string

const (
	StatusUploaded              Status = "UPLOADED"
	StatusProcessing            Status = "PROCESSING"
	StatusSplitProposed         Status = "SPLIT_PROPOSED"
	StatusSplitting             Status = "SPLITTING"
	StatusSplitValidated        Status = "SPLIT_VALIDATED"
	StatusExtractingData        Status = "EXTRACTING_DATA"
	StatusDataValidationPending Status = "DATA_VALIDATION_PENDING"
	StatusCompleted             Status = "COMPLETED"
	StatusError                 Status = "ERROR"
)

// transitions is the single source of truth for legal status changes.
// Anything absent here is rejected; there are no call-site status checks.
var transitions = map[Status][]Status{
	StatusUploaded:       {StatusProcessing},
	StatusProcessing:     {StatusSplitProposed, StatusError},
	StatusSplitProposed:  {StatusSplitting},
	StatusSplitting:      {StatusSplitValidated, StatusCompleted, StatusError},
	StatusSplitValidated: {StatusExtractingData},
	StatusExtractingData: {StatusDataValidationPending, StatusError},
	StatusDataValidationPending: {
		StatusExtractingData, // per-invoice re-extraction
		StatusCompleted,
	},
	// Reprocess returns to the entry status of whichever stage failed.
	StatusError: {StatusUploaded, StatusSplitProposed, StatusSplitValidated, StatusProcessing},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status is stable until the next user action.
// Pollers may stop on first observation of any of these.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusSplitProposed,
		StatusSplitValidated, StatusDataValidationPending:
		return true
	}
	return false
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusSplitProposed, StatusSplitting,
		StatusSplitValidated, StatusExtractingData, StatusDataValidationPending,
		StatusCompleted, StatusError:
		return true
	}
	return false
}

// EntryStatus returns the status a batch must be reset to in order to
// re-run the given automated stage from scratch.
func EntryStatus(stage Status) Status {
	switch stage {
	case StatusProcessing:
		return StatusUploaded
	case StatusSplitting:
		return StatusSplitProposed
	case StatusExtractingData:
		return StatusSplitValidated
	}
	return stage
}
