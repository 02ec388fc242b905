package reconcile

import (
	"time"

	"github.com/eshaffer321/ynabsync/internal/filter"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
)

// Summary reports what a run did
type Summary struct {
	RunID              string
	Master             string
	Currency           string
	Since              *ynab.Date
	DryRun             bool
	StartedAt          time.Time
	FinishedAt         time.Time
	Planned            int
	Created            int
	SkippedAsDuplicate int
	Failed             int
	Excluded           map[filter.Reason]int
	Requests           []*Request
	Failures           []*CreationError
}

func newSummary(plan *Plan, dryRun bool, started time.Time) *Summary {
	excluded := make(map[filter.Reason]int, len(plan.Excluded))
	for reason, n := range plan.Excluded {
		excluded[reason] = n
	}
	return &Summary{
		RunID:              plan.RunID,
		Master:             plan.Master.Name,
		Currency:           plan.Master.ISOCode(),
		Since:              plan.Since,
		DryRun:             dryRun,
		StartedAt:          started,
		Planned:            len(plan.Requests),
		SkippedAsDuplicate: plan.Excluded[filter.ReasonAlreadyMirrored],
		Excluded:           excluded,
		Requests:           plan.Requests,
	}
}

// Duration is how long the run took
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// HasFailures reports whether any creation failed
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}
