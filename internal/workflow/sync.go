package workflow

import "itad-service/internal/model"

// SyncRule describes how a job status milestone propagates onto the linked
// booking: the booking advances to Next only if it currently sits at
// Requires. A mismatch means the booking moved independently or the link is
// stale, and the sync is silently skipped. Job progress is authoritative for
// operational state; the booking status is a coarser projection.
type SyncRule struct {
	Requires model.BookingStatus
	Next     model.BookingStatus
}

var bookingSyncRules = map[model.JobStatus]SyncRule{
	model.JobStatusCollected: {Requires: model.BookingStatusScheduled, Next: model.BookingStatusCollected},
	model.JobStatusSanitised: {Requires: model.BookingStatusCollected, Next: model.BookingStatusSanitised},
	model.JobStatusGraded:    {Requires: model.BookingStatusSanitised, Next: model.BookingStatusGraded},
	model.JobStatusCompleted: {Requires: model.BookingStatusGraded, Next: model.BookingStatusCompleted},
}

// SyncRuleFor returns the booking propagation rule for a job status, if one
// exists. Job statuses without a rule never touch the booking.
func SyncRuleFor(status model.JobStatus) (SyncRule, bool) {
	rule, ok := bookingSyncRules[status]
	return rule, ok
}
