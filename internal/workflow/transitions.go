// Package workflow defines the status state machines for bookings and jobs.
//
// Booking status graph (coarse, customer-facing):
//
//	created ──► scheduled ──► collected ──► sanitised ──► graded ──► completed
//	   │            │
//	   └────────────┴──► cancelled
//
// Job status graph (fine-grained, driver-facing):
//
//	booked ──► routed ──► en_route ──► arrived ──► collected ──► warehouse ──► sanitised ──► graded ──► completed
//	   └──────────────────► en_route                    └──────────────────────────────────────────────► completed
//
// completed and cancelled are terminal in both graphs. Jobs have no inbound
// edge to cancelled; job cancellation is an administrative operation outside
// the transition graph (see JobService.Cancel).
package workflow

import "itad-service/internal/model"

// bookingTransitions lists every allowed (from → to) booking status pair.
var bookingTransitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingStatusCreated:   {model.BookingStatusScheduled, model.BookingStatusCancelled},
	model.BookingStatusScheduled: {model.BookingStatusCollected, model.BookingStatusCancelled},
	model.BookingStatusCollected: {model.BookingStatusSanitised},
	model.BookingStatusSanitised: {model.BookingStatusGraded},
	model.BookingStatusGraded:    {model.BookingStatusCompleted},
	// completed and cancelled are terminal
}

// jobTransitions lists every allowed (from → to) job status pair.
var jobTransitions = map[model.JobStatus][]model.JobStatus{
	model.JobStatusBooked:    {model.JobStatusRouted, model.JobStatusEnRoute},
	model.JobStatusRouted:    {model.JobStatusEnRoute},
	model.JobStatusEnRoute:   {model.JobStatusArrived},
	model.JobStatusArrived:   {model.JobStatusCollected},
	model.JobStatusCollected: {model.JobStatusWarehouse, model.JobStatusCompleted},
	model.JobStatusWarehouse: {model.JobStatusSanitised},
	model.JobStatusSanitised: {model.JobStatusGraded},
	model.JobStatusGraded:    {model.JobStatusCompleted},
	// completed and cancelled are terminal
}

// IsValidBookingTransition reports whether moving from → to is permitted by
// the booking state machine. Same-state moves are always valid so callers
// can retry idempotently; unknown from values have no successors.
func IsValidBookingTransition(from, to model.BookingStatus) bool {
	if from == to {
		return true
	}
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsValidJobTransition reports whether moving from → to is permitted by the
// job state machine. Same-state moves are always valid.
func IsValidJobTransition(from, to model.JobStatus) bool {
	if from == to {
		return true
	}
	for _, s := range jobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
