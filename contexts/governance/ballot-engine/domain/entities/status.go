package entities

import "time"

type Status string

const (
	StatusPending  Status = "Pending"
	StatusActive   Status = "Active"
	StatusEnded    Status = "Ended"
	StatusCanceled Status = "Canceled"
)

// ComputeStatus derives the lifecycle status of a poll at the given instant.
// Cancellation is terminal and takes precedence over the time window, so a
// canceled poll reports Canceled even when now falls inside [start, end].
func ComputeStatus(poll Poll, now time.Time) Status {
	switch {
	case poll.IsCanceled:
		return StatusCanceled
	case now.Unix() < poll.StartTime:
		return StatusPending
	case now.Unix() > poll.EndTime:
		return StatusEnded
	default:
		return StatusActive
	}
}

// IsActive reports whether votes are accepted on the poll at the given instant.
func IsActive(poll Poll, now time.Time) bool {
	return ComputeStatus(poll, now) == StatusActive
}
