package commands

// Event types produced by the ballot engine. Envelopes are partitioned by
// poll id for stable ordering on poll-scoped consumers.
const (
	EventTypePollCreated  = "governance.poll.created"
	EventTypePollCanceled = "governance.poll.canceled"
	EventTypeVoteCast     = "governance.vote.cast"
)
