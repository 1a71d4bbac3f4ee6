package entities

import "time"

// NoVoteOptionIndex is returned as the option index for accounts that hold no
// receipt on a poll. It is distinct from every valid option index, so callers
// must never treat it as a real choice.
const NoVoteOptionIndex int64 = -1

type Poll struct {
	ID          uint64
	Title       string
	Description string
	Options     []string
	StartTime   int64 // unix seconds, inclusive
	EndTime     int64 // unix seconds, inclusive
	Creator     string
	IsCanceled  bool
	VoteCounts  []uint64 // one entry per option, weight sums
	TotalVotes  uint64   // always equals the sum of VoteCounts
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VoteReceipt is the permanent record that an account voted on a poll. The
// Weight field snapshots the voter's ledger power at cast time and is never
// revised by later power reassignment.
type VoteReceipt struct {
	PollID      uint64
	Voter       string
	OptionIndex uint64
	Weight      uint64
	CastAt      time.Time
}

type PollResults struct {
	PollID     uint64
	Options    []string
	VoteCounts []uint64
	TotalVotes uint64
}

// VoterStatus is the read model for one account's participation in a poll.
// OptionIndex is NoVoteOptionIndex when HasVoted is false.
type VoterStatus struct {
	HasVoted    bool
	OptionIndex int64
	VotingPower uint64
}

// PollSnapshot pairs a poll record with its status derived at read time.
type PollSnapshot struct {
	Poll
	Status   Status
	IsActive bool
}
