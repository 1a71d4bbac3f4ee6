package ports

import (
	"context"
	"time"

	"ballotbox/contexts/governance/ballot-engine/domain/entities"
	contractsv1 "ballotbox/contracts/gen/events/v1"
)

// PollEvent is the outbound integration payload persisted to outbox alongside
// a poll mutation. Adapters resolve the assigned poll id before building the
// wire envelope, which is why creation events carry a zero PollID on the way
// in.
type PollEvent struct {
	EventID    string
	EventType  string
	PollID     uint64
	Actor      string
	OccurredAt time.Time
}

// VoteEvent is the outbound integration payload for a cast vote.
type VoteEvent struct {
	EventID     string
	EventType   string
	PollID      uint64
	Voter       string
	OptionIndex uint64
	Weight      uint64
	OccurredAt  time.Time
}

// PollRepository owns poll persistence and the transaction boundaries for
// poll writes. Every mutating method commits its state change and outbox row
// as one atomic unit, or leaves state untouched.
type PollRepository interface {
	// CreatePollWithOutbox assigns the next sequential poll id (starting at 1),
	// stores the record, appends it to both creation-order indices, and
	// persists the outbox event atomically. Returns the assigned id.
	CreatePollWithOutbox(ctx context.Context, poll entities.Poll, event PollEvent) (uint64, error)
	// CancelPollWithOutbox marks the poll canceled. It re-validates existence
	// and cancellation state under the write lock so concurrent cancels cannot
	// both succeed.
	CancelPollWithOutbox(ctx context.Context, pollID uint64, canceledAt time.Time, event PollEvent) error
	GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error)
	ListPolls(ctx context.Context) ([]entities.Poll, error)
	ListPollIDs(ctx context.Context) ([]uint64, error)
	ListPollIDsByCreator(ctx context.Context, creator string) ([]uint64, error)
	CountPolls(ctx context.Context) (uint64, error)
}

// BallotRepository owns vote receipts and tallies.
type BallotRepository interface {
	// CastVoteWithOutbox atomically inserts the receipt, adds its weight to
	// the poll tallies, and persists the outbox event. The receipt table is
	// unique per (poll, voter); a racing duplicate surfaces as ErrAlreadyVoted
	// and leaves tallies unchanged.
	CastVoteWithOutbox(ctx context.Context, receipt entities.VoteReceipt, event VoteEvent) error
	GetReceipt(ctx context.Context, pollID uint64, voter string) (entities.VoteReceipt, bool, error)
}

// PowerLedger maps accounts to non-negative integer voting weight. Absent
// accounts read as power 0. Assignment overwrites, it never accumulates.
type PowerLedger interface {
	SetVotingPower(ctx context.Context, account string, power uint64) error
	// SetVotingPowerBatch applies all pairs as one atomic unit; no reader may
	// observe a partially applied batch. Slices are index-aligned and already
	// length-checked by the caller.
	SetVotingPowerBatch(ctx context.Context, accounts []string, powers []uint64) error
	GetVotingPower(ctx context.Context, account string) (uint64, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a handler for a topic within a consumer group.
// Subscriptions live until the context is canceled.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

// Clock allows deterministic testing of status windows and timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
