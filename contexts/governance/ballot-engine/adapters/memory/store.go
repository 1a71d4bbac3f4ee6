package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"ballotbox/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballotbox/contexts/governance/ballot-engine/domain/errors"
	"ballotbox/contexts/governance/ballot-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store keeps the whole engine state behind one RWMutex: every mutating
// operation runs to completion under the write lock, so no interleaving is
// observable and tallies can never drift from their receipts. Readers take
// the read lock and always see a committed snapshot.
type Store struct {
	mu sync.RWMutex

	polls          map[uint64]entities.Poll
	pollOrder      []uint64
	pollsByCreator map[string][]uint64
	receipts       map[uint64]map[string]entities.VoteReceipt
	power          map[string]uint64
	outbox         []outboxRecord
	nextPollID     uint64

	nowFn func() time.Time
}

func NewStore() *Store {
	return &Store{
		polls:          make(map[uint64]entities.Poll),
		pollsByCreator: make(map[string][]uint64),
		receipts:       make(map[uint64]map[string]entities.VoteReceipt),
		power:          make(map[string]uint64),
		nowFn:          func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the store clock; tests use it to pin time.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) CreatePollWithOutbox(_ context.Context, poll entities.Poll, event ports.PollEvent) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll.ID = s.nextPollID + 1
	poll.Options = append([]string(nil), poll.Options...)
	poll.VoteCounts = make([]uint64, len(poll.Options))
	poll.Creator = strings.TrimSpace(poll.Creator)

	// Marshal before touching any index so a failure leaves no poll
	// without its paired outbox row.
	event.PollID = poll.ID
	payload, err := marshalPollEnvelope(event)
	if err != nil {
		return 0, err
	}

	creatorKey := accountKey(poll.Creator)
	s.nextPollID = poll.ID
	s.polls[poll.ID] = poll
	s.pollOrder = append(s.pollOrder, poll.ID)
	s.pollsByCreator[creatorKey] = append(s.pollsByCreator[creatorKey], poll.ID)
	s.appendOutboxLocked(event.EventID, event.EventType, poll.ID, payload, event.OccurredAt)
	return poll.ID, nil
}

func (s *Store) CancelPollWithOutbox(_ context.Context, pollID uint64, canceledAt time.Time, event ports.PollEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return domainerrors.ErrPollNotFound
	}
	if poll.IsCanceled {
		return domainerrors.ErrAlreadyCanceled
	}
	payload, err := marshalPollEnvelope(event)
	if err != nil {
		return err
	}

	poll.IsCanceled = true
	poll.UpdatedAt = canceledAt.UTC()
	s.polls[pollID] = poll
	s.appendOutboxLocked(event.EventID, event.EventType, pollID, payload, event.OccurredAt)
	return nil
}

func (s *Store) GetPoll(_ context.Context, pollID uint64) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[pollID]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return clonePoll(poll), nil
}

func (s *Store) ListPolls(_ context.Context) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Poll, 0, len(s.pollOrder))
	for _, id := range s.pollOrder {
		items = append(items, clonePoll(s.polls[id]))
	}
	return items, nil
}

func (s *Store) ListPollIDs(_ context.Context) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]uint64(nil), s.pollOrder...), nil
}

func (s *Store) ListPollIDsByCreator(_ context.Context, creator string) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]uint64(nil), s.pollsByCreator[accountKey(creator)]...), nil
}

func (s *Store) CountPolls(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.pollOrder)), nil
}

func (s *Store) CastVoteWithOutbox(_ context.Context, receipt entities.VoteReceipt, event ports.VoteEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[receipt.PollID]
	if !ok {
		return domainerrors.ErrPollNotFound
	}
	if poll.IsCanceled {
		return domainerrors.ErrPollNotActive
	}
	if receipt.OptionIndex >= uint64(len(poll.Options)) {
		return domainerrors.ErrInvalidOption
	}

	voterKey := accountKey(receipt.Voter)
	byVoter, ok := s.receipts[receipt.PollID]
	if !ok {
		byVoter = make(map[string]entities.VoteReceipt)
		s.receipts[receipt.PollID] = byVoter
	}
	if _, voted := byVoter[voterKey]; voted {
		return domainerrors.ErrAlreadyVoted
	}

	payload, err := marshalVoteEnvelope(event)
	if err != nil {
		return err
	}

	byVoter[voterKey] = receipt
	poll.VoteCounts = append([]uint64(nil), poll.VoteCounts...)
	poll.VoteCounts[receipt.OptionIndex] += receipt.Weight
	poll.TotalVotes += receipt.Weight
	poll.UpdatedAt = receipt.CastAt.UTC()
	s.polls[receipt.PollID] = poll

	s.appendOutboxLocked(event.EventID, event.EventType, receipt.PollID, payload, event.OccurredAt)
	return nil
}

func (s *Store) GetReceipt(_ context.Context, pollID uint64, voter string) (entities.VoteReceipt, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	receipt, ok := s.receipts[pollID][accountKey(voter)]
	if !ok {
		return entities.VoteReceipt{}, false, nil
	}
	return receipt, true, nil
}

func (s *Store) SetVotingPower(_ context.Context, account string, power uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.power[accountKey(account)] = power
	return nil
}

func (s *Store) SetVotingPowerBatch(_ context.Context, accounts []string, powers []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, account := range accounts {
		s.power[accountKey(account)] = powers[i]
	}
	return nil
}

func (s *Store) GetVotingPower(_ context.Context, account string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.power[accountKey(account)], nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.OutboxMessage, 0, limit)
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		items = append(items, record.message)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			s.outbox[i].published = true
			return nil
		}
	}
	return nil
}

func (s *Store) appendOutboxLocked(outboxID, eventType string, pollID uint64, payload []byte, createdAt time.Time) {
	s.outbox = append(s.outbox, outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    eventType,
			PartitionKey: partitionKey(pollID),
			Payload:      payload,
			CreatedAt:    createdAt.UTC(),
		},
	})
}

// Account identities compare case-insensitively across the engine.
func accountKey(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}

func clonePoll(poll entities.Poll) entities.Poll {
	poll.Options = append([]string(nil), poll.Options...)
	poll.VoteCounts = append([]uint64(nil), poll.VoteCounts...)
	return poll
}

var _ ports.PollRepository = (*Store)(nil)
var _ ports.BallotRepository = (*Store)(nil)
var _ ports.PowerLedger = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
