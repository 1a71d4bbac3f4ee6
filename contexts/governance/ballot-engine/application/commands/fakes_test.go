package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ballotbox/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballotbox/contexts/governance/ballot-engine/domain/errors"
	"ballotbox/contexts/governance/ballot-engine/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type sequenceIDGen struct {
	next int
}

func (g *sequenceIDGen) NewID(_ context.Context) (string, error) {
	g.next++
	return fmt.Sprintf("event-%d", g.next), nil
}

// fakeEngineState backs the command use cases in tests with plain maps so
// assertions can inspect exactly what was persisted.
type fakeEngineState struct {
	polls      map[uint64]entities.Poll
	order      []uint64
	receipts   map[uint64]map[string]entities.VoteReceipt
	power      map[string]uint64
	nextPollID uint64
	pollEvents []ports.PollEvent
	voteEvents []ports.VoteEvent
}

func newFakeEngineState() *fakeEngineState {
	return &fakeEngineState{
		polls:    make(map[uint64]entities.Poll),
		receipts: make(map[uint64]map[string]entities.VoteReceipt),
		power:    make(map[string]uint64),
	}
}

func (s *fakeEngineState) CreatePollWithOutbox(_ context.Context, poll entities.Poll, event ports.PollEvent) (uint64, error) {
	s.nextPollID++
	poll.ID = s.nextPollID
	s.polls[poll.ID] = poll
	s.order = append(s.order, poll.ID)
	event.PollID = poll.ID
	s.pollEvents = append(s.pollEvents, event)
	return poll.ID, nil
}

func (s *fakeEngineState) CancelPollWithOutbox(_ context.Context, pollID uint64, canceledAt time.Time, event ports.PollEvent) error {
	poll, ok := s.polls[pollID]
	if !ok {
		return domainerrors.ErrPollNotFound
	}
	if poll.IsCanceled {
		return domainerrors.ErrAlreadyCanceled
	}
	poll.IsCanceled = true
	poll.UpdatedAt = canceledAt
	s.polls[pollID] = poll
	s.pollEvents = append(s.pollEvents, event)
	return nil
}

func (s *fakeEngineState) GetPoll(_ context.Context, pollID uint64) (entities.Poll, error) {
	poll, ok := s.polls[pollID]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return poll, nil
}

func (s *fakeEngineState) ListPolls(_ context.Context) ([]entities.Poll, error) {
	items := make([]entities.Poll, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.polls[id])
	}
	return items, nil
}

func (s *fakeEngineState) ListPollIDs(_ context.Context) ([]uint64, error) {
	return append([]uint64(nil), s.order...), nil
}

func (s *fakeEngineState) ListPollIDsByCreator(_ context.Context, creator string) ([]uint64, error) {
	ids := make([]uint64, 0)
	for _, id := range s.order {
		if strings.EqualFold(s.polls[id].Creator, creator) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *fakeEngineState) CountPolls(_ context.Context) (uint64, error) {
	return uint64(len(s.order)), nil
}

func (s *fakeEngineState) CastVoteWithOutbox(_ context.Context, receipt entities.VoteReceipt, event ports.VoteEvent) error {
	poll, ok := s.polls[receipt.PollID]
	if !ok {
		return domainerrors.ErrPollNotFound
	}
	voter := strings.ToLower(strings.TrimSpace(receipt.Voter))
	byVoter, ok := s.receipts[receipt.PollID]
	if !ok {
		byVoter = make(map[string]entities.VoteReceipt)
		s.receipts[receipt.PollID] = byVoter
	}
	if _, voted := byVoter[voter]; voted {
		return domainerrors.ErrAlreadyVoted
	}
	byVoter[voter] = receipt
	poll.VoteCounts = append([]uint64(nil), poll.VoteCounts...)
	poll.VoteCounts[receipt.OptionIndex] += receipt.Weight
	poll.TotalVotes += receipt.Weight
	s.polls[receipt.PollID] = poll
	s.voteEvents = append(s.voteEvents, event)
	return nil
}

func (s *fakeEngineState) GetReceipt(_ context.Context, pollID uint64, voter string) (entities.VoteReceipt, bool, error) {
	receipt, ok := s.receipts[pollID][strings.ToLower(strings.TrimSpace(voter))]
	return receipt, ok, nil
}

func (s *fakeEngineState) SetVotingPower(_ context.Context, account string, power uint64) error {
	s.power[strings.ToLower(strings.TrimSpace(account))] = power
	return nil
}

func (s *fakeEngineState) SetVotingPowerBatch(_ context.Context, accounts []string, powers []uint64) error {
	for i, account := range accounts {
		s.power[strings.ToLower(strings.TrimSpace(account))] = powers[i]
	}
	return nil
}

func (s *fakeEngineState) GetVotingPower(_ context.Context, account string) (uint64, error) {
	return s.power[strings.ToLower(strings.TrimSpace(account))], nil
}

var _ ports.PollRepository = (*fakeEngineState)(nil)
var _ ports.BallotRepository = (*fakeEngineState)(nil)
var _ ports.PowerLedger = (*fakeEngineState)(nil)
