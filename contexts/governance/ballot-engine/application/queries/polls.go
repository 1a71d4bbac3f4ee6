package queries

import (
	"context"
	"strings"

	application "ballotbox/contexts/governance/ballot-engine/application"
	"ballotbox/contexts/governance/ballot-engine/domain/entities"
	"ballotbox/contexts/governance/ballot-engine/ports"
)

// SystemInfo is the read model for the deployment-wide facts the gateway
// exposes: the fixed admin identity and how many polls exist.
type SystemInfo struct {
	Admin     string
	PollCount uint64
}

// PollQueries composes poll, receipt, and ledger snapshots with the injected
// clock. Reads never mutate state and may run concurrently with each other.
type PollQueries struct {
	Polls   ports.PollRepository
	Ballots ports.BallotRepository
	Ledger  ports.PowerLedger
	Access  application.AccessController
	Clock   ports.Clock
}

func (uc PollQueries) GetPoll(ctx context.Context, pollID uint64) (entities.PollSnapshot, error) {
	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.PollSnapshot{}, err
	}
	return uc.snapshot(poll), nil
}

func (uc PollQueries) ListPolls(ctx context.Context) ([]entities.PollSnapshot, error) {
	polls, err := uc.Polls.ListPolls(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]entities.PollSnapshot, 0, len(polls))
	for _, poll := range polls {
		items = append(items, uc.snapshot(poll))
	}
	return items, nil
}

func (uc PollQueries) GetPollResults(ctx context.Context, pollID uint64) (entities.PollResults, error) {
	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.PollResults{}, err
	}
	return entities.PollResults{
		PollID:     poll.ID,
		Options:    poll.Options,
		VoteCounts: poll.VoteCounts,
		TotalVotes: poll.TotalVotes,
	}, nil
}

func (uc PollQueries) GetPollStatus(ctx context.Context, pollID uint64) (entities.Status, error) {
	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return "", err
	}
	return entities.ComputeStatus(poll, uc.Clock.Now()), nil
}

func (uc PollQueries) ListPollIDs(ctx context.Context) ([]uint64, error) {
	return uc.Polls.ListPollIDs(ctx)
}

func (uc PollQueries) ListPollIDsByCreator(ctx context.Context, creator string) ([]uint64, error) {
	return uc.Polls.ListPollIDsByCreator(ctx, strings.TrimSpace(creator))
}

func (uc PollQueries) GetVotingPower(ctx context.Context, account string) (uint64, error) {
	return uc.Ledger.GetVotingPower(ctx, strings.TrimSpace(account))
}

// GetVoterStatus reports whether the account voted on the poll, which option,
// and the account's current ledger power. Non-voters report the
// NoVoteOptionIndex sentinel, never a real option index.
func (uc PollQueries) GetVoterStatus(ctx context.Context, pollID uint64, account string) (entities.VoterStatus, error) {
	account = strings.TrimSpace(account)
	if _, err := uc.Polls.GetPoll(ctx, pollID); err != nil {
		return entities.VoterStatus{}, err
	}
	power, err := uc.Ledger.GetVotingPower(ctx, account)
	if err != nil {
		return entities.VoterStatus{}, err
	}
	receipt, voted, err := uc.Ballots.GetReceipt(ctx, pollID, account)
	if err != nil {
		return entities.VoterStatus{}, err
	}
	if !voted {
		return entities.VoterStatus{
			HasVoted:    false,
			OptionIndex: entities.NoVoteOptionIndex,
			VotingPower: power,
		}, nil
	}
	return entities.VoterStatus{
		HasVoted:    true,
		OptionIndex: int64(receipt.OptionIndex),
		VotingPower: power,
	}, nil
}

func (uc PollQueries) GetSystemInfo(ctx context.Context) (SystemInfo, error) {
	count, err := uc.Polls.CountPolls(ctx)
	if err != nil {
		return SystemInfo{}, err
	}
	return SystemInfo{
		Admin:     uc.Access.Admin(),
		PollCount: count,
	}, nil
}

func (uc PollQueries) snapshot(poll entities.Poll) entities.PollSnapshot {
	now := uc.Clock.Now()
	status := entities.ComputeStatus(poll, now)
	return entities.PollSnapshot{
		Poll:     poll,
		Status:   status,
		IsActive: status == entities.StatusActive,
	}
}
