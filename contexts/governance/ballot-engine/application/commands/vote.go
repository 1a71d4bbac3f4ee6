package commands

import (
	"context"
	"log/slog"
	"strings"

	application "ballotbox/contexts/governance/ballot-engine/application"
	"ballotbox/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballotbox/contexts/governance/ballot-engine/domain/errors"
	"ballotbox/contexts/governance/ballot-engine/ports"
)

// VoteCommand is the write-model input for casting one weighted vote.
type VoteCommand struct {
	Caller      string
	PollID      uint64
	OptionIndex uint64
}

// VoteUseCase validates and applies vote casting. Preconditions are checked
// strictly in order (existence, active window, option range, voting power,
// no prior receipt) and no mutation happens before every check passes. A
// canceled, pending, or ended poll reports ErrPollNotActive, never anything
// more specific.
type VoteUseCase struct {
	Polls   ports.PollRepository
	Ballots ports.BallotRepository
	Ledger  ports.PowerLedger
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func (uc VoteUseCase) Vote(ctx context.Context, cmd VoteCommand) (entities.VoteReceipt, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)

	poll, err := uc.Polls.GetPoll(ctx, cmd.PollID)
	if err != nil {
		return entities.VoteReceipt{}, err
	}

	now := uc.Clock.Now().UTC()
	if !entities.IsActive(poll, now) {
		logger.Warn("vote rejected, poll not active",
			"event", "ballot_vote_not_active",
			"module", "governance/ballot-engine",
			"layer", "application",
			"poll_id", cmd.PollID,
			"voter", caller,
			"status", string(entities.ComputeStatus(poll, now)),
		)
		return entities.VoteReceipt{}, domainerrors.ErrPollNotActive
	}
	if cmd.OptionIndex >= uint64(len(poll.Options)) {
		return entities.VoteReceipt{}, domainerrors.ErrInvalidOption
	}

	power, err := uc.Ledger.GetVotingPower(ctx, caller)
	if err != nil {
		return entities.VoteReceipt{}, err
	}
	if power == 0 {
		logger.Warn("vote rejected, no voting power",
			"event", "ballot_vote_no_power",
			"module", "governance/ballot-engine",
			"layer", "application",
			"poll_id", cmd.PollID,
			"voter", caller,
		)
		return entities.VoteReceipt{}, domainerrors.ErrNoVotingPower
	}

	if _, voted, err := uc.Ballots.GetReceipt(ctx, cmd.PollID, caller); err != nil {
		return entities.VoteReceipt{}, err
	} else if voted {
		return entities.VoteReceipt{}, domainerrors.ErrAlreadyVoted
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.VoteReceipt{}, err
	}

	receipt := entities.VoteReceipt{
		PollID:      cmd.PollID,
		Voter:       caller,
		OptionIndex: cmd.OptionIndex,
		Weight:      power,
		CastAt:      now,
	}
	if err := uc.Ballots.CastVoteWithOutbox(ctx, receipt, ports.VoteEvent{
		EventID:     eventID,
		EventType:   EventTypeVoteCast,
		PollID:      cmd.PollID,
		Voter:       caller,
		OptionIndex: cmd.OptionIndex,
		Weight:      power,
		OccurredAt:  now,
	}); err != nil {
		logger.Error("vote persistence failed",
			"event", "ballot_vote_cast_failed",
			"module", "governance/ballot-engine",
			"layer", "application",
			"poll_id", cmd.PollID,
			"voter", caller,
			"error", err.Error(),
		)
		return entities.VoteReceipt{}, err
	}

	logger.Info("vote cast",
		"event", "ballot_vote_cast",
		"module", "governance/ballot-engine",
		"layer", "application",
		"poll_id", cmd.PollID,
		"voter", caller,
		"option_index", cmd.OptionIndex,
		"weight", power,
	)
	return receipt, nil
}
