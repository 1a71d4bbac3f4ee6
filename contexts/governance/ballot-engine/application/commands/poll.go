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

// CreatePollCommand is the write-model input for poll creation. StartTime may
// lie in the past: a poll can be created already active or already ended.
type CreatePollCommand struct {
	Caller      string
	Title       string
	Description string
	Options     []string
	StartTime   int64
	EndTime     int64
}

// CancelPollCommand requests cancellation of a poll. Allowed for the poll
// creator and for the admin.
type CancelPollCommand struct {
	Caller string
	PollID uint64
}

// PollUseCase orchestrates poll lifecycle commands. Poll creation is open to
// any resolved caller; cancellation is creator-or-admin.
type PollUseCase struct {
	Polls  ports.PollRepository
	Access application.AccessController
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc PollUseCase) CreatePoll(ctx context.Context, cmd CreatePollCommand) (uint64, error) {
	logger := application.ResolveLogger(uc.Logger)

	options := make([]string, 0, len(cmd.Options))
	for _, option := range cmd.Options {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		options = append(options, option)
	}
	if len(options) < 2 {
		logger.Warn("poll creation rejected, not enough options",
			"event", "ballot_poll_create_invalid_options",
			"module", "governance/ballot-engine",
			"layer", "application",
			"caller", strings.TrimSpace(cmd.Caller),
			"options", len(options),
		)
		return 0, domainerrors.ErrInvalidOptions
	}
	if cmd.StartTime >= cmd.EndTime {
		logger.Warn("poll creation rejected, invalid time range",
			"event", "ballot_poll_create_invalid_time_range",
			"module", "governance/ballot-engine",
			"layer", "application",
			"caller", strings.TrimSpace(cmd.Caller),
			"start_time", cmd.StartTime,
			"end_time", cmd.EndTime,
		)
		return 0, domainerrors.ErrInvalidTimeRange
	}

	now := uc.Clock.Now().UTC()
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return 0, err
	}

	poll := entities.Poll{
		Title:       strings.TrimSpace(cmd.Title),
		Description: strings.TrimSpace(cmd.Description),
		Options:     options,
		StartTime:   cmd.StartTime,
		EndTime:     cmd.EndTime,
		Creator:     strings.TrimSpace(cmd.Caller),
		VoteCounts:  make([]uint64, len(options)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	pollID, err := uc.Polls.CreatePollWithOutbox(ctx, poll, ports.PollEvent{
		EventID:    eventID,
		EventType:  EventTypePollCreated,
		Actor:      poll.Creator,
		OccurredAt: now,
	})
	if err != nil {
		logger.Error("poll creation failed",
			"event", "ballot_poll_create_failed",
			"module", "governance/ballot-engine",
			"layer", "application",
			"caller", poll.Creator,
			"error", err.Error(),
		)
		return 0, err
	}

	logger.Info("poll created",
		"event", "ballot_poll_created",
		"module", "governance/ballot-engine",
		"layer", "application",
		"poll_id", pollID,
		"creator", poll.Creator,
		"options", len(options),
	)
	return pollID, nil
}

func (uc PollUseCase) CancelPoll(ctx context.Context, cmd CancelPollCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	poll, err := uc.Polls.GetPoll(ctx, cmd.PollID)
	if err != nil {
		return err
	}
	if poll.IsCanceled {
		return domainerrors.ErrAlreadyCanceled
	}
	if !strings.EqualFold(strings.TrimSpace(cmd.Caller), poll.Creator) && !uc.Access.IsAdmin(cmd.Caller) {
		logger.Warn("poll cancellation rejected",
			"event", "ballot_poll_cancel_unauthorized",
			"module", "governance/ballot-engine",
			"layer", "application",
			"poll_id", cmd.PollID,
			"caller", strings.TrimSpace(cmd.Caller),
		)
		return domainerrors.ErrUnauthorized
	}

	now := uc.Clock.Now().UTC()
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}

	if err := uc.Polls.CancelPollWithOutbox(ctx, cmd.PollID, now, ports.PollEvent{
		EventID:    eventID,
		EventType:  EventTypePollCanceled,
		PollID:     cmd.PollID,
		Actor:      strings.TrimSpace(cmd.Caller),
		OccurredAt: now,
	}); err != nil {
		return err
	}

	logger.Info("poll canceled",
		"event", "ballot_poll_canceled",
		"module", "governance/ballot-engine",
		"layer", "application",
		"poll_id", cmd.PollID,
		"caller", strings.TrimSpace(cmd.Caller),
	)
	return nil
}
