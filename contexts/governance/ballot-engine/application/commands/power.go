package commands

import (
	"context"
	"log/slog"
	"strings"

	application "ballotbox/contexts/governance/ballot-engine/application"
	domainerrors "ballotbox/contexts/governance/ballot-engine/domain/errors"
	"ballotbox/contexts/governance/ballot-engine/ports"
)

// AssignPowerCommand is the write-model input for a single power assignment.
type AssignPowerCommand struct {
	Caller  string
	Account string
	Power   uint64
}

// BatchAssignPowerCommand applies many assignments as one atomic unit.
type BatchAssignPowerCommand struct {
	Caller   string
	Accounts []string
	Powers   []uint64
}

// PowerUseCase mutates the voting-power ledger. Both operations are
// admin-gated; assignment is an overwrite, so repeating a call with the same
// value has no additional effect.
type PowerUseCase struct {
	Ledger ports.PowerLedger
	Access application.AccessController
	Logger *slog.Logger
}

func (uc PowerUseCase) AssignVotingPower(ctx context.Context, cmd AssignPowerCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.Access.RequireAdmin(cmd.Caller); err != nil {
		logger.Warn("voting power assignment rejected",
			"event", "ballot_power_assign_unauthorized",
			"module", "governance/ballot-engine",
			"layer", "application",
			"caller", strings.TrimSpace(cmd.Caller),
		)
		return err
	}
	if err := uc.Ledger.SetVotingPower(ctx, cmd.Account, cmd.Power); err != nil {
		logger.Error("voting power assignment failed",
			"event", "ballot_power_assign_failed",
			"module", "governance/ballot-engine",
			"layer", "application",
			"account", strings.TrimSpace(cmd.Account),
			"error", err.Error(),
		)
		return err
	}
	logger.Info("voting power assigned",
		"event", "ballot_power_assigned",
		"module", "governance/ballot-engine",
		"layer", "application",
		"account", strings.TrimSpace(cmd.Account),
		"power", cmd.Power,
	)
	return nil
}

func (uc PowerUseCase) BatchAssignVotingPower(ctx context.Context, cmd BatchAssignPowerCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.Access.RequireAdmin(cmd.Caller); err != nil {
		logger.Warn("batch voting power assignment rejected",
			"event", "ballot_power_batch_unauthorized",
			"module", "governance/ballot-engine",
			"layer", "application",
			"caller", strings.TrimSpace(cmd.Caller),
		)
		return err
	}
	if len(cmd.Accounts) != len(cmd.Powers) {
		logger.Warn("batch voting power length mismatch",
			"event", "ballot_power_batch_length_mismatch",
			"module", "governance/ballot-engine",
			"layer", "application",
			"accounts", len(cmd.Accounts),
			"powers", len(cmd.Powers),
		)
		return domainerrors.ErrLengthMismatch
	}
	if err := uc.Ledger.SetVotingPowerBatch(ctx, cmd.Accounts, cmd.Powers); err != nil {
		logger.Error("batch voting power assignment failed",
			"event", "ballot_power_batch_failed",
			"module", "governance/ballot-engine",
			"layer", "application",
			"pairs", len(cmd.Accounts),
			"error", err.Error(),
		)
		return err
	}
	logger.Info("batch voting power assigned",
		"event", "ballot_power_batch_assigned",
		"module", "governance/ballot-engine",
		"layer", "application",
		"pairs", len(cmd.Accounts),
	)
	return nil
}
