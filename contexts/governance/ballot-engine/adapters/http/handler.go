package httpadapter

import (
	"context"
	"log/slog"

	"ballotbox/contexts/governance/ballot-engine/application/commands"
	"ballotbox/contexts/governance/ballot-engine/application/queries"
	"ballotbox/contexts/governance/ballot-engine/domain/entities"
	httptransport "ballotbox/contexts/governance/ballot-engine/transport/http"
)

type Handler struct {
	Power  commands.PowerUseCase
	Polls  commands.PollUseCase
	Votes  commands.VoteUseCase
	Reads  queries.PollQueries
	Logger *slog.Logger
}

func (h Handler) CreatePollHandler(ctx context.Context, caller string, req httptransport.CreatePollRequest) (httptransport.CreatePollResponse, error) {
	pollID, err := h.Polls.CreatePoll(ctx, commands.CreatePollCommand{
		Caller:      caller,
		Title:       req.Title,
		Description: req.Description,
		Options:     req.Options,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		return httptransport.CreatePollResponse{}, err
	}
	return httptransport.CreatePollResponse{PollID: pollID}, nil
}

func (h Handler) CancelPollHandler(ctx context.Context, caller string, pollID uint64) error {
	return h.Polls.CancelPoll(ctx, commands.CancelPollCommand{
		Caller: caller,
		PollID: pollID,
	})
}

func (h Handler) GetPollHandler(ctx context.Context, pollID uint64) (httptransport.PollResponse, error) {
	snapshot, err := h.Reads.GetPoll(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(snapshot), nil
}

func (h Handler) ListPollsHandler(ctx context.Context) (httptransport.PollListResponse, error) {
	snapshots, err := h.Reads.ListPolls(ctx)
	if err != nil {
		return httptransport.PollListResponse{}, err
	}
	polls := make([]httptransport.PollResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		polls = append(polls, mapPoll(snapshot))
	}
	return httptransport.PollListResponse{Polls: polls}, nil
}

func (h Handler) PollResultsHandler(ctx context.Context, pollID uint64) (httptransport.PollResultsResponse, error) {
	results, err := h.Reads.GetPollResults(ctx, pollID)
	if err != nil {
		return httptransport.PollResultsResponse{}, err
	}
	return httptransport.PollResultsResponse{
		PollID:     results.PollID,
		Options:    results.Options,
		VoteCounts: results.VoteCounts,
		TotalVotes: results.TotalVotes,
	}, nil
}

func (h Handler) PollStatusHandler(ctx context.Context, pollID uint64) (httptransport.PollStatusResponse, error) {
	status, err := h.Reads.GetPollStatus(ctx, pollID)
	if err != nil {
		return httptransport.PollStatusResponse{}, err
	}
	return httptransport.PollStatusResponse{
		PollID: pollID,
		Status: string(status),
	}, nil
}

func (h Handler) AllPollIDsHandler(ctx context.Context) (httptransport.PollIDsResponse, error) {
	ids, err := h.Reads.ListPollIDs(ctx)
	if err != nil {
		return httptransport.PollIDsResponse{}, err
	}
	return httptransport.PollIDsResponse{PollIDs: ids}, nil
}

func (h Handler) PollIDsByCreatorHandler(ctx context.Context, creator string) (httptransport.PollIDsResponse, error) {
	ids, err := h.Reads.ListPollIDsByCreator(ctx, creator)
	if err != nil {
		return httptransport.PollIDsResponse{}, err
	}
	return httptransport.PollIDsResponse{PollIDs: ids}, nil
}

func (h Handler) VoteHandler(ctx context.Context, caller string, pollID uint64, req httptransport.VoteRequest) (httptransport.VoteResponse, error) {
	receipt, err := h.Votes.Vote(ctx, commands.VoteCommand{
		Caller:      caller,
		PollID:      pollID,
		OptionIndex: req.OptionIndex,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		PollID:      receipt.PollID,
		Voter:       receipt.Voter,
		OptionIndex: receipt.OptionIndex,
		Weight:      receipt.Weight,
	}, nil
}

func (h Handler) VoterStatusHandler(ctx context.Context, pollID uint64, account string) (httptransport.VoterStatusResponse, error) {
	status, err := h.Reads.GetVoterStatus(ctx, pollID, account)
	if err != nil {
		return httptransport.VoterStatusResponse{}, err
	}
	return httptransport.VoterStatusResponse{
		HasVoted:    status.HasVoted,
		OptionIndex: status.OptionIndex,
		VotingPower: status.VotingPower,
	}, nil
}

func (h Handler) AssignPowerHandler(ctx context.Context, caller string, req httptransport.AssignPowerRequest) error {
	return h.Power.AssignVotingPower(ctx, commands.AssignPowerCommand{
		Caller:  caller,
		Account: req.Account,
		Power:   req.Power,
	})
}

func (h Handler) BatchAssignPowerHandler(ctx context.Context, caller string, req httptransport.BatchAssignPowerRequest) error {
	return h.Power.BatchAssignVotingPower(ctx, commands.BatchAssignPowerCommand{
		Caller:   caller,
		Accounts: req.Accounts,
		Powers:   req.Powers,
	})
}

func (h Handler) VotingPowerHandler(ctx context.Context, account string) (httptransport.VotingPowerResponse, error) {
	power, err := h.Reads.GetVotingPower(ctx, account)
	if err != nil {
		return httptransport.VotingPowerResponse{}, err
	}
	return httptransport.VotingPowerResponse{
		Account: account,
		Power:   power,
	}, nil
}

func (h Handler) SystemInfoHandler(ctx context.Context) (httptransport.SystemInfoResponse, error) {
	info, err := h.Reads.GetSystemInfo(ctx)
	if err != nil {
		return httptransport.SystemInfoResponse{}, err
	}
	return httptransport.SystemInfoResponse{
		Admin:     info.Admin,
		PollCount: info.PollCount,
	}, nil
}

func mapPoll(snapshot entities.PollSnapshot) httptransport.PollResponse {
	return httptransport.PollResponse{
		ID:          snapshot.ID,
		Title:       snapshot.Title,
		Description: snapshot.Description,
		Options:     snapshot.Options,
		StartTime:   snapshot.StartTime,
		EndTime:     snapshot.EndTime,
		Creator:     snapshot.Creator,
		IsCanceled:  snapshot.IsCanceled,
		Status:      string(snapshot.Status),
		IsActive:    snapshot.IsActive,
		TotalVotes:  snapshot.TotalVotes,
	}
}
