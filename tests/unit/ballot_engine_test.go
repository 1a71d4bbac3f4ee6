package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	ballotengine "ballotbox/contexts/governance/ballot-engine"
	"ballotbox/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballotbox/contexts/governance/ballot-engine/domain/errors"
	httptransport "ballotbox/contexts/governance/ballot-engine/transport/http"
)

const ballotAdmin = "admin-account"

func newBallotModule(now time.Time) ballotengine.Module {
	module := ballotengine.NewInMemoryModule(ballotAdmin, nil)
	module.Store.SetNowFunc(func() time.Time { return now })
	return module
}

func TestBallotFullVotingRound(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	module := newBallotModule(now)
	ctx := context.Background()

	if err := module.Handler.BatchAssignPowerHandler(ctx, ballotAdmin, httptransport.BatchAssignPowerRequest{
		Accounts: []string{"alice", "bob", "carol"},
		Powers:   []uint64{10, 5, 1},
	}); err != nil {
		t.Fatalf("batch assign failed: %v", err)
	}

	created, err := module.Handler.CreatePollHandler(ctx, "alice", httptransport.CreatePollRequest{
		Title:     "ship the release",
		Options:   []string{"yes", "no"},
		StartTime: now.Add(-time.Hour).Unix(),
		EndTime:   now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	if created.PollID != 1 {
		t.Fatalf("expected first poll id 1, got %d", created.PollID)
	}

	votes := []struct {
		voter  string
		option uint64
	}{
		{"alice", 0},
		{"bob", 1},
		{"carol", 0},
	}
	for _, vote := range votes {
		resp, err := module.Handler.VoteHandler(ctx, vote.voter, created.PollID, httptransport.VoteRequest{OptionIndex: vote.option})
		if err != nil {
			t.Fatalf("vote by %s failed: %v", vote.voter, err)
		}
		if resp.Voter != vote.voter {
			t.Fatalf("unexpected voter in response: %s", resp.Voter)
		}
	}

	results, err := module.Handler.PollResultsHandler(ctx, created.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.VoteCounts[0] != 11 || results.VoteCounts[1] != 5 {
		t.Fatalf("unexpected weighted tallies %v", results.VoteCounts)
	}
	if results.TotalVotes != 16 {
		t.Fatalf("expected total 16, got %d", results.TotalVotes)
	}

	status, err := module.Handler.VoterStatusHandler(ctx, created.PollID, "bob")
	if err != nil {
		t.Fatalf("voter status failed: %v", err)
	}
	if !status.HasVoted || status.OptionIndex != 1 || status.VotingPower != 5 {
		t.Fatalf("unexpected voter status %+v", status)
	}
}

func TestBallotVoterStatusForNonVoter(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	module := newBallotModule(now)
	ctx := context.Background()

	created, err := module.Handler.CreatePollHandler(ctx, "alice", httptransport.CreatePollRequest{
		Title:     "quorum check",
		Options:   []string{"yes", "no"},
		StartTime: now.Add(-time.Hour).Unix(),
		EndTime:   now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}

	status, err := module.Handler.VoterStatusHandler(ctx, created.PollID, "dave")
	if err != nil {
		t.Fatalf("voter status failed: %v", err)
	}
	if status.HasVoted {
		t.Fatal("expected non-voter")
	}
	if status.OptionIndex != entities.NoVoteOptionIndex {
		t.Fatalf("expected sentinel option index, got %d", status.OptionIndex)
	}

	if _, err := module.Handler.VoterStatusHandler(ctx, 999, "dave"); !errors.Is(err, domainerrors.ErrPollNotFound) {
		t.Fatalf("expected not found for unknown poll, got %v", err)
	}
}

func TestBallotCancellationFlow(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	module := newBallotModule(now)
	ctx := context.Background()

	if err := module.Handler.AssignPowerHandler(ctx, ballotAdmin, httptransport.AssignPowerRequest{
		Account: "bob",
		Power:   5,
	}); err != nil {
		t.Fatalf("assign power failed: %v", err)
	}

	created, err := module.Handler.CreatePollHandler(ctx, "alice", httptransport.CreatePollRequest{
		Title:     "to be canceled",
		Options:   []string{"yes", "no"},
		StartTime: now.Add(-time.Hour).Unix(),
		EndTime:   now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}

	if err := module.Handler.CancelPollHandler(ctx, "bob", created.PollID); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized cancel by stranger, got %v", err)
	}
	if err := module.Handler.CancelPollHandler(ctx, ballotAdmin, created.PollID); err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}

	poll, err := module.Handler.GetPollHandler(ctx, created.PollID)
	if err != nil {
		t.Fatalf("get poll failed: %v", err)
	}
	if poll.Status != string(entities.StatusCanceled) || poll.IsActive {
		t.Fatalf("expected Canceled inactive poll, got %+v", poll)
	}

	if _, err := module.Handler.VoteHandler(ctx, "bob", created.PollID, httptransport.VoteRequest{OptionIndex: 0}); !errors.Is(err, domainerrors.ErrPollNotActive) {
		t.Fatalf("expected not active after cancel, got %v", err)
	}
	if err := module.Handler.CancelPollHandler(ctx, "alice", created.PollID); !errors.Is(err, domainerrors.ErrAlreadyCanceled) {
		t.Fatalf("expected already canceled, got %v", err)
	}
}

func TestBallotStatusTransitionsWithClock(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	module := newBallotModule(now)
	ctx := context.Background()

	created, err := module.Handler.CreatePollHandler(ctx, "alice", httptransport.CreatePollRequest{
		Title:     "future window",
		Options:   []string{"yes", "no"},
		StartTime: now.Add(time.Hour).Unix(),
		EndTime:   now.Add(2 * time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}

	status, err := module.Handler.PollStatusHandler(ctx, created.PollID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Status != string(entities.StatusPending) {
		t.Fatalf("expected Pending, got %s", status.Status)
	}

	module.Store.SetNowFunc(func() time.Time { return now.Add(90 * time.Minute) })
	status, _ = module.Handler.PollStatusHandler(ctx, created.PollID)
	if status.Status != string(entities.StatusActive) {
		t.Fatalf("expected Active, got %s", status.Status)
	}

	module.Store.SetNowFunc(func() time.Time { return now.Add(3 * time.Hour) })
	status, _ = module.Handler.PollStatusHandler(ctx, created.PollID)
	if status.Status != string(entities.StatusEnded) {
		t.Fatalf("expected Ended, got %s", status.Status)
	}
}

func TestBallotPollListingAndSystemInfo(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	module := newBallotModule(now)
	ctx := context.Background()

	for _, creator := range []string{"alice", "bob", "alice"} {
		if _, err := module.Handler.CreatePollHandler(ctx, creator, httptransport.CreatePollRequest{
			Title:     "poll by " + creator,
			Options:   []string{"yes", "no"},
			StartTime: now.Unix(),
			EndTime:   now.Add(time.Hour).Unix(),
		}); err != nil {
			t.Fatalf("create poll failed: %v", err)
		}
	}

	list, err := module.Handler.ListPollsHandler(ctx)
	if err != nil {
		t.Fatalf("list polls failed: %v", err)
	}
	if len(list.Polls) != 3 {
		t.Fatalf("expected 3 polls, got %d", len(list.Polls))
	}
	for i, poll := range list.Polls {
		if poll.ID != uint64(i+1) {
			t.Fatalf("expected creation order, got %+v", list.Polls)
		}
	}

	byCreator, err := module.Handler.PollIDsByCreatorHandler(ctx, "ALICE")
	if err != nil {
		t.Fatalf("ids by creator failed: %v", err)
	}
	if len(byCreator.PollIDs) != 2 || byCreator.PollIDs[0] != 1 || byCreator.PollIDs[1] != 3 {
		t.Fatalf("unexpected creator ids %v", byCreator.PollIDs)
	}

	info, err := module.Handler.SystemInfoHandler(ctx)
	if err != nil {
		t.Fatalf("system info failed: %v", err)
	}
	if info.Admin != ballotAdmin || info.PollCount != 3 {
		t.Fatalf("unexpected system info %+v", info)
	}
}

func TestBallotPowerQueriesVisibleToAnyone(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	module := newBallotModule(now)
	ctx := context.Background()

	if err := module.Handler.AssignPowerHandler(ctx, ballotAdmin, httptransport.AssignPowerRequest{
		Account: "Bob",
		Power:   9,
	}); err != nil {
		t.Fatalf("assign power failed: %v", err)
	}

	power, err := module.Handler.VotingPowerHandler(ctx, "bob")
	if err != nil {
		t.Fatalf("read power failed: %v", err)
	}
	if power.Power != 9 {
		t.Fatalf("expected 9, got %d", power.Power)
	}
	absent, err := module.Handler.VotingPowerHandler(ctx, "nobody")
	if err != nil {
		t.Fatalf("read absent power failed: %v", err)
	}
	if absent.Power != 0 {
		t.Fatalf("expected 0 for absent account, got %d", absent.Power)
	}
}
