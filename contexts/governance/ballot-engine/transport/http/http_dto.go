package http

// APIResponse is the gateway wire envelope: success carries data, failure
// carries an error body, never both.
type APIResponse struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePollRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
	StartTime   int64    `json:"start_time"`
	EndTime     int64    `json:"end_time"`
}

type CreatePollResponse struct {
	PollID uint64 `json:"poll_id"`
}

type PollResponse struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
	StartTime   int64    `json:"start_time"`
	EndTime     int64    `json:"end_time"`
	Creator     string   `json:"creator"`
	IsCanceled  bool     `json:"is_canceled"`
	Status      string   `json:"status"`
	IsActive    bool     `json:"is_active"`
	TotalVotes  uint64   `json:"total_votes"`
}

type PollListResponse struct {
	Polls []PollResponse `json:"polls"`
}

type PollResultsResponse struct {
	PollID     uint64   `json:"poll_id"`
	Options    []string `json:"options"`
	VoteCounts []uint64 `json:"vote_counts"`
	TotalVotes uint64   `json:"total_votes"`
}

type PollStatusResponse struct {
	PollID uint64 `json:"poll_id"`
	Status string `json:"status"`
}

type PollIDsResponse struct {
	PollIDs []uint64 `json:"poll_ids"`
}

type VoteRequest struct {
	OptionIndex uint64 `json:"option_index"`
}

type VoteResponse struct {
	PollID      uint64 `json:"poll_id"`
	Voter       string `json:"voter"`
	OptionIndex uint64 `json:"option_index"`
	Weight      uint64 `json:"weight"`
}

// VoterStatusResponse reports -1 as the option index for non-voters.
type VoterStatusResponse struct {
	HasVoted    bool   `json:"has_voted"`
	OptionIndex int64  `json:"option_index"`
	VotingPower uint64 `json:"voting_power"`
}

type AssignPowerRequest struct {
	Account string `json:"account"`
	Power   uint64 `json:"power"`
}

type BatchAssignPowerRequest struct {
	Accounts []string `json:"accounts"`
	Powers   []uint64 `json:"powers"`
}

type VotingPowerResponse struct {
	Account string `json:"account"`
	Power   uint64 `json:"power"`
}

type SystemInfoResponse struct {
	Admin     string `json:"admin"`
	PollCount uint64 `json:"poll_count"`
}
