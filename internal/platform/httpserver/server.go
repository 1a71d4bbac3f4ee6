package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	ballotengine "ballotbox/contexts/governance/ballot-engine"
	ballotdomainerrors "ballotbox/contexts/governance/ballot-engine/domain/errors"
	ballothttp "ballotbox/contexts/governance/ballot-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "ballotbox/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	governance ballotengine.Module
}

func New(governance ballotengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		governance: governance,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/system", s.handleSystemInfo)

	s.mux.HandleFunc("POST /api/v1/polls", s.handleCreatePoll)
	s.mux.HandleFunc("GET /api/v1/polls", s.handleListPolls)
	s.mux.HandleFunc("GET /api/v1/polls/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("POST /api/v1/polls/{poll_id}/cancel", s.handleCancelPoll)
	s.mux.HandleFunc("GET /api/v1/polls/{poll_id}/results", s.handlePollResults)
	s.mux.HandleFunc("GET /api/v1/polls/{poll_id}/status", s.handlePollStatus)
	s.mux.HandleFunc("GET /api/v1/poll-ids", s.handleAllPollIDs)
	s.mux.HandleFunc("GET /api/v1/accounts/{account}/polls", s.handlePollIDsByCreator)

	s.mux.HandleFunc("POST /api/v1/polls/{poll_id}/votes", s.handleVote)
	s.mux.HandleFunc("GET /api/v1/polls/{poll_id}/voters/{account}", s.handleVoterStatus)

	s.mux.HandleFunc("GET /api/v1/voting-power/{account}", s.handleVotingPower)
	s.mux.HandleFunc("POST /api/v1/voting-power/assign", s.handleAssignPower)
	s.mux.HandleFunc("POST /api/v1/voting-power/assign-batch", s.handleBatchAssignPower)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.SystemInfoHandler(r.Context())
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}

	var req ballothttp.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.CreatePollHandler(r.Context(), caller, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, resp)
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListPollsHandler(r.Context())
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := resolvePollID(w, r)
	if !ok {
		return
	}

	resp, err := s.governance.Handler.GetPollHandler(r.Context(), pollID)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleCancelPoll(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	pollID, ok := resolvePollID(w, r)
	if !ok {
		return
	}

	if err := s.governance.Handler.CancelPollHandler(r.Context(), caller, pollID); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]uint64{"poll_id": pollID})
}

func (s *Server) handlePollResults(w http.ResponseWriter, r *http.Request) {
	pollID, ok := resolvePollID(w, r)
	if !ok {
		return
	}

	resp, err := s.governance.Handler.PollResultsHandler(r.Context(), pollID)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handlePollStatus(w http.ResponseWriter, r *http.Request) {
	pollID, ok := resolvePollID(w, r)
	if !ok {
		return
	}

	resp, err := s.governance.Handler.PollStatusHandler(r.Context(), pollID)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleAllPollIDs(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.AllPollIDsHandler(r.Context())
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handlePollIDsByCreator(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	resp, err := s.governance.Handler.PollIDsByCreatorHandler(r.Context(), account)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}
	pollID, ok := resolvePollID(w, r)
	if !ok {
		return
	}

	var req ballothttp.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.VoteHandler(r.Context(), caller, pollID, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleVoterStatus(w http.ResponseWriter, r *http.Request) {
	pollID, ok := resolvePollID(w, r)
	if !ok {
		return
	}
	account := r.PathValue("account")

	resp, err := s.governance.Handler.VoterStatusHandler(r.Context(), pollID, account)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleVotingPower(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	resp, err := s.governance.Handler.VotingPowerHandler(r.Context(), account)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleAssignPower(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}

	var req ballothttp.AssignPowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.governance.Handler.AssignPowerHandler(r.Context(), caller, req); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"account": req.Account})
}

func (s *Server) handleBatchAssignPower(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r)
	if !ok {
		return
	}

	var req ballothttp.BatchAssignPowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.governance.Handler.BatchAssignPowerHandler(r.Context(), caller, req); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"assigned": len(req.Accounts)})
}

func resolveCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get("X-Account-Id"))
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return "", false
	}
	return caller, true
}

func resolvePollID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("poll_id")
	pollID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_poll_id", "poll_id must be an unsigned integer")
		return 0, false
	}
	return pollID, true
}

func writeBallotDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ballotdomainerrors.ErrPollNotFound):
		writeError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrInvalidOptions):
		writeError(w, http.StatusBadRequest, "invalid_options", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrInvalidTimeRange):
		writeError(w, http.StatusBadRequest, "invalid_time_range", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrLengthMismatch):
		writeError(w, http.StatusBadRequest, "length_mismatch", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrInvalidOption):
		writeError(w, http.StatusBadRequest, "invalid_option", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrNoVotingPower):
		writeError(w, http.StatusForbidden, "no_voting_power", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrAlreadyCanceled):
		writeError(w, http.StatusConflict, "already_canceled", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrPollNotActive):
		writeError(w, http.StatusConflict, "poll_not_active", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, ballothttp.APIResponse{
		Success: true,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ballothttp.APIResponse{
		Success: false,
		Error: &ballothttp.ErrorResponse{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
