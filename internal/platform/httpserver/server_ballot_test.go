package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ballotengine "ballotbox/contexts/governance/ballot-engine"
)

const testAdmin = "admin-account"

func newTestServer() *Server {
	module := ballotengine.NewInMemoryModule(testAdmin, nil)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	module.Store.SetNowFunc(func() time.Time { return now })
	return New(module, nil, ":0")
}

func doJSON(t *testing.T, server *Server, method, path, account string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request failed: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("X-Account-Id", account)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response envelope failed: %v body=%s", err, rr.Body.String())
	}
	return envelope
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	envelope := decodeEnvelope(t, rr)
	if envelope["success"] != false {
		t.Fatalf("expected success=false, got %v", envelope["success"])
	}
	errBody, ok := envelope["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error body, got %s", rr.Body.String())
	}
	code, _ := errBody["code"].(string)
	return code
}

func createTestPoll(t *testing.T, server *Server, creator string) uint64 {
	t.Helper()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	rr := doJSON(t, server, http.MethodPost, "/api/v1/polls", creator, map[string]any{
		"title":      "http poll",
		"options":    []string{"yes", "no"},
		"start_time": now.Add(-time.Hour).Unix(),
		"end_time":   now.Add(time.Hour).Unix(),
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create poll failed: %d body=%s", rr.Code, rr.Body.String())
	}
	envelope := decodeEnvelope(t, rr)
	data := envelope["data"].(map[string]any)
	return uint64(data["poll_id"].(float64))
}

func TestMutationsRequireAccountHeader(t *testing.T) {
	server := newTestServer()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/polls"},
		{http.MethodPost, "/api/v1/polls/1/cancel"},
		{http.MethodPost, "/api/v1/polls/1/votes"},
		{http.MethodPost, "/api/v1/voting-power/assign"},
		{http.MethodPost, "/api/v1/voting-power/assign-batch"},
	}
	for _, tc := range paths {
		rr := doJSON(t, server, tc.method, tc.path, "", map[string]any{})
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without account header, got %d", tc.method, tc.path, rr.Code)
		}
		if code := errorCode(t, rr); code != "missing_account" {
			t.Fatalf("%s %s: unexpected error code %s", tc.method, tc.path, code)
		}
	}
}

func TestDomainErrorStatusMapping(t *testing.T) {
	server := newTestServer()
	pollID := createTestPoll(t, server, "alice")

	rr := doJSON(t, server, http.MethodGet, "/api/v1/polls/999", "", nil)
	if rr.Code != http.StatusNotFound || errorCode(t, rr) != "poll_not_found" {
		t.Fatalf("expected 404 poll_not_found, got %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/v1/polls/%d/votes", pollID), "bob", map[string]any{"option_index": 0})
	if rr.Code != http.StatusForbidden || errorCode(t, rr) != "no_voting_power" {
		t.Fatalf("expected 403 no_voting_power, got %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/v1/voting-power/assign", "mallory", map[string]any{"account": "bob", "power": 5})
	if rr.Code != http.StatusForbidden || errorCode(t, rr) != "unauthorized" {
		t.Fatalf("expected 403 unauthorized, got %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/v1/voting-power/assign-batch", testAdmin, map[string]any{
		"accounts": []string{"bob", "carol"},
		"powers":   []uint64{5},
	})
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "length_mismatch" {
		t.Fatalf("expected 400 length_mismatch, got %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/v1/polls", "alice", map[string]any{
		"title":      "one option",
		"options":    []string{"only"},
		"start_time": 100,
		"end_time":   200,
	})
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_options" {
		t.Fatalf("expected 400 invalid_options, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestVoteConflictMapping(t *testing.T) {
	server := newTestServer()
	pollID := createTestPoll(t, server, "alice")

	rr := doJSON(t, server, http.MethodPost, "/api/v1/voting-power/assign", testAdmin, map[string]any{"account": "bob", "power": 5})
	if rr.Code != http.StatusOK {
		t.Fatalf("assign power failed: %d %s", rr.Code, rr.Body.String())
	}

	path := fmt.Sprintf("/api/v1/polls/%d/votes", pollID)
	rr = doJSON(t, server, http.MethodPost, path, "bob", map[string]any{"option_index": 1})
	if rr.Code != http.StatusOK {
		t.Fatalf("first vote failed: %d %s", rr.Code, rr.Body.String())
	}
	envelope := decodeEnvelope(t, rr)
	data := envelope["data"].(map[string]any)
	if data["weight"].(float64) != 5 {
		t.Fatalf("expected weight 5 in vote response, got %v", data["weight"])
	}

	rr = doJSON(t, server, http.MethodPost, path, "bob", map[string]any{"option_index": 0})
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "already_voted" {
		t.Fatalf("expected 409 already_voted, got %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/v1/polls/%d/cancel", pollID), "alice", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("cancel failed: %d %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/v1/polls/%d/cancel", pollID), "alice", nil)
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "already_canceled" {
		t.Fatalf("expected 409 already_canceled, got %d %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, server, http.MethodPost, path, "bob", map[string]any{"option_index": 0})
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "poll_not_active" {
		t.Fatalf("expected 409 poll_not_active, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestMalformedInputsRejected(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/polls", bytes.NewReader([]byte("{not json")))
	req.Header.Set("X-Account-Id", "alice")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_json" {
		t.Fatalf("expected 400 invalid_json, got %d %s", rr.Code, rr.Body.String())
	}

	rr2 := doJSON(t, server, http.MethodGet, "/api/v1/polls/not-a-number", "", nil)
	if rr2.Code != http.StatusBadRequest || errorCode(t, rr2) != "invalid_poll_id" {
		t.Fatalf("expected 400 invalid_poll_id, got %d %s", rr2.Code, rr2.Body.String())
	}
}

func TestSuccessEnvelopeShape(t *testing.T) {
	server := newTestServer()

	rr := doJSON(t, server, http.MethodGet, "/api/v1/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health failed: %d", rr.Code)
	}
	envelope := decodeEnvelope(t, rr)
	if envelope["success"] != true {
		t.Fatalf("expected success=true, got %s", rr.Body.String())
	}
	if _, hasError := envelope["error"]; hasError {
		t.Fatalf("success responses must omit the error body: %s", rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodGet, "/api/v1/system", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("system info failed: %d", rr.Code)
	}
	envelope = decodeEnvelope(t, rr)
	data := envelope["data"].(map[string]any)
	if data["admin"] != testAdmin {
		t.Fatalf("expected admin %q, got %v", testAdmin, data["admin"])
	}
}
