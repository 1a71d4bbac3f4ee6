package postgresadapter

import (
	"encoding/json"
	"strconv"

	"ballotbox/contexts/governance/ballot-engine/ports"
)

func marshalPollEnvelope(event ports.PollEvent) ([]byte, error) {
	data, err := json.Marshal(map[string]any{
		"poll_id": event.PollID,
		"actor":   event.Actor,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(ports.EventEnvelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		OccurredAt:       event.OccurredAt.UTC(),
		SourceService:    "ballot-engine",
		TraceID:          event.EventID,
		SchemaVersion:    1,
		PartitionKeyPath: "poll_id",
		PartitionKey:     partitionKey(event.PollID),
		Data:             data,
	})
}

func marshalVoteEnvelope(event ports.VoteEvent) ([]byte, error) {
	data, err := json.Marshal(map[string]any{
		"poll_id":      event.PollID,
		"voter":        event.Voter,
		"option_index": event.OptionIndex,
		"weight":       event.Weight,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(ports.EventEnvelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		OccurredAt:       event.OccurredAt.UTC(),
		SourceService:    "ballot-engine",
		TraceID:          event.EventID,
		SchemaVersion:    1,
		PartitionKeyPath: "poll_id",
		PartitionKey:     partitionKey(event.PollID),
		Data:             data,
	})
}

func partitionKey(pollID uint64) string {
	return strconv.FormatUint(pollID, 10)
}

// encodeCounts applies one weighted increment and re-encodes the tally column.
func encodeCounts(counts []uint64, optionIndex uint64, weight uint64) (string, error) {
	next := append([]uint64(nil), counts...)
	next[optionIndex] += weight
	encoded, err := json.Marshal(next)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
