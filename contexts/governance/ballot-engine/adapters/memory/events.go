package memory

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
