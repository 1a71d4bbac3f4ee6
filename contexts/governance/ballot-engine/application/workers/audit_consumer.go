package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	application "ballotbox/contexts/governance/ballot-engine/application"
	"ballotbox/contexts/governance/ballot-engine/application/commands"
	"ballotbox/contexts/governance/ballot-engine/ports"
)

const defaultAuditCG = "ballot-engine-audit-cg"

// BallotAuditConsumer subscribes to the engine's governance topics and writes
// a structured audit trail for every relayed event. It is the worker-side
// consumer of the outbox stream; external systems attach to the same topics.
type BallotAuditConsumer struct {
	Subscriber    ports.EventSubscriber
	ConsumerGroup string
	Logger        *slog.Logger
}

// Start registers the audit handler on every ballot topic. The consumer group
// can be overridden for environment-specific deployment.
func (c BallotAuditConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultAuditCG
	}

	topics := []string{
		commands.EventTypePollCreated,
		commands.EventTypePollCanceled,
		commands.EventTypeVoteCast,
	}
	for _, topic := range topics {
		if err := c.Subscriber.Subscribe(ctx, topic, group, c.handleEvent); err != nil {
			logger.Error("ballot audit subscribe failed",
				"event", "ballot_audit_subscribe_failed",
				"module", "governance/ballot-engine",
				"layer", "worker",
				"topic", topic,
				"consumer_group", group,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("ballot audit subscriptions active",
		"event", "ballot_audit_started",
		"module", "governance/ballot-engine",
		"layer", "worker",
		"consumer_group", group,
		"topics", len(topics),
	)
	return nil
}

func (c BallotAuditConsumer) handleEvent(_ context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)

	var payload struct {
		PollID      uint64 `json:"poll_id"`
		Actor       string `json:"actor"`
		Voter       string `json:"voter"`
		OptionIndex uint64 `json:"option_index"`
		Weight      uint64 `json:"weight"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("ballot audit payload decode failed",
			"event", "ballot_audit_decode_failed",
			"module", "governance/ballot-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
		return err
	}

	fields := []any{
		"event", "ballot_audit_recorded",
		"module", "governance/ballot-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"poll_id", payload.PollID,
	}
	if payload.Actor != "" {
		fields = append(fields, "actor", payload.Actor)
	}
	if payload.Voter != "" {
		fields = append(fields, "voter", payload.Voter, "option_index", payload.OptionIndex, "weight", payload.Weight)
	}
	logger.Info("governance event audited", fields...)
	return nil
}
