package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"

	"ballotbox/contexts/governance/ballot-engine/domain/entities"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type pollModel struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	Options     string    `gorm:"column:options"`
	StartTime   int64     `gorm:"column:start_time"`
	EndTime     int64     `gorm:"column:end_time"`
	Creator     string    `gorm:"column:creator;index"`
	IsCanceled  bool      `gorm:"column:is_canceled"`
	VoteCounts  string    `gorm:"column:vote_counts"`
	TotalVotes  uint64    `gorm:"column:total_votes"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (pollModel) TableName() string {
	return "polls"
}

func pollModelFromEntity(poll entities.Poll) (pollModel, error) {
	options, err := json.Marshal(poll.Options)
	if err != nil {
		return pollModel{}, err
	}
	counts, err := json.Marshal(poll.VoteCounts)
	if err != nil {
		return pollModel{}, err
	}
	row := pollModel{
		ID:          poll.ID,
		Title:       poll.Title,
		Description: poll.Description,
		Options:     string(options),
		StartTime:   poll.StartTime,
		EndTime:     poll.EndTime,
		Creator:     strings.ToLower(strings.TrimSpace(poll.Creator)),
		IsCanceled:  poll.IsCanceled,
		VoteCounts:  string(counts),
		TotalVotes:  poll.TotalVotes,
		CreatedAt:   poll.CreatedAt.UTC(),
		UpdatedAt:   poll.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row, nil
}

func (m pollModel) toEntity() (entities.Poll, error) {
	var options []string
	if err := json.Unmarshal([]byte(m.Options), &options); err != nil {
		return entities.Poll{}, err
	}
	var counts []uint64
	if err := json.Unmarshal([]byte(m.VoteCounts), &counts); err != nil {
		return entities.Poll{}, err
	}
	return entities.Poll{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Options:     options,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		Creator:     m.Creator,
		IsCanceled:  m.IsCanceled,
		VoteCounts:  counts,
		TotalVotes:  m.TotalVotes,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}, nil
}

// receiptModel carries a composite primary key so the database itself rejects
// a second receipt for the same (poll, voter) pair.
type receiptModel struct {
	PollID      uint64    `gorm:"column:poll_id;primaryKey"`
	Voter       string    `gorm:"column:voter;primaryKey"`
	OptionIndex uint64    `gorm:"column:option_index"`
	Weight      uint64    `gorm:"column:weight"`
	CastAt      time.Time `gorm:"column:cast_at"`
}

func (receiptModel) TableName() string {
	return "vote_receipts"
}

func receiptModelFromEntity(receipt entities.VoteReceipt) receiptModel {
	return receiptModel{
		PollID:      receipt.PollID,
		Voter:       strings.ToLower(strings.TrimSpace(receipt.Voter)),
		OptionIndex: receipt.OptionIndex,
		Weight:      receipt.Weight,
		CastAt:      receipt.CastAt.UTC(),
	}
}

func (m receiptModel) toEntity() entities.VoteReceipt {
	return entities.VoteReceipt{
		PollID:      m.PollID,
		Voter:       m.Voter,
		OptionIndex: m.OptionIndex,
		Weight:      m.Weight,
		CastAt:      m.CastAt.UTC(),
	}
}

type powerModel struct {
	Account   string    `gorm:"column:account;primaryKey"`
	Power     uint64    `gorm:"column:power"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (powerModel) TableName() string {
	return "voting_power"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "ballot_outbox"
}

// Migrate creates or updates the engine tables. Bootstrap runs it on startup
// so a fresh database recovers the full snapshot schema before serving.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&pollModel{}, &receiptModel{}, &powerModel{}, &outboxModel{})
}
