package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ballotbox/contexts/governance/ballot-engine/domain/entities"
	domainerrors "ballotbox/contexts/governance/ballot-engine/domain/errors"
	"ballotbox/contexts/governance/ballot-engine/ports"
)

// Repository is the durable adapter. Every mutating method runs inside one
// gorm transaction with the target poll row locked, so state and outbox rows
// commit together or not at all, and restarts recover a consistent snapshot.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreatePollWithOutbox(ctx context.Context, poll entities.Poll, event ports.PollEvent) (uint64, error) {
	row, err := pollModelFromEntity(poll)
	if err != nil {
		return 0, err
	}
	row.ID = 0 // let the sequence assign the next poll id

	var assigned uint64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		assigned = row.ID
		event.PollID = assigned
		payload, err := marshalPollEnvelope(event)
		if err != nil {
			return err
		}
		return tx.Create(&outboxModel{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: partitionKey(assigned),
			Payload:      payload,
			Status:       outboxStatusPending,
			CreatedAt:    event.OccurredAt.UTC(),
		}).Error
	})
	if err != nil {
		return 0, r.logError("ballot_repo_create_poll_failed", err,
			"creator", strings.TrimSpace(poll.Creator),
		)
	}
	return assigned, nil
}

func (r *Repository) CancelPollWithOutbox(ctx context.Context, pollID uint64, canceledAt time.Time, event ports.PollEvent) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row pollModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", pollID).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPollNotFound
			}
			return err
		}
		if row.IsCanceled {
			return domainerrors.ErrAlreadyCanceled
		}
		if err := tx.Model(&pollModel{}).
			Where("id = ?", pollID).
			Updates(map[string]any{
				"is_canceled": true,
				"updated_at":  canceledAt.UTC(),
			}).Error; err != nil {
			return err
		}
		payload, err := marshalPollEnvelope(event)
		if err != nil {
			return err
		}
		return tx.Create(&outboxModel{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: partitionKey(pollID),
			Payload:      payload,
			Status:       outboxStatusPending,
			CreatedAt:    event.OccurredAt.UTC(),
		}).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPollNotFound) || errors.Is(err, domainerrors.ErrAlreadyCanceled) {
			return err
		}
		return r.logError("ballot_repo_cancel_poll_failed", err, "poll_id", pollID)
	}
	return nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("id = ?", pollID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, r.logError("ballot_repo_get_poll_failed", err, "poll_id", pollID)
	}
	return row.toEntity()
}

func (r *Repository) ListPolls(ctx context.Context) ([]entities.Poll, error) {
	var rows []pollModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_polls_failed", err)
	}
	items := make([]entities.Poll, 0, len(rows))
	for _, row := range rows {
		poll, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, poll)
	}
	return items, nil
}

func (r *Repository) ListPollIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Order("id").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, r.logError("ballot_repo_list_poll_ids_failed", err)
	}
	return ids, nil
}

func (r *Repository) ListPollIDsByCreator(ctx context.Context, creator string) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("creator = ?", strings.ToLower(strings.TrimSpace(creator))).
		Order("id").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, r.logError("ballot_repo_list_creator_poll_ids_failed", err,
			"creator", strings.TrimSpace(creator),
		)
	}
	return ids, nil
}

func (r *Repository) CountPolls(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&pollModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("ballot_repo_count_polls_failed", err)
	}
	return uint64(count), nil
}

func (r *Repository) CastVoteWithOutbox(ctx context.Context, receipt entities.VoteReceipt, event ports.VoteEvent) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row pollModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", receipt.PollID).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPollNotFound
			}
			return err
		}
		if row.IsCanceled {
			return domainerrors.ErrPollNotActive
		}
		poll, err := row.toEntity()
		if err != nil {
			return err
		}
		if receipt.OptionIndex >= uint64(len(poll.Options)) {
			return domainerrors.ErrInvalidOption
		}

		receiptRow := receiptModelFromEntity(receipt)
		if err := tx.Create(&receiptRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}

		counts, err := encodeCounts(poll.VoteCounts, receipt.OptionIndex, receipt.Weight)
		if err != nil {
			return err
		}
		if err := tx.Model(&pollModel{}).
			Where("id = ?", receipt.PollID).
			Updates(map[string]any{
				"vote_counts": counts,
				"total_votes": poll.TotalVotes + receipt.Weight,
				"updated_at":  receipt.CastAt.UTC(),
			}).Error; err != nil {
			return err
		}

		payload, err := marshalVoteEnvelope(event)
		if err != nil {
			return err
		}
		return tx.Create(&outboxModel{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: partitionKey(receipt.PollID),
			Payload:      payload,
			Status:       outboxStatusPending,
			CreatedAt:    event.OccurredAt.UTC(),
		}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrPollNotFound),
			errors.Is(err, domainerrors.ErrPollNotActive),
			errors.Is(err, domainerrors.ErrInvalidOption),
			errors.Is(err, domainerrors.ErrAlreadyVoted):
			return err
		}
		return r.logError("ballot_repo_cast_vote_failed", err,
			"poll_id", receipt.PollID,
			"voter", strings.TrimSpace(receipt.Voter),
		)
	}
	return nil
}

func (r *Repository) GetReceipt(ctx context.Context, pollID uint64, voter string) (entities.VoteReceipt, bool, error) {
	var row receiptModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Where("voter = ?", strings.ToLower(strings.TrimSpace(voter))).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteReceipt{}, false, nil
		}
		return entities.VoteReceipt{}, false, r.logError("ballot_repo_get_receipt_failed", err,
			"poll_id", pollID,
			"voter", strings.TrimSpace(voter),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SetVotingPower(ctx context.Context, account string, power uint64) error {
	row := powerModel{
		Account:   strings.ToLower(strings.TrimSpace(account)),
		Power:     power,
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account"}},
		DoUpdates: clause.Assignments(map[string]any{
			"power":      row.Power,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("ballot_repo_set_power_failed", err,
			"account", strings.TrimSpace(account),
		)
	}
	return nil
}

func (r *Repository) SetVotingPowerBatch(ctx context.Context, accounts []string, powers []uint64) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, account := range accounts {
			row := powerModel{
				Account:   strings.ToLower(strings.TrimSpace(account)),
				Power:     powers[i],
				UpdatedAt: now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "account"}},
				DoUpdates: clause.Assignments(map[string]any{
					"power":      row.Power,
					"updated_at": row.UpdatedAt,
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return r.logError("ballot_repo_set_power_batch_failed", err, "pairs", len(accounts))
	}
	return nil
}

func (r *Repository) GetVotingPower(ctx context.Context, account string) (uint64, error) {
	var row powerModel
	err := r.db.WithContext(ctx).
		Where("account = ?", strings.ToLower(strings.TrimSpace(account))).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("ballot_repo_get_power_failed", err,
			"account", strings.TrimSpace(account),
		)
	}
	return row.Power, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("ballot_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	published := publishedAt.UTC()
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &published,
		}).Error
	if err != nil {
		return r.logError("ballot_repo_mark_outbox_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/ballot-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ballot repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.PollRepository = (*Repository)(nil)
var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.PowerLedger = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
