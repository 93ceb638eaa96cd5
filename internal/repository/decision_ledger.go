package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pappy/matching-engine/internal/db"
	svcErr "github.com/pappy/matching-engine/internal/errors"
)

// DecisionLedger is the append-only store of swipe decisions.
// Exactly one decision may exist per (user, announcement) pair; the
// composite primary key enforces that at the storage layer.
type DecisionLedger struct {
	db *gorm.DB
}

func NewDecisionLedger(database *gorm.DB) *DecisionLedger {
	return &DecisionLedger{db: database}
}

// Append inserts a decision. No read-then-write: a concurrent append
// for the same pair loses on the primary key and surfaces as
// ErrAlreadyDecided, never a silent overwrite.
func (l *DecisionLedger) Append(
	ctx context.Context,
	userID, announcementID uint64,
	direction string,
) (*db.Decision, error) {
	decision := db.Decision{
		UserID:         userID,
		AnnouncementID: announcementID,
		Direction:      direction,
	}
	if err := l.db.WithContext(ctx).Create(&decision).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, svcErr.ErrAlreadyDecided
		}
		return nil, svcErr.Map(err)
	}
	return &decision, nil
}

// Get returns the decision for a pair, or ErrNotFound.
func (l *DecisionLedger) Get(ctx context.Context, userID, announcementID uint64) (*db.Decision, error) {
	var d db.Decision
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND announcement_id = ?", userID, announcementID).
		First(&d).Error
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &d, nil
}

// UndoLast unwinds the user's most recent view in one transaction:
// the newest unreturned ViewRecord is marked returned and any decision
// for that pair is deleted. Only the most recent view can be undone.
//
// Returns the deleted decision, or nil when the viewed candidate had
// not been decided yet. ErrNotFound when nothing is pending.
func (l *DecisionLedger) UndoLast(ctx context.Context, userID uint64) (*db.Decision, error) {
	var deleted *db.Decision

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var view db.ViewRecord
		res := tx.
			Where("user_id = ? AND returned = ?", userID, false).
			Order("viewed_at DESC, announcement_id DESC").
			Limit(1).
			Find(&view)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return svcErr.ErrNotFound
		}

		var d db.Decision
		res = tx.
			Where("user_id = ? AND announcement_id = ?", userID, view.AnnouncementID).
			Limit(1).
			Find(&d)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if err := tx.
				Where("user_id = ? AND announcement_id = ?", userID, view.AnnouncementID).
				Delete(&db.Decision{}).Error; err != nil {
				return err
			}
			deleted = &d
		}

		return tx.Model(&db.ViewRecord{}).
			Where("user_id = ? AND announcement_id = ?", userID, view.AnnouncementID).
			Update("returned", true).Error
	})
	if err != nil {
		if errors.Is(err, svcErr.ErrNotFound) {
			return nil, svcErr.ErrNotFound
		}
		return nil, svcErr.Map(err)
	}
	return deleted, nil
}

// CountLikesReceived counts LIKE decisions received by an
// announcement. Used as the DB fallback behind the Redis counter.
func (l *DecisionLedger) CountLikesReceived(ctx context.Context, announcementID uint64) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).
		Model(&db.Decision{}).
		Where("announcement_id = ? AND direction = ?", announcementID, db.DirectionLike).
		Count(&count).Error
	if err != nil {
		return 0, svcErr.Map(err)
	}
	return count, nil
}

// CountDecisionsReceived returns, per announcement, how many decisions
// of any direction it has received. The feed uses this as its
// popularity proxy.
func (l *DecisionLedger) CountDecisionsReceived(ctx context.Context, announcementIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(announcementIDs))
	if len(announcementIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AnnouncementID uint64
		N              int64
	}
	err := l.db.WithContext(ctx).
		Model(&db.Decision{}).
		Select("announcement_id, COUNT(*) AS n").
		Where("announcement_id IN ?", announcementIDs).
		Group("announcement_id").
		Find(&rows).Error
	if err != nil {
		return nil, svcErr.Map(err)
	}
	for _, row := range rows {
		counts[row.AnnouncementID] = row.N
	}
	return counts, nil
}

// FindReciprocalLike looks for the most recent LIKE by likerID on any
// announcement authored by authorID. tx lets MatchDetector run the
// lookup inside its transaction.
func FindReciprocalLike(tx *gorm.DB, likerID, authorID uint64) (*db.Decision, error) {
	var d db.Decision
	res := tx.
		Table("decisions d").
		Select("d.*").
		Joins("JOIN announcements a ON a.id = d.announcement_id").
		Where("d.user_id = ? AND d.direction = ? AND a.author_id = ?",
			likerID, db.DirectionLike, authorID).
		Order("d.created_at DESC, d.announcement_id DESC").
		Limit(1).
		Find(&d)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &d, nil
}

