package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pappy/matching-engine/internal/db"
	svcErr "github.com/pappy/matching-engine/internal/errors"
)

// ViewRecords tracks which candidates were shown to which user. It is
// all the state single-step undo needs: the "history stack" is just
// the newest unreturned row.
type ViewRecords struct {
	db *gorm.DB
}

func NewViewRecords(database *gorm.DB) *ViewRecords {
	return &ViewRecords{db: database}
}

// Record marks a candidate as shown. Idempotent: recording an already
// viewed, not-yet-decided candidate is a no-op, so a stale feed read
// can never duplicate a view.
func (v *ViewRecords) Record(ctx context.Context, userID, announcementID uint64, at time.Time) error {
	record := db.ViewRecord{
		UserID:         userID,
		AnnouncementID: announcementID,
		ViewedAt:       at,
	}
	err := v.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record).Error
	return svcErr.Map(err)
}

// PeekLast returns the user's most recent unreturned view, or
// ErrNotFound when none is pending.
func (v *ViewRecords) PeekLast(ctx context.Context, userID uint64) (*db.ViewRecord, error) {
	var record db.ViewRecord
	res := v.db.WithContext(ctx).
		Where("user_id = ? AND returned = ?", userID, false).
		Order("viewed_at DESC, announcement_id DESC").
		Limit(1).
		Find(&record)
	if res.Error != nil {
		return nil, svcErr.Map(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, svcErr.ErrNotFound
	}
	return &record, nil
}

// MarkReturned flips a view's returned flag.
func (v *ViewRecords) MarkReturned(ctx context.Context, userID, announcementID uint64) error {
	err := v.db.WithContext(ctx).
		Model(&db.ViewRecord{}).
		Where("user_id = ? AND announcement_id = ?", userID, announcementID).
		Update("returned", true).Error
	return svcErr.Map(err)
}
