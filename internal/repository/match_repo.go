package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pappy/matching-engine/internal/db"
	svcErr "github.com/pappy/matching-engine/internal/errors"
	"github.com/pappy/matching-engine/internal/utils/pagination"
)

// MatchRepository reads match rows. Creation happens inside
// MatchDetector's transaction; deactivation belongs to moderation, not
// this engine.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// ListForUser returns the user's active matches, newest first, with
// cursor-based pagination.
func (r *MatchRepository) ListForUser(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("matches m").
		Where("(m.user_a = ? OR m.user_b = ?) AND m.is_active = ?", userID, userID, true).
		Order("m.created_at DESC, m.id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.MatchID != "" && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(m.created_at < ? OR (m.created_at = ? AND m.id < ?))",
			ts, ts, cursor.MatchID,
		)
	}

	var matches []db.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, nil, svcErr.Map(err)
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(matches) > limit {
		last := matches[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			MatchID:     last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		matches = matches[:limit]
	}

	return matches, nextToken, nil
}

// GetByPairKey returns the match for a canonical pair, or ErrNotFound.
func (r *MatchRepository) GetByPairKey(ctx context.Context, pairKey string) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).Where("pair_key = ?", pairKey).First(&m).Error
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &m, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
