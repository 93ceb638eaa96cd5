package swipe

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pappy/matching-engine/internal/db"
	"github.com/pappy/matching-engine/internal/repository"
	"github.com/pappy/matching-engine/internal/scoring"
)

// MatchDetector turns a fresh LIKE into a Match when the reciprocal
// LIKE already exists.
type MatchDetector struct {
	db *gorm.DB
}

func NewMatchDetector(database *gorm.DB) *MatchDetector {
	return &MatchDetector{db: database}
}

// Evaluate checks reciprocity for a LIKE that was just appended and,
// if found, creates the Match. The reciprocity lookup and the insert
// run in one transaction; two concurrent reciprocal LIKEs both reach
// the insert, and the pair_key unique index lets exactly one win. The
// loser's duplicate-key failure is an idempotent no-op — the net state
// (one match) is already correct.
//
// Returns the created match, or nil when there is no reciprocity or
// the match already exists.
func (m *MatchDetector) Evaluate(ctx context.Context, userID, announcementID uint64) (*db.Match, error) {
	var created *db.Match

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var liked db.Announcement
		if err := tx.First(&liked, announcementID).Error; err != nil {
			return err
		}

		// has the author liked anything of mine?
		recip, err := repository.FindReciprocalLike(tx, liked.AuthorID, userID)
		if err != nil {
			return err
		}
		if recip == nil {
			return nil
		}

		var mine db.Announcement
		if err := tx.First(&mine, recip.AnnouncementID).Error; err != nil {
			return err
		}

		match := db.Match{
			ID:            uuid.NewString(),
			PairKey:       db.PairKey(userID, mine.ID, liked.AuthorID, liked.ID),
			UserA:         userID,
			UserB:         liked.AuthorID,
			AnnouncementA: mine.ID,
			AnnouncementB: liked.ID,
			IsActive:      true,
		}
		if mine.Kind == db.KindMating && liked.Kind == db.KindMating {
			match.IsBreedingMatch = true
			// computed once at creation, never recomputed
			score := scoring.BreedingCompatibility(&mine, &liked)
			match.CompatibilityScore = &score
		}

		if err := tx.Create(&match).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil // lost the race, match already exists
			}
			return err
		}
		created = &match
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
