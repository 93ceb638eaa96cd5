package swipe

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/pappy/matching-engine/internal/app"
	"github.com/pappy/matching-engine/internal/cache"
	"github.com/pappy/matching-engine/internal/db"
	svcErr "github.com/pappy/matching-engine/internal/errors"
	"github.com/pappy/matching-engine/internal/events"
	"github.com/pappy/matching-engine/internal/repository"
)

// Service orchestrates the swipe flow: candidate feed, decision
// recording, match detection, undo and match listing. It is invoked
// in-process by the surrounding application; every caller-facing
// failure is one of the typed engine errors.
type Service struct {
	appCtx     *app.AppContext
	candidates *repository.CandidateRepository
	ledger     *repository.DecisionLedger
	views      *repository.ViewRecords
	matches    *repository.MatchRepository
	detector   *MatchDetector
}

// NewService wires the swipe service from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		candidates: repository.NewCandidateRepository(appCtx.DB),
		ledger:     repository.NewDecisionLedger(appCtx.DB),
		views:      repository.NewViewRecords(appCtx.DB),
		matches:    repository.NewMatchRepository(appCtx.DB),
		detector:   NewMatchDetector(appCtx.DB),
	}
}

// SwipeResult is the outcome of one decision.
type SwipeResult struct {
	Decision *db.Decision
	// Match is non-nil when the decision completed a reciprocal pair.
	Match *db.Match
}

// NextCards returns the next count candidates for a user.
//
// Ordering: premium first, then by how many decisions a candidate has
// received (popularity), then random among remaining ties. The shuffle
// is re-rolled per call with an explicit source — the feed is not
// cached by page number, and the exclusion set shrinks as decisions
// land, so callers wanting stable pagination must track exclusions
// themselves.
//
// Every returned candidate gets a ViewRecord; recording is idempotent.
func (s *Service) NextCards(ctx context.Context, userID uint64, kind string, count int) ([]db.Announcement, error) {
	cfg := s.appCtx.Config
	if count <= 0 {
		count = cfg.Feed.PageSize
	}

	s.appCtx.Logger.Debug("NextCards called", "user", userID, "kind", kind, "count", count)

	pool, err := s.candidates.Fetch(ctx, userID, kind, repository.CandidateFilters{}, cfg.Feed.PoolSize)
	if err != nil {
		s.appCtx.Logger.Error("candidate fetch failed", "err", err)
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}

	ids := make([]uint64, len(pool))
	for i := range pool {
		ids[i] = pool[i].ID
	}
	popularity, err := s.ledger.CountDecisionsReceived(ctx, ids)
	if err != nil {
		return nil, err
	}

	// per-request shuffle, then a stable sort on (premium, popularity):
	// the shuffle survives as the tie-break
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].IsPremium != pool[j].IsPremium {
			return pool[i].IsPremium
		}
		return popularity[pool[i].ID] > popularity[pool[j].ID]
	})

	if len(pool) > count {
		pool = pool[:count]
	}

	now := time.Now().UTC()
	for i := range pool {
		if err := s.views.Record(ctx, userID, pool[i].ID, now); err != nil {
			s.appCtx.Logger.Error("view record failed", "announcement", pool[i].ID, "err", err)
			return nil, err
		}
	}

	return pool, nil
}

// Swipe validates and records one decision, then runs match detection
// for likes. Append and detection are two explicit steps, each inside
// its own storage transaction.
func (s *Service) Swipe(ctx context.Context, userID, announcementID uint64, direction string) (*SwipeResult, error) {
	s.appCtx.Logger.Debug("Swipe called", "user", userID, "announcement", announcementID, "direction", direction)

	if !db.ValidDirection(direction) {
		return nil, svcErr.ErrInvalidDirection
	}

	ann, err := s.candidates.GetActive(ctx, announcementID)
	if err != nil {
		return nil, err
	}
	if ann.AuthorID == userID {
		return nil, svcErr.ErrSelfDecision
	}

	decision, err := s.ledger.Append(ctx, userID, announcementID, direction)
	if err != nil {
		return nil, err
	}

	result := &SwipeResult{Decision: decision}

	if direction == db.DirectionLike {
		key := s.appCtx.RedisCache.KeyForLikeCount(announcementID)
		_, _ = s.appCtx.RedisCache.Incr(ctx, key)
		_ = s.appCtx.RedisCache.Client.Expire(ctx, key, cache.CountTTL).Err()

		match, err := s.detector.Evaluate(ctx, userID, announcementID)
		if err != nil {
			s.appCtx.Logger.Error("match evaluation failed", "err", err)
			return nil, svcErr.Map(err)
		}
		if match != nil {
			result.Match = match
			s.appCtx.Events.PublishMatchCreated(events.MatchCreated{Match: *match})
			s.appCtx.Logger.Info("match created",
				"match_id", match.ID, "user_a", match.UserA, "user_b", match.UserB,
				"breeding", match.IsBreedingMatch)
		}
	}

	return result, nil
}

// UndoLast unwinds the user's most recent view and clears its decision
// if one exists. Returns the cleared decision (nil when the card was
// viewed but never decided) or ErrNotFound with nothing pending.
func (s *Service) UndoLast(ctx context.Context, userID uint64) (*db.Decision, error) {
	s.appCtx.Logger.Debug("UndoLast called", "user", userID)

	deleted, err := s.ledger.UndoLast(ctx, userID)
	if err != nil {
		return nil, err
	}

	if deleted != nil && deleted.Direction == db.DirectionLike {
		key := s.appCtx.RedisCache.KeyForLikeCount(deleted.AnnouncementID)
		_, _ = s.appCtx.RedisCache.Decr(ctx, key)
		_ = s.appCtx.RedisCache.Client.Expire(ctx, key, cache.CountTTL).Err()
	}

	return deleted, nil
}

// ListMatches returns the user's active matches, newest first, with
// cursor pagination.
func (s *Service) ListMatches(ctx context.Context, userID uint64, paginationToken *string, limit int) ([]db.Match, *string, error) {
	if limit <= 0 {
		limit = s.appCtx.Config.Feed.PageSize
	}
	return s.matches.ListForUser(ctx, userID, paginationToken, limit)
}

// CountLikes returns how many likes an announcement has received.
// Cache-first: Redis with TTL refresh, DB fallback that repopulates
// the cache.
func (s *Service) CountLikes(ctx context.Context, announcementID uint64) (int64, error) {
	if n, ok, err := s.appCtx.RedisCache.GetLikeCount(ctx, announcementID); err == nil && ok {
		return n, nil
	}

	count, err := s.ledger.CountLikesReceived(ctx, announcementID)
	if err != nil {
		return 0, err
	}
	_ = s.appCtx.RedisCache.UpdateLikeCount(ctx, announcementID, count)
	return count, nil
}
