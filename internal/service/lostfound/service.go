package lostfound

import (
	"context"
	"fmt"
	"sort"

	"github.com/pappy/matching-engine/internal/app"
	"github.com/pappy/matching-engine/internal/db"
	"github.com/pappy/matching-engine/internal/events"
	"github.com/pappy/matching-engine/internal/repository"
	"github.com/pappy/matching-engine/internal/scoring"
)

// FeatureExtractor produces embedding vectors for similarity scoring.
// Implemented by the ML collaborator; both methods are optional inputs
// and an absent extractor simply omits the affected terms.
type FeatureExtractor interface {
	EmbedImage(ctx context.Context, photoRef string) ([]float64, error)
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// Service ranks lost/found counterparts. It serves two distinct call
// sites with two distinct scorers: the ranked suggestion list uses the
// bucketed SuggestionScore, raw similarity search uses the continuous
// LostFoundSimilarity.
type Service struct {
	appCtx     *app.AppContext
	candidates *repository.CandidateRepository
	extractor  FeatureExtractor
}

// NewService wires the lost/found service. extractor may be nil; the
// image term is then omitted from similarity scores.
func NewService(appCtx *app.AppContext, extractor FeatureExtractor) *Service {
	return &Service{
		appCtx:     appCtx,
		candidates: repository.NewCandidateRepository(appCtx.DB),
		extractor:  extractor,
	}
}

// FindMatches builds the ranked counterpart list for a lost or found
// announcement: opposite kind, within the configured time window and
// radius, scored with the bucketed variant, filtered by the minimum
// score (strict >) and sorted by score descending. The resulting list
// is also published for the notification subsystem.
func (s *Service) FindMatches(ctx context.Context, announcementID uint64) ([]events.Suggestion, error) {
	cfg := s.appCtx.Config

	ann, err := s.candidates.GetActive(ctx, announcementID)
	if err != nil {
		return nil, err
	}
	if ann.Kind != db.KindLost && ann.Kind != db.KindFound {
		return nil, fmt.Errorf("announcement %d is not a lost/found announcement", announcementID)
	}

	pool, err := s.candidates.FetchCounterparts(ctx, ann, cfg.Matching.WindowDays, cfg.Matching.RadiusKm)
	if err != nil {
		return nil, err
	}

	var suggestions []events.Suggestion
	for i := range pool {
		c := &pool[i]
		score := scoring.SuggestionScore(ann, c)
		if score <= cfg.Matching.MinScore {
			continue
		}
		suggestions = append(suggestions, events.Suggestion{
			Announcement: *c,
			Score:        score,
			Reasons:      scoring.SuggestionReasons(ann, c),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Announcement.ID < suggestions[j].Announcement.ID
	})

	s.appCtx.Logger.Debug("FindMatches result",
		"announcement", announcementID, "candidates", len(pool), "suggestions", len(suggestions))

	if len(suggestions) > 0 {
		s.appCtx.Events.PublishLostFoundSuggestions(events.LostFoundSuggestions{
			AnnouncementID: announcementID,
			Matches:        suggestions,
		})
	}

	return suggestions, nil
}

// Similarity computes the continuous weighted similarity of two
// lost/found announcements, pulling photo embeddings through the
// feature extractor when both sides carry a photo. A failed or absent
// extraction is not an error: the image term is omitted.
func (s *Service) Similarity(ctx context.Context, a, b *db.Announcement) float64 {
	var embA, embB []float64
	if s.extractor != nil && a.PhotoRef != "" && b.PhotoRef != "" {
		var err error
		embA, err = s.extractor.EmbedImage(ctx, a.PhotoRef)
		if err != nil {
			s.appCtx.Logger.Debug("image embedding unavailable", "photo", a.PhotoRef, "err", err)
			embA = nil
		}
		embB, err = s.extractor.EmbedImage(ctx, b.PhotoRef)
		if err != nil {
			s.appCtx.Logger.Debug("image embedding unavailable", "photo", b.PhotoRef, "err", err)
			embB = nil
		}
	}
	return scoring.LostFoundSimilarity(a, b, embA, embB)
}
