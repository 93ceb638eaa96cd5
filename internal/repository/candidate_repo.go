package repository

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"gorm.io/gorm"

	"github.com/pappy/matching-engine/internal/db"
	svcErr "github.com/pappy/matching-engine/internal/errors"
	"github.com/pappy/matching-engine/internal/scoring"
)

// CandidateRepository is the read-only query surface over
// announcements. It never mutates listing content.
type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(database *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: database}
}

// GeoFilter restricts candidates to an inclusive haversine radius
// around a center point.
type GeoFilter struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
}

// CandidateFilters narrows a Fetch. Zero values mean "no filter";
// Status defaults to active.
type CandidateFilters struct {
	Status      string
	Breed       string // typo-tolerant match, see matchesBreed
	PremiumOnly bool
	Geo         *GeoFilter
	// OccurredFrom/To bound the lost/found occurrence timestamp.
	OccurredFrom *time.Time
	OccurredTo   *time.Time
}

// Fetch returns up to limit swipeable candidates for a user.
//
// Exclusions are part of the query, not post-filtering: candidates
// authored by the user and candidates the user already decided on are
// removed via an anti-join, so pagination cannot drift when decisions
// land between calls. Repeated calls with the same filters and no new
// decisions return the same set; ordering is the caller's concern.
//
// The geo radius is applied as a SQL bounding box plus an exact
// haversine check in Go, so both dialects share the kernel's inclusive
// ≤ semantics.
func (r *CandidateRepository) Fetch(
	ctx context.Context,
	userID uint64,
	kind string,
	filters CandidateFilters,
	limit int,
) ([]db.Announcement, error) {
	status := filters.Status
	if status == "" {
		status = db.StatusActive
	}

	query := r.db.WithContext(ctx).
		Table("announcements a").
		Where("a.status = ?", status).
		Where("a.author_id <> ?", userID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM decisions d
				WHERE d.user_id = ?
				  AND d.announcement_id = a.id
			)`, userID)

	if kind != "" {
		query = query.Where("a.kind = ?", kind)
	}
	if filters.PremiumOnly {
		query = query.Where("a.is_premium = ?", true)
	}
	if filters.OccurredFrom != nil {
		query = query.Where("a.occurred_at >= ?", *filters.OccurredFrom)
	}
	if filters.OccurredTo != nil {
		query = query.Where("a.occurred_at <= ?", *filters.OccurredTo)
	}
	if g := filters.Geo; g != nil {
		latDelta := g.RadiusKm / 111.19
		lonDelta := g.RadiusKm / (111.19 * math.Cos(g.Lat*math.Pi/180))
		query = query.
			Where("a.latitude BETWEEN ? AND ?", g.Lat-latDelta, g.Lat+latDelta).
			Where("a.longitude BETWEEN ? AND ?", g.Lon-lonDelta, g.Lon+lonDelta)
	}

	var pool []db.Announcement
	if err := query.Find(&pool).Error; err != nil {
		return nil, svcErr.Map(err)
	}

	out := pool[:0]
	for i := range pool {
		a := &pool[i]
		if g := filters.Geo; g != nil {
			if a.Latitude == nil || a.Longitude == nil {
				continue
			}
			if !scoring.WithinRadius(g.Lat, g.Lon, *a.Latitude, *a.Longitude, g.RadiusKm) {
				continue
			}
		}
		if filters.Breed != "" && !matchesBreed(filters.Breed, a.Breed) {
			continue
		}
		out = append(out, *a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// GetActive loads a single active announcement.
func (r *CandidateRepository) GetActive(ctx context.Context, id uint64) (*db.Announcement, error) {
	var ann db.Announcement
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, db.StatusActive).
		First(&ann).Error
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &ann, nil
}

// FetchCounterparts returns active announcements of the opposite
// lost/found kind within ±windowDays of the source's occurrence time,
// excluding the source itself and anything by the same author. When
// the source has coordinates, counterparts without coordinates or
// beyond radiusKm (inclusive) are dropped.
func (r *CandidateRepository) FetchCounterparts(
	ctx context.Context,
	ann *db.Announcement,
	windowDays int,
	radiusKm float64,
) ([]db.Announcement, error) {
	opposite := db.KindFound
	if ann.Kind == db.KindFound {
		opposite = db.KindLost
	}

	query := r.db.WithContext(ctx).
		Table("announcements a").
		Where("a.status = ?", db.StatusActive).
		Where("a.kind = ?", opposite).
		Where("a.id <> ?", ann.ID).
		Where("a.author_id <> ?", ann.AuthorID)

	if ann.OccurredAt != nil {
		window := time.Duration(windowDays) * 24 * time.Hour
		query = query.Where(
			"a.occurred_at BETWEEN ? AND ?",
			ann.OccurredAt.Add(-window), ann.OccurredAt.Add(window),
		)
	}

	var pool []db.Announcement
	if err := query.Find(&pool).Error; err != nil {
		return nil, svcErr.Map(err)
	}

	if ann.Latitude == nil || ann.Longitude == nil {
		return pool, nil
	}

	out := pool[:0]
	for i := range pool {
		c := &pool[i]
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		if scoring.WithinRadius(*ann.Latitude, *ann.Longitude, *c.Latitude, *c.Longitude, radiusKm) {
			out = append(out, *c)
		}
	}
	return out, nil
}

// matchesBreed is a typo-tolerant breed comparison: exact fold match,
// or a normalized edit distance below 0.25.
func matchesBreed(want, got string) bool {
	if got == "" {
		return false
	}
	w, g := strings.ToLower(want), strings.ToLower(got)
	if w == g {
		return true
	}
	dist := levenshtein.ComputeDistance(w, g)
	maxlen := len(w)
	if len(g) > maxlen {
		maxlen = len(g)
	}
	return float64(dist)/float64(maxlen) < 0.25
}
