package scoring

import (
	"fmt"
	"strings"

	"github.com/pappy/matching-engine/internal/db"
)

// Weights of the continuous lost/found similarity terms.
const (
	weightGeo   = 0.3
	weightText  = 0.3
	weightImage = 0.2
	weightAttr  = 0.2
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// LostFoundSimilarity scores a (lost, found) pair in [0,1] as a
// weighted sum of four independent terms. Every term is clamped to
// [0,1] before weighting, so no term can exceed its budget.
//
//   - geolocation, 0.3: 1/(1+d) with d the haversine distance in km.
//     Missing coordinates on either side omit the term entirely (no
//     zero-fill, no renormalization) — the achievable ceiling drops.
//   - text, 0.3: bag-of-words cosine over distinctive features + breed
//     + color of both sides.
//   - image, 0.2: cosine of the supplied photo embeddings; omitted when
//     either side has none.
//   - attributes, 0.2: breed match 0.4, color match 0.3, ages within
//     one year 0.3, scaled into the 0.2 budget.
//
// imageA/imageB are externally produced embedding vectors for each
// side's primary photo; pass nil when a side has no photo.
func LostFoundSimilarity(a, b *db.Announcement, imageA, imageB []float64) float64 {
	total := 0.0

	if a.Latitude != nil && a.Longitude != nil && b.Latitude != nil && b.Longitude != nil {
		d := Haversine(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		total += weightGeo * clamp01(1.0/(1.0+d))
	}

	total += weightText * clamp01(TextSimilarity(describe(a), describe(b)))

	if len(imageA) > 0 && len(imageB) > 0 {
		total += weightImage * clamp01(CosineSimilarity(imageA, imageB))
	}

	total += weightAttr * clamp01(attributeScore(a, b))

	return total
}

func describe(a *db.Announcement) string {
	return strings.TrimSpace(a.DistinctiveFeatures + " " + a.Breed + " " + a.Color)
}

// attributeScore compares the animal attributes of two lost/found
// announcements. Sub-weights sum to 1.0.
func attributeScore(a, b *db.Announcement) float64 {
	score := 0.0
	if a.Breed != "" && strings.EqualFold(a.Breed, b.Breed) {
		score += 0.4
	}
	if a.Color != "" && strings.EqualFold(a.Color, b.Color) {
		score += 0.3
	}
	if a.Age != nil && b.Age != nil {
		if diff := *a.Age - *b.Age; diff >= -1 && diff <= 1 {
			score += 0.3
		}
	}
	return score
}

// SuggestionScore is the discrete-bucket variant used for the ranked
// counterpart list. It is intentionally a separate function from
// LostFoundSimilarity: the two serve different call sites and their
// semantics must not drift into each other.
//
// Increments: species 0.2, breed 0.1, color 0.1, size 0.1; distance
// ≤1/≤5/≤10 km → 0.3/0.2/0.1; elapsed time ≤1/≤3/≤7 days →
// 0.2/0.15/0.1.
func SuggestionScore(a, b *db.Announcement) float64 {
	score := 0.0

	if a.Species != "" && strings.EqualFold(a.Species, b.Species) {
		score += 0.2
	}
	if a.Breed != "" && strings.EqualFold(a.Breed, b.Breed) {
		score += 0.1
	}
	if a.Color != "" && strings.EqualFold(a.Color, b.Color) {
		score += 0.1
	}
	if a.Size != "" && strings.EqualFold(a.Size, b.Size) {
		score += 0.1
	}

	if a.Latitude != nil && a.Longitude != nil && b.Latitude != nil && b.Longitude != nil {
		switch d := Haversine(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude); {
		case d <= 1:
			score += 0.3
		case d <= 5:
			score += 0.2
		case d <= 10:
			score += 0.1
		}
	}

	if a.OccurredAt != nil && b.OccurredAt != nil {
		diff := a.OccurredAt.Sub(*b.OccurredAt)
		if diff < 0 {
			diff = -diff
		}
		switch days := diff.Hours() / 24; {
		case days <= 1:
			score += 0.2
		case days <= 3:
			score += 0.15
		case days <= 7:
			score += 0.1
		}
	}

	return score
}

// SuggestionReasons lists the human-readable reasons behind a
// suggestion, for UI/notification payloads.
func SuggestionReasons(a, b *db.Announcement) []string {
	var reasons []string

	if a.Species != "" && strings.EqualFold(a.Species, b.Species) {
		reasons = append(reasons, "species matches")
	}
	if a.Breed != "" && strings.EqualFold(a.Breed, b.Breed) {
		reasons = append(reasons, "breed matches")
	}
	if a.Color != "" && strings.EqualFold(a.Color, b.Color) {
		reasons = append(reasons, "color matches")
	}
	if a.Size != "" && strings.EqualFold(a.Size, b.Size) {
		reasons = append(reasons, "size matches")
	}

	if a.Latitude != nil && a.Longitude != nil && b.Latitude != nil && b.Longitude != nil {
		d := Haversine(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		reasons = append(reasons, fmt.Sprintf("distance between locations: %.1f km", d))
	}

	if a.OccurredAt != nil && b.OccurredAt != nil {
		diff := a.OccurredAt.Sub(*b.OccurredAt)
		if diff < 0 {
			diff = -diff
		}
		reasons = append(reasons, fmt.Sprintf("time difference: %d days", int(diff.Hours()/24)))
	}

	return reasons
}
