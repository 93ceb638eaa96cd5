package scoring

import (
	"math"
	"strings"

	"github.com/pappy/matching-engine/internal/db"
)

// BreedingCompatibility scores two mating announcements in [0,1].
//
//   - same species: +0.5
//   - same breed, only counted when the species already match: +0.3
//   - age difference ≤ 2 years, both ages known: +0.2
//
// Missing attributes skip their term; the result is capped at 1.0.
func BreedingCompatibility(a, b *db.Announcement) float64 {
	score := 0.0

	if a.Species != "" && strings.EqualFold(a.Species, b.Species) {
		score += 0.5
		if a.Breed != "" && strings.EqualFold(a.Breed, b.Breed) {
			score += 0.3
		}
	}

	if a.Age != nil && b.Age != nil {
		if diff := *a.Age - *b.Age; diff >= -2 && diff <= 2 {
			score += 0.2
		}
	}

	return math.Min(score, 1.0)
}
