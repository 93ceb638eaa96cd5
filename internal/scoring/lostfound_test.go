package scoring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pappy/matching-engine/internal/db"
	"github.com/pappy/matching-engine/internal/scoring"
)

func fp(v float64) *float64 { return &v }

func lostFoundPair() (*db.Announcement, *db.Announcement) {
	occurred := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lost := &db.Announcement{
		Kind: db.KindLost, Latitude: fp(55.7558), Longitude: fp(37.6173),
		Species: "dog", Breed: "corgi", Color: "ginger", Size: "small", Age: fpInt(3),
		DistinctiveFeatures: "white chest patch",
		OccurredAt:          &occurred,
	}
	foundAt := occurred.Add(12 * time.Hour)
	found := &db.Announcement{
		Kind: db.KindFound, Latitude: fp(55.7558), Longitude: fp(37.6173),
		Species: "dog", Breed: "corgi", Color: "ginger", Size: "small", Age: fpInt(3),
		DistinctiveFeatures: "white chest patch",
		OccurredAt:          &foundAt,
	}
	return lost, found
}

func fpInt(v int) *int { return &v }

func TestLostFoundSimilarity_PerfectMatch(t *testing.T) {
	lost, found := lostFoundPair()
	emb := []float64{0.1, 0.5, 0.3}

	// d=0 → geo 0.3; identical text → 0.3; identical embedding → 0.2;
	// breed+color+age → 0.2
	got := scoring.LostFoundSimilarity(lost, found, emb, emb)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestLostFoundSimilarity_MissingCoordinatesOmitGeoTerm(t *testing.T) {
	lost, found := lostFoundPair()
	lost.Latitude, lost.Longitude = nil, nil
	emb := []float64{1, 2, 3}

	// ceiling drops by the full geo weight, no renormalization
	got := scoring.LostFoundSimilarity(lost, found, emb, emb)
	assert.InDelta(t, 0.7, got, 1e-9)
}

func TestLostFoundSimilarity_MissingImageOmitsImageTerm(t *testing.T) {
	lost, found := lostFoundPair()

	got := scoring.LostFoundSimilarity(lost, found, nil, nil)
	assert.InDelta(t, 0.8, got, 1e-9)
}

func TestLostFoundSimilarity_GeoTermDecays(t *testing.T) {
	lost, found := lostFoundPair()
	// ~1 km north
	found.Latitude = fp(*lost.Latitude + 1.0/111.194926)

	d := scoring.Haversine(*lost.Latitude, *lost.Longitude, *found.Latitude, *found.Longitude)
	want := 0.3*(1.0/(1.0+d)) + 0.3 + 0.2
	got := scoring.LostFoundSimilarity(lost, found, nil, nil)
	assert.InDelta(t, want, got, 1e-9)
}

func TestSuggestionScore_AllBuckets(t *testing.T) {
	lost, found := lostFoundPair()

	// species .2 + breed .1 + color .1 + size .1 + distance≤1km .3 + time≤1d .2
	assert.InDelta(t, 1.0, scoring.SuggestionScore(lost, found), 1e-9)
}

func TestSuggestionScore_DistanceBuckets(t *testing.T) {
	lost, found := lostFoundPair()
	base := 0.5 + 0.2 // attributes + time≤1d

	cases := []struct {
		km   float64
		want float64
	}{
		{0.5, base + 0.3},
		{3.0, base + 0.2},
		{8.0, base + 0.1},
		{15.0, base},
	}
	for _, tc := range cases {
		found.Latitude = fp(*lost.Latitude + tc.km/111.194926)
		assert.InDelta(t, tc.want, scoring.SuggestionScore(lost, found), 1e-6, "%.1f km", tc.km)
	}
}

func TestSuggestionScore_TimeBuckets(t *testing.T) {
	lost, found := lostFoundPair()
	base := 0.5 + 0.3 // attributes + same location

	cases := []struct {
		hours int
		want  float64
	}{
		{12, base + 0.2},
		{60, base + 0.15},
		{144, base + 0.1},
		{240, base},
	}
	for _, tc := range cases {
		at := lost.OccurredAt.Add(time.Duration(tc.hours) * time.Hour)
		found.OccurredAt = &at
		assert.InDelta(t, tc.want, scoring.SuggestionScore(lost, found), 1e-9, "%d hours", tc.hours)
	}
}

func TestSuggestionReasons(t *testing.T) {
	lost, found := lostFoundPair()

	reasons := scoring.SuggestionReasons(lost, found)
	assert.Contains(t, reasons, "species matches")
	assert.Contains(t, reasons, "breed matches")
	assert.Contains(t, reasons, "color matches")
	assert.Contains(t, reasons, "size matches")
	assert.Contains(t, reasons, "distance between locations: 0.0 km")
	assert.Contains(t, reasons, "time difference: 0 days")
}
