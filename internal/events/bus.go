package events

import (
	"sync"

	"github.com/pappy/matching-engine/internal/db"
)

// MatchCreated is emitted exactly once per created match. The
// notification subsystem subscribes to deliver alerts; the engine does
// not know how delivery happens.
type MatchCreated struct {
	Match db.Match
}

// Suggestion is one ranked lost/found counterpart.
type Suggestion struct {
	Announcement db.Announcement
	Score        float64
	Reasons      []string
}

// LostFoundSuggestions carries the ranked counterpart list computed for
// an announcement.
type LostFoundSuggestions struct {
	AnnouncementID uint64
	Matches        []Suggestion
}

// Bus is a synchronous in-process event dispatcher. Handlers run on the
// publishing goroutine; anything slow belongs on the subscriber's side.
type Bus struct {
	mu          sync.RWMutex
	matchSubs   []func(MatchCreated)
	suggestSubs []func(LostFoundSuggestions)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SubscribeMatchCreated(fn func(MatchCreated)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matchSubs = append(b.matchSubs, fn)
}

func (b *Bus) SubscribeLostFoundSuggestions(fn func(LostFoundSuggestions)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.suggestSubs = append(b.suggestSubs, fn)
}

func (b *Bus) PublishMatchCreated(e MatchCreated) {
	b.mu.RLock()
	subs := b.matchSubs
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}

func (b *Bus) PublishLostFoundSuggestions(e LostFoundSuggestions) {
	b.mu.RLock()
	subs := b.suggestSubs
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}
