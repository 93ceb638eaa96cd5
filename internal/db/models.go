package db

import (
	"fmt"
	"time"
)

// Announcement kinds. The engine only reads these; the listing
// subsystem owns the rows.
const (
	KindAnimal  = "animal"
	KindService = "service"
	KindMating  = "mating"
	KindLost    = "lost"
	KindFound   = "found"
)

// Announcement statuses.
const (
	StatusActive     = "active"
	StatusModeration = "moderation"
	StatusClosed     = "closed"
	StatusArchived   = "archived"
)

// Swipe directions.
const (
	DirectionLike    = "LIKE"
	DirectionDislike = "DISLIKE"
)

// User table. Demo/seed scaffolding: the engine itself receives
// already-authenticated user IDs and never joins through this table.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Announcement is the swipeable candidate. Read-only here: the engine
// filters and ranks announcements but never mutates listing content.
//
// Lost/found rows additionally carry OccurredAt, DistinctiveFeatures
// and PhotoRef; other kinds leave them zero.
type Announcement struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	AuthorID  uint64 `gorm:"not null;index:idx_author"`
	Title     string `gorm:"size:200;not null"`
	Kind      string `gorm:"size:20;not null;index:idx_kind_status,priority:1"`
	Status    string `gorm:"size:20;not null;index:idx_kind_status,priority:2"`
	Price     *float64
	IsPremium bool `gorm:"default:false"`

	Latitude  *float64
	Longitude *float64

	// attribute bag
	Species string `gorm:"size:100"`
	Breed   string `gorm:"size:100"`
	Age     *int
	Gender  string `gorm:"size:10"`
	Size    string `gorm:"size:20"`
	Color   string `gorm:"size:100"`

	// lost/found details
	OccurredAt          *time.Time `gorm:"index"`
	DistinctiveFeatures string
	PhotoRef            string `gorm:"size:255"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Decision is a user's swipe on an announcement.
//
// Composite PK (UserID, AnnouncementID) is the uniqueness constraint:
// appends are plain INSERTs and the second writer for a pair loses at
// the storage layer, not via read-then-write.
//
// Rows are never updated. The only delete path is undo of the most
// recent view.
type Decision struct {
	UserID         uint64    `gorm:"primaryKey"`
	AnnouncementID uint64    `gorm:"primaryKey;index:idx_announcement_direction,priority:1"`
	Direction      string    `gorm:"size:10;not null;index:idx_announcement_direction,priority:2"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// ViewRecord tracks that a candidate was shown to a user, for
// single-step undo. At most one row per (user, announcement); creation
// is idempotent. Returned flips to true when the view is unwound.
type ViewRecord struct {
	UserID         uint64    `gorm:"primaryKey"`
	AnnouncementID uint64    `gorm:"primaryKey"`
	ViewedAt       time.Time `gorm:"not null;index:idx_user_viewed,priority:2,sort:desc"`
	Returned       bool      `gorm:"not null;default:false"`
}

// Match records mutual interest between two users through their
// announcements. PairKey is the canonical encoding of the unordered
// pair {(UserA, AnnouncementA), (UserB, AnnouncementB)}; its unique
// index is what makes concurrent reciprocal likes collapse to one row.
type Match struct {
	ID                 string `gorm:"primaryKey;size:36"`
	PairKey            string `gorm:"uniqueIndex;size:96;not null"`
	UserA              uint64 `gorm:"not null;index"`
	UserB              uint64 `gorm:"not null;index"`
	AnnouncementA      uint64 `gorm:"not null"`
	AnnouncementB      uint64 `gorm:"not null"`
	IsActive           bool   `gorm:"not null;default:true"`
	IsBreedingMatch    bool   `gorm:"not null;default:false"`
	CompatibilityScore *float64
	CreatedAt          time.Time `gorm:"autoCreateTime"`
}

// PairKey canonicalizes a match pair: the leg with the smaller user ID
// always comes first, so both submission orders produce the same key.
func PairKey(userA, announcementA, userB, announcementB uint64) string {
	if userB < userA {
		userA, userB = userB, userA
		announcementA, announcementB = announcementB, announcementA
	}
	return fmt.Sprintf("%d:%d|%d:%d", userA, announcementA, userB, announcementB)
}

// ValidDirection reports whether d is a persistable swipe direction.
func ValidDirection(d string) bool {
	return d == DirectionLike || d == DirectionDislike
}
