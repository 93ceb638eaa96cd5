package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func ptr[T any](v T) *T { return &v }

// SeedTestData resets the database and populates it with demo users,
// announcements of every kind and a spread of swipe decisions.
//
// Behavior:
//  1. Clears decisions, views, matches, announcements and users.
//  2. Creates 12 users with hashed passwords.
//  3. Creates ~40 announcements: animals, services, mating pairs and a
//     lost/found pair placed in the same area for suggestion demos.
//  4. Generates decisions with ~70% likes; every 3rd pair gets a
//     guaranteed reciprocal like so matches exist out of the box.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"matches", "view_records", "decisions", "announcements", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	// --- Users ---
	for i := 1; i <= 12; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user := User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 12 users.")

	species := []string{"dog", "cat", "dog", "dog", "cat"}
	breeds := []string{"labrador", "siamese", "corgi", "beagle", "maine coon"}
	colors := []string{"black", "white", "brown", "ginger", "grey"}
	sizes := []string{"small", "medium", "large"}

	// --- Animal and mating announcements, a few per user ---
	var created []Announcement
	for author := uint64(1); author <= 12; author++ {
		for j := 0; j < 3; j++ {
			idx := r.Intn(len(species))
			kind := KindAnimal
			if j == 2 {
				kind = KindMating
			}
			ann := Announcement{
				AuthorID:  author,
				Title:     fmt.Sprintf("%s %s #%d", breeds[idx], species[idx], author),
				Kind:      kind,
				Status:    StatusActive,
				Price:     ptr(float64(50 + r.Intn(450))),
				IsPremium: r.Intn(100) < 20,
				Species:   species[idx],
				Breed:     breeds[idx],
				Age:       ptr(1 + r.Intn(10)),
				Gender:    []string{"male", "female"}[r.Intn(2)],
				Size:      sizes[r.Intn(len(sizes))],
				Color:     colors[r.Intn(len(colors))],
			}
			if err := db.Create(&ann).Error; err != nil {
				return fmt.Errorf("failed to seed announcement: %w", err)
			}
			created = append(created, ann)
		}
	}

	// --- A lost/found pair in the same neighborhood ---
	lostAt := time.Now().Add(-48 * time.Hour)
	foundAt := time.Now().Add(-24 * time.Hour)
	lost := Announcement{
		AuthorID: 1, Title: "Lost corgi Max", Kind: KindLost, Status: StatusActive,
		Latitude: ptr(55.7558), Longitude: ptr(37.6173),
		Species: "dog", Breed: "corgi", Age: ptr(3), Size: "small", Color: "ginger",
		OccurredAt:          &lostAt,
		DistinctiveFeatures: "white chest patch, red collar",
	}
	found := Announcement{
		AuthorID: 2, Title: "Found small ginger dog", Kind: KindFound, Status: StatusActive,
		Latitude: ptr(55.7601), Longitude: ptr(37.6208),
		Species: "dog", Breed: "corgi", Age: ptr(3), Size: "small", Color: "ginger",
		OccurredAt:          &foundAt,
		DistinctiveFeatures: "white chest patch, very friendly",
	}
	if err := db.Create(&lost).Error; err != nil {
		return err
	}
	if err := db.Create(&found).Error; err != nil {
		return err
	}

	// --- Decisions (~150), every 3rd with a guaranteed reciprocal like ---
	counter := 0
	for actor := uint64(1); actor <= 12; actor++ {
		for j := 0; j < 12; j++ {
			target := created[r.Intn(len(created))]
			if target.AuthorID == actor {
				continue
			}

			direction := DirectionDislike
			if r.Intn(100) < 70 {
				direction = DirectionLike
			}

			if counter%3 == 0 {
				direction = DirectionLike
				// reciprocal like from the target's author on one of the
				// actor's announcements
				var mine Announcement
				if err := db.Where("author_id = ?", actor).First(&mine).Error; err == nil {
					recip := Decision{
						UserID:         target.AuthorID,
						AnnouncementID: mine.ID,
						Direction:      DirectionLike,
					}
					db.Clauses(clause.OnConflict{DoNothing: true}).Create(&recip)
				}
			}

			d := Decision{UserID: actor, AnnouncementID: target.ID, Direction: direction}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&d).Error; err != nil {
				return fmt.Errorf("failed to seed decision: %w", err)
			}
			counter++
		}
	}

	log.Printf("Seeded %d announcements and ~%d decisions.", len(created)+2, counter)
	return nil
}

// SeedMinimalTestData wipes the DB and inserts a small deterministic
// dataset for repeatable tests.
//
// Dataset:
//   - Users: 1, 2, 3
//   - Announcements: ann1 (author 1, mating), ann2 (author 2, mating),
//     ann3 (author 3, animal)
//   - Decisions: user1 liked ann2
func SeedMinimalTestData(db *gorm.DB) error {
	for _, table := range []string{"matches", "view_records", "decisions", "announcements", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	users := []User{
		{ID: 1, Username: "user1", Email: "u1@test.com", PasswordHash: "x"},
		{ID: 2, Username: "user2", Email: "u2@test.com", PasswordHash: "x"},
		{ID: 3, Username: "user3", Email: "u3@test.com", PasswordHash: "x"},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	anns := []Announcement{
		{ID: 1, AuthorID: 1, Title: "ann1", Kind: KindMating, Status: StatusActive,
			Species: "dog", Breed: "corgi", Age: ptr(3), Gender: "male"},
		{ID: 2, AuthorID: 2, Title: "ann2", Kind: KindMating, Status: StatusActive,
			Species: "dog", Breed: "corgi", Age: ptr(4), Gender: "female"},
		{ID: 3, AuthorID: 3, Title: "ann3", Kind: KindAnimal, Status: StatusActive,
			Species: "cat", Breed: "siamese", Age: ptr(2), Gender: "female"},
	}
	if err := db.Create(&anns).Error; err != nil {
		return err
	}

	decisions := []Decision{
		{UserID: 1, AnnouncementID: 2, Direction: DirectionLike}, // user1 → ann2 (author 2)
	}
	return db.Create(&decisions).Error
}
