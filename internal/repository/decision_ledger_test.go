package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/pappy/matching-engine/internal/db"
	svcErr "github.com/pappy/matching-engine/internal/errors"
	"github.com/pappy/matching-engine/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true, // duplicate-key detection must work on sqlite too
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestAppendExactlyOnce(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	ledger := repository.NewDecisionLedger(dbase)

	d, err := ledger.Append(ctx, 1, 2, db.DirectionLike)
	require.NoError(t, err)
	assert.Equal(t, db.DirectionLike, d.Direction)

	// same pair again, any direction → rejected, original survives
	_, err = ledger.Append(ctx, 1, 2, db.DirectionDislike)
	assert.ErrorIs(t, err, svcErr.ErrAlreadyDecided)

	for i := 0; i < 5; i++ {
		_, err = ledger.Append(ctx, 1, 2, db.DirectionLike)
		assert.ErrorIs(t, err, svcErr.ErrAlreadyDecided)
	}

	var count int64
	require.NoError(t, dbase.Model(&db.Decision{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := ledger.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, db.DirectionLike, got.Direction)
}

func TestUndoLastFlow(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	ledger := repository.NewDecisionLedger(dbase)
	views := repository.NewViewRecords(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, views.Record(ctx, 1, 10, base))
	require.NoError(t, views.Record(ctx, 1, 20, base.Add(time.Minute)))

	// decide on the newest viewed card
	_, err := ledger.Append(ctx, 1, 20, db.DirectionLike)
	require.NoError(t, err)

	// undo unwinds the newest view and deletes its decision
	deleted, err := ledger.UndoLast(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, uint64(20), deleted.AnnouncementID)

	// the pair is decidable again
	_, err = ledger.Append(ctx, 1, 20, db.DirectionDislike)
	assert.NoError(t, err)

	// next undo hits the older view, which was never decided
	deleted, err = ledger.UndoLast(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	// nothing left to unwind
	_, err = ledger.UndoLast(ctx, 1)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestUndoLastOnlyMostRecent(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	ledger := repository.NewDecisionLedger(dbase)
	views := repository.NewViewRecords(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, views.Record(ctx, 1, 10, base))
	require.NoError(t, views.Record(ctx, 1, 20, base.Add(time.Minute)))

	_, err := ledger.Append(ctx, 1, 10, db.DirectionLike)
	require.NoError(t, err)

	// newest view (20) has no decision; the older decision on 10 must
	// stay untouched
	deleted, err := ledger.UndoLast(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	got, err := ledger.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, db.DirectionLike, got.Direction)
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	ledger := repository.NewDecisionLedger(dbase)

	_, _ = ledger.Append(ctx, 1, 99, db.DirectionLike)
	_, _ = ledger.Append(ctx, 2, 99, db.DirectionLike)
	_, _ = ledger.Append(ctx, 3, 99, db.DirectionDislike)
	_, _ = ledger.Append(ctx, 1, 50, db.DirectionLike)

	likes, err := ledger.CountLikesReceived(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(2), likes)

	// popularity counts decisions of any direction
	counts, err := ledger.CountDecisionsReceived(ctx, []uint64{99, 50, 7})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[99])
	assert.Equal(t, int64(1), counts[50])
	assert.Equal(t, int64(0), counts[7])
}

func TestFindReciprocalLike(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	ledger := repository.NewDecisionLedger(dbase)

	anns := []db.Announcement{
		{ID: 1, AuthorID: 1, Title: "a1", Kind: db.KindAnimal, Status: db.StatusActive},
		{ID: 2, AuthorID: 2, Title: "a2", Kind: db.KindAnimal, Status: db.StatusActive},
	}
	require.NoError(t, dbase.Create(&anns).Error)

	// no like yet
	recip, err := repository.FindReciprocalLike(dbase.WithContext(ctx), 2, 1)
	require.NoError(t, err)
	assert.Nil(t, recip)

	// a DISLIKE is not reciprocity
	_, err = ledger.Append(ctx, 2, 1, db.DirectionDislike)
	require.NoError(t, err)
	recip, err = repository.FindReciprocalLike(dbase.WithContext(ctx), 2, 1)
	require.NoError(t, err)
	assert.Nil(t, recip)

	// user 3 liked user 1's announcement
	_, err = ledger.Append(ctx, 3, 1, db.DirectionLike)
	require.NoError(t, err)
	recip, err = repository.FindReciprocalLike(dbase.WithContext(ctx), 3, 1)
	require.NoError(t, err)
	require.NotNil(t, recip)
	assert.Equal(t, uint64(1), recip.AnnouncementID)
}
