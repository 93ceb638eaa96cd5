package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pappy/matching-engine/internal/db"
	svcErr "github.com/pappy/matching-engine/internal/errors"
	"github.com/pappy/matching-engine/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListForUserPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 3; i++ {
		m := db.Match{
			ID:            uuid.NewString(),
			PairKey:       db.PairKey(1, uint64(100+i), uint64(10+i), uint64(200+i)),
			UserA:         1,
			UserB:         uint64(10 + i),
			AnnouncementA: uint64(100 + i),
			AnnouncementB: uint64(200 + i),
			IsActive:      true,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, dbase.Create(&m).Error)
	}
	// inactive matches never appear
	require.NoError(t, dbase.Create(&db.Match{
		ID: uuid.NewString(), PairKey: db.PairKey(1, 500, 50, 600),
		UserA: 1, UserB: 50, AnnouncementA: 500, AnnouncementB: 600,
		IsActive: false, CreatedAt: base.Add(time.Hour),
	}).Error)
	// a match for someone else
	require.NoError(t, dbase.Create(&db.Match{
		ID: uuid.NewString(), PairKey: db.PairKey(7, 700, 8, 800),
		UserA: 7, UserB: 8, AnnouncementA: 700, AnnouncementB: 800,
		IsActive: true, CreatedAt: base,
	}).Error)

	// first page: newest two
	page1, token, err := repo.ListForUser(ctx, 1, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, token)
	assert.True(t, page1[0].CreatedAt.After(page1[1].CreatedAt))

	// second page: the remaining one, no further token
	page2, token2, err := repo.ListForUser(ctx, 1, token, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Nil(t, token2)
	assert.NotEqual(t, page1[0].ID, page2[0].ID)
	assert.NotEqual(t, page1[1].ID, page2[0].ID)
}

func TestListForUserBothLegs(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	// user 5 appears once as user_a and once as user_b
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, pair := range [][2]uint64{{5, 9}, {2, 5}} {
		require.NoError(t, dbase.Create(&db.Match{
			ID:      uuid.NewString(),
			PairKey: fmt.Sprintf("test-%d", i),
			UserA:   pair[0], UserB: pair[1],
			AnnouncementA: 1, AnnouncementB: 2,
			IsActive: true, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}).Error)
	}

	matches, _, err := repo.ListForUser(ctx, 5, nil, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestGetByPairKey(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	key := db.PairKey(2, 20, 1, 10) // canonical regardless of order
	require.NoError(t, dbase.Create(&db.Match{
		ID: uuid.NewString(), PairKey: key,
		UserA: 1, UserB: 2, AnnouncementA: 10, AnnouncementB: 20, IsActive: true,
	}).Error)

	got, err := repo.GetByPairKey(ctx, db.PairKey(1, 10, 2, 20))
	require.NoError(t, err)
	assert.Equal(t, key, got.PairKey)

	_, err = repo.GetByPairKey(ctx, "nope")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}
