package rdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/database/rdb"
)

func TestPlayerRepository_UpsertCreatesThenUpdates(t *testing.T) {
	t.Cleanup(cleanDatabase)
	ctx := context.Background()
	repo := rdb.NewPlayerRepository(testDB)

	created, err := repo.Upsert(ctx, &entity.NewPlayer{
		Username:        "skyex",
		SteamID:         76561198000000001,
		SteamAccountNum: 123456,
		LocationID:      7,
		AvatarURL:       "https://example.com/a.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "skyex", created.Username)
	assert.Equal(t, int32(7), created.LocationID)

	updated, err := repo.Upsert(ctx, &entity.NewPlayer{
		Username:        "skyex2",
		SteamID:         76561198000000001,
		SteamAccountNum: 123456,
		LocationID:      99,
		AvatarURL:       "https://example.com/b.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "skyex2", updated.Username)
	assert.Equal(t, "https://example.com/b.jpg", updated.AvatarURL)
	// location_id is not part of the upsert conflict clause; it must be
	// left at its original value rather than overwritten on re-login.
	assert.Equal(t, int32(7), updated.LocationID)
}

func TestPlayerRepository_GetBySteamAccountNum(t *testing.T) {
	t.Cleanup(cleanDatabase)
	ctx := context.Background()
	repo := rdb.NewPlayerRepository(testDB)

	created, err := repo.Upsert(ctx, &entity.NewPlayer{
		Username: "p1", SteamID: 1, SteamAccountNum: 42,
	})
	require.NoError(t, err)

	got, err := repo.GetBySteamAccountNum(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetBySteamAccountNum(ctx, 9999)
	assert.Error(t, err)
}

func TestPlayerRepository_GetByLocation(t *testing.T) {
	t.Cleanup(cleanDatabase)
	ctx := context.Background()
	repo := rdb.NewPlayerRepository(testDB)

	near, err := repo.Upsert(ctx, &entity.NewPlayer{
		Username: "near1", SteamID: 1, SteamAccountNum: 1, LocationID: 7,
	})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, &entity.NewPlayer{
		Username: "far1", SteamID: 2, SteamAccountNum: 2, LocationID: 8,
	})
	require.NoError(t, err)

	got, err := repo.GetByLocation(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, near.ID, got[0].ID)
}

func TestPlayerRepository_SkillPoints(t *testing.T) {
	t.Cleanup(cleanDatabase)
	ctx := context.Background()
	players := rdb.NewPlayerRepository(testDB)
	songs := rdb.NewSongRepository(testDB)
	scores := rdb.NewScoreRepository(testDB)

	player, err := players.Upsert(ctx, &entity.NewPlayer{Username: "p1", SteamID: 1, SteamAccountNum: 1})
	require.NoError(t, err)

	song, err := songs.Create(ctx, &entity.NewSong{Title: "Test Song", Artist: "Test Artist"})
	require.NoError(t, err)

	_, err = scores.Insert(ctx, &entity.NewScore{
		PlayerID: player.ID, SongID: song.ID, League: entity.LeagueCasual,
		Score: 84490, GoldThreshold: 84490, SongLengthCs: 12000,
	})
	require.NoError(t, err)

	total, err := players.SkillPoints(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
}
