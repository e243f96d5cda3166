package rdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/database/rdb"
)

func TestScoreRepository_InsertThenUpdateImproved(t *testing.T) {
	t.Cleanup(cleanDatabase)
	ctx := context.Background()
	players := rdb.NewPlayerRepository(testDB)
	songs := rdb.NewSongRepository(testDB)
	scores := rdb.NewScoreRepository(testDB)

	player, err := players.Upsert(ctx, &entity.NewPlayer{Username: "p", SteamID: 1, SteamAccountNum: 1})
	require.NoError(t, err)
	song, err := songs.Create(ctx, &entity.NewSong{Title: "S", Artist: "A"})
	require.NoError(t, err)

	first, err := scores.Insert(ctx, &entity.NewScore{
		PlayerID: player.ID, SongID: song.ID, League: entity.LeagueCasual,
		Score: 1000, GoldThreshold: 10000,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), first.PlayCount)

	improved, err := scores.UpdateImproved(ctx, first.ID, &entity.NewScore{
		Score: 2000, GoldThreshold: 10000,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2000), improved.Score)
	assert.Equal(t, int32(2), improved.PlayCount)
}

func TestScoreRepository_TouchNonImprovingLeavesScoreUnchanged(t *testing.T) {
	t.Cleanup(cleanDatabase)
	ctx := context.Background()
	players := rdb.NewPlayerRepository(testDB)
	songs := rdb.NewSongRepository(testDB)
	scores := rdb.NewScoreRepository(testDB)

	player, err := players.Upsert(ctx, &entity.NewPlayer{Username: "p", SteamID: 1, SteamAccountNum: 1})
	require.NoError(t, err)
	song, err := songs.Create(ctx, &entity.NewSong{Title: "S", Artist: "A"})
	require.NoError(t, err)

	first, err := scores.Insert(ctx, &entity.NewScore{
		PlayerID: player.ID, SongID: song.ID, League: entity.LeagueCasual, Score: 5000, GoldThreshold: 10000,
	})
	require.NoError(t, err)

	touched, err := scores.TouchNonImproving(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(5000), touched.Score)
	assert.Equal(t, int32(2), touched.PlayCount)
}

func TestScoreRepository_TopGlobal(t *testing.T) {
	t.Cleanup(cleanDatabase)
	ctx := context.Background()
	players := rdb.NewPlayerRepository(testDB)
	songs := rdb.NewSongRepository(testDB)
	scores := rdb.NewScoreRepository(testDB)

	song, err := songs.Create(ctx, &entity.NewSong{Title: "S", Artist: "A"})
	require.NoError(t, err)

	for i, name := range []string{"low", "high"} {
		p, err := players.Upsert(ctx, &entity.NewPlayer{Username: name, SteamID: uint64(i + 1), SteamAccountNum: int32(i + 1)})
		require.NoError(t, err)
		score := int32(100)
		if name == "high" {
			score = 9000
		}
		_, err = scores.Insert(ctx, &entity.NewScore{PlayerID: p.ID, SongID: song.ID, League: entity.LeagueCasual, Score: score, GoldThreshold: 10000})
		require.NoError(t, err)
	}

	top, err := scores.TopGlobal(ctx, song.ID, entity.LeagueCasual, 11)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "high", top[0].PlayerUsername)
}
