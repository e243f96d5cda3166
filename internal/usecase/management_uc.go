package usecase

import (
	"context"

	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
)

// SearchIndexTrigger is the subset of the §6.4 search-index marker the
// management dispatcher needs; the sync job itself is out of scope (§1).
type SearchIndexTrigger interface {
	Trigger(ctx context.Context, unixSeconds int64) error
}

// ManagementUseCase implements component J, the offline operations the
// management command dispatcher (`cmd/admin`) exposes: merging duplicate
// songs, deleting entities with their leaderboard side effects unwound, bulk
// skill-point recomputation, and triggering the search-index sync job.
type ManagementUseCase interface {
	// MergeSongs transfers every Score and Shout referencing fromID onto
	// toID, then deletes the fromID Song row (§4.3, §9 "management command
	// dispatcher").
	MergeSongs(ctx context.Context, fromID, toID int64) error
	// DeleteSong unwinds every score's leaderboard contribution before
	// cascading the song delete, mirroring the admin API's deleteSong.
	DeleteSong(ctx context.Context, songID int64) error
	// DeleteScore unwinds a single score's leaderboard contribution and
	// deletes the row.
	DeleteScore(ctx context.Context, scoreID int64) error
	// DeleteShout deletes a shout unconditionally (the management CLI runs
	// with operator trust; unlike the admin API's Delete it takes no actor).
	DeleteShout(ctx context.Context, shoutID int64) error
	// DeleteRivalry removes a single directed rivalry edge.
	DeleteRivalry(ctx context.Context, challengerID, rivalID int64) error
	// RecomputeSkillPoints resums and overwrites one player's leaderboard
	// entry (§4.6 "Recomputation").
	RecomputeSkillPoints(ctx context.Context, playerID int64) error
	// RecomputeAllSkillPoints pages through every player and recomputes
	// each in turn, returning the count processed.
	RecomputeAllSkillPoints(ctx context.Context) (int, error)
	// SyncSearchIndex stamps the last_meilisearch_sync marker with the
	// given unix-second timestamp, the out-of-scope job's triggering
	// contract (§1, §6.4).
	SyncSearchIndex(ctx context.Context, unixSeconds int64) error
}

type managementUseCase struct {
	songs       entity.SongRepository
	scoreRepo   entity.ScoreRepository
	scores      ScoreUseCase
	shouts      entity.ShoutRepository
	rivalries   entity.RivalryRepository
	players     entity.PlayerRepository
	leaderboard LeaderboardUseCase
	searchIndex SearchIndexTrigger
	logger      *logging.Logger
}

var _ ManagementUseCase = (*managementUseCase)(nil)

// managementPageSize is the page size RecomputeAllSkillPoints pages the
// player table with.
const managementPageSize = 200

// NewManagementUseCase creates a new management use case.
func NewManagementUseCase(
	songs entity.SongRepository,
	scoreRepo entity.ScoreRepository,
	scores ScoreUseCase,
	shouts entity.ShoutRepository,
	rivalries entity.RivalryRepository,
	players entity.PlayerRepository,
	leaderboard LeaderboardUseCase,
	searchIndex SearchIndexTrigger,
	logger *logging.Logger,
) ManagementUseCase {
	return &managementUseCase{
		songs:       songs,
		scoreRepo:   scoreRepo,
		scores:      scores,
		shouts:      shouts,
		rivalries:   rivalries,
		players:     players,
		leaderboard: leaderboard,
		searchIndex: searchIndex,
		logger:      logger,
	}
}

func (uc *managementUseCase) MergeSongs(ctx context.Context, fromID, toID int64) error {
	return uc.songs.Merge(ctx, fromID, toID)
}

// DeleteSong mirrors the admin API's deleteSong: the original explicitly
// unwinds every score's leaderboard contribution before cascading the song
// delete, since there is no SQL-trigger equivalent for the cache side
// effect (DESIGN.md, §4.6).
func (uc *managementUseCase) DeleteSong(ctx context.Context, songID int64) error {
	rows, err := uc.scoreRepo.DeleteBySong(ctx, songID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := uc.scores.Delete(ctx, row.ID); err != nil {
			uc.logger.Error(ctx, "failed to unwind score during song delete", err)
		}
	}
	return uc.songs.Delete(ctx, songID)
}

func (uc *managementUseCase) DeleteScore(ctx context.Context, scoreID int64) error {
	return uc.scores.Delete(ctx, scoreID)
}

func (uc *managementUseCase) DeleteShout(ctx context.Context, shoutID int64) error {
	return uc.shouts.Delete(ctx, shoutID)
}

func (uc *managementUseCase) DeleteRivalry(ctx context.Context, challengerID, rivalID int64) error {
	return uc.rivalries.Delete(ctx, challengerID, rivalID)
}

func (uc *managementUseCase) RecomputeSkillPoints(ctx context.Context, playerID int64) error {
	return uc.leaderboard.Recompute(ctx, playerID)
}

func (uc *managementUseCase) RecomputeAllSkillPoints(ctx context.Context) (int, error) {
	processed := 0
	offset := 0
	for {
		page, err := uc.players.List(ctx, managementPageSize, offset)
		if err != nil {
			return processed, err
		}
		if len(page) == 0 {
			return processed, nil
		}
		for _, p := range page {
			if err := uc.leaderboard.Recompute(ctx, p.ID); err != nil {
				uc.logger.Error(ctx, "failed to recompute skill points", err)
				continue
			}
			processed++
		}
		offset += len(page)
	}
}

func (uc *managementUseCase) SyncSearchIndex(ctx context.Context, unixSeconds int64) error {
	return uc.searchIndex.Trigger(ctx, unixSeconds)
}
