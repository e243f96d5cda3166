package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
)

// SubmitScoreParams carries the validated fields of a submitted ride.
type SubmitScoreParams struct {
	PlayerID      int64
	SongID        int64
	League        entity.League
	Score         int32
	Vehicle       entity.Vehicle
	Density       int32
	TrackShape    []int32
	XStats        []int32
	Feats         []string
	SongLengthCs  int32
	GoldThreshold int32
	Iss, Isj      *int32
}

// DethroneResult describes the outcome of send_ride's dethrone computation.
// When no prior leader existed, it carries the sentinel tuple the wire
// protocol expects: RivalScore 143, everything else zeroed.
type DethroneResult struct {
	Dethroned    bool
	Friend       bool
	RivalName    string
	RivalScore   int32
	MyScore      int32
	ReignSeconds int64
}

// SubmitScoreResult is the outcome of a score submission: the stored row and
// its dethrone response.
type SubmitScoreResult struct {
	Score    *entity.Score
	NewPB    bool
	Dethrone *DethroneResult
}

// SubmitLocker serialises score submission per (player, song, league) so the
// non-atomic subtract/upsert/add sequence below cannot interleave across two
// concurrent submissions for the same key.
type SubmitLocker interface {
	Acquire(ctx context.Context, playerID, songID int64, league int16) (release func(context.Context), ok bool, err error)
}

// LeaderboardAdjuster is the subset of the leaderboard cache the submission
// engine needs to keep a player's skill-point total in sync.
type LeaderboardAdjuster interface {
	Incr(ctx context.Context, playerID int64, delta float64) error
}

// ScoreUseCase implements §4.5: accept a submitted ride, maintain personal
// bests and the leaderboard cache's running totals, and compute the
// dethrone response send_ride returns alongside the stored score.
type ScoreUseCase interface {
	// Submit runs the full submission procedure.
	//
	// # Possible errors
	//  - Unauthenticated: no player with params.PlayerID exists.
	//  - NotFound: no song with params.SongID exists.
	//  - Unavailable: the submit lock could not be acquired in time.
	//  - Internal: underlying store failure.
	Submit(ctx context.Context, params *SubmitScoreParams) (*SubmitScoreResult, error)
	// Delete removes a Score row and unwinds its skill points from the
	// leaderboard, for administrative use.
	Delete(ctx context.Context, scoreID int64) error
}

type scoreUseCase struct {
	players     entity.PlayerRepository
	songs       entity.SongRepository
	scores      entity.ScoreRepository
	rivalries   entity.RivalryRepository
	leaderboard LeaderboardAdjuster
	lock        SubmitLocker
	enrichment  EnrichmentRequester
	logger      *logging.Logger
}

var _ ScoreUseCase = (*scoreUseCase)(nil)

// NewScoreUseCase creates a new score submission use case.
func NewScoreUseCase(
	players entity.PlayerRepository,
	songs entity.SongRepository,
	scores entity.ScoreRepository,
	rivalries entity.RivalryRepository,
	leaderboard LeaderboardAdjuster,
	lock SubmitLocker,
	enrichment EnrichmentRequester,
	logger *logging.Logger,
) ScoreUseCase {
	return &scoreUseCase{
		players:     players,
		songs:       songs,
		scores:      scores,
		rivalries:   rivalries,
		leaderboard: leaderboard,
		lock:        lock,
		enrichment:  enrichment,
		logger:      logger,
	}
}

// Submit implements §4.5's procedure, steps 1-7.
func (uc *scoreUseCase) Submit(ctx context.Context, params *SubmitScoreParams) (*SubmitScoreResult, error) {
	player, err := uc.players.Get(ctx, params.PlayerID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(codes.Unauthenticated, "unknown player")
		}
		return nil, err
	}

	if _, err := uc.songs.Get(ctx, params.SongID); err != nil {
		return nil, err
	}

	release, ok, err := uc.lock.Acquire(ctx, params.PlayerID, params.SongID, int16(params.League))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(codes.Unavailable, "another submission for this player/song/league is in flight")
	}
	defer release(ctx)

	leader, hasLeader, err := uc.currentLeader(ctx, params.SongID, params.League, params.PlayerID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.scores.GetPersonalBest(ctx, params.PlayerID, params.SongID, params.League)
	hadExisting := true
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		hadExisting = false
	}

	newPB := !hadExisting || existing.Score < params.Score

	newScore := &entity.NewScore{
		PlayerID:      params.PlayerID,
		SongID:        params.SongID,
		League:        params.League,
		Score:         params.Score,
		Vehicle:       params.Vehicle,
		Density:       params.Density,
		TrackShape:    params.TrackShape,
		XStats:        params.XStats,
		Feats:         params.Feats,
		SongLengthCs:  params.SongLengthCs,
		GoldThreshold: params.GoldThreshold,
		Iss:           params.Iss,
		Isj:           params.Isj,
	}

	var stored *entity.Score
	if newPB {
		stored, err = uc.applyNewPB(ctx, params.PlayerID, hadExisting, existing, newScore)
	} else {
		stored, err = uc.scores.TouchNonImproving(ctx, existing.ID)
	}
	if err != nil {
		return nil, err
	}

	dethrone := uc.computeDethrone(ctx, leader, hasLeader, player, stored.Score)

	uc.enrichment.RequestAutoEnrichment(ctx, params.SongID, params.SongLengthCs*10)

	return &SubmitScoreResult{Score: stored, NewPB: newPB, Dethrone: dethrone}, nil
}

// applyNewPB runs the (a)->(b)->(c) sequence: subtract the old skill points,
// upsert the row, add the new skill points. These three effects must stay in
// this order so a crash between (a) and (c) under-counts rather than
// over-counts a player's leaderboard total.
func (uc *scoreUseCase) applyNewPB(ctx context.Context, playerID int64, hadExisting bool, existing *entity.Score, newScore *entity.NewScore) (*entity.Score, error) {
	if hadExisting {
		if err := uc.leaderboard.Incr(ctx, playerID, -float64(existing.SkillPoints())); err != nil {
			return nil, err
		}
	}

	var stored *entity.Score
	var err error
	if hadExisting {
		stored, err = uc.scores.UpdateImproved(ctx, existing.ID, newScore)
	} else {
		stored, err = uc.scores.Insert(ctx, newScore)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.leaderboard.Incr(ctx, playerID, float64(stored.SkillPoints())); err != nil {
		return nil, err
	}
	return stored, nil
}

// currentLeader finds the potential dethrone victim: the top score for
// (songID, league) excluding the submitting player.
func (uc *scoreUseCase) currentLeader(ctx context.Context, songID int64, league entity.League, excludePlayerID int64) (*entity.ScoreWithPlayer, bool, error) {
	top, err := uc.scores.TopGlobal(ctx, songID, league, 2)
	if err != nil {
		return nil, false, err
	}
	for _, row := range top {
		if row.PlayerID != excludePlayerID {
			return row, true, nil
		}
	}
	return nil, false, nil
}

// computeDethrone implements §4.5 step 6. Errors from the mutual-rivalry
// lookup are logged and treated as non-mutual rather than failing the
// submission: the dethrone block is informational, not load-bearing.
func (uc *scoreUseCase) computeDethrone(ctx context.Context, leader *entity.ScoreWithPlayer, hasLeader bool, player *entity.Player, myScore int32) *DethroneResult {
	if !hasLeader {
		return &DethroneResult{RivalName: "No one", RivalScore: 143}
	}

	friend, err := uc.rivalries.IsMutual(ctx, player.ID, leader.PlayerID)
	if err != nil {
		uc.logger.Error(ctx, "mutual rivalry lookup failed", err, slog.Int64("player_id", player.ID), slog.Int64("leader_id", leader.PlayerID))
		friend = false
	}

	return &DethroneResult{
		Dethroned:    leader.Score < myScore,
		Friend:       friend,
		RivalName:    leader.PlayerUsername,
		RivalScore:   leader.Score,
		MyScore:      myScore,
		ReignSeconds: int64(time.Since(leader.SubmittedAt).Seconds()),
	}
}

// Delete implements the §4.5 administrative score delete.
func (uc *scoreUseCase) Delete(ctx context.Context, scoreID int64) error {
	row, err := uc.scores.Delete(ctx, scoreID)
	if err != nil {
		return err
	}
	if err := uc.leaderboard.Incr(ctx, row.PlayerID, -float64(row.SkillPoints())); err != nil {
		uc.logger.Error(ctx, "leaderboard unwind failed during score delete", err, slog.Int64("score_id", row.ID), slog.Int64("player_id", row.PlayerID))
	}
	return nil
}
