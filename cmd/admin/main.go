// Package main provides the management command dispatcher (component J): a
// subcommand CLI for the offline operations spec.md names out of the HTTP
// surface entirely — merging duplicate songs, deleting entities with their
// leaderboard side effects unwound, bulk skill-point recomputation, and
// triggering the search-index sync job.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/wavebreaker/backend/internal/di"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&mergeSongsCmd{}, "songs")
	subcommands.Register(&deleteSongCmd{}, "songs")
	subcommands.Register(&deleteScoreCmd{}, "scores")
	subcommands.Register(&deleteShoutCmd{}, "shouts")
	subcommands.Register(&deleteRivalryCmd{}, "rivals")
	subcommands.Register(&recomputeSkillPointsCmd{}, "leaderboard")
	subcommands.Register(&syncSearchIndexCmd{}, "search")

	flag.Parse()

	ctx := context.Background()
	app, err := di.InitializeManagementApp(ctx)
	if err != nil {
		log.Fatalf("failed to initialize management app: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Error(ctx, "error closing management app", err)
		}
	}()

	os.Exit(int(subcommands.Execute(ctx, app)))
}

type mergeSongsCmd struct {
	from int64
	to   int64
}

func (*mergeSongsCmd) Name() string     { return "merge-songs" }
func (*mergeSongsCmd) Synopsis() string { return "merge a duplicate song into its canonical row" }
func (*mergeSongsCmd) Usage() string {
	return "merge-songs -from <song-id> -to <song-id>\n"
}

func (c *mergeSongsCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.from, "from", 0, "id of the song to be absorbed and deleted")
	f.Int64Var(&c.to, "to", 0, "id of the canonical song to keep")
}

func (c *mergeSongsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := args[0].(*di.ManagementApp)
	if c.from == 0 || c.to == 0 || c.from == c.to {
		fmt.Fprintln(os.Stderr, "merge-songs: -from and -to are required and must differ")
		return subcommands.ExitUsageError
	}
	if err := app.Management.MergeSongs(ctx, c.from, c.to); err != nil {
		fmt.Fprintf(os.Stderr, "merge-songs: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("merged song %d into %d\n", c.from, c.to)
	return subcommands.ExitSuccess
}

type deleteSongCmd struct {
	id int64
}

func (*deleteSongCmd) Name() string     { return "delete-song" }
func (*deleteSongCmd) Synopsis() string { return "delete a song, its scores, and its extra info" }
func (*deleteSongCmd) Usage() string    { return "delete-song -id <song-id>\n" }

func (c *deleteSongCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "song id to delete")
}

func (c *deleteSongCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := args[0].(*di.ManagementApp)
	if c.id == 0 {
		fmt.Fprintln(os.Stderr, "delete-song: -id is required")
		return subcommands.ExitUsageError
	}
	if err := app.Management.DeleteSong(ctx, c.id); err != nil {
		fmt.Fprintf(os.Stderr, "delete-song: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("deleted song %d\n", c.id)
	return subcommands.ExitSuccess
}

type deleteScoreCmd struct {
	id int64
}

func (*deleteScoreCmd) Name() string     { return "delete-score" }
func (*deleteScoreCmd) Synopsis() string { return "delete a score and unwind its skill points" }
func (*deleteScoreCmd) Usage() string    { return "delete-score -id <score-id>\n" }

func (c *deleteScoreCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "score id to delete")
}

func (c *deleteScoreCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := args[0].(*di.ManagementApp)
	if c.id == 0 {
		fmt.Fprintln(os.Stderr, "delete-score: -id is required")
		return subcommands.ExitUsageError
	}
	if err := app.Management.DeleteScore(ctx, c.id); err != nil {
		fmt.Fprintf(os.Stderr, "delete-score: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("deleted score %d\n", c.id)
	return subcommands.ExitSuccess
}

type deleteShoutCmd struct {
	id int64
}

func (*deleteShoutCmd) Name() string     { return "delete-shout" }
func (*deleteShoutCmd) Synopsis() string { return "delete a shout" }
func (*deleteShoutCmd) Usage() string    { return "delete-shout -id <shout-id>\n" }

func (c *deleteShoutCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "shout id to delete")
}

func (c *deleteShoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := args[0].(*di.ManagementApp)
	if c.id == 0 {
		fmt.Fprintln(os.Stderr, "delete-shout: -id is required")
		return subcommands.ExitUsageError
	}
	if err := app.Management.DeleteShout(ctx, c.id); err != nil {
		fmt.Fprintf(os.Stderr, "delete-shout: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("deleted shout %d\n", c.id)
	return subcommands.ExitSuccess
}

type deleteRivalryCmd struct {
	challenger int64
	rival      int64
}

func (*deleteRivalryCmd) Name() string     { return "delete-rivalry" }
func (*deleteRivalryCmd) Synopsis() string { return "delete one directed rivalry edge" }
func (*deleteRivalryCmd) Usage() string {
	return "delete-rivalry -challenger <player-id> -rival <player-id>\n"
}

func (c *deleteRivalryCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.challenger, "challenger", 0, "challenger player id")
	f.Int64Var(&c.rival, "rival", 0, "rival player id")
}

func (c *deleteRivalryCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := args[0].(*di.ManagementApp)
	if c.challenger == 0 || c.rival == 0 {
		fmt.Fprintln(os.Stderr, "delete-rivalry: -challenger and -rival are required")
		return subcommands.ExitUsageError
	}
	if err := app.Management.DeleteRivalry(ctx, c.challenger, c.rival); err != nil {
		fmt.Fprintf(os.Stderr, "delete-rivalry: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("deleted rivalry %d -> %d\n", c.challenger, c.rival)
	return subcommands.ExitSuccess
}

type recomputeSkillPointsCmd struct {
	player int64
	all    bool
}

func (*recomputeSkillPointsCmd) Name() string { return "recompute-skill-points" }
func (*recomputeSkillPointsCmd) Synopsis() string {
	return "resum a player's (or every player's) skill points onto the leaderboard"
}
func (*recomputeSkillPointsCmd) Usage() string {
	return "recompute-skill-points -player <player-id> | -all\n"
}

func (c *recomputeSkillPointsCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.player, "player", 0, "player id to recompute")
	f.BoolVar(&c.all, "all", false, "recompute every player, paging through the player table")
}

func (c *recomputeSkillPointsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := args[0].(*di.ManagementApp)
	if !c.all && c.player == 0 {
		fmt.Fprintln(os.Stderr, "recompute-skill-points: -player or -all is required")
		return subcommands.ExitUsageError
	}
	if c.all {
		n, err := app.Management.RecomputeAllSkillPoints(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "recompute-skill-points: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("recomputed skill points for %d players\n", n)
		return subcommands.ExitSuccess
	}
	if err := app.Management.RecomputeSkillPoints(ctx, c.player); err != nil {
		fmt.Fprintf(os.Stderr, "recompute-skill-points: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("recomputed skill points for player %d\n", c.player)
	return subcommands.ExitSuccess
}

type syncSearchIndexCmd struct{}

func (*syncSearchIndexCmd) Name() string { return "sync-search-index" }
func (*syncSearchIndexCmd) Synopsis() string {
	return "record a trigger for the out-of-process search-index sync job"
}
func (*syncSearchIndexCmd) Usage() string { return "sync-search-index\n" }

func (*syncSearchIndexCmd) SetFlags(*flag.FlagSet) {}

func (c *syncSearchIndexCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := args[0].(*di.ManagementApp)
	now := nowUnix()
	if err := app.Management.SyncSearchIndex(ctx, now); err != nil {
		fmt.Fprintf(os.Stderr, "sync-search-index: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("triggered search-index sync at %d\n", now)
	return subcommands.ExitSuccess
}

func nowUnix() int64 {
	return time.Now().Unix()
}
