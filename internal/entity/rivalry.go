package entity

import (
	"context"
	"time"
)

// Rivalry is a directed "I'm tracking you" relationship a player establishes
// against another. It becomes mutual when the reverse-direction row also
// exists (IsMutual).
type Rivalry struct {
	ChallengerID  int64
	RivalID       int64
	EstablishedAt time.Time
}

// RivalryView renders one side of a rivalry for the wire/admin API: the
// public profile of whichever player is NOT the viewer, plus mutuality.
type RivalryView struct {
	PlayerID   int64
	Username   string
	AvatarURL  string
	Mutual     bool
	SinceAt    time.Time
}

// RivalryRepository persists Rivalry rows.
//
// # Possible errors
//   - codes.NotFound: no rivalry between the given players.
//   - codes.AlreadyExists: the challenger already tracks the rival.
//   - codes.Internal: underlying store failure.
type RivalryRepository interface {
	Create(ctx context.Context, challengerID, rivalID int64) (*Rivalry, error)
	Delete(ctx context.Context, challengerID, rivalID int64) error
	// IsMutual reports whether the reverse-direction row also exists.
	IsMutual(ctx context.Context, challengerID, rivalID int64) (bool, error)
	// RivalsOf returns every player a challenger is tracking.
	RivalsOf(ctx context.Context, challengerID int64) ([]*Rivalry, error)
	// ChallengersOf returns every player tracking a given rival.
	ChallengersOf(ctx context.Context, rivalID int64) ([]*Rivalry, error)
}
