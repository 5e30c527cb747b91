package elo

import (
	"fmt"
	"math"

	"gamesbot/internal/game"
	"gamesbot/internal/platform"
)

// K-factors. Forfeits move ratings half as far as played-out results,
// so conceding is penalized less than losing on the board.
const (
	KPlayed  = 32
	KForfeit = 16
)

// Entry is one player's rating before and after an outcome.
type Entry struct {
	User   platform.UserID
	Before int
	After  int
}

// Delta is the signed rating change.
func (e Entry) Delta() int { return e.After - e.Before }

// Change reports both players' rating movements for display.
type Change struct {
	Winner Entry // first player for ties
	Loser  Entry // second player for ties
}

// expectedScore is the standard logistic expectation for a against b.
func expectedScore(ra, rb int) float64 {
	return 1 / (1 + math.Pow(10, float64(rb-ra)/400))
}

func nextRating(old int, k, actual, expected float64) int {
	return int(math.Round(float64(old) + k*(actual-expected)))
}

// RecordOutcome applies a terminal outcome to the ladder for one game
// type. Both ratings are read before either is written, so the pair is
// updated against a consistent snapshot. Outcomes are consumed exactly
// once; there is no reversal path.
func (s *Store) RecordOutcome(gameKey string, o game.Outcome) (Change, error) {
	switch res := o.(type) {
	case game.Win:
		return s.applyPair(gameKey, res.Winner, res.Loser, KPlayed, 1)
	case game.Forfeit:
		return s.applyPair(gameKey, res.Winner, res.Forfeiter, KForfeit, 1)
	case game.Tie:
		return s.applyPair(gameKey, res.P1, res.P2, KPlayed, 0.5)
	default:
		return Change{}, fmt.Errorf("unknown outcome %T", o)
	}
}

// applyPair updates a zero-sum pair where first scored actual (1 for a
// win, 0.5 for a tie) and second scored the complement.
func (s *Store) applyPair(gameKey string, first, second platform.UserID, k int, actual float64) (Change, error) {
	ra, err := s.Rating(gameKey, first)
	if err != nil {
		return Change{}, err
	}
	rb, err := s.Rating(gameKey, second)
	if err != nil {
		return Change{}, err
	}

	ea := expectedScore(ra, rb)
	na := nextRating(ra, float64(k), actual, ea)
	nb := nextRating(rb, float64(k), 1-actual, 1-ea)

	table, err := s.ensureTable(gameKey)
	if err != nil {
		return Change{}, err
	}
	if err := s.setRating(table, first, na); err != nil {
		return Change{}, err
	}
	if err := s.setRating(table, second, nb); err != nil {
		return Change{}, err
	}
	return Change{
		Winner: Entry{User: first, Before: ra, After: na},
		Loser:  Entry{User: second, Before: rb, After: nb},
	}, nil
}
