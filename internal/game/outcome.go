package game

import "gamesbot/internal/platform"

// Outcome is the terminal result of a game. It is produced once, after
// the move that ends the game, and consumed exactly once by the rating
// engine. There is no path that reverses a recorded outcome.
type Outcome interface {
	// Announcement is the line appended to the final message.
	Announcement() string
	outcome()
}

// Win is a decisive result.
type Win struct {
	Winner platform.UserID
	Loser  platform.UserID
}

func (w Win) Announcement() string {
	return w.Winner.Mention() + " has won the game!"
}

// Tie is a drawn result.
type Tie struct {
	P1 platform.UserID
	P2 platform.UserID
}

func (Tie) Announcement() string { return "The game is a tie!" }

// Forfeit is a win by the opponent giving up. Rating updates penalize
// the forfeiter less than a played-out loss.
type Forfeit struct {
	Winner    platform.UserID
	Forfeiter platform.UserID
}

func (f Forfeit) Announcement() string {
	return f.Winner.Mention() + " has won the game by forfeit!"
}

func (Win) outcome()     {}
func (Tie) outcome()     {}
func (Forfeit) outcome() {}
