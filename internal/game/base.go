package game

import (
	"encoding/json"

	"gamesbot/internal/platform"
)

// Base carries the fields and verbs every game type shares: the two
// players, the turn holder, and the forfeit / undo / truce protocols.
// Game states embed it and include it in their snapshots.
type Base struct {
	PlayerA     platform.UserID `json:"player_a"`
	PlayerB     platform.UserID `json:"player_b"`
	CurrentTurn platform.UserID `json:"current_turn"`
	ForfeitBy   platform.UserID `json:"forfeit_by,omitempty"`
	UndoVote    platform.UserID `json:"undo_vote,omitempty"`
	TruceOffer  platform.UserID `json:"truce_offer,omitempty"`
	TruceTie    bool            `json:"truce_tie,omitempty"`
	// Prev is the snapshot of the position before the last applied
	// move. Only one level is retained.
	Prev json.RawMessage `json:"prev,omitempty"`
}

// NewBase starts a base with a to move first.
func NewBase(a, b platform.UserID) Base {
	return Base{PlayerA: a, PlayerB: b, CurrentTurn: a}
}

// Players returns both players, first-mover first.
func (b *Base) Players() [2]platform.UserID {
	return [2]platform.UserID{b.PlayerA, b.PlayerB}
}

// Turn returns the current turn holder.
func (b *Base) Turn() platform.UserID { return b.CurrentTurn }

// IsPlayer reports whether id is one of the two players.
func (b *Base) IsPlayer(id platform.UserID) bool {
	return id == b.PlayerA || id == b.PlayerB
}

// Opponent returns the other player.
func (b *Base) Opponent(id platform.UserID) platform.UserID {
	if id == b.PlayerA {
		return b.PlayerB
	}
	return b.PlayerA
}

// AdvanceTurn hands the turn to the other player.
func (b *Base) AdvanceTurn() {
	b.CurrentTurn = b.Opponent(b.CurrentTurn)
}

// Attribute resolves who an action counts for. An admin override acts
// as whoever currently holds the turn, so either side can be puppeted
// for debugging and demos.
func (b *Base) Attribute(actor platform.UserID, asAdmin bool) platform.UserID {
	if asAdmin {
		return b.CurrentTurn
	}
	return actor
}

// Checkpoint stores snap as the single restorable prior position.
func (b *Base) Checkpoint(snap json.RawMessage) {
	b.Prev = snap
}

// SharedOutcome returns the outcome decided by the shared protocol
// (forfeit or accepted truce), or nil. Games consult it first in their
// own Outcome methods.
func (b *Base) SharedOutcome() Outcome {
	if !b.ForfeitBy.Zero() {
		return Forfeit{Winner: b.Opponent(b.ForfeitBy), Forfeiter: b.ForfeitBy}
	}
	if b.TruceTie {
		return Tie{P1: b.PlayerA, P2: b.PlayerB}
	}
	return nil
}

// ApplyShared handles the verbs common to all games. handled reports
// whether the verb was consumed; games fall through to their own move
// handling otherwise. restore rebuilds the whole state from a prior
// snapshot and reports success; games that do not support undo pass
// nil.
func (b *Base) ApplyShared(actor platform.UserID, act Action, restore func(json.RawMessage) bool) (MoveResult, bool) {
	switch act.Verb {
	case "resend", "remind", "forfeit", "undo", "truce":
	default:
		return MoveResult{}, false
	}
	if !b.IsPlayer(actor) {
		return Rejected("You are not a player in this game."), true
	}

	switch act.Verb {
	case "resend":
		return Resend(), true

	case "remind":
		if actor == b.CurrentTurn {
			return Rejected("Just make a move!"), true
		}
		return Notice("Hey " + b.CurrentTurn.Mention() + ", it's your turn!"), true

	case "forfeit":
		// Unilateral: either player may concede at any time.
		b.ForfeitBy = actor
		return Applied(), true

	case "undo":
		return b.applyUndo(actor, act, restore), true

	case "truce":
		return b.applyTruce(actor, act), true
	}
	return MoveResult{}, false
}

func (b *Base) applyUndo(actor platform.UserID, act Action, restore func(json.RawMessage) bool) MoveResult {
	if restore == nil {
		return Rejected("This game does not support undo.")
	}
	if act.Arg(0) == "decline" {
		if b.UndoVote.Zero() {
			return Rejected("No undo is pending.")
		}
		if b.UndoVote == actor {
			return Rejected("You asked for the undo; the other player decides.")
		}
		b.UndoVote = ""
		return Applied()
	}
	switch {
	case b.UndoVote.Zero():
		if len(b.Prev) == 0 {
			return Rejected("There is no move to undo.")
		}
		b.UndoVote = actor
		return Applied()
	case b.UndoVote == actor:
		return Rejected("You already asked for an undo.")
	default:
		prev := b.Prev
		if !restore(prev) {
			return Rejected("Could not restore the previous position.")
		}
		// restore rewrote the whole state, this Base included. Clear
		// the vote and the snapshot: only one level of history exists.
		b.UndoVote = ""
		b.Prev = nil
		return Applied()
	}
}

func (b *Base) applyTruce(actor platform.UserID, act Action) MoveResult {
	if act.Arg(0) == "decline" {
		if b.TruceOffer.Zero() {
			return Rejected("No truce has been offered.")
		}
		if b.TruceOffer == actor {
			return Rejected("You offered the truce; the other player decides.")
		}
		b.TruceOffer = ""
		return Applied()
	}
	switch {
	case b.TruceOffer.Zero():
		b.TruceOffer = actor
		return Applied()
	case b.TruceOffer == actor:
		return Rejected("You already offered a truce.")
	default:
		b.TruceTie = true
		return Applied()
	}
}

// PendingNotes renders the consent protocols awaiting an answer.
func (b *Base) PendingNotes() string {
	var notes string
	if !b.UndoVote.Zero() {
		notes += "\n" + b.UndoVote.Mention() + " wants to undo the last move. Press Undo to agree."
	}
	if !b.TruceOffer.Zero() && !b.TruceTie {
		notes += "\n" + b.TruceOffer.Mention() + " offers a truce. Press Truce to accept."
	}
	return notes
}

// SharedControls builds the helper row appended to every game's
// components: remind, forfeit, truce, undo (when supported), and an
// optional how-to-play link.
func SharedControls(prefix string, undo bool, howToPlayURL string) platform.ActionRow {
	row := platform.ActionRow{Buttons: []platform.Button{
		{ID: prefix + "_remind", Label: "Remind!", Style: platform.StyleSecondary},
		{ID: prefix + "_forfeit", Label: "Forfeit", Emoji: "\U0001F3F3️", Style: platform.StyleDanger},
		{ID: prefix + "_truce", Label: "Truce", Style: platform.StyleSecondary},
	}}
	if undo {
		row.Buttons = append(row.Buttons, platform.Button{
			ID: prefix + "_undo", Label: "Undo", Style: platform.StyleSecondary,
		})
	}
	if howToPlayURL != "" {
		row.Buttons = append(row.Buttons, platform.Button{
			Label: "How to Play", Style: platform.StyleLink, URL: howToPlayURL,
		})
	}
	return row
}
