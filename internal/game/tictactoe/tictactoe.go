// Package tictactoe implements the 3x3 classic.
package tictactoe

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gamesbot/internal/codec"
	"gamesbot/internal/emoji"
	"gamesbot/internal/game"
	"gamesbot/internal/header"
	"gamesbot/internal/platform"
)

// TicTacToe implements game.Type.
type TicTacToe struct{}

func (TicTacToe) Info() game.Info {
	return game.Info{Name: "Tic Tac Toe", Command: "tictactoe", Prefix: "ttt"}
}

func (TicTacToe) New(a, b platform.UserID) game.State {
	return &State{Base: game.NewBase(a, b)}
}

func (TicTacToe) Restore(token string) (game.State, bool) {
	var s State
	if !codec.Decode(token, &s) {
		return nil, false
	}
	if s.PlayerA.Zero() || s.PlayerB.Zero() {
		return nil, false
	}
	return &s, true
}

// State is one tic-tac-toe game. PlayerA is X, PlayerB is O.
type State struct {
	game.Base
	Board [3][3]string `json:"board"` // "", "X", "O"
}

func (s *State) mark(id platform.UserID) string {
	if id == s.PlayerA {
		return "X"
	}
	return "O"
}

func (s *State) Apply(actor platform.UserID, act game.Action) game.MoveResult {
	actor = s.Attribute(actor, act.AsAdmin)
	if res, ok := s.ApplyShared(actor, act, s.restore); ok {
		return res
	}
	if act.Verb != "move" {
		return game.Refresh()
	}
	if !s.IsPlayer(actor) {
		return game.Rejected("You are not a player in this game.")
	}
	if actor != s.CurrentTurn {
		return game.Rejected("It's not your turn!")
	}
	row, err := strconv.Atoi(act.Arg(0))
	if err != nil || row < 0 || row > 2 {
		return game.Rejected("Invalid move.")
	}
	col, err := strconv.Atoi(act.Arg(1))
	if err != nil || col < 0 || col > 2 {
		return game.Rejected("Invalid move.")
	}
	if s.Board[row][col] != "" {
		return game.Rejected("That square is already taken.")
	}

	s.Checkpoint(s.snapshot())
	s.Board[row][col] = s.mark(actor)
	s.AdvanceTurn()
	return game.Applied()
}

func (s *State) Outcome() game.Outcome {
	if o := s.SharedOutcome(); o != nil {
		return o
	}
	if mark, ok := s.winningMark(); ok {
		winner := s.PlayerA
		if mark == "O" {
			winner = s.PlayerB
		}
		return game.Win{Winner: winner, Loser: s.Opponent(winner)}
	}
	if s.full() {
		return game.Tie{P1: s.PlayerA, P2: s.PlayerB}
	}
	return nil
}

func (s *State) winningMark() (string, bool) {
	b := s.Board
	for i := 0; i < 3; i++ {
		if b[i][0] != "" && b[i][0] == b[i][1] && b[i][1] == b[i][2] {
			return b[i][0], true
		}
		if b[0][i] != "" && b[0][i] == b[1][i] && b[1][i] == b[2][i] {
			return b[0][i], true
		}
	}
	if b[0][0] != "" && b[0][0] == b[1][1] && b[1][1] == b[2][2] {
		return b[0][0], true
	}
	if b[0][2] != "" && b[0][2] == b[1][1] && b[1][1] == b[2][0] {
		return b[0][2], true
	}
	return "", false
}

func (s *State) full() bool {
	for _, row := range s.Board {
		for _, cell := range row {
			if cell == "" {
				return false
			}
		}
	}
	return true
}

func (s *State) Header() (string, error) {
	token, err := codec.Encode(s)
	if err != nil {
		return "", fmt.Errorf("encode tictactoe state: %w", err)
	}
	return header.Build(token, TicTacToe{}.Info().Name), nil
}

func (s *State) Render(cat *emoji.Catalog) *platform.Response {
	over := s.Outcome() != nil
	var rows []platform.ActionRow
	for r := 0; r < 3; r++ {
		var row platform.ActionRow
		for c := 0; c < 3; c++ {
			label := s.Board[r][c]
			style := platform.StyleSecondary
			switch label {
			case "X":
				style = platform.StylePrimary
			case "O":
				style = platform.StyleDanger
			case "":
				label = "-"
			}
			row.Buttons = append(row.Buttons, platform.Button{
				ID:       fmt.Sprintf("ttt_move_%d_%d", r, c),
				Label:    label,
				Style:    style,
				Disabled: s.Board[r][c] != "" || over,
			})
		}
		rows = append(rows, row)
	}
	if !over {
		rows = append(rows, game.SharedControls("ttt", true, ""))
	}

	h, _ := s.Header()
	content := fmt.Sprintf("%sIt is %s's turn! (%s)%s",
		h, s.CurrentTurn.Mention(), s.mark(s.CurrentTurn), s.PendingNotes())
	return &platform.Response{
		Kind:       platform.Update,
		Content:    content,
		Components: rows,
		Mentions:   []platform.UserID{s.CurrentTurn},
	}
}

func (s *State) snapshot() json.RawMessage {
	c := *s
	c.Prev = nil
	c.UndoVote = ""
	data, err := json.Marshal(&c)
	if err != nil {
		return nil
	}
	return data
}

func (s *State) restore(raw json.RawMessage) bool {
	var prev State
	if err := json.Unmarshal(raw, &prev); err != nil {
		return false
	}
	*s = prev
	return true
}
