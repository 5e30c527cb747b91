// Package connectfour implements the 6x7 gravity-drop classic.
package connectfour

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gamesbot/internal/codec"
	"gamesbot/internal/emoji"
	"gamesbot/internal/game"
	"gamesbot/internal/header"
	"gamesbot/internal/platform"
)

const (
	rows = 6
	cols = 7
)

// ConnectFour implements game.Type.
type ConnectFour struct{}

func (ConnectFour) Info() game.Info {
	return game.Info{Name: "Connect Four", Command: "connectfour", Prefix: "c4"}
}

func (ConnectFour) New(a, b platform.UserID) game.State {
	return &State{Base: game.NewBase(a, b)}
}

func (ConnectFour) Restore(token string) (game.State, bool) {
	var s State
	if !codec.Decode(token, &s) {
		return nil, false
	}
	if s.PlayerA.Zero() || s.PlayerB.Zero() {
		return nil, false
	}
	return &s, true
}

// State is one connect-four game. PlayerA is red, PlayerB is yellow.
type State struct {
	game.Base
	Board [rows][cols]string `json:"board"` // "", "R", "Y"
}

func (s *State) mark(id platform.UserID) string {
	if id == s.PlayerA {
		return "R"
	}
	return "Y"
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
	col, err := strconv.Atoi(act.Arg(0))
	if err != nil || col < 0 || col >= cols {
		return game.Rejected("Invalid move.")
	}
	row, ok := s.dropRow(col)
	if !ok {
		return game.Rejected("That column is full.")
	}

	s.Checkpoint(s.snapshot())
	s.Board[row][col] = s.mark(actor)
	s.AdvanceTurn()
	return game.Applied()
}

// dropRow finds the lowest empty row of a column.
func (s *State) dropRow(col int) (int, bool) {
	for row := rows - 1; row >= 0; row-- {
		if s.Board[row][col] == "" {
			return row, true
		}
	}
	return 0, false
}

type cell struct{ r, c int }

// winningCells returns every cell that is part of a four-in-a-row, so
// rendering can highlight the winning line(s).
func (s *State) winningCells() []cell {
	var won []cell
	dirs := []cell{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			mark := s.Board[r][c]
			if mark == "" {
				continue
			}
			for _, d := range dirs {
				er, ec := r+3*d.r, c+3*d.c
				if er < 0 || er >= rows || ec >= cols {
					continue
				}
				if s.Board[r+d.r][c+d.c] == mark &&
					s.Board[r+2*d.r][c+2*d.c] == mark &&
					s.Board[er][ec] == mark {
					for i := 0; i < 4; i++ {
						won = append(won, cell{r + i*d.r, c + i*d.c})
					}
				}
			}
		}
	}
	return won
}

func (s *State) Outcome() game.Outcome {
	if o := s.SharedOutcome(); o != nil {
		return o
	}
	if won := s.winningCells(); len(won) > 0 {
		winner := s.PlayerA
		if s.Board[won[0].r][won[0].c] == "Y" {
			winner = s.PlayerB
		}
		return game.Win{Winner: winner, Loser: s.Opponent(winner)}
	}
	if s.full() {
		return game.Tie{P1: s.PlayerA, P2: s.PlayerB}
	}
	return nil
}

func (s *State) full() bool {
	for c := 0; c < cols; c++ {
		if s.Board[0][c] == "" {
			return false
		}
	}
	return true
}

func (s *State) Header() (string, error) {
	token, err := codec.Encode(s)
	if err != nil {
		return "", fmt.Errorf("encode connectfour state: %w", err)
	}
	return header.Build(token, ConnectFour{}.Info().Name), nil
}

// boardString draws the grid with the application's board emojis,
// highlighting winning pieces.
func (s *State) boardString(cat *emoji.Catalog) string {
	winning := make(map[cell]bool)
	for _, c := range s.winningCells() {
		winning[c] = true
	}

	var lines []string
	top := cat.Lookup("c4_border_top_left")
	for c := 1; c <= cols; c++ {
		top += cat.Lookup(fmt.Sprintf("c4_border_top_%d", c))
	}
	top += cat.Lookup("c4_border_top_right")
	lines = append(lines, top)

	for r := 0; r < rows; r++ {
		line := cat.Lookup("c4_border_left")
		for c := 0; c < cols; c++ {
			switch {
			case s.Board[r][c] == "R" && winning[cell{r, c}]:
				line += cat.Lookup("c4_red_winner")
			case s.Board[r][c] == "R":
				line += cat.Lookup("c4_red")
			case s.Board[r][c] == "Y" && winning[cell{r, c}]:
				line += cat.Lookup("c4_yellow_winner")
			case s.Board[r][c] == "Y":
				line += cat.Lookup("c4_yellow")
			default:
				line += cat.Lookup("c4_empty")
			}
		}
		line += cat.Lookup("c4_border_right")
		lines = append(lines, line)
	}

	bottom := cat.Lookup("c4_border_bottom_left")
	for c := 1; c <= cols; c++ {
		bottom += cat.Lookup(fmt.Sprintf("c4_border_bottom_%d", c))
	}
	bottom += cat.Lookup("c4_border_bottom_right")
	lines = append(lines, bottom)
	return strings.Join(lines, "\n")
}

func (s *State) Render(cat *emoji.Catalog) *platform.Response {
	over := s.Outcome() != nil
	var components []platform.ActionRow
	if !over {
		var first, second platform.ActionRow
		for c := 0; c < 4; c++ {
			first.Buttons = append(first.Buttons, s.columnButton(cat, c))
		}
		for c := 4; c < cols; c++ {
			second.Buttons = append(second.Buttons, s.columnButton(cat, c))
		}
		components = append(components, first, second, game.SharedControls("c4", true, ""))
	}

	piece := cat.Lookup("c4_red_piece")
	if s.CurrentTurn == s.PlayerB {
		piece = cat.Lookup("c4_yellow_piece")
	}
	h, _ := s.Header()
	content := fmt.Sprintf("%sIt is %s's turn! %s%s",
		h, s.CurrentTurn.Mention(), piece, s.PendingNotes())
	return &platform.Response{
		Kind:       platform.Update,
		Content:    content,
		Components: components,
		Embeds: []platform.Embed{{
			Description: s.boardString(cat),
			Color:       0xFFAA00,
		}},
		Mentions: []platform.UserID{s.CurrentTurn},
	}
}

func (s *State) columnButton(cat *emoji.Catalog, col int) platform.Button {
	return platform.Button{
		ID:       fmt.Sprintf("c4_move_%d", col),
		Emoji:    cat.Number(col + 1),
		Style:    platform.StyleSecondary,
		Disabled: s.Board[0][col] != "",
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
