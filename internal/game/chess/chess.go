// Package chess implements chess on top of a third-party rules
// engine. Legality, check, and terminal detection are all delegated;
// this package owns the two-step select/move interaction flow and the
// snapshot format (FEN plus transient selection).
package chess

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"gamesbot/internal/codec"
	"gamesbot/internal/emoji"
	"gamesbot/internal/game"
	"gamesbot/internal/header"
	"gamesbot/internal/platform"
)

// Chess implements game.Type.
type Chess struct{}

func (Chess) Info() game.Info {
	return game.Info{Name: "Chess", Command: "chess", Prefix: "chess"}
}

func (Chess) New(a, b platform.UserID) game.State {
	return &State{Base: game.NewBase(a, b), FEN: nchess.NewGame().FEN()}
}

func (Chess) Restore(token string) (game.State, bool) {
	var s State
	if !codec.Decode(token, &s) {
		return nil, false
	}
	if s.PlayerA.Zero() || s.PlayerB.Zero() || s.FEN == "" {
		return nil, false
	}
	if s.reconstruct() == nil {
		return nil, false
	}
	return &s, true
}

// State is one chess game. PlayerA is white, PlayerB is black. The
// FEN carries everything the rules engine needs; Selected is the
// transient origin square of a two-step move.
type State struct {
	game.Base
	FEN      string `json:"fen"`
	Selected string `json:"selected,omitempty"`
	// Result records a board-terminal position: "white", "black" or
	// "draw". Forfeits and truces live in the shared fields instead.
	Result string `json:"result,omitempty"`
}

func (s *State) reconstruct() *nchess.Game {
	fen, err := nchess.FEN(s.FEN)
	if err != nil {
		return nil
	}
	return nchess.NewGame(fen)
}

func (s *State) Apply(actor platform.UserID, act game.Action) game.MoveResult {
	actor = s.Attribute(actor, act.AsAdmin)
	if res, ok := s.ApplyShared(actor, act, s.restore); ok {
		return res
	}
	if !s.IsPlayer(actor) {
		return game.Rejected("You are not a player in this game.")
	}
	if actor != s.CurrentTurn {
		return game.Rejected("It's not your turn to play!")
	}

	switch act.Verb {
	case "select":
		return s.applySelect(act)
	case "move":
		return s.applyMove(act)
	case "deselect":
		s.Selected = ""
		return game.Applied()
	default:
		return game.Refresh()
	}
}

func (s *State) applySelect(act game.Action) game.MoveResult {
	square := strings.ToLower(act.Value())
	if square == "" {
		return game.Refresh()
	}
	piece, ok := pieceAt(s.FEN, square)
	if !ok {
		return game.Rejected("No piece at that square.")
	}
	whitePiece := piece >= 'A' && piece <= 'Z'
	if whitePiece != (s.CurrentTurn == s.PlayerA) {
		return game.Rejected("It's not your piece!")
	}
	s.Selected = square
	return game.Applied()
}

func (s *State) applyMove(act game.Action) game.MoveResult {
	if s.Selected == "" {
		return game.Rejected("No piece selected.")
	}
	target := strings.ToLower(act.Value())
	if target == "" {
		return game.Refresh()
	}

	g := s.reconstruct()
	if g == nil {
		return game.Rejected("Could not read the position.")
	}
	pos := g.Position()
	uci := s.Selected + target
	notation := nchess.UCINotation{}
	// Decode only parses; legality is g.Move's to judge.
	mv, err := notation.Decode(pos, uci)
	if err == nil {
		err = g.Move(mv, nil)
	}
	if err != nil {
		// Pawn reaching the last rank: promote to a queen by default.
		pmv, perr := notation.Decode(pos, uci+"q")
		if perr == nil {
			perr = g.Move(pmv, nil)
		}
		if perr != nil {
			return game.Rejected("Illegal move.")
		}
	}

	s.Checkpoint(s.snapshot())
	s.FEN = g.FEN()
	s.Selected = ""
	switch g.Outcome() {
	case nchess.WhiteWon:
		s.Result = "white"
	case nchess.BlackWon:
		s.Result = "black"
	case nchess.Draw:
		s.Result = "draw"
	}
	s.AdvanceTurn()
	return game.Applied()
}

func (s *State) Outcome() game.Outcome {
	if o := s.SharedOutcome(); o != nil {
		return o
	}
	switch s.Result {
	case "white":
		return game.Win{Winner: s.PlayerA, Loser: s.PlayerB}
	case "black":
		return game.Win{Winner: s.PlayerB, Loser: s.PlayerA}
	case "draw":
		return game.Tie{P1: s.PlayerA, P2: s.PlayerB}
	}
	return nil
}

// legalTargets groups the legal moves by origin square.
func (s *State) legalTargets() map[string][]string {
	g := s.reconstruct()
	if g == nil {
		return nil
	}
	moves := make(map[string][]string)
	seen := make(map[string]bool)
	for _, mv := range g.ValidMoves() {
		from, to := mv.S1().String(), mv.S2().String()
		if seen[from+to] {
			continue
		}
		seen[from+to] = true
		moves[from] = append(moves[from], to)
	}
	for _, targets := range moves {
		sort.Strings(targets)
	}
	return moves
}

func (s *State) Header() (string, error) {
	token, err := codec.Encode(s)
	if err != nil {
		return "", fmt.Errorf("encode chess state: %w", err)
	}
	return header.Build(token, Chess{}.Info().Name), nil
}

func (s *State) Render(cat *emoji.Catalog) *platform.Response {
	over := s.Outcome() != nil
	var components []platform.ActionRow
	if !over {
		components = s.moveComponents(cat)
		components = append(components, game.SharedControls("chess", true, "https://www.chessable.com/blog/how-to-play-chess/"))
	}

	color := "⚪" // white circle
	if s.CurrentTurn == s.PlayerB {
		color = "⚫"
	}
	h, _ := s.Header()
	content := fmt.Sprintf("%sIt is %s's turn! (%s)%s",
		h, s.CurrentTurn.Mention(), color, s.PendingNotes())
	return &platform.Response{
		Kind:       platform.Update,
		Content:    content,
		Components: components,
		Embeds: []platform.Embed{{
			Description: s.boardString(cat),
			Color:       0x3498DB,
		}},
		Mentions: []platform.UserID{s.CurrentTurn},
	}
}

// moveComponents builds either origin buttons (nothing selected) or
// target buttons (origin selected). When the buttons would overflow
// the component limit, it falls back to select menus.
func (s *State) moveComponents(cat *emoji.Catalog) []platform.ActionRow {
	moves := s.legalTargets()

	var rows []platform.ActionRow
	if s.Selected == "" {
		origins := sortedKeys(moves)
		var row platform.ActionRow
		for _, square := range origins {
			row.Buttons = append(row.Buttons, platform.Button{
				ID:    "chess_select_" + square,
				Label: strings.ToUpper(square),
				Emoji: s.squareEmoji(cat, square),
				Style: platform.StylePrimary,
			})
			if len(row.Buttons) == 5 {
				rows = append(rows, row)
				row = platform.ActionRow{}
			}
		}
		if len(row.Buttons) > 0 {
			rows = append(rows, row)
		}
		if len(rows) > 4 {
			return []platform.ActionRow{s.originMenu(origins)}
		}
		return rows
	}

	row := platform.ActionRow{Buttons: []platform.Button{{
		ID:    "chess_deselect",
		Label: strings.ToUpper(s.Selected),
		Emoji: s.squareEmoji(cat, s.Selected),
		Style: platform.StyleDanger,
	}}}
	for _, target := range moves[s.Selected] {
		row.Buttons = append(row.Buttons, platform.Button{
			ID:    "chess_move_" + target,
			Label: strings.ToUpper(target),
			Emoji: s.squareEmoji(cat, target),
			Style: platform.StyleSuccess,
		})
		if len(row.Buttons) == 5 {
			rows = append(rows, row)
			row = platform.ActionRow{}
		}
	}
	if len(row.Buttons) > 0 {
		rows = append(rows, row)
	}
	if len(rows) > 4 {
		return []platform.ActionRow{s.originMenu(sortedKeys(moves)), s.targetMenu(moves[s.Selected])}
	}
	return rows
}

func (s *State) originMenu(origins []string) platform.ActionRow {
	menu := &platform.SelectMenu{ID: "chess_select", Placeholder: "Select a piece to move"}
	for _, square := range origins {
		piece, _ := pieceAt(s.FEN, square)
		menu.Options = append(menu.Options, platform.SelectOption{
			Label:   fmt.Sprintf("%s (%s)", strings.ToUpper(square), pieceName(piece)),
			Value:   square,
			Default: s.Selected == square,
		})
		if len(menu.Options) == 25 {
			break
		}
	}
	return platform.ActionRow{Menu: menu}
}

func (s *State) targetMenu(targets []string) platform.ActionRow {
	piece, _ := pieceAt(s.FEN, s.Selected)
	menu := &platform.SelectMenu{ID: "chess_move", Placeholder: "Select a square to move to"}
	for _, target := range targets {
		menu.Options = append(menu.Options, platform.SelectOption{
			Label: fmt.Sprintf("Move %s to %s", pieceName(piece), strings.ToUpper(target)),
			Value: target,
		})
		if len(menu.Options) == 25 {
			break
		}
	}
	return platform.ActionRow{Menu: menu}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
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
	if prev.FEN == "" {
		return false
	}
	*s = prev
	return true
}
