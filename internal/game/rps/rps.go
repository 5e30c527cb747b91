// Package rps implements rock-paper-scissors as a running match: both
// players pick in secret, each settled round is scored and rated
// immediately, and the message keeps hosting the next round until
// someone forfeits or both agree to stop.
package rps

import (
	"fmt"
	"strconv"
	"strings"

	"gamesbot/internal/codec"
	"gamesbot/internal/emoji"
	"gamesbot/internal/game"
	"gamesbot/internal/header"
	"gamesbot/internal/platform"
)

var moves = []struct {
	Name  string
	Emoji string
	Style platform.ButtonStyle
}{
	{"Rock", "\U0001FAA8", platform.StylePrimary},
	{"Paper", "\U0001F4C4", platform.StyleSuccess},
	{"Scissors", "✂️", platform.StyleDanger},
}

// RPS implements game.Type.
type RPS struct{}

func (RPS) Info() game.Info {
	return game.Info{Name: "Rock Paper Scissors", Command: "rockpaperscissors", Prefix: "rps"}
}

func (RPS) New(a, b platform.UserID) game.State {
	return &State{Base: game.NewBase(a, b)}
}

func (RPS) Restore(token string) (game.State, bool) {
	var s State
	if !codec.Decode(token, &s) {
		return nil, false
	}
	if s.PlayerA.Zero() || s.PlayerB.Zero() {
		return nil, false
	}
	if !validChoice(s.ChoiceA) || !validChoice(s.ChoiceB) {
		return nil, false
	}
	for _, round := range s.Rounds {
		if round[0] < 0 || round[0] >= len(moves) || round[1] < 0 || round[1] >= len(moves) {
			return nil, false
		}
	}
	return &s, true
}

func validChoice(c *int) bool {
	return c == nil || (*c >= 0 && *c < len(moves))
}

// State is one running match. Choices are 0 rock, 1 paper, 2 scissors;
// nil means the player has not picked this round. CurrentTurn is
// unused: both players act simultaneously.
type State struct {
	game.Base
	ChoiceA *int     `json:"choice_a,omitempty"`
	ChoiceB *int     `json:"choice_b,omitempty"`
	WinsA   int      `json:"wins_a,omitempty"`
	WinsB   int      `json:"wins_b,omitempty"`
	Rounds  [][2]int `json:"rounds,omitempty"`
}

func (s *State) Apply(actor platform.UserID, act game.Action) game.MoveResult {
	if act.AsAdmin {
		// There is no turn holder to puppet; act for whichever player
		// has not picked yet.
		if s.ChoiceA == nil {
			actor = s.PlayerA
		} else {
			actor = s.PlayerB
		}
	}
	if act.Verb == "remind" {
		return s.applyRemind(actor)
	}
	if res, ok := s.ApplyShared(actor, act, nil); ok {
		return res
	}
	if !s.IsPlayer(actor) {
		return game.Rejected("You are not a player in this game.")
	}
	if act.Verb != "pick" {
		return game.Refresh()
	}

	choice, err := strconv.Atoi(act.Arg(0))
	if err != nil || choice < 0 || choice >= len(moves) {
		return game.Refresh()
	}
	slot := s.choiceOf(actor)
	if *slot != nil {
		return game.Rejected("You have already made your move.")
	}
	*slot = &choice

	if s.ChoiceA == nil || s.ChoiceB == nil {
		return game.Applied()
	}
	return game.AppliedRound(s.settleRound())
}

func (s *State) choiceOf(player platform.UserID) **int {
	if player == s.PlayerA {
		return &s.ChoiceA
	}
	return &s.ChoiceB
}

// settleRound scores the finished round, clears the picks, and returns
// the round result for rating.
func (s *State) settleRound() game.Outcome {
	a, b := *s.ChoiceA, *s.ChoiceB
	s.Rounds = append(s.Rounds, [2]int{a, b})
	s.ChoiceA = nil
	s.ChoiceB = nil

	switch beats(a, b) {
	case 0:
		return game.Tie{P1: s.PlayerA, P2: s.PlayerB}
	case 1:
		s.WinsA++
		return game.Win{Winner: s.PlayerA, Loser: s.PlayerB}
	default:
		s.WinsB++
		return game.Win{Winner: s.PlayerB, Loser: s.PlayerA}
	}
}

// beats reports the round result: 0 tie, 1 first wins, 2 second wins.
func beats(a, b int) int {
	return ((a-b)%3 + 3) % 3
}

func (s *State) applyRemind(actor platform.UserID) game.MoveResult {
	if !s.IsPlayer(actor) {
		return game.Rejected("You are not a player in this game.")
	}
	if *s.choiceOf(actor) == nil {
		return game.Rejected("Just make a move!")
	}
	waiting := s.Opponent(actor)
	return game.Notice("Hey " + waiting.Mention() + ", it's your turn!")
}

// Outcome only reports the shared protocol results. The match itself
// has no natural end; rounds are rated as they settle.
func (s *State) Outcome() game.Outcome {
	return s.SharedOutcome()
}

func (s *State) Header() (string, error) {
	token, err := codec.Encode(s)
	if err != nil {
		return "", fmt.Errorf("encode rps state: %w", err)
	}
	return header.Build(token, RPS{}.Info().Name), nil
}

func (s *State) Render(cat *emoji.Catalog) *platform.Response {
	over := s.Outcome() != nil

	var components []platform.ActionRow
	if !over {
		var row platform.ActionRow
		for i, mv := range moves {
			row.Buttons = append(row.Buttons, platform.Button{
				ID:    "rps_pick_" + strconv.Itoa(i),
				Label: mv.Name,
				Emoji: mv.Emoji,
				Style: mv.Style,
			})
		}
		components = []platform.ActionRow{row, game.SharedControls("rps", false, "")}
	}

	h, _ := s.Header()
	content := h + s.lastRoundLine() +
		s.playerLine(s.PlayerA, s.ChoiceA) + "\nVS.\n" +
		s.playerLine(s.PlayerB, s.ChoiceB) + "\nMake your move!" + s.PendingNotes()
	return &platform.Response{
		Kind:       platform.Update,
		Content:    content,
		Components: components,
		Embeds:     []platform.Embed{s.scoreboard()},
		Mentions:   []platform.UserID{s.PlayerA, s.PlayerB},
	}
}

func (s *State) lastRoundLine() string {
	if len(s.Rounds) == 0 {
		return ""
	}
	last := s.Rounds[len(s.Rounds)-1]
	switch beats(last[0], last[1]) {
	case 0:
		return "The last round was a tie!\n"
	case 1:
		return s.PlayerA.Mention() + " won the last round!\n"
	default:
		return s.PlayerB.Mention() + " won the last round!\n"
	}
}

func (s *State) playerLine(player platform.UserID, choice *int) string {
	line := ""
	if len(s.Rounds) > 0 {
		last := s.Rounds[len(s.Rounds)-1]
		if player == s.PlayerA {
			line = moves[last[0]].Emoji + " "
		} else {
			line = moves[last[1]].Emoji + " "
		}
	}
	line += player.Mention()
	if choice != nil {
		line += " ✅"
	}
	return line
}

func (s *State) scoreboard() platform.Embed {
	embed := platform.Embed{
		Title: "Rock Paper Scissors Scoreboard",
		Color: 0x9B59B6,
		Fields: []platform.EmbedField{
			{Name: fmt.Sprintf("Wins: %d", s.WinsA), Value: s.PlayerA.Mention(), Inline: true},
			{Name: fmt.Sprintf("Wins: %d", s.WinsB), Value: s.PlayerB.Mention(), Inline: true},
		},
	}
	if len(s.Rounds) > 0 {
		var b strings.Builder
		for i, round := range s.Rounds {
			fmt.Fprintf(&b, "Round %d: %s vs %s\n",
				i+1, moves[round[0]].Emoji, moves[round[1]].Emoji)
		}
		embed.Fields = append(embed.Fields, platform.EmbedField{
			Name: "Round History", Value: b.String(),
		})
	}
	return embed
}
