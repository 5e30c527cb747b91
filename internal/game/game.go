package game

import (
	"strings"

	"gamesbot/internal/emoji"
	"gamesbot/internal/platform"
)

// Info describes a game type.
type Info struct {
	// Name is the stable header name, e.g. "Tic Tac Toe".
	Name string `json:"name"`
	// Command is the slash-command name and the Elo table key.
	Command string `json:"command"`
	// Prefix starts every action identifier of the game, e.g. "ttt".
	Prefix string `json:"prefix"`
}

// Type describes a game type (tic-tac-toe, chess, etc.) and builds or
// restores its states.
type Type interface {
	Info() Info
	// New starts a game between a and b, with a to move first.
	New(a, b platform.UserID) State
	// Restore rebuilds a state from a header token. It reports false
	// when the token does not decode to a state of this type.
	Restore(token string) (State, bool)
}

// State is one game in progress, decoded from a message header.
type State interface {
	Players() [2]platform.UserID
	Turn() platform.UserID
	// Apply validates and performs one action by actor. The state is
	// only mutated when the result is Applied.
	Apply(actor platform.UserID, act Action) MoveResult
	// Outcome returns the terminal result, or nil while play continues.
	Outcome() Outcome
	// Header serializes the state into its fenced message header.
	Header() (string, error)
	// Render produces the shared message body for the current state.
	Render(cat *emoji.Catalog) *platform.Response
}

// Action is one decoded interaction: a verb plus underscore-delimited
// arguments, e.g. "move_0_2" -> verb "move", args ["0", "2"]. Values
// carries menu selections for multi-step component flows.
type Action struct {
	Verb    string
	Args    []string
	Values  []string
	AsAdmin bool // actor is a configured admin override
}

// ParseAction splits a custom ID into an action for the game with the
// given prefix. It reports false when the ID belongs to someone else.
func ParseAction(customID, prefix string) (Action, bool) {
	if !strings.HasPrefix(customID, prefix+"_") {
		return Action{}, false
	}
	parts := strings.Split(customID[len(prefix)+1:], "_")
	if len(parts) == 0 || parts[0] == "" {
		return Action{}, false
	}
	return Action{Verb: parts[0], Args: parts[1:]}, true
}

// Arg returns the i-th argument, or "" when absent.
func (a Action) Arg(i int) string {
	if i < 0 || i >= len(a.Args) {
		return ""
	}
	return a.Args[i]
}

// Value returns the first menu selection, falling back to the first
// argument. Select menus deliver their choice out of band from the
// custom ID, so two-step flows accept either.
func (a Action) Value() string {
	if len(a.Values) > 0 {
		return a.Values[0]
	}
	return a.Arg(0)
}

// MoveStatus classifies the result of applying an action.
type MoveStatus int

const (
	// StatusApplied means the state changed and must be re-rendered.
	StatusApplied MoveStatus = iota
	// StatusRejected means nothing changed; Reason goes to the actor.
	StatusRejected
	// StatusRefresh means the payload was incomplete or mid-flow; the
	// message is re-rendered without a logical state change.
	StatusRefresh
	// StatusResend means the message should be reposted as a new one.
	StatusResend
)

// MoveResult is what Apply hands back to the dispatcher.
type MoveResult struct {
	Status    MoveStatus
	Reason    string
	Ephemeral bool
	// RoundOutcome carries a rating-relevant result that does not end
	// the game, e.g. one round of a running match.
	RoundOutcome Outcome
}

// Applied reports a successful state transition.
func Applied() MoveResult { return MoveResult{Status: StatusApplied} }

// AppliedRound reports a state transition that also settled one round.
func AppliedRound(o Outcome) MoveResult {
	return MoveResult{Status: StatusApplied, RoundOutcome: o}
}

// Rejected reports an invalid action with an ephemeral notice.
func Rejected(reason string) MoveResult {
	return MoveResult{Status: StatusRejected, Reason: reason, Ephemeral: true}
}

// Notice reports a rejection whose message is visible to everyone.
func Notice(reason string) MoveResult {
	return MoveResult{Status: StatusRejected, Reason: reason}
}

// Refresh asks for a re-render without a state change.
func Refresh() MoveResult { return MoveResult{Status: StatusRefresh} }

// Resend asks for the game message to be posted anew.
func Resend() MoveResult { return MoveResult{Status: StatusResend} }
