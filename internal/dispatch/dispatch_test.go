package dispatch

import (
	"context"
	"log/slog"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamesbot/internal/elo"
	"gamesbot/internal/game"
	"gamesbot/internal/game/tictactoe"
	"gamesbot/internal/header"
	"gamesbot/internal/invite"
	"gamesbot/internal/platform"
)

type capture struct {
	tokens    []string
	responses []*platform.Response
}

func (c *capture) Respond(_ context.Context, token string, resp *platform.Response) error {
	c.tokens = append(c.tokens, token)
	c.responses = append(c.responses, resp)
	return nil
}

func (c *capture) last(t *testing.T) *platform.Response {
	t.Helper()
	require.NotEmpty(t, c.responses, "expected a response")
	return c.responses[len(c.responses)-1]
}

var (
	hanna = platform.User{ID: "10", Username: "hanna"}
	iris  = platform.User{ID: "20", Username: "iris"}
	nosy  = platform.User{ID: "30", Username: "nosy"}
)

func newRouter(t *testing.T) *Router {
	t.Helper()
	ladder, err := elo.Open(filepath.Join(t.TempDir(), "elo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ladder.Close() })

	reg := game.NewRegistry()
	reg.Register(tictactoe.TicTacToe{})

	log := slog.New(slog.DiscardHandler)
	return NewRouter(reg, ladder, []string{"999"}, rand.New(rand.NewSource(1)), log)
}

func inviteContent(t *testing.T, invited platform.UserID) string {
	t.Helper()
	inv := &invite.Invite{Inviter: hanna.ID, Invited: invited, GameName: "Tic Tac Toe", DisplayName: "Tic Tac Toe"}
	content, err := inv.Content()
	require.NoError(t, err)
	return content
}

func TestIgnoresHeaderlessMessages(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}

	err := r.HandleInteraction(context.Background(), sender, platform.Interaction{
		Actor: iris, CustomID: "ttt_move_0_0", MessageContent: "no header here",
	})
	require.NoError(t, err)
	assert.Empty(t, sender.responses)
}

func TestAcceptedInviteStartsGame(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}

	err := r.HandleInteraction(context.Background(), sender, platform.Interaction{
		Token: "tok1", Actor: iris, CustomID: invite.AcceptID,
		MessageContent: inviteContent(t, iris.ID),
	})
	require.NoError(t, err)

	resp := sender.last(t)
	assert.Equal(t, platform.Update, resp.Kind)

	token, name, ok := header.Parse(resp.Content)
	require.True(t, ok)
	assert.Equal(t, "Tic Tac Toe", name)
	state, ok := tictactoe.TicTacToe{}.Restore(token)
	require.True(t, ok)
	players := state.Players()
	assert.ElementsMatch(t, []platform.UserID{hanna.ID, iris.ID}, players[:])
}

func TestInviterCannotAcceptOwnInvite(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}

	err := r.HandleInteraction(context.Background(), sender, platform.Interaction{
		Token: "tok1", Actor: hanna, CustomID: invite.AcceptID,
		MessageContent: inviteContent(t, iris.ID),
	})
	require.NoError(t, err)

	resp := sender.last(t)
	assert.Equal(t, platform.Create, resp.Kind)
	assert.True(t, resp.Ephemeral)
}

func TestDeclinedInviteIsTerminal(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}

	err := r.HandleInteraction(context.Background(), sender, platform.Interaction{
		Token: "tok1", Actor: iris, CustomID: invite.DeclineID,
		MessageContent: inviteContent(t, iris.ID),
	})
	require.NoError(t, err)

	resp := sender.last(t)
	assert.Equal(t, platform.Update, resp.Kind)
	_, _, ok := header.Parse(resp.Content)
	assert.False(t, ok, "declined message must not parse")
	assert.Empty(t, resp.Components)
}

// playMessage renders a live game into the message content an
// interaction would arrive with.
func playMessage(t *testing.T, state game.State) string {
	t.Helper()
	resp := state.Render(nil)
	return resp.Content
}

func TestMoveUpdatesMessage(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}
	state := tictactoe.TicTacToe{}.New(hanna.ID, iris.ID)

	err := r.HandleInteraction(context.Background(), sender, platform.Interaction{
		Token: "tok1", Actor: hanna, CustomID: "ttt_move_1_1",
		MessageContent: playMessage(t, state),
	})
	require.NoError(t, err)

	resp := sender.last(t)
	assert.Equal(t, platform.Update, resp.Kind)
	token, _, ok := header.Parse(resp.Content)
	require.True(t, ok)
	after, ok := tictactoe.TicTacToe{}.Restore(token)
	require.True(t, ok)
	assert.Equal(t, iris.ID, after.Turn())
}

func TestRejectedMoveIsEphemeral(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}
	state := tictactoe.TicTacToe{}.New(hanna.ID, iris.ID)

	err := r.HandleInteraction(context.Background(), sender, platform.Interaction{
		Token: "tok1", Actor: iris, CustomID: "ttt_move_1_1",
		MessageContent: playMessage(t, state),
	})
	require.NoError(t, err)

	resp := sender.last(t)
	assert.Equal(t, platform.Create, resp.Kind)
	assert.True(t, resp.Ephemeral)
	assert.NotEmpty(t, resp.Content)
}

func TestStrangerInteractionIsRejected(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}
	state := tictactoe.TicTacToe{}.New(hanna.ID, iris.ID)

	err := r.HandleInteraction(context.Background(), sender, platform.Interaction{
		Token: "tok1", Actor: nosy, CustomID: "ttt_move_0_0",
		MessageContent: playMessage(t, state),
	})
	require.NoError(t, err)
	assert.True(t, sender.last(t).Ephemeral)
}

func TestWinWritesTerminalHeaderAndRates(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}

	// Hanna one move away from the top row.
	state := tictactoe.TicTacToe{}.New(hanna.ID, iris.ID)
	for _, m := range []struct {
		who  platform.UserID
		r, c string
	}{
		{hanna.ID, "0", "0"}, {iris.ID, "1", "0"},
		{hanna.ID, "0", "1"}, {iris.ID, "1", "1"},
	} {
		res := state.Apply(m.who, game.Action{Verb: "move", Args: []string{m.r, m.c}})
		require.Equal(t, game.StatusApplied, res.Status)
	}

	err := r.HandleInteraction(context.Background(), sender, platform.Interaction{
		Token: "tok1", Actor: hanna, CustomID: "ttt_move_0_2",
		MessageContent: playMessage(t, state),
	})
	require.NoError(t, err)

	resp := sender.last(t)
	assert.Equal(t, platform.Update, resp.Kind)
	assert.True(t, strings.HasPrefix(resp.Content, header.Terminal("Tic Tac Toe")))
	assert.Contains(t, resp.Content, hanna.ID.Mention()+" has won the game!")
	_, _, ok := header.Parse(resp.Content)
	assert.False(t, ok, "finished game must be unrestorable")

	require.NotEmpty(t, resp.Components, "final board stays in the message")
	for _, row := range resp.Components {
		for _, btn := range row.Buttons {
			assert.True(t, btn.Disabled)
		}
	}

	ladder := r.ladder
	ra, err := ladder.Rating("tictactoe", hanna.ID)
	require.NoError(t, err)
	rb, err := ladder.Rating("tictactoe", iris.ID)
	require.NoError(t, err)
	assert.Equal(t, 1216, ra)
	assert.Equal(t, 1184, rb)
}

func TestAdminPuppetsTurnHolder(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}
	state := tictactoe.TicTacToe{}.New(hanna.ID, iris.ID)

	admin := platform.User{ID: "999", Username: "admin"}
	err := r.HandleInteraction(context.Background(), sender, platform.Interaction{
		Token: "tok1", Actor: admin, CustomID: "ttt_move_2_2",
		MessageContent: playMessage(t, state),
	})
	require.NoError(t, err)

	resp := sender.last(t)
	require.Equal(t, platform.Update, resp.Kind)
	token, _, ok := header.Parse(resp.Content)
	require.True(t, ok)
	after, ok := tictactoe.TicTacToe{}.Restore(token)
	require.True(t, ok)
	assert.Equal(t, iris.ID, after.Turn(), "the move counted for the turn holder")
}

func TestBotActorsAreIgnored(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}
	state := tictactoe.TicTacToe{}.New(hanna.ID, iris.ID)

	bot := platform.User{ID: "50", Username: "bot", Bot: true}
	err := r.HandleInteraction(context.Background(), sender, platform.Interaction{
		Token: "tok1", Actor: bot, CustomID: "ttt_move_0_0",
		MessageContent: playMessage(t, state),
	})
	require.NoError(t, err)
	assert.Empty(t, sender.responses)
}

func TestChallengeCommandPostsInvite(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}

	err := r.HandleChallenge(context.Background(), sender, "tok1", hanna, iris, "tictactoe")
	require.NoError(t, err)

	resp := sender.last(t)
	assert.Equal(t, platform.Create, resp.Kind)
	inv, ok := invite.FromMessage(resp.Content)
	require.True(t, ok)
	assert.Equal(t, hanna.ID, inv.Inviter)
	assert.Equal(t, iris.ID, inv.Invited)
	require.Len(t, resp.Components, 1)
}

func TestSelfChallengeRejected(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}

	err := r.HandleChallenge(context.Background(), sender, "tok1", hanna, hanna, "tictactoe")
	require.NoError(t, err)
	assert.True(t, sender.last(t).Ephemeral)
}

func TestRatingsSummary(t *testing.T) {
	r := newRouter(t)
	sender := &capture{}

	_, err := r.ladder.RecordOutcome("tictactoe", game.Win{Winner: hanna.ID, Loser: iris.ID})
	require.NoError(t, err)

	err = r.HandleRatings(context.Background(), sender, "tok1", iris, hanna)
	require.NoError(t, err)

	resp := sender.last(t)
	assert.True(t, resp.Ephemeral)
	require.Len(t, resp.Embeds, 1)
	assert.Contains(t, resp.Embeds[0].Description, "Tic Tac Toe")
	assert.Contains(t, resp.Embeds[0].Description, "1216")
}

func TestRatingsBadge(t *testing.T) {
	assert.Equal(t, " ⚖️", ratingBadge(elo.DefaultRating))
	assert.Equal(t, " (+0.50%)", ratingBadge(1206))
	assert.Equal(t, " (+5.0%)", ratingBadge(1260))
	assert.Equal(t, " (-16%)", ratingBadge(1000))
	assert.Contains(t, ratingBadge(2000), "\U0001F680")
	assert.Contains(t, ratingBadge(500), "\U0001F480")
}
