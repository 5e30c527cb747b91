// Package dispatch routes platform interactions to the right handler:
// a pending invite, a live game, or the ratings view. The message
// content is the only state it consults; nothing about a game is held
// between events.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"gamesbot/internal/elo"
	"gamesbot/internal/emoji"
	"gamesbot/internal/game"
	"gamesbot/internal/header"
	"gamesbot/internal/invite"
	"gamesbot/internal/platform"
)

// ratingsHeaderName marks a ratings summary message. It shares the
// header namespace with the games, so no game may use it.
const ratingsHeaderName = "Elo"

// Router dispatches interactions for every registered game type.
type Router struct {
	registry *game.Registry
	ladder   *elo.Store
	admins   map[platform.UserID]bool
	rng      *rand.Rand
	log      *slog.Logger

	cat *emoji.Catalog
}

// NewRouter builds a router. admins are user IDs whose actions carry
// the override flag; rng decides who moves first on accepted invites.
func NewRouter(reg *game.Registry, ladder *elo.Store, admins []string, rng *rand.Rand, log *slog.Logger) *Router {
	set := make(map[platform.UserID]bool, len(admins))
	for _, id := range admins {
		set[platform.UserID(id)] = true
	}
	return &Router{
		registry: reg,
		ladder:   ladder,
		admins:   set,
		rng:      rng,
		log:      log,
		cat:      emoji.NewCatalog(nil),
	}
}

// SetCatalog installs the application emoji catalog once the gateway
// reports it. Safe to call again on reconnect.
func (r *Router) SetCatalog(cat *emoji.Catalog) {
	if cat != nil {
		r.cat = cat
	}
}

// HandleInteraction processes one component interaction. Messages
// without a recognized header are silently ignored; every recognized
// interaction produces exactly one response.
func (r *Router) HandleInteraction(ctx context.Context, sender platform.Sender, in platform.Interaction) error {
	name, ok := header.Name(in.MessageContent)
	if !ok {
		return nil
	}
	log := r.log.With(
		slog.String("event_id", uuid.NewString()),
		slog.String("header", name),
		slog.String("actor", string(in.Actor.ID)),
		slog.String("custom_id", in.CustomID),
	)

	if in.Actor.Bot {
		return nil
	}
	r.rememberProfile(in.Actor, log)

	if name == ratingsHeaderName {
		// The summary has no interactive components; anything that
		// still arrives just refreshes it.
		return nil
	}

	if inv, ok := invite.FromMessage(in.MessageContent); ok {
		return r.handleInvite(ctx, sender, in, inv, log)
	}
	return r.handleGame(ctx, sender, in, name, log)
}

func (r *Router) handleInvite(ctx context.Context, sender platform.Sender, in platform.Interaction, inv *invite.Invite, log *slog.Logger) error {
	decision := inv.Resolve(in.Actor.ID, in.CustomID, r.admins[in.Actor.ID])
	switch decision.Verdict {
	case invite.VerdictNone:
		return sender.Respond(ctx, in.Token, platform.EphemeralNotice(decision.Notice))

	case invite.VerdictDeclined:
		log.Info("invite declined")
		return sender.Respond(ctx, in.Token, &platform.Response{
			Kind:    platform.Update,
			Content: inv.DeclinedContent(),
		})

	case invite.VerdictAccepted:
		t, ok := r.registry.Get(inv.GameName)
		if !ok {
			log.Warn("invite for unknown game")
			return sender.Respond(ctx, in.Token, platform.EphemeralNotice("That game is no longer available."))
		}
		// Coin flip for first move.
		first, second := inv.Inviter, inv.Invited
		if r.rng.Intn(2) == 0 {
			first, second = second, first
		}
		state := t.New(first, second)
		log.Info("game started", slog.String("first", string(first)))
		return sender.Respond(ctx, in.Token, state.Render(r.cat))
	}
	return nil
}

func (r *Router) handleGame(ctx context.Context, sender platform.Sender, in platform.Interaction, name string, log *slog.Logger) error {
	t, ok := r.registry.Get(name)
	if !ok {
		return nil
	}
	token, _, ok := header.Parse(in.MessageContent)
	if !ok {
		// Terminal header or free text under a known name; nothing to do.
		return nil
	}
	state, ok := t.Restore(token)
	if !ok {
		log.Warn("undecodable state token")
		return nil
	}
	act, ok := game.ParseAction(in.CustomID, t.Info().Prefix)
	if !ok {
		return nil
	}
	act.Values = in.Values
	act.AsAdmin = r.admins[in.Actor.ID]

	res := state.Apply(in.Actor.ID, act)
	switch res.Status {
	case game.StatusRejected:
		resp := &platform.Response{Kind: platform.Create, Content: res.Reason, Ephemeral: res.Ephemeral}
		return sender.Respond(ctx, in.Token, resp)

	case game.StatusRefresh:
		return sender.Respond(ctx, in.Token, state.Render(r.cat))

	case game.StatusResend:
		resp := state.Render(r.cat)
		resp.Kind = platform.Create
		return sender.Respond(ctx, in.Token, resp)

	case game.StatusApplied:
		if res.RoundOutcome != nil {
			r.recordOutcome(t.Info().Command, res.RoundOutcome, log)
		}
		o := state.Outcome()
		if o == nil {
			return sender.Respond(ctx, in.Token, state.Render(r.cat))
		}
		r.recordOutcome(t.Info().Command, o, log)
		final := state.Render(r.cat)
		return sender.Respond(ctx, in.Token, &platform.Response{
			Kind:       platform.Update,
			Content:    header.Terminal(name) + o.Announcement(),
			Components: final.Components,
			Embeds:     final.Embeds,
			Mentions:   final.Mentions,
		})
	}
	return fmt.Errorf("unhandled move status %d", res.Status)
}

// recordOutcome updates the ladder. Rating failures are logged, never
// surfaced: the game result stands regardless.
func (r *Router) recordOutcome(gameKey string, o game.Outcome, log *slog.Logger) {
	change, err := r.ladder.RecordOutcome(gameKey, o)
	if err != nil {
		log.Error("rating update failed", slog.Any("error", err))
		return
	}
	log.Info("ratings updated",
		slog.String("game", gameKey),
		slog.Int("winner_after", change.Winner.After),
		slog.Int("loser_after", change.Loser.After),
	)
}

func (r *Router) rememberProfile(u platform.User, log *slog.Logger) {
	if u.ID.Zero() || u.Bot {
		return
	}
	if err := r.ladder.StoreProfile(u); err != nil {
		log.Warn("profile cache update failed", slog.Any("error", err))
	}
}

// HandleChallenge builds and posts an invite message. invited may be
// the zero User for an open challenge.
func (r *Router) HandleChallenge(ctx context.Context, sender platform.Sender, token string, inviter, invited platform.User, command string) error {
	t, ok := r.registry.ByCommand(command)
	if !ok {
		return sender.Respond(ctx, token, platform.EphemeralNotice("Unknown game."))
	}
	if invited.Bot {
		return sender.Respond(ctx, token, platform.EphemeralNotice("Bots cannot play games."))
	}
	if !invited.ID.Zero() && invited.ID == inviter.ID {
		return sender.Respond(ctx, token, platform.EphemeralNotice("You cannot play against yourself!"))
	}
	r.rememberProfile(inviter, r.log)
	r.rememberProfile(invited, r.log)

	inv := &invite.Invite{
		Inviter:     inviter.ID,
		Invited:     invited.ID,
		GameName:    t.Info().Name,
		DisplayName: t.Info().Name,
	}
	content, err := inv.Content()
	if err != nil {
		return fmt.Errorf("build invite: %w", err)
	}
	return sender.Respond(ctx, token, &platform.Response{
		Kind:       platform.Create,
		Content:    content,
		Components: inv.Components(),
		Mentions:   inv.Mentions(),
	})
}

// HandleRatings posts the ephemeral ratings summary for target.
func (r *Router) HandleRatings(ctx context.Context, sender platform.Sender, token string, invoker, target platform.User) error {
	if target.Bot {
		return sender.Respond(ctx, token, platform.EphemeralNotice("Bots cannot play games."))
	}
	r.rememberProfile(target, r.log)

	embed, err := r.ratingsEmbed(invoker.ID, target)
	if err != nil {
		return fmt.Errorf("ratings summary: %w", err)
	}
	return sender.Respond(ctx, token, &platform.Response{
		Kind:      platform.Create,
		Content:   header.Terminal(ratingsHeaderName),
		Ephemeral: true,
		Embeds:    []platform.Embed{embed},
	})
}

func (r *Router) ratingsEmbed(invoker platform.UserID, target platform.User) (platform.Embed, error) {
	types, err := r.ladder.GameTypes()
	if err != nil {
		return platform.Embed{}, err
	}
	description := ""
	for _, tc := range types {
		score, ok, err := r.ladder.RatingIn(tc.Game, target.ID)
		if err != nil {
			return platform.Embed{}, err
		}
		if !ok {
			continue
		}
		displayName := tc.Game
		if t, ok := r.registry.ByCommand(tc.Game); ok {
			displayName = t.Info().Name
		}
		description += fmt.Sprintf("**%s**: %d%s\n", displayName, score, ratingBadge(score))
	}
	if description == "" {
		if invoker == target.ID {
			description = "No ratings found. Try playing some games!"
		} else {
			description = "No ratings found. Try playing with them!"
		}
	}
	return platform.Embed{
		Title:       target.DisplayName() + "'s Ratings",
		Description: description,
		Color:       0xF1C40F,
	}, nil
}

// ratingBadge annotates a score with its signed percent distance from
// the default rating: more precision near parity, a flourish far out.
func ratingBadge(score int) string {
	if score == elo.DefaultRating {
		return " ⚖️"
	}
	diff := float64(score-elo.DefaultRating) / float64(elo.DefaultRating) * 100
	sign := "+"
	flourish := " \U0001F680"
	if diff < 0 {
		sign = "-"
		flourish = " \U0001F480"
		diff = -diff
	}
	if diff < 50 {
		flourish = ""
	}
	var pct string
	switch {
	case diff <= 1:
		pct = fmt.Sprintf("%.2f", diff)
	case diff <= 10:
		pct = fmt.Sprintf("%.1f", diff)
	default:
		pct = fmt.Sprintf("%d", int(diff))
	}
	return fmt.Sprintf(" (%s%s%%%s)", sign, pct, flourish)
}
