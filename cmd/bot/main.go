package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamesbot/internal/config"
	"gamesbot/internal/dispatch"
	"gamesbot/internal/elo"
	"gamesbot/internal/emoji"
	"gamesbot/internal/game"
	"gamesbot/internal/game/battleship"
	"gamesbot/internal/game/chess"
	"gamesbot/internal/game/connectfour"
	"gamesbot/internal/game/rps"
	"gamesbot/internal/game/tictactoe"
	"gamesbot/internal/gateway"
	"gamesbot/internal/platform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration", slog.Any("error", err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ladder, err := elo.Open(cfg.DBPath)
	if err != nil {
		log.Error("open rating store", slog.Any("error", err))
		os.Exit(1)
	}
	defer ladder.Close()

	registry := game.NewRegistry()
	registry.Register(tictactoe.TicTacToe{})
	registry.Register(connectfour.ConnectFour{})
	registry.Register(chess.Chess{})
	registry.Register(battleship.Battleship{})
	registry.Register(rps.RPS{})

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	router := dispatch.NewRouter(registry, ladder, cfg.AdminIDs, rng, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := gateway.Events{
		Ready: func(_ context.Context, r gateway.Ready) {
			log.Info("gateway ready",
				slog.String("session_id", r.SessionID),
				slog.Int("emojis", len(r.Emojis)))
			router.SetCatalog(emoji.NewCatalog(r.Emojis))
		},
		Interaction: func(ctx context.Context, s platform.Sender, in platform.Interaction) {
			if err := router.HandleInteraction(ctx, s, in); err != nil {
				log.Error("interaction failed", slog.Any("error", err))
			}
		},
		Command: func(ctx context.Context, s platform.Sender, c gateway.Command) {
			var err error
			if c.Name == "elo" {
				err = router.HandleRatings(ctx, s, c.Token, c.Invoker, c.Target)
			} else {
				err = router.HandleChallenge(ctx, s, c.Token, c.Invoker, c.Target, c.Name)
			}
			if err != nil {
				log.Error("command failed", slog.String("command", c.Name), slog.Any("error", err))
			}
		},
	}

	runGateway(ctx, cfg, router, events, log)
}

// runGateway keeps one gateway session alive, reconnecting with a
// capped backoff until ctx is canceled.
func runGateway(ctx context.Context, cfg config.Config, router *dispatch.Router, events gateway.Events, log *slog.Logger) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		client, err := gateway.Dial(ctx, cfg.GatewayURL, cfg.Token, log)
		if err != nil {
			log.Warn("gateway dial failed", slog.Any("error", err), slog.Duration("retry_in", backoff))
		} else {
			backoff = time.Second
			if err := client.Run(ctx, events); err != nil && ctx.Err() == nil {
				log.Warn("gateway session ended", slog.Any("error", err))
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
