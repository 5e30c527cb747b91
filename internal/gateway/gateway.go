// Package gateway connects to the chat platform's websocket gateway
// and turns its events into typed callbacks. Responses travel back
// over the same socket, addressed by interaction token.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"nhooyr.io/websocket"

	"gamesbot/internal/platform"
)

// Envelope is the JSON envelope for gateway messages.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Ready is the first event of a session.
type Ready struct {
	SessionID string `json:"session_id"`
	// Emojis maps application emoji names to their render strings.
	Emojis map[string]string `json:"emojis"`
}

// Command is an invoked application command: a challenge or a ratings
// lookup. Target is zero when the command names no other user.
type Command struct {
	Token   string        `json:"token"`
	Name    string        `json:"name"`
	Invoker platform.User `json:"invoker"`
	Target  platform.User `json:"target"`
}

type responsePayload struct {
	Token    string             `json:"token"`
	Response *platform.Response `json:"response"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Events are the callbacks a session dispatches into. Nil callbacks
// drop their events.
type Events struct {
	Ready       func(ctx context.Context, r Ready)
	Interaction func(ctx context.Context, s platform.Sender, in platform.Interaction)
	Command     func(ctx context.Context, s platform.Sender, c Command)
}

// Client is one gateway session. It implements platform.Sender.
type Client struct {
	conn *websocket.Conn
	log  *slog.Logger

	writeMu sync.Mutex
}

// Dial opens an authenticated gateway session.
func Dial(ctx context.Context, url, token string, log *slog.Logger) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bot " + token}},
	})
	if err != nil {
		return nil, fmt.Errorf("dial gateway: %w", err)
	}
	// Headers can exceed the default read limit once a large emoji
	// catalog rides in the message content.
	conn.SetReadLimit(1 << 20)
	return &Client{conn: conn, log: log}, nil
}

// Respond sends a response for an interaction back over the socket.
func (c *Client) Respond(ctx context.Context, token string, resp *platform.Response) error {
	return c.send(ctx, "respond", responsePayload{Token: token, Response: resp})
}

func (c *Client) send(ctx context.Context, typ string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	env, err := json.Marshal(Envelope{Type: typ, Payload: data})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.Write(ctx, websocket.MessageText, env)
}

// Run reads events until the connection drops or ctx is canceled. The
// caller owns reconnecting.
func (c *Client) Run(ctx context.Context, ev Events) error {
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("gateway read: %w", err)
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn("undecodable gateway frame", slog.Any("error", err))
			continue
		}
		c.dispatch(ctx, env, ev)
	}
}

func (c *Client) dispatch(ctx context.Context, env Envelope, ev Events) {
	switch env.Type {
	case "ready":
		var r Ready
		if err := json.Unmarshal(env.Payload, &r); err != nil {
			c.log.Warn("bad ready payload", slog.Any("error", err))
			return
		}
		if ev.Ready != nil {
			ev.Ready(ctx, r)
		}

	case "interaction":
		var in platform.Interaction
		if err := json.Unmarshal(env.Payload, &in); err != nil {
			c.log.Warn("bad interaction payload", slog.Any("error", err))
			return
		}
		if ev.Interaction != nil {
			ev.Interaction(ctx, c, in)
		}

	case "command":
		var cmd Command
		if err := json.Unmarshal(env.Payload, &cmd); err != nil {
			c.log.Warn("bad command payload", slog.Any("error", err))
			return
		}
		if ev.Command != nil {
			ev.Command(ctx, c, cmd)
		}

	case "error":
		var ep errorPayload
		if err := json.Unmarshal(env.Payload, &ep); err == nil {
			c.log.Warn("gateway error", slog.String("message", ep.Message))
		}

	default:
		// Unknown event types are forward compatible noise.
	}
}
