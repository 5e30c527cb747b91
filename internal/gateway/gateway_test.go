package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"gamesbot/internal/platform"
)

// fakeGateway accepts one session, pushes the given envelopes, then
// collects everything the client writes back.
type fakeGateway struct {
	push     []Envelope
	authed   chan string
	received chan Envelope
}

func (f *fakeGateway) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.authed <- r.Header.Get("Authorization")
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		ctx := r.Context()
		for _, env := range f.push {
			data, _ := json.Marshal(env)
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var env Envelope
			if err := json.Unmarshal(data, &env); err == nil {
				f.received <- env
			}
		}
	}
}

func envelope(t *testing.T, typ string, payload any) Envelope {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return Envelope{Type: typ, Payload: data}
}

func TestSessionDispatchesEvents(t *testing.T) {
	fake := &fakeGateway{
		push: []Envelope{
			envelope(t, "ready", Ready{SessionID: "s1", Emojis: map[string]string{"quiggle": "<:quiggle:1>"}}),
			envelope(t, "interaction", platform.Interaction{
				Token: "tok1", CustomID: "ttt_move_0_0",
				Actor:          platform.User{ID: "10"},
				MessageContent: "body",
			}),
			envelope(t, "command", Command{Token: "tok2", Name: "chess", Invoker: platform.User{ID: "10"}}),
			{Type: "mystery", Payload: json.RawMessage(`{}`)},
		},
		authed:   make(chan string, 1),
		received: make(chan Envelope, 4),
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, err := Dial(ctx, url, "secret", slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	got := struct {
		ready       chan Ready
		interaction chan platform.Interaction
		command     chan Command
	}{make(chan Ready, 1), make(chan platform.Interaction, 1), make(chan Command, 1)}

	runDone := make(chan error, 1)
	go func() {
		runDone <- client.Run(ctx, Events{
			Ready: func(_ context.Context, r Ready) { got.ready <- r },
			Interaction: func(ctx context.Context, s platform.Sender, in platform.Interaction) {
				got.interaction <- in
				// Answer over the same socket.
				if err := s.Respond(ctx, in.Token, platform.EphemeralNotice("ok")); err != nil {
					t.Errorf("Respond: %v", err)
				}
			},
			Command: func(_ context.Context, _ platform.Sender, c Command) { got.command <- c },
		})
	}()

	if auth := <-fake.authed; auth != "Bot secret" {
		t.Fatalf("Authorization = %q", auth)
	}
	ready := <-got.ready
	if ready.SessionID != "s1" || ready.Emojis["quiggle"] == "" {
		t.Fatalf("ready = %+v", ready)
	}
	in := <-got.interaction
	if in.CustomID != "ttt_move_0_0" || in.Actor.ID != "10" {
		t.Fatalf("interaction = %+v", in)
	}
	cmd := <-got.command
	if cmd.Name != "chess" || cmd.Token != "tok2" {
		t.Fatalf("command = %+v", cmd)
	}

	reply := <-fake.received
	if reply.Type != "respond" {
		t.Fatalf("reply type = %q", reply.Type)
	}
	var rp responsePayload
	if err := json.Unmarshal(reply.Payload, &rp); err != nil {
		t.Fatalf("reply payload: %v", err)
	}
	if rp.Token != "tok1" || rp.Response == nil || !rp.Response.Ephemeral {
		t.Fatalf("reply = %+v", rp)
	}

	cancel()
	if err := <-runDone; err == nil {
		t.Fatal("Run must report why it stopped")
	}
}
