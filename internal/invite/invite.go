// Package invite implements the challenge-and-accept flow that runs
// before a game exists. An invite lives entirely inside its chat
// message header; there is no store, and losing the message loses the
// invite.
package invite

import (
	"fmt"

	"gamesbot/internal/codec"
	"gamesbot/internal/header"
	"gamesbot/internal/platform"
)

// Component IDs for the invite buttons.
const (
	AcceptID  = "invite_accept"
	DeclineID = "invite_decline"
)

// Invite is a pending challenge. Invited is zero for an open
// challenge, claimable by the first accepter.
type Invite struct {
	Inviter     platform.UserID
	Invited     platform.UserID
	GameName    string // header name of the target game
	DisplayName string
	Options     map[string]any // game-specific option bag
}

type snapshot struct {
	InviterID string         `json:"inviter_id"`
	InvitedID string         `json:"invited_id"`
	Options   map[string]any `json:"options,omitempty"`
}

// FromMessage recovers an invite from message content. It reports
// false when the header is missing or the payload is not an invite.
// Invite payloads are recognized by their inviter_id field; no game
// snapshot carries one.
func FromMessage(content string) (*Invite, bool) {
	token, name, ok := header.Parse(content)
	if !ok {
		return nil, false
	}
	var snap snapshot
	if !codec.Decode(token, &snap) {
		return nil, false
	}
	if snap.InviterID == "" {
		return nil, false
	}
	return &Invite{
		Inviter:     platform.UserID(snap.InviterID),
		Invited:     platform.UserID(snap.InvitedID),
		GameName:    name,
		DisplayName: name,
		Options:     snap.Options,
	}, true
}

// Header serializes the invite into its message header.
func (inv *Invite) Header() (string, error) {
	token, err := codec.Encode(snapshot{
		InviterID: string(inv.Inviter),
		InvitedID: string(inv.Invited),
		Options:   inv.Options,
	})
	if err != nil {
		return "", fmt.Errorf("encode invite: %w", err)
	}
	return header.Build(token, inv.GameName), nil
}

// Content renders the full challenge message text.
func (inv *Invite) Content() (string, error) {
	h, err := inv.Header()
	if err != nil {
		return "", err
	}
	if inv.Invited.Zero() {
		return fmt.Sprintf("%s%s has posted an open challenge: a game of %s! First to accept plays.",
			h, inv.Inviter.Mention(), inv.DisplayName), nil
	}
	return fmt.Sprintf("%s%s has challenged %s to a game of %s!",
		h, inv.Inviter.Mention(), inv.Invited.Mention(), inv.DisplayName), nil
}

// Mentions lists the users the challenge message should ping.
func (inv *Invite) Mentions() []platform.UserID {
	if inv.Invited.Zero() {
		return []platform.UserID{inv.Inviter}
	}
	return []platform.UserID{inv.Inviter, inv.Invited}
}

// Components builds the accept/decline row.
func (inv *Invite) Components() []platform.ActionRow {
	return []platform.ActionRow{{Buttons: []platform.Button{
		{ID: AcceptID, Label: "Accept", Style: platform.StyleSuccess},
		{ID: DeclineID, Label: "Decline", Style: platform.StyleDanger},
	}}}
}

// Verdict is the result of an accept or decline interaction.
type Verdict int

const (
	// VerdictNone means the invite is unchanged; Notice explains why.
	VerdictNone Verdict = iota
	// VerdictAccepted means the game should be created. For open
	// challenges the accepter has been assigned as Invited.
	VerdictAccepted
	// VerdictDeclined means the invite is terminally declined.
	VerdictDeclined
)

// Decision is the outcome of Resolve.
type Decision struct {
	Verdict Verdict
	Notice  string // ephemeral rejection text when Verdict is None
}

// Resolve advances the invite state machine for one interaction. An
// admin override may act as anyone, which covers testing and support.
func (inv *Invite) Resolve(actor platform.UserID, customID string, isAdmin bool) Decision {
	if customID != AcceptID && customID != DeclineID {
		return Decision{Notice: "Unknown interaction."}
	}
	if actor == inv.Inviter && !isAdmin {
		return Decision{Notice: "You cannot accept or decline your own game invite."}
	}
	if inv.Invited.Zero() {
		// Open challenge: the first valid accepter claims the seat.
		if customID == DeclineID {
			return Decision{Notice: "This is an open challenge; just ignore it if you don't want to play."}
		}
		inv.Invited = actor
		return Decision{Verdict: VerdictAccepted}
	}
	if actor != inv.Invited && !isAdmin {
		return Decision{Notice: "You are not invited to this game."}
	}
	if customID == AcceptID {
		return Decision{Verdict: VerdictAccepted}
	}
	return Decision{Verdict: VerdictDeclined}
}

// DeclinedContent is the terminal text the message is rewritten to.
func (inv *Invite) DeclinedContent() string {
	return header.Terminal(inv.GameName) + "The challenge was declined."
}
