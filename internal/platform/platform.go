// Package platform holds the chat-platform boundary types: inbound
// interaction events, outbound response instructions, and the message
// component model. The real gateway/REST client lives outside this
// module; everything here is what the core needs to describe a
// response without knowing how it is delivered.
package platform

import "context"

// UserID is a platform user identifier (a snowflake, kept as a string
// so it survives JSON round-trips without precision loss).
type UserID string

// Zero reports whether the ID is unset.
func (id UserID) Zero() bool { return id == "" }

// Mention renders the platform mention syntax for the user.
func (id UserID) Mention() string { return "<@" + string(id) + ">" }

// User carries the presentation fields the bot caches about a user.
type User struct {
	ID         UserID `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Bot        bool   `json:"bot,omitempty"`
}

// DisplayName is the pretty name of the user, falling back to their
// full account name.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Interaction is an inbound platform event: a user pressed a button or
// picked a menu option on some message.
type Interaction struct {
	ID             string   `json:"id"`
	Token          string   `json:"token"`
	Actor          User     `json:"actor"`
	CustomID       string   `json:"custom_id"`
	Values         []string `json:"values,omitempty"`
	MessageContent string   `json:"message_content"`
}

// Kind selects how a Response is delivered.
type Kind int

const (
	// Update edits the source message in place.
	Update Kind = iota
	// Create posts a new message in the channel.
	Create
)

// Response is the outbound instruction produced by the dispatcher.
type Response struct {
	Kind       Kind        `json:"kind"`
	Content    string      `json:"content"`
	Ephemeral  bool        `json:"ephemeral,omitempty"`
	Components []ActionRow `json:"components,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	// Mentions lists users whose mentions in Content should ping.
	Mentions []UserID `json:"mentions,omitempty"`
}

// Ephemeral builds a Create response visible only to the acting user.
func EphemeralNotice(msg string) *Response {
	return &Response{Kind: Create, Content: msg, Ephemeral: true}
}

// Sender delivers a response for an interaction, addressed by the
// platform's interaction token.
type Sender interface {
	Respond(ctx context.Context, token string, resp *Response) error
}

// ButtonStyle maps onto the platform's button colors.
type ButtonStyle int

const (
	StylePrimary ButtonStyle = iota + 1
	StyleSecondary
	StyleSuccess
	StyleDanger
	StyleLink
)

// Button is one interactive button.
type Button struct {
	ID       string      `json:"id,omitempty"`
	Label    string      `json:"label,omitempty"`
	Emoji    string      `json:"emoji,omitempty"`
	Style    ButtonStyle `json:"style"`
	Disabled bool        `json:"disabled,omitempty"`
	URL      string      `json:"url,omitempty"` // link buttons only
}

// SelectOption is one entry in a select menu.
type SelectOption struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Default bool   `json:"default,omitempty"`
}

// SelectMenu is a dropdown component.
type SelectMenu struct {
	ID          string         `json:"id"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []SelectOption `json:"options"`
}

// ActionRow holds up to five buttons or a single menu.
type ActionRow struct {
	Buttons []Button    `json:"buttons,omitempty"`
	Menu    *SelectMenu `json:"menu,omitempty"`
}

// Embed is a rich message attachment.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// EmbedField is a titled section of an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}
