// Package session builds and checks the signed, client-carried session that
// ties a browser game to one Telegram player and one score surface.
//
// The session is a value: an encoded Context plus an HMAC signature. Nothing
// is stored server-side; whoever holds a pair that verifies may act for that
// player on that surface.
package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload is returned when a payload cannot be decoded into a
// valid Context.
var ErrMalformedPayload = errors.New("malformed payload")

// transport is unpadded URL-safe base64, so a payload can sit in a query
// string without escaping.
var transport = base64.RawURLEncoding

// Surface names where on Telegram a score is displayed: either a chat
// message (ChatID + MessageID) or an inline message (InlineMessageID).
type Surface struct {
	ChatID          int64
	MessageID       int
	InlineMessageID string
}

// Inline reports whether the surface is an inline message.
func (s Surface) Inline() bool { return s.InlineMessageID != "" }

// Key is a stable text form of the surface, e.g. "chat:42:7" or "inline:AbC".
func (s Surface) Key() string {
	if s.Inline() {
		return "inline:" + s.InlineMessageID
	}
	return fmt.Sprintf("chat:%d:%d", s.ChatID, s.MessageID)
}

// Validate enforces that exactly one addressing mode is populated.
func (s Surface) Validate() error {
	chat := s.ChatID != 0 || s.MessageID != 0
	switch {
	case s.Inline() && chat:
		return errors.New("both chat message and inline message set")
	case s.Inline():
		return nil
	case s.ChatID == 0 || s.MessageID == 0:
		return errors.New("no complete surface")
	}
	return nil
}

// Context identifies the player and the surface of one game invitation.
type Context struct {
	UserID int64
	Surface
}

// Validate checks the user id and the surface invariant.
func (c Context) Validate() error {
	if c.UserID <= 0 {
		return errors.New("missing user_id")
	}
	return c.Surface.Validate()
}

// wire is the canonical JSON shape. Field order is fixed by the struct, so
// the encoding of a given Context never changes.
type wire struct {
	UserID          *int64 `json:"user_id"`
	ChatID          int64  `json:"chat_id,omitempty"`
	MessageID       int    `json:"message_id,omitempty"`
	InlineMessageID string `json:"inline_message_id,omitempty"`
}

// Encode serializes c into its opaque transport form.
func Encode(c Context) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	uid := c.UserID
	raw, err := json.Marshal(wire{
		UserID:          &uid,
		ChatID:          c.ChatID,
		MessageID:       c.MessageID,
		InlineMessageID: c.InlineMessageID,
	})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return transport.EncodeToString(raw), nil
}

// Decode parses an opaque payload back into a Context.
// Every failure wraps ErrMalformedPayload.
func Decode(text string) (Context, error) {
	raw, err := transport.DecodeString(text)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if w.UserID == nil {
		return Context{}, fmt.Errorf("%w: missing user_id", ErrMalformedPayload)
	}
	c := Context{
		UserID: *w.UserID,
		Surface: Surface{
			ChatID:          w.ChatID,
			MessageID:       w.MessageID,
			InlineMessageID: w.InlineMessageID,
		},
	}
	if err := c.Validate(); err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return c, nil
}
