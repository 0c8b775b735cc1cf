package telegram

import "strings"

// Update is the subset of a Bot API update the bot reacts to. Exactly one of
// the pointer fields is set.
type Update struct {
	UpdateID        int64                   `json:"update_id"`
	Message         *Message                `json:"message,omitempty"`
	EditedMessage   *Message                `json:"edited_message,omitempty"`
	MessageReaction *MessageReactionUpdated `json:"message_reaction,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

type Message struct {
	MessageID      int64           `json:"message_id"`
	From           *User           `json:"from,omitempty"`
	Chat           Chat            `json:"chat"`
	Date           int64           `json:"date"`
	Text           string          `json:"text,omitempty"`
	Entities       []MessageEntity `json:"entities,omitempty"`
	ReplyToMessage *Message        `json:"reply_to_message,omitempty"`
}

// ReactionType is a reaction. Only "emoji" reactions carry Emoji.
type ReactionType struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

type MessageReactionUpdated struct {
	Chat        Chat           `json:"chat"`
	MessageID   int64          `json:"message_id"`
	User        *User          `json:"user,omitempty"`
	Date        int64          `json:"date"`
	OldReaction []ReactionType `json:"old_reaction"`
	NewReaction []ReactionType `json:"new_reaction"`
}

// AuthorID returns the sender's user id, or 0 for anonymous messages.
func (m *Message) AuthorID() int64 {
	if m.From == nil {
		return 0
	}
	return m.From.ID
}

// Command splits a leading bot command into its name and the remaining text.
// "/review@notebot 3" yields ("review", "3", true).
func (m *Message) Command() (name, args string, ok bool) {
	if len(m.Entities) == 0 || m.Entities[0].Type != "bot_command" || m.Entities[0].Offset != 0 {
		return "", "", false
	}
	length := m.Entities[0].Length
	if length > len(m.Text) {
		length = len(m.Text)
	}
	name = strings.TrimPrefix(m.Text[:length], "/")
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), strings.TrimSpace(m.Text[length:]), true
}

// AddedEmojis returns the emoji reactions present in NewReaction but not in OldReaction.
func (r *MessageReactionUpdated) AddedEmojis() []string {
	old := make(map[string]bool, len(r.OldReaction))
	for _, rt := range r.OldReaction {
		if rt.Type == "emoji" {
			old[rt.Emoji] = true
		}
	}
	var added []string
	for _, rt := range r.NewReaction {
		if rt.Type == "emoji" && !old[rt.Emoji] {
			added = append(added, rt.Emoji)
		}
	}
	return added
}
