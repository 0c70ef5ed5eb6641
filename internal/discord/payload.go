// Package discord implements the four outbound wire paths to the chat
// platform: webhook JSON, webhook multipart, bot-API JSON, and bot-API
// multipart. Payload schemas reuse the discordgo wire types; the transport
// itself is hand-built because of the bespoke strip-retry and multipart
// shaping rules.
package discord

import (
	"encoding/json"

	"github.com/bwmarrin/discordgo"
)

// AttachmentRef declares one uploaded file inside a multipart payload_json part.
type AttachmentRef struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
}

// Payload is the message body shared by the webhook and bot-API paths.
// Username and AvatarURL must stay empty on the bot-API path; the relay
// endpoint rejects impersonation fields.
type Payload struct {
	Content          string                            `json:"content,omitempty"`
	Username         string                            `json:"username,omitempty"`
	AvatarURL        string                            `json:"avatar_url,omitempty"`
	Embeds           []*discordgo.MessageEmbed         `json:"embeds,omitempty"`
	Components       []json.RawMessage                 `json:"components,omitempty"`
	AllowedMentions  *discordgo.MessageAllowedMentions `json:"allowed_mentions,omitempty"`
	MessageReference *discordgo.MessageReference       `json:"message_reference,omitempty"`
	Attachments      []AttachmentRef                   `json:"attachments,omitempty"`
}

// NewPayload returns a payload with mention parsing disabled, the baseline
// for every outgoing message.
func NewPayload() Payload {
	return Payload{
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse:       []discordgo.AllowedMentionType{},
			RepliedUser: false,
		},
	}
}

// File is one binary part of a multipart send, held fully in memory between
// download and delivery.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// MessageRef identifies a message created at the destination.
type MessageRef struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// WebhookInfo is the webhook metadata used to resolve bot-relay routing.
type WebhookInfo struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
}
