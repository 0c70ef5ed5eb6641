package relay

import (
	"context"
	"mime"
	"path"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/memohai/relay/internal/discord"
)

// buildChunk shapes one chunk into a deliverable payload. Reply references,
// caller embeds, and interactive components ride on the first chunk only;
// later chunks rely on destination-side insertion order.
func (s *Sender) buildChunk(ctx context.Context, msg Message, chunkText string, index int, useBot bool) (discord.Payload, []discord.File, error) {
	payload := discord.NewPayload()

	// The relay API rejects impersonation fields.
	if !useBot {
		payload.Username = msg.Username
		payload.AvatarURL = msg.AvatarURL
	}
	if index == 0 {
		if msg.ReplyTo != nil && msg.ReplyTo.MessageID != "" {
			payload.MessageReference = &discordgo.MessageReference{
				MessageID: msg.ReplyTo.MessageID,
				ChannelID: msg.ReplyTo.ChannelID,
			}
		}
		payload.Components = msg.Components
	}

	switch {
	case len(msg.Uploads) > 0:
		files, err := s.downloadUploads(ctx, msg.Uploads)
		if err != nil {
			return discord.Payload{}, nil, err
		}
		embed := &discordgo.MessageEmbed{
			Description: truncateRunes(chunkText, richChunkSize),
		}
		if msg.Uploads[0].IsImage {
			embed.Image = &discordgo.MessageEmbedImage{
				URL: "attachment://" + files[0].Name,
			}
		}
		embeds := []*discordgo.MessageEmbed{embed}
		if index == 0 {
			embeds = append(embeds, msg.Embeds...)
		}
		s.translateEmbeds(ctx, embeds)
		payload.Embeds = embeds
		return payload, files, nil

	case msg.Rich:
		embeds := make([]*discordgo.MessageEmbed, 0, len(msg.Embeds)+1)
		if chunkText != "" {
			embeds = append(embeds, &discordgo.MessageEmbed{Description: chunkText})
		}
		if index == 0 {
			embeds = append(embeds, msg.Embeds...)
		}
		s.translateEmbeds(ctx, embeds)
		payload.Embeds = embeds
		return payload, nil, nil

	default:
		payload.Content = chunkText
		if index == 0 && len(msg.Embeds) > 0 {
			embeds := append([]*discordgo.MessageEmbed{}, msg.Embeds...)
			s.translateEmbeds(ctx, embeds)
			payload.Embeds = embeds
		}
		return payload, nil, nil
	}
}

// downloadUploads fetches every upload into memory, one at a time. A failed
// or oversized download fails the whole chunk.
func (s *Sender) downloadUploads(ctx context.Context, uploads []Upload) ([]discord.File, error) {
	files := make([]discord.File, 0, len(uploads))
	for _, u := range uploads {
		data, err := s.transport.Download(ctx, u.URL)
		if err != nil {
			return nil, err
		}
		files = append(files, discord.File{
			Name:        uploadFilename(u),
			ContentType: uploadContentType(u),
			Data:        data,
		})
	}
	return files, nil
}

// translateEmbeds translates every text field of every embed under the same
// separator-skip and language-gating rules as whole messages. Fields run
// concurrently; there is no ordering requirement among them.
func (s *Sender) translateEmbeds(ctx context.Context, embeds []*discordgo.MessageEmbed) {
	if !s.translator.Enabled() {
		return
	}

	var wg sync.WaitGroup
	field := func(target *string) {
		if *target == "" {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			*target = s.decorateTranslation(ctx, *target)
		}()
	}

	for _, embed := range embeds {
		if embed == nil {
			continue
		}
		field(&embed.Title)
		field(&embed.Description)
		if embed.Footer != nil {
			field(&embed.Footer.Text)
		}
		if embed.Author != nil {
			field(&embed.Author.Name)
		}
		for _, f := range embed.Fields {
			if f == nil {
				continue
			}
			field(&f.Name)
			field(&f.Value)
		}
	}
	wg.Wait()
}

func uploadFilename(u Upload) string {
	name := strings.TrimSpace(u.Name)
	if name != "" {
		return name
	}
	name = path.Base(u.URL)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}

func uploadContentType(u Upload) string {
	if t := mime.TypeByExtension(path.Ext(uploadFilename(u))); t != "" {
		return t
	}
	switch {
	case u.IsImage:
		return "image/png"
	case u.IsVideo:
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
