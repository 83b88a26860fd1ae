// Package channel implements the message-channel collaborator agents
// speak through.
package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/agora-arena/agora/internal/domain"
	"github.com/bwmarrin/discordgo"
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// DiscordChannel posts and reads messages over the Discord REST API.
// Agents poll on their decision cycle, so no gateway connection is kept.
type DiscordChannel struct {
	sess session
}

// messageFetchLimit bounds one history page; cycles run every minute,
// so a single page is plenty.
const messageFetchLimit = 100

// NewDiscord creates a channel backed by a bot-token Discord session.
func NewDiscord(botToken string) (*DiscordChannel, error) {
	if botToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	dg, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &DiscordChannel{sess: dg}, nil
}

// NewDiscordWithSession injects a session, for tests.
func NewDiscordWithSession(s session) *DiscordChannel {
	return &DiscordChannel{sess: s}
}

func (c *DiscordChannel) Post(ctx context.Context, channelID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.sess.ChannelMessageSend(channelID, text); err != nil {
		return fmt.Errorf("discord: post to %s: %w", channelID, err)
	}
	return nil
}

func (c *DiscordChannel) RecentMessages(ctx context.Context, channelID string, since time.Time) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := c.sess.ChannelMessages(channelID, messageFetchLimit, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("discord: read %s: %w", channelID, err)
	}

	// Discord returns newest first; callers expect oldest first.
	var out []domain.Message
	for i := len(raw) - 1; i >= 0; i-- {
		m := raw[i]
		if !m.Timestamp.After(since) {
			continue
		}
		out = append(out, domain.Message{
			Author:    m.Author.Username,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return out, nil
}

var _ domain.Channel = (*DiscordChannel)(nil)
