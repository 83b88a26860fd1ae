package channel

import (
	"context"
	"sync"
	"time"

	"github.com/agora-arena/agora/internal/domain"
)

// Mock is an in-memory channel for tests and local runs.
type Mock struct {
	mu       sync.Mutex
	messages map[string][]domain.Message

	// Posts records everything posted, in order, for assertions.
	Posts []struct {
		ChannelID string
		Text      string
	}
}

func NewMock() *Mock {
	return &Mock{messages: make(map[string][]domain.Message)}
}

func (m *Mock) Post(ctx context.Context, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := domain.Message{Author: "self", Content: text, Timestamp: time.Now()}
	m.messages[channelID] = append(m.messages[channelID], msg)
	m.Posts = append(m.Posts, struct {
		ChannelID string
		Text      string
	}{channelID, text})
	return nil
}

// Seed injects a message as if another agent had posted it.
func (m *Mock) Seed(channelID, author, content string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[channelID] = append(m.messages[channelID], domain.Message{
		Author:    author,
		Content:   content,
		Timestamp: at,
	})
}

func (m *Mock) RecentMessages(ctx context.Context, channelID string, since time.Time) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Message
	for _, msg := range m.messages[channelID] {
		if msg.Timestamp.After(since) {
			out = append(out, msg)
		}
	}
	return out, nil
}

var _ domain.Channel = (*Mock)(nil)
