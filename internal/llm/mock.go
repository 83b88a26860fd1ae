package llm

import (
	"context"

	"github.com/agora-arena/agora/internal/domain"
)

// MockClient is a configurable generation client for testing.
// Queue responses with Enqueue; once the queue drains, Response is
// returned for every call.
type MockClient struct {
	Response string
	Err      error

	queue []string

	// Call tracking for assertions
	Prompts []string
	Opts    []domain.GenerateOpts
}

func NewMockClient() *MockClient {
	return &MockClient{Response: "mock response"}
}

// Enqueue adds responses returned in order before falling back to
// Response.
func (c *MockClient) Enqueue(responses ...string) {
	c.queue = append(c.queue, responses...)
}

func (c *MockClient) Generate(ctx context.Context, prompt string, opts domain.GenerateOpts) (string, error) {
	c.Prompts = append(c.Prompts, prompt)
	c.Opts = append(c.Opts, opts)

	if c.Err != nil {
		return "", c.Err
	}
	if len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		return next, nil
	}
	return c.Response, nil
}

// Reset clears recorded calls and queued responses.
func (c *MockClient) Reset() {
	c.Response = "mock response"
	c.Err = nil
	c.queue = nil
	c.Prompts = nil
	c.Opts = nil
}
