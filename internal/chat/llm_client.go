package chat

import (
	"context"
	"errors"
)

var (
	// ErrModelUnavailable wraps any upstream model failure.
	ErrModelUnavailable = errors.New("chat: model unavailable")

	// ErrModelRateLimited means the upstream rejected the call for
	// quota reasons; callers word the reply differently.
	ErrModelRateLimited = errors.New("chat: model rate limited")
)

// LLMClient generates a free-form reply from the system prompt and the
// conversation so far.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, turns []Turn, message string) (string, error)
}

// StubLLM returns a fixed reply, for tests and credential-less runs.
type StubLLM struct {
	Reply string
	Err   error
}

func (s StubLLM) Generate(ctx context.Context, systemPrompt string, turns []Turn, message string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if s.Reply == "" {
		return "Thanks for your message. You can ask me about projects or schedule a meeting.", nil
	}
	return s.Reply, nil
}
