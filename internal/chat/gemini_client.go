package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	modelID string
	timeout time.Duration
	logger  *logging.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, modelID string, timeout time.Duration, logger *logging.Logger) (*GeminiClient, error) {
	if logger == nil {
		logger = logging.Default()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chat: create gemini client: %w", err)
	}
	return &GeminiClient{
		client:  client,
		modelID: modelID,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Generate sends the conversation to Gemini and returns the text reply.
func (c *GeminiClient) Generate(ctx context.Context, systemPrompt string, turns []Turn, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.modelID)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	session := model.StartChat()
	for _, turn := range turns {
		role := "user"
		if turn.Role == "assistant" {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		if isRateLimited(err) {
			return "", fmt.Errorf("%w: %v", ErrModelRateLimited, err)
		}
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	reply := collectText(resp)
	if reply == "" {
		return "", fmt.Errorf("%w: empty response", ErrModelUnavailable)
	}
	return reply, nil
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	return strings.Contains(err.Error(), "429")
}

func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
