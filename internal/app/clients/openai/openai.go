// internal/app/clients/openai/openai.go

// Package openai wraps the three AI capabilities the courses use: student
// chat, written language assessment, and audio transcription.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// chatModel is used for both chat and assessment requests.
const chatModel = "gpt-4-turbo"

// transcribeModel handles audio transcription.
const transcribeModel = "whisper-1"

// maxRetries bounds the backoff loop for rate-limited assessment calls.
const maxRetries = 5

// Client calls the AI provider. sleep is replaceable so tests don't wait
// out real backoff delays.
type Client struct {
	http  *resty.Client
	sleep func(time.Duration)
}

// New creates a client. baseURL is overridable for tests; pass
// DefaultBaseURL in production.
func New(baseURL, apiKey string) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey)
	return &Client{http: http, sleep: time.Sleep}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends one student message and returns the assistant's reply.
// No retry: a conversational request that rate-limits just fails.
func (c *Client) Chat(ctx context.Context, studentMessage string) (string, error) {
	return c.complete(ctx, chatRequest{
		Model:    chatModel,
		Messages: []chatMessage{{Role: "user", Content: studentMessage}},
	})
}

// AssessLanguage asks the model to grade a sentence for grammar, fluency,
// and pronunciation. Rate-limited responses retry with exponential backoff
// (2^n seconds, up to maxRetries attempts); any other failure is final.
func (c *Client) AssessLanguage(ctx context.Context, text string) (string, error) {
	req := chatRequest{
		Model: chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an assistant that helps with language assessments."},
			{Role: "user", Content: fmt.Sprintf(
				"Assess the following English sentence for grammar, fluency, and pronunciation, and suggest improvements if needed: %q", text)},
		},
		MaxTokens: 150,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		reply, err := c.complete(ctx, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		var re *rateLimitError
		if !errors.As(err, &re) {
			break
		}

		backoff := time.Duration(1<<attempt) * time.Second
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			c.sleep(backoff)
		}
	}
	return "", lastErr
}

// Transcribe uploads an audio clip and returns the plain-text transcript.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, audio).
		SetFormData(map[string]string{
			"model":           transcribeModel,
			"response_format": "text",
		}).
		Post("/audio/transcriptions")
	if err != nil {
		return "", apperr.Upstream("AI provider", err)
	}
	if resp.IsError() {
		return "", apperr.Upstream("AI provider",
			fmt.Errorf("transcription: %s: %s", resp.Status(), resp.String()))
	}
	return strings.TrimSpace(resp.String()), nil
}

func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", apperr.Upstream("AI provider", err)
	}
	if resp.StatusCode() == 429 {
		return "", &rateLimitError{body: resp.String()}
	}
	if resp.IsError() {
		return "", apperr.Upstream("AI provider",
			fmt.Errorf("chat completion: %s: %s", resp.Status(), resp.String()))
	}
	if len(out.Choices) == 0 {
		return "", apperr.Upstream("AI provider", fmt.Errorf("empty completion response"))
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// rateLimitError marks a 429 from the provider, the only retryable
// failure.
type rateLimitError struct {
	body string
}

func (e *rateLimitError) Error() string {
	return "AI provider rate limited: " + e.body
}
