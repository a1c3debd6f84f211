package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiClient runs chat requests against Google's Gemini API.
type GeminiClient struct {
	apiKey    string
	retryMax  int
	baseDelay time.Duration
	opts      []option.ClientOption
}

// NewGeminiClient returns a Gemini runtime. Extra client options (endpoint,
// HTTP client) are appended after the API key.
func NewGeminiClient(apiKey string, retryMax int, baseDelay time.Duration, opts ...option.ClientOption) *GeminiClient {
	if retryMax <= 0 {
		retryMax = 3
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return &GeminiClient{apiKey: strings.TrimSpace(apiKey), retryMax: retryMax, baseDelay: baseDelay, opts: opts}
}

func (c *GeminiClient) session(ctx context.Context, req GenerateRequest) (*genai.Client, *genai.ChatSession, []genai.Part, error) {
	if c.apiKey == "" {
		return nil, nil, nil, missingKeyError(ProviderGemini)
	}
	if req.Model == "" {
		return nil, nil, nil, errors.New("model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return nil, nil, nil, errors.New("messages cannot be empty")
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.opts...)...)
	if err != nil {
		return nil, nil, nil, &NetworkError{Host: "generativelanguage.googleapis.com", Err: err}
	}
	m := cl.GenerativeModel(req.Model)
	if req.Temperature > 0 {
		m.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object" {
		m.ResponseMIMEType = "application/json"
	}

	var system []genai.Part
	var turns []*genai.Content
	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			system = append(system, genai.Text(msg.Content))
		case "assistant":
			turns = append(turns, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			turns = append(turns, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	if len(system) > 0 {
		m.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(turns) == 0 {
		cl.Close()
		return nil, nil, nil, errors.New("messages cannot be empty")
	}
	cs := m.StartChat()
	cs.History = turns[:len(turns)-1]
	return cl, cs, turns[len(turns)-1].Parts, nil
}

// Generate sends the conversation and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	cl, cs, last, err := c.session(ctx, req)
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	var lastErr error
	for attempt := 1; attempt <= c.retryMax; attempt++ {
		resp, err := cs.SendMessage(ctx, last...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("gemini generate: %w", err)
			if err := sleepCtx(ctx, time.Duration(attempt)*c.baseDelay); err != nil {
				return nil, err
			}
			continue
		}
		out := &GenerateResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: firstText(resp)}}},
		}
		if u := resp.UsageMetadata; u != nil {
			out.Usage = Usage{
				PromptTokens:     int(u.PromptTokenCount),
				CompletionTokens: int(u.CandidatesTokenCount),
				TotalTokens:      int(u.TotalTokenCount),
			}
		}
		return out, nil
	}
	return nil, &ServerError{APIError: &APIError{StatusCode: 503, Message: lastErr.Error()}}
}

// GenerateStream forwards each streamed text part to onDelta.
func (c *GeminiClient) GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error {
	cl, cs, last, err := c.session(ctx, req)
	if err != nil {
		return err
	}
	defer cl.Close()

	it := cs.SendMessageStream(ctx, last...)
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("gemini stream: %w", err)
		}
		if t := firstText(resp); t != "" {
			onDelta(t)
		}
	}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
