package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// NewGeminiLLM builds the call-shape adapter for the Gemini backend. The
// SDK's surface differs between the one-shot generate-content call and the
// chat-session flow, so both are attempted, in that order.
func NewGeminiLLM(ctx context.Context, cfg *LLMSettings) (*Adapter, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("api key missing; provide llm.api_key or GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	g := &geminiLLM{client: client, model: cfg.Model}
	return newAdapter(cfg.Provider, []callShape{
		{name: "generate_content", invoke: g.generateContent},
		{name: "chat_session", invoke: g.chatSession},
	}), nil
}

type geminiLLM struct {
	client *genai.Client
	model  string
}

func (g *geminiLLM) generateConfig() *genai.GenerateContentConfig {
	temperature := float32(0.2)
	return &genai.GenerateContentConfig{Temperature: &temperature}
}

func (g *geminiLLM) generateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.generateConfig())
	if err != nil {
		return "", err
	}
	return textFromCandidates(resp)
}

func (g *geminiLLM) chatSession(ctx context.Context, prompt string) (string, error) {
	chat, err := g.client.Chats.Create(ctx, g.model, g.generateConfig(), nil)
	if err != nil {
		return "", err
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", err
	}
	if text := resp.Text(); text != "" {
		return text, nil
	}
	return textFromCandidates(resp)
}

// textFromCandidates walks the candidate/part structure and concatenates
// every text part of the first candidate.
func textFromCandidates(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini response held no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini candidate held no content (finish reason %s)", candidate.FinishReason)
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini candidate held no text parts")
	}
	return sb.String(), nil
}
