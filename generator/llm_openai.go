package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/tidwall/gjson"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// envelopePaths is the ordered list of places a completion text may live in
// a backend response body. Different backend versions and proxies nest the
// text differently; the first non-empty hit wins.
var envelopePaths = []string{
	"choices.0.message.content",
	"choices.0.text",
	"output_text",
	"output.0.content.0.text",
	"candidates.0.content.parts.0.text",
	"content.0.text",
}

// NewOpenRouterLLM builds the call-shape adapter for an OpenAI-compatible
// backend (OpenRouter, OpenAI, or any gateway speaking the same dialect).
// Shapes are attempted in order: chat completions, the responses API,
// legacy completions, then a raw HTTP POST whose response envelope is
// scanned path by path.
func NewOpenRouterLLM(cfg *LLMSettings) (*Adapter, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("api key missing; provide llm.api_key or the provider's key env var")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	o := &openRouterLLM{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts: []option.RequestOption{
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(baseURL),
		},
	}

	return newAdapter(cfg.Provider, []callShape{
		{name: "chat_completions", invoke: o.chatCompletions},
		{name: "responses", invoke: o.responsesAPI},
		{name: "legacy_completions", invoke: o.legacyCompletions},
		{name: "raw_http", invoke: o.rawHTTP},
	}), nil
}

type openRouterLLM struct {
	model   string
	apiKey  string
	baseURL string
	opts    []option.RequestOption
}

func (o *openRouterLLM) chatCompletions(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(o.opts...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		return resp.Choices[0].Message.Content, nil
	}
	// Some gateways return a well-formed call with the text nested
	// elsewhere; fall back to the envelope scan before giving up.
	if text, ok := scanEnvelope(resp.RawJSON()); ok {
		return text, nil
	}
	return "", errors.New("chat completion held no message content")
}

func (o *openRouterLLM) responsesAPI(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(o.opts...)
	resp, err := client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(o.model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
	})
	if err != nil {
		return "", err
	}
	if text := resp.OutputText(); text != "" {
		return text, nil
	}
	if text, ok := scanEnvelope(resp.RawJSON()); ok {
		return text, nil
	}
	return "", errors.New("response held no output text")
}

func (o *openRouterLLM) legacyCompletions(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(o.opts...)
	resp, err := client.Completions.New(ctx, openai.CompletionNewParams{
		Model:  openai.CompletionNewParamsModel(o.model),
		Prompt: openai.CompletionNewParamsPromptUnion{OfString: openai.String(prompt)},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) > 0 && resp.Choices[0].Text != "" {
		return resp.Choices[0].Text, nil
	}
	return "", errors.New("completion held no choices")
}

// rawHTTP posts the chat-completions payload directly and scans whatever
// comes back. This is the last resort for backends the SDK cannot talk to.
func (o *openRouterLLM) rawHTTP(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"model":    o.model,
		"messages": []map[string]string{{"role": "user", "content": prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("backend returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if text, ok := scanEnvelope(string(body)); ok {
		return text, nil
	}
	return "", fmt.Errorf("no completion text found in response: %s", truncate(string(body), 200))
}

// scanEnvelope walks the known envelope paths over a raw response body and
// returns the first non-empty text it finds.
func scanEnvelope(body string) (string, bool) {
	if !gjson.Valid(body) {
		return "", false
	}
	for _, path := range envelopePaths {
		if v := gjson.Get(body, path); v.Exists() && strings.TrimSpace(v.String()) != "" {
			return v.String(), true
		}
	}
	return "", false
}

// truncate returns the first n bytes of s, appending "..." when cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
