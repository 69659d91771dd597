package generator

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// DefaultPlatform is used when neither the request nor the configuration
// names one.
const DefaultPlatform = "LinkedIn"

// Pipeline runs the two-step generation: polish the user's casual prompt,
// then produce the final post from the polished prompt. It holds only
// read-only configuration, so concurrent Generate calls are independent.
type Pipeline struct {
	llm             LLMClient
	defaultPlatform string
	about           string
}

// NewPipeline wires the pipeline to a model client and the static site
// configuration (default platform name, subject description).
func NewPipeline(llm LLMClient, defaultPlatform, about string) (*Pipeline, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if defaultPlatform == "" {
		defaultPlatform = DefaultPlatform
	}
	return &Pipeline{llm: llm, defaultPlatform: defaultPlatform, about: about}, nil
}

// Generate runs polish then final generation. Malformed model output never
// fails the pipeline: extraction and coercion degrade to usable defaults.
// The only error that escapes is the adapter exhausting every call shape.
func (p *Pipeline) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	if req.Prompt == "" {
		return GenerationResult{}, errors.New("prompt is required")
	}

	platform := p.resolvePlatform(req.Platforms)
	state := pipelineState{prompt: req.Prompt, imageURLs: req.ImageURLs}

	// Step one: polish.
	polishPrompt := buildPolishPrompt(p.about, platform, req.Tone, req.Audience, state.prompt)
	raw, err := p.llm.Complete(ctx, polishPrompt)
	if err != nil {
		return GenerationResult{}, err
	}
	value, _ := extractJSON(raw)
	polish := coercePolish(value, state.prompt, raw)
	state.prompt = polish.PolishedPrompt
	log.Debug().Str("platform", platform).Int("polishedChars", len(state.prompt)).Msg("Polish step complete")

	// Step two: final generation from the polished prompt.
	finalPrompt := buildFinalPrompt(platform, state.prompt)
	raw, err = p.llm.Complete(ctx, finalPrompt)
	if err != nil {
		return GenerationResult{}, err
	}
	value, _ = extractJSON(raw)
	final := coerceFinal(value, raw, state.prompt)
	log.Debug().Str("title", final.PostTitle).Int("hashtags", len(final.PostHashtags)).Msg("Final generation complete")

	return GenerationResult{
		Success:        true,
		Platform:       platform,
		PolishedPrompt: state.prompt,
		PostTitle:      final.PostTitle,
		PostText:       final.PostText,
		PostHashtags:   final.PostHashtags,
	}, nil
}

// resolvePlatform picks the first requested platform, else the configured
// default. Later entries are ignored; multi-platform fan-out is not a thing
// yet.
func (p *Pipeline) resolvePlatform(platforms []string) string {
	for _, platform := range platforms {
		if platform != "" {
			return platform
		}
	}
	return p.defaultPlatform
}
