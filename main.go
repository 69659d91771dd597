package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"herth_post_generator/generator"
	"herth_post_generator/publisher"
	"herth_post_generator/server"
)

func main() {
	configPath := flag.String("config", "config/variables.json", "path to variables.json")
	serve := flag.Bool("serve", false, "start the web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	prompt := flag.String("prompt", "", "one-shot: generate a post for this prompt and print JSON")
	platform := flag.String("platform", "", "one-shot: target platform (default from config)")
	tone := flag.String("tone", "", "one-shot: desired tone")
	audience := flag.String("audience", "", "one-shot: target audience")
	publish := flag.Bool("publish", false, "one-shot: publish the generated post to LinkedIn")
	mock := flag.Bool("mock", false, "use the canned mock model instead of a real backend")
	verbose := flag.Bool("v", false, "enable debug logs")
	flag.Parse()

	// .env is optional for local dev, same as the frontend expects.
	_ = godotenv.Load()
	initLogging(*verbose)

	cfg, err := publisher.LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}

	llm, err := buildLLM(cfg, *mock)
	if err != nil {
		fatal(err)
	}
	pipeline, err := generator.NewPipeline(llm, cfg.Platform, cfg.AboutHerth)
	if err != nil {
		fatal(err)
	}
	secrets, err := publisher.LoadSecrets()
	if err != nil {
		fatal(err)
	}
	linkedin := publisher.NewLinkedIn(mergeLinkedInConfig(cfg.LinkedIn, secrets), nil)

	if *serve {
		srv, err := server.New(pipeline, linkedin, secrets)
		if err != nil {
			fatal(err)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8000"
		}
		log.Info().Str("addr", listen).Msg("Starting web server")
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fatal(err)
		}
		return
	}

	if *prompt == "" {
		fmt.Fprintln(os.Stderr, "provide --prompt for a one-shot generation or --serve for web mode")
		os.Exit(1)
	}

	req := generator.GenerationRequest{
		Prompt:   *prompt,
		Tone:     *tone,
		Audience: *audience,
	}
	if *platform != "" {
		req.Platforms = []string{*platform}
	}

	ctx := context.Background()
	result, err := pipeline.Generate(ctx, req)
	if err != nil {
		fatal(err)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if *publish {
		if secrets.LinkedInAccessToken == "" || secrets.LinkedInAuthorURN == "" {
			fatal(fmt.Errorf("publishing requires LINKEDIN_ACCESS_TOKEN and LINKEDIN_AUTHOR_URN"))
		}
		pub, err := linkedin.CreatePost(ctx, secrets.LinkedInAccessToken, secrets.LinkedInAuthorURN, result.PostText)
		if err != nil {
			fatal(err)
		}
		if pub.StatusCode >= 300 {
			fatal(fmt.Errorf("publish failed (status %d): %s", pub.StatusCode, pub.Body))
		}
		log.Info().Str("postId", pub.PostID).Msg("Post published")
	}
}

func initLogging(verbose bool) {
	switch {
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		switch os.Getenv("HERTH_LOG_LEVEL") {
		case "debug":
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		case "warn":
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		case "error":
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		default:
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// buildLLM selects the model backend from config. The API key must resolve
// for the chosen provider; generation cannot silently run unauthenticated.
func buildLLM(cfg publisher.Config, mock bool) (generator.LLMClient, error) {
	if mock {
		return generator.MockLLM{}, nil
	}
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; set llm.provider and llm.model in the config file")
	}

	settings := &generator.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.ResolveAPIKey(),
		BaseURL:  cfg.LLM.BaseURL,
	}

	switch strings.ToLower(cfg.LLM.Provider) {
	case "openrouter", "openai":
		return generator.NewOpenRouterLLM(settings)
	case "gemini":
		return generator.NewGeminiLLM(context.Background(), settings)
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

// mergeLinkedInConfig lets env secrets stand in for app credentials absent
// from the config file.
func mergeLinkedInConfig(cfg *publisher.LinkedInConfig, secrets publisher.Secrets) *publisher.LinkedInConfig {
	merged := publisher.LinkedInConfig{}
	if cfg != nil {
		merged = *cfg
	}
	if merged.ClientID == "" {
		merged.ClientID = secrets.LinkedInClientID
	}
	if merged.ClientSecret == "" {
		merged.ClientSecret = secrets.LinkedInClientSecret
	}
	return &merged
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
