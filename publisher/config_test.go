package publisher

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "variables.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"platform": "Reddit",
		"about_herth": "Herth is a posting tool",
		"server_addr": ":9000",
		"llm": {"provider": "openrouter", "model": "openai/gpt-4o-mini"},
		"linkedin": {"client_id": "id", "client_secret": "secret", "redirect_uri": "http://cb"}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Platform != "Reddit" || cfg.AboutHerth != "Herth is a posting tool" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.LLM == nil || cfg.LLM.Model != "openai/gpt-4o-mini" {
		t.Errorf("llm config not loaded: %+v", cfg.LLM)
	}
	if cfg.LinkedIn == nil || cfg.LinkedIn.ClientID != "id" {
		t.Errorf("linkedin config not loaded: %+v", cfg.LinkedIn)
	}
}

func TestLoadConfigMissingKeysDefault(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("missing keys must not fail: %v", err)
	}
	if cfg.Platform != DefaultPlatform {
		t.Errorf("platform should default to %q, got %q", DefaultPlatform, cfg.Platform)
	}
	if cfg.AboutHerth != "" {
		t.Errorf("about should default to empty, got %q", cfg.AboutHerth)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Run("inline wins", func(t *testing.T) {
		cfg := Config{LLM: &LLMConfig{APIKey: "inline"}}
		if got := cfg.ResolveAPIKey(); got != "inline" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("named env var", func(t *testing.T) {
		t.Setenv("MY_LLM_KEY", "from-env")
		cfg := Config{LLM: &LLMConfig{APIKeyEnv: "MY_LLM_KEY"}}
		if got := cfg.ResolveAPIKey(); got != "from-env" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("provider default env", func(t *testing.T) {
		t.Setenv("OPENROUTER_API_KEY", "router-key")
		cfg := Config{LLM: &LLMConfig{Provider: "openrouter"}}
		if got := cfg.ResolveAPIKey(); got != "router-key" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("gemini env", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gem-key")
		cfg := Config{LLM: &LLMConfig{Provider: "gemini"}}
		if got := cfg.ResolveAPIKey(); got != "gem-key" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("no llm block", func(t *testing.T) {
		if got := (Config{}).ResolveAPIKey(); got != "" {
			t.Errorf("got %q", got)
		}
	})
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("LINKEDIN_ACCESS_TOKEN", "tok")
	t.Setenv("LINKEDIN_AUTHOR_URN", "urn:li:person:x")

	secrets, err := LoadSecrets()
	if err != nil {
		t.Fatal(err)
	}
	if secrets.LinkedInAccessToken != "tok" || secrets.LinkedInAuthorURN != "urn:li:person:x" {
		t.Errorf("unexpected secrets: %+v", secrets)
	}
}
