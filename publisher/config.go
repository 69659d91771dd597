package publisher

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
)

// DefaultPlatform is used when the config file names no platform.
const DefaultPlatform = "LinkedIn"

// Config is the static site configuration loaded once at startup
// (the variables.json of the frontend world). Missing optional keys fall
// back to defaults rather than failing the process.
type Config struct {
	Platform   string          `json:"platform,omitempty"`
	AboutHerth string          `json:"about_herth,omitempty"`
	ServerAddr string          `json:"server_addr,omitempty"`
	LLM        *LLMConfig      `json:"llm,omitempty"`
	LinkedIn   *LinkedInConfig `json:"linkedin,omitempty"`
}

// LLMConfig selects and configures the model backend. The API key may be
// given inline or named indirectly via api_key_env.
type LLMConfig struct {
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
}

// LinkedInConfig holds the OAuth application credentials.
type LinkedInConfig struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
}

// LoadConfig reads the JSON config from disk and applies defaults for
// absent keys.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Platform == "" {
		c.Platform = DefaultPlatform
	}
}

// ResolveAPIKey returns the model API key: the inline value, else the env
// var named by api_key_env, else the provider's conventional env var.
func (c Config) ResolveAPIKey() string {
	if c.LLM == nil {
		return ""
	}
	if c.LLM.APIKey != "" {
		return c.LLM.APIKey
	}
	if c.LLM.APIKeyEnv != "" {
		return os.Getenv(c.LLM.APIKeyEnv)
	}
	switch c.LLM.Provider {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENROUTER_API_KEY")
	}
}

// Secrets are the env-sourced credentials used when a request does not
// bring its own. Values here never end up in logs.
type Secrets struct {
	LinkedInClientID     string `envconfig:"LINKEDIN_CLIENT_ID"`
	LinkedInClientSecret string `envconfig:"LINKEDIN_CLIENT_SECRET"`
	LinkedInAccessToken  string `envconfig:"LINKEDIN_ACCESS_TOKEN"`
	LinkedInAuthorURN    string `envconfig:"LINKEDIN_AUTHOR_URN"`
}

// LoadSecrets reads the secrets from the environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return Secrets{}, fmt.Errorf("load secrets: %w", err)
	}
	return s, nil
}
