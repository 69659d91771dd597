package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"

	"herth_post_generator/generator"
	"herth_post_generator/publisher"
)

const requestTimeout = 120 * time.Second

// allowedOrigins are the frontend dev servers permitted by CORS.
var allowedOrigins = map[string]bool{
	"http://localhost:3000": true,
	"http://localhost:5173": true,
	"http://127.0.0.1:3000": true,
}

// Server exposes the generation pipeline and the LinkedIn auth/publish
// passthrough over HTTP.
type Server struct {
	pipeline *generator.Pipeline
	linkedin *publisher.LinkedIn
	secrets  publisher.Secrets
}

func New(pipeline *generator.Pipeline, linkedin *publisher.LinkedIn, secrets publisher.Secrets) (*Server, error) {
	if pipeline == nil {
		return nil, errors.New("generation pipeline required")
	}
	if linkedin == nil {
		linkedin = publisher.NewLinkedIn(nil, nil)
	}
	return &Server{pipeline: pipeline, linkedin: linkedin, secrets: secrets}, nil
}

// Routes builds the router with logging and CORS applied to every route.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Post("/api/generate", s.handleGenerate)
	r.Get("/api/auth/linkedin/url", s.handleAuthURL)
	r.Post("/api/auth/linkedin/callback", s.handleAuthCallback)
	r.Post("/api/linkedin_post", s.handleLinkedInPost)

	return r
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type generateReq struct {
	Prompt    string   `json:"prompt"`
	Tone      string   `json:"tone,omitempty"`
	Audience  string   `json:"audience,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

type generateResp struct {
	Success        bool     `json:"success"`
	Platform       string   `json:"platform,omitempty"`
	PolishedPrompt string   `json:"polished_prompt,omitempty"`
	PostTitle      string   `json:"post_title,omitempty"`
	PostText       string   `json:"post_text,omitempty"`
	PostHashtags   []string `json:"post_hashtags,omitempty"`
	PostHTML       string   `json:"post_html,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.pipeline.Generate(ctx, generator.GenerationRequest{
		Prompt:    req.Prompt,
		Tone:      req.Tone,
		Audience:  req.Audience,
		Platforms: req.Platforms,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		// Log the full failure (including the adapter's per-shape detail)
		// server-side; the client only gets a generic message.
		log.Error().Err(err).Msg("Generation failed")
		writeError(w, http.StatusInternalServerError, "Generation failed. Check server logs.")
		return
	}

	writeJSON(w, http.StatusOK, generateResp{
		Success:        result.Success,
		Platform:       result.Platform,
		PolishedPrompt: result.PolishedPrompt,
		PostTitle:      result.PostTitle,
		PostText:       result.PostText,
		PostHashtags:   result.PostHashtags,
		PostHTML:       renderHTML(result.PostText),
	})
}

func (s *Server) handleAuthURL(w http.ResponseWriter, _ *http.Request) {
	state := uuid.NewString()
	authURL, err := s.linkedin.AuthURL(state)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": authURL, "state": state})
}

type callbackReq struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

type callbackResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	AuthorURN   string `json:"author_urn"`
	Name        string `json:"name,omitempty"`
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	var req callbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	token, err := s.linkedin.ExchangeCode(r.Context(), req.Code, req.RedirectURI)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	profile, err := s.linkedin.UserInfo(r.Context(), token.AccessToken)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, callbackResp{
		AccessToken: token.AccessToken,
		ExpiresIn:   token.ExpiresIn,
		AuthorURN:   "urn:li:person:" + profile.Sub,
		Name:        profile.Name,
	})
}

type linkedInPostReq struct {
	PostText    string `json:"post_text"`
	AccessToken string `json:"access_token,omitempty"`
	AuthorURN   string `json:"author_urn,omitempty"`
}

func (s *Server) handleLinkedInPost(w http.ResponseWriter, r *http.Request) {
	var req linkedInPostReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PostText == "" {
		writeError(w, http.StatusBadRequest, "post_text is required")
		return
	}

	token := req.AccessToken
	if token == "" {
		token = s.secrets.LinkedInAccessToken
	}
	author := req.AuthorURN
	if author == "" {
		author = s.secrets.LinkedInAuthorURN
	}
	if token == "" || author == "" {
		writeError(w, http.StatusBadRequest, "access token and author urn are required (request body or LINKEDIN_ACCESS_TOKEN/LINKEDIN_AUTHOR_URN)")
		return
	}

	result, err := s.linkedin.CreatePost(r.Context(), token, author, req.PostText)
	if err != nil {
		log.Error().Err(err).Msg("LinkedIn publish failed")
		writeError(w, http.StatusBadGateway, "publish request failed")
		return
	}

	// Pass the upstream status and body through unchanged so the caller
	// can see exactly what LinkedIn said.
	writeJSON(w, result.StatusCode, map[string]any{
		"status":  result.StatusCode,
		"post_id": result.PostID,
		"body":    string(result.Body),
	})
}

// --- Helpers ---

// renderHTML converts the generated markdown body to HTML for frontend
// preview. A render failure just yields an empty preview.
func renderHTML(markdown string) string {
	if markdown == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		log.Warn().Err(err).Msg("Markdown preview render failed")
		return ""
	}
	return buf.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeUpstreamError passes a LinkedIn upstream failure through with its
// original status and body; anything else becomes a generic 502.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var upstream *publisher.UpstreamError
	if errors.As(err, &upstream) {
		writeJSON(w, upstream.Status, map[string]any{
			"detail": "linkedin " + upstream.Op + " failed",
			"body":   string(upstream.Body),
		})
		return
	}
	log.Error().Err(err).Msg("LinkedIn request failed")
	writeError(w, http.StatusBadGateway, err.Error())
}

// --- Middleware ---

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
