package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultAuthBase = "https://www.linkedin.com"
	defaultAPIBase  = "https://api.linkedin.com"

	authorizePath   = "/oauth/v2/authorization"
	accessTokenPath = "/oauth/v2/accessToken"
	userInfoPath    = "/v2/userinfo"
	ugcPostsPath    = "/v2/ugcPosts"

	// oauthScopes covers profile lookup and member post creation.
	oauthScopes = "openid profile w_member_social"

	defaultTimeout = 30 * time.Second
)

// LinkedIn is the publishing client: OAuth exchange, profile lookup, and
// post creation against the LinkedIn REST API.
type LinkedIn struct {
	cfg      LinkedInConfig
	client   *http.Client
	authBase string
	apiBase  string
}

// NewLinkedIn creates the client. App credentials may be empty when the
// caller only publishes with a ready-made token; the OAuth methods check
// for them and fail loudly.
func NewLinkedIn(cfg *LinkedInConfig, client *http.Client) *LinkedIn {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	l := &LinkedIn{client: client, authBase: defaultAuthBase, apiBase: defaultAPIBase}
	if cfg != nil {
		l.cfg = *cfg
	}
	return l
}

// AuthURL builds the member authorization URL for the given CSRF state.
func (l *LinkedIn) AuthURL(state string) (string, error) {
	if l.cfg.ClientID == "" || l.cfg.RedirectURI == "" {
		return "", errors.New("linkedin client_id and redirect_uri are required for the auth flow")
	}
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {l.cfg.ClientID},
		"redirect_uri":  {l.cfg.RedirectURI},
		"scope":         {oauthScopes},
		"state":         {state},
	}
	return l.authBase + authorizePath + "?" + q.Encode(), nil
}

// TokenResult holds the access token returned by the code exchange.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeCode exchanges an authorization code for an access token.
// Upstream failures carry the upstream status and body so the caller can
// fix credentials.
func (l *LinkedIn) ExchangeCode(ctx context.Context, code, redirectURI string) (TokenResult, error) {
	if l.cfg.ClientID == "" || l.cfg.ClientSecret == "" {
		return TokenResult{}, errors.New("linkedin client_id and client_secret are required for the token exchange")
	}
	if redirectURI == "" {
		redirectURI = l.cfg.RedirectURI
	}

	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {l.cfg.ClientID},
		"client_secret": {l.cfg.ClientSecret},
		"redirect_uri":  {redirectURI},
	}

	log.Debug().Str("redirectUri", redirectURI).Msg("Exchanging authorization code for access token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		l.authBase+accessTokenPath, strings.NewReader(params.Encode()))
	if err != nil {
		return TokenResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := l.client.Do(req)
	if err != nil {
		return TokenResult{}, fmt.Errorf("token exchange request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenResult{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return TokenResult{}, &UpstreamError{Status: resp.StatusCode, Body: body, Op: "token exchange"}
	}

	var result TokenResult
	if err := json.Unmarshal(body, &result); err != nil {
		return TokenResult{}, fmt.Errorf("parse response: %w", err)
	}
	if result.AccessToken == "" {
		return TokenResult{}, fmt.Errorf("no access token in response: %s", truncate(string(body), 300))
	}

	log.Info().Int64("expiresIn", result.ExpiresIn).Msg("LinkedIn access token obtained")
	return result, nil
}

// Profile is the subset of the OpenID userinfo payload the publisher needs.
type Profile struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
}

// UserInfo looks up the authenticated member's id and display name.
func (l *LinkedIn) UserInfo(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.apiBase+userInfoPath, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := l.client.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Profile{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Profile{}, &UpstreamError{Status: resp.StatusCode, Body: body, Op: "userinfo"}
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse response: %w", err)
	}
	if profile.Sub == "" {
		return Profile{}, fmt.Errorf("no member id in response: %s", truncate(string(body), 300))
	}

	log.Debug().Str("member", profile.Sub).Msg("LinkedIn profile resolved")
	return profile, nil
}

// PublishResult carries the upstream status and body verbatim; the HTTP
// facade passes both through to its caller.
type PublishResult struct {
	StatusCode int
	Body       []byte
	PostID     string
}

// ugcPostPayload is the fixed share shape LinkedIn expects for a text post.
type ugcPostPayload struct {
	Author          string            `json:"author"`
	LifecycleState  string            `json:"lifecycleState"`
	SpecificContent map[string]any    `json:"specificContent"`
	Visibility      map[string]string `json:"visibility"`
}

// CreatePost publishes one text post as the given author. Only transport
// failures return an error; a non-2xx upstream status is reported inside
// PublishResult so the caller can surface it unchanged.
func (l *LinkedIn) CreatePost(ctx context.Context, accessToken, authorURN, text string) (PublishResult, error) {
	if accessToken == "" {
		return PublishResult{}, errors.New("access token is required")
	}
	if authorURN == "" {
		return PublishResult{}, errors.New("author urn is required")
	}
	if !strings.HasPrefix(authorURN, "urn:") {
		authorURN = "urn:li:person:" + authorURN
	}

	payload := ugcPostPayload{
		Author:         authorURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]string{"text": text},
				"shareMediaCategory": "NONE",
			},
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return PublishResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.apiBase+ugcPostsPath, bytes.NewReader(body))
	if err != nil {
		return PublishResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	log.Debug().Str("author", authorURN).Int("chars", len(text)).Msg("Publishing LinkedIn post")

	resp, err := l.client.Do(req)
	if err != nil {
		return PublishResult{}, fmt.Errorf("publish request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return PublishResult{}, fmt.Errorf("read response: %w", err)
	}

	result := PublishResult{StatusCode: resp.StatusCode, Body: respBody}
	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		var created struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(respBody, &created) == nil {
			result.PostID = created.ID
		}
		log.Info().Str("postId", result.PostID).Msg("LinkedIn post created")
	} else {
		log.Warn().Int("status", resp.StatusCode).Str("body", truncate(string(respBody), 300)).Msg("LinkedIn publish failed")
	}
	return result, nil
}

// UpstreamError reports a non-success response from LinkedIn with its
// status and body intact.
type UpstreamError struct {
	Status int
	Body   []byte
	Op     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("linkedin %s failed (status %d): %s", e.Op, e.Status, truncate(string(e.Body), 300))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
