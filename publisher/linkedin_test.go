package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// newTestLinkedIn points a client at a test HTTP server.
func newTestLinkedIn(server *httptest.Server, cfg LinkedInConfig) *LinkedIn {
	return &LinkedIn{
		cfg:      cfg,
		client:   server.Client(),
		authBase: server.URL,
		apiBase:  server.URL,
	}
}

func TestAuthURL(t *testing.T) {
	l := NewLinkedIn(&LinkedInConfig{
		ClientID:    "client-1",
		RedirectURI: "http://localhost:3000/callback",
	}, nil)

	raw, err := l.AuthURL("state-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("client_id") != "client-1" || q.Get("state") != "state-123" {
		t.Errorf("unexpected query: %s", u.RawQuery)
	}
	if q.Get("response_type") != "code" {
		t.Errorf("expected response_type=code, got %q", q.Get("response_type"))
	}
	if !strings.Contains(q.Get("scope"), "w_member_social") {
		t.Errorf("scope must include w_member_social: %q", q.Get("scope"))
	}
}

func TestAuthURLRequiresCredentials(t *testing.T) {
	l := NewLinkedIn(nil, nil)
	if _, err := l.AuthURL("s"); err == nil {
		t.Fatal("expected an error without client_id")
	}
}

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/oauth/v2/accessToken") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		r.ParseForm()
		if r.Form.Get("grant_type") != "authorization_code" {
			t.Errorf("unexpected grant_type: %s", r.Form.Get("grant_type"))
		}
		if r.Form.Get("code") != "auth-code" {
			t.Errorf("unexpected code: %s", r.Form.Get("code"))
		}
		json.NewEncoder(w).Encode(TokenResult{AccessToken: "tok-1", ExpiresIn: 5184000})
	}))
	defer server.Close()

	l := newTestLinkedIn(server, LinkedInConfig{ClientID: "id", ClientSecret: "secret", RedirectURI: "http://cb"})
	token, err := l.ExchangeCode(context.Background(), "auth-code", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.AccessToken != "tok-1" || token.ExpiresIn != 5184000 {
		t.Errorf("unexpected token: %+v", token)
	}
}

func TestExchangeCodeUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer server.Close()

	l := newTestLinkedIn(server, LinkedInConfig{ClientID: "id", ClientSecret: "bad"})
	_, err := l.ExchangeCode(context.Background(), "code", "http://cb")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusUnauthorized {
		t.Errorf("upstream status not preserved: %d", upstream.Status)
	}
	if !strings.Contains(string(upstream.Body), "invalid_client") {
		t.Errorf("upstream body not preserved: %s", upstream.Body)
	}
}

func TestUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("missing bearer token: %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(Profile{Sub: "abc123", Name: "Test Member"})
	}))
	defer server.Close()

	l := newTestLinkedIn(server, LinkedInConfig{})
	profile, err := l.UserInfo(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Sub != "abc123" || profile.Name != "Test Member" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestCreatePost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v2/ugcPosts") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Restli-Protocol-Version") != "2.0.0" {
			t.Error("missing restli protocol header")
		}

		var payload ugcPostPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatal(err)
		}
		if payload.Author != "urn:li:person:abc123" {
			t.Errorf("bare member ids must gain the urn prefix: %s", payload.Author)
		}
		if payload.LifecycleState != "PUBLISHED" {
			t.Errorf("unexpected lifecycle state: %s", payload.LifecycleState)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:42"})
	}))
	defer server.Close()

	l := newTestLinkedIn(server, LinkedInConfig{})
	result, err := l.CreatePost(context.Background(), "tok-1", "abc123", "Hello network")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StatusCode != http.StatusCreated || result.PostID != "urn:li:share:42" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestCreatePostPassesUpstreamStatusThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer server.Close()

	l := newTestLinkedIn(server, LinkedInConfig{})
	result, err := l.CreatePost(context.Background(), "stale", "urn:li:person:x", "text")
	if err != nil {
		t.Fatalf("a non-2xx upstream status is not a transport error: %v", err)
	}
	if result.StatusCode != http.StatusForbidden {
		t.Errorf("upstream status not preserved: %d", result.StatusCode)
	}
	if !strings.Contains(string(result.Body), "token expired") {
		t.Errorf("upstream body not preserved: %s", result.Body)
	}
}

func TestCreatePostRequiresCredentials(t *testing.T) {
	l := NewLinkedIn(nil, nil)
	if _, err := l.CreatePost(context.Background(), "", "author", "text"); err == nil {
		t.Error("expected an error without a token")
	}
	if _, err := l.CreatePost(context.Background(), "tok", "", "text"); err == nil {
		t.Error("expected an error without an author")
	}
}
