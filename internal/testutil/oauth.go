package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yukikurage/workspace-rbac-api/internal/auth"
	"golang.org/x/oauth2"
)

// OAuthCode is the only authorization code the fake provider accepts.
const OAuthCode = "good-code"

// FakeOAuthProvider is an authorization server that vouches for Profile.
type FakeOAuthProvider struct {
	Provider *auth.OAuthProvider
	Profile  map[string]interface{}
	URL      string
}

// NewOAuthProvider starts a fake token and userinfo endpoint pair.
func NewOAuthProvider(t *testing.T, profile map[string]interface{}) *FakeOAuthProvider {
	t.Helper()
	fake := &FakeOAuthProvider{Profile: profile}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != OAuthCode {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(fake.Profile)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	fake.URL = server.URL
	fake.Provider = auth.NewOAuthProvider(&oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   server.URL + "/auth",
			TokenURL:  server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: "http://localhost/api/auth/google/callback",
		Scopes:      []string{"openid", "email", "profile"},
	}, server.URL+"/userinfo")
	return fake
}
