package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// GoogleUserInfoURL is Google's OpenID Connect userinfo endpoint.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

const oauthStateKeyPrefix = "oauth_state:"

var (
	ErrOAuthExchange = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "OAuth login failed")
	ErrOAuthState    = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Invalid or expired OAuth state")
)

// OAuthIdentity is the profile an OAuth provider vouches for.
type OAuthIdentity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// OAuthProvider runs the authorization code flow against one provider.
type OAuthProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewOAuthProvider creates a provider from an oauth2 config and the URL of
// its userinfo endpoint.
func NewOAuthProvider(config *oauth2.Config, userInfoURL string) *OAuthProvider {
	return &OAuthProvider{
		config:      config,
		userInfoURL: userInfoURL,
	}
}

// NewGoogleProvider creates the Google sign-in provider.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return NewOAuthProvider(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoints.Google,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
	}, GoogleUserInfoURL)
}

// AuthCodeURL returns the consent page URL carrying state.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Identify exchanges an authorization code and fetches the user's profile.
// A code the provider rejects is ErrOAuthExchange; transport failures are
// returned as plain errors.
func (p *OAuthProvider) Identify(ctx context.Context, code string) (*OAuthIdentity, error) {
	if code == "" {
		return nil, apierrors.Wrapf(ErrOAuthExchange, "Missing authorization code")
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			reason := retrieveErr.ErrorCode
			if reason == "" && retrieveErr.Response != nil {
				reason = fmt.Sprintf("status %d", retrieveErr.Response.StatusCode)
			}
			return nil, apierrors.Wrapf(ErrOAuthExchange, "OAuth error: %s", reason)
		}
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var identity OAuthIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if strings.TrimSpace(identity.Email) == "" {
		return nil, apierrors.Wrapf(ErrOAuthExchange, "OAuth provider returned no email")
	}

	return &identity, nil
}

// OAuthStateStore issues single-use state values for the authorization
// code flow. Each state lives in Redis until consumed or expired.
type OAuthStateStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewOAuthStateStore creates a state store whose values expire after ttl.
func NewOAuthStateStore(client redis.UniversalClient, ttl time.Duration) *OAuthStateStore {
	return &OAuthStateStore{client: client, ttl: ttl}
}

// Create records and returns a fresh state value.
func (s *OAuthStateStore) Create(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.client.Set(ctx, oauthStateKeyPrefix+state, "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return state, nil
}

// Consume deletes state and reports whether it was outstanding.
func (s *OAuthStateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	err := s.client.GetDel(ctx, oauthStateKeyPrefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume oauth state: %w", err)
	}
	return true, nil
}
