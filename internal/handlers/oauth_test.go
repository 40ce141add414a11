package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-rbac-api/internal/dto"
	"github.com/yukikurage/workspace-rbac-api/internal/logging"
	"github.com/yukikurage/workspace-rbac-api/internal/testutil"
)

// startGoogleLogin follows the redirect of GET /auth/google and returns the
// state parameter handed to the provider.
func (suite *APITestSuite) startGoogleLogin() string {
	w := suite.do(http.MethodGet, "/api/auth/google", "", nil)
	suite.Require().Equal(http.StatusFound, w.Code, w.Body.String())

	location, err := url.Parse(w.Header().Get("Location"))
	suite.Require().NoError(err)
	suite.Equal(suite.oauth.URL+"/auth", location.Scheme+"://"+location.Host+location.Path)
	suite.Equal("offline", location.Query().Get("access_type"))

	state := location.Query().Get("state")
	suite.Require().NotEmpty(state)
	return state
}

func (suite *APITestSuite) googleCallback(query url.Values) *httptest.ResponseRecorder {
	return suite.do(http.MethodGet, "/api/auth/google/callback?"+query.Encode(), "", nil)
}

func (suite *APITestSuite) TestGoogleLogin() {
	state := suite.startGoogleLogin()

	w := suite.googleCallback(url.Values{"code": {testutil.OAuthCode}, "state": {state}})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var response dto.TokenResponse
	suite.decode(w, &response)
	suite.Equal("bearer", response.TokenType)
	suite.Equal("oauth@example.com", response.User.Email)
	suite.Equal("OAuth User", response.User.Name)
	suite.NotNil(response.User.LastLogin)

	me := suite.do(http.MethodGet, "/api/auth/me", response.AccessToken, nil)
	suite.Equal(http.StatusOK, me.Code)

	// The issued token is tracked like any other and can be revoked
	suite.Equal(http.StatusOK, suite.do(http.MethodPost, "/api/auth/logout", response.AccessToken, nil).Code)
	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodGet, "/api/auth/me", response.AccessToken, nil).Code)

	// A second sign-in reuses the account
	w = suite.googleCallback(url.Values{"code": {testutil.OAuthCode}, "state": {suite.startGoogleLogin()}})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var again dto.TokenResponse
	suite.decode(w, &again)
	suite.Equal(response.User.ID, again.User.ID)
}

func (suite *APITestSuite) TestGoogleCallback_State() {
	state := suite.startGoogleLogin()

	w := suite.googleCallback(url.Values{"code": {testutil.OAuthCode}})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.googleCallback(url.Values{"code": {testutil.OAuthCode}, "state": {"forged"}})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Invalid or expired OAuth state")

	suite.Require().Equal(http.StatusOK, suite.googleCallback(url.Values{"code": {testutil.OAuthCode}, "state": {state}}).Code)

	// Replaying a completed callback is rejected
	w = suite.googleCallback(url.Values{"code": {testutil.OAuthCode}, "state": {state}})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestGoogleCallback_ProviderErrors() {
	w := suite.googleCallback(url.Values{"error": {"access_denied"}})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "access_denied")

	w = suite.googleCallback(url.Values{"state": {suite.startGoogleLogin()}})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.googleCallback(url.Values{"code": {"stale-code"}, "state": {suite.startGoogleLogin()}})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "invalid_grant")

	suite.oauth.Profile = map[string]interface{}{"email": "unverified@example.com", "email_verified": false}
	w = suite.googleCallback(url.Values{"code": {testutil.OAuthCode}, "state": {suite.startGoogleLogin()}})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "not verified")
}

func (suite *APITestSuite) TestGoogleCallback_InactiveUser() {
	user := suite.createUser("oauth@example.com")
	suite.Require().NoError(suite.db.Model(user).Update("is_active", false).Error)

	w := suite.googleCallback(url.Values{"code": {testutil.OAuthCode}, "state": {suite.startGoogleLogin()}})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *APITestSuite) TestGoogleLogin_NotConfigured() {
	handler := NewOAuthHandler(nil, nil, suite.authService, logging.Discard())
	router := gin.New()
	router.GET("/google", handler.GoogleLogin)
	router.GET("/google/callback", handler.GoogleCallback)

	for _, path := range []string{"/google", "/google/callback?code=x&state=y"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		suite.Equal(http.StatusServiceUnavailable, w.Code, path)
		suite.Contains(w.Body.String(), "Google OAuth2 not configured")
	}
}
