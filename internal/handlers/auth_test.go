package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/yukikurage/workspace-rbac-api/internal/dto"
)

func (suite *APITestSuite) TestRegister() {
	w := suite.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "newuser@example.com",
		"password": "supersecret",
		"name":     "New User",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var response dto.TokenResponse
	suite.decode(w, &response)
	suite.NotEmpty(response.AccessToken)
	suite.Equal("bearer", response.TokenType)
	suite.Equal("newuser@example.com", response.User.Email)
	suite.Equal("New User", response.User.Name)

	me := suite.do(http.MethodGet, "/api/auth/me", response.AccessToken, nil)
	suite.Equal(http.StatusOK, me.Code)

	// Older clients read the same profile from /auth/users/me
	legacy := suite.do(http.MethodGet, "/api/auth/users/me", response.AccessToken, nil)
	suite.Require().Equal(http.StatusOK, legacy.Code)
	var user dto.UserDTO
	suite.decode(legacy, &user)
	suite.Equal("newuser@example.com", user.Email)

	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodGet, "/api/auth/users/me", "", nil).Code)
}

func (suite *APITestSuite) TestRegister_Errors() {
	body := map[string]string{"email": "dup@example.com", "password": "supersecret"}
	suite.Require().Equal(http.StatusCreated, suite.do(http.MethodPost, "/api/auth/register", "", body).Code)

	w := suite.do(http.MethodPost, "/api/auth/register", "", body)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "short@example.com", "password": "short"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "at least 8 characters")

	w = suite.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "long@example.com", "password": strings.Repeat("x", 73)})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "at most 72 bytes")

	w = suite.do(http.MethodPost, "/api/auth/register", "", "{not json")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestLogin() {
	w := suite.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "existing@example.com", "password": "supersecret"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "existing@example.com", "password": "supersecret"})
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TokenResponse
	suite.decode(w, &response)
	suite.NotEmpty(response.AccessToken)
	suite.NotNil(response.User.LastLogin)
}

func (suite *APITestSuite) TestLogin_FormUsername() {
	w := suite.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "form@example.com", "password": "supersecret"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	form := url.Values{"username": {"form@example.com"}, "password": {"supersecret"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (suite *APITestSuite) TestLogin_UniformFailure() {
	w := suite.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "existing@example.com", "password": "supersecret"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	wrongPassword := suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "existing@example.com", "password": "incorrect"})
	unknownEmail := suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "missing@example.com", "password": "supersecret"})

	suite.Equal(http.StatusUnauthorized, wrongPassword.Code)
	suite.Equal(http.StatusUnauthorized, unknownEmail.Code)
	suite.Equal(wrongPassword.Body.String(), unknownEmail.Body.String())
	suite.Equal("Bearer", wrongPassword.Header().Get("WWW-Authenticate"))
}

func (suite *APITestSuite) TestLogout_RevokesOnlyThatToken() {
	user := suite.createUser("logout@example.com")
	first := suite.tokenFor(user)
	second := suite.tokenFor(user)

	w := suite.do(http.MethodPost, "/api/auth/logout", first, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodGet, "/api/auth/me", first, nil).Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/api/auth/me", second, nil).Code)

	// Logging out again is idempotent
	suite.Equal(http.StatusOK, suite.do(http.MethodPost, "/api/auth/logout", first, nil).Code)

	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodPost, "/api/auth/logout", "", nil).Code)
	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodPost, "/api/auth/logout", "garbage", nil).Code)
}

func (suite *APITestSuite) TestLogoutAll() {
	user := suite.createUser("everywhere@example.com")
	first := suite.tokenFor(user)
	second := suite.tokenFor(user)

	w := suite.do(http.MethodPost, "/api/auth/logout-all", first, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Revoked int `json:"revoked"`
	}
	suite.decode(w, &response)
	suite.Equal(2, response.Revoked)

	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodGet, "/api/auth/me", second, nil).Code)
}

func (suite *APITestSuite) TestGetCurrentUser_RequiresToken() {
	w := suite.do(http.MethodGet, "/api/auth/me", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("Bearer", w.Header().Get("WWW-Authenticate"))
}

func (suite *APITestSuite) TestStoreOutageRejectsRequests() {
	user := suite.createUser("outage@example.com")
	token := suite.tokenFor(user)

	suite.redis.Close()

	w := suite.do(http.MethodGet, "/api/auth/me", token, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestUpdateCurrentUser() {
	user := suite.createUser("profile@example.com")
	token := suite.tokenFor(user)

	w := suite.do(http.MethodPost, "/api/workspaces", token, map[string]string{"name": "Mine"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var workspace dto.WorkspaceDTO
	suite.decode(w, &workspace)

	w = suite.do(http.MethodPatch, "/api/auth/me", token, map[string]interface{}{
		"name":                 "Profiled",
		"current_workspace_id": workspace.ID,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.UserDTO
	suite.decode(w, &updated)
	suite.Equal("Profiled", updated.Name)
	suite.Require().NotNil(updated.CurrentWorkspaceID)

	w = suite.do(http.MethodPatch, "/api/auth/me", token, `{"current_workspace_id": null}`)
	suite.Require().Equal(http.StatusOK, w.Code)
	updated = dto.UserDTO{}
	suite.decode(w, &updated)
	suite.Nil(updated.CurrentWorkspaceID)
	suite.Equal("Profiled", updated.Name)

	w = suite.do(http.MethodPatch, "/api/auth/me", token, map[string]interface{}{"current_workspace_id": workspace.ID + 100})
	suite.Equal(http.StatusBadRequest, w.Code)
}
