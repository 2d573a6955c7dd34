package api

import (
	"exam_system/internal/auth"
	"exam_system/internal/domain"
	"exam_system/internal/testutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBody(username string) map[string]any {
	return map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"name":     "Grace",
		"surname":  "Hopper",
		"role":     domain.RoleTeacher,
	}
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/register", registerBody("grace"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	user := decode[domain.User](t, w)
	assert.Equal(t, "grace", user.Username)
	assert.Equal(t, domain.RoleTeacher, user.Role)

	// Duplicate username
	w = s.do(t, http.MethodPost, "/register", registerBody("grace"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int64(1), testutil.Count(t, s.db, &domain.User{}))
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	body := registerBody("grace")
	body["username"] = "   "
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/register", body, "").Code)

	body = registerBody("grace")
	body["email"] = "not-an-email"
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/register", body, "").Code)

	body = registerBody("grace")
	body["role"] = domain.RoleAdmin
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/register", body, "").Code)

	assert.Equal(t, int64(0), testutil.Count(t, s.db, &domain.User{}))
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "grace", domain.RoleTeacher, "password123")

	w := s.do(t, http.MethodPost, "/token", map[string]string{"username": "grace", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[TokenResponse](t, w)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	w = s.do(t, http.MethodPost, "/token", map[string]string{"username": "grace", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = s.do(t, http.MethodPost, "/token", map[string]string{"username": "nobody", "password": "password123"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWithPasswordForm(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "grace", domain.RoleTeacher, "password123")

	form := url.Values{"username": {"grace"}, "password": {"password123"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode[TokenResponse](t, w).AccessToken)
}

func TestProtectedRouteRejectsBadTokens(t *testing.T) {
	s := newTestServer(t)
	teacher := testutil.CreateUser(t, s.db, "grace", domain.RoleTeacher, "password123")
	body := map[string]string{"title": "Algebra"}

	w := s.do(t, http.MethodPost, "/exam/", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := s.tokens.IssueAccessToken(auth.ClaimsFor(teacher), -time.Minute)
	require.NoError(t, err)
	w = s.do(t, http.MethodPost, "/exam/", body, expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	refresh, err := s.tokens.IssueRefreshToken(auth.ClaimsFor(teacher), time.Hour)
	require.NoError(t, err)
	w = s.do(t, http.MethodPost, "/exam/", body, refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh tokens are not bearer tokens")

	assert.Equal(t, int64(0), testutil.Count(t, s.db, &domain.Exam{}))
}

func TestRefreshToken(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "grace", domain.RoleStudent, "password123")
	refresh, err := s.tokens.IssueRefreshToken(auth.ClaimsFor(user), time.Hour)
	require.NoError(t, err)

	// Promote after the refresh token was issued
	require.NoError(t, s.db.Model(user).Update("role", domain.RoleTeacher).Error)

	w := s.do(t, http.MethodPost, "/refresh-token", nil, refresh)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[TokenResponse](t, w)
	assert.Empty(t, resp.RefreshToken)

	claims, err := s.tokens.VerifyToken(resp.AccessToken, "access")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTeacher, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	// Body form
	w = s.do(t, http.MethodPost, "/refresh-token", map[string]string{"refresh_token": refresh}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// An access token cannot refresh
	w = s.do(t, http.MethodPost, "/refresh-token", nil, resp.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, s.db.Delete(&domain.User{}, user.ID).Error)
	w = s.do(t, http.MethodPost, "/refresh-token", nil, refresh)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyToken(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "grace", domain.RoleStudent, "password123")
	token := s.tokenFor(t, user)

	w := s.do(t, http.MethodGet, "/verify-token/"+token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "Token is valid", body["message"])
	assert.Equal(t, token, body["access_token"])

	w = s.do(t, http.MethodGet, "/verify-token/garbage", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, s.db.Delete(&domain.User{}, user.ID).Error)
	w = s.do(t, http.MethodGet, "/verify-token/"+token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
