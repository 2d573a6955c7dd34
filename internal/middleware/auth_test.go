package middleware

import (
	"exam_system/internal/config"
	"exam_system/internal/domain"
	"exam_system/internal/testutil"
	"exam_system/internal/utils"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", tc.header)

		token, ok := BearerToken(c)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.token, token, tc.header)
	}
}

func TestJWTAndAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gdb := testutil.SetupTestDB(t)
	admin := testutil.CreateUser(t, gdb, "root", domain.RoleAdmin, "password123")
	student := testutil.CreateUser(t, gdb, "ada", domain.RoleStudent, "password123")
	tokens, err := utils.NewTokenManager(&config.Config{JWTSecret: "test-secret", JWTAlgorithm: "HS256"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(SessionMiddleware(gdb), JWTAuthMiddleware(tokens))
	r.GET("/me", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"username": user.Username, "id": user.ID})
	})
	r.GET("/admin", AdminOnlyMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(path string, user *domain.User) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if user != nil {
			token, err := tokens.IssueAccessToken(utils.Claims{UserID: user.ID, Username: user.Username, Role: user.Role}, time.Minute)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call("/me", nil))
	assert.Equal(t, http.StatusOK, call("/me", student))
	assert.Equal(t, http.StatusForbidden, call("/admin", student))
	assert.Equal(t, http.StatusNoContent, call("/admin", admin))

	ghost := &domain.User{ID: 999, Username: "ghost", Role: domain.RoleAdmin}
	assert.Equal(t, http.StatusUnauthorized, call("/admin", ghost), "deleted users lose access")
}

func TestAdminOnlyWithoutUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminOnlyMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
