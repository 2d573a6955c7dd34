package middleware

import (
	"exam_system/internal/domain"
	"exam_system/internal/testutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func sessionRouter(gdb *gorm.DB, status int, committed *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery(), SessionMiddleware(gdb))
	r.POST("/write", func(c *gin.Context) {
		tx := Session(c)
		if err := tx.Create(&domain.User{Username: "ada", Email: "ada@example.com", HashedPassword: "x"}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		OnCommit(c, func() { *committed = true })
		c.JSON(status, gin.H{})
	})
	r.POST("/panic", func(c *gin.Context) {
		Session(c).Create(&domain.User{Username: "bob", Email: "bob@example.com", HashedPassword: "x"})
		panic("boom")
	})
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestSessionCommitsSuccessfulRequests(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	committed := false
	r := sessionRouter(gdb, http.StatusCreated, &committed)

	require.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/write").Code)
	assert.True(t, committed)
	assert.Equal(t, int64(1), testutil.Count(t, gdb, &domain.User{}))
}

func TestSessionRollsBackFailedRequests(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	committed := false
	r := sessionRouter(gdb, http.StatusForbidden, &committed)

	require.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/write").Code)
	assert.False(t, committed, "hooks never run on rollback")
	assert.Equal(t, int64(0), testutil.Count(t, gdb, &domain.User{}))
}

func TestSessionRollsBackOnPanic(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	committed := false
	r := sessionRouter(gdb, http.StatusOK, &committed)

	require.Equal(t, http.StatusInternalServerError, serve(r, http.MethodPost, "/panic").Code)
	assert.Equal(t, int64(0), testutil.Count(t, gdb, &domain.User{}))
}

func TestSessionAnswers500WhenCommitFails(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	require.NoError(t, gdb.Exec("PRAGMA foreign_keys = ON").Error)
	committed := false

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(gdb))
	r.POST("/orphan", func(c *gin.Context) {
		tx := Session(c)
		// Foreign keys are only checked at COMMIT, so the insert itself succeeds
		require.NoError(t, tx.Exec("PRAGMA defer_foreign_keys = ON").Error)
		require.NoError(t, tx.Create(&domain.Exam{Title: "Orphan", OwnerID: 999}).Error)
		OnCommit(c, func() { committed = true })
		c.JSON(http.StatusCreated, gin.H{"id": 1})
	})

	w := serve(r, http.MethodPost, "/orphan")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), `"id"`)
	assert.False(t, committed)
	assert.Equal(t, int64(0), testutil.Count(t, gdb, &domain.Exam{}))

	// The connection is usable again and outside any transaction
	committed = false
	require.Equal(t, http.StatusCreated, serve(sessionRouter(gdb, http.StatusCreated, &committed), http.MethodPost, "/write").Code)
	assert.True(t, committed)
	assert.Equal(t, int64(1), testutil.Count(t, gdb, &domain.User{}))
}

func TestSessionHoldsResponseUntilCommit(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	committed := false
	r := sessionRouter(gdb, http.StatusCreated, &committed)

	w := serve(r, http.MethodPost, "/write")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, "{}", w.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
}
