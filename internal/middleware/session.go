package middleware

import (
	"bytes"    // Response buffering
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

const (
	sessionKey  = "dbSession"     // Context key of the per-request transaction
	onCommitKey = "dbAfterCommit" // Context key of the post-commit callbacks
)

// SessionMiddleware wraps each request in one database transaction. The transaction commits when the
// handler chain finished with a status below 400 and rolls back on every other exit, panics included.
// The response is held back until the commit succeeded; a failed commit is answered with 500.
func SessionMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Pin one connection so a failed COMMIT can still be rolled back on it
		err := db.WithContext(c.Request.Context()).Connection(func(conn *gorm.DB) error {
			runInTransaction(c, conn)
			return nil
		})
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to acquire database connection")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
	}
}

func runInTransaction(c *gin.Context, conn *gorm.DB) {
	tx := conn.Begin() // Acquire the session
	if tx.Error != nil {
		logrus.WithField("error", tx.Error.Error()).Error("Failed to begin transaction")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	out := c.Writer
	buf := &bufferedWriter{ResponseWriter: out, status: http.StatusOK}
	done := false // Set once the transaction is committed
	defer func() {
		c.Writer = out // Recovery and later middleware write straight through
		if !done {
			tx.Rollback() // Release on error, abort and panic paths
		}
	}()

	c.Set(sessionKey, tx) // Hand the session to handlers
	c.Writer = buf
	c.Next() // Run the handler chain
	c.Writer = out

	// Failed requests leave no partial writes behind
	if buf.status >= http.StatusBadRequest || len(c.Errors) > 0 {
		buf.flush()
		return
	}
	if err := tx.Commit().Error; err != nil {
		done = true           // The driver already closed the Go transaction
		conn.Exec("ROLLBACK") // Some engines keep the transaction open after a failed COMMIT
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Failed to commit transaction")
		c.Writer.Header().Del("Content-Type")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	done = true
	buf.flush()
	// Side effects that must only follow durable writes, such as cache invalidation
	if hooks, ok := c.Get(onCommitKey); ok {
		for _, fn := range hooks.([]func()) {
			fn()
		}
	}
}

// bufferedWriter holds status and body until the transaction outcome is known. Headers go to the
// wrapped writer directly since nothing is sent before flush.
type bufferedWriter struct {
	gin.ResponseWriter
	status int
	body   bytes.Buffer
	wrote  bool
}

func (w *bufferedWriter) WriteHeader(code int) {
	if code > 0 {
		w.status = code
	}
}

func (w *bufferedWriter) WriteHeaderNow() { w.wrote = true }

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	w.wrote = true
	return w.body.WriteString(s)
}

func (w *bufferedWriter) Status() int { return w.status }

func (w *bufferedWriter) Size() int {
	if !w.wrote {
		return -1
	}
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool { return w.wrote }

// flush sends the held response
func (w *bufferedWriter) flush() {
	w.ResponseWriter.WriteHeader(w.status)
	if w.body.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.body.Bytes())
	} else {
		w.ResponseWriter.WriteHeaderNow()
	}
}

// OnCommit registers fn to run once the request transaction has committed. It never runs on rollback.
func OnCommit(c *gin.Context, fn func()) {
	var hooks []func()
	if v, ok := c.Get(onCommitKey); ok {
		hooks = v.([]func())
	}
	c.Set(onCommitKey, append(hooks, fn))
}

// Session returns the transaction opened by SessionMiddleware for this request
func Session(c *gin.Context) *gorm.DB {
	return c.MustGet(sessionKey).(*gorm.DB)
}
