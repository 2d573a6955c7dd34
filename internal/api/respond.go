package api

import (
	"context"                         // Context for Redis operations
	"errors"                          // Error matching
	"exam_system/internal/auth"       // Authorization rules
	"exam_system/internal/domain"     // Importing domain models
	"exam_system/internal/middleware" // Session and current user
	"exam_system/internal/repository" // Repository operations
	"exam_system/internal/utils"      // Cache helpers
	"net/http"                        // HTTP status codes
	"strconv"                         // Path parameter parsing

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/gorm"                 // GORM ORM library
)

// MessageResponse is the body of confirmation responses
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError maps an operation error onto a status code. Unexpected errors are logged and
// answered with a generic message.
func respondError(c *gin.Context, err error, action string) {
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()}) // Invalid field
	case errors.Is(err, repository.ErrDuplicateUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"}) // Unique key taken
	case errors.Is(err, auth.ErrRoleNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to assign this role"})
	default:
		// Log the error with context, never return it
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method, // HTTP method
			"path":   c.FullPath(),     // Route
			"error":  err.Error(),      // Error message
		}).Error(action + " failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// pathID parses a positive integer path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds the request body into dst, answering 400 on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return false
	}
	return true
}

// actor returns the authenticated user or answers 401
func actor(c *gin.Context) (*domain.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return user, true
}

// loadExam fetches the exam named by the exam_id path parameter, answering 400/404/500 when it cannot
func loadExam(c *gin.Context, tx *gorm.DB) (*domain.Exam, bool) {
	examID, ok := pathID(c, "exam_id")
	if !ok {
		return nil, false
	}
	exam, err := repository.GetExam(tx, examID)
	if err != nil {
		respondError(c, err, "Load exam")
		return nil, false
	}
	if exam == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
		return nil, false
	}
	return exam, true
}

// loadOwnedExam is loadExam plus the ownership check for mutations; denial answers 403 with msg
func loadOwnedExam(c *gin.Context, tx *gorm.DB, user *domain.User, msg string) (*domain.Exam, bool) {
	exam, ok := loadExam(c, tx)
	if !ok {
		return nil, false
	}
	if !auth.CanMutate(user.Role, user.ID, exam.OwnerID) {
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,      // Actor
			"exam_id":  exam.ID,      // Target
			"owner_id": exam.OwnerID, // Owner
		}).Warn("Permission denied")
		c.JSON(http.StatusForbidden, gin.H{"error": msg})
		return nil, false
	}
	return exam, true
}

// requireQuestion checks that the question_id path parameter names a question of examID, answering 404 otherwise
func requireQuestion(c *gin.Context, tx *gorm.DB, examID uint) (uint, bool) {
	questionID, ok := pathID(c, "question_id")
	if !ok {
		return 0, false
	}
	found, err := repository.QuestionInExam(tx, examID, questionID)
	if err != nil {
		respondError(c, err, "Load question")
		return 0, false
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return 0, false
	}
	return questionID, true
}

// invalidateAfterCommit drops cached listings touching examIDs once the request has committed
func invalidateAfterCommit(c *gin.Context, rdb *redis.Client, examIDs ...uint) {
	if rdb == nil {
		return // Caching disabled
	}
	middleware.OnCommit(c, func() {
		if err := utils.InvalidateExamCaches(context.Background(), rdb, examIDs...); err != nil {
			logrus.WithField("error", err.Error()).Warn("Failed to invalidate cache")
		}
	})
}
