package api

import (
	"exam_system/internal/auth"       // Authorization rules
	"exam_system/internal/middleware" // Session
	"exam_system/internal/repository" // Repository operations
	"exam_system/internal/utils"      // Cache helpers
	"net/http"                        // HTTP status codes
	"strconv"                         // Query parsing
	"time"                            // Cache lifetime

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// ExamRequest is the body of exam creation and replacement
type ExamRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=255"` // Title must be provided
	Description string `json:"description"`                               // Free text
}

func (r ExamRequest) input() repository.ExamInput {
	return repository.ExamInput{Title: r.Title, Description: r.Description}
}

// CreateExamHandler creates an exam owned by the caller. Only teachers and admins author exams.
func CreateExamHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		var req ExamRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		if !auth.CanCreateExam(user.Role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to create an exam"})
			return
		}
		exam, err := repository.CreateExam(middleware.Session(c), req.input(), user.ID)
		if err != nil {
			respondError(c, err, "Create exam")
			return
		}
		invalidateAfterCommit(c, rdb) // New entry in every listing
		logrus.WithFields(logrus.Fields{"exam_id": exam.ID, "owner_id": user.ID}).Info("Exam created")
		c.JSON(http.StatusCreated, exam)
	}
}

// GetExamHandler returns one exam
func GetExamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		exam, ok := loadExam(c, middleware.Session(c))
		if !ok {
			return
		}
		c.JSON(http.StatusOK, exam)
	}
}

// ListExamsHandler returns every exam annotated with its question count, optionally filtered by ?owner_id=
func ListExamsHandler(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ownerID uint // Zero lists all exams
		if raw := c.Query("owner_id"); raw != "" {
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owner_id"})
				return
			}
			ownerID = uint(v)
		}
		ctx := c.Request.Context()                  // Context for Redis operations
		cacheKey := utils.ExamListCacheKey(ownerID) // Cache key for this listing
		var cached []repository.ExamSummary
		// If found in cache, return it
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		gen, genErr := utils.CacheGeneration(ctx, rdb)                     // Fence against concurrent invalidation
		exams, err := repository.ListExams(middleware.Session(c), ownerID) // Fetch from DB
		if err != nil {
			respondError(c, err, "List exams")
			return
		}
		if genErr == nil {
			_, _ = utils.SetCacheIfCurrent(ctx, rdb, cacheKey, exams, ttl, gen) // Cache the listing
		}
		c.JSON(http.StatusOK, exams)
	}
}

// UpdateExamHandler replaces title and description of an exam owned by the caller
func UpdateExamHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		tx := middleware.Session(c)
		exam, ok := loadOwnedExam(c, tx, user, "You do not have permission to update this exam")
		if !ok {
			return
		}
		var req ExamRequest // Full record, no partial patch
		if !bindJSON(c, &req) {
			return
		}
		updated, err := repository.UpdateExam(tx, exam.ID, req.input())
		if err != nil {
			respondError(c, err, "Update exam")
			return
		}
		if updated == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
			return
		}
		invalidateAfterCommit(c, rdb, exam.ID)
		logrus.WithFields(logrus.Fields{"exam_id": exam.ID, "actor_id": user.ID}).Info("Exam updated")
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteExamHandler removes an exam with its questions and choices
func DeleteExamHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		tx := middleware.Session(c)
		exam, ok := loadOwnedExam(c, tx, user, "You do not have permission to delete this exam")
		if !ok {
			return
		}
		found, err := repository.DeleteExam(tx, exam.ID) // Children first, then the exam
		if err != nil {
			respondError(c, err, "Delete exam")
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
			return
		}
		invalidateAfterCommit(c, rdb, exam.ID)
		logrus.WithFields(logrus.Fields{"exam_id": exam.ID, "actor_id": user.ID}).Info("Exam deleted")
		c.JSON(http.StatusOK, MessageResponse{Message: "Exam deleted successfully"})
	}
}
