package api

import (
	"exam_system/internal/domain"     // Importing domain models
	"exam_system/internal/middleware" // Session
	"exam_system/internal/repository" // Repository operations
	"exam_system/internal/utils"      // Cache and filename helpers
	"net/http"                        // HTTP status codes
	"time"                            // Cache lifetime

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// ChoiceRequest is one answer option
type ChoiceRequest struct {
	ChoiceText string `json:"choice_text" binding:"required,notblank"` // Choice text must be provided
	IsCorrect  *bool  `json:"is_correct" binding:"required"`           // Must be present, false included
}

func (r ChoiceRequest) input() repository.ChoiceInput {
	return repository.ChoiceInput{ChoiceText: r.ChoiceText, IsCorrect: *r.IsCorrect}
}

// QuestionRequest is the body of question creation and replacement, carrying the complete choice set
type QuestionRequest struct {
	QuestionText     string          `json:"question_text" binding:"required,notblank"` // Prompt must be provided
	IsMultipleChoice bool            `json:"is_multiple_choice"`                        // Single answer when false
	ImagePath        *string         `json:"image_path"`                                // Stored name returned by POST /image/
	Choices          []ChoiceRequest `json:"choices" binding:"required,min=1,dive"`     // Replaces every existing choice
}

func (r QuestionRequest) input() repository.QuestionInput {
	in := repository.QuestionInput{
		QuestionText:     r.QuestionText,
		IsMultipleChoice: r.IsMultipleChoice,
		ImagePath:        r.ImagePath,
		Choices:          make([]repository.ChoiceInput, len(r.Choices)),
	}
	for i, ch := range r.Choices {
		in.Choices[i] = ch.input()
	}
	return in
}

// bindQuestion binds and checks a question body, answering 400 on failure
func bindQuestion(c *gin.Context) (QuestionRequest, bool) {
	var req QuestionRequest
	if !bindJSON(c, &req) {
		return req, false
	}
	if req.ImagePath != nil && *req.ImagePath == "" {
		req.ImagePath = nil // Empty string clears the image
	}
	if req.ImagePath != nil && utils.ValidateStoredName(*req.ImagePath) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image_path"})
		return req, false
	}
	return req, true
}

// CreateQuestionHandler adds a question with its choices to an exam owned by the caller
func CreateQuestionHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		tx := middleware.Session(c)
		exam, ok := loadOwnedExam(c, tx, user, "You do not have permission to create a question for this exam")
		if !ok {
			return
		}
		req, ok := bindQuestion(c)
		if !ok {
			return
		}
		question, err := repository.CreateQuestion(tx, exam.ID, req.input())
		if err != nil {
			respondError(c, err, "Create question")
			return
		}
		invalidateAfterCommit(c, rdb, exam.ID) // Count and question listing changed
		logrus.WithFields(logrus.Fields{"exam_id": exam.ID, "question_id": question.ID, "choices": len(question.Choices)}).Info("Question created")
		c.JSON(http.StatusCreated, question)
	}
}

// GetQuestionHandler returns one question with its choices
func GetQuestionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tx := middleware.Session(c)
		exam, ok := loadExam(c, tx)
		if !ok {
			return
		}
		questionID, ok := pathID(c, "question_id")
		if !ok {
			return
		}
		question, err := repository.GetQuestion(tx, exam.ID, questionID)
		if err != nil {
			respondError(c, err, "Get question")
			return
		}
		if question == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
			return
		}
		c.JSON(http.StatusOK, question)
	}
}

// ListQuestionsHandler returns the questions of an exam with their choices; an exam without questions yields []
func ListQuestionsHandler(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()                     // Context for Redis operations
		gen, genErr := utils.CacheGeneration(ctx, rdb) // Read before any row so the fence covers them all
		tx := middleware.Session(c)
		exam, ok := loadExam(c, tx) // 404 for an unknown exam, never for an empty one
		if !ok {
			return
		}
		cacheKey := utils.ExamQuestionsCacheKey(exam.ID) // Cache key for this exam
		var cached []domain.Question
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		questions, err := repository.ListQuestions(tx, exam.ID)
		if err != nil {
			respondError(c, err, "List questions")
			return
		}
		if genErr == nil {
			_, _ = utils.SetCacheIfCurrent(ctx, rdb, cacheKey, questions, ttl, gen) // Cache the listing
		}
		c.JSON(http.StatusOK, questions)
	}
}

// UpdateQuestionHandler replaces a question and its whole choice set
func UpdateQuestionHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		tx := middleware.Session(c)
		exam, ok := loadOwnedExam(c, tx, user, "You do not have permission to update this question")
		if !ok {
			return
		}
		questionID, ok := pathID(c, "question_id")
		if !ok {
			return
		}
		req, ok := bindQuestion(c)
		if !ok {
			return
		}
		question, err := repository.UpdateQuestion(tx, exam.ID, questionID, req.input()) // Delete-all-then-insert-all
		if err != nil {
			respondError(c, err, "Update question")
			return
		}
		if question == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
			return
		}
		invalidateAfterCommit(c, rdb, exam.ID)
		logrus.WithFields(logrus.Fields{"exam_id": exam.ID, "question_id": questionID, "actor_id": user.ID}).Info("Question updated")
		c.JSON(http.StatusOK, question)
	}
}

// DeleteQuestionHandler removes a question and its choices
func DeleteQuestionHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		tx := middleware.Session(c)
		exam, ok := loadOwnedExam(c, tx, user, "You do not have permission to delete this question")
		if !ok {
			return
		}
		questionID, ok := pathID(c, "question_id")
		if !ok {
			return
		}
		found, err := repository.DeleteQuestion(tx, exam.ID, questionID)
		if err != nil {
			respondError(c, err, "Delete question")
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
			return
		}
		invalidateAfterCommit(c, rdb, exam.ID)
		logrus.WithFields(logrus.Fields{"exam_id": exam.ID, "question_id": questionID, "actor_id": user.ID}).Info("Question deleted")
		c.JSON(http.StatusOK, MessageResponse{Message: "Question deleted successfully"})
	}
}
