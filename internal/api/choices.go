package api

import (
	"exam_system/internal/middleware" // Session
	"exam_system/internal/repository" // Repository operations
	"net/http"                        // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// CreateChoiceHandler adds one choice to a question of an exam owned by the caller
func CreateChoiceHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		tx := middleware.Session(c)
		exam, ok := loadOwnedExam(c, tx, user, "You do not have permission to create a choice for this question")
		if !ok {
			return
		}
		questionID, ok := requireQuestion(c, tx, exam.ID)
		if !ok {
			return
		}
		var req ChoiceRequest
		if !bindJSON(c, &req) {
			return
		}
		choice, err := repository.CreateChoice(tx, questionID, req.input())
		if err != nil {
			respondError(c, err, "Create choice")
			return
		}
		invalidateAfterCommit(c, rdb, exam.ID) // Cached questions embed their choices
		logrus.WithFields(logrus.Fields{"exam_id": exam.ID, "question_id": questionID, "choice_id": choice.ID}).Info("Choice created")
		c.JSON(http.StatusCreated, choice)
	}
}

// GetChoiceHandler returns one choice of a question
func GetChoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tx := middleware.Session(c)
		exam, ok := loadExam(c, tx)
		if !ok {
			return
		}
		questionID, ok := requireQuestion(c, tx, exam.ID)
		if !ok {
			return
		}
		choiceID, ok := pathID(c, "choice_id")
		if !ok {
			return
		}
		choice, err := repository.GetChoice(tx, questionID, choiceID)
		if err != nil {
			respondError(c, err, "Get choice")
			return
		}
		if choice == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Choice not found"})
			return
		}
		c.JSON(http.StatusOK, choice)
	}
}

// ListChoicesHandler returns the choices of a question
func ListChoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tx := middleware.Session(c)
		exam, ok := loadExam(c, tx)
		if !ok {
			return
		}
		questionID, ok := requireQuestion(c, tx, exam.ID)
		if !ok {
			return
		}
		choices, err := repository.ListChoices(tx, questionID)
		if err != nil {
			respondError(c, err, "List choices")
			return
		}
		c.JSON(http.StatusOK, choices)
	}
}

// UpdateChoiceHandler replaces the text and correctness of a choice
func UpdateChoiceHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		tx := middleware.Session(c)
		exam, ok := loadOwnedExam(c, tx, user, "You do not have permission to update this choice")
		if !ok {
			return
		}
		questionID, ok := requireQuestion(c, tx, exam.ID)
		if !ok {
			return
		}
		choiceID, ok := pathID(c, "choice_id")
		if !ok {
			return
		}
		var req ChoiceRequest
		if !bindJSON(c, &req) {
			return
		}
		choice, err := repository.UpdateChoice(tx, questionID, choiceID, req.input())
		if err != nil {
			respondError(c, err, "Update choice")
			return
		}
		if choice == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Choice not found"})
			return
		}
		invalidateAfterCommit(c, rdb, exam.ID)
		logrus.WithFields(logrus.Fields{"exam_id": exam.ID, "question_id": questionID, "choice_id": choiceID}).Info("Choice updated")
		c.JSON(http.StatusOK, choice)
	}
}

// DeleteChoiceHandler removes one choice
func DeleteChoiceHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		tx := middleware.Session(c)
		exam, ok := loadOwnedExam(c, tx, user, "You do not have permission to delete this choice")
		if !ok {
			return
		}
		questionID, ok := requireQuestion(c, tx, exam.ID)
		if !ok {
			return
		}
		choiceID, ok := pathID(c, "choice_id")
		if !ok {
			return
		}
		found, err := repository.DeleteChoice(tx, questionID, choiceID)
		if err != nil {
			respondError(c, err, "Delete choice")
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Choice not found"})
			return
		}
		invalidateAfterCommit(c, rdb, exam.ID)
		logrus.WithFields(logrus.Fields{"exam_id": exam.ID, "question_id": questionID, "choice_id": choiceID}).Info("Choice deleted")
		c.JSON(http.StatusOK, MessageResponse{Message: "Choice deleted successfully"})
	}
}
