package api

import (
	"exam_system/internal/auth"       // Authorization rules
	"exam_system/internal/middleware" // Session
	"exam_system/internal/repository" // Repository operations
	"net/http"                        // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// ListUsersHandler returns every user
func ListUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := repository.ListUsers(middleware.Session(c)) // Fetch all users
		if err != nil {
			respondError(c, err, "List users")
			return
		}
		c.JSON(http.StatusOK, users) // Hashes are never serialized
	}
}

// UpdateUserHandler replaces every field of a user. Users may update themselves; admins anyone.
func UpdateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UserRequest // Full record, no partial patch
		if !bindJSON(c, &req) {
			return
		}
		if !auth.CanMutate(user.Role, user.ID, id) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to update this user"})
			return
		}
		updated, err := auth.ReplaceUser(middleware.Session(c), user.Role, id, req.credentials())
		if err != nil {
			respondError(c, err, "Update user")
			return
		}
		if updated == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": id, "actor_id": user.ID}).Info("User updated")
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteUserHandler removes a user together with every exam it owns
func DeleteUserHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := actor(c) // Authenticated caller
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if !auth.CanMutate(user.Role, user.ID, id) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to delete this user"})
			return
		}
		examIDs, found, err := repository.DeleteUser(middleware.Session(c), id) // Cascades to owned exams
		if err != nil {
			respondError(c, err, "Delete user")
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		invalidateAfterCommit(c, rdb, examIDs...) // Owned exams vanished from listings
		logrus.WithFields(logrus.Fields{"user_id": id, "actor_id": user.ID, "exams": len(examIDs)}).Info("User deleted")
		c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
	}
}
