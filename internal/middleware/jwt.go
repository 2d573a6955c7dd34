package middleware

import (
	"exam_system/internal/domain"     // Importing domain models
	"exam_system/internal/repository" // User lookups
	"exam_system/internal/utils"      // JWT utility functions
	"net/http"                        // HTTP status codes
	"strings"                         // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

const userKey = "user" // Context key of the authenticated *domain.User

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// JWTAuthMiddleware validates access tokens and loads the acting user. Must run after SessionMiddleware.
func JWTAuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := BearerToken(c) // Extract the token string
		if !ok {
			unauthorized(c, "Missing or invalid Authorization header")
			return
		}
		claims, err := tokens.VerifyToken(tokenStr, utils.TokenTypeAccess) // Parse the JWT token
		if err != nil {
			unauthorized(c, "Could not validate credentials")
			return
		}
		user, err := repository.GetUserByID(Session(c), claims.UserID) // Role is taken from the database, not the token
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": claims.UserID, "error": err.Error()}).Error("Failed to load token user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if user == nil {
			unauthorized(c, "Could not validate credentials") // User deleted after issuance
			return
		}
		c.Set(userKey, user) // Store the user in context
		c.Next()                 // Proceed to the next handler
	}
}

// CurrentUser returns the user loaded by JWTAuthMiddleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
