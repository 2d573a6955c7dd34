package api

import (
	"exam_system/internal/auth"       // Registration and authentication
	"exam_system/internal/middleware" // Session and bearer token
	"exam_system/internal/repository" // Repository operations
	"exam_system/internal/utils"      // Token manager
	"net/http"                        // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// UserRequest is the body of registration and full user replacement
type UserRequest struct {
	Username string `json:"username" binding:"required,notblank,max=64"` // Username must be provided
	Email    string `json:"email" binding:"required,email,max=191"`      // Email must be valid
	Password string `json:"password" binding:"required,min=8,max=72"`    // Bounded by bcrypt's input limit
	Name     string `json:"name" binding:"max=100"`                      // Given name
	Surname  string `json:"surname" binding:"max=100"`                   // Family name
	Role     string `json:"role" binding:"max=32"`                       // Empty means the default role
}

func (r UserRequest) credentials() auth.Credentials {
	return auth.Credentials{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Name:     r.Name,
		Surname:  r.Surname,
		Role:     r.Role,
	}
}

// LoginRequest accepts JSON or an OAuth2 password form
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"` // Username must be provided
	Password string `json:"password" form:"password" binding:"required"` // Password must be provided
}

// RefreshRequest optionally carries the refresh token in the body instead of the Authorization header
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by /token and /refresh-token
type TokenResponse struct {
	AccessToken  string `json:"access_token"`            // Short-lived bearer token
	RefreshToken string `json:"refresh_token,omitempty"` // Long-lived token, login only
	TokenType    string `json:"token_type"`              // Always "bearer"
}

// RegisterHandler creates a user account
func RegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UserRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		user, err := auth.Register(middleware.Session(c), req.credentials()) // Hash and store
		if err != nil {
			respondError(c, err, "Register")
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
		c.JSON(http.StatusCreated, user) // Return the stored user
	}
}

// LoginHandler exchanges username and password for an access and a refresh token
func LoginHandler(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON or form request to struct
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := auth.Authenticate(middleware.Session(c), req.Username, req.Password)
		if err != nil {
			respondError(c, err, "Login")
			return
		}
		if user == nil {
			// Same answer for unknown user and wrong password
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
			return
		}
		claims := auth.ClaimsFor(user)                                   // id, username, role
		access, err := tokens.IssueAccessToken(claims, tokens.AccessTTL) // Short-lived token
		if err != nil {
			respondError(c, err, "Issue access token")
			return
		}
		refresh, err := tokens.IssueRefreshToken(claims, tokens.RefreshTTL) // Long-lived token
		if err != nil {
			respondError(c, err, "Issue refresh token")
			return
		}
		c.JSON(http.StatusOK, TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"})
	}
}

// RefreshTokenHandler issues a new access token from a valid refresh token without checking the password
func RefreshTokenHandler(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := middleware.BearerToken(c) // Prefer the Authorization header
		if !ok {
			var req RefreshRequest
			if err := c.ShouldBindJSON(&req); err == nil {
				tokenStr = req.RefreshToken // Fall back to the body
			}
		}
		claims, err := tokens.VerifyToken(tokenStr, utils.TokenTypeRefresh)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid refresh token"})
			return
		}
		user, err := repository.GetUserByID(middleware.Session(c), claims.UserID) // Current role, not the stale one
		if err != nil {
			respondError(c, err, "Refresh token")
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		access, err := tokens.IssueAccessToken(auth.ClaimsFor(user), tokens.AccessTTL)
		if err != nil {
			respondError(c, err, "Issue access token")
			return
		}
		c.JSON(http.StatusOK, TokenResponse{AccessToken: access, TokenType: "bearer"})
	}
}

// VerifyTokenHandler reports whether a token is valid and its user still exists
func VerifyTokenHandler(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		claims, err := tokens.VerifyToken(token, "") // Either token type
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Token is invalid"})
			return
		}
		user, err := repository.GetUserByUsername(middleware.Session(c), claims.Username)
		if err != nil {
			respondError(c, err, "Verify token")
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Token is valid", "access_token": token})
	}
}
