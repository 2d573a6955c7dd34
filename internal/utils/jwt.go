package utils

import (
	"errors"                      // Sentinel errors
	"exam_system/internal/config" // Custom package for configuration
	"fmt"                         // Error formatting
	"time"                        // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Token types carried in the "type" claim
const (
	TokenTypeAccess  = "access"  // Short-lived, accepted by the bearer middleware
	TokenTypeRefresh = "refresh" // Long-lived, accepted by /refresh-token only
)

// ErrInvalidToken is returned for every verification failure: bad signature, expiry, missing claims or wrong type
var ErrInvalidToken = errors.New("invalid token")

// JWT Claims
type Claims struct {
	UserID               uint   `json:"id"`       // Custom claim for user ID
	Username             string `json:"username"` // Custom claim for username
	Role                 string `json:"role"`     // Custom claim for role
	TokenType            string `json:"type"`     // access or refresh
	jwt.RegisteredClaims        // Standard JWT claims
}

// TokenManager signs and verifies tokens with the server-held secret
type TokenManager struct {
	secret     []byte            // HMAC secret
	method     jwt.SigningMethod // Fixed signing algorithm
	AccessTTL  time.Duration     // Default access token lifetime
	RefreshTTL time.Duration     // Default refresh token lifetime
}

// NewTokenManager builds a TokenManager from the configuration; only HMAC algorithms are accepted
func NewTokenManager(cfg *config.Config) (*TokenManager, error) {
	method, ok := jwt.GetSigningMethod(cfg.JWTAlgorithm).(*jwt.SigningMethodHMAC) // Resolve algorithm
	if !ok {
		return nil, fmt.Errorf("unsupported JWT algorithm %q", cfg.JWTAlgorithm)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret must not be empty")
	}
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		method:     method,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// IssueAccessToken signs an access token expiring ttl from now
func (m *TokenManager) IssueAccessToken(claims Claims, ttl time.Duration) (string, error) {
	return m.issue(claims, TokenTypeAccess, ttl)
}

// IssueRefreshToken signs a refresh token expiring ttl from now
func (m *TokenManager) IssueRefreshToken(claims Claims, ttl time.Duration) (string, error) {
	return m.issue(claims, TokenTypeRefresh, ttl)
}

func (m *TokenManager) issue(claims Claims, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.TokenType = tokenType // Stamp the token type
	// Standard claims
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Token expiry
		IssuedAt:  jwt.NewNumericDate(now),          // Issued at current time
	}
	token := jwt.NewWithClaims(m.method, claims) // Create token with claims
	return token.SignedString(m.secret)          // Sign the token with the secret
}

// VerifyToken parses and validates a token string. An empty wantType accepts either token type.
func (m *TokenManager) VerifyToken(tokenStr, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil // Return the secret key for validation
	},
		jwt.WithValidMethods([]string{m.method.Alg()}), // Reject algorithm substitution
		jwt.WithExpirationRequired(),                   // Tokens without exp are invalid
		jwt.WithIssuedAt(),                             // Reject tokens issued in the future
	)
	// Check for parsing errors
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	// Every identity claim must be present
	if claims.UserID == 0 || claims.Username == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	if wantType != "" && claims.TokenType != wantType {
		return nil, ErrInvalidToken // Wrong kind of token for this use
	}
	return claims, nil
}
