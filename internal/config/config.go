package config

import (
	"errors"  // Configuration errors
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values
	"time"    // For token and cache lifetimes

	"github.com/joho/godotenv" // For loading .env files
	"github.com/sirupsen/logrus"
)

// Development defaults, used when the matching variable is unset
const (
	DefaultAppPort          = "8000"
	DefaultJWTSecret        = "your_secret_key"
	DefaultJWTAlgorithm     = "HS256"
	DefaultAccessTTLMinutes = 2
	DefaultRefreshTTLDays   = 10
	DefaultCacheTTLSeconds  = 60
	DefaultUploadDir        = "uploads"
	DefaultCORSOrigin       = "http://localhost:3000"
)

// Config holds the application configuration
type Config struct {
	AppPort         string        // Application port
	DBDriver        string        // Database driver: mysql or postgres
	DBUser          string        // Database user
	DBPassword      string        // Database password
	DBHost          string        // Database host
	DBPort          string        // Database port
	DBName          string        // Database name
	DBSSLMode       string        // PostgreSQL sslmode
	JWTSecret       string        // JWT secret key
	JWTAlgorithm    string        // JWT HMAC algorithm
	AccessTokenTTL  time.Duration // Access token lifetime
	RefreshTokenTTL time.Duration // Refresh token lifetime
	RedisAddr       string        // Redis server address, empty disables caching
	RedisPass       string        // Redis password
	RedisDB         int           // Redis database number
	CacheTTL        time.Duration // Lifetime of cached listings
	UploadDir       string        // Directory holding uploaded images
	CORSOrigins     []string      // Allowed browser origins
	AdminUsername   string        // Bootstrap admin seeded by cmd/migrate
	AdminEmail      string        // Bootstrap admin email
	AdminPassword   string        // Bootstrap admin password
	IsProd          bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	cfg := &Config{
		AppPort:         getEnv("APP_PORT", DefaultAppPort),                                                          // Application port
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "mysql")),                                               // Database driver
		DBUser:          os.Getenv("DB_USER"),                                                                        // Database user
		DBPassword:      os.Getenv("DB_PASSWORD"),                                                                    // Database password
		DBHost:          getEnv("DB_HOST", "localhost"),                                                              // Database host
		DBPort:          os.Getenv("DB_PORT"),                                                                        // Database port
		DBName:          os.Getenv("DB_NAME"),                                                                        // Database name
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),                                                             // PostgreSQL sslmode
		JWTSecret:       getEnv("JWT_SECRET", DefaultJWTSecret),                                                      // JWT secret key
		JWTAlgorithm:    strings.ToUpper(getEnv("JWT_ALGORITHM", DefaultJWTAlgorithm)),                               // JWT algorithm
		AccessTokenTTL:  time.Duration(getEnvInt("ACCESS_TOKEN_TTL_MINUTES", DefaultAccessTTLMinutes)) * time.Minute, // Access token lifetime
		RefreshTokenTTL: time.Duration(getEnvInt("REFRESH_TOKEN_TTL_DAYS", DefaultRefreshTTLDays)) * 24 * time.Hour,  // Refresh token lifetime
		RedisAddr:       os.Getenv("REDIS_ADDR"),                                                                     // Redis server address
		RedisPass:       os.Getenv("REDIS_PASS"),                                                                     // Redis password
		RedisDB:         getEnvInt("REDIS_DB", 0),                                                                    // Redis database number
		CacheTTL:        time.Duration(getEnvInt("CACHE_TTL_SECONDS", DefaultCacheTTLSeconds)) * time.Second,         // Cache lifetime
		UploadDir:       getEnv("UPLOAD_DIR", DefaultUploadDir),                                                      // Upload directory
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", DefaultCORSOrigin)),                                        // Allowed origins
		AdminUsername:   os.Getenv("ADMIN_USERNAME"),                                                                 // Bootstrap admin
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),                                                                    // Bootstrap admin email
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),                                                                 // Bootstrap admin password
		IsProd:          os.Getenv("IS_PROD") == "true",                                                              // Is production environment
	}
	if cfg.JWTSecret == DefaultJWTSecret {
		logrus.Warn("JWT_SECRET is not set, using the development secret") // Never acceptable in production
	}
	return cfg
}

// Validate rejects settings that are only acceptable in development
func (c *Config) Validate() error {
	if c.IsProd && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// getEnv returns the variable value or fallback when it is unset or empty
func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer variable, falling back on absence or parse error
func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
