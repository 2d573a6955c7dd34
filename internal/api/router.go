package api

import (
	"errors"                          // Sentinel errors
	"exam_system/internal/middleware" // Custom package for middleware
	"exam_system/internal/utils"      // Token manager
	"net/http"                        // HTTP status codes
	"sync"                            // One-time validator registration
	"time"                            // Cache lifetime

	"github.com/gin-contrib/cors"                                    // CORS middleware
	"github.com/gin-gonic/gin"                                       // Gin web framework
	"github.com/gin-gonic/gin/binding"                               // Gin validator engine
	"github.com/go-playground/validator/v10"                         // Struct validation
	"github.com/go-playground/validator/v10/non-standard/validators" // notblank validator
	"github.com/redis/go-redis/v9"                                   // Redis client
	"gorm.io/gorm"                                                   // GORM ORM library
)

// Deps are the process-wide collaborators handed to the handlers
type Deps struct {
	DB          *gorm.DB            // Database handle, one transaction per request is taken from it
	Redis       *redis.Client       // Optional listing cache
	Tokens      *utils.TokenManager // Token signing and verification
	CacheTTL    time.Duration       // Lifetime of cached listings
	UploadDir   string              // Image directory
	CORSOrigins []string            // Allowed browser origins
}

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators adds the custom binding tags to gin's validator engine once per process
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		validatorsErr = v.RegisterValidation("notblank", validators.NotBlank) // Reject whitespace-only text
	})
	return validatorsErr
}

// NewRouter builds the gin engine with every route of the service
func NewRouter(d Deps) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()                                    // Gin router instance
	r.Use(gin.Recovery(), middleware.RequestLogger()) // Panic recovery and request logging
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,                                       // Configured origins
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}, // Allowed methods
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"}, // Allowed headers
			AllowCredentials: true,                                                // Cookies and auth headers
			MaxAge:           12 * time.Hour,                                      // Preflight cache
		}))
	}

	// Routes without database access
	r.GET("/health", HealthHandler(d.DB))                   // Liveness and DB ping
	r.GET("/image/:filename", GetImageHandler(d.UploadDir)) // Serve an uploaded image

	// Every route below runs inside one database transaction
	api := r.Group("", middleware.SessionMiddleware(d.DB))

	// Auth routes
	api.POST("/register", RegisterHandler())                      // Registration endpoint
	api.POST("/token", LoginHandler(d.Tokens))                    // Login endpoint
	api.POST("/refresh-token", RefreshTokenHandler(d.Tokens))     // Refresh endpoint
	api.GET("/verify-token/:token", VerifyTokenHandler(d.Tokens)) // Token check endpoint

	// Public reads
	api.GET("/exams/", ListExamsHandler(d.Redis, d.CacheTTL))                             // List exams
	api.GET("/exam/:exam_id", GetExamHandler())                                           // Read exam
	api.GET("/exams/:exam_id/questions", ListQuestionsHandler(d.Redis, d.CacheTTL))       // List questions
	api.GET("/exam/:exam_id/question/:question_id", GetQuestionHandler())                 // Read question
	api.GET("/exam/:exam_id/question/:question_id/choices", ListChoicesHandler())         // List choices
	api.GET("/exam/:exam_id/question/:question_id/choice/:choice_id", GetChoiceHandler()) // Read choice

	// Routes protected by JWT
	authed := api.Group("", middleware.JWTAuthMiddleware(d.Tokens))

	authed.GET("/users", middleware.AdminOnlyMiddleware(), ListUsersHandler()) // List users, admin only
	authed.PUT("/user/:id", UpdateUserHandler())                               // Replace user
	authed.DELETE("/user/:id", DeleteUserHandler(d.Redis))                     // Delete user and owned exams

	authed.POST("/exam/", CreateExamHandler(d.Redis))           // Create exam
	authed.PUT("/exam/:exam_id", UpdateExamHandler(d.Redis))    // Replace exam
	authed.DELETE("/exam/:exam_id", DeleteExamHandler(d.Redis)) // Delete exam and descendants

	authed.POST("/exam/:exam_id/question/", CreateQuestionHandler(d.Redis))               // Create question
	authed.PUT("/exam/:exam_id/question/:question_id", UpdateQuestionHandler(d.Redis))    // Replace question and choices
	authed.DELETE("/exam/:exam_id/question/:question_id", DeleteQuestionHandler(d.Redis)) // Delete question and choices

	authed.POST("/exam/:exam_id/question/:question_id/choice/", CreateChoiceHandler(d.Redis))             // Create choice
	authed.PUT("/exam/:exam_id/question/:question_id/choice/:choice_id", UpdateChoiceHandler(d.Redis))    // Replace choice
	authed.DELETE("/exam/:exam_id/question/:question_id/choice/:choice_id", DeleteChoiceHandler(d.Redis)) // Delete choice

	authed.POST("/image/", UploadImageHandler(d.UploadDir))            // Store an image
	authed.DELETE("/image/:filename", DeleteImageHandler(d.UploadDir)) // Remove an image

	return r, nil
}

// HealthHandler reports whether the database answers
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB() // Underlying connection pool
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context()) // Round trip to the server
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
