package api

import (
	"errors"                     // Error matching
	"exam_system/internal/utils" // Filename helpers
	"net/http"                   // HTTP status codes
	"os"                         // File system access
	"path/filepath"              // Path joining

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// maxImageBytes caps the size of an uploaded image
const maxImageBytes = 10 << 20

// UploadImageHandler stores a multipart "file" under a generated name and returns that name
func UploadImageHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes) // Enforce the size cap
		file, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image is too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
			return
		}
		name, err := utils.StoredImageName(file.Filename) // Never store the client name verbatim
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
			return
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			respondError(c, err, "Create upload directory")
			return
		}
		if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
			respondError(c, err, "Save image")
			return
		}
		logrus.WithFields(logrus.Fields{"filename": name, "size": file.Size}).Info("Image uploaded")
		c.JSON(http.StatusCreated, gin.H{"filename": name})
	}
}

// GetImageHandler serves a stored image
func GetImageHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, ok := imagePath(c, dir)
		if !ok {
			return
		}
		c.File(path)
	}
}

// DeleteImageHandler removes a stored image
func DeleteImageHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, ok := imagePath(c, dir)
		if !ok {
			return
		}
		if err := os.Remove(path); err != nil {
			respondError(c, err, "Delete image")
			return
		}
		logrus.WithField("filename", c.Param("filename")).Info("Image deleted")
		c.JSON(http.StatusOK, MessageResponse{Message: "Image deleted successfully"})
	}
}

// imagePath resolves the filename path parameter inside dir, answering 400 for unsafe names and 404 for missing files
func imagePath(c *gin.Context, dir string) (string, bool) {
	name := c.Param("filename")
	if err := utils.ValidateStoredName(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filename"})
		return "", false
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return "", false
	}
	return path, true
}
