package db

import (
	"errors"                      // Not-found detection
	"exam_system/internal/domain" // Importing domain models
	"exam_system/internal/utils"  // Password hashing
	"strings"                     // Username normalization

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(gdb *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	return gdb.AutoMigrate(&domain.User{}, &domain.Exam{}, &domain.Question{}, &domain.Choice{})
}

// SeedAdmin creates the bootstrap admin account when it does not exist yet
func SeedAdmin(gdb *gorm.DB, username, email, password string) error {
	if username == "" || password == "" {
		logrus.Info("No bootstrap admin configured, skipping seed") // Nothing to do
		return nil
	}
	username = strings.ToLower(strings.TrimSpace(username)) // Usernames are stored lower-case
	var existing domain.User
	err := gdb.Where("username = ?", username).First(&existing).Error
	if err == nil {
		logrus.WithField("username", username).Info("Bootstrap admin already present")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err // Lookup failed
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := domain.User{Username: username, Email: email, HashedPassword: hash, Role: domain.RoleAdmin}
	if err := gdb.Create(&admin).Error; err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"user_id": admin.ID, "username": username}).Info("Bootstrap admin created")
	return nil
}
