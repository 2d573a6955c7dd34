package main

import (
	"exam_system/internal/config" // Custom import path (Config)
	"exam_system/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}
	logrus.Info("Database migration completed") // Log success

	// Bootstrap admin from ADMIN_USERNAME / ADMIN_EMAIL / ADMIN_PASSWORD
	if err := db.SeedAdmin(gdb, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}
}
