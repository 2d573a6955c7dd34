// Package testutil provides in-process database and cache fixtures for package tests.
package testutil

import (
	"exam_system/internal/db"
	"exam_system/internal/domain"
	"exam_system/internal/utils"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory SQLite database with the full schema migrated
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Connect(sqlite.Open(":memory:"), logger.Silent)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every connection to ":memory:" is a separate database, so pin the pool to one
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return gdb
}

// SetupTestRedis starts an in-process Redis server and returns a client connected to it
func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// CreateUser inserts a user with the given role and password
func CreateUser(t *testing.T, gdb *gorm.DB, username, role, password string) *domain.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &domain.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: hash,
		Role:           role,
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// CreateExam inserts an exam owned by ownerID with questionCount questions of choiceCount choices each
func CreateExam(t *testing.T, gdb *gorm.DB, ownerID uint, title string, questionCount, choiceCount int) *domain.Exam {
	t.Helper()

	exam := &domain.Exam{Title: title, Description: title + " description", OwnerID: ownerID}
	if err := gdb.Create(exam).Error; err != nil {
		t.Fatalf("Failed to create exam: %v", err)
	}
	for i := 0; i < questionCount; i++ {
		q := &domain.Question{QuestionText: "question", ExamID: exam.ID, IsMultipleChoice: true}
		for j := 0; j < choiceCount; j++ {
			q.Choices = append(q.Choices, domain.Choice{ChoiceText: "choice", IsCorrect: j == 0})
		}
		if err := gdb.Create(q).Error; err != nil {
			t.Fatalf("Failed to create question: %v", err)
		}
		exam.Questions = append(exam.Questions, *q)
	}
	return exam
}

// Count returns the number of rows of model matching the optional where clause
func Count(t *testing.T, gdb *gorm.DB, model any, where ...any) int64 {
	t.Helper()

	var n int64
	q := gdb.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	return n
}
