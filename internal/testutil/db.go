// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"socialhub/internal/database"
	"socialhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory sqlite database with the full schema.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// FakeUser builds an unsaved user with random identity fields.
func FakeUser() *models.User {
	name := strings.ToLower(gofakeit.Username())
	if len(name) > 20 {
		name = name[:20]
	}
	return &models.User{
		Username: fmt.Sprintf("%s%d", name, gofakeit.Number(1000, 999999)),
		Email:    fmt.Sprintf("%d.%s", gofakeit.Number(1000, 999999), gofakeit.Email()),
		Password: "$2a$10$placeholderhashplaceholderhashplaceholderhash000",
		FullName: gofakeit.Name(),
		Bio:      gofakeit.Sentence(8),
	}
}

// CreateUser inserts a fake user.
func CreateUser(t testing.TB, db *gorm.DB) *models.User {
	t.Helper()
	u := FakeUser()
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
