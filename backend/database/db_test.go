package database

import (
	"errors"
	"testing"

	"logboard/backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	var err error
	DB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := DB.AutoMigrate(&models.User{}, &models.Page{}, &models.Log{}); err != nil {
		t.Fatal(err)
	}
}

func TestSeedUser_Idempotent(t *testing.T) {
	setupTestDB(t)

	first, err := SeedUser()
	if err != nil {
		t.Fatal(err)
	}
	second, err := SeedUser()
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected the same user, got %q and %q", first.ID, second.ID)
	}
	var count int64
	DB.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly 1 user, got %d", count)
	}
}

func TestSeedUser_PasswordIsHashed(t *testing.T) {
	setupTestDB(t)

	user, err := SeedUser()
	if err != nil {
		t.Fatal(err)
	}
	if user.Password == seedUserPassword {
		t.Error("Password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(seedUserPassword)) != nil {
		t.Error("Stored hash does not verify")
	}
}

func TestSystemPage_Idempotent(t *testing.T) {
	setupTestDB(t)
	user, err := SeedUser()
	if err != nil {
		t.Fatal(err)
	}

	first, err := SystemPage(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := SystemPage(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("Expected the same page, got %q and %q", first.ID, second.ID)
	}
}

func TestErrorClassifiers(t *testing.T) {
	// Missing table straight from the driver
	var err error
	DB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	var pages []models.Page
	missing := DB.Find(&pages).Error
	if !IsMissingTable(missing) {
		t.Errorf("Expected missing-table classification, got %v", missing)
	}
	if IsForeignKeyViolation(missing) {
		t.Error("Missing table misclassified as FK violation")
	}

	if !IsNotFound(gorm.ErrRecordNotFound) {
		t.Error("gorm.ErrRecordNotFound not classified as not found")
	}
	if IsMissingTable(nil) || IsForeignKeyViolation(nil) {
		t.Error("nil error misclassified")
	}
	if IsNotFound(errors.New("boom")) {
		t.Error("Generic error misclassified as not found")
	}
}
