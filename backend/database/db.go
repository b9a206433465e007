package database

import (
	"errors"
	"strings"

	"logboard/backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

// Fixed owner identity: every page and log is attributed to this user
// until real multi-user auth exists.
const (
	SeedUserEmail = "test@example.com"
	SeedUserName  = "Test User"

	seedUserPassword = "password123"

	SystemPageTitle = "System"
	SystemPageEmoji = "\U0001F4DF" // 📟
)

func Init(path string) error {
	dsn := path
	if path != ":memory:" && !strings.Contains(path, "?") {
		dsn = path + "?_foreign_keys=on"
	}
	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}
	return DB.AutoMigrate(&models.User{}, &models.Page{}, &models.Log{})
}

// SeedUser returns the fixed owner user, creating it if absent. The insert
// is ON CONFLICT DO NOTHING on the email unique index, so concurrent first
// requests converge on a single row instead of racing check-then-create.
func SeedUser() (*models.User, error) {
	var user models.User
	err := DB.Where("email = ?", SeedUserEmail).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	seed := models.User{
		Name:     SeedUserName,
		Email:    SeedUserEmail,
		Password: string(hash),
		Role:     "user",
	}
	if err := DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return nil, err
	}

	// Re-read: on conflict the row that won is not ours.
	if err := DB.Where("email = ?", SeedUserEmail).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SystemPage returns the page that server-emitted logs attach to,
// creating it if absent. Called once at startup, before the slog
// handler is swapped in.
func SystemPage(userID string) (*models.Page, error) {
	var page models.Page
	err := DB.Where("user_id = ? AND title = ?", userID, SystemPageTitle).First(&page).Error
	if err == nil {
		return &page, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	page = models.Page{Title: SystemPageTitle, Emoji: SystemPageEmoji, UserID: userID}
	if err := DB.Create(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// IsMissingTable reports whether err is sqlite's schema-not-initialized
// condition. Reads treat it as an empty result; writes surface it.
func IsMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// IsForeignKeyViolation reports whether err is a referential-integrity
// failure, surfaced distinctly so handlers can return 400 instead of 500.
func IsForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
