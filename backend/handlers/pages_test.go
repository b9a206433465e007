package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"logboard/backend/config"
	"logboard/backend/database"
	"logboard/backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	var err error
	database.DB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := database.DB.AutoMigrate(&models.User{}, &models.Page{}, &models.Log{}); err != nil {
		t.Fatal(err)
	}
	config.C = config.Config{AESSecret: "test-secret"}
	if err := InitCrypto(); err != nil {
		t.Fatal(err)
	}
}

// setupEmptyDB opens a database without running migrations, to exercise
// the missing-table paths.
func setupEmptyDB(t *testing.T) {
	t.Helper()
	var err error
	database.DB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	config.C = config.Config{AESSecret: "test-secret"}
	if err := InitCrypto(); err != nil {
		t.Fatal(err)
	}
}

func createTestPage(t *testing.T, title, emoji string) models.Page {
	t.Helper()
	user, err := database.SeedUser()
	if err != nil {
		t.Fatal(err)
	}
	page := models.Page{Title: title, Emoji: emoji, UserID: user.ID}
	if err := database.DB.Create(&page).Error; err != nil {
		t.Fatal(err)
	}
	return page
}

func TestCreatePage_RequiresTitleAndEmoji(t *testing.T) {
	setupTestDB(t)

	bodies := []string{
		`{"title":"","emoji":"🚀"}`,
		`{"title":"Deploys","emoji":""}`,
		`{}`,
	}
	for _, body := range bodies {
		req := httptest.NewRequest("POST", "/pages", strings.NewReader(body))
		rec := httptest.NewRecorder()

		CreatePage(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for body %s, got %d", body, rec.Code)
		}
	}

	var count int64
	database.DB.Model(&models.Page{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no pages persisted, found %d", count)
	}
}

func TestCreatePage_Success(t *testing.T) {
	setupTestDB(t)

	req := httptest.NewRequest("POST", "/pages", strings.NewReader(`{"title":"Deploys","emoji":"🚀"}`))
	rec := httptest.NewRecorder()

	CreatePage(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var page models.Page
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.ID == "" || page.Title != "Deploys" || page.Emoji != "🚀" {
		t.Errorf("Unexpected page in response: %+v", page)
	}

	// Owner user is created lazily, exactly once
	var users int64
	database.DB.Model(&models.User{}).Count(&users)
	if users != 1 {
		t.Errorf("Expected 1 seed user, got %d", users)
	}
}

func TestListPages_NewestFirst(t *testing.T) {
	setupTestDB(t)

	older := createTestPage(t, "Older", "🌑")
	database.DB.Model(&older).Update("created_at", time.Now().Add(-time.Hour))
	createTestPage(t, "Newer", "🌕")

	req := httptest.NewRequest("GET", "/pages", nil)
	rec := httptest.NewRecorder()

	ListPages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var pages []models.Page
	if err := json.NewDecoder(rec.Body).Decode(&pages); err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}
	if pages[0].Title != "Newer" {
		t.Errorf("Expected newest page first, got %q", pages[0].Title)
	}
}

func TestListPages_MissingTableReturnsEmptyArray(t *testing.T) {
	setupEmptyDB(t)

	req := httptest.NewRequest("GET", "/pages", nil)
	rec := httptest.NewRecorder()

	ListPages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("Expected empty array, got %s", body)
	}
}

func TestGetPage_NotFound(t *testing.T) {
	setupTestDB(t)

	req := httptest.NewRequest("GET", "/pages/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()

	GetPage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestUpdatePage(t *testing.T) {
	setupTestDB(t)
	page := createTestPage(t, "Before", "🌱")

	req := httptest.NewRequest("PUT", "/pages/"+page.ID, strings.NewReader(`{"title":"After","emoji":"🌳"}`))
	req.SetPathValue("id", page.ID)
	rec := httptest.NewRecorder()

	UpdatePage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated models.Page
	database.DB.First(&updated, "id = ?", page.ID)
	if updated.Title != "After" || updated.Emoji != "🌳" {
		t.Errorf("Update not persisted: %+v", updated)
	}
}

func TestUpdatePage_NotFound(t *testing.T) {
	setupTestDB(t)

	req := httptest.NewRequest("PUT", "/pages/nope", strings.NewReader(`{"title":"T","emoji":"🌳"}`))
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()

	UpdatePage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestDeletePage_NotFound(t *testing.T) {
	setupTestDB(t)

	req := httptest.NewRequest("DELETE", "/pages/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()

	DeletePage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestDeletePage_CascadesToLogs(t *testing.T) {
	setupTestDB(t)
	page := createTestPage(t, "Doomed", "💣")
	user, _ := database.SeedUser()
	database.DB.Create(&models.Log{Message: "x", Severity: models.SeverityInfo, PageID: page.ID, UserID: user.ID})

	req := httptest.NewRequest("DELETE", "/pages/"+page.ID, nil)
	req.SetPathValue("id", page.ID)
	rec := httptest.NewRecorder()

	DeletePage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var logs int64
	database.DB.Model(&models.Log{}).Where("page_id = ?", page.ID).Count(&logs)
	if logs != 0 {
		t.Errorf("Expected dependent logs removed, found %d", logs)
	}
}

func TestDeleteAllPages_ThenListEmpty(t *testing.T) {
	setupTestDB(t)
	createTestPage(t, "One", "1️⃣")
	createTestPage(t, "Two", "2️⃣")

	req := httptest.NewRequest("DELETE", "/pages/delete-all", nil)
	rec := httptest.NewRecorder()

	DeleteAllPages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	listReq := httptest.NewRequest("GET", "/pages", nil)
	listRec := httptest.NewRecorder()
	ListPages(listRec, listReq)

	if body := strings.TrimSpace(listRec.Body.String()); body != "[]" {
		t.Errorf("Expected empty array after delete-all, got %s", body)
	}
}

func TestDeleteAllPages_MissingTableIsSuccess(t *testing.T) {
	setupEmptyDB(t)

	req := httptest.NewRequest("DELETE", "/pages/delete-all", nil)
	rec := httptest.NewRecorder()

	DeleteAllPages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("Expected success body, got %s", rec.Body.String())
	}
}
