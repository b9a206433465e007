package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"logboard/backend/database"
	"logboard/backend/models"

	"gorm.io/gorm"
)

type pageRequest struct {
	Title string `json:"title"`
	Emoji string `json:"emoji"`
}

// ListPages returns all pages, newest first. A missing table reads as an
// empty collection, not an error.
func ListPages(w http.ResponseWriter, r *http.Request) {
	pages := []models.Page{}
	if err := database.DB.Order("created_at DESC").Find(&pages).Error; err != nil {
		if database.IsMissingTable(err) {
			writeJSON(w, http.StatusOK, []models.Page{})
			return
		}
		slog.Error("listing pages", "source", "pages", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to fetch pages")
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

func CreatePage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" || req.Emoji == "" {
		writeError(w, http.StatusBadRequest, "title and emoji are required")
		return
	}

	user, err := database.SeedUser()
	if err != nil {
		slog.Error("resolving owner user", "source", "pages", "error", err.Error())
		if database.IsMissingTable(err) {
			writeError(w, http.StatusInternalServerError, "database not initialized")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create page")
		return
	}

	page := models.Page{Title: req.Title, Emoji: req.Emoji, UserID: user.ID}
	if err := database.DB.Create(&page).Error; err != nil {
		slog.Error("creating page", "source", "pages", "error", err.Error())
		switch {
		case database.IsForeignKeyViolation(err):
			writeError(w, http.StatusBadRequest, "referenced user does not exist")
		case database.IsMissingTable(err):
			writeError(w, http.StatusInternalServerError, "database not initialized")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create page")
		}
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func GetPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var page models.Page
	if err := database.DB.First(&page, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) || database.IsMissingTable(err) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		slog.Error("fetching page", "source", "pages", "id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to fetch page")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func UpdatePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" || req.Emoji == "" {
		writeError(w, http.StatusBadRequest, "title and emoji are required")
		return
	}

	var page models.Page
	if err := database.DB.First(&page, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) || database.IsMissingTable(err) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		slog.Error("fetching page for update", "source", "pages", "id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to update page")
		return
	}

	page.Title = req.Title
	page.Emoji = req.Emoji
	if err := database.DB.Save(&page).Error; err != nil {
		slog.Error("updating page", "source", "pages", "id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to update page")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// DeletePage removes a page and its logs. The cascade is explicit in the
// transaction rather than a DB-level ON DELETE so the behavior is visible
// here; orphaned logs would skew every aggregate.
func DeletePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var page models.Page
	if err := database.DB.First(&page, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) || database.IsMissingTable(err) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		slog.Error("fetching page for delete", "source", "pages", "id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to delete page")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", page.ID).Delete(&models.Log{}).Error; err != nil && !database.IsMissingTable(err) {
			return err
		}
		return tx.Delete(&page).Error
	})
	if err != nil {
		slog.Error("deleting page", "source", "pages", "id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to delete page")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAllPages removes every page owned by the fixed user, and their
// logs. Absent tables (or no seed user yet) count as already deleted.
func DeleteAllPages(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := database.DB.Where("email = ?", database.SeedUserEmail).First(&user).Error; err != nil {
		if database.IsNotFound(err) || database.IsMissingTable(err) {
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
		slog.Error("resolving owner user", "source", "pages", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to delete pages")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		pageIDs := tx.Model(&models.Page{}).Select("id").Where("user_id = ?", user.ID)
		if err := tx.Where("page_id IN (?)", pageIDs).Delete(&models.Log{}).Error; err != nil && !database.IsMissingTable(err) {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Page{}).Error; err != nil && !database.IsMissingTable(err) {
			return err
		}
		return nil
	})
	if err != nil {
		slog.Error("deleting all pages", "source", "pages", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to delete pages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
