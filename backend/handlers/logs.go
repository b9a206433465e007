package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"logboard/backend/database"
	"logboard/backend/models"
)

type logRequest struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	PageID   string `json:"pageId"`
}

// ListLogs returns logs matching the optional pageId/severity filters,
// newest first, each with its owning page preloaded. Messages are
// decrypted before they leave the server.
func ListLogs(w http.ResponseWriter, r *http.Request) {
	q := database.DB.Preload("Page").Order("timestamp DESC")

	if pageID := r.URL.Query().Get("pageId"); pageID != "" {
		q = q.Where("page_id = ?", pageID)
	}
	if severity := r.URL.Query().Get("severity"); severity != "" {
		q = q.Where("severity = ?", severity)
	}

	logs := []models.Log{}
	if err := q.Find(&logs).Error; err != nil {
		if database.IsMissingTable(err) {
			writeJSON(w, http.StatusOK, []models.Log{})
			return
		}
		slog.Error("listing logs", "source", "logs", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to fetch logs")
		return
	}

	for i := range logs {
		if plain, err := box.Decrypt(logs[i].Message); err == nil {
			logs[i].Message = plain
		}
	}
	writeJSON(w, http.StatusOK, logs)
}

func CreateLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" || req.Severity == "" || req.PageID == "" {
		writeError(w, http.StatusBadRequest, "message, severity, and pageId are required")
		return
	}
	if !models.ValidSeverity(req.Severity) {
		writeError(w, http.StatusBadRequest, "severity must be one of: "+strings.Join(models.Severities, ", "))
		return
	}

	user, err := database.SeedUser()
	if err != nil {
		slog.Error("resolving owner user", "source", "logs", "error", err.Error())
		if database.IsMissingTable(err) {
			writeError(w, http.StatusInternalServerError, "database not initialized")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create log")
		return
	}

	// Explicit pre-check so a bad pageId is a clean client error. The FK
	// constraint below still backstops a page deleted in between.
	var page models.Page
	if err := database.DB.First(&page, "id = ?", req.PageID).Error; err != nil {
		if database.IsNotFound(err) {
			writeError(w, http.StatusBadRequest, "referenced page does not exist")
			return
		}
		if database.IsMissingTable(err) {
			writeError(w, http.StatusInternalServerError, "database not initialized")
			return
		}
		slog.Error("checking page", "source", "logs", "pageId", req.PageID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to create log")
		return
	}

	stored, err := box.Encrypt(req.Message)
	if err != nil {
		slog.Error("encrypting message", "source", "logs", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to create log")
		return
	}

	entry := models.Log{
		Message:  stored,
		Severity: req.Severity,
		PageID:   req.PageID,
		UserID:   user.ID,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		slog.Error("creating log", "source", "logs", "error", err.Error())
		switch {
		case database.IsForeignKeyViolation(err):
			writeError(w, http.StatusBadRequest, "referenced page or user does not exist")
		case database.IsMissingTable(err):
			writeError(w, http.StatusInternalServerError, "database not initialized")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create log")
		}
		return
	}

	// Respond with the plaintext the caller sent, not the stored form.
	entry.Message = req.Message
	writeJSON(w, http.StatusCreated, entry)
}

func DeleteLog(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var entry models.Log
	if err := database.DB.First(&entry, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) || database.IsMissingTable(err) {
			writeError(w, http.StatusNotFound, "log not found")
			return
		}
		slog.Error("fetching log for delete", "source", "logs", "id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to delete log")
		return
	}

	if err := database.DB.Delete(&entry).Error; err != nil {
		slog.Error("deleting log", "source", "logs", "id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to delete log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
