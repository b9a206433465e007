package logger

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"logboard/backend/models"

	"gorm.io/gorm"
)

// DBHandler tees slog records to stdout JSON and persists each one as a
// Log row under the seeded System page, so the server's own output shows
// up in the dashboard it serves.
type DBHandler struct {
	db          *gorm.DB
	jsonHandler slog.Handler
	attrs       []slog.Attr
	pageID      string
	userID      string
}

func NewDBHandler(db *gorm.DB, pageID, userID string) *DBHandler {
	return &DBHandler{
		db:          db,
		jsonHandler: slog.NewJSONHandler(os.Stdout, nil),
		attrs:       []slog.Attr{},
		pageID:      pageID,
		userID:      userID,
	}
}

// severityFor maps slog levels onto the API's severity set. Nothing the
// server emits maps to "critical".
func severityFor(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return models.SeverityDebug
	case l < slog.LevelWarn:
		return models.SeverityInfo
	case l < slog.LevelError:
		return models.SeverityWarning
	default:
		return models.SeverityError
	}
}

func (h *DBHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *DBHandler) Handle(ctx context.Context, r slog.Record) error {
	// Write to stdout
	_ = h.jsonHandler.Handle(ctx, r)

	attrs := make(map[string]any)
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	var data string
	if len(attrs) > 0 {
		b, _ := json.Marshal(attrs)
		data = string(b)
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	entry := models.Log{
		Timestamp: ts,
		Severity:  severityFor(r.Level),
		Message:   r.Message,
		PageID:    h.pageID,
		UserID:    h.userID,
		Data:      data,
	}

	return h.db.Create(&entry).Error
}

func (h *DBHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &DBHandler{
		db:          h.db,
		jsonHandler: h.jsonHandler,
		attrs:       newAttrs,
		pageID:      h.pageID,
		userID:      h.userID,
	}
}

func (h *DBHandler) WithGroup(name string) slog.Handler {
	return h
}

// CleanupOldLogs removes server-emitted logs older than maxAge on an
// hourly sweep. Scoped to the System page: user-ingested logs are never
// expired.
func CleanupOldLogs(db *gorm.DB, pageID string, maxAge time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	for range ticker.C {
		cutoff := time.Now().Add(-maxAge)
		db.Where("page_id = ? AND created_at < ?", pageID, cutoff).Delete(&models.Log{})
	}
}
