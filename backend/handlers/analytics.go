package handlers

import (
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"logboard/backend/database"
	"logboard/backend/models"
)

type PageLogCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type AnalyticsResponse struct {
	TotalLogs            int64          `json:"totalLogs"`
	ErrorRate            float64        `json:"errorRate"`
	CriticalIssues       int64          `json:"criticalIssues"`
	TopPages             []PageLogCount `json:"topPages"`
	SeverityDistribution map[string]int `json:"severityDistribution"`
}

func emptyAnalytics() AnalyticsResponse {
	dist := make(map[string]int, len(models.Severities))
	for _, s := range models.Severities {
		dist[s] = 0
	}
	return AnalyticsResponse{TopPages: []PageLogCount{}, SeverityDistribution: dist}
}

// GetLogAnalytics aggregates the log table: total count, error rate to one
// decimal, integer-percent severity distribution, and the three pages with
// the most logs. A missing table reads as all zeroes.
func GetLogAnalytics(w http.ResponseWriter, r *http.Request) {
	var total int64
	if err := database.DB.Model(&models.Log{}).Count(&total).Error; err != nil {
		if database.IsMissingTable(err) {
			writeJSON(w, http.StatusOK, emptyAnalytics())
			return
		}
		slog.Error("counting logs", "source", "analytics", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to generate log analytics")
		return
	}
	if total == 0 {
		writeJSON(w, http.StatusOK, emptyAnalytics())
		return
	}

	var bySeverity []struct {
		Severity string
		Count    int64
	}
	if err := database.DB.Model(&models.Log{}).
		Select("severity, count(id) as count").
		Group("severity").
		Scan(&bySeverity).Error; err != nil {
		slog.Error("grouping by severity", "source", "analytics", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to generate log analytics")
		return
	}

	resp := emptyAnalytics()
	resp.TotalLogs = total

	var errorCount, criticalCount int64
	for _, row := range bySeverity {
		if _, known := resp.SeverityDistribution[row.Severity]; known {
			resp.SeverityDistribution[row.Severity] = int(math.Round(float64(row.Count) / float64(total) * 100))
		}
		switch row.Severity {
		case models.SeverityError:
			errorCount = row.Count
		case models.SeverityCritical:
			criticalCount = row.Count
		}
	}
	resp.CriticalIssues = criticalCount
	resp.ErrorRate = math.Round(float64(errorCount+criticalCount)/float64(total)*1000) / 10

	var byPage []struct {
		PageID string
		Count  int64
	}
	if err := database.DB.Model(&models.Log{}).
		Select("page_id, count(id) as count").
		Group("page_id").
		Order("count DESC").
		Limit(3).
		Scan(&byPage).Error; err != nil {
		slog.Error("grouping by page", "source", "analytics", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to generate log analytics")
		return
	}
	for _, row := range byPage {
		name := "Unknown Page"
		var page models.Page
		if err := database.DB.First(&page, "id = ?", row.PageID).Error; err == nil {
			name = page.Emoji + " " + page.Title
		}
		resp.TopPages = append(resp.TopPages, PageLogCount{ID: row.PageID, Name: name, Count: row.Count})
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetLogAnomalies returns the last ten error/critical logs of the past 24
// hours, newest first.
func GetLogAnomalies(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-24 * time.Hour)

	logs := []models.Log{}
	err := database.DB.
		Where("severity IN ?", []string{models.SeverityError, models.SeverityCritical}).
		Where("timestamp >= ?", since).
		Order("timestamp DESC").
		Limit(10).
		Find(&logs).Error
	if err != nil {
		if database.IsMissingTable(err) {
			writeJSON(w, http.StatusOK, []models.Log{})
			return
		}
		slog.Error("detecting anomalies", "source", "analytics", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to detect anomalies")
		return
	}

	for i := range logs {
		if plain, err := box.Decrypt(logs[i].Message); err == nil {
			logs[i].Message = plain
		}
	}
	writeJSON(w, http.StatusOK, logs)
}

type MessagePattern struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// decryptedMessages loads every message body in plaintext. Grouping and
// substring matching run in memory because GCM ciphertexts are
// nonce-unique, so a SQL GROUP BY or LIKE would never match across rows.
func decryptedMessages() ([]string, error) {
	var stored []string
	if err := database.DB.Model(&models.Log{}).Pluck("message", &stored).Error; err != nil {
		return nil, err
	}
	out := make([]string, 0, len(stored))
	for _, s := range stored {
		plain, err := box.Decrypt(s)
		if err != nil {
			plain = s
		}
		out = append(out, plain)
	}
	return out, nil
}

// GetLogPatterns returns the three most common message bodies.
func GetLogPatterns(w http.ResponseWriter, r *http.Request) {
	messages, err := decryptedMessages()
	if err != nil {
		if database.IsMissingTable(err) {
			writeJSON(w, http.StatusOK, []MessagePattern{})
			return
		}
		slog.Error("detecting patterns", "source", "analytics", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to detect patterns")
		return
	}

	counts := make(map[string]int64)
	for _, m := range messages {
		counts[m]++
	}
	patterns := make([]MessagePattern, 0, len(counts))
	for m, c := range counts {
		patterns = append(patterns, MessagePattern{Message: m, Count: c})
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Message < patterns[j].Message
	})
	if len(patterns) > 3 {
		patterns = patterns[:3]
	}
	writeJSON(w, http.StatusOK, patterns)
}

type PerformanceResponse struct {
	SlowQueries int64 `json:"slowQueries"`
	Timeouts    int64 `json:"timeouts"`
	APIDelays   int64 `json:"apiDelays"`
}

// GetLogPerformance counts messages mentioning known slow-path markers.
func GetLogPerformance(w http.ResponseWriter, r *http.Request) {
	messages, err := decryptedMessages()
	if err != nil {
		if database.IsMissingTable(err) {
			writeJSON(w, http.StatusOK, PerformanceResponse{})
			return
		}
		slog.Error("collecting performance metrics", "source", "analytics", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to get performance metrics")
		return
	}

	var resp PerformanceResponse
	for _, m := range messages {
		if strings.Contains(m, "slow query") {
			resp.SlowQueries++
		}
		if strings.Contains(m, "timeout") {
			resp.Timeouts++
		}
		if strings.Contains(m, "API delay") {
			resp.APIDelays++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
