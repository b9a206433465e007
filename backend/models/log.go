package models

import (
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityDebug    = "debug"
	SeverityCritical = "critical"
)

// Severities is the closed set accepted by the API. Membership only;
// there is no ordinal ranking between levels.
var Severities = []string{SeverityInfo, SeverityWarning, SeverityError, SeverityDebug, SeverityCritical}

func ValidSeverity(s string) bool {
	for _, v := range Severities {
		if s == v {
			return true
		}
	}
	return false
}

type Log struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	Severity  string    `json:"severity" gorm:"index;not null"`
	Message   string    `json:"message"` // AES-GCM + base64 at rest when encryption is enabled
	PageID    string    `json:"pageId" gorm:"index;not null"`
	Page      *Page     `json:"page,omitempty" gorm:"foreignKey:PageID"`
	UserID    string    `json:"userId" gorm:"not null"`
	Data      string    `json:"data,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = xid.New().String()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	return nil
}
