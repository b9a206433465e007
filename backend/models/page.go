package models

import (
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

// Page is a user-defined tab (emoji + title) that logs attach to.
type Page struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	Emoji     string    `json:"emoji" gorm:"not null"`
	UserID    string    `json:"userId" gorm:"index;not null"`
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Page) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = xid.New().String()
	}
	return nil
}
