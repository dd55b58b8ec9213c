package models

import "time"

// Category groups products (table categories). Managed through the admin API.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	Slug        string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
}
