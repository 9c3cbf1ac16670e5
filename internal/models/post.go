package models

import (
	"time"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

type Post struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Slug          string     `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Title         string     `gorm:"size:500;not null" json:"title"`
	MonthKey      string     `gorm:"size:7;not null;index" json:"month_key"` // e.g. "2026-01"
	Status        string     `gorm:"size:20;default:'draft';index" json:"status"`
	IsFeatured    bool       `gorm:"default:false;index" json:"is_featured"`
	HeroImagePath string     `gorm:"size:500" json:"hero_image_path"`
	HTMLContent   string     `gorm:"type:text" json:"html_content"`
	Excerpt       string     `gorm:"size:500" json:"excerpt"`
	Category      string     `gorm:"size:100" json:"category"`
	ReadTime      int        `json:"read_time"` // estimated minutes
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (p *Post) Published() bool {
	return p.Status == PostStatusPublished
}
