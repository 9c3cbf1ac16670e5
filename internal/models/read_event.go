package models

import (
	"time"
)

// ReadEvent is one append-only reading checkpoint (scroll depth + time
// spent). Multiple rows per reader+post are expected; nothing is ever
// merged or upserted, so max-completion stays derivable from the full
// history. Exactly one of UserID / AnonID identifies the reader: UserID
// for authenticated sessions, AnonID (a client-supplied opaque token,
// stored verbatim) for anonymous ones.
type ReadEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AnonID    string    `gorm:"size:255;index" json:"anon_id"`
	IPAddress string    `gorm:"size:45;index" json:"ip_address"` // IPv4/IPv6
	UserAgent string    `gorm:"size:500" json:"user_agent"`
	Percent   int       `json:"percent"` // scroll depth, clamped to 0-100
	Seconds   int       `json:"seconds"` // time spent, clamped to >= 0
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
