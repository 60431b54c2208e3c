package models

import "time"

// Post is a text post with an optional image. Likes is a plain counter with
// no per-user tracking.
type Post struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;index" json:"authorId"`
	Author    *UserSummary `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author,omitempty"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	ImageURL  *string      `gorm:"size:2048" json:"imageUrl"`
	Likes     int          `gorm:"not null;default:0" json:"likes"`
	IsActive  bool         `gorm:"not null;default:true;index" json:"isActive"`
	Comments  []Comment    `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
