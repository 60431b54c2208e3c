package models

import "time"

// Comment belongs to a post and its author.
type Comment struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;index" json:"authorId"`
	Author    *UserSummary `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author,omitempty"`
	PostID    uint         `gorm:"not null;index" json:"postId"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	IsActive  bool         `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
