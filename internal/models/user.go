// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents an account. Rows are never physically removed; IsActive
// is the soft-delete flag, so unique indexes cover deactivated accounts too.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	FirstName      string    `gorm:"size:50" json:"firstName"`
	LastName       string    `gorm:"size:50" json:"lastName"`
	Bio            string    `gorm:"type:text" json:"bio"`
	ProfilePicture string    `gorm:"size:2048" json:"profilePicture"`
	IsActive       bool      `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Summary returns the public author view of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
	}
}

// UserSummary is the author/follower view of a user. It maps onto the users
// table so it can be preloaded directly as a post, comment or follow association.
type UserSummary struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ProfilePicture string `json:"profilePicture"`
}

// TableName returns the database table name for UserSummary.
func (UserSummary) TableName() string {
	return "users"
}

// UserCard is the listing view used by search and discovery.
type UserCard struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

// TableName returns the database table name for UserCard.
func (UserCard) TableName() string {
	return "users"
}

// Profile is the public profile page of a user.
type Profile struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	FollowersCount int64     `json:"followersCount"`
	FollowingCount int64     `json:"followingCount"`
	PostCount      int64     `json:"postCount"`
	Posts          []Post    `json:"posts"`
}
