package models

import "time"

// Follow is a directed edge: FollowerID receives FollowingID's posts in their feed.
type Follow struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	FollowerID  uint         `gorm:"not null;uniqueIndex:idx_follower_following,priority:1;check:chk_follows_not_self,follower_id <> following_id" json:"followerId"`
	FollowingID uint         `gorm:"not null;uniqueIndex:idx_follower_following,priority:2;index" json:"followingId"`
	Follower    *UserSummary `gorm:"foreignKey:FollowerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Following   *UserSummary `gorm:"foreignKey:FollowingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
}
