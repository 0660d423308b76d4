package model

import (
	"time"
)

// PostLikeModel is one user's like state on one post; (post_id, user_id) is unique.
type PostLikeModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint64    `gorm:"not null;uniqueIndex:idx_post_likes_post_user" json:"post_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_post_likes_post_user" json:"user_id"`
	Status    bool      `gorm:"not null;default:false" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PostLikeModel) TableName() string {
	return "post_likes"
}
