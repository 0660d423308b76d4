package model

import (
	"time"
)

type PostModel struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64           `gorm:"not null;index" json:"user_id"`
	Title     string           `gorm:"type:varchar(50);not null" json:"title"`
	Content   string           `gorm:"type:text;not null" json:"content"`
	LikeCount int              `gorm:"not null;default:0;check:like_count >= 0" json:"like_count"`
	IsDeleted bool             `gorm:"not null;default:false;index" json:"is_deleted"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	User      UserModel        `gorm:"foreignKey:UserID" json:"user"`
	Media     []PostMediaModel `gorm:"foreignKey:PostID" json:"media,omitempty"`
	Comments  []CommentModel   `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

func (PostModel) TableName() string {
	return "posts"
}

type PostMediaModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint64    `gorm:"not null;index" json:"post_id"`
	ObjectKey string    `gorm:"type:varchar(500);not null" json:"object_key"`
	MediaURL  string    `gorm:"type:varchar(1000);not null" json:"media_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostMediaModel) TableName() string {
	return "post_media"
}
