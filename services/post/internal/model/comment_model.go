package model

import (
	"time"
)

type CommentModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint64    `gorm:"not null;index" json:"post_id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      UserModel `gorm:"foreignKey:UserID" json:"user"`
}

func (CommentModel) TableName() string {
	return "comments"
}
