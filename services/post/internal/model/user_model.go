package model

import (
	"time"
)

type UserModel struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Nickname        string    `gorm:"type:varchar(30);not null" json:"nickname"`
	ProfileImageURL string    `gorm:"type:varchar(500)" json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}
