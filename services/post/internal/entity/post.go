package entity

import (
	"fmt"
	"io"
	"time"
)

const MaxMediaPerPost = 10

type Post struct {
	ID        uint64      `json:"id"`
	UserID    uint64      `json:"user_id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	LikeCount int         `json:"like_count"`
	IsDeleted bool        `json:"-"`
	Media     []PostMedia `json:"media,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewPost returns a post in its initial state: no likes, not deleted.
func NewPost(title, content string, userID uint64) *Post {
	return &Post{
		UserID:    userID,
		Title:     title,
		Content:   content,
		LikeCount: 0,
		IsDeleted: false,
	}
}

type PostMedia struct {
	ID        uint64    `json:"id"`
	PostID    uint64    `json:"post_id"`
	ObjectKey string    `json:"-"`
	MediaURL  string    `json:"media_url"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID              uint64 `json:"id"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url"`
}

// PostDetail is the read projection of a post.
type PostDetail struct {
	ID         uint64          `json:"id"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	LikeCount  int             `json:"like_count"`
	Author     User            `json:"author"`
	Media      []PostMedia     `json:"media"`
	Comments   *CommentSummary `json:"comments,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	ModifiedAt time.Time       `json:"modified_at"`
}

type CommentSummary struct {
	Count int       `json:"count"`
	Items []Comment `json:"items"`
}

type Comment struct {
	ID             uint64    `json:"id"`
	Content        string    `json:"content"`
	AuthorNickname string    `json:"author_nickname"`
	CreatedAt      time.Time `json:"created_at"`
}

// MediaFile is an uploaded file not yet stored.
type MediaFile struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// PostInput carries the editable fields of create and modify.
type PostInput struct {
	Title   string      `json:"title" validate:"notblank,max=50"`
	Content string      `json:"content" validate:"notblank"`
	Files   []MediaFile `json:"files" validate:"max=10"`
}

// MediaPrefix is the object storage namespace of a post's files.
func MediaPrefix(postID uint64) string {
	return fmt.Sprintf("posts/media/%d/", postID)
}
