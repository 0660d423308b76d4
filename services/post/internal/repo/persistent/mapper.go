package persistent

import (
	"seniors/services/post/internal/entity"
	"seniors/services/post/internal/model"
)

func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	post := &entity.Post{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Content:   m.Content,
		LikeCount: m.LikeCount,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}

	if len(m.Media) > 0 {
		post.Media = make([]entity.PostMedia, len(m.Media))
		for i := range m.Media {
			post.Media[i] = ToPostMediaEntity(&m.Media[i])
		}
	}

	return post
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	return &model.PostModel{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Content:   e.Content,
		LikeCount: e.LikeCount,
		IsDeleted: e.IsDeleted,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func ToPostMediaEntity(m *model.PostMediaModel) entity.PostMedia {
	if m == nil {
		return entity.PostMedia{}
	}

	return entity.PostMedia{
		ID:        m.ID,
		PostID:    m.PostID,
		ObjectKey: m.ObjectKey,
		MediaURL:  m.MediaURL,
		CreatedAt: m.CreatedAt,
	}
}

func ToPostMediaModel(e *entity.PostMedia) *model.PostMediaModel {
	if e == nil {
		return nil
	}

	return &model.PostMediaModel{
		ID:        e.ID,
		PostID:    e.PostID,
		ObjectKey: e.ObjectKey,
		MediaURL:  e.MediaURL,
		CreatedAt: e.CreatedAt,
	}
}

func ToUserEntity(m *model.UserModel) entity.User {
	if m == nil {
		return entity.User{}
	}

	return entity.User{
		ID:              m.ID,
		Nickname:        m.Nickname,
		ProfileImageURL: m.ProfileImageURL,
	}
}

// ToPostDetail builds the read projection; comments are included only when
// the model was loaded with them.
func ToPostDetail(m *model.PostModel, withComments bool) *entity.PostDetail {
	if m == nil {
		return nil
	}

	detail := &entity.PostDetail{
		ID:         m.ID,
		Title:      m.Title,
		Content:    m.Content,
		LikeCount:  m.LikeCount,
		Author:     ToUserEntity(&m.User),
		Media:      make([]entity.PostMedia, len(m.Media)),
		CreatedAt:  m.CreatedAt,
		ModifiedAt: m.UpdatedAt,
	}
	detail.Author.ID = m.UserID

	for i := range m.Media {
		detail.Media[i] = ToPostMediaEntity(&m.Media[i])
	}

	if withComments {
		summary := &entity.CommentSummary{
			Count: len(m.Comments),
			Items: make([]entity.Comment, len(m.Comments)),
		}
		for i, c := range m.Comments {
			summary.Items[i] = entity.Comment{
				ID:             c.ID,
				Content:        c.Content,
				AuthorNickname: c.User.Nickname,
				CreatedAt:      c.CreatedAt,
			}
		}
		detail.Comments = summary
	}

	return detail
}
