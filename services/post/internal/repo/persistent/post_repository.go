package persistent

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"seniors/services/post/internal/entity"
	"seniors/services/post/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	// Transaction runs fn against a repository bound to one read-write transaction.
	Transaction(ctx context.Context, fn func(repo PostRepository) error) error
	// ReadTransaction runs fn inside a read-only transaction.
	ReadTransaction(ctx context.Context, fn func(repo PostRepository) error) error

	Create(ctx context.Context, post *entity.Post) error
	Exists(ctx context.Context, id uint64) (bool, error)
	OwnerOf(ctx context.Context, id uint64) (uint64, error)
	GetDetail(ctx context.Context, id uint64) (*entity.PostDetail, error)
	List(ctx context.Context, page, size int) ([]*entity.PostDetail, int64, error)
	UpdateContent(ctx context.Context, id, userID uint64, title, content string) (int64, error)
	SoftDelete(ctx context.Context, id, userID uint64) (int64, error)

	ListMedia(ctx context.Context, postID uint64) ([]entity.PostMedia, error)
	AddMedia(ctx context.Context, media []*entity.PostMedia) error
	DeleteMedia(ctx context.Context, postID uint64) (int64, error)
	DeleteComments(ctx context.Context, postID uint64) (int64, error)

	SetLikeStatus(ctx context.Context, postID, userID uint64, liked bool) (int64, error)
	AdjustLikeCount(ctx context.Context, postID uint64, liked bool) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// activePosts is the soft-delete predicate every read of posts applies.
func activePosts(db *gorm.DB) *gorm.DB {
	return db.Where("posts.is_deleted = ?", false)
}

func mediaByID(db *gorm.DB) *gorm.DB {
	return db.Order("post_media.id ASC")
}

func (r *postRepository) Transaction(ctx context.Context, fn func(repo PostRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&postRepository{db: tx})
	})
}

func (r *postRepository) ReadTransaction(ctx context.Context, fn func(repo PostRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&postRepository{db: tx})
	}, &sql.TxOptions{ReadOnly: true})
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	postModel := ToPostModel(post)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(postModel).Error; err != nil {
		return err
	}

	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Scopes(activePosts).
		Where("posts.id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *postRepository) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var postModel model.PostModel
	err := r.db.WithContext(ctx).
		Select("id", "user_id").
		Scopes(activePosts).
		Where("posts.id = ?", id).
		Take(&postModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, entity.ErrInvalidPost
	}
	if err != nil {
		return 0, err
	}
	return postModel.UserID, nil
}

func (r *postRepository) GetDetail(ctx context.Context, id uint64) (*entity.PostDetail, error) {
	var postModel model.PostModel
	err := r.db.WithContext(ctx).
		Scopes(activePosts).
		Preload("User").
		Preload("Media", mediaByID).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		Preload("Comments.User").
		Where("posts.id = ?", id).
		Take(&postModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrInvalidPost
	}
	if err != nil {
		return nil, err
	}
	return ToPostDetail(&postModel, true), nil
}

func (r *postRepository) List(ctx context.Context, page, size int) ([]*entity.PostDetail, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.PostModel{}).Scopes(activePosts).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var postModels []model.PostModel
	err := r.db.WithContext(ctx).
		Scopes(activePosts).
		Preload("User").
		Preload("Media", mediaByID).
		Order("posts.id DESC").
		Limit(size).
		Offset(page * size).
		Find(&postModels).Error
	if err != nil {
		return nil, 0, err
	}

	posts := make([]*entity.PostDetail, len(postModels))
	for i := range postModels {
		posts[i] = ToPostDetail(&postModels[i], false)
	}
	return posts, total, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, id, userID uint64, title, content string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		Updates(map[string]interface{}{
			"title":   title,
			"content": content,
		})
	return res.RowsAffected, res.Error
}

func (r *postRepository) SoftDelete(ctx context.Context, id, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		Update("is_deleted", true)
	return res.RowsAffected, res.Error
}

func (r *postRepository) ListMedia(ctx context.Context, postID uint64) ([]entity.PostMedia, error) {
	var mediaModels []model.PostMediaModel
	if err := r.db.WithContext(ctx).Scopes(mediaByID).Where("post_id = ?", postID).Find(&mediaModels).Error; err != nil {
		return nil, err
	}

	media := make([]entity.PostMedia, len(mediaModels))
	for i := range mediaModels {
		media[i] = ToPostMediaEntity(&mediaModels[i])
	}
	return media, nil
}

func (r *postRepository) AddMedia(ctx context.Context, media []*entity.PostMedia) error {
	if len(media) == 0 {
		return nil
	}

	mediaModels := make([]*model.PostMediaModel, len(media))
	for i, m := range media {
		mediaModels[i] = ToPostMediaModel(m)
	}

	if err := r.db.WithContext(ctx).Create(&mediaModels).Error; err != nil {
		return err
	}

	for i := range media {
		*media[i] = ToPostMediaEntity(mediaModels[i])
	}
	return nil
}

func (r *postRepository) DeleteMedia(ctx context.Context, postID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.PostMediaModel{})
	return res.RowsAffected, res.Error
}

func (r *postRepository) DeleteComments(ctx context.Context, postID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.CommentModel{})
	return res.RowsAffected, res.Error
}

// SetLikeStatus moves the (post, user) like row to liked and reports how many
// rows changed. Zero means the row was already in that state, or for an
// unlike, that there was nothing to unlike.
func (r *postRepository) SetLikeStatus(ctx context.Context, postID, userID uint64, liked bool) (int64, error) {
	db := r.db.WithContext(ctx)

	if liked {
		like := &model.PostLikeModel{PostID: postID, UserID: userID, Status: true}
		res := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":     true,
				"updated_at": time.Now(),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{Column: clause.Column{Table: "post_likes", Name: "status"}, Value: false},
			}},
		}).Create(like)
		return res.RowsAffected, res.Error
	}

	res := db.Model(&model.PostLikeModel{}).
		Where("post_id = ? AND user_id = ? AND status = ?", postID, userID, true).
		Update("status", false)
	return res.RowsAffected, res.Error
}

// AdjustLikeCount adds one like, or removes one without going below zero.
func (r *postRepository) AdjustLikeCount(ctx context.Context, postID uint64, liked bool) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Where("id = ? AND is_deleted = ?", postID, false)

	expr := gorm.Expr("like_count + ?", 1)
	if !liked {
		query = query.Where("like_count > ?", 0)
		expr = gorm.Expr("like_count - ?", 1)
	}

	res := query.UpdateColumn("like_count", expr)
	return res.RowsAffected, res.Error
}
