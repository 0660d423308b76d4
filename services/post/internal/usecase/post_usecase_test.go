package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"seniors/pkg/logger"
	"seniors/pkg/queue"
	"seniors/services/post/internal/entity"
	"seniors/services/post/internal/model"
	"seniors/services/post/internal/repo/persistent"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeStorage struct {
	mu           sync.Mutex
	objects      map[string]string
	uploads      int
	failUploadAt int
	failDelete   bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]string)}
}

func (s *fakeStorage) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploads++
	if s.failUploadAt == s.uploads {
		return "", errors.New("storage unavailable")
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[key] = string(data)
	return "https://cdn.test/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failDelete {
		return errors.New("storage unavailable")
	}
	for _, key := range keys {
		delete(s.objects, key)
	}
	return nil
}

func (s *fakeStorage) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failDelete {
		return errors.New("storage unavailable")
	}
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
		}
	}
	return nil
}

func (s *fakeStorage) keysUnder(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

type fakePublisher struct {
	tasks []queue.MediaCleanupTask
	err   error
}

func (p *fakePublisher) PublishMediaCleanup(_ context.Context, task queue.MediaCleanupTask) error {
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}

type testEnv struct {
	db      *gorm.DB
	uc      PostUseCase
	storage *fakeStorage
	redis   *miniredis.Miniredis
}

type envOption func(*envConfig)

type envConfig struct {
	opts      Options
	publisher CleanupPublisher
}

func withStrictOwnership() envOption {
	return func(c *envConfig) { c.opts.StrictOwnership = true }
}

func withPublisher(p CleanupPublisher) envOption {
	return func(c *envConfig) { c.publisher = p }
}

func setupTestEnv(t *testing.T, options ...envOption) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	for _, nickname := range []string{"author", "reader", "stranger"} {
		require.NoError(t, db.Create(&model.UserModel{Nickname: nickname}).Error)
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	cfg := &envConfig{opts: Options{CacheTTL: time.Minute}}
	for _, option := range options {
		option(cfg)
	}

	storage := newFakeStorage()
	uc := NewPostUseCase(
		persistent.NewPostRepository(db),
		persistent.NewUserRepository(db),
		storage,
		redisClient,
		cfg.publisher,
		cfg.opts,
		logger.NewWithWriter(io.Discard, io.Discard),
	)

	return &testEnv{db: db, uc: uc, storage: storage, redis: mr}
}

const (
	authorID   uint64 = 1
	readerID   uint64 = 2
	strangerID uint64 = 3
)

func mediaFile(name, body string) entity.MediaFile {
	return entity.MediaFile{
		Filename:    name,
		ContentType: "image/png",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func (e *testEnv) createPost(t *testing.T, title string, files ...entity.MediaFile) *entity.Post {
	t.Helper()
	post, err := e.uc.CreatePost(context.Background(), authorID, entity.PostInput{
		Title:   title,
		Content: "content of " + title,
		Files:   files,
	})
	require.NoError(t, err)
	return post
}

func (e *testEnv) loadPost(t *testing.T, id uint64) model.PostModel {
	t.Helper()
	var post model.PostModel
	require.NoError(t, e.db.Where("id = ?", id).Take(&post).Error)
	return post
}

func (e *testEnv) mediaRows(t *testing.T, postID uint64) []model.PostMediaModel {
	t.Helper()
	var media []model.PostMediaModel
	require.NoError(t, e.db.Where("post_id = ?", postID).Order("id").Find(&media).Error)
	return media
}

func TestCreatePost_InitialState(t *testing.T) {
	env := setupTestEnv(t)

	post, err := env.uc.CreatePost(context.Background(), authorID, entity.PostInput{Title: "A", Content: "B"})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, 0, post.LikeCount)
	assert.False(t, post.IsDeleted)
	assert.Empty(t, post.Media)

	stored := env.loadPost(t, post.ID)
	assert.Equal(t, 0, stored.LikeCount)
	assert.False(t, stored.IsDeleted)
	assert.Equal(t, authorID, stored.UserID)
}

func TestCreatePost_WithMedia(t *testing.T) {
	env := setupTestEnv(t)

	post := env.createPost(t, "pics", mediaFile("one.PNG", "1"), mediaFile("two.jpg", "2"))
	require.Len(t, post.Media, 2)

	prefix := entity.MediaPrefix(post.ID)
	for _, m := range post.Media {
		assert.True(t, strings.HasPrefix(m.ObjectKey, prefix))
		assert.Equal(t, "https://cdn.test/"+m.ObjectKey, m.MediaURL)
	}
	assert.True(t, strings.HasSuffix(post.Media[0].ObjectKey, ".png"))
	assert.True(t, strings.HasSuffix(post.Media[1].ObjectKey, ".jpg"))
	assert.Len(t, env.storage.keysUnder(prefix), 2)

	rows := env.mediaRows(t, post.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, post.Media[0].ObjectKey, rows[0].ObjectKey)
	assert.Equal(t, post.Media[1].ObjectKey, rows[1].ObjectKey)
}

func TestCreatePost_Validation(t *testing.T) {
	env := setupTestEnv(t)

	tooMany := make([]entity.MediaFile, entity.MaxMediaPerPost+1)
	for i := range tooMany {
		tooMany[i] = mediaFile(fmt.Sprintf("%d.png", i), "x")
	}

	tests := []struct {
		name    string
		input   entity.PostInput
		message string
	}{
		{
			name:    "blank title and content",
			input:   entity.PostInput{Title: "  ", Content: ""},
			message: "title must not be blank, content must not be blank",
		},
		{
			name:    "title too long",
			input:   entity.PostInput{Title: strings.Repeat("가", 51), Content: "B"},
			message: "title must be at most 50 characters",
		},
		{
			name:    "too many files",
			input:   entity.PostInput{Title: "A", Content: "B", Files: tooMany},
			message: "at most 10 files may be attached",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.uc.CreatePost(context.Background(), authorID, tt.input)
			require.Error(t, err)
			assert.Equal(t, entity.CodeValidation, entity.CodeOf(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&model.PostModel{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, env.storage.uploads)
}

func TestCreatePost_TitleAtLimit(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.uc.CreatePost(context.Background(), authorID, entity.PostInput{
		Title:   strings.Repeat("가", 50),
		Content: "B",
	})
	assert.NoError(t, err)
}

func TestCreatePost_UnknownMember(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.uc.CreatePost(context.Background(), 99, entity.PostInput{Title: "A", Content: "B"})
	assert.ErrorIs(t, err, entity.ErrInvalidMember)
	assert.Equal(t, entity.CodeNotFound, entity.CodeOf(err))
}

func TestCreatePost_UploadFailureLeavesNothing(t *testing.T) {
	env := setupTestEnv(t)
	env.storage.failUploadAt = 2

	_, err := env.uc.CreatePost(context.Background(), authorID, entity.PostInput{
		Title:   "A",
		Content: "B",
		Files:   []entity.MediaFile{mediaFile("a.png", "a"), mediaFile("b.png", "b")},
	})
	require.Error(t, err)

	assert.Empty(t, env.storage.keysUnder("posts/media/"))

	var media int64
	require.NoError(t, env.db.Model(&model.PostMediaModel{}).Count(&media).Error)
	assert.Zero(t, media)

	page, err := env.uc.ListPosts(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Content)
}

func TestCreatePost_CompensationQueuedWhenStorageRefuses(t *testing.T) {
	publisher := &fakePublisher{}
	env := setupTestEnv(t, withPublisher(publisher))
	env.storage.failUploadAt = 2
	env.storage.failDelete = true

	_, err := env.uc.CreatePost(context.Background(), authorID, entity.PostInput{
		Title:   "A",
		Content: "B",
		Files:   []entity.MediaFile{mediaFile("a.png", "a"), mediaFile("b.png", "b")},
	})
	require.Error(t, err)

	require.Len(t, publisher.tasks, 1)
	task := publisher.tasks[0]
	assert.Equal(t, "attach_failed", task.Reason)
	assert.Len(t, task.Keys, 1)
	assert.NoError(t, task.Validate())
}

func TestGetPost(t *testing.T) {
	env := setupTestEnv(t)
	post := env.createPost(t, "detail", mediaFile("a.png", "a"))
	require.NoError(t, env.db.Create(&model.CommentModel{PostID: post.ID, UserID: readerID, Content: "hello"}).Error)

	detail, err := env.uc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "detail", detail.Title)
	assert.Equal(t, "author", detail.Author.Nickname)
	require.Len(t, detail.Media, 1)
	require.NotNil(t, detail.Comments)
	assert.Equal(t, 1, detail.Comments.Count)
	assert.Equal(t, "reader", detail.Comments.Items[0].AuthorNickname)

	assert.True(t, env.redis.Exists(detailCacheKey(post.ID)))
}

func TestGetPost_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.uc.GetPost(context.Background(), 404)
	assert.ErrorIs(t, err, entity.ErrInvalidPost)
	assert.Equal(t, entity.CodeNotFound, entity.CodeOf(err))
}

func TestGetPost_ServedFromCacheUntilInvalidated(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "cached")

	_, err := env.uc.GetPost(ctx, post.ID)
	require.NoError(t, err)

	// a write behind the service's back is not visible while cached
	require.NoError(t, env.db.Model(&model.PostModel{}).Where("id = ?", post.ID).Update("title", "sneaky").Error)
	detail, err := env.uc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", detail.Title)

	require.NoError(t, env.uc.LikePost(ctx, post.ID, readerID, true))
	assert.False(t, env.redis.Exists(detailCacheKey(post.ID)))

	detail, err = env.uc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "sneaky", detail.Title)
	assert.Equal(t, 1, detail.LikeCount)
}

func TestGetPost_CacheOutageIsIgnored(t *testing.T) {
	env := setupTestEnv(t)
	post := env.createPost(t, "resilient")
	env.redis.Close()

	detail, err := env.uc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "resilient", detail.Title)
}

func TestListPosts_NewestFirstAcrossPages(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	var ids []uint64
	for i := 0; i < 7; i++ {
		ids = append(ids, env.createPost(t, fmt.Sprintf("post %d", i)).ID)
	}
	require.NoError(t, env.uc.RemovePost(ctx, ids[3], authorID))

	for _, size := range []int{1, 2, 3, 10} {
		var seen []uint64
		for page := 0; ; page++ {
			result, err := env.uc.ListPosts(ctx, page, size)
			require.NoError(t, err)
			assert.Equal(t, int64(6), result.TotalElements)
			for _, p := range result.Content {
				seen = append(seen, p.ID)
			}
			if result.Last {
				break
			}
		}

		require.Len(t, seen, 6, "size %d", size)
		for i := 1; i < len(seen); i++ {
			assert.Greater(t, seen[i-1], seen[i], "size %d", size)
		}
		assert.NotContains(t, seen, ids[3])
	}
}

func TestListPosts_PageMetadata(t *testing.T) {
	env := setupTestEnv(t)
	for i := 0; i < 5; i++ {
		env.createPost(t, fmt.Sprintf("post %d", i))
	}

	result, err := env.uc.ListPosts(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, result.Content, 2)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 1, result.CurrentPage)
	assert.False(t, result.First)
	assert.False(t, result.Last)
	assert.Nil(t, result.Content[0].Comments)
}

func TestListPosts_InvalidPaging(t *testing.T) {
	env := setupTestEnv(t)

	for _, tc := range []struct{ page, size int }{{-1, 10}, {0, 0}, {0, 101}} {
		_, err := env.uc.ListPosts(context.Background(), tc.page, tc.size)
		assert.Equal(t, entity.CodeValidation, entity.CodeOf(err), "page=%d size=%d", tc.page, tc.size)
	}
}

func TestModifyPost_ReplacesMedia(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "A", mediaFile("old1.png", "o1"), mediaFile("old2.png", "o2"))
	oldKeys := env.storage.keysUnder(entity.MediaPrefix(post.ID))
	require.Len(t, oldKeys, 2)

	err := env.uc.ModifyPost(ctx, post.ID, authorID, entity.PostInput{
		Title:   "A2",
		Content: "B2",
		Files:   []entity.MediaFile{mediaFile("f1.png", "f1")},
	})
	require.NoError(t, err)

	rows := env.mediaRows(t, post.ID)
	require.Len(t, rows, 1)
	remaining := env.storage.keysUnder(entity.MediaPrefix(post.ID))
	assert.Equal(t, []string{rows[0].ObjectKey}, remaining)
	for _, key := range oldKeys {
		assert.NotContains(t, remaining, key)
	}

	stored := env.loadPost(t, post.ID)
	assert.Equal(t, "A2", stored.Title)
	assert.Equal(t, "B2", stored.Content)
}

func TestModifyPost_EmptyFilesClearsMedia(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "A")

	input := entity.PostInput{Title: "A2", Content: "B2", Files: []entity.MediaFile{mediaFile("f1.png", "f1")}}
	require.NoError(t, env.uc.ModifyPost(ctx, post.ID, authorID, input))
	require.Len(t, env.mediaRows(t, post.ID), 1)

	input.Files = nil
	require.NoError(t, env.uc.ModifyPost(ctx, post.ID, authorID, input))

	assert.Empty(t, env.mediaRows(t, post.ID))
	assert.Empty(t, env.storage.keysUnder(entity.MediaPrefix(post.ID)))
}

func TestModifyPost_NonAuthorIsSilentNoOp(t *testing.T) {
	env := setupTestEnv(t)
	post := env.createPost(t, "mine", mediaFile("keep.png", "k"))

	err := env.uc.ModifyPost(context.Background(), post.ID, strangerID, entity.PostInput{Title: "theirs", Content: "x"})
	require.NoError(t, err)

	stored := env.loadPost(t, post.ID)
	assert.Equal(t, "mine", stored.Title)
	assert.Len(t, env.mediaRows(t, post.ID), 1)
	assert.Len(t, env.storage.keysUnder(entity.MediaPrefix(post.ID)), 1)
}

func TestModifyPost_NonAuthorForbiddenWhenStrict(t *testing.T) {
	env := setupTestEnv(t, withStrictOwnership())
	post := env.createPost(t, "mine")

	err := env.uc.ModifyPost(context.Background(), post.ID, strangerID, entity.PostInput{Title: "theirs", Content: "x"})
	assert.ErrorIs(t, err, entity.ErrNotPostOwner)
	assert.Equal(t, entity.CodeForbidden, entity.CodeOf(err))
	assert.Equal(t, "mine", env.loadPost(t, post.ID).Title)
}

func TestModifyPost_MissingPost(t *testing.T) {
	env := setupTestEnv(t)

	err := env.uc.ModifyPost(context.Background(), 404, authorID, entity.PostInput{Title: "A", Content: "B"})
	assert.ErrorIs(t, err, entity.ErrInvalidPost)
}

func TestModifyPost_ValidatesBeforeLookup(t *testing.T) {
	env := setupTestEnv(t)

	err := env.uc.ModifyPost(context.Background(), 404, authorID, entity.PostInput{Title: "", Content: "B"})
	assert.Equal(t, entity.CodeValidation, entity.CodeOf(err))
}

func TestModifyPost_OldObjectsQueuedWhenDeleteFails(t *testing.T) {
	publisher := &fakePublisher{}
	env := setupTestEnv(t, withPublisher(publisher))
	post := env.createPost(t, "A", mediaFile("old.png", "o"))
	env.storage.failDelete = true

	err := env.uc.ModifyPost(context.Background(), post.ID, authorID, entity.PostInput{Title: "A2", Content: "B2"})
	require.NoError(t, err)

	require.Len(t, publisher.tasks, 1)
	assert.Equal(t, post.Media[0].ObjectKey, publisher.tasks[0].Keys[0])
	assert.Equal(t, "modify", publisher.tasks[0].Reason)
	assert.Empty(t, env.mediaRows(t, post.ID))
}

func TestModifyPost_DeleteFailureSurfacesWithoutQueue(t *testing.T) {
	env := setupTestEnv(t)
	post := env.createPost(t, "A", mediaFile("old.png", "o"))
	env.storage.failDelete = true

	err := env.uc.ModifyPost(context.Background(), post.ID, authorID, entity.PostInput{Title: "A2", Content: "B2"})
	assert.Error(t, err)
	assert.Equal(t, "A2", env.loadPost(t, post.ID).Title)
}

func TestRemovePost(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "bye", mediaFile("a.png", "a"))
	require.NoError(t, env.db.Create(&model.CommentModel{PostID: post.ID, UserID: readerID, Content: "c"}).Error)
	_, err := env.uc.GetPost(ctx, post.ID)
	require.NoError(t, err)

	require.NoError(t, env.uc.RemovePost(ctx, post.ID, authorID))

	assert.True(t, env.loadPost(t, post.ID).IsDeleted)
	assert.Empty(t, env.mediaRows(t, post.ID))
	assert.Empty(t, env.storage.keysUnder(entity.MediaPrefix(post.ID)))

	var comments int64
	require.NoError(t, env.db.Model(&model.CommentModel{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	assert.Zero(t, comments)

	_, err = env.uc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, entity.ErrInvalidPost)
}

func TestRemovePost_NonAuthorIsSilentNoOp(t *testing.T) {
	env := setupTestEnv(t)
	post := env.createPost(t, "stay", mediaFile("a.png", "a"))

	require.NoError(t, env.uc.RemovePost(context.Background(), post.ID, strangerID))

	assert.False(t, env.loadPost(t, post.ID).IsDeleted)
	assert.Len(t, env.mediaRows(t, post.ID), 1)
	assert.Len(t, env.storage.keysUnder(entity.MediaPrefix(post.ID)), 1)
}

func TestRemovePost_Strict(t *testing.T) {
	env := setupTestEnv(t, withStrictOwnership())
	ctx := context.Background()
	post := env.createPost(t, "stay")

	err := env.uc.RemovePost(ctx, post.ID, strangerID)
	assert.ErrorIs(t, err, entity.ErrNotPostOwner)

	assert.NoError(t, env.uc.RemovePost(ctx, 404, strangerID))

	require.NoError(t, env.uc.RemovePost(ctx, post.ID, authorID))
	assert.NoError(t, env.uc.RemovePost(ctx, post.ID, authorID))
}

func TestRemovePost_PrefixQueuedWhenDeleteFails(t *testing.T) {
	publisher := &fakePublisher{}
	env := setupTestEnv(t, withPublisher(publisher))
	post := env.createPost(t, "bye", mediaFile("a.png", "a"))
	env.storage.failDelete = true

	require.NoError(t, env.uc.RemovePost(context.Background(), post.ID, authorID))

	require.Len(t, publisher.tasks, 1)
	assert.Equal(t, entity.MediaPrefix(post.ID), publisher.tasks[0].Prefix)
	assert.Equal(t, "remove", publisher.tasks[0].Reason)
	assert.True(t, env.loadPost(t, post.ID).IsDeleted)
}

func TestRemovePost_QueueFailureSurfaces(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	env := setupTestEnv(t, withPublisher(publisher))
	post := env.createPost(t, "bye", mediaFile("a.png", "a"))
	env.storage.failDelete = true

	err := env.uc.RemovePost(context.Background(), post.ID, authorID)
	assert.Error(t, err)
	assert.True(t, env.loadPost(t, post.ID).IsDeleted)
}

func TestLikePost_Scenario(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	post, err := env.uc.CreatePost(ctx, authorID, entity.PostInput{Title: "A", Content: "B"})
	require.NoError(t, err)
	assert.Equal(t, 0, post.LikeCount)
	assert.False(t, post.IsDeleted)

	require.NoError(t, env.uc.LikePost(ctx, post.ID, readerID, true))
	assert.Equal(t, 1, env.loadPost(t, post.ID).LikeCount)

	err = env.uc.LikePost(ctx, post.ID, readerID, true)
	assert.ErrorIs(t, err, entity.ErrLikeUnchanged)
	assert.Equal(t, entity.CodeBadRequest, entity.CodeOf(err))
	assert.Equal(t, 1, env.loadPost(t, post.ID).LikeCount)

	require.NoError(t, env.uc.LikePost(ctx, post.ID, readerID, false))
	assert.Equal(t, 0, env.loadPost(t, post.ID).LikeCount)

	err = env.uc.LikePost(ctx, post.ID, readerID, false)
	assert.ErrorIs(t, err, entity.ErrLikeUnchanged)
	assert.Equal(t, 0, env.loadPost(t, post.ID).LikeCount)
}

func TestLikePost_UnlikeWithoutLike(t *testing.T) {
	env := setupTestEnv(t)
	post := env.createPost(t, "A")

	err := env.uc.LikePost(context.Background(), post.ID, readerID, false)
	assert.ErrorIs(t, err, entity.ErrLikeUnchanged)
	assert.Equal(t, 0, env.loadPost(t, post.ID).LikeCount)
}

func TestLikePost_CountsDistinctUsers(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "popular")

	for _, userID := range []uint64{authorID, readerID, strangerID} {
		require.NoError(t, env.uc.LikePost(ctx, post.ID, userID, true))
	}
	assert.Equal(t, 3, env.loadPost(t, post.ID).LikeCount)

	require.NoError(t, env.uc.LikePost(ctx, post.ID, readerID, false))
	require.NoError(t, env.uc.LikePost(ctx, post.ID, readerID, true))
	assert.Equal(t, 3, env.loadPost(t, post.ID).LikeCount)
}

func TestLikePost_MissingOrRemovedPost(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "gone")
	require.NoError(t, env.uc.RemovePost(ctx, post.ID, authorID))

	assert.ErrorIs(t, env.uc.LikePost(ctx, 404, readerID, true), entity.ErrInvalidPost)
	assert.ErrorIs(t, env.uc.LikePost(ctx, post.ID, readerID, true), entity.ErrInvalidPost)

	var likes int64
	require.NoError(t, env.db.Model(&model.PostLikeModel{}).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestAddPostMedia(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "A")

	require.NoError(t, env.uc.AddPostMedia(ctx, post.ID, "https://cdn.test/external.png"))

	rows := env.mediaRows(t, post.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://cdn.test/external.png", rows[0].MediaURL)
	assert.Equal(t, rows[0].MediaURL, rows[0].ObjectKey)
}

func TestAddPostMedia_MissingPostIsSilent(t *testing.T) {
	env := setupTestEnv(t)

	require.NoError(t, env.uc.AddPostMedia(context.Background(), 404, "https://cdn.test/x.png"))

	var media int64
	require.NoError(t, env.db.Model(&model.PostMediaModel{}).Count(&media).Error)
	assert.Zero(t, media)
}
