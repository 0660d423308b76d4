package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"

	"seniors/pkg/config"
	"seniors/pkg/database"
	"seniors/pkg/logger"
	"seniors/pkg/s3"
	"seniors/services/post/internal/entity"
	"seniors/services/post/internal/model"
	"seniors/services/post/internal/repo/persistent"
	"seniors/services/post/internal/usecase"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

func main() {
	var (
		users    = flag.Int("users", 5, "number of users to create")
		posts    = flag.Int("posts", 4, "posts per user")
		comments = flag.Int("comments", 3, "comments per post")
		seed     = flag.Int64("seed", 0, "random seed, 0 for a random run")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		panic(err)
	}

	gofakeit.Seed(*seed)

	postUseCase := usecase.NewPostUseCase(
		persistent.NewPostRepository(db),
		persistent.NewUserRepository(db),
		s3Client,
		nil,
		nil,
		usecase.Options{},
		log,
	)

	if err := seedDatabase(context.Background(), db, postUseCase, log, *users, *posts, *comments); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(ctx context.Context, db *gorm.DB, postUseCase usecase.PostUseCase, log *logger.Logger, userCount, postsPerUser, commentsPerPost int) error {
	userIDs := make([]uint64, 0, userCount)
	for i := 0; i < userCount; i++ {
		user := &model.UserModel{
			Nickname:        truncate(gofakeit.Username(), 30),
			ProfileImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
		}
		if err := db.WithContext(ctx).Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		log.Info("Created user: %s (id=%d)", user.Nickname, user.ID)
		userIDs = append(userIDs, user.ID)
	}

	for _, userID := range userIDs {
		for i := 0; i < postsPerUser; i++ {
			post, err := postUseCase.CreatePost(ctx, userID, entity.PostInput{
				Title:   truncate(gofakeit.Sentence(5), 50),
				Content: gofakeit.Paragraph(1, 3, 12, "\n"),
				Files:   fakeImages(rand.Intn(3)),
			})
			if err != nil {
				log.Error("Failed to create post for user_id=%d: %v", userID, err)
				continue
			}

			for j := 0; j < commentsPerPost; j++ {
				comment := &model.CommentModel{
					PostID:  post.ID,
					UserID:  userIDs[rand.Intn(len(userIDs))],
					Content: gofakeit.Sentence(8),
				}
				if err := db.WithContext(ctx).Create(comment).Error; err != nil {
					log.Error("Failed to create comment on post_id=%d: %v", post.ID, err)
				}
			}

			for _, likerID := range userIDs {
				if likerID == userID || !gofakeit.Bool() {
					continue
				}
				if err := postUseCase.LikePost(ctx, post.ID, likerID, true); err != nil {
					log.Error("Failed to like post_id=%d: %v", post.ID, err)
				}
			}

			log.Info("Created post: %q (id=%d, media=%d)", post.Title, post.ID, len(post.Media))
		}
	}

	return nil
}

func fakeImages(n int) []entity.MediaFile {
	files := make([]entity.MediaFile, n)
	for i := range files {
		data := gofakeit.ImagePng(320, 240)
		files[i] = entity.MediaFile{
			Filename:    fmt.Sprintf("seed_%d.png", i),
			ContentType: "image/png",
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(data)), nil
			},
		}
	}
	return files
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}
