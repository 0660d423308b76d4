package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"seniors/pkg/logger"
	"seniors/pkg/middleware"
	"seniors/services/post/internal/entity"
	"seniors/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage = 0
	defaultSize = 10
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type PostForm struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}

type AddMediaRequest struct {
	MediaURL string `json:"media_url" binding:"required"`
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Create a post with up to 10 attached files
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title    formData  string  true   "Post title (at most 50 characters)"
// @Param        content  formData  string  true   "Post body"
// @Param        files    formData  file    false  "Attached files, repeatable"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetUint64(middleware.ContextUserID)

	input, ok := h.bindPostInput(c)
	if !ok {
		return
	}

	post, err := h.postUseCase.CreatePost(c.Request.Context(), userID, input)
	if err != nil {
		h.respondError(c, "create post", err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost godoc
// @Summary      Get a post
// @Description  Get a post with its author, media and comments
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  entity.PostDetail
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	detail, err := h.postUseCase.GetPost(c.Request.Context(), postID)
	if err != nil {
		h.respondError(c, "get post", err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListPosts godoc
// @Summary      List posts
// @Description  Newest posts first, zero-based pages
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page index"  default(0)
// @Param        size  query     int  false  "Page size (1-100)"  default(10)
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil {
		h.respondError(c, "list posts", entity.NewValidationError("page must be a number"))
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultSize)))
	if err != nil {
		h.respondError(c, "list posts", entity.NewValidationError("size must be a number"))
		return
	}

	result, err := h.postUseCase.ListPosts(c.Request.Context(), page, size)
	if err != nil {
		h.respondError(c, "list posts", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ModifyPost godoc
// @Summary      Modify a post
// @Description  Replace the title, content and attached files of your own post
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int     true   "Post ID"
// @Param        title    formData  string  true   "Post title (at most 50 characters)"
// @Param        content  formData  string  true   "Post body"
// @Param        files    formData  file    false  "Replacement files, repeatable"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [put]
func (h *PostHandler) ModifyPost(c *gin.Context) {
	userID := c.GetUint64(middleware.ContextUserID)
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	input, ok := h.bindPostInput(c)
	if !ok {
		return
	}

	if err := h.postUseCase.ModifyPost(c.Request.Context(), postID, userID, input); err != nil {
		h.respondError(c, "modify post", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post updated"})
}

// RemovePost godoc
// @Summary      Remove a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) RemovePost(c *gin.Context) {
	userID := c.GetUint64(middleware.ContextUserID)
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	if err := h.postUseCase.RemovePost(c.Request.Context(), postID, userID); err != nil {
		h.respondError(c, "remove post", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// LikePost godoc
// @Summary      Like or unlike a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int   true  "Post ID"
// @Param        status  query     bool  true  "true to like, false to unlike"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id}/likes [post]
func (h *PostHandler) LikePost(c *gin.Context) {
	userID := c.GetUint64(middleware.ContextUserID)
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	status, err := strconv.ParseBool(c.Query("status"))
	if err != nil {
		h.respondError(c, "like post", entity.NewValidationError("status must be true or false"))
		return
	}

	if err := h.postUseCase.LikePost(c.Request.Context(), postID, userID, status); err != nil {
		h.respondError(c, "like post", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post_id": postID, "liked": status})
}

// AddPostMedia godoc
// @Summary      Attach an uploaded file to a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int              true  "Post ID"
// @Param        request  body      AddMediaRequest  true  "Stored file reference"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /posts/{id}/media [post]
func (h *PostHandler) AddPostMedia(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	var req AddMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, "add media", entity.NewValidationError("media_url is required"))
		return
	}

	if err := h.postUseCase.AddPostMedia(c.Request.Context(), postID, req.MediaURL); err != nil {
		h.respondError(c, "add media", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Media added"})
}

func (h *PostHandler) bindPostInput(c *gin.Context) (entity.PostInput, bool) {
	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		h.respondError(c, "bind form", entity.NewValidationError("invalid form"))
		return entity.PostInput{}, false
	}

	input := entity.PostInput{
		Title:   form.Title,
		Content: form.Content,
	}

	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		for _, fh := range mf.File["files"] {
			input.Files = append(input.Files, mediaFileFrom(fh))
		}
	}

	return input, true
}

func mediaFileFrom(fh *multipart.FileHeader) entity.MediaFile {
	return entity.MediaFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func parsePostID(c *gin.Context) (uint64, bool) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || postID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID", "code": entity.CodeValidation})
		return 0, false
	}
	return postID, true
}

func (h *PostHandler) respondError(c *gin.Context, action string, err error) {
	code := entity.CodeOf(err)

	var status int
	switch code {
	case entity.CodeValidation:
		status = http.StatusBadRequest
	case entity.CodeNotFound:
		status = http.StatusNotFound
	case entity.CodeBadRequest:
		status = http.StatusConflict
	case entity.CodeForbidden:
		status = http.StatusForbidden
	default:
		h.logger.Error("Failed to %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": "INTERNAL_ERROR"})
		return
	}

	var appErr *entity.AppError
	errors.As(err, &appErr)
	c.JSON(status, gin.H{"error": appErr.Error(), "code": code})
}
