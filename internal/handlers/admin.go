package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"horizon/internal/db"
	"horizon/internal/identity"
	"horizon/internal/middleware"
	"horizon/internal/models"
	"horizon/internal/services"
	"horizon/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler serves the dashboard: post management plus the
// engagement analytics nothing else exposes.
type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// Dashboard returns site totals and recent posts with metrics.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := services.ComputeDashboard()
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListPosts returns every post, drafts included, newest first.
func (h *AdminHandler) ListPosts(c *gin.Context) {
	var posts []models.Post
	if err := db.DB.Order("created_at DESC").Find(&posts).Error; err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

type postForm struct {
	Title         string `json:"title" binding:"required"`
	Slug          string `json:"slug" binding:"required"`
	MonthKey      string `json:"month_key" binding:"required"`
	Markdown      string `json:"markdown"`
	HTML          string `json:"html"`
	Excerpt       string `json:"excerpt"`
	Category      string `json:"category"`
	HeroImagePath string `json:"hero_image_path"`
	ReadTime      int    `json:"read_time"`
	IsFeatured    bool   `json:"is_featured"`
	Status        string `json:"status"`
}

func (f *postForm) apply(post *models.Post) {
	post.Title = f.Title
	post.Slug = strings.TrimSpace(strings.ToLower(f.Slug))
	post.MonthKey = f.MonthKey
	// Editor submits either markdown or prepared HTML
	if f.Markdown != "" {
		post.HTMLContent = utils.RenderMarkdown(f.Markdown)
	} else {
		post.HTMLContent = utils.SanitizeHTML(f.HTML)
	}
	post.Excerpt = f.Excerpt
	post.Category = f.Category
	post.HeroImagePath = f.HeroImagePath
	post.ReadTime = f.ReadTime
	post.IsFeatured = f.IsFeatured
}

// CreatePost inserts a new post. Publishing stamps published_at once;
// it is never rewritten by later edits.
func (h *AdminHandler) CreatePost(c *gin.Context) {
	var form postForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, slug and month_key are required"})
		return
	}

	post := models.Post{Status: models.PostStatusDraft}
	form.apply(&post)
	if form.Status == models.PostStatusPublished {
		now := time.Now()
		post.Status = models.PostStatusPublished
		post.PublishedAt = &now
	}

	if err := db.DB.Create(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A post with that slug already exists"})
			return
		}
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// UpdatePost edits an existing post.
func (h *AdminHandler) UpdatePost(c *gin.Context) {
	postID := utils.StringToUint(c.Param("post_id"))

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiError(c, services.ErrNotFound)
		} else {
			apiError(c, err)
		}
		return
	}

	var form postForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, slug and month_key are required"})
		return
	}

	form.apply(&post)
	switch form.Status {
	case models.PostStatusPublished:
		if post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.Status = models.PostStatusPublished
	case models.PostStatusDraft:
		post.Status = models.PostStatusDraft
	}

	if err := db.DB.Save(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A post with that slug already exists"})
			return
		}
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost removes a post. FK cascades take its comments, likes and
// read events with it.
func (h *AdminHandler) DeletePost(c *gin.Context) {
	postID := utils.StringToUint(c.Param("post_id"))

	res := db.DB.Delete(&models.Post{}, postID)
	if res.Error != nil {
		apiError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		apiError(c, services.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// PostStats is the per-post analytics view: metrics, comment tree and
// the logged-in users who read it.
func (h *AdminHandler) PostStats(c *gin.Context) {
	postID := utils.StringToUint(c.Param("post_id"))

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiError(c, services.ErrNotFound)
		} else {
			apiError(c, err)
		}
		return
	}

	metrics, err := services.ComputePostMetrics(post.ID)
	if err != nil {
		apiError(c, err)
		return
	}

	tree, err := services.CommentTree(post.ID, identity.CurrentUser(c), middleware.AdminEmails())
	if err != nil {
		apiError(c, err)
		return
	}
	topLevel := len(tree)
	replies := 0
	for _, node := range tree {
		replies += len(node.Replies)
	}

	viewers, err := services.PostViewers(post.ID)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":               post,
		"metrics":            metrics,
		"comments":           tree,
		"top_level_comments": topLevel,
		"replies":            replies,
		"logged_in_viewers":  viewers,
	})
}

// PostReaders lists the readers of one post.
func (h *AdminHandler) PostReaders(c *gin.Context) {
	postID := utils.StringToUint(c.Param("post_id"))
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	perPage := utils.StringToInt(c.DefaultQuery("per_page", "50"))
	readerType := c.Query("reader_type") // "", "logged_in" or "anonymous"

	readers, total, err := services.Readers(postID, readerType, page, perPage)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"readers": readers, "total": total, "page": page})
}

// Readers is the global readers rollup across all posts.
func (h *AdminHandler) Readers(c *gin.Context) {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	perPage := utils.StringToInt(c.DefaultQuery("per_page", "50"))

	readers, total, err := services.Readers(0, c.Query("reader_type"), page, perPage)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"readers": readers, "total": total, "page": page})
}

// ReaderDetail shows everything one reader has read, grouped per post.
// reader_type is "user" or "anon"; reader_id is a user id or anon
// token respectively.
func (h *AdminHandler) ReaderDetail(c *gin.Context) {
	readerType := c.Param("reader_type")
	readerID := c.Param("reader_id")
	if readerType != "user" && readerType != "anon" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reader_type must be 'user' or 'anon'"})
		return
	}

	label, activity, err := services.ReaderDetail(readerType, readerID)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"label": label, "activity": activity})
}

// Comments is the moderation list: every comment site-wide, newest
// first, with its author and post.
func (h *AdminHandler) Comments(c *gin.Context) {
	var comments []models.Comment
	err := db.DB.Preload("User").Preload("Post").
		Order("created_at DESC").
		Limit(200).
		Find(&comments).Error
	if err != nil {
		apiError(c, err)
		return
	}

	out := make([]gin.H, 0, len(comments))
	for _, cm := range comments {
		out = append(out, gin.H{
			"id":         cm.ID,
			"post_id":    cm.PostID,
			"post_title": cm.Post.Title,
			"parent_id":  cm.ParentID,
			"body":       cm.Body,
			"author":     cm.User.DisplayName(),
			"created_at": cm.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"comments": out})
}

// DeleteComment is admin moderation; it shares the subtree cascade
// with the author-facing endpoint.
func (h *AdminHandler) DeleteComment(c *gin.Context) {
	commentID := utils.StringToUint(c.Param("comment_id"))

	err := services.DeleteComment(commentID, identity.CurrentUser(c), middleware.AdminEmails())
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// Users lists every account, most recent login first.
func (h *AdminHandler) Users(c *gin.Context) {
	var users []models.User
	if err := db.DB.Order("last_login_at DESC").Find(&users).Error; err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
