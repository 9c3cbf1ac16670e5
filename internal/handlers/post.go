package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"horizon/internal/db"
	"horizon/internal/identity"
	"horizon/internal/middleware"
	"horizon/internal/models"
	"horizon/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PostHandler serves the reader-facing post surface. Posts are grouped
// into monthly archives by their month_key.
type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// Index redirects to the most recent month that has published posts.
func (h *PostHandler) Index(c *gin.Context) {
	var months []string
	err := db.DB.Model(&models.Post{}).
		Where("status = ?", models.PostStatusPublished).
		Order("month_key DESC").
		Limit(1).
		Pluck("month_key", &months).Error
	if err != nil {
		apiError(c, err)
		return
	}
	if len(months) == 0 {
		c.JSON(http.StatusOK, gin.H{"posts": []models.Post{}})
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/archive/%s", months[0]))
}

// Archive lists the published posts of one month, newest first.
func (h *PostHandler) Archive(c *gin.Context) {
	month := c.Param("month")

	var posts []models.Post
	err := db.DB.Where("status = ? AND month_key = ?", models.PostStatusPublished, month).
		Order("published_at DESC").
		Find(&posts).Error
	if err != nil {
		apiError(c, err)
		return
	}

	var months []string
	err = db.DB.Model(&models.Post{}).
		Where("status = ?", models.PostStatusPublished).
		Distinct("month_key").
		Order("month_key DESC").
		Pluck("month_key", &months).Error
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": month, "posts": posts, "months": months})
}

// Months lists every month that has at least one published post.
func (h *PostHandler) Months(c *gin.Context) {
	var months []string
	err := db.DB.Model(&models.Post{}).
		Where("status = ?", models.PostStatusPublished).
		Distinct("month_key").
		Order("month_key DESC").
		Pluck("month_key", &months).Error
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// Detail returns one published post with its engagement state and
// comment tree.
func (h *PostHandler) Detail(c *gin.Context) {
	slug := c.Param("slug")
	viewer := identity.CurrentUser(c)

	var post models.Post
	err := db.DB.Where("slug = ? AND status = ?", slug, models.PostStatusPublished).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apiError(c, services.ErrNotFound)
		} else {
			apiError(c, err)
		}
		return
	}

	var likeCount int64
	if err := db.DB.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount).Error; err != nil {
		apiError(c, err)
		return
	}

	userLiked := false
	if viewer != nil {
		var n int64
		if err := db.DB.Model(&models.Like{}).
			Where("post_id = ? AND user_id = ?", post.ID, viewer.ID).
			Count(&n).Error; err != nil {
			apiError(c, err)
			return
		}
		userLiked = n > 0
	}

	tree, err := services.CommentTree(post.ID, viewer, middleware.AdminEmails())
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":       post,
		"like_count": likeCount,
		"user_liked": userLiked,
		"comments":   tree,
	})
}
