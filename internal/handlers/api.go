package handlers

import (
	"net/http"

	"horizon/internal/identity"
	"horizon/internal/middleware"
	"horizon/internal/services"
	"horizon/internal/utils"

	"github.com/gin-gonic/gin"
)

// APIHandler serves the JSON interaction endpoints consumed by the
// reader frontend.
type APIHandler struct {
	previews *services.LinkPreviewService
}

func NewAPIHandler(previews *services.LinkPreviewService) *APIHandler {
	return &APIHandler{previews: previews}
}

// ToggleLike flips the caller's like on a post.
func (h *APIHandler) ToggleLike(c *gin.Context) {
	user := identity.CurrentUser(c)
	postID := utils.StringToUint(c.Param("post_id"))

	liked, count, err := services.TogglePostLike(postID, user.ID)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": count})
}

// AddComment posts a comment or reply.
func (h *APIHandler) AddComment(c *gin.Context) {
	user := identity.CurrentUser(c)
	postID := utils.StringToUint(c.Param("id"))

	var req struct {
		Body     string `json:"body"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := services.CreateComment(postID, user.ID, req.Body, req.ParentID)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         comment.ID,
		"post_id":    comment.PostID,
		"parent_id":  comment.ParentID,
		"body":       comment.Body,
		"created_at": comment.CreatedAt,
		"author":     user.DisplayName(),
	})
}

// DeleteComment removes a comment and its replies. Authors may delete
// their own; admins may delete anything.
func (h *APIHandler) DeleteComment(c *gin.Context) {
	user := identity.CurrentUser(c)
	commentID := utils.StringToUint(c.Param("id"))

	if err := services.DeleteComment(commentID, user, middleware.AdminEmails()); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// ToggleCommentLike flips the caller's like on a comment.
func (h *APIHandler) ToggleCommentLike(c *gin.Context) {
	user := identity.CurrentUser(c)
	commentID := utils.StringToUint(c.Param("id"))

	liked, count, err := services.ToggleCommentLike(commentID, user.ID)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": count})
}

// ListComments returns the serialized comment tree for a post.
func (h *APIHandler) ListComments(c *gin.Context) {
	postID := utils.StringToUint(c.Param("post_id"))

	tree, err := services.CommentTree(postID, identity.CurrentUser(c), middleware.AdminEmails())
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": tree})
}

// TrackReadEvent records a read checkpoint. This is the one endpoint
// open to anonymous callers: they identify via the anon_id token in the
// body instead of a session.
func (h *APIHandler) TrackReadEvent(c *gin.Context) {
	postID := utils.StringToUint(c.Param("post_id"))

	var req struct {
		Percent int    `json:"percent"`
		Seconds int    `json:"seconds"`
		AnonID  string `json:"anon_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	who, err := identity.Resolve(c, req.AnonID)
	if err != nil {
		apiError(c, err)
		return
	}

	_, err = services.RecordReadEvent(postID, who, services.ReadEventInput{
		Percent:   req.Percent,
		Seconds:   req.Seconds,
		IPAddress: identity.ClientIP(c.Request),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// LinkPreview unfurls an external URL for the editor.
func (h *APIHandler) LinkPreview(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url parameter is required"})
		return
	}

	preview, err := h.previews.Fetch(rawURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not fetch preview"})
		return
	}
	c.JSON(http.StatusOK, preview)
}
