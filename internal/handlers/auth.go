package handlers

import (
	"errors"
	"net/http"
	"time"

	"horizon/internal/db"
	"horizon/internal/middleware"
	"horizon/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// CreateSession exchanges an IdP ID token for a session cookie. The
// user row is upserted on every login so name/email changes at the
// directory propagate here.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_token is required"})
		return
	}

	claims, err := middleware.ParseIdentityToken(req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid identity token"})
		return
	}

	now := time.Now()
	var user models.User
	err = db.DB.Where("entra_oid = ?", claims.OID).First(&user).Error
	switch {
	case err == nil:
		user.Email = claims.Email
		user.Name = claims.Name
		user.LastLoginAt = now
		if err := db.DB.Save(&user).Error; err != nil {
			apiError(c, err)
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			EntraOID:    claims.OID,
			Email:       claims.Email,
			Name:        claims.Name,
			LastLoginAt: now,
		}
		if err := db.DB.Create(&user).Error; err != nil {
			apiError(c, err)
			return
		}
	default:
		apiError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"name":     user.DisplayName(),
			"is_admin": user.IsAdmin(middleware.AdminEmails()),
		},
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1, Path: "/"})
	if err := session.Save(); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
