package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"horizon/internal/db"
	"horizon/internal/identity"
	"horizon/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the subset of the IdP's ID-token claims we consume.
type IdentityClaims struct {
	OID   string `json:"oid"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// ParseIdentityToken validates a token minted by the identity
// collaborator. The OAuth redirect dance happens outside this service;
// by the time a token reaches us it is a plain signed JWT.
func ParseIdentityToken(raw string) (*IdentityClaims, error) {
	secret := os.Getenv("IDP_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("IDP_JWT_SECRET not configured")
	}

	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.OID == "" || claims.Email == "" {
		return nil, fmt.Errorf("token missing oid/email claims")
	}
	return claims, nil
}

// AdminEmails parses the ADMIN_EMAILS allowlist.
func AdminEmails() []string {
	var out []string
	for _, e := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// LoadUser resolves the caller into the gin context. Session cookie
// first; failing that, an Authorization bearer token from the IdP is
// accepted so API clients don't need the cookie jar.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get("user_id").(uint); ok {
			var user models.User
			if err := db.DB.First(&user, userID).Error; err == nil {
				c.Set(identity.UserKey, &user)
			}
			c.Next()
			return
		}

		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			if claims, err := ParseIdentityToken(strings.TrimPrefix(auth, "Bearer ")); err == nil {
				var user models.User
				if err := db.DB.Where("entra_oid = ?", claims.OID).First(&user).Error; err == nil {
					c.Set(identity.UserKey, &user)
				}
			}
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a resolved user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity.CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.Next()
	}
}

// AdminRequired rejects users not on the admin allowlist. Must run
// after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := identity.CurrentUser(c)
		if user == nil || !user.IsAdmin(AdminEmails()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
			return
		}
		c.Next()
	}
}
