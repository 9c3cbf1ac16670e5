package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"horizon/internal/models"

	"github.com/gin-gonic/gin"
)

func testContext() *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func TestResolveLoggedInWins(t *testing.T) {
	c := testContext()
	c.Set(UserKey, &models.User{ID: 42})

	// Session beats anon token even when both are present
	who, err := Resolve(c, "anon-token-abc")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !who.LoggedIn() || who.UserID != 42 {
		t.Errorf("Expected logged-in user 42, got %+v", who)
	}
	if who.AnonID != "" {
		t.Errorf("Expected empty AnonID for logged-in reader, got %q", who.AnonID)
	}
}

func TestResolveAnonymous(t *testing.T) {
	c := testContext()

	who, err := Resolve(c, "  token-with-spaces  ")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if who.LoggedIn() {
		t.Errorf("Expected anonymous reader, got user %d", who.UserID)
	}
	// Token is taken verbatim so it stays stable across requests
	if who.AnonID != "  token-with-spaces  " {
		t.Errorf("AnonID was altered: %q", who.AnonID)
	}
}

func TestResolveMissingIdentity(t *testing.T) {
	c := testContext()

	_, err := Resolve(c, "")
	if err != ErrMissingIdentity {
		t.Errorf("Expected ErrMissingIdentity, got %v", err)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	if ip := ClientIP(req); ip != "10.0.0.1" {
		t.Errorf("Expected 10.0.0.1, got %s", ip)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := ClientIP(req); ip != "203.0.113.9" {
		t.Errorf("Expected first forwarded address, got %s", ip)
	}
}
