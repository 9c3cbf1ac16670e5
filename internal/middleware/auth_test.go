package middleware

import (
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims IdentityClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return raw
}

func TestParseIdentityToken(t *testing.T) {
	os.Setenv("IDP_JWT_SECRET", "test-secret")

	raw := signToken(t, "test-secret", IdentityClaims{
		OID:   "oid-123",
		Email: "user@example.com",
		Name:  "Test User",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ParseIdentityToken(raw)
	if err != nil {
		t.Fatalf("ParseIdentityToken failed: %v", err)
	}
	if claims.OID != "oid-123" || claims.Email != "user@example.com" {
		t.Errorf("Claims wrong: %+v", claims)
	}
}

func TestParseIdentityTokenRejects(t *testing.T) {
	os.Setenv("IDP_JWT_SECRET", "test-secret")

	// Wrong secret
	raw := signToken(t, "other-secret", IdentityClaims{OID: "x", Email: "x@example.com"})
	if _, err := ParseIdentityToken(raw); err == nil {
		t.Error("Expected error for wrong signing key")
	}

	// Expired token
	raw = signToken(t, "test-secret", IdentityClaims{
		OID: "x", Email: "x@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	if _, err := ParseIdentityToken(raw); err == nil {
		t.Error("Expected error for expired token")
	}

	// Missing oid/email claims
	raw = signToken(t, "test-secret", IdentityClaims{})
	if _, err := ParseIdentityToken(raw); err == nil {
		t.Error("Expected error for missing claims")
	}

	// Garbage
	if _, err := ParseIdentityToken("not.a.token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestAdminEmails(t *testing.T) {
	os.Setenv("ADMIN_EMAILS", " a@example.com, b@example.com ,,c@example.com")
	got := AdminEmails()
	want := []string{"a@example.com", "b@example.com", "c@example.com"}
	if len(got) != len(want) {
		t.Fatalf("AdminEmails = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AdminEmails[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	os.Setenv("ADMIN_EMAILS", "")
	if got := AdminEmails(); len(got) != 0 {
		t.Errorf("Empty allowlist should be empty, got %v", got)
	}
}
