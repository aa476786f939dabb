package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/todo-api/internal/model"
)

const testSecret = "this-is-a-test-secret-with-32-bytes!"

func testUser() *model.User {
	return &model.User{ID: 42, Name: "John Doe", Email: "john@example.com", Role: model.RoleUser}
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("Password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "Password123" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if !h.Verify(hash, "Password123") {
		t.Error("expected correct password to verify")
	}
	if h.Verify(hash, "password123") {
		t.Error("expected wrong password to fail")
	}
}

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	if issuer.TTL() != time.Hour {
		t.Errorf("expected TTL 1h, got %v", issuer.TTL())
	}
	tok, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if d := time.Until(tok.Exp); d < 59*time.Minute || d > time.Hour {
		t.Errorf("expected exp about one hour ahead, got %v", d)
	}

	claims, err := issuer.Parse(tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "42" {
		t.Errorf("expected sub=42, got %q", claims.Subject)
	}
	if id, err := claims.UserID(); err != nil || id != 42 {
		t.Errorf("expected UserID 42, got %d (%v)", id, err)
	}
	if claims.Name != "John Doe" || claims.Role != model.RoleUser {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Error("expected iat and exp to be set")
	}
}

func TestTokenIssuer_ParseFailuresAreIndistinguishable(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	expiredIssuer := issuer.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, err := expiredIssuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	other, err := NewTokenIssuer("another-secret-another-secret-1234", time.Hour).Issue(testUser())
	if err != nil {
		t.Fatalf("issue other: %v", err)
	}
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42", "exp": time.Now().Add(time.Hour).Unix()})
	noneSigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "42"})
	noExpSigned, err := noExp.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign without exp: %v", err)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"expired", expired.Token},
		{"bad signature", other.Token},
		{"malformed", "not.a.jwt"},
		{"empty", ""},
		{"alg none", noneSigned},
		{"missing exp", noExpSigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := issuer.Parse(tt.raw)
			if err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
			if claims != nil {
				t.Errorf("expected nil claims, got %+v", claims)
			}
		})
	}
}

func TestTokenIssuer_DistinctTokensWithinSameSecond(t *testing.T) {
	fixed := time.Now()
	issuer := NewTokenIssuer(testSecret, time.Hour).WithClock(func() time.Time { return fixed })
	a, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	b, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if a.Token == b.Token {
		t.Error("expected two issues at the same instant to differ")
	}
}
