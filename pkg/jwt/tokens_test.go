package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestGenerateParseRoundTrip(t *testing.T) {
	token, err := GenerateToken("a@x.com", "Ann", "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, err := Parse(token, "secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "a@x.com" {
		t.Fatalf("unexpected subject: %q", claims.Subject)
	}
	if claims.Name != "Ann" {
		t.Fatalf("unexpected name: %q", claims.Name)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("a@x.com", "Ann", "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := Parse(token, "other-secret"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken("a@x.com", "Ann", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	_, err = Parse(token, "secret")
	if !errors.Is(err, jwtlib.ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestParseRejectsUnsignedToken(t *testing.T) {
	unsigned := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{
		Name: "Ann",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "a@x.com",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	token, err := unsigned.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := Parse(token, "secret"); err == nil {
		t.Fatalf("expected error for alg=none token")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-token", "secret"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
