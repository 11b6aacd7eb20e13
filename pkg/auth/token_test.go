package auth

import (
	"testing"
	"time"

	"github.com/electrosoundpack/storefront-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 120}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, jti, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: 7, Email: "ana@example.com", IsAdmin: true})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if jti == "" {
		t.Fatal("expected generated jti")
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "ana@example.com" || !claims.IsAdmin {
		t.Fatalf("claims not preserved: %+v", claims)
	}
	if claims.ID != jti {
		t.Fatalf("expected jti %s, got %s", jti, claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 2*time.Hour {
		t.Fatalf("expected 2h lifetime, got %v", got)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, _, err := MintAccessToken(cfg, time.Now().Add(-3*time.Hour), AccessTokenPayload{UserID: 1, Email: "a@b.c"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseRejectsWrongSecretAndIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 1, Email: "a@b.c"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}

	other = cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestMintValidatesInput(t *testing.T) {
	if _, _, err := MintAccessToken(config.JWTConfig{}, time.Now(), AccessTokenPayload{UserID: 1, Email: "a@b.c"}); err == nil {
		t.Fatal("expected missing secret to fail")
	}
	if _, _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected missing identity to fail")
	}
}
