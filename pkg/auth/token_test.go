package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/pkg/config"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "bloomstack-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		ShopID: uuid.New(),
		Role:   enums.UserRoleOwner,
	}

	signed, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("user id mismatch: %s vs %s", claims.UserID, payload.UserID)
	}
	if claims.ShopID != payload.ShopID {
		t.Fatalf("shop id mismatch: %s vs %s", claims.ShopID, payload.ShopID)
	}
	if claims.Role != enums.UserRoleOwner {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		ShopID: uuid.New(),
		Role:   enums.UserRoleOwner,
	}

	signed, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), payload)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail validation")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, signed)
	if err != nil {
		t.Fatalf("allow-expired parse failed: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatal("expected claims from expired token")
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		ShopID: uuid.New(),
		Role:   enums.UserRoleOwner,
	}

	cfg := testJWTConfig()
	cfg.Secret = ""
	if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
		t.Fatal("expected error for missing secret")
	}

	cfg = testJWTConfig()
	payload.Role = enums.UserRole("florist")
	if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
		t.Fatal("expected error for invalid role")
	}

	payload.Role = enums.UserRoleOwner
	payload.UserID = uuid.Nil
	if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
		t.Fatal("expected error for nil user id")
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		ShopID: uuid.New(),
		Role:   enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	other := cfg
	other.Secret = "different-secret"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}
