package security

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, errGen := GenerateToken("testsecret", 7, "Stijn", "user", 3, time.Hour)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}

	claims, errParse := ParseToken("testsecret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.UserID != 7 {
		t.Fatalf("expected user_id 7, got %d", claims.UserID)
	}
	if claims.Name != "Stijn" || claims.Role != "user" {
		t.Fatalf("unexpected identity claims: %+v", claims)
	}
	if claims.ProxyAmount != 3 {
		t.Fatalf("expected proxy_amount 3, got %d", claims.ProxyAmount)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, errGen := GenerateToken("testsecret", 7, "Stijn", "user", 3, time.Hour)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}
	if _, errParse := ParseToken("othersecret", token); errParse == nil {
		t.Fatalf("expected parse failure with wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, errGen := GenerateToken("testsecret", 7, "Stijn", "user", 3, -time.Minute)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}
	if _, errParse := ParseToken("testsecret", token); errParse != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}

func TestGenerateUserTokenUnique(t *testing.T) {
	first, errFirst := GenerateUserToken()
	if errFirst != nil {
		t.Fatalf("generate: %v", errFirst)
	}
	second, errSecond := GenerateUserToken()
	if errSecond != nil {
		t.Fatalf("generate: %v", errSecond)
	}
	if first == second {
		t.Fatalf("expected distinct tokens")
	}
	if len(first) != userTokenBytes*2 {
		t.Fatalf("expected %d hex chars, got %d", userTokenBytes*2, len(first))
	}
	if !TokensEqual(first, first) || TokensEqual(first, second) {
		t.Fatalf("token comparison misbehaved")
	}
}
