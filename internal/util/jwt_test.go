package util

import (
	"exam_prep_backend/internal/model"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		Name:        "测试用户",
		Email:       "tester@example.com",
		Role:        model.Admin,
		IsSuperuser: true,
	}
	user.ID = 42

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "tester@example.com" {
		t.Errorf("Email = %q, want tester@example.com", claims.Email)
	}
	if claims.Role != model.Admin {
		t.Errorf("Role = %q, want %q", claims.Role, model.Admin)
	}
	if !claims.IsSuperuser {
		t.Error("IsSuperuser not carried through the token")
	}
}

func TestJWTWrongSecret(t *testing.T) {
	user := &model.User{Email: "tester@example.com", Role: model.Tester}
	user.ID = 1

	token, err := GenerateJWT(user, "secret-a", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if _, err := ParseJWT(token, "secret-b"); err == nil {
		t.Error("ParseJWT accepted a token signed with a different secret")
	}
}

func TestJWTExpired(t *testing.T) {
	user := &model.User{Email: "tester@example.com", Role: model.Tester}
	user.ID = 1

	token, err := GenerateJWT(user, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Error("ParseJWT accepted an expired token")
	}
}
