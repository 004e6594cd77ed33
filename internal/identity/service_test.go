package identity

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, err := svc.Register(ctx, Credentials{Name: "Ada", Email: "Ada@Example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if !user.Active {
		t.Fatal("expected new user to be active")
	}

	authed, err := svc.Authenticate(ctx, Credentials{Email: "ada@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}

	if _, err := svc.Authenticate(ctx, Credentials{Email: "ada@example.com", Password: "wrong"}); err == nil {
		t.Fatal("expected bad password to fail")
	}
}

func TestGetReturnsRegisteredUser(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, err := svc.Register(ctx, Credentials{Name: "Ada", Email: "ada@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	fetched, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Email != user.Email || fetched.Name != "Ada" {
		t.Fatalf("unexpected user: %+v", fetched)
	}

	if _, err := svc.Get(ctx, "unknown-id"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Email: "not-an-email", Password: "long-enough"}); err == nil {
		t.Fatal("expected invalid email to fail")
	}
	if _, err := svc.Register(ctx, Credentials{Email: "a@b.com", Password: "short"}); err == nil {
		t.Fatal("expected short password to fail")
	}
	if _, err := svc.Register(ctx, Credentials{Email: "a@b.com", Password: "long-enough"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, Credentials{Email: "a@b.com", Password: "long-enough"}); err == nil {
		t.Fatal("expected duplicate email to fail")
	}
}
