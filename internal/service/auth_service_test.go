package service

import (
	"errors"
	"testing"

	"filadash"
)

type fakeAuthRepo struct {
	users  map[string]*filadash.User
	nextID int
}

func (f *fakeAuthRepo) Create(username, passwordHash string) (int, error) {
	if _, exists := f.users[username]; exists {
		return 0, errors.New("username taken")
	}
	f.nextID++
	f.users[username] = &filadash.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	return f.nextID, nil
}

func (f *fakeAuthRepo) GetByUsername(username string) (*filadash.User, error) {
	return f.users[username], nil
}

func newTestAuthService() (*AuthService, *fakeAuthRepo) {
	repo := &fakeAuthRepo{users: map[string]*filadash.User{}}
	return NewAuthService(repo, "test-signing-key"), repo
}

func TestAuthService_SignUpHashesPassword(t *testing.T) {
	svc, repo := newTestAuthService()

	id, err := svc.SignUp("marta", "hunter2")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}
	u := repo.users["marta"]
	if u.PasswordHash == "hunter2" || u.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestAuthService_SignUpRejectsEmptyPassword(t *testing.T) {
	svc, _ := newTestAuthService()
	if _, err := svc.SignUp("marta", "   "); err == nil {
		t.Fatalf("expected error for blank password")
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService()

	id, err := svc.SignUp("marta", "hunter2")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	token, err := svc.GenerateToken("marta", "hunter2")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	gotID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if gotID != id {
		t.Fatalf("expected user id %d, got %d", id, gotID)
	}
}

func TestAuthService_GenerateTokenRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService()
	if _, err := svc.SignUp("marta", "hunter2"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, err := svc.GenerateToken("marta", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := svc.GenerateToken("nobody", "hunter2"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_ParseTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestAuthService()
	if _, err := svc.ParseToken("not.a.token"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestAuthService_ParseTokenRejectsForeignKey(t *testing.T) {
	svcA, _ := newTestAuthService()
	if _, err := svcA.SignUp("marta", "hunter2"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	token, err := svcA.GenerateToken("marta", "hunter2")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	repo := &fakeAuthRepo{users: map[string]*filadash.User{}}
	svcB := NewAuthService(repo, "a-different-key")
	if _, err := svcB.ParseToken(token); err == nil {
		t.Fatalf("token signed with another key must be rejected")
	}
}
