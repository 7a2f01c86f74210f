package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"mood-ai/internal/domain"
	"mood-ai/internal/repository"
)

type fakeUserRepo struct {
	byEmail map[string]domain.User
	created []domain.User
	deleted []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]domain.User)}
}

func (m *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	m.created = append(m.created, user)
	m.byEmail[user.Email] = user
	return nil
}

func (m *fakeUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	var users []domain.User
	for _, u := range m.byEmail {
		users = append(users, u)
	}
	return users, nil
}

func (m *fakeUserRepo) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	for email, u := range m.byEmail {
		if u.ID == id {
			delete(m.byEmail, email)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func TestUserServiceRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(nil, repo, nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Alice@Example.COM ",
		Password: "secret123",
		FullName: " Alice ",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Email != "alice@example.com" || user.FullName != "Alice" {
		t.Fatalf("expected normalized fields, got %+v", user)
	}
	if user.IsAdmin() {
		t.Fatalf("regular registration must not grant admin role")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("expected bcrypt hash of password: %v", err)
	}
}

func TestUserServiceRegister_AdminFlag(t *testing.T) {
	svc := NewUserService(nil, newFakeUserRepo(), nil)
	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "admin@example.com",
		Password: "secret123",
		Admin:    true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !user.IsAdmin() {
		t.Fatalf("expected admin role, got %v", user.Roles)
	}
}

func TestUserServiceRegister_Validation(t *testing.T) {
	svc := NewUserService(nil, newFakeUserRepo(), nil)

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "no-at-sign", Password: "x"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "  "}); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestUserServiceRegister_DuplicateEmail(t *testing.T) {
	svc := NewUserService(nil, newFakeUserRepo(), nil)
	input := RegisterInput{Email: "a@b.com", Password: "secret123"}

	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserServiceAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(nil, repo, nil)

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "a@b.com", "secret123"); err != nil {
		t.Fatalf("expected login success, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "a@b.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@b.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestUserServiceEnsureAdmin_Idempotent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(nil, repo, nil)

	if err := svc.EnsureAdmin(context.Background(), "admin@b.com", "secret123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.EnsureAdmin(context.Background(), "admin@b.com", "secret123"); err != nil {
		t.Fatalf("expected no error on second call, got %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected single seeded admin, got %d", len(repo.created))
	}
	if !repo.created[0].IsAdmin() {
		t.Fatalf("seeded user must be admin")
	}
}

func TestUserServiceEnsureAdmin_Unconfigured(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(nil, repo, nil)

	if err := svc.EnsureAdmin(context.Background(), "", ""); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("unconfigured seed must not create users")
	}
}

func TestUserServiceDelete_RemovesChats(t *testing.T) {
	userRepo := newFakeUserRepo()
	chatRepo := &mockChatRepo{}
	svc := NewUserService(nil, userRepo, chatRepo)

	user, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(userRepo.deleted) != 1 || userRepo.deleted[0] != user.ID {
		t.Fatalf("expected user deleted, got %v", userRepo.deleted)
	}
}
