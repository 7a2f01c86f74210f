package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mood-ai/internal/domain"
	"mood-ai/internal/repository"
)

// UserService coordina reglas de negocio para usuarios.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	chats  repository.ChatRepository
}

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func NewUserService(logger *zap.Logger, users repository.UserRepository, chats repository.ChatRepository) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{logger: logger, users: users, chats: chats}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Admin    bool
}

// Register crea un usuario con hash bcrypt. El flag Admin agrega el rol de
// administrador ademas del rol base.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	password := strings.TrimSpace(input.Password)
	if password == "" {
		return domain.User{}, ErrInvalidPassword
	}

	taken, err := s.users.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, ErrEmailTaken
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	roles := []string{domain.RoleUser}
	if input.Admin {
		roles = []string{domain.RoleAdmin, domain.RoleUser}
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: string(hashBytes),
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate valida email y password; cualquier discrepancia devuelve el
// mismo error para no filtrar cuentas existentes.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID devuelve el usuario o repository.ErrUserNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// List devuelve todos los usuarios (solo para la vista de administracion).
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Delete elimina un usuario junto con su historial de conversaciones.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if s.chats != nil {
		if err := s.chats.DeleteByUserID(ctx, id); err != nil {
			return err
		}
	}
	return s.users.Delete(ctx, id)
}

// EnsureAdmin garantiza que exista el usuario administrador sembrado por
// configuracion. Idempotente: si el email ya existe no hace nada.
func (s *UserService) EnsureAdmin(ctx context.Context, emailAddr, password string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	taken, err := s.users.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if taken {
		return nil
	}

	_, err = s.Register(ctx, RegisterInput{
		Email:    emailAddr,
		Password: password,
		FullName: "Administrator",
		Admin:    true,
	})
	if err != nil {
		return err
	}
	s.logger.Info("admin user seeded", zap.String("email", emailAddr))
	return nil
}

func normalizeEmail(raw string) string {
	emailAddr := strings.ToLower(strings.TrimSpace(raw))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return ""
	}
	return emailAddr
}
