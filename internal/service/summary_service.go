package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mood-ai/internal/domain"
	"mood-ai/internal/repository"
)

// RecentActivityWindow es la ventana por defecto para "actividad reciente".
const RecentActivityWindow = 24 * time.Hour

// UserSummary es el tablero por usuario derivado del historial persistido.
type UserSummary struct {
	Stats       domain.MoodStats `json:"stats"`
	RecentCount int              `json:"recent_count"`
}

// AdminOverview agrega estadisticas globales mas conteos de usuarios por rol.
type AdminOverview struct {
	Stats       domain.MoodStats `json:"stats"`
	RecentCount int              `json:"recent_count"`
	TotalUsers  int              `json:"total_users"`
	RoleCounts  map[string]int   `json:"role_counts"`
}

// SummaryService deriva tableros a partir del historial ya persistido.
// Una sola lectura del store por resumen; el resto es agregacion pura.
type SummaryService struct {
	logger *zap.Logger
	chats  repository.ChatRepository
	users  repository.UserRepository
	now    func() time.Time
}

func NewSummaryService(logger *zap.Logger, chats repository.ChatRepository, users repository.UserRepository) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{
		logger: logger,
		chats:  chats,
		users:  users,
		now:    time.Now,
	}
}

// UserSummary calcula el tablero del usuario. Un historial vacio produce
// estadisticas en cero, nunca un error.
func (s *SummaryService) UserSummary(ctx context.Context, userID string) (UserSummary, error) {
	history, err := s.chats.ListByUserID(ctx, userID)
	if err != nil {
		return UserSummary{}, fmt.Errorf("fetch history: %w", err)
	}

	return UserSummary{
		Stats:       AggregateMood(history),
		RecentCount: CountInWindow(history, RecentActivityWindow, s.now().UTC()),
	}, nil
}

// AdminOverview calcula la vista global para administradores.
func (s *SummaryService) AdminOverview(ctx context.Context) (AdminOverview, error) {
	history, err := s.chats.ListAll(ctx)
	if err != nil {
		return AdminOverview{}, fmt.Errorf("fetch global history: %w", err)
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return AdminOverview{}, fmt.Errorf("fetch users: %w", err)
	}

	roleCounts := make(map[string]int)
	for _, u := range users {
		for _, role := range u.Roles {
			roleCounts[role]++
		}
	}

	return AdminOverview{
		Stats:       AggregateMood(history),
		RecentCount: CountInWindow(history, RecentActivityWindow, s.now().UTC()),
		TotalUsers:  len(users),
		RoleCounts:  roleCounts,
	}, nil
}
