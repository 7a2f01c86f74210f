package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mood-ai/internal/ai"
	"mood-ai/internal/domain"
	"mood-ai/internal/repository"
)

// FallbackResponse es el texto fijo que ve el usuario cuando el generador
// externo falla. El turno queda resuelto pero sin sentimiento ni puntaje.
const FallbackResponse = "I'm sorry, I'm having trouble connecting right now. Please try again."

var (
	ErrEmptyMessage = errors.New("empty message")
	ErrTurnNotFound = errors.New("turn not found")
	ErrTurnResolved = errors.New("turn already resolved")
)

// Timeline mantiene la transcripcion visible de una sesion: historial
// cargado una sola vez al inicio mas los turnos vivos que se van agregando.
// Escritor unico con llamadas secuenciales; el mutex cubre los snapshots
// concurrentes y la confirmacion asincrona de persistencia.
type Timeline struct {
	mu      sync.Mutex
	records []domain.ChatRecord
	pending map[string]int
	loaded  bool
}

func NewTimeline() *Timeline {
	return &Timeline{pending: make(map[string]int)}
}

// LoadHistory trae el historial persistido (mas reciente primero) y lo
// reordena cronologicamente antes de anteponerlo a los turnos vivos. Un
// fallo de red o de autorizacion deja la linea de tiempo vacia y devuelve
// un error recuperable; la sesion sigue siendo usable.
func (t *Timeline) LoadHistory(ctx context.Context, chats repository.ChatRepository, userID string) error {
	if chats == nil || strings.TrimSpace(userID) == "" {
		return nil
	}

	history, err := chats.ListByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	// El store devuelve DESC; la vista es ASC por created_at.
	chronological := make([]domain.ChatRecord, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		chronological = append(chronological, history[i])
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded {
		return nil
	}
	live := t.records
	t.records = append(chronological, live...)
	for id, idx := range t.pending {
		t.pending[id] = idx + len(chronological)
	}
	t.loaded = true
	return nil
}

// AppendOptimistic inserta un turno pendiente visible de inmediato, antes de
// cualquier viaje de red. Devuelve el identificador estable del turno con el
// que luego se resuelve.
func (t *Timeline) AppendOptimistic(userMessage string) (string, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return "", ErrEmptyMessage
	}

	rec := domain.ChatRecord{
		ID:          uuid.NewString(),
		UserMessage: userMessage,
		CreatedAt:   time.Now().UTC(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, rec)
	t.pending[rec.ID] = len(t.records) - 1
	return rec.ID, nil
}

// Resolve completa un turno pendiente con el resultado del generador.
// Sentimiento y puntaje se asignan juntos, nunca a medias. Resolver dos
// veces el mismo turno es una violacion de contrato.
func (t *Timeline) Resolve(pendingID string, reply ai.Reply) (domain.ChatRecord, error) {
	return t.resolve(pendingID, func(rec *domain.ChatRecord) {
		clamped := domain.ClampMoodScore(reply.MoodScore)
		rec.AIResponse = reply.Response
		rec.Sentiment = domain.ParseSentiment(string(reply.Sentiment))
		rec.MoodScore = &clamped
	})
}

// Fail resuelve un turno pendiente con el texto fallback fijo. No se fabrica
// sentimiento ni puntaje para un fallo.
func (t *Timeline) Fail(pendingID string) (domain.ChatRecord, error) {
	return t.resolve(pendingID, func(rec *domain.ChatRecord) {
		rec.AIResponse = FallbackResponse
	})
}

func (t *Timeline) resolve(pendingID string, apply func(*domain.ChatRecord)) (domain.ChatRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.pending[pendingID]
	if !ok {
		for _, rec := range t.records {
			if rec.ID == pendingID {
				return domain.ChatRecord{}, ErrTurnResolved
			}
		}
		return domain.ChatRecord{}, ErrTurnNotFound
	}

	apply(&t.records[idx])
	delete(t.pending, pendingID)
	return t.records[idx], nil
}

// MarkPersisted marca un turno como confirmado por el store. Llega como un
// evento separado y posiblemente tardio; nunca bloquea la vista.
func (t *Timeline) MarkPersisted(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.records {
		if t.records[i].ID == id {
			t.records[i].Persisted = true
			return true
		}
	}
	return false
}

// Records devuelve una copia de la transcripcion en orden de despliegue.
func (t *Timeline) Records() []domain.ChatRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.ChatRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Len devuelve la cantidad de turnos visibles.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// PendingCount devuelve la cantidad de turnos aun sin resolver.
func (t *Timeline) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
