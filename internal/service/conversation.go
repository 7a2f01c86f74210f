package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"mood-ai/internal/ai"
	"mood-ai/internal/domain"
	"mood-ai/internal/repository"
)

var ErrSendInFlight = errors.New("send already in flight")

const persistTimeout = 5 * time.Second

// TurnEventKind distingue los eventos emitidos por la conversacion.
type TurnEventKind string

const (
	TurnResolved  TurnEventKind = "resolved"
	TurnFailed    TurnEventKind = "failed"
	TurnPersisted TurnEventKind = "persisted"
)

// TurnEvent notifica la resolucion de un turno o su confirmacion de escritura.
type TurnEvent struct {
	Kind   TurnEventKind
	Record domain.ChatRecord
}

// ConversationService orquesta el viaje completo de un mensaje: insercion
// optimista, llamada al generador externo y resolucion del turno. Una
// instancia por sesion logica; chats en nil significa sesion anonima y
// ningun turno se persiste.
type ConversationService struct {
	logger    *zap.Logger
	timeline  *Timeline
	responder ai.Responder
	chats     repository.ChatRepository
	userID    string
	inFlight  atomic.Bool
	events    chan TurnEvent
}

func NewConversationService(
	logger *zap.Logger,
	timeline *Timeline,
	responder ai.Responder,
	chats repository.ChatRepository,
	userID string,
) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		logger:    logger,
		timeline:  timeline,
		responder: responder,
		chats:     chats,
		userID:    strings.TrimSpace(userID),
		events:    make(chan TurnEvent, 16),
	}
}

// Events expone la suscripcion a eventos de resolucion y persistencia.
func (s *ConversationService) Events() <-chan TurnEvent {
	return s.events
}

// Timeline devuelve la linea de tiempo de la sesion.
func (s *ConversationService) Timeline() *Timeline {
	return s.timeline
}

// Authenticated indica si la sesion persiste sus turnos.
func (s *ConversationService) Authenticated() bool {
	return s.chats != nil && s.userID != ""
}

// Send ejecuta una vuelta completa de conversacion. Entrada vacia es un
// no-op (ErrEmptyMessage, sin red ni mutacion). Solo un envio puede estar
// en vuelo por sesion; el siguiente se acepta cuando el anterior resolvio.
// Un fallo del generador resuelve el turno con el texto fallback y la
// sesion sigue usable: el error se absorbe aqui, no se propaga.
func (s *ConversationService) Send(ctx context.Context, message string) (domain.ChatRecord, error) {
	if strings.TrimSpace(message) == "" {
		return domain.ChatRecord{}, ErrEmptyMessage
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return domain.ChatRecord{}, ErrSendInFlight
	}
	defer s.inFlight.Store(false)

	pendingID, err := s.timeline.AppendOptimistic(message)
	if err != nil {
		return domain.ChatRecord{}, err
	}

	// Unico punto de suspension: esperar la respuesta del generador.
	reply, err := s.responder.Reply(ctx, strings.TrimSpace(message))
	if err != nil {
		s.logger.Warn("responder failed", zap.Error(err), zap.String("turn_id", pendingID))
		rec, failErr := s.timeline.Fail(pendingID)
		if failErr != nil {
			return domain.ChatRecord{}, failErr
		}
		s.emit(TurnEvent{Kind: TurnFailed, Record: rec})
		return rec, nil
	}

	rec, err := s.timeline.Resolve(pendingID, reply)
	if err != nil {
		return domain.ChatRecord{}, err
	}
	s.emit(TurnEvent{Kind: TurnResolved, Record: rec})

	if s.Authenticated() {
		// La confirmacion de escritura es un evento aparte y posiblemente
		// tardio; la respuesta al usuario no espera por el store.
		go s.persist(rec)
	}

	return rec, nil
}

func (s *ConversationService) persist(rec domain.ChatRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	rec.UserID = s.userID
	if err := s.chats.Create(ctx, rec); err != nil {
		// Sin reintentos: el turno ya se ve en pantalla, solo queda sin
		// confirmar como persistido.
		s.logger.Warn("persist chat failed", zap.Error(err), zap.String("turn_id", rec.ID))
		return
	}

	s.timeline.MarkPersisted(rec.ID)
	rec.Persisted = true
	s.emit(TurnEvent{Kind: TurnPersisted, Record: rec})
}

func (s *ConversationService) emit(ev TurnEvent) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("turn event dropped", zap.String("kind", string(ev.Kind)))
	}
}
