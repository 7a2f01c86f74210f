package domain

import (
	"strings"
	"time"
)

// Sentiment es una enumeracion cerrada; cualquier valor desconocido se
// normaliza a NEUTRAL. El valor vacio significa "aun sin asignar" (turno
// pendiente o fallido).
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// ParseSentiment normaliza la etiqueta devuelta por el generador externo.
func ParseSentiment(raw string) Sentiment {
	switch Sentiment(strings.ToUpper(strings.TrimSpace(raw))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ClampMoodScore acota el puntaje al rango [0,1]; nunca rechaza valores.
func ClampMoodScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ChatRecord representa un turno completo: mensaje del usuario mas la
// respuesta del asistente, con el sentimiento y puntaje de animo inferidos.
// MoodScore en nil indica que el turno todavia no tiene datos de animo.
type ChatRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	UserMessage string    `json:"message"`
	AIResponse  string    `json:"response"`
	Sentiment   Sentiment `json:"sentiment,omitempty"`
	MoodScore   *float64  `json:"mood_score,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Persisted   bool      `json:"persisted"`
}

// Resolved indica si el turno ya recibio una respuesta (exitosa o fallback).
func (r ChatRecord) Resolved() bool {
	return r.AIResponse != ""
}

// HasMoodData indica si el generador asigno sentimiento y puntaje al turno.
func (r ChatRecord) HasMoodData() bool {
	return r.Sentiment != "" && r.MoodScore != nil
}
