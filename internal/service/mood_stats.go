package service

import (
	"time"

	"mood-ai/internal/domain"
)

// AggregateMood reduce una secuencia de turnos a estadisticas de animo.
// Funcion pura: sin efectos, independiente del orden de entrada. Los turnos
// sin sentimiento asignado (pendientes o fallidos) no se cuentan, asi un
// envio fallido nunca altera las estadisticas.
func AggregateMood(records []domain.ChatRecord) domain.MoodStats {
	var stats domain.MoodStats
	var sum float64
	var scored int

	for _, rec := range records {
		if rec.Sentiment == "" {
			continue
		}
		stats.TotalCount++
		switch rec.Sentiment {
		case domain.SentimentPositive:
			stats.PositiveCount++
		case domain.SentimentNegative:
			stats.NegativeCount++
		default:
			// La enumeracion es cerrada: todo lo demas es NEUTRAL.
			stats.NeutralCount++
		}
		if rec.MoodScore != nil {
			sum += domain.ClampMoodScore(*rec.MoodScore)
			scored++
		}
	}

	if scored > 0 {
		stats.AverageMoodScore = sum / float64(scored)
	}
	return stats
}

// CountInWindow cuenta los turnos cuyo CreatedAt cae dentro de la ventana
// hacia atras desde now. Todas las comparaciones usan el mismo instante de
// referencia en UTC; nunca el reloj local por registro.
func CountInWindow(records []domain.ChatRecord, window time.Duration, now time.Time) int {
	cutoff := now.UTC().Add(-window)
	count := 0
	for _, rec := range records {
		created := rec.CreatedAt.UTC()
		if created.After(cutoff) && !created.After(now.UTC()) {
			count++
		}
	}
	return count
}
