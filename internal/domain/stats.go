package domain

// MoodStats resume una secuencia de turnos: conteos por sentimiento y
// promedio del puntaje de animo.
type MoodStats struct {
	TotalCount       int     `json:"total_count"`
	AverageMoodScore float64 `json:"average_mood_score"`
	PositiveCount    int     `json:"positive_count"`
	NegativeCount    int     `json:"negative_count"`
	NeutralCount     int     `json:"neutral_count"`
}
