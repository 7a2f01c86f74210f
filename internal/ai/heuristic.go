package ai

import (
	"strings"

	"mood-ai/internal/domain"
)

// Heuristica de respaldo cuando no hay modelo disponible o devuelve texto
// libre. Buckets de palabras clave por sentimiento, conteo simple.
var sentimentKeywords = map[domain.Sentiment][]string{
	domain.SentimentPositive: {
		"happy", "great", "good", "wonderful", "awesome", "amazing", "love",
		"excited", "thankful", "grateful", "better", "relaxed", "calm",
	},
	domain.SentimentNegative: {
		"sad", "down", "depress", "angry", "mad", "furious", "anxious",
		"worried", "tired", "lonely", "stressed", "scared", "hurt", "cry",
	},
}

// HeuristicSentiment clasifica el mensaje por palabras clave.
func HeuristicSentiment(message string) domain.Sentiment {
	t := strings.ToLower(message)

	best := domain.SentimentNeutral
	bestScore := 0
	for _, label := range []domain.Sentiment{domain.SentimentPositive, domain.SentimentNegative} {
		score := 0
		for _, word := range sentimentKeywords[label] {
			if strings.Contains(t, word) {
				score++
			}
		}
		if score > bestScore {
			best = label
			bestScore = score
		}
	}
	return best
}

// HeuristicMoodScore mapea el sentimiento heuristico a un puntaje en [0,1].
func HeuristicMoodScore(message string) float64 {
	switch HeuristicSentiment(message) {
	case domain.SentimentPositive:
		return 0.8
	case domain.SentimentNegative:
		return 0.2
	default:
		return 0.5
	}
}
