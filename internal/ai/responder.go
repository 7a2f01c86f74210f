package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"mood-ai/internal/domain"
)

// Reply es la salida del generador externo para un mensaje del usuario.
type Reply struct {
	Response  string           `json:"response"`
	Sentiment domain.Sentiment `json:"sentiment"`
	MoodScore float64          `json:"mood_score"`
}

// Responder define la interfaz del generador de respuestas con sentimiento.
type Responder interface {
	Reply(ctx context.Context, message string) (Reply, error)
}

const systemPrompt = `You are an empathetic mental wellness assistant.
Respond concisely, supportive, and safe.
Return ONLY a strict JSON object with keys:
- "response": your reply to the user
- "sentiment": one of POSITIVE, NEGATIVE, NEUTRAL describing the user's message
- "mood_score": a number between 0.0 and 1.0 for the user's emotional positivity
Do not include any extra text outside the JSON.`

const unconfiguredResponse = "I hear you. Thanks for sharing. (AI key not configured)"

// HTTPResponder implementa Responder contra una API OpenAI-compatible.
type HTTPResponder struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPResponder construye un cliente apuntando a chat completions.
func NewHTTPResponder(baseURL, apiKey, model string, logger *zap.Logger) *HTTPResponder {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPResponder{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Reply envia el mensaje al modelo y devuelve respuesta, sentimiento y puntaje.
// Sin API key configurada no hay llamada de red: respuesta fija + heuristica,
// igual que con contenido no-JSON del modelo. Errores de transporte o HTTP
// si se propagan; ese es el caso de fallo que el controlador convierte en
// turno fallback.
func (c *HTTPResponder) Reply(ctx context.Context, message string) (Reply, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return Reply{
			Response:  unconfiguredResponse,
			Sentiment: HeuristicSentiment(message),
			MoodScore: HeuristicMoodScore(message),
		}, nil
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Reply{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return Reply{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("responder http error", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		return Reply{}, fmt.Errorf("responder http error: status=%d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return Reply{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if cr.Error != nil {
		return Reply{}, fmt.Errorf("responder api error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return Reply{}, fmt.Errorf("responder empty response")
	}

	return parseModelReply(message, cr.Choices[0].Message.Content), nil
}

// parseModelReply interpreta el contenido del modelo. Si no es el JSON
// estricto pedido, el texto crudo pasa como respuesta y el sentimiento se
// estima por heuristica (mismo contrato: la llamada fue exitosa).
func parseModelReply(userMessage, content string) Reply {
	cleaned := cleanJSONResponse(content)

	var parsed struct {
		Response  string   `json:"response"`
		Sentiment string   `json:"sentiment"`
		MoodScore *float64 `json:"mood_score"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil || strings.TrimSpace(parsed.Response) == "" {
		return Reply{
			Response:  strings.TrimSpace(content),
			Sentiment: HeuristicSentiment(userMessage),
			MoodScore: HeuristicMoodScore(userMessage),
		}
	}

	score := 0.5
	if parsed.MoodScore != nil {
		score = domain.ClampMoodScore(*parsed.MoodScore)
	}
	return Reply{
		Response:  strings.TrimSpace(parsed.Response),
		Sentiment: domain.ParseSentiment(parsed.Sentiment),
		MoodScore: score,
	}
}

// cleanJSONResponse quita fences de markdown que algunos modelos agregan.
func cleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
