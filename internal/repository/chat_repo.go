package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"mood-ai/internal/domain"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatRepository define el contrato de persistencia para el historial de
// conversaciones. Los listados devuelven los registros mas recientes primero.
type ChatRepository interface {
	Create(ctx context.Context, record domain.ChatRecord) error
	ListByUserID(ctx context.Context, userID string) ([]domain.ChatRecord, error)
	ListAll(ctx context.Context) ([]domain.ChatRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteByIDAndUser(ctx context.Context, id, userID string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// PgChatRepository implementa ChatRepository usando pgxpool.
type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

func (r *PgChatRepository) Create(ctx context.Context, record domain.ChatRecord) error {
	const query = `
		INSERT INTO chats (id, user_id, user_message, ai_response, sentiment, mood_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var sentiment interface{}
	if record.Sentiment != "" {
		sentiment = string(record.Sentiment)
	}

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.UserID,
		record.UserMessage,
		record.AIResponse,
		sentiment,
		record.MoodScore,
		record.CreatedAt,
	)
	return err
}

func (r *PgChatRepository) ListByUserID(ctx context.Context, userID string) ([]domain.ChatRecord, error) {
	const query = `
		SELECT id, user_id, user_message, ai_response, sentiment, mood_score, created_at
		FROM chats
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChatRows(rows)
}

func (r *PgChatRepository) ListAll(ctx context.Context) ([]domain.ChatRecord, error) {
	const query = `
		SELECT id, user_id, user_message, ai_response, sentiment, mood_score, created_at
		FROM chats
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChatRows(rows)
}

func (r *PgChatRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM chats WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrChatNotFound
	}
	return nil
}

// DeleteByIDAndUser borra un registro solo si pertenece al usuario; la
// propiedad se verifica en la misma sentencia.
func (r *PgChatRepository) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM chats WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrChatNotFound
	}
	return nil
}

func (r *PgChatRepository) DeleteByUserID(ctx context.Context, userID string) error {
	const query = `DELETE FROM chats WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

type chatRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanChatRows(rows chatRows) ([]domain.ChatRecord, error) {
	var records []domain.ChatRecord
	for rows.Next() {
		var rec domain.ChatRecord
		var sentiment *string

		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.UserMessage,
			&rec.AIResponse,
			&sentiment,
			&rec.MoodScore,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if sentiment != nil {
			rec.Sentiment = domain.ParseSentiment(*sentiment)
		}
		// Todo registro que salio de la base esta, por definicion, persistido.
		rec.Persisted = true
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
