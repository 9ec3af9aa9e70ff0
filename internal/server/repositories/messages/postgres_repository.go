package messages

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edensitko/RED-CRM-sub001/internal/dbx"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {

	readBy, err := json.Marshal(msg.ReadBy)
	if err != nil {
		return nil, fmt.Errorf("marshal reader-set: %w", err)
	}

	query :=
		`INSERT INTO messages (id, chat_id, author_id, author_name, body, read_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		msg.ID, msg.ChatID, msg.AuthorID, msg.AuthorName, msg.Text, readBy).Scan(&msg.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) ListByChat(ctx context.Context, chatID string) ([]*models.Message, error) {

	query :=
		`SELECT id, chat_id, author_id, author_name, body, created_at, read_by
		 FROM messages
		 WHERE chat_id = $1
		 ORDER BY created_at ASC
		 `

	return r.list(ctx, query, chatID)
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.Message, error) {

	member, err := json.Marshal([]string{userID})
	if err != nil {
		return nil, fmt.Errorf("marshal participant: %w", err)
	}

	query :=
		`SELECT m.id, m.chat_id, m.author_id, m.author_name, m.body, m.created_at, m.read_by
		 FROM messages m
		 JOIN conversations c ON c.id = m.chat_id
		 WHERE c.participants @> $1
		 ORDER BY m.created_at ASC
		 `

	return r.list(ctx, query, member)
}

func (r *PostgresRepository) ListUnreadByChat(ctx context.Context, chatID, userID string) ([]*models.Message, error) {

	query :=
		`SELECT id, chat_id, author_id, author_name, body, created_at, read_by
		 FROM messages
		 WHERE chat_id = $1 AND NOT read_by @> to_jsonb($2::text)
		 ORDER BY created_at ASC
		 `

	return r.list(ctx, query, chatID, userID)
}

func (r *PostgresRepository) AddReader(ctx context.Context, messageID, userID string) error {

	// Monotonic append: a no-op when the reader is already present.
	query :=
		`UPDATE messages
		 SET read_by = read_by || to_jsonb($2::text)
		 WHERE id = $1 AND NOT read_by @> to_jsonb($2::text)
		 `

	_, err := r.db.ExecContext(ctx, query, messageID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Message, error) {

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		var readBy []byte
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.AuthorID, &msg.AuthorName,
			&msg.Text, &msg.CreatedAt, &readBy); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if err := json.Unmarshal(readBy, &msg.ReadBy); err != nil {
			return nil, fmt.Errorf("unmarshal reader-set: %w", err)
		}
		result = append(result, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
