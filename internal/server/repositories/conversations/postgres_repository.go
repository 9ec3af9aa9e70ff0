package conversations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
	"github.com/edensitko/RED-CRM-sub001/internal/dbx"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {

	participants, err := json.Marshal(conv.Participants)
	if err != nil {
		return nil, fmt.Errorf("marshal participants: %w", err)
	}
	unreadBy, err := json.Marshal(conv.UnreadBy)
	if err != nil {
		return nil, fmt.Errorf("marshal unread map: %w", err)
	}

	query :=
		`INSERT INTO conversations (id, title, participants, unread_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err = r.db.QueryRowContext(ctx, query, conv.ID, conv.Title, participants, unreadBy).Scan(&conv.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return conv, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {

	query :=
		`SELECT id, title, participants, last_message, last_message_at, unread_by, created_at
		 FROM conversations
		 WHERE id = $1
		 `

	conv, err := scanConversation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return conv, nil
}

func (r *PostgresRepository) ListByParticipant(ctx context.Context, userID string) ([]*models.Conversation, error) {

	member, err := json.Marshal([]string{userID})
	if err != nil {
		return nil, fmt.Errorf("marshal participant: %w", err)
	}

	query :=
		`SELECT id, title, participants, last_message, last_message_at, unread_by, created_at
		 FROM conversations
		 WHERE participants @> $1
		 ORDER BY last_message_at DESC NULLS LAST, created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, member)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateSummary(ctx context.Context, id string, lastMessage string, at time.Time, unreadBy map[string]bool) error {

	unread, err := json.Marshal(unreadBy)
	if err != nil {
		return fmt.Errorf("marshal unread map: %w", err)
	}

	query :=
		`UPDATE conversations
		 SET last_message = $2, last_message_at = $3, unread_by = $4
		 WHERE id = $1
		 `

	_, err = r.db.ExecContext(ctx, query, id, lastMessage, at, unread)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) SetUnread(ctx context.Context, id string, userID string, unread bool) error {

	flag, err := json.Marshal(unread)
	if err != nil {
		return fmt.Errorf("marshal flag: %w", err)
	}

	query :=
		`UPDATE conversations
		 SET unread_by = jsonb_set(unread_by, ARRAY[$2], $3::jsonb, true)
		 WHERE id = $1
		 `

	_, err = r.db.ExecContext(ctx, query, id, userID, flag)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	query := `DELETE FROM conversations WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*models.Conversation, error) {
	conv := &models.Conversation{}
	var participants, unreadBy []byte
	var lastMessageAt sql.NullTime

	err := row.Scan(&conv.ID, &conv.Title, &participants, &conv.LastMessage,
		&lastMessageAt, &unreadBy, &conv.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(participants, &conv.Participants); err != nil {
		return nil, fmt.Errorf("unmarshal participants: %w", err)
	}
	if err := json.Unmarshal(unreadBy, &conv.UnreadBy); err != nil {
		return nil, fmt.Errorf("unmarshal unread map: %w", err)
	}
	if lastMessageAt.Valid {
		conv.LastMessageAt = lastMessageAt.Time
	}

	return conv, nil
}
