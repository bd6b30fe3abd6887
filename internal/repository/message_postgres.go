package repository

import (
	"context"
	"fmt"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	insertMessageSQL = `
INSERT INTO chat_messages (id, session_id, role, text)
VALUES ($1, $2, $3, $4)
RETURNING id, session_id, role, text, created_at`

	listMessagesSQL = `
SELECT id, session_id, role, text, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at, id`

	deleteMessagesSQL = `DELETE FROM chat_messages WHERE session_id = $1`
)

var _ MessageRepository = &MessagePostgres{}

// MessagePostgres implements MessageRepository using PostgreSQL
type MessagePostgres struct {
	db *pgxpool.Pool
}

func NewMessagePostgres(db *pgxpool.Pool) *MessagePostgres {
	return &MessagePostgres{db: db}
}

type messageRow struct {
	ID        pgtype.UUID
	SessionID pgtype.UUID
	Role      string
	Text      string
	CreatedAt pgtype.Timestamptz
}

func (r *MessagePostgres) Create(
	ctx context.Context,
	sessionID string,
	role entity.MessageRole,
	text string,
) (*entity.Message, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}
	sessID, err := toPgUUID(sessionID)
	if err != nil {
		return nil, err
	}

	var row messageRow
	err = r.db.QueryRow(ctx, insertMessageSQL, pgtype.UUID{Bytes: uuid.New(), Valid: true}, sessID, string(role), text).
		Scan(&row.ID, &row.SessionID, &row.Role, &row.Text, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	return toEntityMessage(&row), nil
}

func (r *MessagePostgres) ListBySession(ctx context.Context, sessionID string) ([]*entity.Message, error) {
	sessID, err := toPgUUID(sessionID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, listMessagesSQL, sessID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	dbRows, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (messageRow, error) {
		var m messageRow
		err := row.Scan(&m.ID, &m.SessionID, &m.Role, &m.Text, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}

	messages := make([]*entity.Message, 0, len(dbRows))
	for i := range dbRows {
		messages = append(messages, toEntityMessage(&dbRows[i]))
	}

	return messages, nil
}

func (r *MessagePostgres) DeleteBySession(ctx context.Context, sessionID string) error {
	sessID, err := toPgUUID(sessionID)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, deleteMessagesSQL, sessID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}

	return nil
}

func toPgUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: session_id", entity.ErrInvalidParameter)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func toEntityMessage(row *messageRow) *entity.Message {
	return &entity.Message{
		ID:        uuid.UUID(row.ID.Bytes).String(),
		SessionID: uuid.UUID(row.SessionID.Bytes).String(),
		Role:      entity.MessageRole(row.Role),
		Text:      row.Text,
		CreatedAt: row.CreatedAt.Time,
	}
}
