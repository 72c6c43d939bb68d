package repository

import (
	"context"
	"fmt"

	"github.com/contactform/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgMessageRepository is the PostgreSQL implementation of MessageRepository.
// Rows are kept in insertion order through the seq column.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

// NewPgMessageRepository creates a PgMessageRepository backed by the given pool.
func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

// Ensure PgMessageRepository implements MessageRepository at compile time.
var _ MessageRepository = (*PgMessageRepository)(nil)

var messageColumns = []string{"id", "name", "email", "project_type", "message", "datetime", "status"}

func (r *PgMessageRepository) Load(ctx context.Context) ([]*model.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, project_type, message, datetime, status
		 FROM messages
		 ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []*model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.ProjectType, &m.Message, &m.Datetime, &m.Status); err != nil {
			return nil, err
		}
		m.Datetime = m.Datetime.UTC()
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

// Save replaces every row inside one transaction. The collection is written
// with COPY in slice order, so seq follows the given order.
func (r *PgMessageRepository) Save(ctx context.Context, msgs []*model.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	rows := make([][]any, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, []any{m.ID, m.Name, m.Email, m.ProjectType, m.Message, m.Datetime, m.Status})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"messages"}, messageColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy messages: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *PgMessageRepository) Append(ctx context.Context, msg *model.Message) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, name, email, project_type, message, datetime, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.ID, msg.Name, msg.Email, msg.ProjectType, msg.Message, msg.Datetime, msg.Status)
	return err
}

func (r *PgMessageRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE messages SET status = $1 WHERE id = $2`,
		status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
