package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/models"
	"github.com/CaioAP/scuderia/internal/storage"
	"github.com/CaioAP/scuderia/internal/storage/seed"
)

// MessageStore implements storage.MessageStore on PostgreSQL.
// Like state lives in message_likes; like_count is kept in step with it
// inside the same transaction.
type MessageStore struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

func NewMessageStore(db *sql.DB, log *zap.SugaredLogger) *MessageStore {
	return &MessageStore{db: db, log: log}
}

func (s *MessageStore) List(ctx context.Context, viewerID int64) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.content, m.created_at, m.like_count,
		       u.id, u.name, u.label, u.avatar, u.job_position,
		       EXISTS (SELECT 1 FROM message_likes l WHERE l.message_id = m.id AND l.user_id = $1)
		FROM messages m
		LEFT JOIN users u ON u.id = m.author_id
		ORDER BY m.created_at DESC, m.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	msgs := []*models.Message{}
	for rows.Next() {
		var (
			m                                models.Message
			authorID                         sql.NullInt64
			name, label, avatar, jobPosition sql.NullString
		)
		err := rows.Scan(
			&m.ID, &m.Content, &m.CreatedAt, &m.LikeCount,
			&authorID, &name, &label, &avatar, &jobPosition,
			&m.IsLiked,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		if authorID.Valid {
			m.Author = &models.User{
				ID:          authorID.Int64,
				Name:        name.String,
				Label:       label.String,
				Avatar:      avatar.String,
				JobPosition: jobPosition.String,
			}
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return msgs, nil
}

func (s *MessageStore) Like(ctx context.Context, viewerID, messageID int64) error {
	return s.toggle(ctx, "like", viewerID, messageID,
		`INSERT INTO message_likes (message_id, user_id) VALUES ($1, $2) ON CONFLICT (message_id, user_id) DO NOTHING`,
		`UPDATE messages SET like_count = like_count + 1 WHERE id = $1`,
	)
}

func (s *MessageStore) Unlike(ctx context.Context, viewerID, messageID int64) error {
	return s.toggle(ctx, "unlike", viewerID, messageID,
		`DELETE FROM message_likes WHERE message_id = $1 AND user_id = $2`,
		`UPDATE messages SET like_count = GREATEST(like_count - 1, 0) WHERE id = $1`,
	)
}

// toggle locks the message row, applies the like-table change and only
// touches like_count when that change affected a row.
func (s *MessageStore) toggle(ctx context.Context, op string, viewerID, messageID int64, change, count string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin %s transaction: %w", op, err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM messages WHERE id = $1 FOR UPDATE`, messageID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s message %d: %w", op, messageID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock message %d: %w", messageID, err)
	}

	res, err := tx.ExecContext(ctx, change, messageID, viewerID)
	if err != nil {
		return fmt.Errorf("failed to %s message %d: %w", op, messageID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s message %d: %w", op, messageID, err)
	}
	if n == 0 {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, count, messageID); err != nil {
		return fmt.Errorf("failed to update like count for message %d: %w", messageID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s of message %d: %w", op, messageID, err)
	}

	s.log.Debugw("message "+op+"d", "message_id", messageID, "user_id", viewerID)
	return nil
}

func (s *MessageStore) Create(ctx context.Context, author *models.User, content string) (*models.Message, error) {
	if err := storage.ValidateCreate(author, content); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin create transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertUser(ctx, tx, author); err != nil {
		return nil, err
	}

	a := *author
	m := &models.Message{Content: content, Author: &a}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO messages (content, author_id) VALUES ($1, $2) RETURNING id, created_at`,
		content, author.ID,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}
	m.CreatedAt = m.CreatedAt.UTC()

	s.log.Infow("message created", "message_id", m.ID, "user_id", author.ID)
	return m, nil
}

func upsertUser(ctx context.Context, tx *sql.Tx, u *models.User) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, name, label, avatar, job_position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, label = EXCLUDED.label,
		    avatar = EXCLUDED.avatar, job_position = EXCLUDED.job_position
	`, u.ID, u.Name, u.Label, u.Avatar, u.JobPosition)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", u.ID, err)
	}
	return nil
}

// Seed loads data into an empty messages table. A table that already holds
// messages is left alone.
func Seed(ctx context.Context, db *sql.DB, data seed.Data) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&existing); err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}
	if existing > 0 {
		return nil
	}

	for _, u := range data.Users {
		if err := upsertUser(ctx, tx, u); err != nil {
			return err
		}
	}
	for _, m := range data.Messages {
		var authorID sql.NullInt64
		if m.Author != nil {
			authorID = sql.NullInt64{Int64: m.Author.ID, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, content, author_id, created_at, like_count) VALUES ($1, $2, $3, $4, $5)`,
			m.ID, m.Content, authorID, m.CreatedAt, m.LikeCount,
		)
		if err != nil {
			return fmt.Errorf("failed to seed message %d: %w", m.ID, err)
		}
	}
	for msgID, users := range data.Likes {
		for _, u := range users {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO message_likes (message_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				msgID, u,
			)
			if err != nil {
				return fmt.Errorf("failed to seed like %d/%d: %w", msgID, u, err)
			}
		}
	}
	// explicit ids bypass the sequence; move it past them
	_, err = tx.ExecContext(ctx,
		`SELECT setval(pg_get_serial_sequence('messages', 'id'), (SELECT COALESCE(MAX(id), 1) FROM messages))`)
	if err != nil {
		return fmt.Errorf("failed to advance message id sequence: %w", err)
	}
	return tx.Commit()
}
