// Package storage defines the message store contract shared by every backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CaioAP/scuderia/internal/models"
)

var (
	// ErrNotFound is returned when a message or notification id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for a nil author or blank content on create.
	ErrInvalidInput = errors.New("invalid input")
)

// MessageStore owns the canonical message records and per-user like state.
//
// List returns copies sorted newest first with IsLiked resolved for viewerID.
// Like and Unlike are idempotent and move LikeCount by exactly one on a real
// transition. Create assigns an id greater than every existing one.
type MessageStore interface {
	List(ctx context.Context, viewerID int64) ([]*models.Message, error)
	Like(ctx context.Context, viewerID, messageID int64) error
	Unlike(ctx context.Context, viewerID, messageID int64) error
	Create(ctx context.Context, author *models.User, content string) (*models.Message, error)
}

// NotificationStore backs the notification bell.
type NotificationStore interface {
	Recent(ctx context.Context) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context) error
	MarkRead(ctx context.Context, id int64) error
}

// ValidateCreate checks the arguments of MessageStore.Create.
func ValidateCreate(author *models.User, content string) error {
	if author == nil {
		return fmt.Errorf("%w: author is required", ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	return nil
}
