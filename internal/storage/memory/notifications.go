package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/models"
	"github.com/CaioAP/scuderia/internal/storage"
)

// RecentLimit caps how many notifications Recent returns.
const RecentLimit = 10

type NotificationStore struct {
	mu    sync.RWMutex
	items map[int64]*models.Notification
	log   *zap.SugaredLogger
}

func NewNotificationStore(log *zap.SugaredLogger, initial []*models.Notification) *NotificationStore {
	s := &NotificationStore{
		items: make(map[int64]*models.Notification, len(initial)),
		log:   log,
	}
	for _, n := range initial {
		c := *n
		s.items[n.ID] = &c
	}
	return s
}

// Recent returns the newest notifications first.
func (s *NotificationStore) Recent(ctx context.Context) ([]*models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Notification, 0, len(s.items))
	for _, n := range s.items {
		c := *n
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > RecentLimit {
		out = out[:RecentLimit]
	}
	return out, nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		n.Read = true
	}
	s.log.Debugw("notifications marked read", "count", len(s.items))
	return nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return fmt.Errorf("notification %d: %w", id, storage.ErrNotFound)
	}
	n.Read = true
	s.log.Debugw("notification marked read", "notification_id", id)
	return nil
}
