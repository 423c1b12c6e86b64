package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/feed"
	"github.com/CaioAP/scuderia/internal/models"
	"github.com/CaioAP/scuderia/internal/storage"
	"github.com/CaioAP/scuderia/internal/storage/seed"
)

// MessageStore keeps the feed in process memory.
// Every call waits for the configured latency before touching state, so a
// cancelled context never leaves a half-applied mutation behind.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[int64]*models.Message // messageID -> canonical record
	likes    map[int64]map[int64]bool  // messageID -> set of userIDs
	lastID   int64

	latency time.Duration
	now     func() time.Time
	log     *zap.SugaredLogger
}

type Option func(*MessageStore)

// WithLatency delays every operation by d to mimic a remote service.
func WithLatency(d time.Duration) Option {
	return func(s *MessageStore) { s.latency = d }
}

// WithClock replaces time.Now for created timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MessageStore) { s.now = now }
}

func NewMessageStore(log *zap.SugaredLogger, opts ...Option) *MessageStore {
	s := &MessageStore{
		messages: make(map[int64]*models.Message),
		likes:    make(map[int64]map[int64]bool),
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeededMessageStore returns a store preloaded with the demo feed.
func NewSeededMessageStore(log *zap.SugaredLogger, opts ...Option) *MessageStore {
	s := NewMessageStore(log, opts...)
	data := seed.Feed(s.now())
	s.Load(data.Messages, data.Likes)
	return s
}

// Load replaces the store contents. likes maps a message id to the users
// that liked it; ids without a matching message are ignored.
func (s *MessageStore) Load(msgs []*models.Message, likes map[int64][]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make(map[int64]*models.Message, len(msgs))
	s.likes = make(map[int64]map[int64]bool, len(msgs))
	s.lastID = 0
	for _, m := range msgs {
		if m == nil || m.ID <= 0 {
			continue
		}
		c := m.Clone()
		c.IsLiked = false
		c.Loading = false
		if c.LikeCount < 0 {
			c.LikeCount = 0
		}
		s.messages[c.ID] = c
		s.likes[c.ID] = make(map[int64]bool)
		if c.ID > s.lastID {
			s.lastID = c.ID
		}
	}
	for msgID, users := range likes {
		set, ok := s.likes[msgID]
		if !ok {
			continue
		}
		for _, u := range users {
			set[u] = true
		}
	}
	s.log.Infow("message store loaded", "messages", len(s.messages))
}

func (s *MessageStore) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *MessageStore) List(ctx context.Context, viewerID int64) ([]*models.Message, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Message, 0, len(s.messages))
	for id, m := range s.messages {
		c := m.Clone()
		c.IsLiked = s.likes[id][viewerID]
		out = append(out, c)
	}
	// map order is random; settle ties by id before the stable recency sort
	sortByID(out)
	return feed.SortByRecency(out), nil
}

func (s *MessageStore) Like(ctx context.Context, viewerID, messageID int64) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[messageID]
	if !ok {
		return fmt.Errorf("like message %d: %w", messageID, storage.ErrNotFound)
	}
	if s.likes[messageID][viewerID] {
		return nil
	}
	s.likes[messageID][viewerID] = true
	m.LikeCount++
	s.log.Debugw("message liked", "message_id", messageID, "user_id", viewerID, "like_count", m.LikeCount)
	return nil
}

func (s *MessageStore) Unlike(ctx context.Context, viewerID, messageID int64) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[messageID]
	if !ok {
		return fmt.Errorf("unlike message %d: %w", messageID, storage.ErrNotFound)
	}
	if !s.likes[messageID][viewerID] {
		return nil
	}
	delete(s.likes[messageID], viewerID)
	if m.LikeCount > 0 {
		m.LikeCount--
	}
	s.log.Debugw("message unliked", "message_id", messageID, "user_id", viewerID, "like_count", m.LikeCount)
	return nil
}

func (s *MessageStore) Create(ctx context.Context, author *models.User, content string) (*models.Message, error) {
	if err := storage.ValidateCreate(author, content); err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	a := *author
	m := &models.Message{
		ID:        s.lastID,
		Content:   content,
		Author:    &a,
		CreatedAt: s.now().UTC(),
	}
	s.messages[m.ID] = m
	s.likes[m.ID] = make(map[int64]bool)
	s.log.Infow("message created", "message_id", m.ID, "user_id", author.ID)
	return m.Clone(), nil
}

func sortByID(msgs []*models.Message) {
	slices.SortFunc(msgs, func(a, b *models.Message) int { return cmp.Compare(a.ID, b.ID) })
}
