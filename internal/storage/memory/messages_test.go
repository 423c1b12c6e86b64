package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/models"
	"github.com/CaioAP/scuderia/internal/storage"
	"github.com/CaioAP/scuderia/internal/storage/seed"
)

var fixedNow = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func newSeeded(t *testing.T, opts ...Option) *MessageStore {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewSeededMessageStore(zap.NewNop().Sugar(), opts...)
}

func find(t *testing.T, msgs []*models.Message, id int64) *models.Message {
	t.Helper()
	for _, m := range msgs {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("message %d not in list", id)
	return nil
}

func TestMessageStore_ImplementsContract(t *testing.T) {
	var _ storage.MessageStore = (*MessageStore)(nil)
}

func TestMessageStore_ListSeed(t *testing.T) {
	s := newSeeded(t)

	msgs, err := s.List(context.Background(), seed.ViewerID)
	require.NoError(t, err)
	require.Len(t, msgs, 7)

	var ids []int64
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7}, ids, "seed is already newest first")

	for _, m := range msgs {
		want := m.ID == 2 || m.ID == 4 || m.ID == 6
		assert.Equal(t, want, m.IsLiked, "message %d", m.ID)
	}

	other, err := s.List(context.Background(), 2)
	require.NoError(t, err)
	for _, m := range other {
		assert.False(t, m.IsLiked, "viewer 2 liked nothing, message %d", m.ID)
	}
}

func TestMessageStore_ListReturnsCopies(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	msgs, err := s.List(ctx, 1)
	require.NoError(t, err)
	msgs[0].LikeCount = 999
	msgs[0].Author.Name = "Mallory"

	again, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, again[0].LikeCount)
	assert.Equal(t, "Emma Brown", again[0].Author.Name)
}

func TestMessageStore_LikeUnlikeRoundTrip(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	// message 1 starts unliked by the viewer with 12 likes
	require.NoError(t, s.Like(ctx, 1, 1))
	msgs, _ := s.List(ctx, 1)
	m := find(t, msgs, 1)
	assert.True(t, m.IsLiked)
	assert.Equal(t, 13, m.LikeCount)

	require.NoError(t, s.Unlike(ctx, 1, 1))
	msgs, _ = s.List(ctx, 1)
	m = find(t, msgs, 1)
	assert.False(t, m.IsLiked)
	assert.Equal(t, 12, m.LikeCount)
}

func TestMessageStore_Idempotence(t *testing.T) {
	tests := []struct {
		name      string
		messageID int64
		op        func(s *MessageStore, ctx context.Context, viewer, id int64) error
		wantLiked bool
		wantCount int
	}{
		{name: "like twice", messageID: 1, op: (*MessageStore).Like, wantLiked: true, wantCount: 13},
		{name: "like already liked", messageID: 2, op: (*MessageStore).Like, wantLiked: true, wantCount: 8},
		{name: "unlike twice", messageID: 2, op: (*MessageStore).Unlike, wantLiked: false, wantCount: 7},
		{name: "unlike never liked", messageID: 3, op: (*MessageStore).Unlike, wantLiked: false, wantCount: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSeeded(t)
			ctx := context.Background()

			require.NoError(t, tt.op(s, ctx, 1, tt.messageID))
			require.NoError(t, tt.op(s, ctx, 1, tt.messageID))

			msgs, err := s.List(ctx, 1)
			require.NoError(t, err)
			m := find(t, msgs, tt.messageID)
			assert.Equal(t, tt.wantLiked, m.IsLiked)
			assert.Equal(t, tt.wantCount, m.LikeCount)
		})
	}
}

func TestMessageStore_UnlikeFloorsAtZero(t *testing.T) {
	s := NewMessageStore(zap.NewNop().Sugar())
	s.Load([]*models.Message{{ID: 1, Content: "x", LikeCount: 0}}, map[int64][]int64{1: {7}})

	require.NoError(t, s.Unlike(context.Background(), 7, 1))
	msgs, err := s.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, msgs[0].LikeCount)
	assert.False(t, msgs[0].IsLiked)
}

func TestMessageStore_NotFound(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	before, _ := s.List(ctx, 1)

	assert.ErrorIs(t, s.Like(ctx, 1, 999), storage.ErrNotFound)
	assert.ErrorIs(t, s.Unlike(ctx, 1, 999), storage.ErrNotFound)
	assert.ErrorIs(t, s.Like(ctx, 1, 0), storage.ErrNotFound)

	after, _ := s.List(ctx, 1)
	assert.Equal(t, before, after)
}

func TestMessageStore_Create(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	author := &models.User{ID: 1, Name: "Alice Johnson", Label: "alice.johnson"}

	m, err := s.Create(ctx, author, "<p>hello</p>")
	require.NoError(t, err)
	assert.Equal(t, int64(8), m.ID)
	assert.Equal(t, "<p>hello</p>", m.Content)
	assert.Equal(t, fixedNow, m.CreatedAt)
	assert.Equal(t, 0, m.LikeCount)
	assert.False(t, m.IsLiked)
	require.NotNil(t, m.Author)
	assert.Equal(t, "Alice Johnson", m.Author.Name)

	author.Name = "changed"
	msgs, _ := s.List(ctx, 1)
	assert.Equal(t, "Alice Johnson", find(t, msgs, 8).Author.Name)

	next, err := s.Create(ctx, author, "<p>again</p>")
	require.NoError(t, err)
	assert.Greater(t, next.ID, m.ID)
}

func TestMessageStore_CreateIDsStayAboveLoadedMax(t *testing.T) {
	s := NewMessageStore(zap.NewNop().Sugar())
	s.Load([]*models.Message{{ID: 3}, {ID: 41}, {ID: 7}}, nil)

	m, err := s.Create(context.Background(), &models.User{ID: 1}, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(42), m.ID)
}

func TestMessageStore_CreateInvalid(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	_, err := s.Create(ctx, nil, "<p>x</p>")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	_, err = s.Create(ctx, &models.User{ID: 1}, "  ")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	msgs, _ := s.List(ctx, 1)
	assert.Len(t, msgs, 7)
}

func TestMessageStore_ConcurrentLikes(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	const viewers = 50
	var wg sync.WaitGroup
	for v := int64(100); v < 100+viewers; v++ {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(viewer int64) {
				defer wg.Done()
				assert.NoError(t, s.Like(ctx, viewer, 3))
			}(v)
		}
	}
	wg.Wait()

	msgs, err := s.List(ctx, 100)
	require.NoError(t, err)
	m := find(t, msgs, 3)
	assert.Equal(t, 15+viewers, m.LikeCount)
	assert.True(t, m.IsLiked)

	for v := int64(100); v < 100+viewers; v++ {
		wg.Add(2)
		go func(viewer int64) {
			defer wg.Done()
			assert.NoError(t, s.Unlike(ctx, viewer, 3))
		}(v)
		go func() {
			defer wg.Done()
			_, err := s.List(ctx, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	msgs, _ = s.List(ctx, 100)
	assert.Equal(t, 15, find(t, msgs, 3).LikeCount)
}

func TestMessageStore_LatencyHonoursContext(t *testing.T) {
	s := newSeeded(t, WithLatency(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Like(ctx, 1, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	s.latency = 0
	msgs, err := s.List(context.Background(), 1)
	require.NoError(t, err)
	m := find(t, msgs, 1)
	assert.False(t, m.IsLiked, "cancelled like must not apply")
	assert.Equal(t, 12, m.LikeCount)
}

func TestMessageStore_LatencyDelaysCalls(t *testing.T) {
	s := newSeeded(t, WithLatency(15*time.Millisecond))

	start := time.Now()
	_, err := s.List(context.Background(), 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
