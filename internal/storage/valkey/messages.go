// Package valkey stores the feed in Valkey.
//
// Layout, for a key prefix p:
//
//	p:seq          INCR counter for message ids
//	p:ids          set of message ids
//	p:msg:<id>     hash with content, author (JSON), created_at, like_count
//	p:likes:<id>   set of user ids that liked the message
//
// Every mutation runs as a single Lua script so it is atomic server-side.
package valkey

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/feed"
	"github.com/CaioAP/scuderia/internal/models"
	"github.com/CaioAP/scuderia/internal/storage"
)

const DefaultPrefix = "feed"

// returned by the like/unlike scripts; 0 means nothing changed
const (
	resultMissing = -1
	resultChanged = 1
)

var likeScript = valkey.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
if redis.call('SADD', KEYS[2], ARGV[1]) == 1 then
	redis.call('HINCRBY', KEYS[1], 'like_count', 1)
	return 1
end
return 0
`)

var unlikeScript = valkey.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
if redis.call('SREM', KEYS[2], ARGV[1]) == 1 then
	local n = tonumber(redis.call('HGET', KEYS[1], 'like_count') or '0')
	if n > 0 then redis.call('HINCRBY', KEYS[1], 'like_count', -1) end
	return 1
end
return 0
`)

var createScript = valkey.NewLuaScript(`
local id = redis.call('INCR', KEYS[1])
redis.call('HSET', ARGV[1] .. id, 'content', ARGV[2], 'author', ARGV[3], 'created_at', ARGV[4], 'like_count', 0)
redis.call('SADD', KEYS[2], id)
return id
`)

type Options struct {
	Addr     string
	Password string
	Prefix   string
}

// MessageStore implements storage.MessageStore on Valkey.
type MessageStore struct {
	client valkey.Client
	prefix string
	now    func() time.Time
	log    *zap.SugaredLogger
}

// New dials Valkey and checks the connection.
func New(ctx context.Context, opts Options, log *zap.SugaredLogger) (*MessageStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey at %s: %w", opts.Addr, err)
	}
	log.Infow("Successfully connected to Valkey.", "addr", opts.Addr)
	return NewMessageStore(client, opts.Prefix, log), nil
}

func NewMessageStore(client valkey.Client, prefix string, log *zap.SugaredLogger) *MessageStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &MessageStore{client: client, prefix: prefix, now: time.Now, log: log}
}

func (s *MessageStore) Close() {
	s.client.Close()
}

func (s *MessageStore) seqKey() string { return s.prefix + ":seq" }
func (s *MessageStore) idsKey() string { return s.prefix + ":ids" }
func (s *MessageStore) msgPrefix() string { return s.prefix + ":msg:" }
func (s *MessageStore) msgKey(id int64) string { return s.msgPrefix() + strconv.FormatInt(id, 10) }
func (s *MessageStore) likesKey(id int64) string { return s.prefix + ":likes:" + strconv.FormatInt(id, 10) }

func (s *MessageStore) List(ctx context.Context, viewerID int64) ([]*models.Message, error) {
	members, err := s.client.Do(ctx, s.client.B().Smembers().Key(s.idsKey()).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to list message ids: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			s.log.Warnw("skipping malformed message id", "id", m)
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []*models.Message{}, nil
	}

	viewer := strconv.FormatInt(viewerID, 10)
	cmds := make(valkey.Commands, 0, 2*len(ids))
	for _, id := range ids {
		cmds = append(cmds,
			s.client.B().Hgetall().Key(s.msgKey(id)).Build(),
			s.client.B().Sismember().Key(s.likesKey(id)).Member(viewer).Build(),
		)
	}
	results := s.client.DoMulti(ctx, cmds...)

	msgs := make([]*models.Message, 0, len(ids))
	for i, id := range ids {
		fields, err := results[2*i].AsStrMap()
		if err != nil {
			return nil, fmt.Errorf("failed to read message %d: %w", id, err)
		}
		if len(fields) == 0 {
			// id left behind by a concurrent delete outside this store
			continue
		}
		liked, err := results[2*i+1].AsInt64()
		if err != nil {
			return nil, fmt.Errorf("failed to read like state of message %d: %w", id, err)
		}
		m := decodeMessage(id, fields)
		m.IsLiked = liked == 1
		msgs = append(msgs, m)
	}

	slices.SortFunc(msgs, func(a, b *models.Message) int { return cmp.Compare(a.ID, b.ID) })
	return feed.SortByRecency(msgs), nil
}

func (s *MessageStore) Like(ctx context.Context, viewerID, messageID int64) error {
	return s.toggle(ctx, likeScript, "like", viewerID, messageID)
}

func (s *MessageStore) Unlike(ctx context.Context, viewerID, messageID int64) error {
	return s.toggle(ctx, unlikeScript, "unlike", viewerID, messageID)
}

func (s *MessageStore) toggle(ctx context.Context, script *valkey.Lua, op string, viewerID, messageID int64) error {
	res, err := script.Exec(ctx, s.client,
		[]string{s.msgKey(messageID), s.likesKey(messageID)},
		[]string{strconv.FormatInt(viewerID, 10)},
	).AsInt64()
	if err != nil {
		return fmt.Errorf("failed to %s message %d: %w", op, messageID, err)
	}
	switch res {
	case resultMissing:
		return fmt.Errorf("%s message %d: %w", op, messageID, storage.ErrNotFound)
	case resultChanged:
		s.log.Debugw("message "+op+"d", "message_id", messageID, "user_id", viewerID)
	}
	return nil
}

func (s *MessageStore) Create(ctx context.Context, author *models.User, content string) (*models.Message, error) {
	if err := storage.ValidateCreate(author, content); err != nil {
		return nil, err
	}

	authorJSON, err := json.Marshal(author)
	if err != nil {
		return nil, fmt.Errorf("failed to encode author: %w", err)
	}
	createdAt := s.now().UTC()

	id, err := createScript.Exec(ctx, s.client,
		[]string{s.seqKey(), s.idsKey()},
		[]string{s.msgPrefix(), content, string(authorJSON), createdAt.Format(time.RFC3339Nano)},
	).AsInt64()
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	a := *author
	s.log.Infow("message created", "message_id", id, "user_id", author.ID)
	return &models.Message{ID: id, Content: content, Author: &a, CreatedAt: createdAt}, nil
}

// decodeMessage builds a message from its hash. Unreadable fields degrade to
// zero values: a bad created_at becomes an unknown date.
func decodeMessage(id int64, fields map[string]string) *models.Message {
	m := &models.Message{ID: id, Content: fields["content"]}
	if raw := fields["author"]; raw != "" {
		var u models.User
		if json.Unmarshal([]byte(raw), &u) == nil {
			m.Author = &u
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		m.CreatedAt = t.UTC()
	}
	if n, err := strconv.Atoi(fields["like_count"]); err == nil && n > 0 {
		m.LikeCount = n
	}
	return m
}
