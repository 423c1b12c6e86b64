package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/CaioAP/scuderia/internal/storage/seed"
)

// Seed writes data when the store holds no messages yet.
func (s *MessageStore) Seed(ctx context.Context, data seed.Data) error {
	n, err := s.client.Do(ctx, s.client.B().Scard().Key(s.idsKey()).Build()).AsInt64()
	if err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}
	if n > 0 {
		return nil
	}

	var maxID int64
	cmds := make(valkey.Commands, 0, 2*len(data.Messages)+len(data.Likes)+1)
	for _, m := range data.Messages {
		author := ""
		if m.Author != nil {
			b, err := json.Marshal(m.Author)
			if err != nil {
				return fmt.Errorf("failed to encode author of message %d: %w", m.ID, err)
			}
			author = string(b)
		}
		cmds = append(cmds,
			s.client.B().Hset().Key(s.msgKey(m.ID)).FieldValue().
				FieldValue("content", m.Content).
				FieldValue("author", author).
				FieldValue("created_at", m.CreatedAt.UTC().Format(time.RFC3339Nano)).
				FieldValue("like_count", strconv.Itoa(m.LikeCount)).
				Build(),
			s.client.B().Sadd().Key(s.idsKey()).Member(strconv.FormatInt(m.ID, 10)).Build(),
		)
		maxID = max(maxID, m.ID)
	}
	for msgID, users := range data.Likes {
		if len(users) == 0 {
			continue
		}
		members := make([]string, 0, len(users))
		for _, u := range users {
			members = append(members, strconv.FormatInt(u, 10))
		}
		cmds = append(cmds, s.client.B().Sadd().Key(s.likesKey(msgID)).Member(members...).Build())
	}
	cmds = append(cmds, s.client.B().Set().Key(s.seqKey()).Value(strconv.FormatInt(maxID, 10)).Build())

	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("failed to seed valkey: %w", err)
		}
	}
	s.log.Infow("valkey store seeded", "messages", len(data.Messages))
	return nil
}
