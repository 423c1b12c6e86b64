// Package feed holds the pure list transformations behind the messages
// feed: recency ordering, filters and de-duplication across pages.
//
// Every function returns a new slice and leaves its input untouched. A nil
// input slice is treated as "no collection" and yields an empty result.
package feed

import (
	"slices"
	"strings"
	"time"

	"github.com/CaioAP/scuderia/internal/models"
)

// SortByRecency orders messages newest first. Messages without a valid
// timestamp go last; ties keep their relative order.
func SortByRecency(msgs []*models.Message) []*models.Message {
	if msgs == nil {
		return []*models.Message{}
	}
	out := slices.Clone(msgs)
	slices.SortStableFunc(out, func(a, b *models.Message) int {
		ta, tb := createdAt(a), createdAt(b)
		switch {
		case ta.IsZero() && tb.IsZero():
			return 0
		case ta.IsZero():
			return 1
		case tb.IsZero():
			return -1
		}
		return tb.Compare(ta)
	})
	return out
}

// FilterByAuthor keeps messages written by authorID.
func FilterByAuthor(msgs []*models.Message, authorID int64) []*models.Message {
	if msgs == nil || authorID <= 0 {
		return []*models.Message{}
	}
	return filter(msgs, func(m *models.Message) bool {
		return m.Author != nil && m.Author.ID == authorID
	})
}

// FilterByContent keeps messages whose text or author name contains term,
// ignoring case. Markup is stripped before matching. A blank term keeps
// everything.
func FilterByContent(msgs []*models.Message, term string) []*models.Message {
	if msgs == nil {
		return []*models.Message{}
	}
	if strings.TrimSpace(term) == "" {
		return slices.Clone(msgs)
	}

	needle := strings.ToLower(term)
	return filter(msgs, func(m *models.Message) bool {
		if strings.Contains(strings.ToLower(StripTags(m.Content)), needle) {
			return true
		}
		return m.Author != nil && strings.Contains(strings.ToLower(m.Author.Name), needle)
	})
}

// FilterByDateRange keeps messages created within [start, end]. If either
// bound is missing the input is returned as is.
func FilterByDateRange(msgs []*models.Message, start, end time.Time) []*models.Message {
	if msgs == nil {
		return []*models.Message{}
	}
	if start.IsZero() || end.IsZero() {
		return slices.Clone(msgs)
	}
	return filter(msgs, func(m *models.Message) bool {
		if m.CreatedAt.IsZero() {
			return false
		}
		return !m.CreatedAt.Before(start) && !m.CreatedAt.After(end)
	})
}

// FilterByMinLikes keeps messages with at least min likes. A negative
// threshold keeps everything.
func FilterByMinLikes(msgs []*models.Message, min int) []*models.Message {
	if msgs == nil {
		return []*models.Message{}
	}
	if min < 0 {
		return slices.Clone(msgs)
	}
	return filter(msgs, func(m *models.Message) bool {
		return m.LikeCount >= min
	})
}

// MergeUnique concatenates collections, keeping the first message seen for
// each ID. Nil entries and entries without an ID are dropped.
func MergeUnique(collections ...[]*models.Message) []*models.Message {
	out := []*models.Message{}
	seen := make(map[int64]struct{})
	for _, msgs := range collections {
		for _, m := range msgs {
			if m == nil || m.ID <= 0 {
				continue
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

func filter(msgs []*models.Message, keep func(*models.Message) bool) []*models.Message {
	out := []*models.Message{}
	for _, m := range msgs {
		if m != nil && keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func createdAt(m *models.Message) time.Time {
	if m == nil {
		return time.Time{}
	}
	return m.CreatedAt
}
