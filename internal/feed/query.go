package feed

import (
	"time"

	"github.com/CaioAP/scuderia/internal/models"
)

// Query is a set of feed filters. Zero fields do not filter.
type Query struct {
	AuthorID    int64
	Term        string
	From, To    time.Time
	MinLikes    int
	HasMinLikes bool
}

// Apply runs the filters of q over msgs and returns the result newest first.
func (q Query) Apply(msgs []*models.Message) []*models.Message {
	out := msgs
	if out == nil {
		out = []*models.Message{}
	}
	if q.AuthorID > 0 {
		out = FilterByAuthor(out, q.AuthorID)
	}
	out = FilterByContent(out, q.Term)
	out = FilterByDateRange(out, q.From, q.To)
	if q.HasMinLikes {
		out = FilterByMinLikes(out, q.MinLikes)
	}
	return SortByRecency(out)
}
