package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CaioAP/scuderia/internal/models"
)

func TestQuery_Apply(t *testing.T) {
	in := []*models.Message{
		msg(1, 10, 2, alice, "<p>old launch notes</p>"),
		msg(2, 1, 8, alice, "<p>launch day</p>"),
		msg(3, 2, 9, bob, "<p>launch retro</p>"),
		msg(4, 3, 0, alice, "<p>lunch</p>"),
	}

	tests := []struct {
		name string
		q    Query
		want []int64
	}{
		{name: "zero query sorts only", q: Query{}, want: []int64{2, 3, 4, 1}},
		{name: "author", q: Query{AuthorID: 1}, want: []int64{2, 4, 1}},
		{name: "term", q: Query{Term: "launch"}, want: []int64{2, 3, 1}},
		{name: "range", q: Query{From: base.Add(-3 * time.Hour), To: base}, want: []int64{2, 3, 4}},
		{name: "min likes zero is a real filter", q: Query{MinLikes: 0, HasMinLikes: true}, want: []int64{2, 3, 4, 1}},
		{name: "combined", q: Query{AuthorID: 1, Term: "launch", MinLikes: 5, HasMinLikes: true}, want: []int64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.q.Apply(in)))
		})
	}

	assert.Empty(t, Query{Term: "x"}.Apply(nil))
}
