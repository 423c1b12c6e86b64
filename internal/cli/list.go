package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/CaioAP/scuderia/internal/feed"
	"github.com/CaioAP/scuderia/internal/timefmt"
)

const previewLen = 60

func newListCmd(opts *options) *cobra.Command {
	var (
		q        feed.Query
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the feed, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			if from != "" {
				if q.From, err = time.Parse(time.RFC3339, from); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
			}
			if to != "" {
				if q.To, err = time.Parse(time.RFC3339, to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}
			q.HasMinLikes = cmd.Flags().Changed("min-likes")

			msgs, err := store.List(cmd.Context(), opts.userID)
			if err != nil {
				return err
			}
			msgs = q.Apply(msgs)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tAUTHOR\tWHEN\tLIKES\tMESSAGE")
			for _, m := range msgs {
				likes := fmt.Sprintf("%d", m.LikeCount)
				if m.IsLiked {
					likes += "*"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					m.ID, m.AuthorName(), timefmt.Format(m.CreatedAt), likes, preview(feed.StripTags(m.Content)))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Int64Var(&q.AuthorID, "author", 0, "only messages by this user id")
	cmd.Flags().StringVarP(&q.Term, "query", "q", "", "case-insensitive text or author search")
	cmd.Flags().StringVar(&from, "from", "", "earliest creation time (RFC 3339)")
	cmd.Flags().StringVar(&to, "to", "", "latest creation time (RFC 3339)")
	cmd.Flags().IntVar(&q.MinLikes, "min-likes", 0, "minimum like count")
	return cmd
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen-1]) + "…"
}
