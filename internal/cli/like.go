package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newLikeCmd(opts *options, like bool) *cobra.Command {
	use, short, verb := "like <id>", "Like a message", "liked"
	if !like {
		use, short, verb = "unlike <id>", "Remove your like from a message", "unliked"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid message id %q", args[0])
			}
			store, err := opts.store()
			if err != nil {
				return err
			}
			if like {
				err = store.Like(cmd.Context(), opts.userID, id)
			} else {
				err = store.Unlike(cmd.Context(), opts.userID, id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s message %d\n", verb, id)
			return nil
		},
	}
}
