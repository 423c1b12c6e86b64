package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPostCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "post <html>...",
		Short: "Post a message; arguments are joined with spaces",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			m, err := store.Create(cmd.Context(), opts.user(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "posted message %d\n", m.ID)
			return nil
		},
	}
}
