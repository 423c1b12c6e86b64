// Package cli implements feedctl, a command line client for the feed service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CaioAP/scuderia/internal/auth"
	"github.com/CaioAP/scuderia/internal/models"
	"github.com/CaioAP/scuderia/internal/storage/httpstore"
)

var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	server    string
	secret    string
	userID    int64
	userName  string
	userLabel string
}

func (o *options) user() *models.User {
	return &models.User{ID: o.userID, Name: o.userName, Label: o.userLabel}
}

func (o *options) store() (*httpstore.Client, error) {
	if o.secret == "" {
		return nil, fmt.Errorf("--secret or JWT_SECRET is required")
	}
	if o.userID <= 0 {
		return nil, fmt.Errorf("--user-id must be positive")
	}
	c := httpstore.New(o.server, auth.NewSigner(o.secret), nil)
	c.Users[o.userID] = o.user()
	return c, nil
}

// NewRootCmd builds the feedctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "feedctl",
		Short: "Command line client for the team messages feed",
		Long: `feedctl lists, likes and posts messages on a running feed service.
It signs a short-lived token for the given user with the service secret.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	server := os.Getenv("FEED_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&opts.server, "server", server, "feed service base URL (env FEED_SERVER)")
	root.PersistentFlags().StringVar(&opts.secret, "secret", os.Getenv("JWT_SECRET"), "token signing secret (env JWT_SECRET)")
	root.PersistentFlags().Int64Var(&opts.userID, "user-id", 1, "acting user id")
	root.PersistentFlags().StringVar(&opts.userName, "user-name", "", "acting user display name")
	root.PersistentFlags().StringVar(&opts.userLabel, "user-label", "", "acting user handle")

	root.AddCommand(
		newListCmd(opts),
		newLikeCmd(opts, true),
		newLikeCmd(opts, false),
		newPostCmd(opts),
	)
	return root
}

// Execute runs feedctl and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
