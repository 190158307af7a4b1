// Command parlo is the terminal client for the Parlo community platform:
// browse and search prompts, post and comment, and call the AI study tools.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"parlo/client/internal/api"
	"parlo/client/internal/config"
	"parlo/client/internal/session"
)

// app holds the wired client stack shared by every command. Built once in
// the root PersistentPreRunE.
type app struct {
	cfg      config.Config
	sessions session.Store
	resolver *session.Resolver
	client   *api.Client
}

var (
	current *app
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "parlo",
	Short: "Parlo community client",
	Long: `parlo is the terminal client for the Parlo English-learning community.

Browse the prompt feed, publish and edit your own prompts, join comment
threads, and use the AI study helpers. Log in once with 'parlo login';
the session is kept until 'parlo logout'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			log.SetOutput(io.Discard)
		}
		var err error
		current, err = newApp()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.close()
		}
	},
}

func newApp() (*app, error) {
	cfg := config.Load()

	var sessions session.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		sessions = redisStore
	} else {
		sessions = session.NewFileStore(cfg.SessionFile)
	}

	resolver := session.NewResolver(sessions)
	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, resolver.Token)
	return &app{cfg: cfg, sessions: sessions, resolver: resolver, client: client}, nil
}

func (a *app) close() {
	if closer, ok := a.sessions.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("closing session store: %v", err)
		}
	}
}

// requireLogin fails fast with a friendly message instead of letting the
// backend answer 401 for an obviously logged-out user.
func (a *app) requireLogin() (session.Identity, error) {
	identity, ok := a.resolver.Current()
	if !ok {
		return session.Identity{}, fmt.Errorf("not logged in; run 'parlo login' first")
	}
	return identity, nil
}

// friendly rewrites API errors for terminal display; auth expiry gets a hint.
func friendly(err error) error {
	if err == nil {
		return nil
	}
	if api.IsAuthExpired(err) {
		return fmt.Errorf("session expired; run 'parlo login' again")
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log request details to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "parlo: %v\n", err)
		os.Exit(1)
	}
}
