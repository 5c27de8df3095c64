package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ai-library/ai-library/client/auth"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/session"
	"github.com/ai-library/ai-library/client/store"
	"github.com/ai-library/ai-library/pkg/logger"
)

// cli bundles everything a command needs: the persisted token store,
// the backend client, and the session on top of them.
type cli struct {
	log     *zap.Logger
	store   *store.Store
	client  *httpx.Client
	session *session.Manager

	apiURL  string
	dbPath  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "libctl",
		Short:         "Command-line client for the library service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
	}

	root.PersistentFlags().StringVar(&c.apiURL, "api", "", "backend base URL (defaults to API_BASE_URL)")
	root.PersistentFlags().StringVar(&c.dbPath, "db", defaultDBPath(), "path to the local session database")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newBooksCmd(c),
		newLoansCmd(c),
		newSearchCmd(c),
		newKeepaliveCmd(c),
	)
	return root
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "libctl.db"
	}
	return filepath.Join(home, ".libctl", "session.db")
}

func (c *cli) init() error {
	_ = godotenv.Load()

	level := zapcore.WarnLevel
	if c.verbose {
		level = zapcore.DebugLevel
	}
	c.log = logger.NewLogger(logger.Log{LogLevel: level}, "libctl")

	var cfg httpx.Config
	if err := envconfig.Process("", &cfg); err != nil {
		return errors.Wrap(err, "read config")
	}
	if c.apiURL != "" {
		cfg.BaseURL = c.apiURL
	}
	if cfg.BaseURL == "" {
		return errors.New("no backend URL: set API_BASE_URL or pass --api")
	}

	if err := os.MkdirAll(filepath.Dir(c.dbPath), 0o700); err != nil {
		return errors.Wrap(err, "session dir")
	}
	st, err := store.Open(c.dbPath, c.log)
	if err != nil {
		return errors.Wrap(err, "open session store")
	}
	c.store = st

	hub := httpx.NewHub()
	interactions := &httpx.Interactions{}
	// every invocation is a direct user action
	interactions.Record()

	client, err := httpx.NewClient(cfg, st, hub, interactions, c.log)
	if err != nil {
		return errors.Wrap(err, "backend client")
	}
	c.client = client
	c.session = session.NewManager(auth.NewService(client, c.log), st, hub, c.log)
	return nil
}

func (c *cli) close() {
	if c.session != nil {
		c.session.Close()
	}
	if c.store != nil {
		_ = c.store.Close()
	}
}

// printJSON is the one output format every subcommand shares.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}
