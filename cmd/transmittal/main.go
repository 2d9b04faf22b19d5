// Command transmittal is the offline front end: it keeps sender settings,
// the generation history and number counters in a local SQLite file and
// produces transmittal PDFs and CSVs from a draft.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"transmittal/internal/config"
	"transmittal/internal/repository/sqlite"
	"transmittal/internal/service/form"
)

// app is what every subcommand shares once the root pre-run has opened the store.
type app struct {
	cfg     *config.Config
	store   *sqlite.Store
	storage *form.LocalStorage
	logger  *slog.Logger
	now     func() time.Time
}

func defaultDBPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "transmittal", "local.db")
	}
	return filepath.Join(".transmittal", "local.db")
}

// newRootCmd builds the command tree. The returned func closes the local
// store opened by whichever subcommand ran.
func newRootCmd() (*cobra.Command, func()) {
	var (
		dbPath  string
		verbose bool
		a       = &app{now: time.Now}
	)

	root := &cobra.Command{
		Use:   "transmittal",
		Short: "Generate document transmittal forms",
		Long: `transmittal builds transmittal forms from a draft file, optionally filling the
item list from a Google Drive folder categorized by Gemini.

Sender settings, the API key, the generation history and the offline number
counter live in a local SQLite file (--db).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			a.cfg = config.Load()

			var logOut io.Writer = io.Discard
			if verbose {
				logOut = cmd.ErrOrStderr()
			}
			a.logger = config.NewLogger("dev", logOut)

			store, err := sqlite.Open(dbPath)
			if err != nil {
				return err
			}
			a.store = store
			a.storage = form.NewLocalStorage(store)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", envOr("TRANSMITTAL_DB", defaultDBPath()), "local database file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newSettingsCmd(a),
		newUserCodeCmd(),
		newScanCmd(a),
		newGenerateCmd(a),
		newHistoryCmd(a),
		newClearCmd(a),
	)
	closeStore := func() {
		if a.store != nil {
			a.store.Close()
		}
	}
	return root, closeStore
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, closeStore := newRootCmd()
	err := root.ExecuteContext(ctx)
	closeStore()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
