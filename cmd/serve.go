// =============================================================================
// Inventario - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   inventario serve [--addr :8000] [--db ./data/inventario.db]
//
// Runs the inventory backend the forms talk to. The server stops cleanly on
// SIGINT or SIGTERM.
//
// =============================================================================

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/server"
	"github.com/ginjaninja78/inventario/internal/store"
)

var (
	serveAddr string
	serveDB   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the inventory backend",
	Long: `Run the inventory backend: product search, purchase and sale
registration, product listing, history and top sales, stored in SQLite.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.listen_addr)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite database file (default server.db_path)")
}

func runServe(cmd *cobra.Command) error {
	addr := cfg.Server.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	dbPath := cfg.Server.DBPath
	if serveDB != "" {
		dbPath = serveDB
	}

	log, err := setupLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := store.Open(dbPath, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("inventory backend starting", zap.String("addr", addr), zap.String("db", dbPath))
	return server.New(st, log).ListenAndServe(ctx, addr)
}
