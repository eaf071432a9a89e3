// =============================================================================
// Inventario - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// shares the configuration and logger built here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (inventario)
//   ├── purchaseCmd (inventario purchase)
//   ├── saleCmd     (inventario sale)
//   ├── importCmd   (inventario import)
//   ├── tableCmd    (inventario table)
//   ├── serveCmd    (inventario serve)
//   └── versionCmd  (inventario version)
//
// CONFIGURATION:
//   PersistentPreRunE loads the configuration once, before any subcommand
//   runs. Commands then build their logger with setupLogger, because the
//   interactive form needs its log in a file instead of on the terminal.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/client"
	"github.com/ginjaninja78/inventario/internal/config"
	"github.com/ginjaninja78/inventario/internal/logger"
	"github.com/ginjaninja78/inventario/internal/types"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// cfg is the loaded configuration, set by PersistentPreRunE.
var cfg *config.Config

// defaultFormLog receives the log of the interactive form when the
// configuration names no file.
const defaultFormLog = "inventario.log"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "inventario",
	Short: "Inventario - register purchases and sales against the inventory backend",
	Long: `Inventario is the purchase and sale entry tool for the inventory backend.

It offers an interactive terminal form with product autocomplete, a batch
importer for spreadsheets, sortable result tables and the backend itself.

Example Usage:
  inventario purchase                               # Open the purchase form
  inventario sale                                   # Open the sale form
  inventario import --mode sale --file ventas.xlsx  # Register a spreadsheet
  inventario table top --days 7 --sort ganancia     # Best sellers by profit
  inventario serve                                  # Run the backend`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// setupLogger builds the command logger. With toFile set the log always goes
// to a file, next to the database when no file is configured.
func setupLogger(toFile bool) (*zap.Logger, error) {
	lc := cfg.Log
	if toFile && lc.File == "" {
		lc.File = filepath.Join(filepath.Dir(cfg.Server.DBPath), defaultFormLog)
	}
	return logger.New(lc, verbose)
}

// newClient builds the backend client from the configuration.
func newClient(log *zap.Logger) *client.Client {
	return client.New(cfg.Client.BaseURL, cfg.Client.Timeout, log)
}

// minQuery returns the configured autocomplete threshold for a mode.
func minQuery(mode types.Mode) int {
	if mode == types.ModeSale {
		return cfg.Form.SaleMinQuery
	}
	return cfg.Form.PurchaseMinQuery
}
