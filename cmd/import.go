// =============================================================================
// Inventario - Import Command
// =============================================================================
//
// This file defines the 'import' command, which registers purchases or sales
// from spreadsheets. Every file is one operation and is confirmed on its own.
//
// COMMAND USAGE:
//   inventario import --mode purchase|sale --file items.xlsx [flags]
//   inventario import --mode sale --dir ./pending
//
// FLAGS:
//   --mode      : purchase or sale (required)
//   --file      : Spreadsheet to import; repeat for several files
//   --dir       : Import every .csv/.xlsx file in a directory
//   --yes       : Do not ask for confirmation
//   --dry-run   : Validate and report without registering anything
//   --delimiter : CSV delimiter (default files.csv_delimiter)
//
// PROCESSING PIPELINE:
//   1. Collect the files from --file, arguments and --dir
//   2. For each file (concurrently): run the importer
//   3. Print one line per file and a summary
//
// On success the file is moved to files.archive_dir when one is set. On
// error a report is written to files.output_dir and the file stays in place.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/importer"
	"github.com/ginjaninja78/inventario/internal/types"
	"github.com/ginjaninja78/inventario/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	importMode      string
	importFiles     []string
	importDir       string
	importYes       bool
	importDryRun    bool
	importDelimiter string
)

var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Register purchases or sales from spreadsheets",
	Long: `The import command reads line items from .xlsx or .csv files and
registers each file as one purchase or sale.

Recognised columns (case-insensitive, first match wins):
  id        id, codigo, code
  name      nombre, name, producto, product
  quantity  cantidad, quantity, qty
  price     precio, price, precio_compra, precio_venta

Lines without an id are matched to products by exact name. In purchase mode
an unknown name becomes a new product; in sale mode it is an error.

Files are imported concurrently. Errors in one file do not stop the others.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importMode, "mode", "", "Operation to register: purchase or sale")
	importCmd.Flags().StringSliceVar(&importFiles, "file", nil, "Spreadsheet to import (repeatable)")
	importCmd.Flags().StringVar(&importDir, "dir", "", "Import every spreadsheet in this directory")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Register without asking for confirmation")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate files without registering")
	importCmd.Flags().StringVar(&importDelimiter, "delimiter", "", "CSV delimiter: , ; | or tab")
	importCmd.MarkFlagRequired("mode")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runImport(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	mode, err := types.ParseMode(importMode)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: COLLECT INPUT FILES
	// =========================================================================

	inputFiles := append(append([]string{}, importFiles...), args...)
	if importDir != "" {
		found, err := discoverInputFiles(importDir)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputFiles = append(inputFiles, found...)
	}
	if len(inputFiles) == 0 {
		return errors.New("nothing to import: pass --file, --dir or file arguments")
	}

	log, err := setupLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	files := utils.NewFileManager(cfg.Files.OutputDir, cfg.Files.ArchiveDir)
	files.UseTimestampSubdirs = cfg.Files.UseTimestampSubdirs

	delimiter := cfg.Files.CSVDelimiter
	if importDelimiter != "" {
		delimiter = importDelimiter
	}
	opts := importer.Options{
		DryRun:    importDryRun,
		MinQuery:  minQuery(mode),
		Delimiter: delimiter,
	}

	backend := newClient(log)
	prompter := newPromptGroup(cmd.InOrStdin(), out, importYes)

	fmt.Fprintf(out, "=== Inventario import (%s) ===\n", mode)
	fmt.Fprintf(out, "Found %d file(s) to import\n", len(inputFiles))

	// =========================================================================
	// STEP 2: IMPORT FILES CONCURRENTLY
	// =========================================================================

	var wg sync.WaitGroup
	results := make(chan importer.Result, len(inputFiles))

	for _, file := range inputFiles {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			im := importer.New(path, mode, backend, prompter(filepath.Base(path)), files, opts, log)
			results <- im.Run(cmd.Context())
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 3: COLLECT RESULTS AND PRINT SUMMARY
	// =========================================================================

	var successCount, errorCount, skippedCount int
	for result := range results {
		name := filepath.Base(result.FilePath)
		switch {
		case result.Success:
			successCount++
			line := fmt.Sprintf("  ✓ %s: %d line(s), total %s", name, result.Stats.Lines, result.Stats.Total.StringFixed(2))
			if result.ArchivedTo != "" {
				line += " -> " + result.ArchivedTo
			}
			fmt.Fprintln(out, line)
		case result.Error == nil:
			skippedCount++
			fmt.Fprintf(out, "  - %s: not registered\n", name)
		default:
			errorCount++
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
			if result.ErrorLog != "" {
				fmt.Fprintf(out, "    report: %s\n", result.ErrorLog)
			}
			log.Warn("import failed", zap.String("file", result.FilePath), zap.Error(result.Error))
		}
	}

	fmt.Fprintln(out, "\n=== Import Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(inputFiles))
	if importDryRun {
		fmt.Fprintf(out, "Valid:           %d\n", successCount)
	} else {
		fmt.Fprintf(out, "Registered:      %d\n", successCount)
	}
	fmt.Fprintf(out, "Not registered:  %d\n", skippedCount)
	fmt.Fprintf(out, "Errors:          %d\n", errorCount)
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	if errorCount > 0 {
		return fmt.Errorf("%d file(s) failed", errorCount)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// discoverInputFiles lists the spreadsheets directly inside dir, sorted by
// name. Subdirectories are not searched so an archive kept inside the input
// directory is never imported twice.
func discoverInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".txt", ".xlsx", ".xlsm":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
