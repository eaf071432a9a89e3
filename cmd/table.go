// =============================================================================
// Inventario - Table Command
// =============================================================================
//
// COMMAND USAGE:
//   inventario table productos|compras|ventas|top [flags]
//
// FLAGS:
//   --sort    : Column to sort by, as header name or 1-based number.
//               Repeat to apply several sorts in order; sorting the same
//               column twice flips it to descending.
//   --days    : Window for the top table (default 30)
//   --export  : Save the table as XLSX instead of printing it. A bare file
//               name is placed in files.output_dir; "-" picks a generated
//               name.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/client"
	"github.com/ginjaninja78/inventario/internal/sheet"
	"github.com/ginjaninja78/inventario/internal/tablesort"
	"github.com/ginjaninja78/inventario/internal/types"
	"github.com/ginjaninja78/inventario/pkg/utils"
)

var (
	tableSorts  []string
	tableDays   int
	tableExport string
)

// tableNames are the tables the command can show.
var tableNames = []string{"productos", "compras", "ventas", "top"}

var tableCmd = &cobra.Command{
	Use:       "table productos|compras|ventas|top",
	Short:     "Show or export a results table",
	Long:      `Fetch a table from the backend, optionally sort it by one or more columns, and print it or export it to XLSX.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: tableNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTable(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)

	tableCmd.Flags().StringArrayVar(&tableSorts, "sort", nil, "Column to sort by (repeatable)")
	tableCmd.Flags().IntVar(&tableDays, "days", 30, "Days covered by the top table")
	tableCmd.Flags().StringVar(&tableExport, "export", "", "Write the table to this XLSX file")
}

func runTable(cmd *cobra.Command, name string) error {
	log, err := setupLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	grid, err := fetchGrid(cmd.Context(), newClient(log), name, tableDays)
	if err != nil {
		return err
	}

	for _, s := range tableSorts {
		col, err := resolveColumn(grid, s)
		if err != nil {
			return err
		}
		dir := tablesort.SortByColumn(grid, col)
		log.Debug("table sorted", zap.String("column", grid.Header[col]), zap.Stringer("direction", dir))
	}

	if tableExport == "" {
		return grid.Render(cmd.OutOrStdout())
	}

	files := utils.NewFileManager(cfg.Files.OutputDir, "")
	if err := files.EnsureDirectories(); err != nil {
		return err
	}
	format := tableExport
	if format == "-" {
		format = "{name}_{timestamp}"
	}
	path := files.OutputPath(format, ".xlsx", map[string]string{"name": name})
	if err := sheet.WriteGrid(path, name, grid); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d row(s) to %s\n", grid.Len(), path)
	return nil
}

// tableSource is the part of the backend client the table command reads.
type tableSource interface {
	Products(ctx context.Context) ([]types.Product, error)
	History(ctx context.Context, kind string) ([]types.HistoryRecord, error)
	TopSales(ctx context.Context, days int) ([]types.TopSale, error)
}

var _ tableSource = (*client.Client)(nil)

// fetchGrid loads one named table from the backend.
func fetchGrid(ctx context.Context, src tableSource, name string, days int) (*tablesort.Grid, error) {
	switch name {
	case "productos":
		products, err := src.Products(ctx)
		if err != nil {
			return nil, err
		}
		return productsGrid(products), nil
	case "compras", "ventas":
		records, err := src.History(ctx, name)
		if err != nil {
			return nil, err
		}
		return historyGrid(records), nil
	case "top":
		top, err := src.TopSales(ctx, days)
		if err != nil {
			return nil, err
		}
		return topGrid(top), nil
	}
	return nil, fmt.Errorf("unknown table %q (want %s)", name, strings.Join(tableNames, ", "))
}

func productsGrid(products []types.Product) *tablesort.Grid {
	g := &tablesort.Grid{Header: []string{
		"id", "nombre", "precio_compra", "precio_venta", "categoria",
		"tipo", "unidad", "proveedor", "stock", "ubicacion",
	}}
	for _, p := range products {
		g.Rows = append(g.Rows, []string{
			p.ID, p.Name, p.PurchasePrice.String(), p.SalePrice.String(), p.Category,
			p.Kind, p.Unit, p.Supplier, p.Stock.String(), p.Location,
		})
	}
	return g
}

func historyGrid(records []types.HistoryRecord) *tablesort.Grid {
	g := &tablesort.Grid{Header: []string{"id", "nombre", "fecha", "precio", "cantidad", "total"}}
	for _, r := range records {
		g.Rows = append(g.Rows, []string{
			r.ProductID, r.Name, r.Date, r.Price.String(), r.Quantity.String(), r.Total.StringFixed(2),
		})
	}
	return g
}

func topGrid(top []types.TopSale) *tablesort.Grid {
	g := &tablesort.Grid{Header: []string{"id", "nombre", "cantidad", "total", "ganancia"}}
	for _, t := range top {
		g.Rows = append(g.Rows, []string{
			t.ProductID, t.Name, t.Quantity.String(), t.Revenue.StringFixed(2), t.Profit.StringFixed(2),
		})
	}
	return g
}

// resolveColumn accepts a header name or a 1-based column number.
func resolveColumn(g *tablesort.Grid, ref string) (int, error) {
	if col := g.Column(ref); col >= 0 {
		return col, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(g.Header) {
		return n - 1, nil
	}
	return 0, fmt.Errorf("unknown column %q (have %s)", ref, strings.Join(g.Header, ", "))
}
