// =============================================================================
// Inventario - Purchase and Sale Commands
// =============================================================================
//
// COMMAND USAGE:
//   inventario purchase
//   inventario sale
//
// Both commands open the interactive entry form in their mode. The form
// talks to the backend configured under client.base_url. Log output goes to
// log.file, or to inventario.log next to the database, so it never draws
// over the form.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/form"
	"github.com/ginjaninja78/inventario/internal/tui"
	"github.com/ginjaninja78/inventario/internal/types"
)

var purchaseCmd = newFormCmd(types.ModePurchase, "purchase",
	"Register a purchase in the interactive form",
	`Open the purchase form. Typing at least five letters of a product name
lists matching products; a name that matches nothing can be registered as a
new product.`)

var saleCmd = newFormCmd(types.ModeSale, "sale",
	"Register a sale in the interactive form",
	`Open the sale form. Typing at least three letters of a product name lists
matching products with their stock; picking one fills in its sale price.`)

func init() {
	rootCmd.AddCommand(purchaseCmd)
	rootCmd.AddCommand(saleCmd)
}

func newFormCmd(mode types.Mode, use, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForm(cmd.Context(), mode)
		},
	}
}

func runForm(parent context.Context, mode types.Mode) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM)
	defer stop()

	log, err := setupLogger(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("form opened", zap.String("mode", string(mode)), zap.String("backend", cfg.Client.BaseURL))

	outcome, err := tui.Run(ctx, mode, newClient(log), tui.Options{
		MinQuery: minQuery(mode),
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("form: %w", err)
	}

	log.Info("form closed", zap.Stringer("outcome", outcome))
	if outcome == form.OutcomeRegistered {
		fmt.Println(form.SuccessMessage)
	}
	return nil
}
