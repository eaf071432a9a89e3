// =============================================================================
// Inventario - Main Entry Point
// =============================================================================
//
// USAGE:
//   inventario purchase   - Register a purchase in the terminal form
//   inventario sale       - Register a sale in the terminal form
//   inventario import     - Register purchases or sales from spreadsheets
//   inventario table      - Show, sort or export result tables
//   inventario serve      - Run the inventory backend
//   inventario version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Form logic, client, backend and file handling
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/inventario/cmd"
)

func main() {
	cmd.Execute()
}
