// =============================================================================
// Inventario - Shared Types
// =============================================================================
//
// This package contains types shared by the form core, the HTTP client, the
// companion backend and the spreadsheet importer. Keeping them here avoids
// import cycles between:
//   - form
//   - client
//   - server / store
//   - sheet
//
// WIRE FORMAT:
//   The JSON keys follow the backend contract, which uses Spanish names
//   (nombre, cantidad, precio_compra, precio_venta).
//
// =============================================================================

package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION MODE
// =============================================================================

// Mode selects whether a form registers a purchase or a sale.
// It changes field labels, the price key sent to the backend, the minimum
// autocomplete query length and the registration endpoint.
type Mode string

const (
	// ModePurchase registers stock coming in.
	ModePurchase Mode = "purchase"

	// ModeSale registers stock going out.
	ModeSale Mode = "sale"
)

// ParseMode accepts the English and Spanish spellings used on the command line.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "purchase", "compra", "compras":
		return ModePurchase, nil
	case "sale", "venta", "ventas":
		return ModeSale, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want purchase or sale)", s)
	}
}

// PriceKey returns the JSON key that carries the line price for this mode.
func (m Mode) PriceKey() string {
	if m == ModeSale {
		return "precio_venta"
	}
	return "precio_compra"
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

// Suggestion is one product returned by the product-search endpoint.
// Suggestions are ephemeral: they live in a row's suggestion list until a
// selection is made or the query text changes.
type Suggestion struct {
	// ID is the backend product identifier.
	ID string `json:"id" db:"id"`

	// Name is the product name shown in the list and copied into the row.
	Name string `json:"nombre" db:"nombre"`

	// Stock is the quantity currently on hand.
	Stock decimal.Decimal `json:"stock" db:"stock"`

	// SalePrice is the suggested sale price. Products registered through a
	// purchase start with a zero sale price, which counts as "no suggestion".
	SalePrice decimal.NullDecimal `json:"precio_venta" db:"precio_venta"`
}

// HasSalePrice reports whether the suggestion carries a usable sale price.
func (s Suggestion) HasSalePrice() bool {
	return s.SalePrice.Valid && !s.SalePrice.Decimal.IsZero()
}

// =============================================================================
// TRANSACTION PAYLOAD
// =============================================================================

// PayloadEntry is one line of a registration request.
// The price is serialized under the key selected by Mode.
type PayloadEntry struct {
	Mode     Mode
	ID       string
	Name     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Total    decimal.Decimal
}

// MarshalJSON writes the entry with numeric amounts and the mode price key.
func (e PayloadEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"id":              e.ID,
		"nombre":          e.Name,
		"cantidad":        json.Number(e.Quantity.String()),
		e.Mode.PriceKey(): json.Number(e.Price.String()),
		"total":           json.Number(e.Total.StringFixed(2)),
	})
}

// LineItemRequest is the server-side view of a registration line.
// Both price keys are accepted; the handler reads the one for its mode.
// Amounts may arrive as numbers or numeric strings.
type LineItemRequest struct {
	ID            string              `json:"id"`
	Name          string              `json:"nombre"`
	Quantity      decimal.Decimal     `json:"cantidad"`
	PurchasePrice decimal.NullDecimal `json:"precio_compra"`
	SalePrice     decimal.NullDecimal `json:"precio_venta"`
	Total         decimal.NullDecimal `json:"total"`
}

// Price returns the line price for the given mode, zero when absent.
func (r LineItemRequest) Price(mode Mode) decimal.Decimal {
	if mode == ModeSale {
		return r.SalePrice.Decimal
	}
	return r.PurchasePrice.Decimal
}

// =============================================================================
// BACKEND RECORDS
// =============================================================================

// Product is a catalogue entry as stored and listed by the backend.
type Product struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"nombre" db:"nombre"`
	PurchasePrice decimal.Decimal `json:"precio_compra" db:"precio_compra"`
	SalePrice     decimal.Decimal `json:"precio_venta" db:"precio_venta"`
	Category      string          `json:"categoria" db:"categoria"`
	Kind          string          `json:"tipo" db:"tipo"`
	Unit          string          `json:"unidad" db:"unidad"`
	Supplier      string          `json:"proveedor" db:"proveedor"`
	Stock         decimal.Decimal `json:"stock" db:"stock"`
	Location      string          `json:"ubicacion" db:"ubicacion"`
}

// HistoryRecord is one registered purchase or sale line.
type HistoryRecord struct {
	ProductID string          `json:"id" db:"id"`
	Name      string          `json:"nombre" db:"nombre"`
	Date      string          `json:"fecha" db:"fecha"`
	Price     decimal.Decimal `json:"precio" db:"precio"`
	Quantity  decimal.Decimal `json:"cantidad" db:"cantidad"`
	Total     decimal.Decimal `json:"total" db:"total"`
}

// TopSale aggregates sales of one product over a time window.
type TopSale struct {
	ProductID string          `json:"id" db:"id"`
	Name      string          `json:"nombre" db:"nombre"`
	Quantity  decimal.Decimal `json:"cantidad" db:"cantidad"`
	Revenue   decimal.Decimal `json:"total" db:"total"`
	Profit    decimal.Decimal `json:"ganancia" db:"ganancia"`
}
