package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/inventario/internal/types"
)

// HistoryKind selects the purchase or the sale history.
type HistoryKind string

const (
	Purchases HistoryKind = "compras"
	Sales     HistoryKind = "ventas"
)

// ErrUnknownHistory is returned for a history kind other than compras/ventas.
var ErrUnknownHistory = errors.New("unknown history kind")

// ParseHistoryKind validates a kind coming from a URL or the command line.
func ParseHistoryKind(s string) (HistoryKind, error) {
	switch HistoryKind(s) {
	case Purchases, Sales:
		return HistoryKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownHistory, s)
}

// History lists the registered lines of one kind in registration order,
// each joined with its product name.
func (s *Store) History(ctx context.Context, kind HistoryKind) ([]types.HistoryRecord, error) {
	if _, err := ParseHistoryKind(string(kind)); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT h.id_producto AS id,
		       COALESCE(p.nombre, ?) AS nombre,
		       h.fecha, h.precio, h.cantidad, h.total
		FROM %s h
		LEFT JOIN productos p ON p.id = h.id_producto
		ORDER BY h.seq`, kind)

	out := []types.HistoryRecord{}
	if err := s.db.SelectContext(ctx, &out, query, DeletedProduct); err != nil {
		return nil, fmt.Errorf("history %s: %w", kind, err)
	}
	return out, nil
}

type saleLine struct {
	ID           string          `db:"id"`
	Name         string          `db:"nombre"`
	Quantity     decimal.Decimal `db:"cantidad"`
	Total        decimal.Decimal `db:"total"`
	CurrentPrice decimal.Decimal `db:"precio_compra"`
}

// TopSales aggregates the sales of the last days per product: total quantity,
// total revenue, and profit as revenue minus the current purchase price times
// quantity. Results are ordered by quantity, highest first.
func (s *Store) TopSales(ctx context.Context, days int) ([]types.TopSale, error) {
	if days < 0 {
		return nil, fmt.Errorf("top sales: negative window %d", days)
	}
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour).Format(dateLayout)

	var lines []saleLine
	err := s.db.SelectContext(ctx, &lines, `
		SELECT v.id_producto AS id,
		       COALESCE(p.nombre, ?) AS nombre,
		       v.cantidad, v.total,
		       COALESCE(p.precio_compra, '0') AS precio_compra
		FROM ventas v
		LEFT JOIN productos p ON p.id = v.id_producto
		WHERE v.fecha >= ?
		ORDER BY v.seq`, DeletedProduct, cutoff)
	if err != nil {
		return nil, fmt.Errorf("top sales: %w", err)
	}

	index := make(map[string]int)
	out := []types.TopSale{}
	cost := []decimal.Decimal{}
	for _, l := range lines {
		i, ok := index[l.ID]
		if !ok {
			i = len(out)
			index[l.ID] = i
			out = append(out, types.TopSale{ProductID: l.ID, Name: l.Name})
			cost = append(cost, l.CurrentPrice)
		}
		out[i].Quantity = out[i].Quantity.Add(l.Quantity)
		out[i].Revenue = out[i].Revenue.Add(l.Total)
	}
	for i := range out {
		out[i].Profit = out[i].Revenue.Sub(cost[i].Mul(out[i].Quantity))
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Quantity.GreaterThan(out[b].Quantity)
	})
	return out, nil
}
