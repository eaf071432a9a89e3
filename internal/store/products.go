package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/types"
)

// Defaults for products created by a purchase of an unknown item.
const (
	defaultCategory = "General"
	defaultKind     = "General"
	defaultUnit     = "unidad"
	defaultSupplier = "General"
	defaultLocation = "Bodega"
)

// SearchProducts returns products whose name contains query, ignoring case,
// ordered by name.
func (s *Store) SearchProducts(ctx context.Context, query string) ([]types.Suggestion, error) {
	out := []types.Suggestion{}
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, nombre, stock, precio_venta FROM productos
		 WHERE instr(lower(nombre), lower(?)) > 0
		 ORDER BY nombre, id`, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return out, nil
}

// ListProducts returns the whole catalogue ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]types.Product, error) {
	out := []types.Product{}
	err := s.db.SelectContext(ctx, &out, `SELECT * FROM productos ORDER BY nombre, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// GetProduct returns one product, or nil when it does not exist.
func (s *Store) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	return getProduct(ctx, s.db, id)
}

// UpsertProduct writes a full catalogue entry.
func (s *Store) UpsertProduct(ctx context.Context, p types.Product) error {
	if p.ID == "" {
		p.ID = s.newID()
	}
	_, err := s.db.NamedExecContext(ctx, upsertProductSQL, p)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

const upsertProductSQL = `
	INSERT INTO productos (id, nombre, precio_compra, precio_venta, categoria, tipo, unidad, proveedor, stock, ubicacion)
	VALUES (:id, :nombre, :precio_compra, :precio_venta, :categoria, :tipo, :unidad, :proveedor, :stock, :ubicacion)
	ON CONFLICT(id) DO UPDATE SET
		nombre = excluded.nombre,
		precio_compra = excluded.precio_compra,
		precio_venta = excluded.precio_venta,
		categoria = excluded.categoria,
		tipo = excluded.tipo,
		unidad = excluded.unidad,
		proveedor = excluded.proveedor,
		stock = excluded.stock,
		ubicacion = excluded.ubicacion`

// RegisterPurchases records a batch of purchase lines in one transaction.
// A line with an empty or unknown id creates a new product stocked with the
// purchased quantity; a known id adds to stock and takes the new purchase
// price. Every line is written to the purchase history with its total
// recomputed as quantity times price.
func (s *Store) RegisterPurchases(ctx context.Context, items []types.LineItemRequest) error {
	fecha := s.timestamp()

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for i, item := range items {
			price := item.Price(types.ModePurchase)
			id := item.ID

			existing, err := getProduct(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}

			if existing == nil {
				id = s.newID()
				p := types.Product{
					ID:            id,
					Name:          item.Name,
					PurchasePrice: price,
					SalePrice:     decimal.Zero,
					Category:      defaultCategory,
					Kind:          defaultKind,
					Unit:          defaultUnit,
					Supplier:      defaultSupplier,
					Stock:         item.Quantity,
					Location:      defaultLocation,
				}
				if _, err := tx.NamedExecContext(ctx, upsertProductSQL, p); err != nil {
					return fmt.Errorf("item %d: create product: %w", i+1, err)
				}
				s.log.Debug("product created", zap.String("id", id), zap.String("nombre", item.Name))
			} else {
				_, err := tx.ExecContext(ctx,
					`UPDATE productos SET stock = ?, precio_compra = ? WHERE id = ?`,
					existing.Stock.Add(item.Quantity), price, id)
				if err != nil {
					return fmt.Errorf("item %d: update product: %w", i+1, err)
				}
			}

			if err := insertMovement(ctx, tx, "compras", id, fecha, price, item.Quantity); err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// RegisterSales records a batch of sale lines in one transaction. Lines for
// known products decrease stock (stock may go negative) and are written to
// the sale history. Lines with an unknown id are skipped.
func (s *Store) RegisterSales(ctx context.Context, items []types.LineItemRequest) error {
	fecha := s.timestamp()

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for i, item := range items {
			existing, err := getProduct(ctx, tx, item.ID)
			if err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
			if existing == nil {
				s.log.Warn("sale of unknown product skipped",
					zap.Int("item", i+1),
					zap.String("id", item.ID),
					zap.String("nombre", item.Name),
				)
				continue
			}

			_, err = tx.ExecContext(ctx, `UPDATE productos SET stock = ? WHERE id = ?`,
				existing.Stock.Sub(item.Quantity), item.ID)
			if err != nil {
				return fmt.Errorf("item %d: update stock: %w", i+1, err)
			}

			price := item.Price(types.ModeSale)
			if err := insertMovement(ctx, tx, "ventas", item.ID, fecha, price, item.Quantity); err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
		}
		return nil
	})
}

func getProduct(ctx context.Context, q sqlx.QueryerContext, id string) (*types.Product, error) {
	if id == "" {
		return nil, nil
	}
	var p types.Product
	err := sqlx.GetContext(ctx, q, &p, `SELECT * FROM productos WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

func insertMovement(ctx context.Context, tx *sqlx.Tx, table, id, fecha string, price, qty decimal.Decimal) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (id_producto, fecha, precio, cantidad, total) VALUES (?, ?, ?, ?, ?)`, table)
	if _, err := tx.ExecContext(ctx, query, id, fecha, price, qty, qty.Mul(price)); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}
