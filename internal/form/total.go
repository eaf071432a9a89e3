package form

import (
	"github.com/ginjaninja78/inventario/internal/validation"
)

// SetPrice writes the price field and refreshes the line total.
func (f *Form) SetPrice(row *Row, text string) {
	row.price = text
	f.OnFieldChanged(row)
}

// SetQuantity writes the quantity field and refreshes the line total.
func (f *Form) SetQuantity(row *Row, text string) {
	row.quantity = text
	f.OnFieldChanged(row)
}

// OnFieldChanged recomputes the line total from price and quantity.
// When either does not parse as a number the previous total is kept.
func (f *Form) OnFieldChanged(row *Row) {
	price, ok := validation.ParseAmount(row.price)
	if !ok {
		return
	}
	qty, ok := validation.ParseAmount(row.quantity)
	if !ok {
		return
	}
	row.total = price.Mul(qty).Round(2).StringFixed(2)
}
