package form

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/types"
)

// Entry is one selectable line of a suggestion list.
type Entry struct {
	// Suggestion is the product offered. Zero for the create-new entry.
	Suggestion types.Suggestion

	// CreateNew marks the synthetic purchase-only entry that keeps the typed
	// name and registers it as a new product.
	CreateNew bool

	// Label is the text shown to the user.
	Label string
}

// Lookup describes one product search to issue for a row.
type Lookup struct {
	Row   *Row
	Seq   uint64
	Query string
}

// LookupResult carries the outcome of a Lookup back to the event goroutine.
type LookupResult struct {
	Lookup      Lookup
	Suggestions []types.Suggestion
	Err         error
}

// OnNameInput handles a keystroke in a row's name field.
//
// The displayed list is cleared and every earlier lookup for the row becomes
// stale. When the text is shorter than the mode's minimum no lookup is needed
// and nil is returned; otherwise the returned Lookup must be run (RunLookup)
// and its result applied (ApplyLookup).
func (f *Form) OnNameInput(row *Row, text string) *Lookup {
	row.name = text
	row.suggestions = nil
	row.seq++

	if row.removed || utf8.RuneCountInString(text) < f.minQuery {
		return nil
	}

	f.log.Debug("lookup issued",
		zap.Int("row", row.key),
		zap.Uint64("seq", row.seq),
		zap.String("query", text),
	)
	return &Lookup{Row: row, Seq: row.seq, Query: text}
}

// RunLookup performs the product search. It only reads the lookup, so it may
// run on any goroutine.
func (f *Form) RunLookup(ctx context.Context, l *Lookup) LookupResult {
	res := LookupResult{Lookup: *l}
	if f.searcher == nil {
		res.Err = fmt.Errorf("no product search configured")
		return res
	}
	res.Suggestions, res.Err = f.searcher.Search(ctx, l.Query)
	return res
}

// ApplyLookup renders a lookup result into its row's suggestion list.
//
// RETURNS:
//   - ErrRowRemoved or ErrStaleLookup when the result no longer applies; the
//     row is left untouched.
//   - An error wrapping ErrLookupFailed when the search failed. The list stays
//     empty and a notice is shown; the form keeps working.
//   - nil once the suggestions are displayed.
func (f *Form) ApplyLookup(res LookupResult) error {
	row := res.Lookup.Row
	if row.removed {
		return ErrRowRemoved
	}
	if res.Lookup.Seq != row.seq {
		f.log.Debug("stale lookup discarded",
			zap.Int("row", row.key),
			zap.Uint64("seq", res.Lookup.Seq),
			zap.Uint64("current", row.seq),
		)
		return ErrStaleLookup
	}

	if res.Err != nil {
		row.suggestions = nil
		f.log.Warn("product lookup failed", zap.String("query", res.Lookup.Query), zap.Error(res.Err))
		f.notify("Product search is unavailable, keep typing or enter the product manually")
		return fmt.Errorf("%w: %w", ErrLookupFailed, res.Err)
	}

	entries := make([]Entry, 0, len(res.Suggestions)+1)
	for _, s := range res.Suggestions {
		entries = append(entries, Entry{
			Suggestion: s,
			Label:      fmt.Sprintf("%s (Stock: %s)", s.Name, s.Stock.String()),
		})
	}
	if f.mode == types.ModePurchase {
		entries = append(entries, Entry{
			CreateNew: true,
			Label:     fmt.Sprintf("+ Add new: %q", res.Lookup.Query),
		})
	}
	row.suggestions = entries

	return nil
}

// Lookup runs OnNameInput, RunLookup and ApplyLookup in sequence. It suits
// hosts without an event loop, such as the batch importer.
func (f *Form) Lookup(ctx context.Context, row *Row, text string) error {
	l := f.OnNameInput(row, text)
	if l == nil {
		return nil
	}
	return f.ApplyLookup(f.RunLookup(ctx, l))
}

// Select applies the suggestion at index to its row and clears the list.
//
// A product entry fills the name and hidden id; in sale mode a suggested sale
// price also replaces the price field. The create-new entry clears the hidden
// id and keeps the typed name.
func (f *Form) Select(row *Row, index int) error {
	if row.removed {
		return ErrRowRemoved
	}
	if index < 0 || index >= len(row.suggestions) {
		return fmt.Errorf("%w: index %d of %d", ErrNoSuchSuggestion, index, len(row.suggestions))
	}

	entry := row.suggestions[index]
	row.suggestions = nil

	if entry.CreateNew {
		row.productID = ""
		f.log.Debug("new product chosen", zap.Int("row", row.key), zap.String("name", row.name))
		return nil
	}

	s := entry.Suggestion
	row.name = s.Name
	row.productID = s.ID
	if f.mode == types.ModeSale && s.HasSalePrice() {
		f.SetPrice(row, s.SalePrice.Decimal.String())
	}
	f.log.Debug("product selected", zap.Int("row", row.key), zap.String("id", s.ID))

	return nil
}
