// =============================================================================
// Inventario - Transaction Form
// =============================================================================
//
// This package holds the line-item editor behind the purchase and sale forms.
// It is host-agnostic: a terminal UI, a batch importer or a test feeds it
// events and implements the small collaborator interfaces below.
//
// EVENT MODEL:
//   A Form is not safe for concurrent use. Drive it from a single goroutine
//   (the bubbletea event loop, or a command's main goroutine). The only work
//   meant to run elsewhere is Form.RunLookup and Submitter.Send, which read
//   immutable inputs and return values that are applied back on the event
//   goroutine.
//
// COMPONENTS:
//   form.go         : Form and Row (row construction and removal)
//   total.go        : live line totals
//   autocomplete.go : product lookup and suggestion selection
//   submit.go       : validation and registration
//
// =============================================================================

package form

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/types"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Searcher looks up products by a fragment of their name.
type Searcher interface {
	Search(ctx context.Context, query string) ([]types.Suggestion, error)
}

// Registrar registers a batch of line items as one purchase or sale.
type Registrar interface {
	Register(ctx context.Context, mode types.Mode, entries []types.PayloadEntry) error
}

// Notifier shows a non-blocking notice.
type Notifier interface {
	Notify(msg string)
}

// Prompter asks the user to confirm and shows blocking messages.
type Prompter interface {
	Confirm(msg string) bool
	Alert(msg string)
}

// Navigator leaves the form for the landing view.
type Navigator interface {
	Home()
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrRowRemoved is returned when an operation targets a detached row.
	ErrRowRemoved = errors.New("row was removed")

	// ErrStaleLookup is returned when a lookup result arrives after a newer
	// name input on the same row.
	ErrStaleLookup = errors.New("stale lookup result")

	// ErrLookupFailed wraps a failed product search.
	ErrLookupFailed = errors.New("product lookup failed")

	// ErrNoSuchSuggestion is returned for an out-of-range selection.
	ErrNoSuchSuggestion = errors.New("no such suggestion")
)

// =============================================================================
// FORM
// =============================================================================

// Form is the ordered container of line-item rows for one transaction.
type Form struct {
	mode     types.Mode
	minQuery int
	rows     []*Row
	nextKey  int

	searcher Searcher
	notifier Notifier
	log      *zap.Logger
}

// Option configures a Form.
type Option func(*Form)

// WithSearcher sets the product-search collaborator.
func WithSearcher(s Searcher) Option {
	return func(f *Form) { f.searcher = s }
}

// WithNotifier sets where non-blocking notices go.
func WithNotifier(n Notifier) Option {
	return func(f *Form) { f.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(f *Form) { f.log = log }
}

// WithMinQuery overrides the minimum name length that triggers a lookup.
func WithMinQuery(n int) Option {
	return func(f *Form) { f.minQuery = n }
}

// New creates an empty form for the given mode.
func New(mode types.Mode, opts ...Option) *Form {
	f := &Form{
		mode:     mode,
		minQuery: DefaultMinQuery(mode),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultMinQuery is 5 characters for purchases and 3 for sales.
func DefaultMinQuery(mode types.Mode) int {
	if mode == types.ModeSale {
		return 3
	}
	return 5
}

// Mode returns the transaction mode.
func (f *Form) Mode() types.Mode { return f.mode }

// MinQuery returns the minimum name length that triggers a lookup.
func (f *Form) MinQuery() int { return f.minQuery }

// NamePlaceholder is the hint shown in an empty name field.
func (f *Form) NamePlaceholder() string {
	if f.mode == types.ModeSale {
		return "Search product..."
	}
	return "Product name (min 5 letters)"
}

// PriceLabel is the label of the price field.
func (f *Form) PriceLabel() string {
	if f.mode == types.ModeSale {
		return "Sale price"
	}
	return "Purchase price"
}

// =============================================================================
// ROWS
// =============================================================================

// Row is one line item. Its fields are plain text, the way the user typed
// them; numeric interpretation happens in the total calculator and the
// validator.
type Row struct {
	key       int
	productID string
	name      string
	price     string
	quantity  string
	total     string

	suggestions []Entry
	seq         uint64
	removed     bool
}

// Key identifies the row within its form. Keys are never reused.
func (r *Row) Key() int { return r.key }

// ProductID is the hidden identifier. Empty means "new product".
func (r *Row) ProductID() string { return r.productID }

// Name is the product name field.
func (r *Row) Name() string { return r.name }

// Price is the price field for the form's mode.
func (r *Row) Price() string { return r.price }

// Quantity is the quantity field.
func (r *Row) Quantity() string { return r.quantity }

// Total is the read-only line total.
func (r *Row) Total() string { return r.total }

// Suggestions returns the entries currently offered for the name field.
func (r *Row) Suggestions() []Entry {
	out := make([]Entry, len(r.suggestions))
	copy(out, r.suggestions)
	return out
}

// Removed reports whether the row has been detached from its form.
func (r *Row) Removed() bool { return r.removed }

// AddRow appends an empty row and returns its handle.
func (f *Form) AddRow() *Row {
	f.nextKey++
	row := &Row{key: f.nextKey}
	f.rows = append(f.rows, row)
	f.log.Debug("row added", zap.Int("row", row.key), zap.Int("rows", len(f.rows)))
	return row
}

// RemoveRow detaches a row immediately. Removing a detached row does nothing.
func (f *Form) RemoveRow(row *Row) {
	for i, r := range f.rows {
		if r == row {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			row.removed = true
			row.suggestions = nil
			f.log.Debug("row removed", zap.Int("row", row.key), zap.Int("rows", len(f.rows)))
			return
		}
	}
}

// Rows returns the current rows in display order.
func (f *Form) Rows() []*Row {
	out := make([]*Row, len(f.rows))
	copy(out, f.rows)
	return out
}

// Len returns the number of rows.
func (f *Form) Len() int { return len(f.rows) }

// SetID writes the hidden identifier directly. Hosts use it when a row is
// loaded from a file that already carries product ids.
func (f *Form) SetID(row *Row, id string) {
	row.productID = id
}

func (f *Form) notify(msg string) {
	if f.notifier != nil {
		f.notifier.Notify(msg)
	}
}
