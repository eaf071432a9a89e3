// =============================================================================
// Inventario - Spreadsheet Importer
// =============================================================================
//
// Registers a purchase or a sale from a spreadsheet. Each file becomes one
// form and one registration request, exactly as if the lines had been typed
// into the interactive form.
//
// IMPORT PIPELINE:
//   1. Read the line items from the spreadsheet
//   2. Add one form row per item
//   3. Resolve product names through the autocomplete search
//   4. Fill prices and quantities (totals follow automatically)
//   5. Validate every row; write an error report when any is incomplete
//   6. Ask for confirmation (skipped with --yes, stopped by --dry-run)
//   7. Send the batch
//   8. Archive the file
//
// NAME RESOLUTION:
//   A line that already carries an id is taken as is. Otherwise the name is
//   searched and the first suggestion whose name matches exactly (ignoring
//   case) is selected. With no exact match a purchase line becomes a new
//   product, while a sale line is reported as unresolved.
//
// CONCURRENCY:
//   Each file gets its own Importer and form, so several files can be
//   imported in parallel.
//
// =============================================================================

package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/form"
	"github.com/ginjaninja78/inventario/internal/sheet"
	"github.com/ginjaninja78/inventario/internal/types"
	"github.com/ginjaninja78/inventario/internal/validation"
	"github.com/ginjaninja78/inventario/pkg/utils"
)

// ErrUnresolved is returned when sale lines name products that do not exist.
var ErrUnresolved = errors.New("unresolved products")

// ErrInvalid is returned when at least one line is incomplete.
var ErrInvalid = errors.New("incomplete lines")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of importing one file.
type Result struct {
	// FilePath is the imported spreadsheet.
	FilePath string

	// Outcome is the submission outcome. Dry runs report OutcomeCancelled.
	Outcome form.Outcome

	// Success is true once the backend accepted the batch, or when a dry run
	// found nothing wrong.
	Success bool

	// Error is set when the import failed.
	Error error

	// ErrorLog is the path of the written error report, if any.
	ErrorLog string

	// ArchivedTo is where the file was moved after registration, if anywhere.
	ArchivedTo string

	Stats Stats
}

// Stats counts what happened to the lines of a file.
type Stats struct {
	Lines       int
	Matched     int
	NewProducts int
	Unresolved  int
	Total       decimal.Decimal
	Elapsed     time.Duration
}

// =============================================================================
// IMPORTER STRUCTURE
// =============================================================================

// Backend is the inventory service the importer registers against.
type Backend interface {
	form.Searcher
	form.Registrar
}

// Options controls one import.
type Options struct {
	// DryRun validates and reports without registering.
	DryRun bool

	// MinQuery overrides the autocomplete threshold when positive.
	MinQuery int

	// Delimiter is the CSV delimiter; see sheet.Options.
	Delimiter string
}

// Importer registers one spreadsheet.
type Importer struct {
	path     string
	mode     types.Mode
	backend  Backend
	prompter form.Prompter
	files    *utils.FileManager
	opts     Options
	log      *zap.Logger
}

// New creates an importer for one file. files may be nil to disable error
// reports and archival.
func New(path string, mode types.Mode, backend Backend, prompter form.Prompter,
	files *utils.FileManager, opts Options, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		path:     path,
		mode:     mode,
		backend:  backend,
		prompter: prompter,
		files:    files,
		opts:     opts,
		log:      log.With(zap.String("file", path)),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the import pipeline.
func (im *Importer) Run(ctx context.Context) Result {
	start := time.Now()
	result := Result{FilePath: im.path, Outcome: form.OutcomeCancelled}
	defer func() { result.Stats.Elapsed = time.Since(start) }()

	// =========================================================================
	// STEP 1: READ LINE ITEMS
	// =========================================================================

	items, err := sheet.ReadItems(im.path, sheet.Options{Delimiter: im.opts.Delimiter})
	if err != nil {
		result.Error = fmt.Errorf("failed to read items: %w", err)
		return result
	}
	result.Stats.Lines = len(items)
	if len(items) == 0 {
		result.Error = fmt.Errorf("no line items in %s", im.path)
		return result
	}
	im.log.Debug("items read", zap.Int("lines", len(items)))

	// =========================================================================
	// STEP 2-4: BUILD THE FORM
	// =========================================================================

	formOpts := []form.Option{form.WithSearcher(im.backend), form.WithLogger(im.log)}
	if im.opts.MinQuery > 0 {
		formOpts = append(formOpts, form.WithMinQuery(im.opts.MinQuery))
	}
	f := form.New(im.mode, formOpts...)

	var problems []utils.ErrorLogEntry
	for _, item := range items {
		row := f.AddRow()
		resolved, err := im.resolve(ctx, f, row, item)
		if err != nil {
			result.Error = fmt.Errorf("line %d: %w", item.Line, err)
			return result
		}
		switch resolved {
		case resolvedMatch:
			result.Stats.Matched++
		case resolvedNew:
			result.Stats.NewProducts++
		case resolvedNone:
			result.Stats.Unresolved++
			problems = append(problems, utils.ErrorLogEntry{
				Line: item.Line, Field: "name", Value: item.Name,
				Message: "no product with this name",
			})
		}

		if item.Price != "" {
			f.SetPrice(row, item.Price)
		}
		f.SetQuantity(row, item.Quantity)
	}

	// =========================================================================
	// STEP 5: VALIDATE
	// =========================================================================

	sub := form.NewSubmitter(f, im.backend, im.prompter, nil)
	entries, res := sub.Build()
	for _, e := range entries {
		result.Stats.Total = result.Stats.Total.Add(e.Total)
	}

	if !res.IsValid || len(problems) > 0 {
		problems = append(problems, im.validationProblems(items, res)...)
		result.ErrorLog = im.writeErrorLog(problems)
		if !res.IsValid {
			result.Outcome = sub.Reject(res)
			result.Error = fmt.Errorf("%w: %d problem(s)", ErrInvalid, len(res.Errors))
		} else {
			result.Error = fmt.Errorf("%w: %d sale line(s)", ErrUnresolved, result.Stats.Unresolved)
		}
		return result
	}

	if im.opts.DryRun {
		im.log.Info("dry run complete", zap.Int("lines", len(entries)))
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 6-7: CONFIRM AND SEND
	// =========================================================================

	if !im.prompter.Confirm(fmt.Sprintf("%s (%d lines, total %s)", form.ConfirmMessage, len(entries), result.Stats.Total.StringFixed(2))) {
		im.log.Info("import cancelled")
		return result
	}

	err = sub.Send(ctx, entries)
	result.Outcome = sub.Finish(err)
	if err != nil {
		result.Error = err
		return result
	}
	result.Success = true

	// =========================================================================
	// STEP 8: ARCHIVE
	// =========================================================================

	if im.files != nil {
		archived, err := im.files.ArchiveFile(im.path)
		if err != nil {
			im.log.Warn("failed to archive file", zap.Error(err))
		}
		result.ArchivedTo = archived
	}

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

type resolution int

const (
	resolvedID resolution = iota
	resolvedMatch
	resolvedNew
	resolvedNone
)

// resolve fills the name and id of a row from a spreadsheet item.
func (im *Importer) resolve(ctx context.Context, f *form.Form, row *form.Row, item sheet.Item) (resolution, error) {
	if item.ID != "" {
		f.OnNameInput(row, item.Name)
		f.SetID(row, item.ID)
		return resolvedID, nil
	}

	if err := f.Lookup(ctx, row, item.Name); err != nil {
		if !errors.Is(err, form.ErrLookupFailed) {
			return resolvedNone, err
		}
		im.log.Warn("lookup failed, treating as unmatched", zap.String("name", item.Name), zap.Error(err))
	}

	entries := row.Suggestions()
	for i, e := range entries {
		if !e.CreateNew && strings.EqualFold(e.Suggestion.Name, item.Name) {
			return resolvedMatch, f.Select(row, i)
		}
	}

	if im.mode == types.ModePurchase {
		for i, e := range entries {
			if e.CreateNew {
				return resolvedNew, f.Select(row, i)
			}
		}
		// Below the search threshold there is no list at all; the row
		// already has the typed name and no id.
		return resolvedNew, nil
	}
	return resolvedNone, nil
}

func (im *Importer) validationProblems(items []sheet.Item, res *validation.Result) []utils.ErrorLogEntry {
	out := make([]utils.ErrorLogEntry, 0, len(res.Errors))
	for _, ve := range res.Errors {
		line := ve.Line
		if line >= 1 && line <= len(items) {
			line = items[line-1].Line
		}
		out = append(out, utils.ErrorLogEntry{Line: line, Field: ve.Field, Value: ve.Value, Message: ve.Message})
	}
	return out
}

func (im *Importer) writeErrorLog(problems []utils.ErrorLogEntry) string {
	for _, p := range problems {
		im.log.Warn("import problem", zap.Int("line", p.Line), zap.String("field", p.Field), zap.String("message", p.Message))
	}
	if im.files == nil {
		return ""
	}
	path, err := im.files.WriteErrorLog(im.path, problems)
	if err != nil {
		im.log.Error("failed to write error report", zap.Error(err))
		return ""
	}
	return path
}
