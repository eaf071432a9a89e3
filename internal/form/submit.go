package form

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/types"
	"github.com/ginjaninja78/inventario/internal/validation"
)

// Outcome is the result of a submission attempt.
type Outcome int

const (
	// OutcomeCancelled means the user declined the confirmation.
	OutcomeCancelled Outcome = iota

	// OutcomeInvalid means at least one row was incomplete; nothing was sent.
	OutcomeInvalid

	// OutcomeFailed means the backend rejected the batch or was unreachable.
	OutcomeFailed

	// OutcomeRegistered means the backend accepted the batch.
	OutcomeRegistered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFailed:
		return "failed"
	case OutcomeRegistered:
		return "registered"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// User-facing messages.
const (
	ConfirmMessage = "Are you sure you want to register this operation?"
	SuccessMessage = "Registered successfully"
	FailureMessage = "Error while registering"
)

// Submitter turns the rows of a form into one registration request.
type Submitter struct {
	form      *Form
	registrar Registrar
	prompter  Prompter
	nav       Navigator
	log       *zap.Logger
}

// NewSubmitter wires a submitter for a form. nav may be nil.
func NewSubmitter(f *Form, registrar Registrar, prompter Prompter, nav Navigator) *Submitter {
	return &Submitter{
		form:      f,
		registrar: registrar,
		prompter:  prompter,
		nav:       nav,
		log:       f.log,
	}
}

// Submit runs the whole flow synchronously: confirm, build, validate, send,
// then report.
func (s *Submitter) Submit(ctx context.Context) (Outcome, error) {
	if !s.prompter.Confirm(ConfirmMessage) {
		s.log.Debug("submission cancelled")
		return OutcomeCancelled, nil
	}

	entries, res := s.Build()
	if !res.IsValid {
		return s.Reject(res), nil
	}

	err := s.Send(ctx, entries)
	return s.Finish(err), err
}

// Build reads every row in display order and validates it. The entries are
// only meaningful when the result is valid.
func (s *Submitter) Build() ([]types.PayloadEntry, *validation.Result) {
	rows := s.form.rows
	lines := make([]validation.Line, len(rows))
	entries := make([]types.PayloadEntry, 0, len(rows))

	for i, row := range rows {
		lines[i] = validation.Line{Name: row.name, Quantity: row.quantity, Price: row.price}

		qty, _ := validation.ParseAmount(row.quantity)
		price, _ := validation.ParseAmount(row.price)
		entries = append(entries, types.PayloadEntry{
			Mode:     s.form.mode,
			ID:       row.productID,
			Name:     row.name,
			Quantity: qty,
			Price:    price,
			Total:    price.Mul(qty).Round(2),
		})
	}

	return entries, validation.ValidateLines(s.form.mode, lines)
}

// Reject tells the user which rows are incomplete. Nothing is sent.
func (s *Submitter) Reject(res *validation.Result) Outcome {
	s.log.Debug("submission blocked", zap.Int("errors", len(res.Errors)))
	s.prompter.Alert(validation.FormatErrors(res.Errors))
	return OutcomeInvalid
}

// Send issues the registration request. It touches no form state, so hosts
// with an event loop may run it on another goroutine.
func (s *Submitter) Send(ctx context.Context, entries []types.PayloadEntry) error {
	s.log.Info("registering operation",
		zap.String("mode", string(s.form.mode)),
		zap.Int("lines", len(entries)),
	)
	if err := s.registrar.Register(ctx, s.form.mode, entries); err != nil {
		return fmt.Errorf("register %s: %w", s.form.mode, err)
	}
	return nil
}

// Finish reports the outcome of Send to the user. On success it navigates to
// the landing view; on failure the rows are left as they are.
func (s *Submitter) Finish(err error) Outcome {
	if err != nil {
		s.log.Error("registration failed", zap.Error(err))
		s.prompter.Alert(FailureMessage)
		return OutcomeFailed
	}

	s.prompter.Alert(SuccessMessage)
	if s.nav != nil {
		s.nav.Home()
	}
	return OutcomeRegistered
}
