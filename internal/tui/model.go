// =============================================================================
// Inventario - Terminal Entry Form
// =============================================================================
//
// Interactive purchase/sale form built on bubbletea. The model owns a
// form.Form and routes keystrokes to it. Product lookups and the final
// registration run as tea.Cmds off the event loop; their results come back
// as messages and are applied on the loop, so the form itself needs no
// locking.
//
// KEYS:
//   tab / shift+tab   next / previous field
//   up / down         move between rows, or through the suggestion list
//   enter             pick the highlighted suggestion
//   ctrl+n            add a row
//   ctrl+d            remove the focused row
//   ctrl+s            register (asks for confirmation)
//   esc / ctrl+c      leave without registering
//
// =============================================================================

package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/form"
	"github.com/ginjaninja78/inventario/internal/types"
)

// Column indices of the editable fields of a row.
const (
	colName = iota
	colPrice
	colQuantity
	numCols
)

// Backend is what the terminal form needs from the inventory service.
type Backend interface {
	form.Searcher
	form.Registrar
}

// Options configures a Model.
type Options struct {
	// MinQuery overrides the autocomplete threshold when positive.
	MinQuery int
	Log      *zap.Logger
}

// lookupMsg carries a finished product search back to the loop.
type lookupMsg struct{ res form.LookupResult }

// sentMsg carries the registration result back to the loop.
type sentMsg struct{ err error }

type rowView struct {
	row    *form.Row
	inputs [numCols]textinput.Model
}

// Model is the bubbletea model of the entry form.
type Model struct {
	ctx  context.Context
	form *form.Form
	sub  *form.Submitter
	host *host
	log  *zap.Logger

	rows     []*rowView
	focusRow int
	focusCol int
	pick     int

	confirming bool
	sending    bool
	outcome    form.Outcome
}

// New creates the model with one empty row.
func New(ctx context.Context, mode types.Mode, backend Backend, opts Options) Model {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	h := &host{}
	formOpts := []form.Option{
		form.WithSearcher(backend),
		form.WithNotifier(h),
		form.WithLogger(log),
	}
	if opts.MinQuery > 0 {
		formOpts = append(formOpts, form.WithMinQuery(opts.MinQuery))
	}
	f := form.New(mode, formOpts...)

	m := Model{
		ctx:  ctx,
		form: f,
		sub:  form.NewSubmitter(f, backend, h, h),
		host: h,
		log:  log,
	}
	m.addRow()
	return m
}

// Form exposes the underlying form.
func (m Model) Form() *form.Form { return m.form }

// Outcome is the result of the last submission attempt. A model left
// without registering reports OutcomeCancelled.
func (m Model) Outcome() form.Outcome { return m.outcome }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case lookupMsg:
		err := m.form.ApplyLookup(msg.res)
		switch {
		case err == nil:
			m.pick = 0
		case errors.Is(err, form.ErrStaleLookup), errors.Is(err, form.ErrRowRemoved):
			m.log.Debug("lookup result discarded", zap.Error(err))
		default:
			// The notifier already told the user.
		}
		return m, nil

	case sentMsg:
		m.sending = false
		m.outcome = m.sub.Finish(msg.err)
		if m.host.home {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}
		if m.sending {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.updateKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirming = false
		return m, m.submit()
	case "n", "N", "esc":
		m.confirming = false
		m.host.Notify("Registration cancelled")
		m.outcome = form.OutcomeCancelled
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "ctrl+s":
		m.confirming = true
		m.host.clear()
		return m, nil

	case "ctrl+n":
		m.addRow()
		return m, m.focus(len(m.rows)-1, colName)

	case "ctrl+d":
		m.removeRow()
		return m, nil

	case "tab":
		return m, m.step(1)

	case "shift+tab":
		return m, m.step(-1)

	case "up", "down":
		delta := 1
		if msg.String() == "up" {
			delta = -1
		}
		if n := len(m.suggestions()); n > 0 {
			m.pick = (m.pick + delta + n) % n
			return m, nil
		}
		if len(m.rows) > 0 {
			next := min(max(m.focusRow+delta, 0), len(m.rows)-1)
			return m, m.focus(next, m.focusCol)
		}
		return m, nil

	case "enter":
		if len(m.suggestions()) > 0 {
			m.selectPick()
			return m, nil
		}
		return m, m.step(1)
	}

	return m.updateFocused(msg)
}

// updateFocused forwards a message to the focused input and reacts to a
// changed value.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	rv := m.rows[m.focusRow]
	in := &rv.inputs[m.focusCol]

	before := in.Value()
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if in.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.fieldChanged(m.focusRow, m.focusCol))
}

// fieldChanged pushes an edited input value into the form. It returns the
// lookup to run when a name edit needs one.
func (m *Model) fieldChanged(rowIdx, col int) tea.Cmd {
	rv := m.rows[rowIdx]
	value := rv.inputs[col].Value()

	switch col {
	case colName:
		if l := m.form.OnNameInput(rv.row, value); l != nil {
			return m.lookup(l)
		}
	case colPrice:
		m.form.SetPrice(rv.row, value)
	case colQuantity:
		m.form.SetQuantity(rv.row, value)
	}
	return nil
}

func (m Model) lookup(l *form.Lookup) tea.Cmd {
	f, ctx := m.form, m.ctx
	return func() tea.Msg {
		return lookupMsg{f.RunLookup(ctx, l)}
	}
}

// submit validates on the loop and sends off it.
func (m *Model) submit() tea.Cmd {
	entries, res := m.sub.Build()
	if !res.IsValid {
		m.outcome = m.sub.Reject(res)
		return nil
	}

	m.sending = true
	m.host.Notify("Registering...")
	sub, ctx := m.sub, m.ctx
	return func() tea.Msg {
		return sentMsg{sub.Send(ctx, entries)}
	}
}

func (m *Model) selectPick() {
	rv := m.rows[m.focusRow]
	if err := m.form.Select(rv.row, m.pick); err != nil {
		m.log.Debug("select failed", zap.Error(err))
		return
	}
	rv.inputs[colName].SetValue(rv.row.Name())
	rv.inputs[colName].CursorEnd()
	rv.inputs[colPrice].SetValue(rv.row.Price())
	m.pick = 0
}

// suggestions returns the list shown under the focused name field.
func (m Model) suggestions() []form.Entry {
	if len(m.rows) == 0 || m.focusCol != colName {
		return nil
	}
	return m.rows[m.focusRow].row.Suggestions()
}

func (m *Model) addRow() {
	rv := &rowView{row: m.form.AddRow()}
	for c := range rv.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 64
		switch c {
		case colName:
			ti.Placeholder = m.form.NamePlaceholder()
			ti.Width = 30
		case colPrice:
			ti.Placeholder = m.form.PriceLabel()
			ti.Width = 14
		case colQuantity:
			ti.Placeholder = "Quantity"
			ti.Width = 10
		}
		rv.inputs[c] = ti
	}
	m.rows = append(m.rows, rv)
	if len(m.rows) == 1 {
		m.focus(0, colName)
	}
}

func (m *Model) removeRow() {
	if len(m.rows) == 0 {
		return
	}
	m.form.RemoveRow(m.rows[m.focusRow].row)
	m.rows = append(m.rows[:m.focusRow], m.rows[m.focusRow+1:]...)
	if len(m.rows) == 0 {
		m.focusRow = 0
		return
	}
	m.focus(min(m.focusRow, len(m.rows)-1), m.focusCol)
}

// step moves focus forward or backward through the fields, row by row.
func (m *Model) step(delta int) tea.Cmd {
	if len(m.rows) == 0 {
		return nil
	}
	pos := m.focusRow*numCols + m.focusCol + delta
	total := len(m.rows) * numCols
	pos = (pos%total + total) % total
	return m.focus(pos/numCols, pos%numCols)
}

func (m *Model) focus(row, col int) tea.Cmd {
	if m.focusRow < len(m.rows) {
		m.rows[m.focusRow].inputs[m.focusCol].Blur()
	}
	m.focusRow, m.focusCol = row, col
	m.pick = 0
	return m.rows[row].inputs[col].Focus()
}

// Run shows the form until the user registers or leaves, and returns the
// outcome of the last submission attempt.
func Run(ctx context.Context, mode types.Mode, backend Backend, opts Options) (form.Outcome, error) {
	final, err := tea.NewProgram(New(ctx, mode, backend, opts), tea.WithContext(ctx)).Run()
	if err != nil {
		return form.OutcomeCancelled, err
	}
	return final.(Model).Outcome(), nil
}
