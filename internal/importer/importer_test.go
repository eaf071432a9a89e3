package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/inventario/internal/form"
	"github.com/ginjaninja78/inventario/internal/types"
	"github.com/ginjaninja78/inventario/pkg/utils"
)

type fakeBackend struct {
	catalogue []types.Suggestion
	failSend  error
	registers [][]types.PayloadEntry
}

func (b *fakeBackend) Search(_ context.Context, q string) ([]types.Suggestion, error) {
	var out []types.Suggestion
	for _, s := range b.catalogue {
		if strings.Contains(strings.ToLower(s.Name), strings.ToLower(q)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (b *fakeBackend) Register(_ context.Context, _ types.Mode, entries []types.PayloadEntry) error {
	if b.failSend != nil {
		return b.failSend
	}
	b.registers = append(b.registers, entries)
	return nil
}

type answer struct {
	yes    bool
	asked  []string
	alerts []string
}

func (a *answer) Confirm(msg string) bool {
	a.asked = append(a.asked, msg)
	return a.yes
}

func (a *answer) Alert(msg string) { a.alerts = append(a.alerts, msg) }

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func catalogue() []types.Suggestion {
	return []types.Suggestion{
		{ID: "p1", Name: "Tuerca", Stock: decimal.NewFromInt(10),
			SalePrice: decimal.NewNullDecimal(decimal.RequireFromString("2.5"))},
		{ID: "p2", Name: "Tuerca 8mm", Stock: decimal.NewFromInt(3)},
	}
}

func TestRun_Purchase(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "compra.csv", "nombre,cantidad,precio\ntuerca,4,1.5\nArandela,10,0.3\n,2,1\n")
	// The last line has no name and must block the batch.
	backend := &fakeBackend{catalogue: catalogue()}
	files := utils.NewFileManager(filepath.Join(dir, "out"), "")

	res := New(path, types.ModePurchase, backend, &answer{yes: true}, files, Options{}, nil).Run(context.Background())
	if !errors.Is(res.Error, ErrInvalid) || res.Outcome != form.OutcomeInvalid {
		t.Fatalf("result = %+v", res)
	}
	if res.ErrorLog == "" {
		t.Fatal("no error report written")
	}
	report, err := os.ReadFile(res.ErrorLog)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(report), "line 4 ") {
		t.Errorf("report should point at the spreadsheet line:\n%s", report)
	}
	if len(backend.registers) != 0 {
		t.Error("an invalid batch must not be sent")
	}

	path = writeCSV(t, dir, "compra2.csv", "nombre,cantidad,precio\ntuerca,4,1.5\nArandela,10,0.3\n")
	res = New(path, types.ModePurchase, backend, &answer{yes: true}, files, Options{}, nil).Run(context.Background())
	if !res.Success || res.Outcome != form.OutcomeRegistered {
		t.Fatalf("result = %+v", res)
	}
	if res.Stats.Matched != 1 || res.Stats.NewProducts != 1 || res.Stats.Lines != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if !res.Stats.Total.Equal(decimal.RequireFromString("9")) {
		t.Errorf("total = %s", res.Stats.Total)
	}

	sent := backend.registers[0]
	if sent[0].ID != "p1" || sent[0].Name != "Tuerca" {
		t.Errorf("first line = %+v", sent[0])
	}
	if sent[1].ID != "" || sent[1].Name != "Arandela" {
		t.Errorf("second line = %+v", sent[1])
	}
}

func TestRun_SaleUsesSuggestedPrice(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "venta.csv", "codigo,producto,qty\n,Tuerca,2\np2,Tuerca 8mm,1\n")
	backend := &fakeBackend{catalogue: catalogue()}

	// The second line has an id but no price and no suggestion to fill it.
	res := New(path, types.ModeSale, backend, &answer{yes: true}, nil, Options{}, nil).Run(context.Background())
	if !errors.Is(res.Error, ErrInvalid) {
		t.Fatalf("result = %+v", res)
	}

	path = writeCSV(t, dir, "venta2.csv", "codigo,producto,qty\n,Tuerca,2\n")
	res = New(path, types.ModeSale, backend, &answer{yes: true}, nil, Options{}, nil).Run(context.Background())
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if e := backend.registers[0][0]; e.ID != "p1" || !e.Price.Equal(decimal.RequireFromString("2.5")) || !e.Total.Equal(decimal.NewFromInt(5)) {
		t.Errorf("entry = %+v", e)
	}
}

func TestRun_SaleUnresolved(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "venta.csv", "nombre,cantidad,precio\nTornillo,1,3\n")
	backend := &fakeBackend{catalogue: catalogue()}

	res := New(path, types.ModeSale, backend, &answer{yes: true}, utils.NewFileManager(dir, ""), Options{}, nil).Run(context.Background())
	if !errors.Is(res.Error, ErrUnresolved) || res.Stats.Unresolved != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.ErrorLog == "" || len(backend.registers) != 0 {
		t.Error("unresolved sale lines should be reported and not sent")
	}
}

func TestRun_DryRunAndDecline(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "compra.csv", "nombre,cantidad,precio\nTuerca,1,1\n")
	backend := &fakeBackend{catalogue: catalogue()}

	ask := &answer{yes: true}
	res := New(path, types.ModePurchase, backend, ask, nil, Options{DryRun: true}, nil).Run(context.Background())
	if !res.Success || res.Outcome != form.OutcomeCancelled || len(ask.asked) != 0 {
		t.Errorf("dry run = %+v, asked %v", res, ask.asked)
	}

	ask = &answer{yes: false}
	res = New(path, types.ModePurchase, backend, ask, nil, Options{}, nil).Run(context.Background())
	if res.Success || res.Error != nil || len(ask.asked) != 1 {
		t.Errorf("declined = %+v", res)
	}
	if !strings.Contains(ask.asked[0], "total 1.00") {
		t.Errorf("confirmation = %q", ask.asked[0])
	}
	if len(backend.registers) != 0 {
		t.Error("nothing should be sent")
	}
}

func TestRun_FailureKeepsFile(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive")
	path := writeCSV(t, dir, "compra.csv", "nombre,cantidad,precio\nTuerca,1,1\n")
	files := utils.NewFileManager(dir, archive)

	backend := &fakeBackend{catalogue: catalogue(), failSend: errors.New("boom")}
	ask := &answer{yes: true}
	res := New(path, types.ModePurchase, backend, ask, files, Options{}, nil).Run(context.Background())
	if res.Outcome != form.OutcomeFailed || res.Error == nil {
		t.Fatalf("result = %+v", res)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("file should stay in place after a failure")
	}
	if ask.alerts[len(ask.alerts)-1] != form.FailureMessage {
		t.Errorf("alerts = %v", ask.alerts)
	}

	backend.failSend = nil
	res = New(path, types.ModePurchase, backend, ask, files, Options{}, nil).Run(context.Background())
	if !res.Success || res.ArchivedTo != filepath.Join(archive, "compra.csv") {
		t.Fatalf("result = %+v", res)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be archived after registration")
	}
}

func TestRun_ReadErrors(t *testing.T) {
	dir := t.TempDir()
	res := New(filepath.Join(dir, "missing.csv"), types.ModePurchase, &fakeBackend{}, &answer{}, nil, Options{}, nil).Run(context.Background())
	if res.Error == nil {
		t.Error("missing file should fail")
	}

	path := writeCSV(t, dir, "empty.csv", "nombre,cantidad,precio\n")
	res = New(path, types.ModePurchase, &fakeBackend{}, &answer{}, nil, Options{}, nil).Run(context.Background())
	if res.Error == nil || res.Stats.Lines != 0 {
		t.Errorf("empty file = %+v", res)
	}
}
