package form

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ginjaninja78/inventario/internal/types"
)

func TestOnNameInput_Threshold(t *testing.T) {
	tests := []struct {
		mode      types.Mode
		text      string
		wantQuery bool
	}{
		{types.ModePurchase, "torn", false},
		{types.ModePurchase, "torni", true},
		{types.ModeSale, "to", false},
		{types.ModeSale, "tor", true},
		{types.ModeSale, "ñañ", true},
		{types.ModePurchase, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.text, func(t *testing.T) {
			s := &fakeSearcher{}
			f := New(tt.mode, WithSearcher(s))
			row := f.AddRow()

			if err := f.Lookup(context.Background(), row, tt.text); err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			if got := len(s.queries) == 1; got != tt.wantQuery {
				t.Errorf("query issued = %v, want %v (queries %v)", got, tt.wantQuery, s.queries)
			}
			if row.Name() != tt.text {
				t.Errorf("name = %q", row.Name())
			}
		})
	}
}

func TestOnNameInput_OneRequestPerKeystroke(t *testing.T) {
	s := &fakeSearcher{}
	f := New(types.ModeSale, WithSearcher(s))
	row := f.AddRow()

	for _, text := range []string{"t", "to", "tor", "torn", "torni"} {
		if err := f.Lookup(context.Background(), row, text); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"tor", "torn", "torni"}
	if strings.Join(s.queries, ",") != strings.Join(want, ",") {
		t.Errorf("queries = %v, want %v", s.queries, want)
	}
}

func TestApplyLookup_RendersInOrderWithCreateNew(t *testing.T) {
	s := &fakeSearcher{results: []types.Suggestion{
		suggestion("b2", "Tornillo largo", "4", ""),
		suggestion("a1", "Tornillo corto", "12", ""),
	}}
	f := New(types.ModePurchase, WithSearcher(s))
	row := f.AddRow()

	if err := f.Lookup(context.Background(), row, "Tornillo"); err != nil {
		t.Fatal(err)
	}
	got := row.Suggestions()
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0].Suggestion.ID != "b2" || got[1].Suggestion.ID != "a1" {
		t.Errorf("order not preserved: %+v", got)
	}
	if got[0].Label != "Tornillo largo (Stock: 4)" {
		t.Errorf("label = %q", got[0].Label)
	}
	if !got[2].CreateNew || !strings.Contains(got[2].Label, "Tornillo") {
		t.Errorf("last entry = %+v, want create-new", got[2])
	}
}

func TestApplyLookup_SaleHasNoCreateNew(t *testing.T) {
	s := &fakeSearcher{results: []types.Suggestion{suggestion("a1", "Tuerca", "3", "1.5")}}
	f := New(types.ModeSale, WithSearcher(s))
	row := f.AddRow()

	if err := f.Lookup(context.Background(), row, "Tue"); err != nil {
		t.Fatal(err)
	}
	for _, e := range row.Suggestions() {
		if e.CreateNew {
			t.Fatal("sale mode offered create-new")
		}
	}
	if len(row.Suggestions()) != 1 {
		t.Errorf("entries = %d", len(row.Suggestions()))
	}
}

func TestApplyLookup_DiscardsStaleResults(t *testing.T) {
	s := &fakeSearcher{results: []types.Suggestion{suggestion("a1", "Tuerca", "3", "")}}
	f := New(types.ModeSale, WithSearcher(s))
	row := f.AddRow()
	ctx := context.Background()

	first := f.OnNameInput(row, "tue")
	second := f.OnNameInput(row, "tuer")
	if first == nil || second == nil {
		t.Fatal("expected two lookups")
	}

	// The newer response lands first, then the older one.
	if err := f.ApplyLookup(f.RunLookup(ctx, second)); err != nil {
		t.Fatalf("apply newer: %v", err)
	}
	if err := f.ApplyLookup(f.RunLookup(ctx, first)); !errors.Is(err, ErrStaleLookup) {
		t.Fatalf("apply older = %v, want ErrStaleLookup", err)
	}
	if len(row.Suggestions()) != 1 {
		t.Errorf("stale result replaced the list")
	}
}

func TestApplyLookup_ShortInputInvalidatesPending(t *testing.T) {
	s := &fakeSearcher{results: []types.Suggestion{suggestion("a1", "Tuerca", "3", "")}}
	f := New(types.ModeSale, WithSearcher(s))
	row := f.AddRow()

	pending := f.OnNameInput(row, "tue")
	if f.OnNameInput(row, "tu") != nil {
		t.Fatal("short input issued a lookup")
	}
	err := f.ApplyLookup(f.RunLookup(context.Background(), pending))
	if !errors.Is(err, ErrStaleLookup) {
		t.Fatalf("err = %v, want ErrStaleLookup", err)
	}
	if len(row.Suggestions()) != 0 {
		t.Error("suggestions shown for text that no longer qualifies")
	}
}

func TestApplyLookup_RemovedRow(t *testing.T) {
	s := &fakeSearcher{}
	f := New(types.ModeSale, WithSearcher(s))
	row := f.AddRow()

	l := f.OnNameInput(row, "tuerca")
	f.RemoveRow(row)
	if err := f.ApplyLookup(f.RunLookup(context.Background(), l)); !errors.Is(err, ErrRowRemoved) {
		t.Fatalf("err = %v, want ErrRowRemoved", err)
	}
}

func TestApplyLookup_FailureIsRecoverable(t *testing.T) {
	boom := errors.New("connection refused")
	s := &fakeSearcher{err: boom}
	n := &fakeNotifier{}
	f := New(types.ModePurchase, WithSearcher(s), WithNotifier(n))
	row := f.AddRow()

	err := f.Lookup(context.Background(), row, "Tornillo")
	if !errors.Is(err, ErrLookupFailed) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrLookupFailed wrapping cause", err)
	}
	if len(row.Suggestions()) != 0 {
		t.Error("failed lookup rendered suggestions")
	}
	if len(n.notices) != 1 {
		t.Errorf("notices = %v", n.notices)
	}

	// The row keeps working after the failure.
	s.err = nil
	if err := f.Lookup(context.Background(), row, "Tornillos"); err != nil {
		t.Fatalf("retry by typing: %v", err)
	}
	if len(row.Suggestions()) != 1 {
		t.Errorf("entries after recovery = %d", len(row.Suggestions()))
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		mode      types.Mode
		price     string
		pick      func([]Entry) int
		wantName  string
		wantID    string
		wantPrice string
		wantTotal string
	}{
		{
			name:      "sale with suggested price overwrites price",
			mode:      types.ModeSale,
			price:     "9",
			pick:      func([]Entry) int { return 0 },
			wantName:  "Tuerca 8mm",
			wantID:    "p1",
			wantPrice: "1.5",
			wantTotal: "3.00",
		},
		{
			name:      "sale without suggested price keeps price",
			mode:      types.ModeSale,
			price:     "9",
			pick:      func([]Entry) int { return 1 },
			wantName:  "Tuerca 10mm",
			wantID:    "p2",
			wantPrice: "9",
			wantTotal: "18.00",
		},
		{
			name:      "purchase never alters price",
			mode:      types.ModePurchase,
			price:     "9",
			pick:      func([]Entry) int { return 0 },
			wantName:  "Tuerca 8mm",
			wantID:    "p1",
			wantPrice: "9",
			wantTotal: "18.00",
		},
		{
			name:      "create new keeps typed name and clears id",
			mode:      types.ModePurchase,
			price:     "9",
			pick:      func(e []Entry) int { return len(e) - 1 },
			wantName:  "Tuerca",
			wantID:    "",
			wantPrice: "9",
			wantTotal: "18.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearcher{results: []types.Suggestion{
				suggestion("p1", "Tuerca 8mm", "10", "1.5"),
				suggestion("p2", "Tuerca 10mm", "2", "0"),
			}}
			f := New(tt.mode, WithSearcher(s))
			row := f.AddRow()
			f.SetID(row, "stale-id")
			f.SetPrice(row, tt.price)
			f.SetQuantity(row, "2")

			if err := f.Lookup(context.Background(), row, "Tuerca"); err != nil {
				t.Fatal(err)
			}
			if err := f.Select(row, tt.pick(row.Suggestions())); err != nil {
				t.Fatalf("Select: %v", err)
			}

			if row.Name() != tt.wantName || row.ProductID() != tt.wantID {
				t.Errorf("name/id = %q/%q, want %q/%q", row.Name(), row.ProductID(), tt.wantName, tt.wantID)
			}
			if row.Price() != tt.wantPrice {
				t.Errorf("price = %q, want %q", row.Price(), tt.wantPrice)
			}
			if row.Total() != tt.wantTotal {
				t.Errorf("total = %q, want %q", row.Total(), tt.wantTotal)
			}
			if len(row.Suggestions()) != 0 {
				t.Error("list not cleared after selection")
			}
		})
	}
}

func TestSelect_OutOfRange(t *testing.T) {
	f := New(types.ModeSale)
	row := f.AddRow()
	if err := f.Select(row, 0); !errors.Is(err, ErrNoSuchSuggestion) {
		t.Fatalf("err = %v", err)
	}
}
