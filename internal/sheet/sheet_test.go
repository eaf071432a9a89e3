package sheet

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/inventario/internal/tablesort"
)

func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "items.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadItems_XLSX(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"Cantidad", "NOMBRE", "Precio_Compra", "id"},
		{4, "Tuerca", "1.25", "p1"},
		{nil, nil, nil, nil},
		{"", "Clavo", "", ""},
	})

	got, err := ReadItems(path, Options{})
	if err != nil {
		t.Fatalf("ReadItems: %v", err)
	}
	want := []Item{
		{Line: 2, ID: "p1", Name: "Tuerca", Quantity: "4", Price: "1.25"},
		{Line: 4, Name: "Clavo"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestReadItems_CSV(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		delimiter string
		want      []Item
	}{
		{
			name:    "comma with bom",
			content: "\ufeffname,quantity,price\nTuerca, 2 ,1.5\n\n",
			want:    []Item{{Line: 2, Name: "Tuerca", Quantity: "2", Price: "1.5"}},
		},
		{
			name:      "semicolon",
			content:   "producto;cantidad;precio\nClavo;100;0,05\n",
			delimiter: "semicolon",
			want:      []Item{{Line: 2, Name: "Clavo", Quantity: "100", Price: "0,05"}},
		},
		{
			name:    "short row",
			content: "nombre,cantidad,precio\nArandela\n",
			want:    []Item{{Line: 2, Name: "Arandela"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "items.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := ReadItems(path, Options{Delimiter: tt.delimiter})
			if err != nil {
				t.Fatalf("ReadItems: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadItems_Errors(t *testing.T) {
	dir := t.TempDir()

	noName := filepath.Join(dir, "bad.csv")
	os.WriteFile(noName, []byte("cantidad,precio\n1,2\n"), 0o644)
	if _, err := ReadItems(noName, Options{}); !errors.Is(err, ErrNoNameColumn) {
		t.Errorf("no name column: err = %v", err)
	}

	empty := filepath.Join(dir, "empty.csv")
	os.WriteFile(empty, nil, 0o644)
	if _, err := ReadItems(empty, Options{}); err == nil {
		t.Error("empty file: expected error")
	}

	if _, err := ReadItems(filepath.Join(dir, "items.json"), Options{}); err == nil {
		t.Error("unsupported extension: expected error")
	}
}

func TestWriteGrid(t *testing.T) {
	g := &tablesort.Grid{
		Header: []string{"nombre", "stock"},
		Rows:   [][]string{{"Tuerca", "12"}, {"Clavo", "3"}},
	}
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteGrid(path, "productos", g); err != nil {
		t.Fatalf("WriteGrid: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if name := f.GetSheetName(0); name != "productos" {
		t.Errorf("sheet = %q", name)
	}
	rows, err := f.GetRows("productos")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"nombre", "stock"}, {"Tuerca", "12"}, {"Clavo", "3"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v", rows)
	}

	kind, _ := f.GetCellType("productos", "B2")
	if kind == excelize.CellTypeSharedString || kind == excelize.CellTypeInlineString {
		t.Errorf("numeric cell written as text (type %v)", kind)
	}
}
