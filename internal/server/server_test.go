package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/inventario/internal/client"
	"github.com/ginjaninja78/inventario/internal/form"
	"github.com/ginjaninja78/inventario/internal/store"
	"github.com/ginjaninja78/inventario/internal/types"
)

func setupTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:", nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	err = st.UpsertProduct(context.Background(), types.Product{
		ID:            "p1",
		Name:          "Tuerca hexagonal",
		PurchasePrice: decimal.RequireFromString("1"),
		SalePrice:     decimal.RequireFromString("2.5"),
		Stock:         decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	srv := httptest.NewServer(New(st, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, st
}

func do(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	req, _ := http.NewRequest(method, url, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return resp.StatusCode, sb.String()
}

func TestRoutes(t *testing.T) {
	srv, _ := setupTestServer(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		status   int
		contains string
	}{
		{"search", "GET", "/api/buscar-producto?q=TUERCA", "", 200, `"nombre":"Tuerca hexagonal"`},
		{"search no match", "GET", "/api/buscar-producto?q=zzz", "", 200, `[]`},
		{"search blank q", "GET", "/api/buscar-producto?q=%20%20%20%20%20", "", 200, `[]`},
		{"search missing q", "GET", "/api/buscar-producto", "", 400, "required"},
		{"products", "GET", "/api/productos", "", 200, `"id":"p1"`},
		{"history compras", "GET", "/api/historial/compras", "", 200, `[]`},
		{"history unknown", "GET", "/api/historial/otros", "", 404, "unknown history"},
		{"top ventas", "GET", "/api/top-ventas?dias=7", "", 200, `[]`},
		{"top ventas bad dias", "GET", "/api/top-ventas?dias=siete", "", 400, "dias"},
		{"register malformed", "POST", "/api/registrar-compra", `{"id":`, 400, "invalid request body"},
		{"register not a list", "POST", "/api/registrar-venta", `null`, 400, "list"},
		{"register sale", "POST", "/api/registrar-venta",
			`[{"id":"p1","nombre":"Tuerca hexagonal","cantidad":2,"precio_venta":2.5,"total":5}]`, 200, `"status":"ok"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, tt.method, srv.URL+tt.path, tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d (body %s)", status, tt.status, body)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body %q does not contain %q", body, tt.contains)
			}
		})
	}
}

func TestRegisterSale_UpdatesStock(t *testing.T) {
	srv, st := setupTestServer(t)

	status, _ := do(t, "POST", srv.URL+"/api/registrar-venta",
		`[{"id":"p1","nombre":"Tuerca hexagonal","cantidad":"3","precio_venta":"2.5","total":"7.5"}]`)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}

	p, err := st.GetProduct(context.Background(), "p1")
	if err != nil || !p.Stock.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("stock = %v, %v", p, err)
	}

	_, body := do(t, "GET", srv.URL+"/api/historial/ventas", "")
	var hist []types.HistoryRecord
	if err := json.Unmarshal([]byte(body), &hist); err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || !hist[0].Total.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("history = %+v", hist)
	}
}

type failingStore struct{ Store }

func (failingStore) SearchProducts(context.Context, string) ([]types.Suggestion, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) RegisterPurchases(context.Context, []types.LineItemRequest) error {
	return errors.New("disk on fire")
}

func TestStoreFailureIs500(t *testing.T) {
	srv := httptest.NewServer(New(failingStore{}, nil).Handler())
	defer srv.Close()

	if status, body := do(t, "GET", srv.URL+"/api/buscar-producto?q=abc", ""); status != 500 || strings.Contains(body, "disk") {
		t.Errorf("search: %d %s", status, body)
	}
	if status, _ := do(t, "POST", srv.URL+"/api/registrar-compra", `[]`); status != 500 {
		t.Errorf("register: %d", status)
	}
}

// A purchase form driven through the HTTP client end to end: the new
// product it registers becomes searchable, then a sale form picks it up
// with the sale price left unset.
func TestFormRoundTrip(t *testing.T) {
	srv, st := setupTestServer(t)
	ctx := context.Background()
	c := client.New(srv.URL, 0, nil)

	purchase := form.New(types.ModePurchase, form.WithSearcher(c))
	row := purchase.AddRow()
	if err := purchase.Lookup(ctx, row, "Arandela"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	entries := row.Suggestions()
	if len(entries) != 1 || !entries[0].CreateNew {
		t.Fatalf("suggestions = %+v", entries)
	}
	if err := purchase.Select(row, 0); err != nil {
		t.Fatal(err)
	}
	purchase.SetPrice(row, "0.30")
	purchase.SetQuantity(row, "40")

	prompter := &autoPrompter{confirm: true}
	outcome, err := form.NewSubmitter(purchase, c, prompter, nil).Submit(ctx)
	if err != nil || outcome != form.OutcomeRegistered {
		t.Fatalf("submit purchase = %v, %v (alerts %v)", outcome, err, prompter.alerts)
	}

	sale := form.New(types.ModeSale, form.WithSearcher(c))
	srow := sale.AddRow()
	if err := sale.Lookup(ctx, srow, "aran"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got := srow.Suggestions(); len(got) != 1 || got[0].CreateNew || got[0].Suggestion.Name != "Arandela" {
		t.Fatalf("sale suggestions = %+v", got)
	}
	if err := sale.Select(srow, 0); err != nil {
		t.Fatal(err)
	}
	if srow.ProductID() == "" || srow.Price() != "" {
		t.Errorf("row after select: id %q price %q", srow.ProductID(), srow.Price())
	}

	p, _ := st.GetProduct(ctx, srow.ProductID())
	if p == nil || !p.Stock.Equal(decimal.NewFromInt(40)) {
		t.Errorf("product = %+v", p)
	}
}

type autoPrompter struct {
	confirm bool
	alerts  []string
}

func (p *autoPrompter) Confirm(string) bool { return p.confirm }
func (p *autoPrompter) Alert(msg string)    { p.alerts = append(p.alerts, msg) }
