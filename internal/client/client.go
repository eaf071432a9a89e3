// =============================================================================
// Inventario - Backend Client
// =============================================================================
//
// HTTP client for the inventory backend. It implements the form's Searcher
// and Registrar collaborators and fetches the read-only tables used by the
// table command.
//
// ENDPOINTS:
//   GET  /api/buscar-producto?q=<text>   product search
//   POST /api/registrar-compra           register a purchase
//   POST /api/registrar-venta            register a sale
//   GET  /api/productos                  product list
//   GET  /api/historial/{compras|ventas} purchase or sale history
//   GET  /api/top-ventas?dias=N          best sellers over N days
//
// No request is retried. A zero timeout means requests are bounded only by
// their context.
//
// =============================================================================

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/types"
)

// ErrUnexpectedStatus is returned for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Client talks to the inventory backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Search implements form.Searcher.
func (c *Client) Search(ctx context.Context, query string) ([]types.Suggestion, error) {
	var out []types.Suggestion
	q := url.Values{"q": {query}}
	if err := c.get(ctx, "/api/buscar-producto?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return out, nil
}

// Register implements form.Registrar.
func (c *Client) Register(ctx context.Context, mode types.Mode, entries []types.PayloadEntry) error {
	path := "/api/registrar-compra"
	if mode == types.ModeSale {
		path = "/api/registrar-venta"
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Products lists the product catalogue.
func (c *Client) Products(ctx context.Context) ([]types.Product, error) {
	var out []types.Product
	if err := c.get(ctx, "/api/productos", &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// History lists registered purchases ("compras") or sales ("ventas").
func (c *Client) History(ctx context.Context, kind string) ([]types.HistoryRecord, error) {
	var out []types.HistoryRecord
	if err := c.get(ctx, "/api/historial/"+url.PathEscape(kind), &out); err != nil {
		return nil, fmt.Errorf("history %s: %w", kind, err)
	}
	return out, nil
}

// TopSales lists sales aggregated per product over the last days.
func (c *Client) TopSales(ctx context.Context, days int) ([]types.TopSale, error) {
	var out []types.TopSale
	if err := c.get(ctx, "/api/top-ventas?dias="+strconv.Itoa(days), &out); err != nil {
		return nil, fmt.Errorf("top sales: %w", err)
	}
	return out, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do sends the request and turns non-2xx answers into ErrUnexpectedStatus.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err),
		)
		return nil, err
	}

	c.log.Debug("request done",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(snippet)))
	}
	return resp, nil
}
