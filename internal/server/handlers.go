package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/store"
	"github.com/ginjaninja78/inventario/internal/types"
)

// maxBodyBytes bounds a registration request body.
const maxBodyBytes = 1 << 20

// Search handles GET /api/buscar-producto.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("q") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter q is required"})
		return
	}

	results, err := s.store.SearchProducts(r.Context(), query.Get("q"))
	if err != nil {
		s.internalError(w, "search products", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// RegisterPurchase handles POST /api/registrar-compra.
func (s *Server) RegisterPurchase(w http.ResponseWriter, r *http.Request) {
	s.register(w, r, types.ModePurchase, s.store.RegisterPurchases)
}

// RegisterSale handles POST /api/registrar-venta.
func (s *Server) RegisterSale(w http.ResponseWriter, r *http.Request) {
	s.register(w, r, types.ModeSale, s.store.RegisterSales)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, mode types.Mode,
	save func(context.Context, []types.LineItemRequest) error) {

	var items []types.LineItemRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&items); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if items == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request body must be a list of items"})
		return
	}

	if err := save(r.Context(), items); err != nil {
		s.internalError(w, "register "+string(mode), err)
		return
	}

	s.log.Info("operation registered", zap.String("mode", string(mode)), zap.Int("items", len(items)))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Products handles GET /api/productos.
func (s *Server) Products(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		s.internalError(w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// History handles GET /api/historial/{tipo}.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	kind, err := store.ParseHistoryKind(chi.URLParam(r, "tipo"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	records, err := s.store.History(r.Context(), kind)
	if err != nil {
		s.internalError(w, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// TopSales handles GET /api/top-ventas.
func (s *Server) TopSales(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.URL.Query().Get("dias"))
	if err != nil || days < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dias must be a non-negative integer"})
		return
	}

	top, err := s.store.TopSales(r.Context(), days)
	if err != nil {
		s.internalError(w, "top sales", err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

// --- Helpers ---

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.log.Error(op+" failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
