// =============================================================================
// Inventario - Companion Backend
// =============================================================================
//
// JSON HTTP API over the product store. It serves product search for the
// form's autocomplete, the purchase and sale registration endpoints and the
// read-only tables.
//
// ROUTES:
//   GET  /api/buscar-producto?q=<text>
//   POST /api/registrar-compra
//   POST /api/registrar-venta
//   GET  /api/productos
//   GET  /api/historial/{tipo}          tipo is compras or ventas
//   GET  /api/top-ventas?dias=N
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ginjaninja78/inventario/internal/store"
	"github.com/ginjaninja78/inventario/internal/types"
)

// Store is the persistence the handlers need. Satisfied by *store.Store.
type Store interface {
	SearchProducts(ctx context.Context, query string) ([]types.Suggestion, error)
	ListProducts(ctx context.Context) ([]types.Product, error)
	RegisterPurchases(ctx context.Context, items []types.LineItemRequest) error
	RegisterSales(ctx context.Context, items []types.LineItemRequest) error
	History(ctx context.Context, kind store.HistoryKind) ([]types.HistoryRecord, error)
	TopSales(ctx context.Context, days int) ([]types.TopSale, error)
}

// Server serves the inventory API.
type Server struct {
	store Store
	log   *zap.Logger
}

// New creates a Server.
func New(st Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{store: st, log: log}
}

// Handler returns the router with all routes and middleware mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", s.RegisterRoutes)
	return r
}

// RegisterRoutes registers the API endpoints on the given router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/buscar-producto", s.Search)
	r.Post("/registrar-compra", s.RegisterPurchase)
	r.Post("/registrar-venta", s.RegisterSale)
	r.Get("/productos", s.Products)
	r.Get("/historial/{tipo}", s.History)
	r.Get("/top-ventas", s.TopSales)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

// requestLogger logs one line per request with status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
