package stockserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handler struct {
	catalog *Catalog
	logger  *slog.Logger
}

func NewHandler(catalog *Catalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		catalog: catalog,
		logger:  logger,
	}
}

// Routes mirrors the json-server resources the storefront talks to.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Get("/stock/{id}", h.GetStock)
	r.Patch("/stock/{id}", h.PatchStock)

	return r
}

type patchStockDTO struct {
	Amount *int `json:"amount"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.catalog.Products())
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.Product(id)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	stock, err := h.catalog.Stock(id)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, stock)
}

func (h *Handler) PatchStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req patchStockDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "amount is required"})
		return
	}

	stock, err := h.catalog.SetStock(id, *req.Amount)
	if err != nil {
		h.respondCatalogError(w, err)
		return
	}

	h.logger.Debug("stock updated", "product_id", id, "amount", stock.Amount)
	h.respondJSON(w, http.StatusOK, stock)
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be a positive integer"})
		return 0, false
	}

	return id, true
}

func (h *Handler) respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		h.respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNegativeStock):
		h.respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		h.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
