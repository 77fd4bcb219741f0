package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/rocketcart/internal/cart"
	"github.com/nikolayk812/rocketcart/internal/domain"
)

// CartService is the slice of the cart manager the HTTP layer drives.
type CartService interface {
	Snapshot() cart.Result
	AddProduct(ctx context.Context, productID int64) cart.Result
	RemoveProduct(ctx context.Context, productID int64) cart.Result
	UpdateProductAmount(ctx context.Context, productID int64, amount int) cart.Result
}

type NoticeFeed interface {
	Drain() []domain.Notice
}

type CartHandler struct {
	carts   CartService
	notices NoticeFeed
	timeout time.Duration
	logger  *slog.Logger
}

func NewCartHandler(carts CartService, notices NoticeFeed, timeout time.Duration, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &CartHandler{
		carts:   carts,
		notices: notices,
		timeout: timeout,
		logger:  logger,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateAmountRequestDTO struct {
	Amount *int `json:"amount"`
}

type CartResponse struct {
	Items  []domain.LineItem `json:"items"`
	Total  domain.Money      `json:"total"`
	Notice *domain.Notice    `json:"notice,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if h.timeout > 0 {
		r.Use(middleware.Timeout(h.timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{product_id}", h.UpdateAmount)
			r.Delete("/items/{product_id}", h.RemoveItem)
		})
		r.Get("/notices", h.DrainNotices)
	})

	return r
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	res := h.carts.Snapshot()

	h.respondJSON(w, http.StatusOK, CartResponse{
		Items: res.Cart.Items,
		Total: res.Total,
	})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	h.respondResult(w, h.carts.AddProduct(r.Context(), req.ProductID))
}

func (h *CartHandler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateAmountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "amount is required")
		return
	}

	h.respondResult(w, h.carts.UpdateProductAmount(r.Context(), productID, *req.Amount))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	h.respondResult(w, h.carts.RemoveProduct(r.Context(), productID))
}

func (h *CartHandler) DrainNotices(w http.ResponseWriter, r *http.Request) {
	if h.notices == nil {
		h.respondJSON(w, http.StatusOK, []domain.Notice{})
		return
	}

	h.respondJSON(w, http.StatusOK, h.notices.Drain())
}

func (h *CartHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}

	return productID, true
}

func (h *CartHandler) respondResult(w http.ResponseWriter, res cart.Result) {
	h.respondJSON(w, noticeStatus(res.Notice), CartResponse{
		Items:  res.Cart.Items,
		Total:  res.Total,
		Notice: res.Notice,
	})
}

// noticeStatus keeps 200 when only the stock push failed: the cart change itself went through.
func noticeStatus(notice *domain.Notice) int {
	if notice == nil {
		return http.StatusOK
	}

	switch notice.Kind {
	case domain.NoticeOutOfStock:
		return http.StatusConflict
	case domain.NoticeStockAdjustFailed:
		return http.StatusOK
	default:
		return http.StatusUnprocessableEntity
	}
}

func (h *CartHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *CartHandler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
