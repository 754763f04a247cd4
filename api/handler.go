package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	shop "gofalre.io/storefront"
	"gofalre.io/storefront/models"
)

// CartService 是 HTTP 層需要的購物車操作
type CartService interface {
	Cart() []models.Product
	Summary() *models.CartSummary
	AddProduct(ctx context.Context, productID int) error
	RemoveProduct(ctx context.Context, productID int) error
	UpdateProductAmount(ctx context.Context, productID, amount int) error
}

type CartHandler struct {
	cart   CartService
	logger *zap.Logger
}

func NewCartHandler(cart CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cart:   cart,
		logger: logger,
	}
}

type CartResponse struct {
	Items   []models.Product    `json:"items"`
	Summary *models.CartSummary `json:"summary"`
}

type UpdateAmountRequestDTO struct {
	Amount int `json:"amount"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Routes mounts the cart endpoints on a new chi router.
func (h *CartHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/cart", h.GetCart)
	r.Post("/cart/items/{product_id}", h.AddProduct)
	r.Put("/cart/items/{product_id}", h.UpdateProductAmount)
	r.Delete("/cart/items/{product_id}", h.RemoveProduct)

	return r
}

func (h *CartHandler) GetCart(w http.ResponseWriter, _ *http.Request) {
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.cart.AddProduct(r.Context(), productID); err != nil {
		h.handleCartError(w, err)
		return
	}

	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) UpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateAmountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.cart.UpdateProductAmount(r.Context(), productID, req.Amount); err != nil {
		h.handleCartError(w, err)
		return
	}

	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.cart.RemoveProduct(r.Context(), productID); err != nil {
		h.handleCartError(w, err)
		return
	}

	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	productID, err := strconv.Atoi(chi.URLParam(r, "product_id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be an integer")
		return 0, false
	}
	return productID, true
}

func (h *CartHandler) handleCartError(w http.ResponseWriter, err error) {
	var cartErr *shop.CartError
	if !errors.As(err, &cartErr) {
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	var status int
	switch {
	case errors.Is(err, shop.ErrOutOfStock):
		status = http.StatusConflict
	case errors.Is(err, shop.ErrRemoveFailed):
		status = http.StatusNotFound
	default:
		status = http.StatusBadGateway
	}

	h.respondError(w, status, string(cartErr.Kind), cartErr.Kind.Message())
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int) {
	h.respondJSON(w, status, &CartResponse{
		Items:   h.cart.Cart(),
		Summary: h.cart.Summary(),
	})
}

func (h *CartHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *CartHandler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func (h *CartHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
