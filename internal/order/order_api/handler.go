package order_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"flora-commerce/internal/auth"
	"flora-commerce/internal/errs"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/models"
	"flora-commerce/internal/order"
	"flora-commerce/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	OrderService *order.OrderService
	Logger       *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.Checkout)
		r.Get("/", h.ListMyOrders)
		r.Get("/{orderId}", h.GetOrder)
		r.Get("/number/{orderNumber}", h.GetOrderByNumber)
		r.Post("/{orderId}/cancel", h.CancelOrder)
		r.With(auth.RequireAdmin).Get("/all", h.ListAllOrders)
		r.With(auth.RequireAdmin).Put("/{orderId}/status", h.UpdateStatus)
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.OrderService.Checkout(ident.UserID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Checkout: user=%d: %v", ident.UserID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	orders, err := h.OrderService.GetUserOrders(ident.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMyOrders: user=%d: %v", ident.UserID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderService.GetAllOrders()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAllOrders: %v", err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	found, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	if found.UserID != ident.UserID && !ident.IsAdmin() {
		http.Error(w, "unauthorized access", http.StatusForbidden)
		return
	}

	h.writeJSON(w, http.StatusOK, found)
}

func (h *Handler) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	found, err := h.OrderService.GetOrderByNumber(chi.URLParam(r, "orderNumber"))
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	if found.UserID != ident.UserID && !ident.IsAdmin() {
		http.Error(w, "unauthorized access", http.StatusForbidden)
		return
	}

	h.writeJSON(w, http.StatusOK, found)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	cancelled, err := h.OrderService.CancelOrder(orderID, ident.UserID, ident.IsAdmin())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelOrder: order=%d user=%d: %v", orderID, ident.UserID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, cancelled)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	status := models.OrderStatus(r.URL.Query().Get("status"))
	if !status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	updated, err := h.OrderService.UpdateStatus(orderID, status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateStatus: order=%d status=%s: %v", orderID, status, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(utils.Envelope(data)); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
