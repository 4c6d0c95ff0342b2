package cart_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"flora-commerce/internal/auth"
	"flora-commerce/internal/cart"
	"flora-commerce/internal/errs"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/models"
	"flora-commerce/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CartService *cart.CartService
	Logger      *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/add", h.AddItem)
		r.Put("/items/{itemId}", h.UpdateItem)
		r.Delete("/items/{itemId}", h.RemoveItem)
		r.Delete("/", h.ClearCart)
	})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	snapshot, err := h.CartService.GetCart(ident.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCart: %v", err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req models.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	snapshot, err := h.CartService.AddItem(ident.UserID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddItem: user=%d product=%d: %v", ident.UserID, req.ProductID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("AddItem: user=%d product=%d qty=%d", ident.UserID, req.ProductID, req.Quantity))
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	snapshot, err := h.CartService.UpdateItem(ident.UserID, itemID, quantity)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateItem: user=%d item=%d: %v", ident.UserID, itemID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	snapshot, err := h.CartService.RemoveItem(ident.UserID, itemID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RemoveItem: user=%d item=%d: %v", ident.UserID, itemID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	snapshot, err := h.CartService.Clear(ident.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ClearCart: user=%d: %v", ident.UserID, err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(utils.Envelope(data)); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
