package catalog_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"flora-commerce/internal/catalog"
	"flora-commerce/internal/errs"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler serves the public, read-only product catalog.
type Handler struct {
	Catalog *catalog.DB
	Logger  *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{productId}", h.GetProduct)
	})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.ListActiveProducts()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListProducts: %v", err))
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.Catalog.GetProduct(productID)
	if err != nil {
		http.Error(w, err.Error(), errs.HTTPStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(utils.Envelope(data)); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
