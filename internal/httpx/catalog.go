package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-api/internal/catalog"
)

const (
	msgShopMissing = "Shop with this id does not exist!"
	msgShopFields  = "Please, check fields you tried to fill in"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.catalogError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProducts(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.catalogError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	price, err := decimal.NewFromString(req.Price.String())
	if req.Name == "" || err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "name and a numeric price are required")
		return
	}

	id, err := h.catalog.CreateProduct(r.Context(), catalog.Product{
		Name:        req.Name,
		Price:       price,
		Available:   req.Available,
		Category:    req.Category,
		Description: req.Description,
		ShopID:      req.ShopID,
	})
	if err != nil {
		h.catalogError(r, w, err)
		return
	}

	slog.InfoContext(r.Context(), "product created", "product_id", id, "name", req.Name)
	writeJSON(w, http.StatusCreated, MessageResponse{
		Message: fmt.Sprintf("Product: name=%s, price=%s was created.", req.Name, price.StringFixed(2)),
	})
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	upd := catalog.ProductUpdate{
		Name:        req.Name,
		Available:   req.Available,
		Category:    req.Category,
		Description: req.Description,
		ShopID:      req.ShopID,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(req.Price.String())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "price must be a number")
			return
		}
		upd.Price = &price
	}

	if err := h.catalog.UpdateProduct(r.Context(), id, upd); err != nil {
		h.catalogError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Product: id=%d updated", id),
	})
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.catalogError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.catalog.ListShops(r.Context())
	if err != nil {
		h.catalogError(r, w, err)
		return
	}

	out := make([]ShopResponse, len(shops))
	for i, s := range shops {
		out[i] = mapShop(s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetShop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	s, err := h.catalog.GetShop(r.Context(), id)
	if err != nil {
		h.catalogError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapShop(s))
}

func (h *Handler) CreateShop(w http.ResponseWriter, r *http.Request) {
	var req CreateShopRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", msgShopFields)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", msgShopFields)
		return
	}

	id, err := h.catalog.CreateShop(r.Context(), catalog.Shop{
		Name:  req.Name,
		City:  req.City,
		Owner: req.Owner,
	})
	if err != nil {
		h.catalogError(r, w, err)
		return
	}

	slog.InfoContext(r.Context(), "shop created", "shop_id", id, "name", req.Name)
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Shop was successfully added"})
}

func (h *Handler) UpdateShop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateShopRequest
	if err := strictDecode(r, &req); err != nil {
		// Unknown field names are a caller mistake, reported as such.
		writeError(w, http.StatusBadRequest, "invalid_request", "You tried to modify not existing field(s)")
		return
	}

	err := h.catalog.UpdateShop(r.Context(), id, catalog.ShopUpdate{
		Name:  req.Name,
		City:  req.City,
		Owner: req.Owner,
	})
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "shop_not_found", msgShopMissing)
		return
	}
	if err != nil {
		h.catalogError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Shop was successfully modified"})
}

func (h *Handler) catalogError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	default:
		slog.ErrorContext(r.Context(), "catalog operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// strictDecode rejects bodies naming fields the target struct does not have.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
