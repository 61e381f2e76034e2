package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-api/internal/basket"
	"github.com/jcmexdev/shop-api/internal/catalog"
	"github.com/jcmexdev/shop-api/internal/httpx/middlewares"
)

// Fixed user-facing condition messages. Part of the API contract.
const (
	msgBasketEmpty        = "Your basket is empty"
	msgProductUnavailable = "Product you are looking for is absent at the moment"
)

// Handler handles incoming HTTP requests for the shop: catalog reads and
// writes, basket mutation, and the simulated payment flow.
type Handler struct {
	baskets *basket.Service
	catalog *catalog.Service
}

func NewHandler(baskets *basket.Service, cat *catalog.Service) *Handler {
	return &Handler{baskets: baskets, catalog: cat}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Health check request has been performed with success",
	})
}

// AddProductToBasket puts the product into the caller's active basket,
// creating the basket lazily, and returns the resulting line items.
func (h *Handler) AddProductToBasket(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	id, _ := middlewares.IdentityFromContext(r.Context())
	items, err := h.baskets.AddProduct(r.Context(), id.UserID, productID)
	if err != nil {
		h.basketError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapProducts(items))
}

// ViewBasket returns the caller's active basket line items.
func (h *Handler) ViewBasket(w http.ResponseWriter, r *http.Request) {
	id, _ := middlewares.IdentityFromContext(r.Context())
	items, err := h.baskets.ActiveLineItems(r.Context(), id.UserID)
	if err != nil {
		h.basketError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapProducts(items))
}

// ViewTotal returns the line items together with the discounted total.
func (h *Handler) ViewTotal(w http.ResponseWriter, r *http.Request) {
	id, _ := middlewares.IdentityFromContext(r.Context())
	items, total, err := h.baskets.Total(r.Context(), id.UserID)
	if err != nil {
		h.basketError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, TotalResponse{
		ProductList: mapProducts(items),
		TotalCost:   TotalCost{Total: json.Number(total.StringFixed(2))},
	})
}

// ListBaskets returns all of the caller's baskets, settled ones included.
func (h *Handler) ListBaskets(w http.ResponseWriter, r *http.Request) {
	id, _ := middlewares.IdentityFromContext(r.Context())
	baskets, err := h.baskets.Baskets(r.Context(), id.UserID)
	if err != nil {
		h.basketError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapBaskets(baskets))
}

// Pay validates the tendered amount against the basket total. The amount is
// parsed into an exact decimal straight from the JSON number; it never
// exists as a float64 in this process.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	money, err := decimal.NewFromString(req.Money.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_money", "money must be a number")
		return
	}

	id, _ := middlewares.IdentityFromContext(r.Context())
	outcome, err := h.baskets.Pay(r.Context(), id.UserID, money)
	if err != nil {
		h.basketError(r, w, err)
		return
	}

	resp := PaymentResponse{
		Message: outcome.Message,
		Total:   outcome.Total.StringFixed(2),
	}

	switch outcome.State {
	case basket.StateSettled:
		writeJSON(w, http.StatusOK, resp)
	case basket.StateInsufficient:
		// A valid checkout outcome, not an internal error — but reported as
		// a client error so naive clients notice nothing was settled.
		writeJSON(w, http.StatusBadRequest, resp)
	case basket.StateOverpaid:
		resp.Change = outcome.Change.StringFixed(2)
		writeJSON(w, http.StatusOK, resp)
	}
}

// basketError maps core basket errors to their fixed status/message pairs.
func (h *Handler) basketError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, basket.ErrEmptyBasket):
		writeError(w, http.StatusNotFound, "empty_basket", msgBasketEmpty)
	case errors.Is(err, basket.ErrProductUnavailable):
		writeError(w, http.StatusNotFound, "product_unavailable", msgProductUnavailable)
	case errors.Is(err, basket.ErrAlreadySettled):
		writeError(w, http.StatusConflict, "conflict", "basket was settled by a concurrent payment")
	default:
		slog.ErrorContext(r.Context(), "basket operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// pathID parses a numeric chi URL parameter, answering 400 itself when the
// value is not an integer.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
