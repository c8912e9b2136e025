package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/OrderDeskGo/internal/pkg/httputil"
	"github.com/utafrali/OrderDeskGo/internal/pkg/validator"
	"github.com/utafrali/OrderDeskGo/internal/service"
)

// CartHandler handles cart line routes.
type CartHandler struct {
	sessions *service.Manager
	logger   *slog.Logger
}

// NewCartHandler creates a cart HTTP handler.
func NewCartHandler(sessions *service.Manager, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// AddLineRequest adds a product to the cart with an explicit quantity.
type AddLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateLineRequest sets the absolute quantity of an existing line.
type UpdateLineRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// AddLine handles POST /api/v1/sessions/{parentID}/cart/lines
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.sessions.AddLine(r.Context(), parentID, req.ProductID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// QuickAdd handles POST /api/v1/sessions/{parentID}/cart/lines/{productID}/quick
func (h *CartHandler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")
	productID := chi.URLParam(r, "productID")

	if err := h.sessions.QuickAdd(r.Context(), parentID, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// UpdateLine handles PUT /api/v1/sessions/{parentID}/cart/lines/{productID}
func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")
	productID := chi.URLParam(r, "productID")

	var req UpdateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.sessions.UpdateLineQty(r.Context(), parentID, productID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// RemoveLine handles DELETE /api/v1/sessions/{parentID}/cart/lines/{productID}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")
	productID := chi.URLParam(r, "productID")

	if err := h.sessions.RemoveLine(r.Context(), parentID, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// ClearCart handles DELETE /api/v1/sessions/{parentID}/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.ClearCart(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

func (h *CartHandler) writeSnapshot(w http.ResponseWriter, r *http.Request, parentID string) {
	snap, err := h.sessions.GetSnapshot(r.Context(), parentID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}
