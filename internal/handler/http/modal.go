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

// ModalHandler handles product modal and order submission routes.
type ModalHandler struct {
	sessions *service.Manager
	logger   *slog.Logger
}

// NewModalHandler creates a modal HTTP handler.
func NewModalHandler(sessions *service.Manager, logger *slog.Logger) *ModalHandler {
	return &ModalHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// OpenModalRequest names the product to open in the detail modal.
type OpenModalRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// ModalQtyRequest carries a directly entered modal quantity. Out-of-range
// values are not a validation failure; the session ignores them silently.
type ModalQtyRequest struct {
	Quantity int `json:"quantity"`
}

// SelectImageRequest selects a carousel image by index.
type SelectImageRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

// HoverRequest reports whether the pointer is over the carousel.
type HoverRequest struct {
	Hovering bool `json:"hovering"`
}

// Open handles POST /api/v1/sessions/{parentID}/modal
func (h *ModalHandler) Open(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	var req OpenModalRequest
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

	if err := h.sessions.OpenModal(r.Context(), parentID, req.ProductID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// Close handles DELETE /api/v1/sessions/{parentID}/modal
func (h *ModalHandler) Close(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.CloseModal(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// Increment handles POST /api/v1/sessions/{parentID}/modal/quantity/increment
func (h *ModalHandler) Increment(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.IncrementModalQty(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// Decrement handles POST /api/v1/sessions/{parentID}/modal/quantity/decrement
func (h *ModalHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.DecrementModalQty(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// SetQuantity handles PUT /api/v1/sessions/{parentID}/modal/quantity
func (h *ModalHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	var req ModalQtyRequest
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

	if err := h.sessions.SetModalQty(r.Context(), parentID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// SelectImage handles PUT /api/v1/sessions/{parentID}/modal/image
func (h *ModalHandler) SelectImage(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	var req SelectImageRequest
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

	if err := h.sessions.SelectImage(r.Context(), parentID, req.Index); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// SetHover handles PUT /api/v1/sessions/{parentID}/modal/hover
func (h *ModalHandler) SetHover(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	var req HoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := h.sessions.SetHover(r.Context(), parentID, req.Hovering); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// ConfirmAdd handles POST /api/v1/sessions/{parentID}/modal/confirm
func (h *ModalHandler) ConfirmAdd(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.ConfirmAdd(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// Submit handles POST /api/v1/sessions/{parentID}/submit
func (h *ModalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.Submit(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// CloseSummary handles DELETE /api/v1/sessions/{parentID}/summary
func (h *ModalHandler) CloseSummary(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.CloseSummary(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

func (h *ModalHandler) writeSnapshot(w http.ResponseWriter, r *http.Request, parentID string) {
	snap, err := h.sessions.GetSnapshot(r.Context(), parentID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}
