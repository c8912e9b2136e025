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

// SessionHandler handles session context, price list, and browse view routes.
type SessionHandler struct {
	sessions *service.Manager
	logger   *slog.Logger
}

// NewSessionHandler creates a session HTTP handler.
func NewSessionHandler(sessions *service.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// UpdateContextRequest carries the reactive host-record inputs.
type UpdateContextRequest struct {
	RecordStatus string `json:"record_status"`
	CurrencyCode string `json:"currency_code" validate:"omitempty,len=3"`
}

// UpdateViewRequest carries optional filter updates; absent fields are left
// untouched.
type UpdateViewRequest struct {
	SearchTerm *string `json:"search_term"`
	Category   *string `json:"category"`
	Page       *int    `json:"page" validate:"omitempty,gte=1"`
}

// SelectPriceListRequest names the price list to select.
type SelectPriceListRequest struct {
	PriceListID string `json:"price_list_id" validate:"required"`
}

// EnteredQtyRequest carries the transient inline quantity for a product row.
type EnteredQtyRequest struct {
	Quantity int `json:"quantity"`
}

// GetSnapshot handles GET /api/v1/sessions/{parentID}
func (h *SessionHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	snap, err := h.sessions.GetSnapshot(r.Context(), parentID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// UpdateContext handles PUT /api/v1/sessions/{parentID}/context
func (h *SessionHandler) UpdateContext(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	var req UpdateContextRequest
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

	if err := h.sessions.UpdateContext(r.Context(), parentID, req.RecordStatus, req.CurrencyCode); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// Notifications handles GET /api/v1/sessions/{parentID}/notifications
func (h *SessionHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	notes, err := h.sessions.Notifications(r.Context(), parentID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: notes})
}

// AcknowledgeNavigation handles POST /api/v1/sessions/{parentID}/navigation/ack
func (h *SessionHandler) AcknowledgeNavigation(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.AcknowledgeNavigation(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "acknowledged"}})
}

// ListPriceLists handles GET /api/v1/sessions/{parentID}/pricelists
func (h *SessionHandler) ListPriceLists(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	lists, err := h.sessions.ListPriceLists(r.Context(), parentID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: lists})
}

// SelectPriceList handles POST /api/v1/sessions/{parentID}/pricelist
func (h *SessionHandler) SelectPriceList(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	var req SelectPriceListRequest
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

	if err := h.sessions.SelectPriceList(r.Context(), parentID, req.PriceListID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// BackToPriceLists handles DELETE /api/v1/sessions/{parentID}/pricelist
func (h *SessionHandler) BackToPriceLists(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.BackToPriceLists(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// UpdateView handles PUT /api/v1/sessions/{parentID}/view
func (h *SessionHandler) UpdateView(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	var req UpdateViewRequest
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

	ctx := r.Context()
	if req.SearchTerm != nil {
		if err := h.sessions.SetSearchTerm(ctx, parentID, *req.SearchTerm); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}
	if req.Category != nil {
		if err := h.sessions.SetCategory(ctx, parentID, *req.Category); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}
	if req.Page != nil {
		if err := h.sessions.GoToPage(ctx, parentID, *req.Page); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}

	h.writeSnapshot(w, r, parentID)
}

// NextPage handles POST /api/v1/sessions/{parentID}/view/next-page
func (h *SessionHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.NextPage(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// PrevPage handles POST /api/v1/sessions/{parentID}/view/prev-page
func (h *SessionHandler) PrevPage(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if err := h.sessions.PrevPage(r.Context(), parentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

// SetEnteredQty handles PUT /api/v1/sessions/{parentID}/products/{productID}/entered-qty
func (h *SessionHandler) SetEnteredQty(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")
	productID := chi.URLParam(r, "productID")

	var req EnteredQtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := h.sessions.SetEnteredQty(r.Context(), parentID, productID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "ok"}})
}

// AddFromRow handles POST /api/v1/sessions/{parentID}/products/{productID}/add
func (h *SessionHandler) AddFromRow(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")
	productID := chi.URLParam(r, "productID")

	if err := h.sessions.AddFromRow(r.Context(), parentID, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSnapshot(w, r, parentID)
}

func (h *SessionHandler) writeSnapshot(w http.ResponseWriter, r *http.Request, parentID string) {
	snap, err := h.sessions.GetSnapshot(r.Context(), parentID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}
