package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/OrderDeskGo/internal/pkg/httputil"
	"github.com/utafrali/OrderDeskGo/internal/pkg/logger"
)

// ParentIDContext stores the parent record ID from the route in the logging
// context so the request-scoped logger carries it.
func ParentIDContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parentID := chi.URLParam(r, "parentID")
		if parentID == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "parent record id is required"},
			})
			return
		}
		ctx := logger.WithParentID(r.Context(), parentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContentTypeJSON enforces application/json on requests carrying a body.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
