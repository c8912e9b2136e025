package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/OrderDeskGo/internal/pkg/health"
	"github.com/utafrali/OrderDeskGo/internal/pkg/middleware"
	"github.com/utafrali/OrderDeskGo/internal/service"
)

// NewRouter creates a chi router with all orderdesk routes registered.
func NewRouter(
	sessions *service.Manager,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("orderdesk"))
	r.Use(middleware.Tracing("orderdesk"))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	sessionHandler := NewSessionHandler(sessions, logger)
	cartHandler := NewCartHandler(sessions, logger)
	modalHandler := NewModalHandler(sessions, logger)

	r.Route("/api/v1/sessions/{parentID}", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(ParentIDContext)

		r.Get("/", sessionHandler.GetSnapshot)
		r.Put("/context", sessionHandler.UpdateContext)
		r.Get("/notifications", sessionHandler.Notifications)
		r.Post("/navigation/ack", sessionHandler.AcknowledgeNavigation)

		r.Get("/pricelists", sessionHandler.ListPriceLists)
		r.Post("/pricelist", sessionHandler.SelectPriceList)
		r.Delete("/pricelist", sessionHandler.BackToPriceLists)

		r.Put("/view", sessionHandler.UpdateView)
		r.Post("/view/next-page", sessionHandler.NextPage)
		r.Post("/view/prev-page", sessionHandler.PrevPage)

		r.Put("/products/{productID}/entered-qty", sessionHandler.SetEnteredQty)
		r.Post("/products/{productID}/add", sessionHandler.AddFromRow)

		r.Post("/cart/lines", cartHandler.AddLine)
		r.Post("/cart/lines/{productID}/quick", cartHandler.QuickAdd)
		r.Put("/cart/lines/{productID}", cartHandler.UpdateLine)
		r.Delete("/cart/lines/{productID}", cartHandler.RemoveLine)
		r.Delete("/cart", cartHandler.ClearCart)

		r.Post("/modal", modalHandler.Open)
		r.Delete("/modal", modalHandler.Close)
		r.Post("/modal/quantity/increment", modalHandler.Increment)
		r.Post("/modal/quantity/decrement", modalHandler.Decrement)
		r.Put("/modal/quantity", modalHandler.SetQuantity)
		r.Put("/modal/image", modalHandler.SelectImage)
		r.Put("/modal/hover", modalHandler.SetHover)
		r.Post("/modal/confirm", modalHandler.ConfirmAdd)

		r.Post("/submit", modalHandler.Submit)
		r.Delete("/summary", modalHandler.CloseSummary)
	})

	return r
}
