package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/channelops/commission-review/internal/repository"
	"github.com/channelops/commission-review/internal/review"
)

// NewRouter creates the chi router with all review API routes mounted.
func NewRouter(
	svc *review.Service,
	directory Directory,
	runs *repository.RunRepo,
	testEnterpriseID int64,
	logger *logrus.Logger,
) http.Handler {
	h := &Handlers{
		svc:              svc,
		directory:        directory,
		runs:             runs,
		testEnterpriseID: testEnterpriseID,
		logger:           logger,
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Batch loading.
		r.Post("/commission/calculate", h.Calculate)

		// Paginated record view and KPIs.
		r.Get("/commission/records", h.Records)
		r.Get("/commission/summary", h.Summary)
		r.Get("/commission/export", h.Export)

		// Rollups.
		r.Get("/rollups/jurisdictions", h.JurisdictionRollups)
		r.Get("/rollups/enterprises", h.EnterpriseRollups)

		// Enterprise directory and navigator.
		r.Get("/enterprises", h.ListEnterprises)
		r.Get("/navigator/current", h.NavigatorCurrent)
		r.Post("/navigator/next", h.NavigatorNext)
		r.Post("/navigator/prev", h.NavigatorPrev)

		// Run history.
		r.Get("/runs", h.ListRuns)
	})

	return r
}
