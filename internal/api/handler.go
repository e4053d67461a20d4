package api

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"talenttrack/internal/config"
	"talenttrack/internal/ingest"
	"talenttrack/internal/storage"
	"talenttrack/pkg/logger"
)

var log = logger.New("API")

// Ingester runs one upload through the CV pipeline.
type Ingester interface {
	Ingest(ctx context.Context, upload ingest.UploadBatch) (*ingest.Result, error)
}

// Store is the read side used by the API.
type Store interface {
	GetVacancy(ctx context.Context, id int64) (*storage.Vacancy, error)
	ListApplications(ctx context.Context, f storage.ApplicationFilter) ([]storage.ApplicationView, error)
	SearchCandidates(ctx context.Context, criteria *storage.Criteria) ([]storage.Candidate, error)
}

type API struct {
	ingester       Ingester
	healthCheck    func(ctx context.Context) error
	store          Store
	validate       *validator.Validate
	maxFiles       int
	maxUploadBytes int64
}

func NewAPI(ingester Ingester, store Store, cfg config.IngestConfig) *API {
	return &API{
		ingester:       ingester,
		store:          store,
		validate:       newValidator(),
		maxFiles:       cfg.MaxFiles,
		maxUploadBytes: cfg.MaxUploadMB << 20,
	}
}

// WithHealthCheck makes /health report unhealthy while check fails.
func (a *API) WithHealthCheck(check func(ctx context.Context) error) *API {
	a.healthCheck = check
	return a
}

// HealthHandler reports service readiness.
func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if a.healthCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.healthCheck(ctx); err != nil {
			log.Printf("health check failed: %v", err)
			jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// newValidator reports fields by their form or JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		if name, _, _ := strings.Cut(fld.Tag.Get("json"), ","); name != "" && name != "-" {
			return name
		}
		return fld.Name
	})
	return v
}

// SearchHandler searches stored candidates
// @Summary Search candidates
// @Description Search candidates by name, occupation and skills
// @Tags candidates
// @Accept json
// @Produce json
// @Param criteria body storage.Criteria true "Search criteria"
// @Success 200 {array} storage.Candidate
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /search [post]
func (a *API) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var crit storage.Criteria
	if err := json.NewDecoder(r.Body).Decode(&crit); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if crit.Limit > 200 {
		crit.Limit = 200
	}
	candidates, err := a.store.SearchCandidates(r.Context(), &crit)
	if err != nil {
		log.Printf("search failed: %v", err)
		errorResponse(w, http.StatusInternalServerError, "search error")
		return
	}
	jsonResponse(w, http.StatusOK, candidates)
}
