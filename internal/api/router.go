package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Health check (for k8s, load balancers, etc.)
	mux.HandleFunc("/health", a.HealthHandler)

	// CV ingestion; the method-less pattern answers other methods with 405
	mux.HandleFunc("POST /api/aicv/{$}", a.AICVHandler)
	mux.HandleFunc("/api/aicv/{$}", a.AICVHandler)

	// Read side
	mux.HandleFunc("/api/search", a.SearchHandler)
	mux.HandleFunc("GET /api/vacancies/{id}/applications", a.ListApplicationsHandler)

	return mux
}
