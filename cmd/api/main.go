package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "talenttrack/docs" // Swagger docs
	"talenttrack/internal/api"
	"talenttrack/internal/app"
	"talenttrack/internal/config"
	"talenttrack/internal/ingest"
)

// @title TalentTrack CV Ingestion API
// @version 1.0
// @description Uploads PDF CVs, extracts structured candidate data with a language model and links candidates to vacancies.

// @contact.name API Support
// @contact.email support@talenttrack.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	log.Println("Connecting to database...")
	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	log.Println("Database connected successfully!")

	llmSvc, err := app.NewLLM(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer llmSvc.Close()
	if cfg.LLM.CacheTTL > 0 {
		app.StartCacheJanitor(ctx, llmSvc, cfg.LLM.CacheTTL)
	}

	pipeline := app.NewPipeline(llmSvc, ingest.NewSQLStore(db), cfg.Ingest)
	apiSrv := api.NewAPI(pipeline, db.Repo(), cfg.Ingest).WithHealthCheck(db.Ping)
	router := api.NewRouter(apiSrv)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second, // multipart uploads
		WriteTimeout: 15 * time.Minute, // sequential LLM batches for up to 50 CVs
		IdleTimeout:  120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Println("server shutdown:", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("API server listening on :%s\n", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	<-idleConnsClosed
}
