package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"talenttrack/internal/app"
	"talenttrack/internal/config"
	"talenttrack/internal/ingest"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract candidates from a directory of PDF CVs",
	Long:  "Reads every .pdf file in --dir, sends the texts to the configured model in batches and saves candidates and applications for --vacancy-id. With --dry-run nothing is written and the extracted records are printed instead.",
	RunE:  runIngest,
}

var (
	runDir       string
	runVacancyID int64
	runTitle     string
	runFilter    string
	runDryRun    bool
)

func init() {
	runCmd.Flags().StringVarP(&runDir, "dir", "d", "", "Directory containing PDF CVs (required)")
	runCmd.Flags().Int64VarP(&runVacancyID, "vacancy-id", "v", 0, "Vacancy the candidates apply to (required)")
	runCmd.Flags().StringVarP(&runTitle, "title", "t", "", "Vacancy title used in the prompt (defaults to the stored title)")
	runCmd.Flags().StringVarP(&runFilter, "filter", "f", "", "Desired skills or keywords")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print extracted records without touching the database")

	if err := runCmd.MarkFlagRequired("dir"); err != nil {
		panic(fmt.Sprintf("failed to mark dir flag as required: %v", err))
	}
	if err := runCmd.MarkFlagRequired("vacancy-id"); err != nil {
		panic(fmt.Sprintf("failed to mark vacancy-id flag as required: %v", err))
	}

	rootCmd.AddCommand(runCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := collectPDFs(runDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files found in %s", runDir)
	}
	// the CLI is not bound by the HTTP upload limit
	cfg.Ingest.MaxFiles = max(cfg.Ingest.MaxFiles, len(files))

	llmSvc, err := app.NewLLM(ctx, cfg)
	if err != nil {
		return err
	}
	defer llmSvc.Close()

	upload := ingest.UploadBatch{
		Files:        files,
		VacancyID:    runVacancyID,
		VacancyTitle: runTitle,
		Filter:       runFilter,
	}
	out := cmd.OutOrStdout()

	if runDryRun {
		pipeline := app.NewPipeline(llmSvc, nil, cfg.Ingest)
		records, batchErrs, err := pipeline.Preview(ctx, upload)
		if err != nil {
			return err
		}
		reportBatchErrors(cmd.ErrOrStderr(), batchErrs)
		return writeJSON(out, records)
	}

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if upload.VacancyTitle == "" {
		vacancy, err := db.Repo().GetVacancy(ctx, runVacancyID)
		if err != nil {
			return err
		}
		upload.VacancyTitle = vacancy.Title
	}

	pipeline := app.NewPipeline(llmSvc, ingest.NewSQLStore(db), cfg.Ingest)
	res, err := pipeline.Ingest(ctx, upload)
	if err != nil {
		return err
	}
	reportBatchErrors(cmd.ErrOrStderr(), res.BatchErrors)
	fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %d candidate(s) saved from %d file(s)\n", res.RunID, len(res.Entries), len(files))
	return writeJSON(out, res.Entries)
}

// collectPDFs reads the .pdf files directly inside dir, sorted by name.
func collectPDFs(dir string) ([]ingest.UploadFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	files := make([]ingest.UploadFile, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		files = append(files, ingest.UploadFile{Name: name, Data: data})
	}
	return files, nil
}

func reportBatchErrors(w io.Writer, errs []ingest.BatchError) {
	for _, e := range errs {
		fmt.Fprintf(w, "batch %d failed: %s\n", e.Batch, e.Message)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
