// Package ingest runs uploaded CVs through text extraction, batched model
// extraction and per-candidate persistence.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"talenttrack/internal/extraction"
	"talenttrack/internal/storage"
	"talenttrack/pkg/logger"
)

var log = logger.New("Ingest")

// TextExtractor turns one uploaded file into cleaned text.
type TextExtractor interface {
	ExtractText(ctx context.Context, name string, data []byte) (string, error)
}

// Completer sends one prompt to the language model and returns the raw completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Repository is the persistence surface used for one record.
type Repository interface {
	UpsertCandidateByEmail(ctx context.Context, c *storage.Candidate) (int64, error)
	FindCandidateByID(ctx context.Context, id int64) (*storage.Candidate, error)
	CreateApplication(ctx context.Context, a *storage.Application) (*storage.Application, error)
	FindApplication(ctx context.Context, candidateID, vacancyID int64) (*storage.Application, error)
}

// Store runs fn as a single unit of work.
type Store interface {
	InTx(ctx context.Context, fn func(Repository) error) error
}

type Options struct {
	BatchSize            int
	MaxFiles             int
	ExtractWorkers       int
	ContinueOnBatchError bool
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
	if o.MaxFiles <= 0 {
		o.MaxFiles = 50
	}
	if o.ExtractWorkers <= 0 {
		o.ExtractWorkers = 4
	}
	return o
}

type UploadFile struct {
	Name string
	Data []byte
}

type UploadBatch struct {
	Files        []UploadFile
	VacancyID    int64
	VacancyTitle string
	Filter       string
}

// Entry is one persisted candidate with its application for the vacancy.
type Entry struct {
	Candidate   *storage.Candidate   `json:"candidate"`
	Application *storage.Application `json:"application"`
}

type Result struct {
	RunID       string       `json:"run_id"`
	Entries     []Entry      `json:"data"`
	BatchErrors []BatchError `json:"errors,omitempty"`
	Duplicates  int          `json:"-"`
	Invalid     int          `json:"-"`
}

type Pipeline struct {
	extractor TextExtractor
	completer Completer
	store     Store
	opts      Options
	newRunID  func() string
}

func NewPipeline(extractor TextExtractor, completer Completer, store Store, opts Options) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		completer: completer,
		store:     store,
		opts:      opts.withDefaults(),
		newRunID:  func() string { return uuid.NewString() },
	}
}

// Ingest processes an upload end to end. Batches run one after another and
// every candidate is saved in its own transaction, so a failing batch leaves
// earlier batches persisted.
func (p *Pipeline) Ingest(ctx context.Context, upload UploadBatch) (*Result, error) {
	res := &Result{RunID: p.newRunID(), Entries: []Entry{}}

	stats, err := p.run(ctx, res.RunID, upload, func(ctx context.Context, batch int, rec extraction.CandidateRecord) error {
		entry, err := p.persistRecord(ctx, rec, upload.VacancyID)
		if err != nil {
			return &PersistenceError{Batch: batch, Email: rec.Email, Err: err}
		}
		res.Entries = append(res.Entries, entry)
		return nil
	})
	res.BatchErrors, res.Duplicates, res.Invalid = stats.batchErrors, stats.duplicates, stats.invalid
	if err != nil {
		log.Printf("run=%s failed: %v", res.RunID, err)
		return nil, err
	}

	log.Printf("run=%s done: %d saved, %d duplicates skipped, %d invalid records, %d batch errors",
		res.RunID, len(res.Entries), res.Duplicates, res.Invalid, len(res.BatchErrors))
	return res, nil
}

// Preview runs extraction without touching storage and returns the records
// that Ingest would persist.
func (p *Pipeline) Preview(ctx context.Context, upload UploadBatch) ([]extraction.CandidateRecord, []BatchError, error) {
	runID := p.newRunID()
	records := []extraction.CandidateRecord{}

	stats, err := p.run(ctx, runID, upload, func(_ context.Context, _ int, rec extraction.CandidateRecord) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return records, stats.batchErrors, nil
}

type runStats struct {
	batchErrors []BatchError
	duplicates  int
	invalid     int
}

type dedupKey struct {
	email     string
	vacancyID int64
}

func (p *Pipeline) run(ctx context.Context, runID string, upload UploadBatch,
	handle func(ctx context.Context, batch int, rec extraction.CandidateRecord) error) (runStats, error) {
	var stats runStats

	if err := p.checkUpload(upload); err != nil {
		return stats, err
	}
	log.Printf("run=%s started: %d files, vacancy %d", runID, len(upload.Files), upload.VacancyID)

	texts, err := p.extractTexts(ctx, runID, upload.Files)
	if err != nil {
		return stats, err
	}

	batches := Chunk(texts, p.opts.BatchSize)
	seen := make(map[dedupKey]struct{})

	// fail either aborts the run or records the error and moves on
	fail := func(batch int, err error) error {
		if !p.opts.ContinueOnBatchError {
			return err
		}
		log.Printf("run=%s batch %d/%d: %v (continuing)", runID, batch, len(batches), err)
		stats.batchErrors = append(stats.batchErrors, BatchError{Batch: batch, Message: err.Error()})
		return nil
	}

	for i, chunk := range batches {
		batch := i + 1
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		log.Printf("run=%s batch %d/%d: extracting %d CVs", runID, batch, len(batches), len(chunk))
		raws, err := p.completeBatch(ctx, chunk, upload.VacancyTitle, upload.Filter)
		if err != nil {
			if err := fail(batch, &CompletionError{Batch: batch, Err: err}); err != nil {
				return stats, err
			}
			continue
		}

		for _, raw := range raws {
			rec, err := extraction.Normalize(raw)
			if err != nil {
				stats.invalid++
				log.Printf("run=%s batch %d: dropping record: %v", runID, batch, err)
				continue
			}

			key := dedupKey{email: rec.Email, vacancyID: upload.VacancyID}
			if _, dup := seen[key]; dup {
				stats.duplicates++
				log.Printf("run=%s batch %d: duplicate %s skipped", runID, batch, rec.Email)
				continue
			}

			if err := handle(ctx, batch, rec); err != nil {
				if err := fail(batch, err); err != nil {
					return stats, err
				}
				continue
			}
			seen[key] = struct{}{}
		}
	}

	return stats, nil
}

func (p *Pipeline) checkUpload(upload UploadBatch) error {
	switch {
	case len(upload.Files) == 0:
		return &IntakeError{Msg: "no CV files uploaded"}
	case len(upload.Files) > p.opts.MaxFiles:
		return &IntakeError{Msg: fmt.Sprintf("too many files: %d (max %d)", len(upload.Files), p.opts.MaxFiles)}
	case upload.VacancyID <= 0:
		return &IntakeError{Msg: "vacancy_id must be a positive integer"}
	}
	return nil
}

// extractTexts converts files with bounded parallelism. Output order matches
// input order and empty texts are dropped. The first failure cancels the rest.
func (p *Pipeline) extractTexts(ctx context.Context, runID string, files []UploadFile) ([]string, error) {
	texts := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.ExtractWorkers)
	for i, f := range files {
		g.Go(func() error {
			text, err := p.extractor.ExtractText(gctx, f.Name, f.Data)
			if err != nil {
				return &ExtractionError{File: f.Name, Err: err}
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := texts[:0]
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			log.Printf("run=%s %s: no text extracted, skipping", runID, files[i].Name)
			continue
		}
		out = append(out, text)
	}
	return out, nil
}

func (p *Pipeline) completeBatch(ctx context.Context, texts []string, title, filter string) ([]extraction.RawRecord, error) {
	prompt := extraction.BuildPrompt(texts, title, filter)
	completion, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return extraction.ParseCompletion(completion)
}

// persistRecord saves one candidate and links it to the vacancy. An existing
// application for the pair is reused as is.
func (p *Pipeline) persistRecord(ctx context.Context, rec extraction.CandidateRecord, vacancyID int64) (Entry, error) {
	var entry Entry
	err := p.store.InTx(ctx, func(repo Repository) error {
		candidateID, err := repo.UpsertCandidateByEmail(ctx, candidateFromRecord(rec))
		if err != nil {
			return err
		}

		app, err := repo.CreateApplication(ctx, &storage.Application{
			CandidateID: candidateID,
			VacancyID:   vacancyID,
			Status:      applicationStatus(rec.Status),
			AIReason:    rec.AIReason,
		})
		if errors.Is(err, storage.ErrApplicationExists) {
			app, err = repo.FindApplication(ctx, candidateID, vacancyID)
		}
		if err != nil {
			return err
		}

		candidate, err := repo.FindCandidateByID(ctx, candidateID)
		if err != nil {
			return err
		}

		entry = Entry{Candidate: candidate, Application: app}
		return nil
	})
	return entry, err
}

func candidateFromRecord(rec extraction.CandidateRecord) *storage.Candidate {
	return &storage.Candidate{
		Name:              rec.Name,
		Email:             rec.Email,
		Phone:             rec.Phone,
		DateOfBirth:       rec.DateOfBirth,
		Occupation:        rec.Occupation,
		Summary:           rec.Summary,
		Experience:        rec.Experience,
		Skills:            rec.Skills,
		Languages:         rec.Languages,
		Education:         rec.Education,
		GeneralExperience: rec.GeneralExperience,
		Notes:             renderNotes(rec.References),
	}
}

// applicationStatus uses s when it is a stored status. Anything else, including
// the model's "approved", becomes pending.
func applicationStatus(s string) string {
	if storage.ValidApplicationStatus(s) {
		return s
	}
	return storage.StatusPending
}
