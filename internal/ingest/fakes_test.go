package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"talenttrack/internal/storage"
)

type fakeExtractor struct {
	errs map[string]error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, name string, _ []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := f.errs[name]; err != nil {
		return "", err
	}
	return "CV of " + name, nil
}

type fakeResponse struct {
	text string
	err  error
}

type fakeCompleter struct {
	mu        sync.Mutex
	responses []fakeResponse
	prompts   []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	if call >= len(f.responses) {
		return "", fmt.Errorf("unexpected completion call %d", call+1)
	}
	return f.responses[call].text, f.responses[call].err
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// memStore is an in-memory Store whose transactions restore the previous
// state when fn fails.
type memStore struct {
	mu           sync.Mutex
	nextID       int64
	candidates   map[int64]storage.Candidate
	byEmail      map[string]int64
	applications map[[2]int64]storage.Application

	upserts int
	creates int

	failApplicationFor map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		candidates:         make(map[int64]storage.Candidate),
		byEmail:            make(map[string]int64),
		applications:       make(map[[2]int64]storage.Application),
		failApplicationFor: make(map[string]error),
	}
}

type memSnapshot struct {
	nextID       int64
	candidates   map[int64]storage.Candidate
	byEmail      map[string]int64
	applications map[[2]int64]storage.Application
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		nextID:       s.nextID,
		candidates:   make(map[int64]storage.Candidate, len(s.candidates)),
		byEmail:      make(map[string]int64, len(s.byEmail)),
		applications: make(map[[2]int64]storage.Application, len(s.applications)),
	}
	for k, v := range s.candidates {
		snap.candidates[k] = v
	}
	for k, v := range s.byEmail {
		snap.byEmail[k] = v
	}
	for k, v := range s.applications {
		snap.applications[k] = v
	}
	return snap
}

func (s *memStore) InTx(_ context.Context, fn func(Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(memRepo{s}); err != nil {
		s.nextID, s.candidates, s.byEmail, s.applications = snap.nextID, snap.candidates, snap.byEmail, snap.applications
		return err
	}
	return nil
}

func (s *memStore) candidateByEmail(email string) (storage.Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return storage.Candidate{}, false
	}
	return s.candidates[id], true
}

func (s *memStore) counts() (candidates, applications int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.candidates), len(s.applications)
}

type memRepo struct {
	s *memStore
}

func (r memRepo) UpsertCandidateByEmail(_ context.Context, c *storage.Candidate) (int64, error) {
	r.s.upserts++
	if id, ok := r.s.byEmail[c.Email]; ok {
		merged := *c
		merged.ID = id
		merged.CreatedAt = r.s.candidates[id].CreatedAt
		r.s.candidates[id] = merged
		return id, nil
	}
	r.s.nextID++
	stored := *c
	stored.ID = r.s.nextID
	r.s.candidates[stored.ID] = stored
	r.s.byEmail[c.Email] = stored.ID
	return stored.ID, nil
}

func (r memRepo) FindCandidateByID(_ context.Context, id int64) (*storage.Candidate, error) {
	c, ok := r.s.candidates[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (r memRepo) CreateApplication(_ context.Context, a *storage.Application) (*storage.Application, error) {
	r.s.creates++
	if err := r.s.failApplicationFor[r.s.candidates[a.CandidateID].Email]; err != nil {
		return nil, err
	}
	key := [2]int64{a.CandidateID, a.VacancyID}
	if _, exists := r.s.applications[key]; exists {
		return nil, storage.ErrApplicationExists
	}
	r.s.nextID++
	stored := *a
	stored.ID = r.s.nextID
	r.s.applications[key] = stored
	return &stored, nil
}

func (r memRepo) FindApplication(_ context.Context, candidateID, vacancyID int64) (*storage.Application, error) {
	a, ok := r.s.applications[[2]int64{candidateID, vacancyID}]
	if !ok {
		return nil, errors.New("application not found")
	}
	return &a, nil
}

// candidatesJSON renders a completion listing one approved candidate per email.
func candidatesJSON(emails ...string) string {
	records := make([]map[string]any, 0, len(emails))
	for _, email := range emails {
		records = append(records, map[string]any{
			"name":               "Candidate " + email,
			"email":              email,
			"status":             "approved",
			"ai_reason":          "Matches the vacancy.",
			"general_experience": 3,
			"skills":             []string{"Node.js"},
		})
	}
	b, _ := json.Marshal(records)
	return string(b)
}

func pdfFiles(n int) []UploadFile {
	files := make([]UploadFile, n)
	for i := range files {
		files[i] = UploadFile{Name: fmt.Sprintf("cv%02d.pdf", i+1), Data: []byte("%PDF-1.4")}
	}
	return files
}
