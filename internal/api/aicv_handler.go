package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"talenttrack/internal/ingest"
	"talenttrack/internal/storage"
)

// cvFormField is the multipart field carrying the CV files.
const cvFormField = "cv[]"

// multipartMemory is how much of the form is held in memory before spilling to disk.
const multipartMemory = 32 << 20

type aicvForm struct {
	VacancyID    int64  `form:"vacancy_id" validate:"required,gt=0"`
	VacancyTitle string `form:"vacancyTitle" validate:"max=200"`
	Filter       string `form:"vacancy_filter" validate:"max=2000"`
}

// AICVResponse is returned when an upload was processed.
type AICVResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    []ingest.Entry      `json:"data"`
	Errors  []ingest.BatchError `json:"errors,omitempty"`
}

// AICVHandler ingests uploaded CVs for a vacancy
// @Summary Ingest CVs with AI extraction
// @Description Upload up to 50 PDF CVs. Each CV is converted to text, sent in batches of 5 to the
// @Description language model for structured extraction, and every valid candidate is upserted by
// @Description email and linked to the vacancy through an application.
// @Tags cv
// @Accept multipart/form-data
// @Produce json
// @Param cv[] formData file true "CV files (PDF), repeat the field for several files"
// @Param vacancy_id formData int true "Vacancy ID"
// @Param vacancyTitle formData string false "Vacancy title"
// @Param vacancy_filter formData string false "Desired skills or keywords"
// @Success 201 {object} AICVResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 405 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /aicv/ [post]
func (a *API) AICVHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tooLargeMsg := fmt.Sprintf("upload too large (max %d MB)", a.maxUploadBytes>>20)
	if r.ContentLength > a.maxUploadBytes {
		errorResponse(w, http.StatusBadRequest, tooLargeMsg)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorResponse(w, http.StatusBadRequest, tooLargeMsg)
			return
		}
		errorResponse(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[cvFormField]
	if len(headers) == 0 {
		errorResponse(w, http.StatusBadRequest, "no CV files uploaded")
		return
	}
	if len(headers) > a.maxFiles {
		errorResponse(w, http.StatusBadRequest, fmt.Sprintf("too many files: %d (max %d)", len(headers), a.maxFiles))
		return
	}

	form, err := a.parseAICVForm(r)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	vacancy, err := a.store.GetVacancy(r.Context(), form.VacancyID)
	if errors.Is(err, storage.ErrNotFound) {
		errorResponse(w, http.StatusNotFound, "vacancy not found")
		return
	}
	if err != nil {
		log.Printf("vacancy lookup failed: %v", err)
		errorResponse(w, http.StatusInternalServerError, genericIngestError)
		return
	}
	if form.VacancyTitle == "" {
		form.VacancyTitle = vacancy.Title
	}

	files, err := readUploads(headers)
	if err != nil {
		log.Printf("reading upload failed: %v", err)
		errorResponse(w, http.StatusBadRequest, "could not read uploaded files")
		return
	}

	res, err := a.ingester.Ingest(r.Context(), ingest.UploadBatch{
		Files:        files,
		VacancyID:    form.VacancyID,
		VacancyTitle: form.VacancyTitle,
		Filter:       form.Filter,
	})
	if err != nil {
		status, msg := statusFor(err)
		log.Printf("CV ingestion for vacancy %d failed: %v", form.VacancyID, err)
		errorResponse(w, status, msg)
		return
	}

	jsonResponse(w, http.StatusCreated, AICVResponse{
		Success: true,
		Message: fmt.Sprintf("%d candidate(s) processed from %d file(s) (run %s)", len(res.Entries), len(files), res.RunID),
		Data:    res.Entries,
		Errors:  res.BatchErrors,
	})
}

func (a *API) parseAICVForm(r *http.Request) (aicvForm, error) {
	var form aicvForm

	rawID := strings.TrimSpace(r.FormValue("vacancy_id"))
	if rawID != "" {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return form, errors.New("vacancy_id must be a positive integer")
		}
		form.VacancyID = id
	}
	form.VacancyTitle = strings.TrimSpace(r.FormValue("vacancyTitle"))
	form.Filter = strings.TrimSpace(r.FormValue("vacancy_filter"))

	if err := a.validate.Struct(form); err != nil {
		return form, errors.New(validationMessage(err))
	}
	return form, nil
}

func readUploads(headers []*multipart.FileHeader) ([]ingest.UploadFile, error) {
	files := make([]ingest.UploadFile, 0, len(headers))
	for _, h := range headers {
		data, err := readUpload(h)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", h.Filename, err)
		}
		files = append(files, ingest.UploadFile{Name: h.Filename, Data: data})
	}
	return files, nil
}

func readUpload(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
