package api

import (
	"errors"
	"net/http"
	"strconv"

	"talenttrack/internal/storage"
)

type listApplicationsQuery struct {
	VacancyID int64  `form:"id" validate:"gt=0"`
	Status    string `form:"status" validate:"omitempty,oneof=pending interview offered accepted rejected"`
	Limit     uint64 `form:"limit" validate:"max=200"`
	Offset    uint64 `form:"offset"`
}

// ListApplicationsHandler lists the applications of a vacancy
// @Summary List vacancy applications
// @Description List applications of a vacancy joined with their candidates, oldest first
// @Tags applications
// @Produce json
// @Param id path int true "Vacancy ID"
// @Param status query string false "Application status" Enums(pending, interview, offered, accepted, rejected)
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} storage.ApplicationView
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /vacancies/{id}/applications [get]
func (a *API) ListApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	q, err := a.parseListApplications(r)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := a.store.ListApplications(r.Context(), storage.ApplicationFilter{
		VacancyID: q.VacancyID,
		Status:    q.Status,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		log.Printf("listing applications for vacancy %d failed: %v", q.VacancyID, err)
		errorResponse(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	jsonResponse(w, http.StatusOK, views)
}

func (a *API) parseListApplications(r *http.Request) (listApplicationsQuery, error) {
	var q listApplicationsQuery

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return q, errors.New("id must be a positive integer")
	}
	q.VacancyID = id
	q.Status = r.URL.Query().Get("status")

	if q.Limit, err = uintParam(r, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = uintParam(r, "offset"); err != nil {
		return q, err
	}

	if err := a.validate.Struct(q); err != nil {
		return q, errors.New(validationMessage(err))
	}
	return q, nil
}

func uintParam(r *http.Request, name string) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return v, nil
}
