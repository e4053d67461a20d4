package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"

	"talenttrack/internal/ingest"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// genericIngestError is the only detail clients get about pipeline failures.
const genericIngestError = "failed to process CVs"

// statusFor maps a pipeline error to a status code and a client-safe message.
func statusFor(err error) (int, string) {
	var intake *ingest.IntakeError
	if errors.As(err, &intake) {
		return http.StatusBadRequest, intake.Msg
	}
	return http.StatusInternalServerError, genericIngestError
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, ErrorResponse{Error: message})
}

// validationMessage renders the first failed rule of a validator error.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required", "gt":
			return fmt.Sprintf("%s must be a positive integer", fe.Field())
		case "max":
			if fe.Kind() == reflect.String {
				return fmt.Sprintf("%s is too long (max %s characters)", fe.Field(), fe.Param())
			}
			return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("validation error: %s - %s", fe.Field(), fe.Tag())
	}
	return "validation error: invalid request"
}
