package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"talenttrack/internal/llm"
)

// ErrUnexpectedShape is returned when the completion is valid JSON but neither an
// array nor an object.
var ErrUnexpectedShape = errors.New("unexpected completion shape")

// RawRecord is one candidate-shaped object exactly as the model returned it.
type RawRecord map[string]any

// CandidateRecord is a validated, coerced extraction result.
type CandidateRecord struct {
	Name              string
	Email             string
	DateOfBirth       string
	Phone             string
	Occupation        string
	Summary           string
	Experience        json.RawMessage
	Skills            json.RawMessage
	Languages         json.RawMessage
	Education         json.RawMessage
	References        json.RawMessage
	GeneralExperience int
	Status            string
	AIReason          string
}

// ParseCompletion decodes completion text into raw records. It accepts a bare
// array, an object wrapping the array under "candidates", or a single object.
func ParseCompletion(text string) ([]RawRecord, error) {
	cleaned := llm.CleanJSONBlock(text)

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse completion JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse completion JSON: trailing data after top-level value")
	}

	switch v := parsed.(type) {
	case []any:
		return objects(v), nil
	case map[string]any:
		switch inner := v["candidates"].(type) {
		case []any:
			return objects(inner), nil
		case map[string]any:
			return []RawRecord{inner}, nil
		}
		return []RawRecord{v}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedShape, parsed)
	}
}

// objects keeps the object elements of an array and drops anything else.
func objects(items []any) []RawRecord {
	out := make([]RawRecord, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

const recordSchema = `{
  "type": "object",
  "required": ["name", "email"],
  "properties": {
    "name":  {"type": "string", "pattern": "\\S"},
    "email": {"type": "string", "pattern": "\\S"}
  }
}`

var compiledRecordSchema = mustCompileSchema(recordSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("extraction: invalid record schema: %v", err))
	}
	return s
}

// FieldError describes one failed requirement of a raw record.
type FieldError struct {
	Field   string
	Message string
}

// InvalidRecordError is returned by Normalize for records missing required fields.
type InvalidRecordError struct {
	Errors []FieldError
}

func (e *InvalidRecordError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid candidate record: " + strings.Join(parts, "; ")
}

// Normalize validates the required fields of raw and coerces the rest best-effort.
func Normalize(raw RawRecord) (CandidateRecord, error) {
	result, err := compiledRecordSchema.Validate(gojsonschema.NewGoLoader(map[string]any(raw)))
	if err != nil {
		return CandidateRecord{}, fmt.Errorf("validate candidate record: %w", err)
	}
	if !result.Valid() {
		invalid := &InvalidRecordError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" || field == "(root)" {
				if prop, ok := desc.Details()["property"].(string); ok {
					field = prop
				} else {
					field = "(root)"
				}
			}
			invalid.Errors = append(invalid.Errors, FieldError{Field: field, Message: desc.Description()})
		}
		return CandidateRecord{}, invalid
	}

	phone := stringField(raw, "phone_number")
	if phone == "" {
		phone = stringField(raw, "phone")
	}

	return CandidateRecord{
		Name:              stringField(raw, "name"),
		Email:             NormalizeEmail(stringField(raw, "email")),
		DateOfBirth:       stringField(raw, "date_of_birth"),
		Phone:             phone,
		Occupation:        stringField(raw, "occupation"),
		Summary:           stringField(raw, "summary"),
		Experience:        rawField(raw, "experience"),
		Skills:            rawField(raw, "skills"),
		Languages:         rawField(raw, "languages"),
		Education:         rawField(raw, "education"),
		References:        rawField(raw, "references"),
		GeneralExperience: intField(raw, "general_experience"),
		Status:            strings.ToLower(stringField(raw, "status")),
		AIReason:          stringField(raw, "ai_reason"),
	}, nil
}

// NormalizeEmail is the canonical form used for storage and dedup keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func stringField(raw RawRecord, key string) string {
	switch v := raw[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// rawField passes a value through unmodified; absent or null becomes nil.
func rawField(raw RawRecord, key string) json.RawMessage {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func intField(raw RawRecord, key string) int {
	var f float64
	switch v := raw[key].(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	// values outside the INTEGER column are treated as unknown
	f = math.Round(f)
	if math.IsNaN(f) || f <= 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
