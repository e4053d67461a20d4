package extraction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompletion_ShapeTolerance(t *testing.T) {
	record := `{"name":"Jane Doe","email":"jane@x.com","status":"approved"}`

	tests := []struct {
		name string
		text string
	}{
		{"bare array", "[" + record + "]"},
		{"wrapped object", `{"candidates":[` + record + `]}`},
		{"single object", record},
		{"fenced", "```json\n[" + record + "]\n```"},
	}

	var baseline []RawRecord
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCompletion(tt.text)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Jane Doe", got[0]["name"])
			if i == 0 {
				baseline = got
			} else {
				assert.Equal(t, baseline, got)
			}
		})
	}
}

func TestParseCompletion_WrappedSingleObject(t *testing.T) {
	got, err := ParseCompletion(`{"candidates":{"name":"A","email":"a@x.com"}}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a@x.com", got[0]["email"])
}

func TestParseCompletion_DropsNonObjects(t *testing.T) {
	got, err := ParseCompletion(`[{"name":"A","email":"a@x.com"}, "junk", 42, null]`)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestParseCompletion_Errors(t *testing.T) {
	_, err := ParseCompletion(`[{"name": "A",`)
	assert.Error(t, err)

	_, err = ParseCompletion(`not json at all`)
	assert.Error(t, err)

	_, err = ParseCompletion(`[] trailing`)
	assert.Error(t, err)

	_, err = ParseCompletion(`"just a string"`)
	assert.True(t, errors.Is(err, ErrUnexpectedShape))

	_, err = ParseCompletion(`null`)
	assert.True(t, errors.Is(err, ErrUnexpectedShape))
}

func TestNormalize_RequiresNameAndEmail(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawRecord
		field string
	}{
		{"missing email", RawRecord{"name": "Jane"}, "email"},
		{"empty email", RawRecord{"name": "Jane", "email": "  "}, "email"},
		{"missing name", RawRecord{"email": "jane@x.com"}, "name"},
		{"non-string email", RawRecord{"name": "Jane", "email": 12}, "email"},
		{"null name", RawRecord{"name": nil, "email": "jane@x.com"}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			var invalid *InvalidRecordError
			require.ErrorAs(t, err, &invalid)
			require.NotEmpty(t, invalid.Errors)
			assert.Contains(t, invalid.Error(), tt.field)
		})
	}
}

func TestNormalize_Coercion(t *testing.T) {
	raws, err := ParseCompletion(`[{
		"name": " Jane Doe ",
		"email": "Jane@X.com ",
		"phone_number": "+1 555 0101",
		"phone": "ignored",
		"date_of_birth": "1991-02-03",
		"occupation": "Engineer",
		"summary": "Builds things.",
		"experience": [{"company": "Acme", "start_year": 2019, "end_year": 2023}],
		"skills": ["Go", "SQL"],
		"languages": null,
		"general_experience": "4.4",
		"status": "Approved",
		"ai_reason": "Matches."
	}]`)
	require.NoError(t, err)
	require.Len(t, raws, 1)

	rec, err := Normalize(raws[0])
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "jane@x.com", rec.Email)
	assert.Equal(t, "+1 555 0101", rec.Phone)
	assert.Equal(t, "1991-02-03", rec.DateOfBirth)
	assert.JSONEq(t, `[{"company":"Acme","start_year":2019,"end_year":2023}]`, string(rec.Experience))
	assert.JSONEq(t, `["Go","SQL"]`, string(rec.Skills))
	assert.Nil(t, rec.Languages, "null passes through as nil")
	assert.Nil(t, rec.Education, "absent passes through as nil")
	assert.Equal(t, 4, rec.GeneralExperience)
	assert.Equal(t, "approved", rec.Status)
	assert.Equal(t, "Matches.", rec.AIReason)
}

func TestNormalize_PhoneFallbackAndDefaults(t *testing.T) {
	rec, err := Normalize(RawRecord{"name": "A", "email": "a@x.com", "phone": "123"})
	require.NoError(t, err)
	assert.Equal(t, "123", rec.Phone)

	rec, err = Normalize(RawRecord{"name": "A", "email": "a@x.com", "general_experience": -3})
	require.NoError(t, err)
	assert.Equal(t, "", rec.Phone)
	assert.Equal(t, 0, rec.GeneralExperience)
	assert.Equal(t, "", rec.Status)
	assert.Equal(t, "", rec.AIReason)
}

func TestNormalize_OutOfRangeExperience(t *testing.T) {
	raws, err := ParseCompletion(`[
		{"name": "A", "email": "a@x.com", "general_experience": 1e300},
		{"name": "B", "email": "b@x.com", "general_experience": 3000000000},
		{"name": "C", "email": "c@x.com", "general_experience": "2147483647"},
		{"name": "D", "email": "d@x.com", "general_experience": 12.6}
	]`)
	require.NoError(t, err)
	require.Len(t, raws, 4)

	want := []int{0, 0, 2147483647, 13}
	for i, raw := range raws {
		rec, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, want[i], rec.GeneralExperience, rec.Email)
	}
}
