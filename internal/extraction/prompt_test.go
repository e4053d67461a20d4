package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_Contract(t *testing.T) {
	texts := []string{"Jane Doe jane@x.com Go developer", "John Roe john@x.com Node.js"}

	prompt := BuildPrompt(texts, "Backend Engineer", "Node.js, PostgreSQL")

	assert.Contains(t, prompt, "Return ONLY a JSON array, no text outside JSON")
	for _, field := range []string{
		"name", "email", "date_of_birth", "phone", "occupation", "summary", "experience",
		"skills", "languages", "education", "references", "general_experience", "status", "ai_reason",
	} {
		assert.Contains(t, prompt, `"`+field+`":`, "field %s missing from schema", field)
	}
	assert.Contains(t, prompt, "Vacancy title: Backend Engineer")
	assert.Contains(t, prompt, "Desired skills / filters: Node.js, PostgreSQL")
	assert.Contains(t, prompt, `"approved"`)
	assert.Contains(t, prompt, `"rejected"`)
	assert.Contains(t, prompt, "sum of the year spans")
	assert.Contains(t, prompt, "estimate")
	assert.Contains(t, prompt, "don't use this data")
}

func TestBuildPrompt_SeparatesEachCV(t *testing.T) {
	texts := []string{"first cv", "second cv", "third cv"}

	prompt := BuildPrompt(texts, "QA", "Selenium")
	cvSection := prompt[strings.Index(prompt, "CVs:\n"):]

	// one separator before each CV plus a closing one
	assert.Equal(t, len(texts)+1, strings.Count(cvSection, CVSeparator))
	first := strings.Index(cvSection, "first cv")
	second := strings.Index(cvSection, "second cv")
	third := strings.Index(cvSection, "third cv")
	assert.True(t, first < second && second < third, "CV order must be preserved")
	assert.Contains(t, cvSection, "CV 3:\nthird cv")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	texts := []string{"a", "b"}
	assert.Equal(t, BuildPrompt(texts, "t", "f"), BuildPrompt(texts, "t", "f"))
}

func TestBuildPrompt_EmptyFilters(t *testing.T) {
	prompt := BuildPrompt([]string{"cv"}, "  ", "")

	assert.Contains(t, prompt, "Vacancy title: (not specified)")
	assert.Contains(t, prompt, "Desired skills / filters: (not specified)")
}
