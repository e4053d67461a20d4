// Package extraction builds the CV extraction prompt and turns completion output
// into validated candidate records.
package extraction

import (
	"fmt"
	"strings"
)

// CVSeparator delimits CVs inside one prompt.
const CVSeparator = "----- CV SEPARATOR -----"

const notSpecified = "(not specified)"

// candidateFields is the exact object shape requested from the model.
var candidateFields = []struct {
	name string
	hint string
}{
	{"name", `"string" (full name)`},
	{"email", `"string"`},
	{"date_of_birth", `"string" (YYYY-MM-DD if known, otherwise "")`},
	{"phone", `"string"`},
	{"occupation", `"string" (current or most recent role)`},
	{"summary", `"string" (2-3 sentences)`},
	{"experience", `[{"company": "string", "position": "string", "start_year": number, "end_year": number or null, "description": "string"}]`},
	{"skills", `["string"]`},
	{"languages", `["string"]`},
	{"education", `[{"institution": "string", "degree": "string", "field": "string", "graduation_year": number or null}]`},
	{"references", `["string"]`},
	{"general_experience", `number (integer, total years)`},
	{"status", `"approved" | "rejected"`},
	{"ai_reason", `"string" (1-2 sentences)`},
}

const exampleObject = `{
  "name": "Maria Example",
  "email": "maria.example@example.com",
  "date_of_birth": "1990-04-12",
  "phone": "+1 555 0100",
  "occupation": "Backend Developer",
  "summary": "Backend developer focused on APIs and data pipelines.",
  "experience": [
    {"company": "Acme Corp", "position": "Backend Developer", "start_year": 2018, "end_year": 2022, "description": "Built REST services."},
    {"company": "Globex", "position": "Junior Developer", "start_year": 2016, "end_year": 2018, "description": "Maintained internal tools."}
  ],
  "skills": ["Node.js", "PostgreSQL"],
  "languages": ["English", "Spanish"],
  "education": [{"institution": "State University", "degree": "BSc", "field": "Computer Science", "graduation_year": 2016}],
  "references": [],
  "general_experience": 6,
  "status": "approved",
  "ai_reason": "Six years of backend work with Node.js match the vacancy requirements."
}`

// BuildPrompt renders one extraction prompt for a batch of cleaned CV texts.
// The output depends only on its inputs.
func BuildPrompt(texts []string, vacancyTitle, filter string) string {
	title := strings.TrimSpace(vacancyTitle)
	if title == "" {
		title = notSpecified
	}
	skills := strings.TrimSpace(filter)
	if skills == "" {
		skills = notSpecified
	}

	var sb strings.Builder

	sb.WriteString("You are an expert recruiter and CV parser. ")
	fmt.Fprintf(&sb, "You will receive %d CV(s). Extract one candidate object per CV.\n\n", len(texts))

	sb.WriteString("OUTPUT CONTRACT:\n")
	sb.WriteString("- Return ONLY a JSON array, no text outside JSON. No markdown, no explanation, no code blocks.\n")
	sb.WriteString("- Each element of the array must be an object with exactly these fields:\n")
	for _, f := range candidateFields {
		fmt.Fprintf(&sb, "  \"%s\": %s\n", f.name, f.hint)
	}
	sb.WriteString("\n")

	sb.WriteString("RULES:\n")
	sb.WriteString("- If the years of an experience entry are not explicit, estimate them from the context of the CV.\n")
	sb.WriteString("- \"general_experience\" is the sum of the year spans (end_year - start_year) of all experience entries; use the current year for ongoing positions.\n")
	fmt.Fprintf(&sb, "- Vacancy title: %s\n", title)
	fmt.Fprintf(&sb, "- Desired skills / filters: %s\n", skills)
	sb.WriteString("- Set \"status\" to \"approved\" if the candidate's profile satisfies the vacancy title and the desired skills, otherwise \"rejected\".\n")
	sb.WriteString("- Justify the status in \"ai_reason\" with 1-2 sentences.\n")
	sb.WriteString("- Use \"\" for unknown strings and [] for unknown lists. Never invent an email address.\n")
	fmt.Fprintf(&sb, "- CVs are delimited by the line %q. Never merge data from different CVs.\n\n", CVSeparator)

	sb.WriteString("EXAMPLE (format reference only, don't use this data):\n")
	sb.WriteString(exampleObject)
	sb.WriteString("\n\n")

	sb.WriteString("CVs:\n")
	for i, text := range texts {
		sb.WriteString(CVSeparator)
		fmt.Fprintf(&sb, "\nCV %d:\n", i+1)
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	sb.WriteString(CVSeparator)
	sb.WriteString("\n")

	return sb.String()
}
