package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// renderNotes turns the extracted references into the free-text notes column,
// one reference per line.
func renderNotes(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}

	switch refs := v.(type) {
	case []any:
		lines := make([]string, 0, len(refs))
		for _, ref := range refs {
			if line := renderReference(ref); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	default:
		return renderReference(refs)
	}
}

func renderReference(ref any) string {
	switch r := ref.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(r)
	case map[string]any:
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if val := renderReference(r[k]); val != "" {
				parts = append(parts, k+": "+val)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(r)
	}
}
