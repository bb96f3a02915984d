// Package codec builds batch generation prompts and parses the model's JSON
// replies into validated incident records.
package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/incident-generator/internal/config"
	"github.com/jonathan/incident-generator/internal/prompts"
)

// SystemPrompt returns the system instruction enforcing English-only,
// JSON-array-only incident output.
func SystemPrompt() string {
	return prompts.MustGet(prompts.GenerationFile, "system")
}

// BuildPrompt produces the user prompt requesting exactly count incident
// records, numbered sequentially from startNumber, constrained to the
// taxonomy when one is configured.
func BuildPrompt(count, startNumber int, taxonomy *config.Taxonomy) string {
	var sb strings.Builder

	header := prompts.MustGet(prompts.GenerationFile, "batch_header")
	sb.WriteString(prompts.Format(header, map[string]string{
		"Count":         fmt.Sprintf("%d", count),
		"StartNumber":   fmt.Sprintf("%d", startNumber),
		"EndNumber":     fmt.Sprintf("%d", startNumber+count-1),
		"CategoryRules": categoryRules(taxonomy),
	}))
	sb.WriteString("\n\n")

	fields := prompts.MustGet(prompts.GenerationFile, "batch_fields")
	sb.WriteString(prompts.Format(fields, map[string]string{
		"StartPadded": fmt.Sprintf("%06d", startNumber),
	}))
	sb.WriteString("\n\n")

	sb.WriteString(prompts.MustGet(prompts.GenerationFile, "batch_footer"))
	return sb.String()
}

// categoryRules renders the taxonomy constraint block, or nothing when the
// taxonomy is absent (open-world generation).
func categoryRules(taxonomy *config.Taxonomy) string {
	if taxonomy == nil || taxonomy.Empty() {
		return ""
	}

	var sb strings.Builder

	if len(taxonomy.TopCategories) > 0 {
		top := prompts.MustGet(prompts.GenerationFile, "taxonomy_top")
		sb.WriteString(prompts.Format(top, map[string]string{
			"List": quotedList(taxonomy.TopCategories),
		}))
	}
	if len(taxonomy.SubCategories) > 0 {
		sb.WriteString(prompts.MustGet(prompts.GenerationFile, "taxonomy_sub"))
		writeCategoryMap(&sb, taxonomy.SubCategories)
	}
	if len(taxonomy.SpecificCategories) > 0 {
		sb.WriteString(prompts.MustGet(prompts.GenerationFile, "taxonomy_specific"))
		writeCategoryMap(&sb, taxonomy.SpecificCategories)
	}

	return sb.String()
}

// writeCategoryMap appends "  - Top: "a", "b"" lines in stable key order so
// prompts are deterministic across runs.
func writeCategoryMap(sb *strings.Builder, m map[string][]string) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf("\n  - %s: %s", key, quotedList(m[key])))
	}
}

func quotedList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
