package config

import (
	"fmt"
	"strings"
)

// Taxonomy is the optional user-supplied category constraint set. When a
// level is populated it is closed-world: every generated record's category
// at that level must come from the taxonomy. An empty level leaves the model
// free to invent values.
type Taxonomy struct {
	TopCategories      []string            `json:"top_categories,omitempty"`
	SubCategories      map[string][]string `json:"sub_categories,omitempty"`
	SpecificCategories map[string][]string `json:"specific_categories,omitempty"`
}

// Empty reports whether no constraints are configured at any level.
func (t *Taxonomy) Empty() bool {
	return len(t.TopCategories) == 0 && len(t.SubCategories) == 0 && len(t.SpecificCategories) == 0
}

// Allows reports whether a category triple is permitted. Matching is exact
// and case-sensitive; the returned reason is empty when the triple is allowed.
func (t *Taxonomy) Allows(top, sub, specific string) (bool, string) {
	if len(t.TopCategories) > 0 && !contains(t.TopCategories, top) {
		return false, fmt.Sprintf("Top-Category %q is not in the taxonomy", top)
	}
	if len(t.SubCategories) > 0 {
		allowed, ok := t.SubCategories[top]
		if !ok || !contains(allowed, sub) {
			return false, fmt.Sprintf("Sub-Category %q is not in the taxonomy for %q", sub, top)
		}
	}
	if len(t.SpecificCategories) > 0 {
		allowed, ok := t.SpecificCategories[top]
		if !ok || !contains(allowed, specific) {
			return false, fmt.Sprintf("Category %q is not in the taxonomy for %q", specific, top)
		}
	}
	return true, ""
}

// Validate rejects taxonomies whose sub/specific maps reference top
// categories excluded by the top-level list.
func (t *Taxonomy) Validate() error {
	if len(t.TopCategories) == 0 {
		return nil
	}
	for top := range t.SubCategories {
		if !contains(t.TopCategories, top) {
			return fmt.Errorf("config error: sub_categories references unknown top category %q", top)
		}
	}
	for top := range t.SpecificCategories {
		if !contains(t.TopCategories, top) {
			return fmt.Errorf("config error: specific_categories references unknown top category %q", top)
		}
	}
	return nil
}

func (t *Taxonomy) stripComments() {
	t.TopCategories = dropCommentValues(t.TopCategories)
	dropCommentKeys(t.SubCategories)
	dropCommentKeys(t.SpecificCategories)
}

func dropCommentKeys(m map[string][]string) {
	for key := range m {
		if strings.HasPrefix(key, "_") {
			delete(m, key)
		}
	}
}

func dropCommentValues(values []string) []string {
	kept := values[:0]
	for _, v := range values {
		if !strings.HasPrefix(v, "_") {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
