package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/incident-generator/internal/config"
)

func TestSystemPrompt(t *testing.T) {
	sys := SystemPrompt()
	assert.Contains(t, sys, "IT Service Management")
	assert.Contains(t, sys, "JSON array")
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(5, 11, nil)

	assert.Contains(t, prompt, "Generate 5 incident records")
	assert.Contains(t, prompt, "sequential from 11 to 15")
	assert.Contains(t, prompt, `"INC000011"`)
	// all 21 field names are spelled out
	assert.Contains(t, prompt, `"Top-Category"`)
	assert.Contains(t, prompt, `"Business resolve time"`)
	assert.Contains(t, prompt, "Respond ONLY with the JSON array")
	// no taxonomy block without a taxonomy
	assert.NotContains(t, prompt, "Top-Categories:")
}

func TestBuildPrompt_WithTaxonomy(t *testing.T) {
	taxonomy := &config.Taxonomy{
		TopCategories: []string{"Hardware", "Software"},
		SubCategories: map[string][]string{
			"Hardware": {"Desktop", "Laptop"},
			"Software": {"Office"},
		},
		SpecificCategories: map[string][]string{
			"Hardware": {"Monitor defect"},
		},
	}

	prompt := BuildPrompt(3, 1, taxonomy)

	assert.Contains(t, prompt, `Use ONLY these Top-Categories: "Hardware", "Software"`)
	assert.Contains(t, prompt, `Hardware: "Desktop", "Laptop"`)
	assert.Contains(t, prompt, `Software: "Office"`)
	assert.Contains(t, prompt, `Hardware: "Monitor defect"`)
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	taxonomy := &config.Taxonomy{
		SubCategories: map[string][]string{
			"Hardware": {"Desktop"},
			"Network":  {"LAN"},
			"Software": {"Office"},
		},
	}

	first := BuildPrompt(2, 1, taxonomy)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildPrompt(2, 1, taxonomy))
	}
}
