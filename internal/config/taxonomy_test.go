package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func hardwareTaxonomy() Taxonomy {
	return Taxonomy{
		TopCategories: []string{"Hardware", "Software"},
		SubCategories: map[string][]string{
			"Hardware": {"Desktop", "Laptop"},
			"Software": {"Office", "Email"},
		},
	}
}

func TestTaxonomyAllows(t *testing.T) {
	tax := hardwareTaxonomy()

	tests := []struct {
		name string
		top  string
		sub  string
		want bool
	}{
		{name: "allowed pair", top: "Hardware", sub: "Desktop", want: true},
		{name: "sub not in taxonomy", top: "Hardware", sub: "Server", want: false},
		{name: "unknown top", top: "Network", sub: "Desktop", want: false},
		{name: "sub from other top", top: "Hardware", sub: "Office", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := tax.Allows(tt.top, tt.sub, "anything")
			assert.Equal(t, tt.want, ok)
			if !tt.want {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestTaxonomyAllows_SpecificCategories(t *testing.T) {
	tax := Taxonomy{
		SpecificCategories: map[string][]string{
			"Hardware": {"Monitor defect", "Printer offline"},
		},
	}

	ok, _ := tax.Allows("Hardware", "Desktop", "Monitor defect")
	assert.True(t, ok)

	ok, reason := tax.Allows("Hardware", "Desktop", "Keyboard broken")
	assert.False(t, ok)
	assert.Contains(t, reason, "Keyboard broken")
}

func TestTaxonomyAllows_OpenWorld(t *testing.T) {
	var tax Taxonomy
	assert.True(t, tax.Empty())

	ok, _ := tax.Allows("Anything", "Goes", "Here")
	assert.True(t, ok)
}

func TestTaxonomyValidate(t *testing.T) {
	tax := Taxonomy{
		TopCategories: []string{"Hardware"},
		SubCategories: map[string][]string{"Network": {"LAN"}},
	}
	assert.Error(t, tax.Validate())

	valid := hardwareTaxonomy()
	assert.NoError(t, valid.Validate())
}
