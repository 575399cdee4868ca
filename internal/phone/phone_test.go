package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"us formatted", "+1 (555) 123-4567", "15551234567"},
		{"dots and spaces", "380.63 123 45 67", "380631234567"},
		{"already digits", "0631234567", "0631234567"},
		{"letters dropped", "call 555", "555"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestSearchVariantsBridgesLocalPrefix(t *testing.T) {
	variants := SearchVariants("+380 63 123 45 67")
	assert.Contains(t, variants, "380631234567")
	assert.Contains(t, variants, "0631234567")
	assert.Equal(t, "380631234567", variants[0])
}

func TestSearchVariantsFromLocalForm(t *testing.T) {
	variants := SearchVariants("063 123 45 67")
	assert.Contains(t, variants, "0631234567")
	assert.Contains(t, variants, "380631234567")
}

func TestSearchVariantsEmpty(t *testing.T) {
	assert.Nil(t, SearchVariants("abc"))
}

func TestSearchVariantsDeduplicates(t *testing.T) {
	variants := SearchVariants("15551234567")
	seen := map[string]bool{}
	for _, v := range variants {
		assert.False(t, seen[v], "duplicate variant %s", v)
		seen[v] = true
	}
}
