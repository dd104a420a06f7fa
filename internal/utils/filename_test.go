package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain title", "Riyadh as-Salihin", "Riyadh as-Salihin"},
		{"path separators removed", "Fiqh/Usul: Volume\\One", "FiqhUsul VolumeOne"},
		{"quotes and wildcards removed", `"Tafsir" *complete?*`, "Tafsir complete"},
		{"newlines and tabs collapse", "The\nForty\tHadith", "The Forty Hadith"},
		{"multiple spaces collapse", "Sahih   al-Bukhari", "Sahih al-Bukhari"},
		{"empty becomes fallback", "", "book"},
		{"only invalid chars becomes fallback", `<>:"/\|?*`, "book"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}

	t.Run("long titles are capped", func(t *testing.T) {
		long := strings.Repeat("a", 300)
		assert.LessOrEqual(t, len(SanitizeFilename(long)), 200)
	})
}
