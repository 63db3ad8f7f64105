package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"emphasis", "**Elite** burst", "<p><strong>Elite</strong> burst</p>\n"},
		{"hard wraps", "line one\nline two", "<p>line one<br>\nline two</p>\n"},
		{"raw html escaped", "<script>alert(1)</script>", "<!-- raw HTML omitted -->\n"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToHTML_Linkify(t *testing.T) {
	got, err := ToHTML("film at https://example.com/clip")
	require.NoError(t, err)
	assert.Contains(t, got, `<a href="https://example.com/clip">`)
}
