package paper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFURL(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"https://arxiv.org/abs/2408.07712", "https://arxiv.org/pdf/2408.07712.pdf"},
		{"https://arxiv.org/abs/2408.07712v2", "https://arxiv.org/pdf/2408.07712v2.pdf"},
		{"https://arxiv.org/pdf/2408.07712.pdf", "https://arxiv.org/pdf/2408.07712.pdf"},
		{"  https://arxiv.org/abs/1  ", "https://arxiv.org/pdf/1.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, PDFURL(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "héé", Truncate("hééllo", 3))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestTextDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pdf/2408.07712.pdf", r.URL.Path)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	f := &Fetcher{HTTPClient: srv.Client()}
	_, err := f.Text(context.Background(), srv.URL+"/abs/2408.07712")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestExtractTextRejectsGarbage(t *testing.T) {
	_, err := ExtractText([]byte("definitely not a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open pdf")
}
