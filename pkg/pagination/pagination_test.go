package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Page: 1, PerPage: 10, Offset: 0}},
		{"explicit", "?page=3&per_page=20", Params{Page: 3, PerPage: 20, Offset: 40}},
		{"garbage ignored", "?page=abc&per_page=-4", Params{Page: 1, PerPage: 10, Offset: 0}},
		{"capped", "?page=2&per_page=500", Params{Page: 2, PerPage: 100, Offset: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/products"+tt.query, nil)
			assert.Equal(t, tt.want, FromRequest(r))
		})
	}
}
