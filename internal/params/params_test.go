package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantPage   int
		wantOffset int
	}{
		{"defaults", "", 15, 1, 0},
		{"explicit", "limit=10&page=3", 10, 3, 20},
		{"limit capped at 30", "limit=100", 30, 1, 0},
		{"zero limit falls back", "limit=0", 15, 1, 0},
		{"negative page ignored", "page=-2", 15, 1, 0},
		{"garbage ignored", "limit=abc&page=xyz", 15, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			p := ParsePagination(q)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 10, Page: 2, Offset: 10}
	p.ComputeMeta(25)

	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)

	p.Page = 3
	p.ComputeMeta(25)
	assert.False(t, p.HasNext)
}
