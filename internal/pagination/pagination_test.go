package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClampsRequestedPage(t *testing.T) {
	cases := []struct {
		name      string
		total     int64
		requested int
		number    int
		numPages  int
	}{
		{"first page", 13, 1, 1, 2},
		{"last page", 13, 2, 2, 2},
		{"beyond last", 13, 7, 2, 2},
		{"zero", 13, 0, 1, 2},
		{"negative", 13, -3, 1, 2},
		{"empty listing", 0, 3, 1, 1},
		{"exact multiple", 20, 3, 2, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.total, 10, tc.requested)
			assert.Equal(t, tc.number, p.Number)
			assert.Equal(t, tc.numPages, p.NumPages)
			assert.Equal(t, tc.total, p.Total)
		})
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 1, ParseNumber(""))
	assert.Equal(t, 1, ParseNumber("abc"))
	assert.Equal(t, 3, ParseNumber("3"))
	assert.Equal(t, -1, ParseNumber("-1"))
}

func TestNavigation(t *testing.T) {
	p := New(25, 10, 2)
	assert.True(t, p.HasPrevious())
	assert.True(t, p.HasNext())
	assert.Equal(t, 1, p.PreviousNumber())
	assert.Equal(t, 3, p.NextNumber())
	assert.Equal(t, 10, p.Offset())

	last := New(25, 10, 3)
	assert.False(t, last.HasNext())
}
