package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharEstimator(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"one char", "a", 1},
		{"exact multiple", strings.Repeat("x", 40), 10},
		{"rounds up", strings.Repeat("x", 41), 11},
		{"eighty chars", strings.Repeat("y", 80), 20},
		{"counts characters not bytes", "日本語の", 1},
		{"astral characters count twice", "😀😀", 1},
		{"astral rounds up", "😀😀a", 2},
	}

	var counter CharEstimator
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, counter.Count(tt.text))
		})
	}
}

func TestNewTokenCounter(t *testing.T) {
	counter, err := NewTokenCounter("")
	require.NoError(t, err)
	assert.IsType(t, CharEstimator{}, counter)

	counter, err = NewTokenCounter("chars")
	require.NoError(t, err)
	assert.IsType(t, CharEstimator{}, counter)

	_, err = NewTokenCounter("words")
	assert.Error(t, err)
}

func TestTiktokenCounter(t *testing.T) {
	counter, err := NewTiktokenCounter("")
	if err != nil {
		t.Skipf("token encoding unavailable: %v", err)
	}

	assert.Equal(t, 0, counter.Count(""))
	assert.Greater(t, counter.Count("A watercolor painting of a lighthouse at dusk"), 0)
}
