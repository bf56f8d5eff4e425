package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yildizm/DiagSum/internal/stats"
)

func TestSetByName(t *testing.T) {
	t.Cleanup(func() { Set(&DefaultTheme) })

	for _, name := range Available() {
		assert.True(t, SetByName(name), name)
		assert.Equal(t, name, Get().Name)
	}
	assert.False(t, SetByName("neon"))
	assert.Equal(t, "minimal", Get().Name)
}

func TestLatencyStyle(t *testing.T) {
	s := GetStyles()
	dist := stats.Summarize([]float64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000})

	assert.Equal(t, s.Error, s.Latency(dist.Max+1, dist))
	assert.Equal(t, s.Body, s.Latency(dist.P50, dist))
	assert.Equal(t, s.Body, s.Latency(5000, stats.Summary{}))
}
