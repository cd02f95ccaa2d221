package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPLimiters_DropsIdleClients(t *testing.T) {
	t.Parallel()

	l := newIPLimiters(rate.Every(time.Second), 1)
	t0 := time.Now()

	assert.True(t, l.allow("10.0.0.1", t0))
	assert.False(t, l.allow("10.0.0.1", t0), "burst of one is spent")
	assert.True(t, l.allow("10.0.0.2", t0.Add(time.Minute)))
	assert.Equal(t, 2, l.size())

	// Past the idle window only the client seen since is kept.
	later := t0.Add(limiterIdleTTL + 30*time.Second)
	assert.True(t, l.allow("10.0.0.2", later))
	assert.Equal(t, 1, l.size())
	assert.True(t, l.allow("10.0.0.1", later), "a dropped client starts with a full bucket")
}

func TestIPLimiters_TTLCoversRefill(t *testing.T) {
	t.Parallel()

	l := newIPLimiters(rate.Every(time.Hour), 1)
	assert.InDelta(t, float64(time.Hour), float64(l.ttl), float64(time.Millisecond))

	assert.Equal(t, limiterIdleTTL, newIPLimiters(10, 5).ttl)
	assert.Equal(t, limiterIdleTTL, newIPLimiters(rate.Inf, 0).ttl)
}
