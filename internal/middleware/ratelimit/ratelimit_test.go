package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 3})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestClientsAreIndependent(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1})
	defer l.Stop()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestZeroConfigFallsBackToDefaults(t *testing.T) {
	l := NewLimiter(Config{})
	defer l.Stop()

	assert.Equal(t, DefaultConfig().RequestsPerMinute, l.requestsPerMinute)
	assert.Equal(t, DefaultConfig().CleanupInterval, l.cleanupInterval)
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1})
	l.Stop()
	l.Stop()
}
