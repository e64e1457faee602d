package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	// Same point.
	assert.InDelta(t, 0, Distance(48.8566, 2.3522, 48.8566, 2.3522), 1e-9)

	// Paris to London is roughly 344 km.
	d := Distance(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344, d, 5)

	// Symmetric.
	assert.InDelta(t, d, Distance(51.5074, -0.1278, 48.8566, 2.3522), 1e-9)
}

func TestMilesToKm(t *testing.T) {
	assert.InDelta(t, 80.467, MilesToKm(50), 0.01)
}
