package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 66.7, RoundFloat(66.666666, 1))
	assert.Equal(t, 33.3, RoundFloat(33.333333, 1))
	assert.Equal(t, 100.0, RoundFloat(99.999, 1))
}

func TestGrowthPercent(t *testing.T) {
	assert.Equal(t, 25.0, GrowthPercent(500, 400))
	assert.Equal(t, -50.0, GrowthPercent(200, 400))

	// Zero baseline never yields Inf.
	assert.Equal(t, 100.0, GrowthPercent(500, 0))
	assert.Equal(t, 0.0, GrowthPercent(0, 0))
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.5, SafeDivide(5, 2))
	assert.Equal(t, 0.0, SafeDivide(5, 0))
	assert.Equal(t, 0.0, SafeDivide(0, 0))
}
