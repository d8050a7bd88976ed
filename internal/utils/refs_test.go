package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRef(t *testing.T) {
	assert.Equal(t, "abc123", NormalizeRef("  ABC123 "))
	assert.True(t, SameRef("abc123", "ABC123 "))
	assert.False(t, SameRef("abc123", "abc124"))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "XYZ", Prefix("XYZ123", 3))
	assert.Equal(t, "XY", Prefix("XY", 3))
	assert.Equal(t, "Éle", Prefix("Électro", 3))
	assert.Equal(t, "", Prefix("", 3))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Lave linge", Clean(" Lave  linge  "))
}
