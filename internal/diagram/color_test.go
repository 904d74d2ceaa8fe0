package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorOfNamed(t *testing.T) {
	tests := map[string]string{
		"red":    "rgb(255, 0, 0, 0.2)",
		"green":  "rgb(0, 255, 0, 0.1)",
		"blue":   "rgb(0, 0, 255, 0.1)",
		"yellow": "rgb(255, 255, 0, 0.5)",
		"gray":   "rgb(0, 0, 0, 0.1)",
	}
	for name, want := range tests {
		assert.Equal(t, want, ColorOf(name).String(), name)
	}
}

func TestColorOfFallback(t *testing.T) {
	for _, name := range []string{"", "Red", " red", "purple", "rgb(1,2,3)", "\x00"} {
		r, g, b, a := ColorOf(name).RGBA()
		assert.Equal(t, uint8(0), r, name)
		assert.Equal(t, uint8(0), g, name)
		assert.Equal(t, uint8(0), b, name)
		assert.Equal(t, 0.0, a, name)
		assert.Equal(t, "rgb(0, 0, 0, 0)", ColorOf(name).String())
	}
}

func TestColorNames(t *testing.T) {
	assert.Equal(t, []string{"blue", "gray", "green", "red", "yellow"}, ColorNames())
}

func TestKnownColor(t *testing.T) {
	assert.True(t, KnownColor("yellow"))
	assert.False(t, KnownColor("Yellow"))
	assert.False(t, KnownColor(""))
}
