package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	assert.Equal(t, "+14155552671", NormalizeE164("(415) 555-2671", "US"))
	assert.Equal(t, "+14155552671", NormalizeE164(" +1 415 555 2671 ", "us"))
	assert.Equal(t, "call me", NormalizeE164(" call me ", "US"))
	assert.Equal(t, "", NormalizeE164("   ", "US"))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "(415) 555-2671", Display("4155552671", "US"))
	assert.Equal(t, "+44 20 7946 0958", Display("+442079460958", "US"))
}

func TestIsDialable(t *testing.T) {
	assert.True(t, IsDialable("415-555-2671", "US"))
	assert.False(t, IsDialable("12", "US"))
}
