package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilities(t *testing.T) {
	caps := Capabilities{"screenshots", "gestures"}

	assert.True(t, caps.Has("screenshots"))
	assert.False(t, caps.Has("frames"))
	assert.False(t, Capabilities(nil).Has("screenshots"))

	assert.True(t, caps.HasAny("frames", "gestures"))
	assert.False(t, caps.HasAny("frames", "navigation"))
	assert.False(t, caps.HasAny())
}
