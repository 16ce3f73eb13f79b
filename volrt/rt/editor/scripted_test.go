package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScripted_AppliesEditsOnce(t *testing.T) {
	w := NewScripted()
	w.Floats["Step"] = 10
	w.Choices["Kind"] = 2

	var step float32 = 1
	assert.True(t, w.SliderFloat("Step", &step, 0, 3))
	assert.Equal(t, float32(3), step)
	assert.False(t, w.SliderFloat("Step", &step, 0, 3))

	var kind int32
	assert.True(t, w.Combo("Kind", &kind, []string{"a", "b", "c"}))
	assert.Equal(t, int32(2), kind)

	var on bool
	assert.False(t, w.Checkbox("Jitter", &on))
	assert.True(t, w.Showed("Jitter"))
	assert.False(t, w.Showed("Missing"))
}

func TestScripted_ComboOutOfRange(t *testing.T) {
	w := NewScripted()
	w.Choices["Kind"] = 7
	var kind int32 = 1
	assert.False(t, w.Combo("Kind", &kind, []string{"a", "b"}))
	assert.Equal(t, int32(1), kind)
}

var _ Widgets = ImGui{}
var _ Widgets = (*Scripted)(nil)
