package editor

import (
	"github.com/inkyblackness/imgui-go/v4"
)

// ImGui draws widgets into the current Dear ImGui window. The caller owns the
// context and the frame.
type ImGui struct{}

func (ImGui) ColorEdit3(label string, c *[3]float32) bool {
	return imgui.ColorEdit3V(label, c, 0)
}

func (ImGui) Checkbox(label string, v *bool) bool {
	return imgui.Checkbox(label, v)
}

func (ImGui) SliderFloat(label string, v *float32, min, max float32) bool {
	return imgui.SliderFloat(label, v, min, max)
}

func (ImGui) SliderInt(label string, v *int32, min, max int32) bool {
	return imgui.SliderInt(label, v, min, max)
}

func (ImGui) Combo(label string, current *int32, items []string) bool {
	preview := ""
	if int(*current) >= 0 && int(*current) < len(items) {
		preview = items[*current]
	}
	changed := false
	if imgui.BeginCombo(label, preview) {
		for i, item := range items {
			isSelected := int32(i) == *current
			if imgui.SelectableV(item, isSelected, 0, imgui.Vec2{}) {
				changed = int32(i) != *current
				*current = int32(i)
			}
			if isSelected {
				imgui.SetItemDefaultFocus()
			}
		}
		imgui.EndCombo()
	}
	return changed
}
