// Package editor holds the immediate-mode widget surface the material menus
// draw into.
package editor

// Widgets is the subset of an immediate-mode GUI the menus use. Every call
// edits its value in place and reports whether the user changed it.
type Widgets interface {
	ColorEdit3(label string, c *[3]float32) bool
	Checkbox(label string, v *bool) bool
	SliderFloat(label string, v *float32, min, max float32) bool
	SliderInt(label string, v *int32, min, max int32) bool
	Combo(label string, current *int32, items []string) bool
}
