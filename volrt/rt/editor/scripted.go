package editor

// Scripted is a headless Widgets implementation. It records every widget
// shown and applies queued edits keyed by label, as if a user had made them.
type Scripted struct {
	Shown []string

	Floats  map[string]float32
	Ints    map[string]int32
	Bools   map[string]bool
	Colors  map[string][3]float32
	Choices map[string]int32
}

func NewScripted() *Scripted {
	return &Scripted{
		Floats:  map[string]float32{},
		Ints:    map[string]int32{},
		Bools:   map[string]bool{},
		Colors:  map[string][3]float32{},
		Choices: map[string]int32{},
	}
}

// Showed reports whether a widget with label was drawn.
func (s *Scripted) Showed(label string) bool {
	for _, l := range s.Shown {
		if l == label {
			return true
		}
	}
	return false
}

func (s *Scripted) ColorEdit3(label string, c *[3]float32) bool {
	s.Shown = append(s.Shown, label)
	v, ok := s.Colors[label]
	if !ok {
		return false
	}
	delete(s.Colors, label)
	*c = v
	return true
}

func (s *Scripted) Checkbox(label string, v *bool) bool {
	s.Shown = append(s.Shown, label)
	b, ok := s.Bools[label]
	if !ok {
		return false
	}
	delete(s.Bools, label)
	*v = b
	return true
}

func (s *Scripted) SliderFloat(label string, v *float32, lo, hi float32) bool {
	s.Shown = append(s.Shown, label)
	f, ok := s.Floats[label]
	if !ok {
		return false
	}
	delete(s.Floats, label)
	*v = min(max(f, lo), hi)
	return true
}

func (s *Scripted) SliderInt(label string, v *int32, lo, hi int32) bool {
	s.Shown = append(s.Shown, label)
	i, ok := s.Ints[label]
	if !ok {
		return false
	}
	delete(s.Ints, label)
	*v = min(max(i, lo), hi)
	return true
}

func (s *Scripted) Combo(label string, current *int32, items []string) bool {
	s.Shown = append(s.Shown, label)
	i, ok := s.Choices[label]
	if !ok || i < 0 || int(i) >= len(items) {
		return false
	}
	delete(s.Choices, label)
	changed := i != *current
	*current = i
	return changed
}
