package material

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/volumetrics/volrt/rt/editor"
)

var shaderMenuNames = []string{"Absorption Shader", "Basic Shader", "Normal Shader", "Emission-Absorption Shader", "Scattering Shader"}

// RenderInMenu draws the editable properties of m. Selector combos write
// through to sel, so every material sharing it changes program on the next
// frame.
func RenderInMenu(w editor.Widgets, m Material, sel *Selector) {
	switch m := m.(type) {
	case *Flat:
		colorEdit(w, "Color", &m.Color)
	case *Wireframe:
		colorEdit(w, "Color", &m.Color)
	case *Standard:
		w.Checkbox("Show Normals", &m.ShowNormals)
		if !m.ShowNormals {
			colorEdit(w, "Color", &m.Color)
		}
	case *Iso:
		volumeMenu(w, &m.Volume, sel)
		w.SliderFloat("Iso Threshold", &m.Threshold, 0, 1)
		w.SliderFloat("Gradient Step", &m.GradientStep, 0.001, 0.1)
	case *Volume:
		volumeMenu(w, m, sel)
	}
}

func volumeMenu(w editor.Widgets, v *Volume, sel *Selector) {
	p := &v.Params
	colorEdit(w, "Color", &p.Color)
	w.SliderFloat("Absorption Coefficient", &p.Absorption, 0, 2)
	w.SliderFloat("Scattering Coefficient", &p.Scattering, 0, 2)
	w.SliderFloat("Emission Coefficient", &p.Emission, 0, 2)

	s := sel.Selection()
	kind := int32(s.Kind)
	if w.Combo("Shader Type", &kind, shaderMenuNames) {
		sel.SetShaderKind(ShaderKind(kind))
	}
	volumeType := int32(s.Volume)
	if w.Combo("Volume Type", &volumeType, volumeTypeNames) {
		sel.SetVolumeType(VolumeType(volumeType))
	}
	source := int32(s.Density)
	if w.Combo("Density Source", &source, densitySourceNames) {
		sel.SetDensitySource(DensitySource(source))
	}

	if sel.VolumeType() == Heterogeneous {
		w.SliderFloat("Step Length", &p.StepLength, 0.01, 3)
		w.SliderInt("Noise Detail", &p.NoiseDetail, 0, 5)
		w.SliderFloat("Noise Scale", &p.NoiseScale, 0, 5)
		w.SliderFloat("Density Scale", &p.DensityScale, 0, 5)
	}
	if sel.DensitySource() == ConstantDensity {
		w.SliderFloat("Constant Density", &p.ConstantDensity, 0, 1)
	}
	w.SliderInt("Max Light Steps", &p.MaxLightSteps, 1, 64)
	w.SliderFloat("Isotropy", &p.Isotropy, -1, 1)
	w.Checkbox("Jittering", &p.Jittering)
}

func colorEdit(w editor.Widgets, label string, c *mgl32.Vec4) {
	rgb := [3]float32{c[0], c[1], c[2]}
	if w.ColorEdit3(label, &rgb) {
		c[0], c[1], c[2] = rgb[0], rgb[1], rgb[2]
	}
}
