package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places a mesh in the world. Its matrix is the u_model uniform.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Model returns T * R * S.
func (t *Transform) Model() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(t.Rotation.Mat4()).Mul4(scale)
}

// ToLocal maps a world point into the space described by model, dividing by w.
func ToLocal(model mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	v := model.Inv().Mul4x1(p.Vec4(1))
	if v.W() == 0 {
		return v.Vec3()
	}
	return v.Vec3().Mul(1 / v.W())
}
