package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a Z-up yaw/pitch camera with a perspective projection.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	FovY     float32 // degrees
	Aspect   float32
	Near     float32
	Far      float32
}

func NewCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, -4, 0},
		FovY:     60,
		Aspect:   1,
		Near:     0.1,
		Far:      1000,
	}
}

func (c *Camera) Forward() mgl32.Vec3 {
	// Z-up: Forward in XY plane, Z for pitch
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Pitch)) * math.Sin(float64(c.Yaw))),
		float32(-math.Cos(float64(c.Pitch)) * math.Cos(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
	}
}

func (c *Camera) Right() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(-math.Sin(float64(c.Yaw))),
		float32(math.Cos(float64(c.Yaw))),
		0,
	}
}

// LookAt turns the camera towards target.
func (c *Camera) LookAt(target mgl32.Vec3) {
	dir := target.Sub(c.Position)
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.Pitch = float32(math.Asin(float64(mgl32.Clamp(dir.Z(), -1, 1))))
	c.Yaw = float32(math.Atan2(float64(dir.X()), float64(-dir.Y())))
}

// Orbit places the camera at distance from target along yaw/pitch and
// looks back at it.
func (c *Camera) Orbit(target mgl32.Vec3, distance, yaw, pitch float32) {
	c.Yaw, c.Pitch = yaw, pitch
	c.Position = target.Sub(c.Forward().Mul(distance))
}

func (c *Camera) View() mgl32.Mat4 {
	eye := c.Position
	up := mgl32.Vec3{0, 0, 1} // Z-up
	return mgl32.LookAtV(eye, eye.Add(c.Forward()), up)
}

func (c *Camera) Projection() mgl32.Mat4 {
	aspect := c.Aspect
	if aspect == 0 {
		aspect = 1.0
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

func (c *Camera) Eye() mgl32.Vec3 { return c.Position }
