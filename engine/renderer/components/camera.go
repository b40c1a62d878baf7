package components

import (
	m "math"

	"github.com/spaghettifunk/prism/engine/math"
)

// Pitch is clamped to 89 degrees to avoid gimbal lock.
const pitchLimit = float32(1.55334306)

/**
 * @brief A first-person camera described by a position and Euler angles
 * (pitch, yaw, roll) in radians. The view matrix is rebuilt lazily.
 */
type Camera struct {
	position      math.Vec3
	eulerRotation math.Vec3
	dirty         bool
	view          math.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.eulerRotation = math.NewVec3Zero()
	c.position = math.NewVec3Zero()
	c.dirty = false
	c.view = math.NewMat4Identity()
}

func (c *Camera) Position() math.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.position = position
	c.dirty = true
}

func (c *Camera) EulerRotation() math.Vec3 {
	return c.eulerRotation
}

func (c *Camera) SetEulerRotation(rotation math.Vec3) {
	c.eulerRotation = rotation
	c.dirty = true
}

// View returns the world-to-camera matrix.
func (c *Camera) View() math.Mat4 {
	if c.dirty {
		rotation := math.NewMat4EulerXYZ(c.eulerRotation.X, c.eulerRotation.Y, c.eulerRotation.Z)
		translation := math.NewMat4Translation(c.position)
		c.view = rotation.Mul(translation).Inverse()
		c.dirty = false
	}
	return c.view
}

func (c *Camera) Forward() math.Vec3 {
	view := c.View()
	return view.Forward()
}

func (c *Camera) Backward() math.Vec3 {
	view := c.View()
	return view.Backward()
}

func (c *Camera) Left() math.Vec3 {
	view := c.View()
	return view.Left()
}

func (c *Camera) Right() math.Vec3 {
	view := c.View()
	return view.Right()
}

func (c *Camera) move(direction math.Vec3, amount float32) {
	c.position = c.position.Add(direction.MulScalar(amount))
	c.dirty = true
}

func (c *Camera) MoveForward(amount float32)  { c.move(c.Forward(), amount) }
func (c *Camera) MoveBackward(amount float32) { c.move(c.Backward(), amount) }
func (c *Camera) MoveLeft(amount float32)     { c.move(c.Left(), amount) }
func (c *Camera) MoveRight(amount float32)    { c.move(c.Right(), amount) }
func (c *Camera) MoveUp(amount float32)       { c.move(math.NewVec3Up(), amount) }
func (c *Camera) MoveDown(amount float32)     { c.move(math.NewVec3Down(), amount) }

func (c *Camera) Yaw(amount float32) {
	c.eulerRotation.Y += amount
	c.dirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.eulerRotation.X = math.Clamp(c.eulerRotation.X+amount, -pitchLimit, pitchLimit)
	c.dirty = true
}

/**
 * @brief Turns the camera to face target. Roll is reset to zero. Does
 * nothing when target is the camera position.
 */
func (c *Camera) LookAt(target math.Vec3) {
	dir := target.Sub(c.position)
	if dir.LengthSquared() == 0 {
		return
	}
	dir = dir.Normalized()
	pitch := float32(m.Asin(float64(math.Clamp(dir.Y, -1, 1))))
	yaw := float32(m.Atan2(float64(-dir.X), float64(-dir.Z)))
	c.eulerRotation = math.NewVec3(math.Clamp(pitch, -pitchLimit, pitchLimit), yaw, 0)
	c.dirty = true
}
