package components

import (
	"testing"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4)
	assert.InDelta(t, want.Y, got.Y, 1e-4)
	assert.InDelta(t, want.Z, got.Z, 1e-4)
}

func TestNewCameraLooksDownNegativeZ(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, math.NewMat4Identity(), c.View())
	assertVec3(t, math.NewVec3(0, 0, -1), c.Forward())
	assertVec3(t, math.NewVec3(1, 0, 0), c.Right())
	assertVec3(t, math.NewVec3(-1, 0, 0), c.Left())
	assertVec3(t, math.NewVec3(0, 0, 1), c.Backward())
}

func TestCameraViewTranslatesWorld(t *testing.T) {
	c := NewCamera()
	c.SetPosition(math.NewVec3(1, 2, 10))
	view := c.View()
	assert.InDelta(t, -1, view.Data[12], 1e-5)
	assert.InDelta(t, -2, view.Data[13], 1e-5)
	assert.InDelta(t, -10, view.Data[14], 1e-5)
}

func TestCameraMovement(t *testing.T) {
	c := NewCamera()
	c.MoveForward(2)
	assertVec3(t, math.NewVec3(0, 0, -2), c.Position())
	c.MoveRight(1)
	c.MoveUp(3)
	assertVec3(t, math.NewVec3(1, 3, -2), c.Position())
	c.MoveBackward(2)
	c.MoveLeft(1)
	c.MoveDown(3)
	assertVec3(t, math.NewVec3Zero(), c.Position())
}

func TestCameraYawTurnsForward(t *testing.T) {
	c := NewCamera()
	c.Yaw(math.DegToRad(90))
	assertVec3(t, math.NewVec3(-1, 0, 0), c.Forward())
}

func TestCameraPitchIsClamped(t *testing.T) {
	c := NewCamera()
	c.Pitch(10)
	assert.Equal(t, pitchLimit, c.EulerRotation().X)
	c.Pitch(-20)
	assert.Equal(t, -pitchLimit, c.EulerRotation().X)
}

func TestCameraLookAt(t *testing.T) {
	c := NewCamera()
	c.SetPosition(math.NewVec3(3, 4, 5))
	c.LookAt(math.NewVec3Zero())
	assertVec3(t, math.NewVec3(-3, -4, -5).Normalized(), c.Forward())
	assert.Zero(t, c.EulerRotation().Z)

	before := c.EulerRotation()
	c.LookAt(c.Position())
	assert.Equal(t, before, c.EulerRotation())

	c.Reset()
	assert.Equal(t, math.NewVec3Zero(), c.Position())
	assert.Equal(t, math.NewVec3Zero(), c.EulerRotation())
}
