package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMat4IdentityMul(t *testing.T) {
	tr := NewMat4Translation(NewVec3(1, 2, 3))
	assert.Equal(t, tr, NewMat4Identity().Mul(tr))
	assert.Equal(t, tr, tr.Mul(NewMat4Identity()))
}

func TestMat4TranslationInverse(t *testing.T) {
	tr := NewMat4Translation(NewVec3(4, -2, 7))
	inv := tr.Inverse()

	assert.InDelta(t, -4, inv.Data[12], 1e-5)
	assert.InDelta(t, 2, inv.Data[13], 1e-5)
	assert.InDelta(t, -7, inv.Data[14], 1e-5)

	id := tr.Mul(inv)
	for i, v := range NewMat4Identity().Data {
		assert.InDelta(t, v, id.Data[i], 1e-5, "element %d", i)
	}
}

func TestMat4MulOrder(t *testing.T) {
	// scale then translate: the translation is not scaled.
	m := NewMat4Scale(NewVec3(2, 2, 2)).Mul(NewMat4Translation(NewVec3(1, 0, 0)))
	assert.InDelta(t, 1, m.Data[12], 1e-6)
	assert.InDelta(t, 2, m.Data[0], 1e-6)
}

func TestMat4Perspective(t *testing.T) {
	p := NewMat4Perspective(DegToRad(90), 1, 0.1, 100)
	assert.InDelta(t, 1, p.Data[0], 1e-5)
	assert.InDelta(t, 1, p.Data[5], 1e-5)
	assert.Equal(t, float32(-1), p.Data[11])
	assert.InDelta(t, -(100.1 / 99.9), p.Data[10], 1e-5)
	assert.Equal(t, float32(0), p.Data[15])
}

func TestQuaternionToMat4(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), K_HALF_PI, true)
	r := q.ToMat4()

	// A quarter turn about +Y carries +X to -Z.
	x := r.Data[0]
	z := r.Data[2]
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, -1, z, 1e-5)
}

func TestNormalMatrixUniformScale(t *testing.T) {
	n := NewMat4Scale(NewVec3(2, 2, 2)).NormalMatrix()
	assert.InDelta(t, 0.5, n.Data[0], 1e-5)
	assert.InDelta(t, 0.5, n.Data[4], 1e-5)
	assert.InDelta(t, 0.5, n.Data[8], 1e-5)
	assert.InDelta(t, 0, n.Data[1], 1e-5)
}

func TestVec3(t *testing.T) {
	assert.Equal(t, NewVec3(0, 0, 1), NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)))
	assert.InDelta(t, 1, NewVec3(3, 4, 0).Normalized().Length(), 1e-6)
	assert.Equal(t, NewVec3Zero(), NewVec3Zero().Normalized())
}

func TestTransformLocal(t *testing.T) {
	tr := TransformFromPosition(NewVec3(1, 2, 3))
	tr.SetScale(NewVec3(2, 2, 2))
	l := tr.GetLocal()
	assert.InDelta(t, 2, l.Data[0], 1e-6)
	assert.InDelta(t, 1, l.Data[12], 1e-6)
	assert.False(t, tr.IsDirty)

	child := TransformFromPosition(NewVec3(1, 0, 0))
	child.Parent = TransformFromPosition(NewVec3(0, 5, 0))
	w := child.GetWorld()
	assert.InDelta(t, 1, w.Data[12], 1e-6)
	assert.InDelta(t, 5, w.Data[13], 1e-6)
}
