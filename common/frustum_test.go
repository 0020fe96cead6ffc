package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// lookDownZ returns the frustum of a 60 degree camera at (0, 0, 10) looking at the origin,
// with its near plane at z = 9 and its far plane at z = -90.
func lookDownZ() Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	return ExtractFrustumFromMatrix(proj.Mul4(view))
}

func TestExtractFrustumFromMatrixPlanes(t *testing.T) {
	f := lookDownZ()
	for i, p := range f.Planes {
		assert.InDelta(t, 1, p.Normal.Len(), 1e-4, "plane %d is normalized", i)
	}

	near, far := f.Planes[FrustumNear], f.Planes[FrustumFar]
	assert.InDeltaSlice(t, []float32{0, 0, -1}, near.Normal[:], 1e-4)
	assert.InDelta(t, 9, near.Distance, 1e-3)
	assert.InDeltaSlice(t, []float32{0, 0, 1}, far.Normal[:], 1e-4)
	assert.InDelta(t, 90, far.Distance, 1e-2)
}

func TestExtractFrustumFromMatrixClassifies(t *testing.T) {
	f := lookDownZ()

	tests := []struct {
		name string
		have Containment
		want Containment
	}{
		{"origin", f.ContainsPoint(mgl32.Vec3{}), Inside},
		{"behind the eye", f.ContainsPoint(mgl32.Vec3{0, 0, 20}), Outside},
		{"beyond far", f.ContainsPoint(mgl32.Vec3{0, 0, -95}), Outside},
		{"off to the side", f.ContainsPoint(mgl32.Vec3{50, 0, 0}), Outside},
		{"sphere at origin", f.ContainsSphere(mgl32.Vec3{}, 1), Inside},
		{"sphere on far plane", f.ContainsSphere(mgl32.Vec3{0, 0, -90}, 1), Intersect},
		{"sphere behind", f.ContainsSphere(mgl32.Vec3{0, 0, 30}, 1), Outside},
		{"box at origin", f.ContainsBox(NewBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})), Inside},
		{"box across near", f.ContainsBox(NewBox(mgl32.Vec3{-0.1, -0.1, 8}, mgl32.Vec3{0.1, 0.1, 10})), Intersect},
		{"box behind", f.ContainsBox(NewBox(mgl32.Vec3{-1, -1, 20}, mgl32.Vec3{1, 1, 22})), Outside},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.have)
		})
	}
}
