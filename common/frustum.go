package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Containment is the result of classifying a volume against a frustum.
type Containment int

const (
	// Outside means the volume is completely outside the frustum.
	Outside Containment = iota

	// Intersect means the volume straddles at least one frustum plane.
	Intersect

	// Inside means the volume is completely inside the frustum.
	Inside
)

// String returns the containment name.
func (c Containment) String() string {
	switch c {
	case Outside:
		return "outside"
	case Intersect:
		return "intersect"
	case Inside:
		return "inside"
	}
	return "unknown"
}

// Plane represents a plane in 3D space using the equation: n·p + d = 0
// where n is the unit normal. The positive half-space is the side the normal points to.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// NewPlane creates a plane from a normal and a point lying on the plane.
// The normal is normalized before use.
//
// Parameters:
//   - normal: the plane normal, pointing into the positive half-space
//   - point: any point on the plane
//
// Returns:
//   - Plane: the resulting plane
func NewPlane(normal, point mgl32.Vec3) Plane {
	n := normal
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	return Plane{Normal: n, Distance: -n.Dot(point)}
}

// SignedDistance returns the signed distance from p to the plane.
// Positive means p is on the side the normal points to.
func (p Plane) SignedDistance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.Distance
}

// FrustumPlane indices into Frustum.Planes.
const (
	FrustumTop    = 0
	FrustumBottom = 1
	FrustumLeft   = 2
	FrustumRight  = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Top, Bottom, Left, Right, Near, Far
}

// ContainsPoint classifies a point. A point is Outside if it is behind any plane and Inside otherwise;
// this tier never reports Intersect.
//
// Parameters:
//   - pt: the point to classify
//
// Returns:
//   - Containment: Outside or Inside
func (f *Frustum) ContainsPoint(pt mgl32.Vec3) Containment {
	for i := range f.Planes {
		if f.Planes[i].SignedDistance(pt) < 0 {
			return Outside
		}
	}
	return Inside
}

// ContainsSphere classifies a sphere. It is Outside if it lies beyond any plane by more than its radius,
// Intersect if its center is within radius of any plane, and Inside otherwise.
//
// Parameters:
//   - center: the sphere center
//   - radius: the sphere radius
//
// Returns:
//   - Containment: the classification
func (f *Frustum) ContainsSphere(center mgl32.Vec3, radius float32) Containment {
	result := Inside
	for i := range f.Planes {
		d := f.Planes[i].SignedDistance(center)
		if d < -radius {
			return Outside
		}
		if d < radius {
			result = Intersect
		}
	}
	return result
}

// ContainsBox classifies a box by testing its eight corners against all six planes.
// It is Outside if any plane rejects every corner, Inside if every plane accepts every corner,
// and Intersect otherwise. Null boxes are Outside and Infinite boxes Intersect.
//
// Parameters:
//   - box: the box to classify
//
// Returns:
//   - Containment: the classification
func (f *Frustum) ContainsBox(box AxisAlignedBox) Containment {
	switch box.Extent() {
	case ExtentNull:
		return Outside
	case ExtentInfinite:
		return Intersect
	}

	corners := box.Corners()
	planesIn := 0
	for i := range f.Planes {
		in := 0
		for _, c := range corners {
			if f.Planes[i].SignedDistance(c) >= 0 {
				in++
			}
		}
		if in == 0 {
			return Outside
		}
		if in == len(corners) {
			planesIn++
		}
	}
	if planesIn == len(f.Planes) {
		return Inside
	}
	return Intersect
}

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix
// using the Gribb/Hartmann method. The matrix is expected to map into OpenGL clip
// space ([-1, 1] depth), as produced by mgl32.Perspective.
//
// Use it to cull against a volume that is not the camera's, such as a light or shadow
// projection, or to cross-check the planes a Camera derives from its own geometry.
// The result satisfies octree.Culler through its pointer.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined Projection * View matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	var f Frustum
	f.Planes[FrustumLeft] = planeFromRow(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromRow(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromRow(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromRow(r3.Sub(r1))
	f.Planes[FrustumNear] = planeFromRow(r3.Add(r2))
	f.Planes[FrustumFar] = planeFromRow(r3.Sub(r2))
	return f
}

// planeFromRow builds a normalized plane from the (a, b, c, d) coefficients of a clip-space row combination.
func planeFromRow(v mgl32.Vec4) Plane {
	n := v.Vec3()
	length := n.Len()
	if length == 0 {
		return Plane{}
	}
	inv := 1 / length
	return Plane{Normal: n.Mul(inv), Distance: v[3] * inv}
}
