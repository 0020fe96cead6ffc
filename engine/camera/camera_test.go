package camera

import (
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/config"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func newTestCamera(options ...CameraBuilderOption) Camera {
	opts := append([]CameraBuilderOption{
		WithInternals(mgl32.DegToRad(60), 1, 1, 100),
		WithLookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
	}, options...)
	return NewCamera(opts...)
}

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, eps), "want %v, have %v", want, got)
}

type recordingListener struct {
	position mgl32.Vec3
	forward  mgl32.Vec3
	up       mgl32.Vec3
	calls    int
}

func (l *recordingListener) SetPosition(position mgl32.Vec3) {
	l.position = position
	l.calls++
}

func (l *recordingListener) SetOrientation(forward, up mgl32.Vec3) {
	l.forward, l.up = forward, up
}

func TestContainsPointScenario(t *testing.T) {
	cam := newTestCamera()

	assert.Equal(t, common.Inside, cam.ContainsPoint(mgl32.Vec3{0, 0, 0}))
	assert.Equal(t, common.Outside, cam.ContainsPoint(mgl32.Vec3{0, 0, 200}))
	assert.Equal(t, common.Outside, cam.ContainsPoint(mgl32.Vec3{0, 0, 9.5}), "between eye and near plane")
	assert.Equal(t, common.Outside, cam.ContainsPoint(mgl32.Vec3{0, 0, -95}), "beyond the far plane")
	assert.Equal(t, common.Outside, cam.ContainsPoint(mgl32.Vec3{50, 0, 0}))
}

func TestContainsSphere(t *testing.T) {
	cam := newTestCamera()

	assert.Equal(t, common.Inside, cam.ContainsSphere(mgl32.Vec3{}, 1))
	assert.Equal(t, common.Intersect, cam.ContainsSphere(mgl32.Vec3{0, 0, 9}, 0.5), "straddles the near plane")
	assert.Equal(t, common.Outside, cam.ContainsSphere(mgl32.Vec3{0, 0, 200}, 5))
	assert.Equal(t, common.Outside, cam.ContainsSphere(mgl32.Vec3{500, 0, 0}, 5))
}

func TestContainsBox(t *testing.T) {
	cam := newTestCamera()

	assert.Equal(t, common.Inside, cam.ContainsBox(common.NewBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})))
	assert.Equal(t, common.Intersect, cam.ContainsBox(common.NewBox(mgl32.Vec3{-1, -1, -200}, mgl32.Vec3{1, 1, 0})))
	assert.Equal(t, common.Outside, cam.ContainsBox(common.NewBox(mgl32.Vec3{-1, -1, 150}, mgl32.Vec3{1, 1, 160})))
	assert.Equal(t, common.Outside, cam.ContainsBox(common.NullBox()))
	assert.Equal(t, common.Intersect, cam.ContainsBox(common.InfiniteBox()))
}

func TestBoxAndSphereTiersAgree(t *testing.T) {
	cam := newTestCamera()
	r := rand.New(rand.NewPCG(3, 5))

	for i := 0; i < 2000; i++ {
		center := mgl32.Vec3{r.Float32()*200 - 100, r.Float32()*200 - 100, r.Float32()*200 - 100}
		half := mgl32.Vec3{r.Float32() * 20, r.Float32() * 20, r.Float32() * 20}
		box := common.NewBox(center.Sub(half), center.Add(half))

		byBox := cam.ContainsBox(box)
		bySphere := cam.ContainsSphere(box.Center(), box.Radius())

		if bySphere == common.Inside {
			assert.Equal(t, common.Inside, byBox, "box %v", box)
		}
		if byBox != common.Outside {
			assert.NotEqual(t, common.Outside, bySphere, "box %v", box)
		}
	}
}

func TestFrustumMatchesViewProjection(t *testing.T) {
	cam := newTestCamera()
	fromMatrix := common.ExtractFrustumFromMatrix(cam.ViewProjectionMatrix())

	points := []mgl32.Vec3{
		{0, 0, 0}, {0, 0, 200}, {3, 3, -20}, {-40, 0, -20}, {0, 40, -5}, {0, 0, -80}, {0, 0, -120},
	}
	for _, p := range points {
		assert.Equal(t, fromMatrix.ContainsPoint(p), cam.ContainsPoint(p), "point %v", p)
	}
}

func TestLookAtNotifiesListener(t *testing.T) {
	listener := &recordingListener{}
	cam := newTestCamera(WithListener(listener))
	require.Equal(t, 1, listener.calls)

	cam.LookAt(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	assert.Equal(t, 2, listener.calls)
	assertVec(t, mgl32.Vec3{5, 0, 0}, listener.position)
	assertVec(t, mgl32.Vec3{-1, 0, 0}, listener.forward)
	assertVec(t, mgl32.Vec3{0, 1, 0}, listener.up)

	cam.SetListener(nil)
	cam.LookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, 2, listener.calls)
}

func TestDegenerateLookAtIgnored(t *testing.T) {
	cam := newTestCamera()

	cam.LookAt(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 1, 0})
	assertVec(t, mgl32.Vec3{0, 0, 10}, cam.Eye())

	cam.LookAt(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assertVec(t, mgl32.Vec3{0, 0, 10}, cam.Eye())
}

func TestWalkAndRotate(t *testing.T) {
	cam := newTestCamera()

	cam.Walk(5)
	assertVec(t, mgl32.Vec3{0, 0, 5}, cam.Eye())
	assertVec(t, mgl32.Vec3{0, 0, -5}, cam.Center())

	cam.Walk(-5)
	assertVec(t, mgl32.Vec3{0, 0, 10}, cam.Eye())

	cam.Rotate(0, 90, 0)
	assertVec(t, mgl32.Vec3{0, 0, 10}, cam.Eye())
	assertVec(t, mgl32.Vec3{-10, 0, 10}, cam.Center())
	assertVec(t, mgl32.Vec3{-1, 0, 0}, cam.Forward())
	assertVec(t, mgl32.Vec3{0, 1, 0}, cam.Up())
}

func TestRayTo(t *testing.T) {
	cam := newTestCamera(WithViewport(101, 101))

	assertVec(t, mgl32.Vec3{0, 0, -1}, cam.RayTo(50, 50))

	topLeft := cam.RayTo(0, 0)
	assert.InDelta(t, 1, topLeft.Len(), eps)
	assert.Less(t, topLeft.X(), float32(0))
	assert.Greater(t, topLeft.Y(), float32(0))
	assert.Less(t, topLeft.Z(), float32(0))

	// Corner rays run along the frustum edges, so points on them are inside.
	point := cam.Eye().Add(topLeft.Mul(30))
	assert.Equal(t, common.Inside, cam.ContainsSphere(point, 0), "point %v", point)
}

func TestTrajectoryLag(t *testing.T) {
	zoom := mgl32.Vec3{0, 5, 20}
	cam := newTestCamera(WithTrajectory(2, zoom))

	points := []mgl32.Vec3{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	for i, p := range points[:2] {
		cam.AppendTrajectoryPoint(p)
		assert.False(t, cam.NextTrajectoryPoint(), "point %d must stay buffered", i)
	}
	cam.AppendTrajectoryPoint(points[2])
	assert.Equal(t, 3, cam.TrajectoryLen())

	require.True(t, cam.NextTrajectoryPoint())
	assertVec(t, points[0], cam.Center())
	assertVec(t, points[0].Add(zoom), cam.Eye())
	assert.Equal(t, 2, cam.TrajectoryLen())
	assert.False(t, cam.NextTrajectoryPoint())

	cam.SetLag(0)
	require.True(t, cam.NextTrajectoryPoint())
	assertVec(t, points[1], cam.Center())
}

func TestControllerDrivesUpdate(t *testing.T) {
	ctrl := NewCameraController(WithTarget(mgl32.Vec3{1, 2, 3}), WithRadius(10), WithElevation(0))
	assertVec(t, mgl32.Vec3{1, 2, 13}, ctrl.Position())

	cam := newTestCamera(WithController(ctrl))
	assertVec(t, mgl32.Vec3{1, 2, 13}, cam.Eye())
	assertVec(t, mgl32.Vec3{1, 2, 3}, cam.Center())

	ctrl.Follow(mgl32.Vec3{10, 0, 0})
	ctrl.Zoom(5)
	cam.Update()
	assertVec(t, mgl32.Vec3{10, 0, 5}, cam.Eye())

	ctrl.Pan(2, 0, 0)
	cam.Update()
	assertVec(t, mgl32.Vec3{12, 0, 0}, cam.Center())
}

func TestControllerClamps(t *testing.T) {
	ctrl := NewCameraController(WithRadiusBounds(2, 20), WithRadius(10))

	ctrl.Zoom(100)
	assert.Equal(t, float32(2), ctrl.Radius())
	ctrl.Zoom(-100)
	assert.Equal(t, float32(20), ctrl.Radius())

	ctrl.Orbit(0, 10)
	assert.Less(t, ctrl.Elevation(), float32(1.5708))
}

func TestWithConfig(t *testing.T) {
	cfg := config.Default().Camera
	cfg.FovDegrees = 60
	cfg.Near = 1
	cfg.Lag = 3
	cfg.Zoom = [3]float32{0, 0, 5}

	cam := NewCamera(WithConfig(cfg))
	assert.InDelta(t, mgl32.DegToRad(60), cam.Fov(), eps)
	assert.Equal(t, float32(1), cam.Near())
	assert.Equal(t, float32(100), cam.Far())
	assert.Equal(t, 3, cam.Lag())
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, cam.Zoom())

	w, h := cam.Viewport()
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
}

func TestSetCamInternalsRejectsInvalid(t *testing.T) {
	cam := newTestCamera()
	cam.SetCamInternals(1, 1, 10, 5)
	assert.Equal(t, float32(1), cam.Near())
	assert.Equal(t, float32(100), cam.Far())

	cam.SetCamInternals(mgl32.DegToRad(90), 2, 0.5, 50)
	assert.Equal(t, float32(0.5), cam.Near())
	assert.Equal(t, common.Outside, cam.ContainsPoint(mgl32.Vec3{0, 0, -45}))
}
