package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraController owns an orbiting eye pose around a pivot. The camera reads it in Update.
// Orbit methods change the spherical coordinates and recompute the position; Pan translates
// position and pivot together along the local camera axes.
type CameraController interface {
	// Position returns the world-space eye position.
	Position() mgl32.Vec3

	// Target returns the pivot looked at.
	Target() mgl32.Vec3

	// SetTarget moves the pivot and recomputes the position from the spherical coordinates.
	//
	// Parameters:
	//   - target: the new pivot
	SetTarget(target mgl32.Vec3)

	// Follow moves the pivot to the given point, keeping the orbit. It lets the controller
	// track a scene node every frame.
	//
	// Parameters:
	//   - point: the followed world position
	Follow(point mgl32.Vec3)

	// Orbit adds the given angles to the azimuth and elevation. Elevation is clamped.
	//
	// Parameters:
	//   - azimuth: horizontal angle delta in radians
	//   - elevation: vertical angle delta in radians
	Orbit(azimuth, elevation float32)

	// Zoom moves the eye towards the pivot by delta * zoom speed, clamped to the radius bounds.
	//
	// Parameters:
	//   - delta: zoom amount, positive zooms in
	Zoom(delta float32)

	// Pan translates eye and pivot along the local right, up and forward axes.
	//
	// Parameters:
	//   - right, up, forward: distances along each axis, scaled by the pan speed
	Pan(right, up, forward float32)

	// Radius returns the distance from the pivot.
	Radius() float32

	// Azimuth returns the horizontal angle around the Y axis in radians.
	Azimuth() float32

	// Elevation returns the vertical angle from the horizontal plane in radians.
	Elevation() float32
}

type cameraControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	zoomSpeed float32
	panSpeed  float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller around the origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:           &sync.Mutex{},
		radius:       25.0,
		elevation:    float32(math.Pi / 6),
		minRadius:    1.0,
		maxRadius:    2000.0,
		minElevation: float32(-math.Pi/2 + 0.1),
		maxElevation: float32(math.Pi/2 - 0.1),
		zoomSpeed:    1.0,
		panSpeed:     1.0,
	}
	for _, option := range options {
		option(cc)
	}
	cc.radius = mgl32.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = mgl32.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Follow(point mgl32.Vec3) {
	cc.SetTarget(point)
}

func (cc *cameraControllerImpl) Orbit(azimuth, elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += azimuth
	cc.elevation = mgl32.Clamp(cc.elevation+elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = mgl32.Clamp(cc.radius-delta*cc.zoomSpeed, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Pan(right, up, forward float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	r, u, f := cc.localAxes()
	offset := r.Mul(right).Add(u.Mul(up)).Add(f.Mul(forward)).Mul(cc.panSpeed)
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

// updatePosition recomputes the eye from the pivot and the spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev := float32(math.Cos(float64(cc.elevation)))
	sinElev := float32(math.Sin(float64(cc.elevation)))
	cosAzim := float32(math.Cos(float64(cc.azimuth)))
	sinAzim := float32(math.Sin(float64(cc.azimuth)))

	cc.position = cc.target.Add(mgl32.Vec3{
		cc.radius * cosElev * sinAzim,
		cc.radius * sinElev,
		cc.radius * cosElev * cosAzim,
	})
}

// localAxes returns the right, up and forward axes matching the LookAt basis for world up +Y.
// All axes are zero when eye and pivot coincide. Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up, forward mgl32.Vec3) {
	back := cc.position.Sub(cc.target)
	if back.Len() < 1e-8 {
		return
	}
	back = back.Normalize()

	side := mgl32.Vec3{0, 1, 0}.Cross(back)
	if side.Len() < 1e-8 {
		return
	}
	right = side.Normalize()
	up = back.Cross(right)
	forward = back.Mul(-1)
	return
}
