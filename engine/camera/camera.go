package camera

import (
	"log/slog"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Listener receives the camera eye pose every time the view changes.
// It is the side output used by audio playback to place the listener.
type Listener interface {
	// SetPosition moves the listener.
	//
	// Parameters:
	//   - position: world-space eye position
	SetPosition(position mgl32.Vec3)

	// SetOrientation turns the listener.
	//
	// Parameters:
	//   - forward: unit vector from the eye towards the view center
	//   - up: unit up vector of the camera basis
	SetOrientation(forward, up mgl32.Vec3)
}

type cameraImpl struct {
	mu *sync.Mutex

	eye    mgl32.Vec3
	center mgl32.Vec3
	up     mgl32.Vec3

	// Orthonormal basis of the last LookAt: x right, y up, z pointing from center to eye.
	x, y, z mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	nearWidth, nearHeight float32
	farWidth, farHeight   float32

	viewportWidth  int
	viewportHeight int

	frustum common.Frustum

	viewMatrix                  mgl32.Mat4
	projectionMatrix            mgl32.Mat4
	viewProjectionMatrix        mgl32.Mat4
	inverseViewProjectionMatrix mgl32.Mat4

	zoom       mgl32.Vec3
	lag        int
	trajectory []mgl32.Vec3

	listener   Listener
	controller CameraController

	logger *slog.Logger
}

// Camera holds the perspective settings and view pose, derives the six frustum planes from
// them and classifies points, spheres and boxes against the frustum.
// Thread-safe for concurrent access.
type Camera interface {
	// SetCamInternals sets the perspective and precomputes the near and far plane extents.
	//
	// Parameters:
	//   - fov: vertical field of view in radians
	//   - aspect: aspect ratio (width / height)
	//   - near: near plane distance
	//   - far: far plane distance
	SetCamInternals(fov, aspect, near, far float32)

	// LookAt places the camera, recomputes the frustum planes and cached transforms and
	// forwards the eye pose to the attached Listener.
	//
	// Parameters:
	//   - eye: the camera position
	//   - center: the point looked at
	//   - up: the approximate up direction
	LookAt(eye, center, up mgl32.Vec3)

	// Eye returns the camera position.
	Eye() mgl32.Vec3

	// Center returns the point looked at.
	Center() mgl32.Vec3

	// Up returns the up vector passed to the last LookAt.
	Up() mgl32.Vec3

	// Forward returns the unit view direction.
	Forward() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the cached view transform.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the cached perspective projection.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns Projection * View.
	ViewProjectionMatrix() mgl32.Mat4

	// InverseViewProjectionMatrix returns the inverse of ViewProjectionMatrix.
	InverseViewProjectionMatrix() mgl32.Mat4

	// Frustum returns a copy of the current frustum planes.
	Frustum() common.Frustum

	// ContainsPoint classifies a point as Outside if it is behind any plane, Inside otherwise.
	//
	// Parameters:
	//   - point: the world-space point
	//
	// Returns:
	//   - common.Containment: Outside or Inside
	ContainsPoint(point mgl32.Vec3) common.Containment

	// ContainsSphere classifies a sphere against the frustum.
	//
	// Parameters:
	//   - center: the sphere center
	//   - radius: the sphere radius
	//
	// Returns:
	//   - common.Containment: the classification
	ContainsSphere(center mgl32.Vec3, radius float32) common.Containment

	// ContainsBox classifies a box by testing its eight corners against all six planes.
	//
	// Parameters:
	//   - box: the box to classify
	//
	// Returns:
	//   - common.Containment: the classification
	ContainsBox(box common.AxisAlignedBox) common.Containment

	// SetViewport sets the screen size in pixels used by RayTo.
	//
	// Parameters:
	//   - width: viewport width
	//   - height: viewport height
	SetViewport(width, height int)

	// Viewport returns the screen size in pixels.
	//
	// Returns:
	//   - width, height: viewport size
	Viewport() (width, height int)

	// RayTo returns the unit world-space direction from the eye through the near plane point
	// under the given pixel. Pixel (0, 0) is the top left corner.
	//
	// Parameters:
	//   - x: pixel column
	//   - y: pixel row
	//
	// Returns:
	//   - mgl32.Vec3: the picking ray direction
	RayTo(x, y int) mgl32.Vec3

	// Walk moves eye and center together along the view direction.
	//
	// Parameters:
	//   - distance: world units to move, negative walks backwards
	Walk(distance float32)

	// Rotate turns the view direction and up vector around the eye.
	// The rotation is applied as X, then Y, then Z.
	//
	// Parameters:
	//   - x, y, z: rotation angles in degrees
	Rotate(x, y, z float32)

	// SetZoom sets the eye offset added to every trajectory point.
	//
	// Parameters:
	//   - zoom: the offset
	SetZoom(zoom mgl32.Vec3)

	// Zoom returns the trajectory eye offset.
	Zoom() mgl32.Vec3

	// SetLag sets how many trajectory points stay buffered before the camera follows.
	//
	// Parameters:
	//   - lag: the buffer depth, negative values are clamped to 0
	SetLag(lag int)

	// Lag returns the trajectory buffer depth.
	Lag() int

	// AppendTrajectoryPoint queues a point the camera should follow.
	//
	// Parameters:
	//   - point: the followed target position
	AppendTrajectoryPoint(point mgl32.Vec3)

	// NextTrajectoryPoint pops the oldest trajectory point and looks at it from point + zoom,
	// but only while the queue holds more points than the lag.
	//
	// Returns:
	//   - bool: true if the camera moved
	NextTrajectoryPoint() bool

	// TrajectoryLen returns the number of buffered trajectory points.
	TrajectoryLen() int

	// SetListener attaches a listener that mirrors the eye pose. Nil detaches it.
	//
	// Parameters:
	//   - listener: the listener
	SetListener(listener Listener)

	// Listener returns the attached listener or nil.
	Listener() Listener

	// SetController attaches a CameraController. Update reads its pose every frame. Nil detaches it.
	//
	// Parameters:
	//   - ctrl: the controller
	SetController(ctrl CameraController)

	// Controller returns the attached controller or nil.
	Controller() CameraController

	// Update looks at the controller's target from the controller's position.
	// Does nothing when no controller is attached.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings, looking from
// (0, 0, 10) at the origin with +Y up.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:             &sync.Mutex{},
		eye:            mgl32.Vec3{0, 0, 10},
		center:         mgl32.Vec3{0, 0, 0},
		up:             mgl32.Vec3{0, 1, 0},
		fov:            45.0 * (math.Pi / 180.0), // radians
		aspect:         1.0,
		near:           0.1,
		far:            100.0,
		viewportWidth:  1280,
		viewportHeight: 720,
		logger:         slog.Default(),
	}
	for _, option := range options {
		option(c)
	}
	c.logger = c.logger.With("component", "camera")

	c.setInternals(c.fov, c.aspect, c.near, c.far)
	if c.controller != nil {
		c.lookAt(c.controller.Position(), c.controller.Target(), c.up)
	} else {
		c.lookAt(c.eye, c.center, c.up)
	}
	return c
}

func (c *cameraImpl) SetCamInternals(fov, aspect, near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setInternals(fov, aspect, near, far)
	c.lookAt(c.eye, c.center, c.up)
}

func (c *cameraImpl) LookAt(eye, center, up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookAt(eye, center, up)
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Center() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.z.Mul(-1)
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) InverseViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseViewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum
}

func (c *cameraImpl) ContainsPoint(point mgl32.Vec3) common.Containment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum.ContainsPoint(point)
}

func (c *cameraImpl) ContainsSphere(center mgl32.Vec3, radius float32) common.Containment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum.ContainsSphere(center, radius)
}

func (c *cameraImpl) ContainsBox(box common.AxisAlignedBox) common.Containment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum.ContainsBox(box)
}

func (c *cameraImpl) SetViewport(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewportWidth = max(width, 1)
	c.viewportHeight = max(height, 1)
}

func (c *cameraImpl) Viewport() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewportWidth, c.viewportHeight
}

func (c *cameraImpl) RayTo(x, y int) mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Pixel centers map to normalized device coordinates in [-1, 1], +Y up.
	ndcX := 2*(float32(x)+0.5)/float32(c.viewportWidth) - 1
	ndcY := 1 - 2*(float32(y)+0.5)/float32(c.viewportHeight)

	nearCenter := c.eye.Sub(c.z.Mul(c.near))
	point := nearCenter.
		Add(c.x.Mul(ndcX * c.nearWidth)).
		Add(c.y.Mul(ndcY * c.nearHeight))
	return point.Sub(c.eye).Normalize()
}

func (c *cameraImpl) Walk(distance float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := c.z.Mul(-distance)
	c.lookAt(c.eye.Add(step), c.center.Add(step), c.up)
}

func (c *cameraImpl) Rotate(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rot := mgl32.QuatRotate(mgl32.DegToRad(x), mgl32.Vec3{1, 0, 0}).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(y), mgl32.Vec3{0, 1, 0})).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(z), mgl32.Vec3{0, 0, 1}))
	c.lookAt(c.eye, rot.Rotate(c.center.Sub(c.eye)).Add(c.eye), rot.Rotate(c.up))
}

func (c *cameraImpl) SetZoom(zoom mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = zoom
}

func (c *cameraImpl) Zoom() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) SetLag(lag int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lag = max(lag, 0)
}

func (c *cameraImpl) Lag() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lag
}

func (c *cameraImpl) AppendTrajectoryPoint(point mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trajectory = append(c.trajectory, point)
}

func (c *cameraImpl) NextTrajectoryPoint() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.trajectory) <= c.lag {
		return false
	}
	point := c.trajectory[0]
	c.trajectory = c.trajectory[1:]
	c.lookAt(point.Add(c.zoom), point, c.up)
	return true
}

func (c *cameraImpl) TrajectoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.trajectory)
}

func (c *cameraImpl) SetListener(listener Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = listener
	c.notifyListener()
}

func (c *cameraImpl) Listener() Listener {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listener
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.lookAt(c.controller.Position(), c.controller.Target(), c.up)
}

// setInternals stores the perspective settings and the near and far plane half extents.
// Caller must hold the mutex.
func (c *cameraImpl) setInternals(fov, aspect, near, far float32) {
	if fov <= 0 || aspect <= 0 || near <= 0 || far <= near {
		c.logger.Warn("ignoring invalid camera internals", "fov", fov, "aspect", aspect, "near", near, "far", far)
		return
	}
	c.fov, c.aspect, c.near, c.far = fov, aspect, near, far

	tang := float32(math.Tan(float64(fov) * 0.5))
	c.nearHeight = near * tang
	c.nearWidth = c.nearHeight * aspect
	c.farHeight = far * tang
	c.farWidth = c.farHeight * aspect
}

// lookAt derives the basis, the six frustum planes from the near plane geometry and the
// cached view and projection transforms. Degenerate poses (eye on center, up parallel to the
// view direction) are ignored. Caller must hold the mutex.
func (c *cameraImpl) lookAt(eye, center, up mgl32.Vec3) {
	toEye := eye.Sub(center)
	if toEye.Len() == 0 {
		c.logger.Debug("ignoring lookAt with eye on center", "eye", eye)
		return
	}
	z := toEye.Normalize()
	side := up.Cross(z)
	if side.Len() == 0 {
		c.logger.Debug("ignoring lookAt with up parallel to the view direction", "up", up)
		return
	}
	x := side.Normalize()
	y := z.Cross(x)

	nearCenter := eye.Sub(z.Mul(c.near))
	farCenter := eye.Sub(z.Mul(c.far))

	var f common.Frustum
	f.Planes[common.FrustumNear] = common.NewPlane(z.Mul(-1), nearCenter)
	f.Planes[common.FrustumFar] = common.NewPlane(z, farCenter)

	top := nearCenter.Add(y.Mul(c.nearHeight))
	f.Planes[common.FrustumTop] = common.NewPlane(top.Sub(eye).Normalize().Cross(x), top)

	bottom := nearCenter.Sub(y.Mul(c.nearHeight))
	f.Planes[common.FrustumBottom] = common.NewPlane(x.Cross(bottom.Sub(eye).Normalize()), bottom)

	left := nearCenter.Sub(x.Mul(c.nearWidth))
	f.Planes[common.FrustumLeft] = common.NewPlane(left.Sub(eye).Normalize().Cross(y), left)

	right := nearCenter.Add(x.Mul(c.nearWidth))
	f.Planes[common.FrustumRight] = common.NewPlane(y.Cross(right.Sub(eye).Normalize()), right)

	c.eye, c.center, c.up = eye, center, up
	c.x, c.y, c.z = x, y, z
	c.frustum = f

	c.viewMatrix = mgl32.LookAtV(eye, center, up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.inverseViewProjectionMatrix = c.viewProjectionMatrix.Inv()

	c.notifyListener()
}

// notifyListener forwards the eye pose. Caller must hold the mutex.
func (c *cameraImpl) notifyListener() {
	if c.listener == nil {
		return
	}
	c.listener.SetPosition(c.eye)
	c.listener.SetOrientation(c.z.Mul(-1), c.y)
}
