package camera

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/config"
	"github.com/go-gl/mathgl/mgl32"
)

type CameraBuilderOption func(*cameraImpl)

// WithInternals sets the perspective settings.
//
// Parameters:
//   - fov: vertical field of view in radians
//   - aspect: aspect ratio (width / height)
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the perspective
func WithInternals(fov, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov, c.aspect, c.near, c.far = fov, aspect, near, far
	}
}

// WithLookAt sets the initial camera pose.
//
// Parameters:
//   - eye: the camera position
//   - center: the point looked at
//   - up: the approximate up direction
//
// Returns:
//   - CameraBuilderOption: a function that sets the pose
func WithLookAt(eye, center, up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.eye, c.center, c.up = eye, center, up
	}
}

// WithViewport sets the screen size in pixels used for picking rays.
//
// Parameters:
//   - width: viewport width
//   - height: viewport height
//
// Returns:
//   - CameraBuilderOption: a function that sets the viewport
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.viewportWidth = max(width, 1)
		c.viewportHeight = max(height, 1)
	}
}

// WithTrajectory sets the trajectory lag and the eye offset added to every trajectory point.
//
// Parameters:
//   - lag: number of buffered points before the camera follows
//   - zoom: eye offset from the followed point
//
// Returns:
//   - CameraBuilderOption: a function that sets the follow behaviour
func WithTrajectory(lag int, zoom mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.lag = max(lag, 0)
		c.zoom = zoom
	}
}

// WithListener attaches a listener mirroring the eye pose.
//
// Parameters:
//   - listener: the listener
//
// Returns:
//   - CameraBuilderOption: a function that sets the listener
func WithListener(listener Listener) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.listener = listener
	}
}

// WithController attaches a controller to the camera.
// After all options are applied, the camera looks at the controller's target from its position.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}

// WithLogger sets the logger used for diagnostics.
//
// Parameters:
//   - logger: the logger, nil keeps the default
//
// Returns:
//   - CameraBuilderOption: functional option to set the logger
func WithLogger(logger *slog.Logger) CameraBuilderOption {
	return func(c *cameraImpl) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConfig applies the camera section of a configuration. Zero values keep the current settings.
//
// Parameters:
//   - cfg: the camera configuration
//
// Returns:
//   - CameraBuilderOption: functional option to apply the configuration
func WithConfig(cfg config.Camera) CameraBuilderOption {
	return func(c *cameraImpl) {
		if cfg.FovDegrees > 0 {
			c.fov = mgl32.DegToRad(cfg.FovDegrees)
		}
		c.aspect = common.Coalesce(cfg.Aspect, c.aspect)
		c.near = common.Coalesce(cfg.Near, c.near)
		c.far = common.Coalesce(cfg.Far, c.far)
		c.lag = max(cfg.Lag, 0)
		c.zoom = mgl32.Vec3(cfg.Zoom)
		c.viewportWidth = common.Coalesce(cfg.ViewportWidth, c.viewportWidth)
		c.viewportHeight = common.Coalesce(cfg.ViewportHeight, c.viewportHeight)
	}
}
