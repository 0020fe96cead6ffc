package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithRadius sets the initial orbit radius (distance from the pivot).
//
// Parameters:
//   - radius: distance from the pivot
//
// Returns:
//   - CameraControllerOption: functional option to set the radius
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithRadiusBounds sets the radius range Zoom is clamped to.
//
// Parameters:
//   - minRadius: closest allowed distance
//   - maxRadius: farthest allowed distance
//
// Returns:
//   - CameraControllerOption: functional option to set the bounds
func WithRadiusBounds(minRadius, maxRadius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if minRadius > 0 && maxRadius >= minRadius {
			cc.minRadius, cc.maxRadius = minRadius, maxRadius
		}
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - CameraControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.elevation = elevation
	}
}

// WithTarget sets the pivot point.
//
// Parameters:
//   - target: the pivot
//
// Returns:
//   - CameraControllerOption: functional option to set the pivot
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithZoomSpeed sets the multiplier applied to Zoom deltas.
//
// Parameters:
//   - speed: the multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the multiplier applied to Pan distances.
//
// Parameters:
//   - speed: the multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}
