// Package config holds the YAML configuration shared by the scene, camera, light manager,
// octree, profiler and engine builders.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is the cause of every validation error returned by Validate, Parse and Load.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration document.
type Config struct {
	Octree   Octree   `yaml:"octree"`
	Camera   Camera   `yaml:"camera"`
	Lights   Lights   `yaml:"lights"`
	Profiler Profiler `yaml:"profiler"`
	Engine   Engine   `yaml:"engine"`
}

// Octree configures the spatial index.
type Octree struct {
	// Min and Max are the corners of the world extent covered by the root cell.
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`

	// MaxDepth bounds how many times a cell may be subdivided.
	MaxDepth int `yaml:"max_depth"`
}

// Camera configures the view frustum and follow behaviour.
type Camera struct {
	FovDegrees float32 `yaml:"fov_degrees"`
	Aspect     float32 `yaml:"aspect"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`

	// Lag is the number of trajectory points buffered before the camera starts following.
	Lag int `yaml:"lag"`

	// Zoom is the eye offset added to every trajectory point.
	Zoom [3]float32 `yaml:"zoom"`

	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`
}

// Lights configures affecting-light selection.
type Lights struct {
	// MaxAffecting truncates per-object affecting-light lists. Zero means unlimited.
	MaxAffecting int `yaml:"max_affecting"`

	// Workers is the number of goroutines refreshing affecting-light caches. Zero refreshes serially.
	Workers int `yaml:"workers"`

	// ParallelThreshold is the minimum number of visible rendrables before the worker pool is used.
	ParallelThreshold int `yaml:"parallel_threshold"`
}

// Profiler configures frame statistics output.
type Profiler struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Engine configures the frame loop.
type Engine struct {
	// TickRate is the target number of frames per second for Run.
	TickRate float64 `yaml:"tick_rate"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Octree: Octree{
			Min:      [3]float32{-1000, -1000, -1000},
			Max:      [3]float32{1000, 1000, 1000},
			MaxDepth: 8,
		},
		Camera: Camera{
			FovDegrees:     45,
			Aspect:         1,
			Near:           0.1,
			Far:            100,
			ViewportWidth:  1280,
			ViewportHeight: 720,
		},
		Lights: Lights{
			ParallelThreshold: 64,
		},
		Profiler: Profiler{
			Interval: time.Second,
		},
		Engine: Engine{
			TickRate: 60,
		},
	}
}

// Parse decodes a YAML document on top of Default and validates the result.
// Keys missing from the document keep their default values.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: decoding or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the YAML file at path.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the decoded configuration
//   - error: read, decoding or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %q", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %q", path)
	}
	return cfg, nil
}

// Validate checks the configuration for values the builders cannot use.
//
// Returns:
//   - error: nil, or an error whose cause is ErrInvalid
func (c Config) Validate() error {
	for i := 0; i < 3; i++ {
		if c.Octree.Min[i] >= c.Octree.Max[i] {
			return errors.Wrapf(ErrInvalid, "octree: min[%d] (%g) must be below max[%d] (%g)", i, c.Octree.Min[i], i, c.Octree.Max[i])
		}
	}
	if c.Octree.MaxDepth < 0 {
		return errors.Wrapf(ErrInvalid, "octree: max_depth must not be negative, got %d", c.Octree.MaxDepth)
	}
	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		return errors.Wrapf(ErrInvalid, "camera: fov_degrees must be in (0, 180), got %g", c.Camera.FovDegrees)
	}
	if c.Camera.Aspect <= 0 {
		return errors.Wrapf(ErrInvalid, "camera: aspect must be positive, got %g", c.Camera.Aspect)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return errors.Wrapf(ErrInvalid, "camera: need 0 < near < far, got near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.Lag < 0 {
		return errors.Wrapf(ErrInvalid, "camera: lag must not be negative, got %d", c.Camera.Lag)
	}
	if c.Lights.MaxAffecting < 0 || c.Lights.Workers < 0 || c.Lights.ParallelThreshold < 0 {
		return errors.Wrap(ErrInvalid, "lights: values must not be negative")
	}
	if c.Profiler.Interval < 0 {
		return errors.Wrapf(ErrInvalid, "profiler: interval must not be negative, got %s", c.Profiler.Interval)
	}
	if c.Engine.TickRate < 0 {
		return errors.Wrapf(ErrInvalid, "engine: tick_rate must not be negative, got %g", c.Engine.TickRate)
	}
	return nil
}
