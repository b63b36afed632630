// Package config loads the YAML configuration for a planning run. Every
// field has a default, so a file only needs the values it changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/fgam/spatialam/pkg/engine"
	"github.com/fgam/spatialam/pkg/graph"
	"github.com/fgam/spatialam/pkg/motion"
	"github.com/fgam/spatialam/pkg/network"
	"github.com/fgam/spatialam/pkg/plane"
	"github.com/fgam/spatialam/pkg/program"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Engine configures source evaluation.
type Engine struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the full planning configuration.
type Config struct {
	Graph   graph.Options   `yaml:"graph"`
	Network network.Options `yaml:"network"`
	Plane   plane.Options   `yaml:"plane"`
	Motion  motion.Policy   `yaml:"motion"`
	Program program.Options `yaml:"program"`
	Engine  Engine          `yaml:"engine"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Graph:   graph.DefaultOptions(),
		Network: network.DefaultOptions(),
		Plane:   plane.DefaultOptions(),
		Motion:  motion.DefaultPolicy(),
		Program: program.DefaultOptions(),
		Engine:  Engine{Timeout: engine.EvalTimeout},
	}
}

// Load reads path and decodes it over the defaults. Unknown keys are an
// error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// ProgramOptions returns the assembly options with the orientation
// tolerance taken from the graph options.
func (c Config) ProgramOptions() program.Options {
	o := c.Program
	o.OrientationTolerance = c.Graph.OrientationTolerance
	return o
}

// Validate rejects non-positive tolerances, steps and timeouts.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"graph.connectivityTolerance", c.Graph.Tolerance},
		{"graph.orientationTolerance", c.Graph.OrientationTolerance},
		{"graph.zLayerTolerance", c.Graph.ZLayerTolerance},
		{"graph.pairingTolerance", c.Graph.PairingTolerance},
		{"network.mergeTolerance", c.Network.MergeTolerance},
		{"plane.shortSegmentLength", c.Plane.ShortSegmentLength},
		{"plane.steepAngle", c.Plane.SteepAngle},
		{"plane.targetAngle", c.Plane.TargetAngle},
		{"motion.velocityRatioMultiplier", c.Motion.VelocityRatioMultiplier},
		{"motion.minVelocityRatio", c.Motion.MinVelocityRatio},
		{"motion.waypointStep", c.Motion.WaypointStep},
		{"motion.velocityDecay", c.Motion.VelocityDecay},
		{"program.minSegmentLength", c.Program.MinSegmentLength},
		{"program.boundaryVelocity", c.Program.BoundaryVelocity},
		{"program.traversalVelocity", c.Program.TraversalVelocity},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalid, p.name, p.v)
		}
	}
	if c.Graph.IndexThreshold < 0 {
		return fmt.Errorf("%w: graph.indexThreshold must not be negative", ErrInvalid)
	}
	if c.Plane.TargetAngle > c.Plane.SteepAngle {
		return fmt.Errorf("%w: plane.targetAngle %g exceeds steepAngle %g", ErrInvalid, c.Plane.TargetAngle, c.Plane.SteepAngle)
	}
	if c.Motion.MinVelocityRatio > 1 {
		return fmt.Errorf("%w: motion.minVelocityRatio must not exceed 1", ErrInvalid)
	}
	if c.Network.TrailTimeout < 0 || c.Engine.Timeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalid)
	}
	return nil
}
