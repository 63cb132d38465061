package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/milk9111/orbiter/input"
)

// ErrNotLoaded is returned by Headless when the program never loaded.
var ErrNotLoaded = errors.New("sim: program did not load")

// Pose is the craft's final state in a Report.
type Pose struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Angle           float64 `json:"angle"`
	VX              float64 `json:"vx"`
	VY              float64 `json:"vy"`
	AngularVelocity float64 `json:"angular_velocity"`
}

// Report summarises a headless run.
type Report struct {
	Ticks       int                `json:"ticks"`
	Revision    string             `json:"revision"`
	Craft       Pose               `json:"craft"`
	Levels      map[string]float64 `json:"levels"`
	Failures    map[string]int     `json:"failures"`
	LastFailure string             `json:"last_failure,omitempty"`
}

// Headless loads src and runs ticks ticks, feeding keys from tl. It stops
// early when ctx is done.
func Headless(ctx context.Context, s *Simulation, src string, ticks int, tl input.Timeline) (Report, error) {
	s.SetContext(ctx)
	s.RequestLoad(src)

	ran := 0
	for ; ran < ticks; ran++ {
		if err := ctx.Err(); err != nil {
			break
		}
		s.SetKeys(tl.At(ran))
		s.Step()
		if ran == 0 && !s.exec.Loaded() {
			return Report{}, fmt.Errorf("%w: %s", ErrNotLoaded, s.Stats().LastLoadErr)
		}
	}

	c, err := s.Craft()
	if err != nil {
		return Report{}, err
	}
	stats := s.Stats()
	r := Report{
		Ticks:       ran,
		Revision:    s.exec.Revision(),
		Levels:      c.Actuators.State.Levels(),
		Failures:    stats.Failures,
		LastFailure: stats.LastFailure,
	}
	r.Craft.X, r.Craft.Y, r.Craft.Angle = c.Transform.X, c.Transform.Y, c.Transform.Angle
	if c.Body != nil {
		if ctrl, ok := s.physics.Controller(c.Body.Handle); ok {
			v := ctrl.Velocity()
			r.Craft.VX, r.Craft.VY = v.X, v.Y
			r.Craft.AngularVelocity = ctrl.AngularVelocity()
		}
	}
	return r, ctx.Err()
}
