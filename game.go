package main

import (
	"fmt"
	"io/fs"
	"math"
	"path"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/orbiter/craft"
	"github.com/milk9111/orbiter/ecs"
	"github.com/milk9111/orbiter/ecs/component"
	"github.com/milk9111/orbiter/sim"
	"github.com/rs/zerolog"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Game struct {
	frames int
	last   time.Time
	debug  bool

	sim  *sim.Simulation
	keys *ebitenKeys
	log  zerolog.Logger
}

func newGame(s *sim.Simulation, keys *ebitenKeys, log zerolog.Logger) *Game {
	return &Game{sim: s, keys: keys, log: log}
}

func (g *Game) Update() error {
	g.frames++

	now := time.Now()
	elapsed := g.sim.Clock().Interval()
	if !g.last.IsZero() {
		elapsed = now.Sub(g.last)
	}
	g.last = now

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}
	g.loadDropped()

	g.keys.Update()
	g.sim.Advance(elapsed)
	return nil
}

// loadDropped queues the first program file dropped onto the window.
func (g *Game) loadDropped() {
	dropped := ebiten.DroppedFiles()
	if dropped == nil {
		return
	}
	err := fs.WalkDir(dropped, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.ToLower(path.Ext(p)) != ".tengo" {
			return nil
		}
		data, err := fs.ReadFile(dropped, p)
		if err != nil {
			return err
		}
		g.log.Info().Str("file", p).Msg("program dropped, reloading")
		g.sim.RequestLoad(string(data))
		return fs.SkipAll
	})
	if err != nil {
		g.log.Warn().Err(err).Msg("read dropped files")
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	c, err := g.sim.Craft()
	if err != nil {
		ebitenutil.DebugPrint(screen, err.Error())
		return
	}
	v := newView(c.Transform.X, c.Transform.Y, screen.Bounds().Dx(), screen.Bounds().Dy())

	g.drawBeacons(screen, v)
	if g.debug {
		debugDrawSpace(screen, g.sim.Physics().Space(), v)
	} else {
		g.drawHulls(screen, v)
	}
	g.drawHUD(screen, c.Actuators)
}

func (g *Game) drawBeacons(screen *ebiten.Image, v view) {
	ecs.ForEach2(g.sim.World(), component.BeaconComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, b *component.Beacon, tr *component.Transform) {
		x, y := v.project(tr.X, tr.Y)
		vector.StrokeCircle(screen, x, y, float32(b.Radius), 2, colornames.Gold, true)
		ex, ey := v.project(tr.X+math.Cos(tr.Angle)*b.Radius, tr.Y+math.Sin(tr.Angle)*b.Radius)
		vector.StrokeLine(screen, x, y, ex, ey, 2, colornames.Gold, true)
	})
}

func (g *Game) drawHulls(screen *ebiten.Image, v view) {
	w := g.sim.World()
	ecs.ForEach3(w, component.KindComponent.Kind(), component.TransformComponent.Kind(), component.RigidBodyComponent.Kind(), func(e ecs.Entity, k *component.Kind, tr *component.Transform, body *component.RigidBody) {
		if k.Kind != component.KindCraft {
			return
		}
		hw, hh := body.Properties.Width/2, body.Properties.Height/2
		rot := rotation(tr.Angle)
		corners := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
		for i := range corners {
			ax, ay := rot(corners[i][0], corners[i][1])
			bx, by := rot(corners[(i+1)%4][0], corners[(i+1)%4][1])
			x0, y0 := v.project(tr.X+ax, tr.Y+ay)
			x1, y1 := v.project(tr.X+bx, tr.Y+by)
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, colornames.Lightgrey, true)
		}

		act, ok := ecs.Get(w, e, component.ActuatorsComponent.Kind())
		if !ok {
			return
		}
		for _, id := range act.Model.Actuators() {
			power := act.State.Power(id)
			if power <= 0 {
				continue
			}
			m := act.Model.Mounts[id]
			ox, oy := rot(m.Offset.X, m.Offset.Y)
			// plume points against the push direction
			dx, dy := rot(-m.Direction.X*power*40, -m.Direction.Y*power*40)
			x0, y0 := v.project(tr.X+ox, tr.Y+oy)
			x1, y1 := v.project(tr.X+ox+dx, tr.Y+oy+dy)
			vector.StrokeLine(screen, x0, y0, x1, y1, 4, colornames.Orangered, true)
		}
	})
}

func (g *Game) drawHUD(screen *ebiten.Image, act *component.Actuators) {
	var b strings.Builder
	fmt.Fprintf(&b, "Tick: %d    FPS: %.2f    TPS: %.2f\n", g.sim.Tick(), ebiten.ActualFPS(), ebiten.ActualTPS())
	if rev := g.sim.Executor().Revision(); rev != "" {
		fmt.Fprintf(&b, "Program: %s\n", rev[:8])
	} else {
		b.WriteString("Program: none\n")
	}
	for _, id := range craft.AllActuators() {
		if _, ok := act.Model.Mounts[id]; ok {
			fmt.Fprintf(&b, "%s %.2f  ", id, act.State.Power(id))
		}
	}
	b.WriteString("\n")

	stats := g.sim.Stats()
	if stats.LastLoadErr != "" {
		fmt.Fprintf(&b, "Load: %s\n", stats.LastLoadErr)
	}
	if stats.LastFailure != "" {
		fmt.Fprintf(&b, "Tick: %s\n", stats.LastFailure)
	}
	ebitenutil.DebugPrint(screen, b.String())
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

func rotation(angle float64) func(x, y float64) (float64, float64) {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return func(x, y float64) (float64, float64) {
		return x*cos - y*sin, x*sin + y*cos
	}
}
