// Package game implements the client loop: input, fixed-step player physics,
// chunk streaming and rendering.
package game

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/blueycraft/internal/config"
	"github.com/Faultbox/blueycraft/internal/engine/camera"
	"github.com/Faultbox/blueycraft/internal/engine/input"
	"github.com/Faultbox/blueycraft/internal/engine/renderer"
	"github.com/Faultbox/blueycraft/internal/engine/texture"
	"github.com/Faultbox/blueycraft/internal/engine/window"
	"github.com/Faultbox/blueycraft/internal/game/entity"
	"github.com/Faultbox/blueycraft/internal/logger"
	"github.com/Faultbox/blueycraft/internal/metrics"
	"github.com/Faultbox/blueycraft/internal/world"
	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// Game is the main game instance.
type Game struct {
	config  *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	world   *world.World
	metrics *metrics.Metrics
	camera  *camera.FirstPersonCamera
	player  *entity.Player

	center     voxel.ChunkCoord
	mouseGrab  bool
	frameLimit time.Duration
	log        *zap.Logger
}

// New opens the window and renderer and places the player at the world
// spawn point.
func New(cfg *config.Config, w *world.World, m *metrics.Metrics) (*Game, error) {
	g := &Game{
		config:  cfg,
		world:   w,
		metrics: m,
		log:     logger.Named("game"),
	}
	if cfg.Graphics.FPSLimit > 0 {
		g.frameLimit = time.Second / time.Duration(cfg.Graphics.FPSLimit)
	}

	g.log.Info("initializing game",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int64("seed", w.Seed()),
	)

	var err error
	g.window, err = window.New(window.Config{
		Title:      "Blueycraft",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := g.window.GetSize()
	g.renderer, err = renderer.New(renderer.Config{
		Width:     width,
		Height:    height,
		Wireframe: cfg.Graphics.Wireframe,
	})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	atlas, err := g.atlasImage()
	if err != nil {
		g.Close()
		return nil, err
	}
	g.renderer.SetAtlas(atlas)

	g.input = input.New()
	g.setMouseGrab(true)

	spawn := w.SpawnPoint()
	g.player = entity.NewPlayer(spawn, w)
	g.camera = camera.New(g.player.Eye(), cfg.Graphics.FOV, cfg.Controls.MouseSensitivity)
	g.camera.InvertY = cfg.Controls.InvertY

	g.log.Info("game initialized", zap.Stringer("spawn", vec(spawn)))
	return g, nil
}

func (g *Game) atlasImage() (*image.RGBA, error) {
	pack := g.world.Pack()
	if pack.AtlasImage == nil {
		return texture.Generate(pack.Atlas, texture.DefaultCellSize), nil
	}
	img, err := texture.Decode(pack.AtlasImage)
	if err != nil {
		return nil, fmt.Errorf("loading atlas image: %w", err)
	}
	return img, nil
}

// Run loads the chunks around the spawn point and runs the loop until the
// window closes, escape is pressed or ctx is cancelled.
func (g *Game) Run(ctx context.Context) error {
	g.center = g.world.PlayerChunk(g.player.Position)
	if err := g.streamChunks(ctx, g.center); err != nil {
		return fmt.Errorf("loading spawn chunks: %w", err)
	}

	g.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	g.log.Info("starting game loop")

	for g.running {
		if ctx.Err() != nil {
			break
		}

		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastTime).Seconds())
		lastTime = frameStart

		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()

		if err := g.update(ctx, dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		g.render()
		g.window.SwapBuffers()

		if g.frameLimit > 0 {
			if rest := g.frameLimit - time.Since(frameStart); rest > 0 {
				time.Sleep(rest)
			}
		}
		g.metrics.ObserveFrame(time.Since(frameStart))

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			state := g.player.State()
			g.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Stringer("pos", vec(g.player.Position)),
				zap.Bool("grounded", state.Grounded),
				zap.Bool("sprinting", state.Sprinting),
			)
			g.window.SetTitle(fmt.Sprintf("Blueycraft - %d fps - chunk %s", frameCount, g.center))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up game resources.
func (g *Game) Close() {
	g.log.Info("closing game")

	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}

func (g *Game) handleEvents() {
	for _, event := range g.input.Events() {
		if event.Type == input.EventWindowResize {
			g.renderer.Resize(event.Width, event.Height)
		}
	}

	state := g.input.State()
	if state.Pressed(input.ActionQuit) {
		g.running = false
	}
	if state.Pressed(input.ActionToggleMouse) {
		g.setMouseGrab(!g.mouseGrab)
	}
	if state.Pressed(input.ActionWireframe) {
		g.renderer.SetWireframe(!g.renderer.Wireframe())
	}
}

func (g *Game) setMouseGrab(on bool) {
	g.mouseGrab = on
	input.SetRelativeMouse(on)
}

func (g *Game) update(ctx context.Context, dt float32) error {
	state := g.input.State()

	if g.mouseGrab {
		dx, dy := state.MouseDelta()
		g.camera.HandleMouse(float32(dx), float32(dy))
	}

	forward, right := state.Axes()
	g.player.Update(dt, entity.Intent{
		Move:           g.camera.Move(forward, right),
		Jump:           state.Pressed(input.ActionJump),
		SprintPressed:  state.Pressed(input.ActionSprint),
		SprintReleased: state.Released(input.ActionSprint),
	})
	g.camera.Position = g.player.Eye()

	if c := g.world.PlayerChunk(g.player.Position); !c.Equals(&g.center) {
		g.center = c
		return g.streamChunks(ctx, c)
	}
	return nil
}

// streamChunks updates the active view around center and syncs the GPU.
func (g *Game) streamChunks(ctx context.Context, center voxel.ChunkCoord) error {
	start := time.Now()
	diff, err := g.world.UpdateView(ctx, center)
	if err != nil {
		return err
	}

	for _, c := range diff.Deactivated {
		g.renderer.Remove(c)
	}
	for _, c := range g.world.ActiveChunks() {
		if !g.renderer.Has(c) {
			g.renderer.Upload(c, g.world.MeshFor(c))
		}
	}

	g.log.Debug("chunks streamed",
		zap.Stringer("center", center),
		zap.Int("activated", len(diff.Activated)),
		zap.Int("deactivated", len(diff.Deactivated)),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (g *Game) render() {
	g.renderer.Begin()
	g.renderer.Draw(g.camera.ViewMatrix(), g.camera.Projection(g.window.Aspect()))
	g.renderer.End()
}

type vec mgl32.Vec3

func (v vec) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}
