// Package world owns the loaded chunks of one seeded world and answers
// block and solidity queries across chunk boundaries.
package world

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/blueycraft/internal/assets"
	"github.com/Faultbox/blueycraft/internal/metrics"
	"github.com/Faultbox/blueycraft/internal/storage"
	"github.com/Faultbox/blueycraft/internal/terrain"
	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// ErrOutsideWorld is returned for chunk coordinates beyond the world edge.
var ErrOutsideWorld = errors.New("chunk outside world")

// ChunkStore persists chunk grids. *storage.ChunkStore implements it.
type ChunkStore interface {
	Load(seed int64, coord voxel.ChunkCoord) (*voxel.ChunkGrid, error)
	Save(seed int64, grid *voxel.ChunkGrid) error
}

// Chunk is a loaded chunk and, once meshed, its geometry. Mesh is written
// under the world lock; read it through World.MeshFor.
type Chunk struct {
	Coord voxel.ChunkCoord
	Grid  *voxel.ChunkGrid
	Mesh  *voxel.MeshBuffers
}

// Options configures a World.
type Options struct {
	Seed    int64
	Pack    *assets.Pack
	Store   ChunkStore       // optional
	Metrics *metrics.Metrics // optional
	Logger  *zap.Logger      // optional
	Workers int              // 0 = one per CPU
}

// World is the chunk map for one seed. Query methods are safe for concurrent
// use with Generate, Mesh and UpdateView.
type World struct {
	seed    int64
	pack    *assets.Pack
	gen     *terrain.Generator
	mesher  *voxel.Mesher
	store   ChunkStore
	metrics *metrics.Metrics
	log     *zap.Logger
	pool    pond.Pool

	mu     sync.RWMutex
	chunks map[voxel.ChunkCoord]*Chunk
	active map[voxel.ChunkCoord]bool
}

// New creates an empty world.
func New(opts Options) (*World, error) {
	if opts.Pack == nil {
		return nil, errors.New("world: asset pack is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	w := &World{
		seed:    opts.Seed,
		pack:    opts.Pack,
		gen:     terrain.New(opts.Seed, opts.Pack.Biome),
		store:   opts.Store,
		metrics: opts.Metrics,
		log:     log.Named("world"),
		pool:    pond.NewPool(workers),
		chunks:  make(map[voxel.ChunkCoord]*Chunk),
		active:  make(map[voxel.ChunkCoord]bool),
	}
	w.mesher = voxel.NewMesher(opts.Pack.Blocks, opts.Pack.Atlas, w)

	w.log.Info("world created",
		zap.Int64("seed", w.seed),
		zap.String("biome", opts.Pack.Biome.Name),
		zap.Int("workers", workers),
		zap.Bool("persistent", w.store != nil),
	)
	return w, nil
}

// Close stops the worker pool after running tasks finish.
func (w *World) Close() {
	w.pool.StopAndWait()
}

// Seed returns the world seed.
func (w *World) Seed() int64 { return w.seed }

// Pack returns the asset pack.
func (w *World) Pack() *assets.Pack { return w.pack }

// Generator returns the terrain generator.
func (w *World) Generator() *terrain.Generator { return w.gen }

// IsChunkInWorld reports whether coord lies inside the world.
func IsChunkInWorld(c voxel.ChunkCoord) bool {
	return c.X >= 0 && c.X < voxel.WorldSizeInChunks &&
		c.Z >= 0 && c.Z < voxel.WorldSizeInChunks
}

// chunkAt returns the loaded chunk holding world voxel (x, z).
func (w *World) chunkAt(x, z int) (*Chunk, int, int) {
	coord := voxel.ChunkCoordFor(mgl32.Vec3{float32(x), 0, float32(z)})
	w.mu.RLock()
	c := w.chunks[coord]
	w.mu.RUnlock()
	if c == nil || c.Grid == nil {
		return nil, 0, 0
	}
	ox, _, oz := c.Grid.WorldOrigin()
	return c, x - ox, z - oz
}

// BlockAt returns the block at a world voxel. ok is false outside the world
// or when the chunk is not loaded.
func (w *World) BlockAt(x, y, z int) (voxel.BlockID, bool) {
	if !terrain.InWorld(x, y, z) {
		return voxel.Air, false
	}
	c, lx, lz := w.chunkAt(x, z)
	if c == nil {
		return voxel.Air, false
	}
	return c.Grid.Block(lx, y, lz)
}

// SolidAt reports whether the world voxel is solid. Unloaded and out-of-world
// positions are not solid.
func (w *World) SolidAt(x, y, z int) bool {
	id, ok := w.BlockAt(x, y, z)
	return ok && w.pack.Blocks.IsSolid(id)
}

// BlockType returns the type registered for id.
func (w *World) BlockType(id voxel.BlockID) (voxel.BlockType, bool) {
	return w.pack.Blocks.Lookup(id)
}

// Chunk returns the loaded chunk at coord.
func (w *World) Chunk(coord voxel.ChunkCoord) (*Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[coord]
	return c, ok
}

// MeshFor returns the mesh of a loaded chunk, or nil before it is meshed.
func (w *World) MeshFor(coord voxel.ChunkCoord) *voxel.MeshBuffers {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if c, ok := w.chunks[coord]; ok {
		return c.Mesh
	}
	return nil
}

// Loaded returns the number of chunks with a grid.
func (w *World) Loaded() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// ActiveChunks returns the chunks inside the current view, sorted by X then Z.
func (w *World) ActiveChunks() []voxel.ChunkCoord {
	w.mu.RLock()
	coords := make([]voxel.ChunkCoord, 0, len(w.active))
	for c := range w.active {
		coords = append(coords, c)
	}
	w.mu.RUnlock()

	sortCoords(coords)
	return coords
}

// SpawnPoint returns the player start position: the world centre, high
// enough to fall onto the terrain.
func (w *World) SpawnPoint() mgl32.Vec3 {
	return mgl32.Vec3{
		voxel.WorldSizeInVoxels / 2,
		voxel.ChunkHeight - 50,
		voxel.WorldSizeInVoxels / 2,
	}
}

// PlayerChunk returns the chunk containing pos.
func (w *World) PlayerChunk(pos mgl32.Vec3) voxel.ChunkCoord {
	return voxel.ChunkCoordFor(pos)
}

// Generate makes sure every coord has a grid, loading from the store when
// possible and generating otherwise. Coordinates outside the world fail with
// ErrOutsideWorld; chunks already loaded are skipped.
func (w *World) Generate(ctx context.Context, coords []voxel.ChunkCoord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, coord := range coords {
		if !IsChunkInWorld(coord) {
			return fmt.Errorf("%w: %s", ErrOutsideWorld, coord)
		}
	}

	group := w.pool.NewGroupContext(ctx)
	for _, coord := range coords {
		if _, ok := w.Chunk(coord); ok {
			continue
		}

		group.SubmitErr(func() error {
			grid, err := w.produce(coord)
			if err != nil {
				return err
			}
			w.mu.Lock()
			if _, ok := w.chunks[coord]; !ok {
				w.chunks[coord] = &Chunk{Coord: coord, Grid: grid}
			}
			w.mu.Unlock()
			return nil
		})
	}

	return group.Wait()
}

// produce returns the grid for coord from the store or the generator.
func (w *World) produce(coord voxel.ChunkCoord) (*voxel.ChunkGrid, error) {
	start := time.Now()

	if w.store != nil {
		grid, err := w.store.Load(w.seed, coord)
		switch {
		case err == nil:
			if verr := w.checkStored(coord, grid); verr != nil {
				w.metrics.StoreError()
				w.log.Warn("stored chunk rejected, regenerating", zap.Stringer("chunk", coord), zap.Error(verr))
				break
			}
			w.metrics.ObserveChunk(metrics.SourceStore, time.Since(start))
			return grid, nil
		case errors.Is(err, storage.ErrNotFound):
		default:
			w.metrics.StoreError()
			w.log.Warn("chunk load failed, regenerating", zap.Stringer("chunk", coord), zap.Error(err))
		}
	}

	grid := w.gen.Generate(coord)
	if err := grid.Validate(w.pack.Blocks); err != nil {
		return nil, err
	}
	w.metrics.ObserveChunk(metrics.SourceGenerated, time.Since(start))

	if w.store != nil {
		if err := w.store.Save(w.seed, grid); err != nil {
			w.metrics.StoreError()
			w.log.Warn("chunk save failed", zap.Stringer("chunk", coord), zap.Error(err))
		}
	}
	return grid, nil
}

// checkStored rejects a stored grid whose shape or coordinate differs from
// what this build generates, or that holds unknown block ids.
func (w *World) checkStored(coord voxel.ChunkCoord, grid *voxel.ChunkGrid) error {
	if grid.Width() != voxel.ChunkWidth || grid.Height() != voxel.ChunkHeight {
		return fmt.Errorf("%w: grid is %dx%d, want %dx%d", storage.ErrCorruptChunk,
			grid.Width(), grid.Height(), voxel.ChunkWidth, voxel.ChunkHeight)
	}
	if got := grid.Coord(); !got.Equals(&coord) {
		return fmt.Errorf("%w: grid is for chunk %s", storage.ErrCorruptChunk, got)
	}
	return grid.Validate(w.pack.Blocks)
}

// Mesh builds meshes for the given loaded chunks. Neighbouring chunks should
// be generated first so boundary faces are culled against them.
func (w *World) Mesh(ctx context.Context, coords []voxel.ChunkCoord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chunks := make([]*Chunk, 0, len(coords))
	for _, coord := range coords {
		c, ok := w.Chunk(coord)
		if !ok {
			return fmt.Errorf("meshing %s: chunk not loaded", coord)
		}
		chunks = append(chunks, c)
	}

	group := w.pool.NewGroupContext(ctx)
	for _, c := range chunks {
		group.SubmitErr(func() error {
			start := time.Now()
			mesh, err := w.mesher.Build(c.Grid)
			if err != nil {
				return err
			}
			w.metrics.ObserveMesh(mesh.FaceCount(), time.Since(start))

			w.mu.Lock()
			c.Mesh = mesh
			w.mu.Unlock()
			return nil
		})
	}

	return group.Wait()
}

// ViewDiff lists chunks that entered or left the view in one update.
type ViewDiff struct {
	Activated   []voxel.ChunkCoord
	Deactivated []voxel.ChunkCoord
}

// UpdateView activates every in-world chunk within ViewDistanceInChunks of
// center and deactivates the rest. Chunks one step beyond the view are
// generated too, so edge meshes see their neighbours.
func (w *World) UpdateView(ctx context.Context, center voxel.ChunkCoord) (ViewDiff, error) {
	view := chunksAround(center, voxel.ViewDistanceInChunks)
	ring := chunksAround(center, voxel.ViewDistanceInChunks+1)

	if err := w.Generate(ctx, ring); err != nil {
		return ViewDiff{}, err
	}

	inView := make(map[voxel.ChunkCoord]bool, len(view))
	var toMesh []voxel.ChunkCoord
	var diff ViewDiff

	w.mu.Lock()
	for _, c := range view {
		inView[c] = true
		if !w.active[c] {
			w.active[c] = true
			diff.Activated = append(diff.Activated, c)
		}
		if w.chunks[c].Mesh == nil {
			toMesh = append(toMesh, c)
		}
	}
	for c := range w.active {
		if !inView[c] {
			delete(w.active, c)
			diff.Deactivated = append(diff.Deactivated, c)
		}
	}
	active := len(w.active)
	w.mu.Unlock()

	sortCoords(diff.Deactivated)
	w.metrics.SetActiveChunks(active)

	if err := w.Mesh(ctx, toMesh); err != nil {
		return diff, err
	}

	if len(diff.Activated) > 0 || len(diff.Deactivated) > 0 {
		w.log.Debug("view updated",
			zap.Stringer("center", center),
			zap.Int("activated", len(diff.Activated)),
			zap.Int("deactivated", len(diff.Deactivated)),
			zap.Int("meshed", len(toMesh)),
		)
	}
	return diff, nil
}

// chunksAround returns in-world chunks within radius of center on both axes,
// in X then Z order.
func chunksAround(center voxel.ChunkCoord, radius int) []voxel.ChunkCoord {
	var out []voxel.ChunkCoord
	for x := center.X - radius; x <= center.X+radius; x++ {
		for z := center.Z - radius; z <= center.Z+radius; z++ {
			c := voxel.ChunkCoord{X: x, Z: z}
			if IsChunkInWorld(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func sortCoords(c []voxel.ChunkCoord) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].X != c[j].X {
			return c[i].X < c[j].X
		}
		return c[i].Z < c[j].Z
	})
}
