// voxeltool is a CLI utility for inspecting Blueycraft worlds without a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/Faultbox/blueycraft/internal/assets"
	"github.com/Faultbox/blueycraft/internal/config"
	"github.com/Faultbox/blueycraft/internal/engine/texture"
	"github.com/Faultbox/blueycraft/internal/export"
	"github.com/Faultbox/blueycraft/internal/logger"
	"github.com/Faultbox/blueycraft/internal/metrics"
	"github.com/Faultbox/blueycraft/internal/storage"
	"github.com/Faultbox/blueycraft/internal/world"
	"github.com/Faultbox/blueycraft/pkg/voxel"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "validate":
		err = cmdValidate(args)
	case "chunk":
		err = cmdChunk(args)
	case "mesh":
		err = cmdMesh(args)
	case "export", "obj":
		err = cmdExport(args)
	case "metrics":
		err = cmdMetrics(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`voxeltool - Blueycraft world utility

Usage:
  voxeltool <command> [options]

Commands:
  validate                     Load and validate the asset pack
  chunk  -x X -z Z             Generate one chunk and print block statistics
  mesh   -x X -z Z             Mesh one chunk against its neighbours
  export -x X -z Z -o FILE     Write chunks within -radius as Wavefront OBJ
  metrics                      Stream the view around -x/-z and dump metrics

Every command also accepts the client flags: -config, -seed, -assets,
-save-dir, -workers, -debug.

Examples:
  voxeltool validate -assets ./packs/desert
  voxeltool chunk -seed 42 -x 5 -z 5
  voxeltool export -x 5 -z 5 -radius 2 -o spawn.obj -mtl
  voxeltool metrics -save-dir ./save`)
}

// session is the world and config shared by every subcommand.
type session struct {
	cfg     *config.Config
	world   *world.World
	metrics *metrics.Metrics
	store   *storage.ChunkStore
}

func (s *session) Close() {
	s.world.Close()
	if s.store != nil {
		s.store.Close()
	}
}

// parse binds the client flags plus any extra ones on a fresh FlagSet.
func parse(name string, args []string, extra func(fs *flag.FlagSet)) (*config.Config, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.BindFlags(fs)
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(logger.Options{Level: cfg.Logging.Level, Console: true}); err != nil {
		return nil, nil, err
	}
	return cfg, fs, nil
}

func openSession(cfg *config.Config) (*session, error) {
	pack, err := assets.LoadDir(cfg.World.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	s := &session{cfg: cfg, metrics: metrics.New()}
	opts := world.Options{
		Seed:    cfg.World.Seed,
		Pack:    pack,
		Metrics: s.metrics,
		Logger:  logger.Log,
		Workers: cfg.World.MeshWorkers,
	}
	if cfg.World.SaveDir != "" {
		s.store, err = storage.Open(cfg.World.SaveDir, logger.Log)
		if err != nil {
			return nil, err
		}
		opts.Store = s.store
	}

	s.world, err = world.New(opts)
	if err != nil {
		if s.store != nil {
			s.store.Close()
		}
		return nil, err
	}
	return s, nil
}

func cmdValidate(args []string) error {
	cfg, _, err := parse("validate", args, nil)
	if err != nil {
		return err
	}

	pack, err := assets.LoadDir(cfg.World.AssetsDir)
	if err != nil {
		return err
	}

	src := "embedded"
	if cfg.World.AssetsDir != "" {
		src = cfg.World.AssetsDir
	}
	fmt.Printf("Pack:    %s\n", src)
	fmt.Printf("Atlas:   %dx%d (%d textures)\n", pack.Atlas.SizeInBlocks, pack.Atlas.SizeInBlocks, pack.Atlas.Cells())
	fmt.Printf("Blocks:  %d\n", len(pack.Blocks))
	for id, bt := range pack.Blocks {
		kind := "air"
		if bt.Solid {
			kind = "solid"
		}
		fmt.Printf("  %3d %-12s %s\n", id, bt.Name, kind)
	}

	b := pack.Biome
	fmt.Printf("Biome:   %s (ground %d, terrain %d, scale %.2f)\n", b.Name, b.SolidGroundHeight, b.TerrainHeight, b.TerrainScale)
	for _, l := range b.Lodes {
		fmt.Printf("  lode %-10s %-12s y %d..%d scale %.2f threshold %.2f\n",
			l.Name, pack.Blocks[l.Block].Name, l.MinHeight, l.MaxHeight, l.Scale, l.Threshold)
	}
	if pack.AtlasImage != nil {
		img, err := texture.Decode(pack.AtlasImage)
		if err != nil {
			return err
		}
		fmt.Printf("Image:   override %dx%d\n", img.Bounds().Dx(), img.Bounds().Dy())
	}
	fmt.Println("OK")
	return nil
}

func coordFlags(fs *flag.FlagSet) (x, z *int) {
	center := voxel.WorldSizeInChunks / 2
	x = fs.Int("x", center, "Chunk X")
	z = fs.Int("z", center, "Chunk Z")
	return x, z
}

func cmdChunk(args []string) error {
	var x, z *int
	cfg, _, err := parse("chunk", args, func(fs *flag.FlagSet) { x, z = coordFlags(fs) })
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	coord := voxel.ChunkCoord{X: *x, Z: *z}
	start := time.Now()
	if err := s.world.Generate(context.Background(), []voxel.ChunkCoord{coord}); err != nil {
		return err
	}
	took := time.Since(start)

	c, _ := s.world.Chunk(coord)
	counts := make(map[voxel.BlockID]int)
	for _, id := range c.Grid.Raw() {
		counts[id]++
	}

	ox, _, oz := coord.WorldOrigin()
	minH, maxH := voxel.ChunkHeight, 0
	for lx := 0; lx < voxel.ChunkWidth; lx++ {
		for lz := 0; lz < voxel.ChunkWidth; lz++ {
			h := s.world.Generator().Height(ox+lx, oz+lz)
			minH = min(minH, h)
			maxH = max(maxH, h)
		}
	}

	pack := s.world.Pack()
	fmt.Printf("Chunk:   %s (seed %d)\n", coord, cfg.World.Seed)
	fmt.Printf("Time:    %v\n", took.Round(time.Microsecond))
	fmt.Printf("Height:  %d..%d\n", minH, maxH)
	fmt.Printf("Solid:   %d of %d\n", c.Grid.Count(pack.Blocks), c.Grid.Len())
	fmt.Println("Blocks:")

	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Printf("  %-12s %6d\n", pack.Blocks[id].Name, counts[voxel.BlockID(id)])
	}
	return nil
}

func cmdMesh(args []string) error {
	var x, z *int
	cfg, _, err := parse("mesh", args, func(fs *flag.FlagSet) { x, z = coordFlags(fs) })
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	coord := voxel.ChunkCoord{X: *x, Z: *z}
	if err := meshAround(s.world, coord, 0); err != nil {
		return err
	}

	mesh := s.world.MeshFor(coord)
	fmt.Printf("Chunk:     %s (seed %d)\n", coord, cfg.World.Seed)
	fmt.Printf("Faces:     %d\n", mesh.FaceCount())
	fmt.Printf("Vertices:  %d\n", len(mesh.Vertices))
	fmt.Printf("Triangles: %d\n", len(mesh.Triangles)/3)
	if lo, hi, ok := mesh.Bounds(); ok {
		fmt.Printf("Bounds:    %v .. %v\n", lo, hi)
	}
	return nil
}

// meshAround generates chunks within radius+1 of center and meshes those
// within radius, so every mesh is culled against loaded neighbours.
func meshAround(w *world.World, center voxel.ChunkCoord, radius int) error {
	if !world.IsChunkInWorld(center) {
		return fmt.Errorf("%w: %s", world.ErrOutsideWorld, center)
	}
	ctx := context.Background()
	if err := w.Generate(ctx, inWorldSquare(center, radius+1)); err != nil {
		return err
	}
	return w.Mesh(ctx, inWorldSquare(center, radius))
}

func inWorldSquare(center voxel.ChunkCoord, radius int) []voxel.ChunkCoord {
	var out []voxel.ChunkCoord
	for x := center.X - radius; x <= center.X+radius; x++ {
		for z := center.Z - radius; z <= center.Z+radius; z++ {
			c := voxel.ChunkCoord{X: x, Z: z}
			if world.IsChunkInWorld(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func cmdExport(args []string) error {
	var (
		x, z   *int
		radius *int
		out    *string
		mtl    *bool
	)
	cfg, _, err := parse("export", args, func(fs *flag.FlagSet) {
		x, z = coordFlags(fs)
		radius = fs.Int("radius", 0, "Also export chunks within this many chunks of -x/-z")
		out = fs.String("o", "chunks.obj", "Output OBJ path")
		mtl = fs.Bool("mtl", false, "Write a material library and atlas PNG next to the OBJ")
	})
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	center := voxel.ChunkCoord{X: *x, Z: *z}
	if err := meshAround(s.world, center, *radius); err != nil {
		return err
	}

	var objs []export.Object
	for _, c := range inWorldSquare(center, *radius) {
		objs = append(objs, export.ChunkObject(c, s.world.MeshFor(c)))
	}

	var opts export.Options
	if *mtl {
		opts, err = writeMaterial(*out, s.world.Pack())
		if err != nil {
			return err
		}
	}

	stats, err := export.WriteFile(*out, objs, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %d objects, %d vertices, %d triangles\n", *out, stats.Objects, stats.Vertices, stats.Triangles)
	return nil
}

// writeMaterial writes <name>.mtl and <name>.png beside the OBJ path.
func writeMaterial(objPath string, pack *assets.Pack) (export.Options, error) {
	base := strings.TrimSuffix(objPath, filepath.Ext(objPath))
	mtlPath, pngPath := base+".mtl", base+".png"

	png, err := os.Create(pngPath)
	if err != nil {
		return export.Options{}, err
	}
	img := texture.Generate(pack.Atlas, texture.DefaultCellSize)
	if pack.AtlasImage != nil {
		if img, err = texture.Decode(pack.AtlasImage); err != nil {
			png.Close()
			return export.Options{}, err
		}
	}
	if err := texture.Encode(png, img); err != nil {
		png.Close()
		return export.Options{}, err
	}
	if err := png.Close(); err != nil {
		return export.Options{}, err
	}

	mtlFile, err := os.Create(mtlPath)
	if err != nil {
		return export.Options{}, err
	}
	if err := export.WriteMTL(mtlFile, "blocks", filepath.Base(pngPath)); err != nil {
		mtlFile.Close()
		return export.Options{}, err
	}
	if err := mtlFile.Close(); err != nil {
		return export.Options{}, err
	}

	return export.Options{MaterialLib: filepath.Base(mtlPath), Material: "blocks"}, nil
}

func cmdMetrics(args []string) error {
	var x, z *int
	cfg, _, err := parse("metrics", args, func(fs *flag.FlagSet) { x, z = coordFlags(fs) })
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	diff, err := s.world.UpdateView(context.Background(), voxel.ChunkCoord{X: *x, Z: *z})
	if err != nil {
		return err
	}
	fmt.Printf("Activated %d chunks, %d loaded\n\n", len(diff.Activated), s.world.Loaded())

	families, err := s.metrics.Registry().Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			printMetric(mf, m)
		}
	}
	return nil
}

func printMetric(mf *dto.MetricFamily, m *dto.Metric) {
	name := mf.GetName()
	if labels := m.GetLabel(); len(labels) > 0 {
		parts := make([]string, 0, len(labels))
		for _, l := range labels {
			parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
		}
		name += "{" + strings.Join(parts, ",") + "}"
	}

	switch mf.GetType() {
	case dto.MetricType_COUNTER:
		fmt.Printf("%-55s %g\n", name, m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		fmt.Printf("%-55s %g\n", name, m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		mean := 0.0
		if n := h.GetSampleCount(); n > 0 {
			mean = h.GetSampleSum() / float64(n)
		}
		fmt.Printf("%-55s count=%d mean=%.6fs\n", name, h.GetSampleCount(), mean)
	}
}
