// Package export writes chunk meshes as Wavefront OBJ.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// ErrNoMeshes is returned when there is nothing to write.
var ErrNoMeshes = errors.New("no meshes to export")

// Object is one named mesh placed at Offset in world space.
type Object struct {
	Name   string
	Offset mgl32.Vec3
	Mesh   *voxel.MeshBuffers
}

// ChunkObject names a chunk mesh and offsets it to the chunk's world origin.
func ChunkObject(coord voxel.ChunkCoord, mesh *voxel.MeshBuffers) Object {
	x, y, z := coord.WorldOrigin()
	return Object{
		Name:   fmt.Sprintf("chunk_%d_%d", coord.X, coord.Z),
		Offset: mgl32.Vec3{float32(x), float32(y), float32(z)},
		Mesh:   mesh,
	}
}

// Stats summarises what WriteOBJ wrote.
type Stats struct {
	Objects   int
	Vertices  int
	Triangles int
}

// Options controls optional OBJ statements.
type Options struct {
	// MaterialLib, when set, emits mtllib and usemtl lines so viewers can
	// bind the block atlas texture.
	MaterialLib string
	Material    string
}

// WriteOBJ writes objs to w. Indices are global and 1-based across objects,
// as OBJ requires. Empty meshes are skipped.
func WriteOBJ(w io.Writer, objs []Object, opts Options) (Stats, error) {
	var stats Stats
	if len(objs) == 0 {
		return stats, ErrNoMeshes
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# blueycraft chunk export")
	if opts.MaterialLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", opts.MaterialLib)
	}

	base := 1
	for _, obj := range objs {
		m := obj.Mesh
		if m == nil || m.Empty() {
			continue
		}
		if err := m.Validate(); err != nil {
			return stats, fmt.Errorf("object %s: %w", obj.Name, err)
		}

		fmt.Fprintf(bw, "o %s\n", obj.Name)
		if opts.MaterialLib != "" && opts.Material != "" {
			fmt.Fprintf(bw, "usemtl %s\n", opts.Material)
		}
		for _, v := range m.Vertices {
			p := v.Add(obj.Offset)
			fmt.Fprintf(bw, "v %g %g %g\n", p.X(), p.Y(), p.Z())
		}
		for _, uv := range m.UVs {
			fmt.Fprintf(bw, "vt %g %g\n", uv.X(), uv.Y())
		}
		for _, n := range m.Normals() {
			fmt.Fprintf(bw, "vn %g %g %g\n", n.X(), n.Y(), n.Z())
		}
		for i := 0; i < len(m.Triangles); i += 3 {
			a := int(m.Triangles[i]) + base
			b := int(m.Triangles[i+1]) + base
			c := int(m.Triangles[i+2]) + base
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}

		base += len(m.Vertices)
		stats.Objects++
		stats.Vertices += len(m.Vertices)
		stats.Triangles += len(m.Triangles) / 3
	}

	if stats.Objects == 0 {
		return stats, ErrNoMeshes
	}
	if err := bw.Flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

// WriteFile writes objs to path, replacing any existing file.
func WriteFile(path string, objs []Object, opts Options) (Stats, error) {
	f, err := os.Create(path)
	if err != nil {
		return Stats{}, err
	}

	stats, err := WriteOBJ(f, objs, opts)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return stats, err
}

// WriteMTL writes a single-material library that maps the atlas image.
func WriteMTL(w io.Writer, material, texture string) error {
	_, err := fmt.Fprintf(w, "newmtl %s\nKa 1 1 1\nKd 1 1 1\nd 1\nillum 1\nmap_Kd %s\n", material, texture)
	return err
}
