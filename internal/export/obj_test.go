package export

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/blueycraft/internal/assets"
	"github.com/Faultbox/blueycraft/pkg/voxel"
)

func cubeMesh(t *testing.T) *voxel.MeshBuffers {
	t.Helper()
	pack, err := assets.Default()
	if err != nil {
		t.Fatalf("loading default pack: %v", err)
	}
	g := voxel.NewChunkGridSize(voxel.ChunkCoord{}, 1, 1)
	g.SetBlock(0, 0, 0, pack.Biome.Stone)

	mesh, err := voxel.BuildMesh(g, pack.Blocks, pack.Atlas, voxel.Empty)
	if err != nil {
		t.Fatalf("BuildMesh: %v", err)
	}
	return mesh
}

// countPrefixes counts lines by their leading statement keyword.
func countPrefixes(t *testing.T, data []byte) (map[string]int, []string) {
	t.Helper()
	counts := make(map[string]int)
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		lines = append(lines, line)
		if i := strings.IndexByte(line, ' '); i > 0 {
			counts[line[:i]]++
		}
	}
	return counts, lines
}

func TestWriteOBJSingleCube(t *testing.T) {
	var buf bytes.Buffer
	stats, err := WriteOBJ(&buf, []Object{{Name: "cube", Mesh: cubeMesh(t)}}, Options{})
	if err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}

	if stats.Objects != 1 || stats.Vertices != 24 || stats.Triangles != 12 {
		t.Errorf("unexpected stats %+v", stats)
	}

	counts, lines := countPrefixes(t, buf.Bytes())
	for prefix, want := range map[string]int{"o": 1, "v": 24, "vt": 24, "vn": 24, "f": 12} {
		if counts[prefix] != want {
			t.Errorf("expected %d %q lines, got %d", want, prefix, counts[prefix])
		}
	}
	if counts["mtllib"] != 0 {
		t.Error("expected no mtllib without a material library")
	}

	// Back face first: corners (0,0,0), (0,1,0), (1,0,0); triangle 1/2/3.
	var firstFace string
	for _, l := range lines {
		if strings.HasPrefix(l, "f ") {
			firstFace = l
			break
		}
	}
	if firstFace != "f 1/1/1 2/2/2 3/3/3" {
		t.Errorf("unexpected first face %q", firstFace)
	}
	if !strings.Contains(buf.String(), "vn 0 0 -1\n") {
		t.Error("expected a back face normal")
	}
}

func TestWriteOBJOffsetsAndIndexBase(t *testing.T) {
	mesh := cubeMesh(t)
	objs := []Object{
		ChunkObject(voxel.ChunkCoord{X: 0, Z: 0}, mesh),
		{Name: "empty", Mesh: voxel.NewMeshBuffers(0)},
		ChunkObject(voxel.ChunkCoord{X: 1, Z: 2}, mesh),
	}

	var buf bytes.Buffer
	stats, err := WriteOBJ(&buf, objs, Options{MaterialLib: "atlas.mtl", Material: "blocks"})
	if err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	if stats.Objects != 2 || stats.Triangles != 24 {
		t.Errorf("expected two objects and 24 triangles, got %+v", stats)
	}

	out := buf.String()
	for _, want := range []string{
		"mtllib atlas.mtl\n",
		"o chunk_0_0\n",
		"o chunk_1_2\n",
		"usemtl blocks\n",
		"v 16 0 32\n",
		"f 25/25/25 26/26/26 27/27/27\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(out, "o empty") {
		t.Error("empty meshes should be skipped")
	}
}

func TestWriteOBJErrors(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteOBJ(&buf, nil, Options{}); !errors.Is(err, ErrNoMeshes) {
		t.Errorf("expected ErrNoMeshes, got %v", err)
	}

	buf.Reset()
	empty := []Object{{Name: "nil"}, {Name: "empty", Mesh: voxel.NewMeshBuffers(0)}}
	if _, err := WriteOBJ(&buf, empty, Options{}); !errors.Is(err, ErrNoMeshes) {
		t.Errorf("expected ErrNoMeshes when every mesh is empty, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing written, got %q", buf.String())
	}

	bad := cubeMesh(t)
	bad.Triangles[0] = 999
	if _, err := WriteOBJ(&buf, []Object{{Name: "bad", Mesh: bad}}, Options{}); !errors.Is(err, voxel.ErrInvalidMesh) {
		t.Errorf("expected ErrInvalidMesh, got %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.obj")
	stats, err := WriteFile(path, []Object{{Name: "cube", Mesh: cubeMesh(t)}}, Options{})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	counts, _ := countPrefixes(t, data)
	if counts["f"] != stats.Triangles {
		t.Errorf("file has %d faces, stats say %d", counts["f"], stats.Triangles)
	}
}

func TestWriteMTL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMTL(&buf, "blocks", "atlas.png"); err != nil {
		t.Fatalf("WriteMTL: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "newmtl blocks\n") || !strings.Contains(buf.String(), "map_Kd atlas.png\n") {
		t.Errorf("unexpected material library:\n%s", buf.String())
	}
}
