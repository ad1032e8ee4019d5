package voxel

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// testBlocks returns air, stone and a grass block with distinct top texture.
func testBlocks() BlockTable {
	return BlockTable{
		{Name: "air", Solid: false},
		{Name: "stone", Solid: true, Textures: Uniform(0)},
		{Name: "grass", Solid: true, Textures: FaceTextures{
			Back: 2, Front: 2, Top: 7, Bottom: 1, Left: 2, Right: 2,
		}},
	}
}

func TestBuild_SingleVoxelFullyExposed(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 3, 3)
	g.SetBlock(1, 1, 1, 1)

	mesh, err := BuildMesh(g, testBlocks(), DefaultAtlas(), Empty)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if mesh.FaceCount() != 6 {
		t.Errorf("expected 6 faces, got %d", mesh.FaceCount())
	}
	if len(mesh.Vertices) != 24 {
		t.Errorf("expected 24 vertices, got %d", len(mesh.Vertices))
	}
	if len(mesh.Triangles) != 36 {
		t.Errorf("expected 36 indices, got %d", len(mesh.Triangles))
	}
	if len(mesh.UVs) != 24 {
		t.Errorf("expected 24 uvs, got %d", len(mesh.UVs))
	}
	if err := mesh.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	min, max, ok := mesh.Bounds()
	if !ok {
		t.Fatal("expected bounds for non-empty mesh")
	}
	if min != (mgl32.Vec3{1, 1, 1}) || max != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("expected bounds [1,2]^3, got %v..%v", min, max)
	}
}

func TestBuild_ClosedChunk(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{X: 2, Z: 3}, 4, 4)
	g.Fill(func(x, y, z int) BlockID { return 1 })

	mesh, err := BuildMesh(g, testBlocks(), DefaultAtlas(), Filled)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !mesh.Empty() {
		t.Errorf("expected no faces, got %d", mesh.FaceCount())
	}
}

func TestBuild_SolidChunkInEmptyWorld(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 4, 2)
	g.Fill(func(x, y, z int) BlockID { return 1 })

	mesh, err := BuildMesh(g, testBlocks(), DefaultAtlas(), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Only the outer shell is visible: 2 * (4*4) + 4 * (4*2).
	want := 2*16 + 4*8
	if mesh.FaceCount() != want {
		t.Errorf("expected %d faces, got %d", want, mesh.FaceCount())
	}
}

func TestBuild_AdjacentVoxelsCullSharedFaces(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 4, 4)
	g.SetBlock(1, 1, 1, 1)
	g.SetBlock(2, 1, 1, 1)

	mesh, err := BuildMesh(g, testBlocks(), DefaultAtlas(), Empty)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// No quad merging: 12 faces minus the two touching ones.
	if mesh.FaceCount() != 10 {
		t.Errorf("expected 10 faces, got %d", mesh.FaceCount())
	}
}

func TestBuild_BoundaryDelegatesToWorld(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{X: 1, Z: 0}, 4, 4)
	// Local (3,0,0) sits at the +X edge; its neighbour is world (8,0,0).
	g.SetBlock(3, 0, 0, 1)

	var asked [][3]int
	world := SolidityFunc(func(x, y, z int) bool {
		asked = append(asked, [3]int{x, y, z})
		return x == 8 && y == 0 && z == 0
	})

	mesh, err := BuildMesh(g, testBlocks(), DefaultAtlas(), world)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// +X culled by the world; -Y and -Z leave the chunk and are asked too.
	if mesh.FaceCount() != 5 {
		t.Errorf("expected 5 faces, got %d", mesh.FaceCount())
	}

	want := map[[3]int]bool{
		{8, 0, 0}:  true,
		{7, -1, 0}: true,
		{7, 0, -1}: true,
	}
	if len(asked) != len(want) {
		t.Fatalf("expected %d world queries, got %d: %v", len(want), len(asked), asked)
	}
	for _, q := range asked {
		if !want[q] {
			t.Errorf("unexpected world query at %v", q)
		}
	}
}

func TestBuild_UnknownBlock(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 2, 2)
	g.SetBlock(0, 0, 0, 42)

	_, err := BuildMesh(g, testBlocks(), DefaultAtlas(), Empty)
	if !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("expected ErrUnknownBlock, got %v", err)
	}
}

func TestBuild_UnknownNeighbour(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 2, 2)
	g.SetBlock(0, 0, 0, 1)
	g.SetBlock(1, 0, 0, 200)

	_, err := BuildMesh(g, testBlocks(), DefaultAtlas(), Empty)
	if !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("expected ErrUnknownBlock, got %v", err)
	}
}

func TestBuild_VertexPositionsAndWinding(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 1, 1)
	g.SetBlock(0, 0, 0, 1)

	mesh, err := BuildMesh(g, testBlocks(), DefaultAtlas(), Empty)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// First emitted face is the back face: corners 0,3,1,2 of the cube.
	back := []mgl32.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 0, 0}, {1, 1, 0}}
	for i, want := range back {
		if mesh.Vertices[i] != want {
			t.Errorf("vertex %d: expected %v, got %v", i, want, mesh.Vertices[i])
		}
	}

	wantIdx := []uint32{0, 1, 2, 2, 1, 3, 4, 5, 6, 6, 5, 7}
	for i, want := range wantIdx {
		if mesh.Triangles[i] != want {
			t.Errorf("index %d: expected %d, got %d", i, want, mesh.Triangles[i])
		}
	}

	// Both triangles of every face wind toward the face normal.
	for f := 0; f < mesh.FaceCount(); f++ {
		for tri := 0; tri < 2; tri++ {
			i := f*6 + tri*3
			a := mesh.Vertices[mesh.Triangles[i]]
			b := mesh.Vertices[mesh.Triangles[i+1]]
			c := mesh.Vertices[mesh.Triangles[i+2]]
			n := b.Sub(a).Cross(c.Sub(a))
			if n.Dot(Faces[f].Normal()) <= 0 {
				t.Errorf("face %s triangle %d: normal %v points inward", Faces[f], tri, n)
			}
		}
	}
}

func TestBuild_FaceTexturesPerFace(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 1, 1)
	g.SetBlock(0, 0, 0, 2)
	atlas := DefaultAtlas()

	mesh, err := BuildMesh(g, testBlocks(), atlas, Empty)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for i, f := range Faces {
		want := atlas.FaceUVs(testBlocks()[2].TextureID(f))
		for j := 0; j < 4; j++ {
			if got := mesh.UVs[i*4+j]; got != want[j] {
				t.Errorf("%s face uv %d: expected %v, got %v", f, j, want[j], got)
			}
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{X: -1, Z: 4}, 6, 6)
	g.Fill(func(x, y, z int) BlockID {
		if (x*7+y*3+z*5)%4 == 0 {
			return 2
		}
		if y == 0 {
			return 1
		}
		return Air
	})
	world := SolidityFunc(func(x, y, z int) bool { return (x+z)%2 == 0 })

	m := NewMesher(testBlocks(), DefaultAtlas(), world)
	a, err := m.Build(g)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, err := m.Build(g)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(a.Vertices) != len(b.Vertices) || len(a.Triangles) != len(b.Triangles) {
		t.Fatalf("buffer sizes differ between runs")
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] || a.UVs[i] != b.UVs[i] {
			t.Fatalf("vertex %d differs between runs", i)
		}
	}
	for i := range a.Triangles {
		if a.Triangles[i] != b.Triangles[i] {
			t.Fatalf("index %d differs between runs", i)
		}
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestMeshBuffers_Validate(t *testing.T) {
	tests := []struct {
		name string
		mesh MeshBuffers
	}{
		{"partial face", MeshBuffers{Vertices: make([]mgl32.Vec3, 3), UVs: make([]mgl32.Vec2, 3)}},
		{"uv mismatch", MeshBuffers{Vertices: make([]mgl32.Vec3, 4), UVs: make([]mgl32.Vec2, 2), Triangles: make([]uint32, 6)}},
		{"short indices", MeshBuffers{Vertices: make([]mgl32.Vec3, 4), UVs: make([]mgl32.Vec2, 4), Triangles: make([]uint32, 3)}},
		{"index out of range", MeshBuffers{
			Vertices:  make([]mgl32.Vec3, 4),
			UVs:       make([]mgl32.Vec2, 4),
			Triangles: []uint32{0, 1, 2, 2, 1, 4},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.mesh.Validate(); !errors.Is(err, ErrInvalidMesh) {
				t.Errorf("expected ErrInvalidMesh, got %v", err)
			}
		})
	}
}

func BenchmarkBuild_TerrainChunk(b *testing.B) {
	g := NewChunkGrid(ChunkCoord{})
	g.Fill(func(x, y, z int) BlockID {
		if y < 60+(x+z)%5 {
			return 1
		}
		return Air
	})
	m := NewMesher(testBlocks(), DefaultAtlas(), Empty)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Build(g); err != nil {
			b.Fatal(err)
		}
	}
}

func TestMeshBuffers_Normals(t *testing.T) {
	g := NewChunkGridSize(ChunkCoord{}, 1, 1)
	g.SetBlock(0, 0, 0, 1)

	mesh, err := BuildMesh(g, testBlocks(), DefaultAtlas(), Empty)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	normals := mesh.Normals()
	if len(normals) != len(mesh.Vertices) {
		t.Fatalf("expected %d normals, got %d", len(mesh.Vertices), len(normals))
	}
	for i, n := range normals {
		want := Faces[i/VerticesPerFace].Normal()
		if !n.ApproxEqual(want) {
			t.Errorf("vertex %d: expected normal %v, got %v", i, want, n)
		}
	}
}
