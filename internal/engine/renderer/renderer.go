// Package renderer draws chunk meshes with OpenGL.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/blueycraft/internal/engine/shader"
	"github.com/Faultbox/blueycraft/internal/engine/texture"
	"github.com/Faultbox/blueycraft/internal/logger"
	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	Wireframe bool
}

// Scene lighting and fog.
var (
	SkyColor = mgl32.Vec3{0.53, 0.78, 0.92}
	LightDir = mgl32.Vec3{-0.4, -1, -0.25}
	FogStart = float32(voxel.ViewDistanceInChunks-2) * voxel.ChunkWidth
	FogEnd   = float32(voxel.ViewDistanceInChunks) * voxel.ChunkWidth
)

type chunkMesh struct {
	vao, vbo, ebo uint32
	indices       int32
	model         mgl32.Mat4
}

// Renderer owns the voxel program, the atlas texture and one vertex array
// per uploaded chunk.
type Renderer struct {
	config  Config
	program *shader.Program
	atlas   uint32
	chunks  map[voxel.ChunkCoord]*chunkMesh
	log     *zap.Logger
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		chunks: make(map[voxel.ChunkCoord]*chunkMesh),
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.ClearColor(SkyColor.X(), SkyColor.Y(), SkyColor.Z(), 1.0)

	var err error
	r.program, err = shader.NewVoxelProgram()
	if err != nil {
		return nil, fmt.Errorf("failed to create voxel program: %w", err)
	}

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("chunks", len(r.chunks)))
	for coord := range r.chunks {
		r.Remove(coord)
	}
	if r.atlas != 0 {
		gl.DeleteTextures(1, &r.atlas)
		r.atlas = 0
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// SetAtlas uploads the block atlas with nearest filtering.
func (r *Renderer) SetAtlas(img *image.RGBA) {
	flipped := texture.FlipVertical(img)

	if r.atlas == 0 {
		gl.GenTextures(1, &r.atlas)
	}
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	b := flipped.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&flipped.Pix[0]))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.log.Debug("atlas uploaded", zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
}

// Upload replaces the GPU mesh for coord. Empty meshes remove it.
func (r *Renderer) Upload(coord voxel.ChunkCoord, mesh *voxel.MeshBuffers) {
	r.Remove(coord)
	if mesh == nil || mesh.Empty() {
		return
	}

	vertices := Interleave(mesh)
	x, y, z := coord.WorldOrigin()
	cm := &chunkMesh{
		indices: int32(len(mesh.Triangles)),
		model:   mgl32.Translate3D(float32(x), float32(y), float32(z)),
	}

	gl.GenVertexArrays(1, &cm.vao)
	gl.BindVertexArray(cm.vao)

	gl.GenBuffers(1, &cm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, cm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &cm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, cm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Triangles)*4, unsafe.Pointer(&mesh.Triangles[0]), gl.STATIC_DRAW)

	stride := int32(FloatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, stride, 5*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	r.chunks[coord] = cm
}

// Remove frees the GPU mesh for coord, if any.
func (r *Renderer) Remove(coord voxel.ChunkCoord) {
	cm, ok := r.chunks[coord]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &cm.vao)
	gl.DeleteBuffers(1, &cm.vbo)
	gl.DeleteBuffers(1, &cm.ebo)
	delete(r.chunks, coord)
}

// Has reports whether coord has an uploaded mesh.
func (r *Renderer) Has(coord voxel.ChunkCoord) bool {
	_, ok := r.chunks[coord]
	return ok
}

// SetWireframe toggles polygon line mode.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
}

// Wireframe reports whether line mode is on.
func (r *Renderer) Wireframe() bool {
	return r.config.Wireframe
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {}

// Draw renders every uploaded chunk.
func (r *Renderer) Draw(view, projection mgl32.Mat4) int {
	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.program.Use()
	r.program.SetMat4("uView", view)
	r.program.SetMat4("uProjection", projection)
	r.program.SetVec3("uLightDir", LightDir)
	r.program.SetVec3("uFogColor", SkyColor)
	r.program.SetFloat("uFogStart", FogStart)
	r.program.SetFloat("uFogEnd", FogEnd)
	r.program.SetInt("uAtlas", 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)

	drawn := 0
	for _, cm := range r.chunks {
		r.program.SetMat4("uModel", cm.model)
		gl.BindVertexArray(cm.vao)
		gl.DrawElements(gl.TRIANGLES, cm.indices, gl.UNSIGNED_INT, nil)
		drawn++
	}
	gl.BindVertexArray(0)
	return drawn
}
