// Package texture builds and decodes block atlas images.
package texture

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp" // BMP decoder registration

	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// DefaultCellSize is the edge length in pixels of one generated atlas cell.
const DefaultCellSize = 16

// Palette gives base colours for texture ids in the generated atlas.
var Palette = map[int]color.RGBA{
	0:  {R: 125, G: 125, B: 125, A: 255}, // stone
	1:  {R: 134, G: 96, B: 67, A: 255},   // dirt
	2:  {R: 110, G: 140, B: 70, A: 255},  // grass side
	4:  {R: 162, G: 130, B: 78, A: 255},  // planks
	7:  {R: 95, G: 159, B: 53, A: 255},   // grass top
	8:  {R: 100, G: 100, B: 100, A: 255}, // cobblestone
	9:  {R: 50, G: 50, B: 50, A: 255},    // bedrock
	10: {R: 219, G: 207, B: 163, A: 255}, // sand
	12: {R: 110, G: 110, B: 110, A: 255}, // furnace side
	13: {R: 80, G: 70, B: 70, A: 255},    // furnace front
	14: {R: 120, G: 120, B: 120, A: 255}, // furnace top
}

// Generate draws a procedural atlas laid out the way voxel.Atlas addresses
// it: row 0 at the top, ids increasing left to right. Each cell is its
// palette colour with a deterministic speckle.
func Generate(atlas voxel.Atlas, cellPx int) *image.RGBA {
	if cellPx <= 0 {
		cellPx = DefaultCellSize
	}
	n := atlas.SizeInBlocks
	img := image.NewRGBA(image.Rect(0, 0, n*cellPx, n*cellPx))

	for id := 0; id < atlas.Cells(); id++ {
		base := baseColor(id)
		ox := (id % n) * cellPx
		oy := (id / n) * cellPx
		for y := 0; y < cellPx; y++ {
			for x := 0; x < cellPx; x++ {
				img.SetRGBA(ox+x, oy+y, speckle(base, id, x, y))
			}
		}
	}
	return img
}

func baseColor(id int) color.RGBA {
	if c, ok := Palette[id]; ok {
		return c
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "texture-%d", id)
	v := h.Sum32()
	return color.RGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: 255}
}

// speckle darkens or lightens a pixel by a hash of its position.
func speckle(c color.RGBA, id, x, y int) color.RGBA {
	h := uint32(id*73856093) ^ uint32(x*19349663) ^ uint32(y*83492791)
	h ^= h >> 13
	h *= 0x5bd1e995
	delta := int(h>>24%32) - 16

	return color.RGBA{R: shade(c.R, delta), G: shade(c.G, delta), B: shade(c.B, delta), A: c.A}
}

func shade(v uint8, delta int) uint8 {
	n := int(v) + delta
	switch {
	case n < 0:
		return 0
	case n > 255:
		return 255
	}
	return uint8(n)
}

// Decode reads a PNG or BMP atlas. The image must be square.
func Decode(data []byte) (*image.RGBA, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding atlas: %w", err)
	}
	if format != "png" && format != "bmp" {
		return nil, fmt.Errorf("decoding atlas: unsupported format %s", format)
	}
	b := img.Bounds()
	if b.Dx() != b.Dy() || b.Dx() == 0 {
		return nil, fmt.Errorf("atlas must be square, got %dx%d", b.Dx(), b.Dy())
	}
	return ImageToRGBA(img), nil
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// ImageToRGBA converts any image.Image to *image.RGBA with origin (0, 0).
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FlipVertical returns a copy with rows reversed. OpenGL reads the first
// row of pixel data as v = 0, while atlas UVs put row 0 at v = 1.
func FlipVertical(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		dst := (b.Dy() - 1 - y) * out.Stride
		copy(out.Pix[dst:dst+rowLen], src)
	}
	return out
}
