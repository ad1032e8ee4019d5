// Package terrain generates chunk contents from seeded perlin noise.
package terrain

import (
	"github.com/aquilax/go-perlin"

	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// Perlin parameters: smoothing, frequency step and octave count.
const (
	noiseAlpha  = 2.0
	noiseBeta   = 2.0
	noiseOctave = 3
)

// sampleNudge keeps samples off integer lattice points, where perlin is flat.
const sampleNudge = 0.1

// Noise samples seeded perlin noise in the ranges terrain needs.
type Noise struct {
	p *perlin.Perlin
}

// NewNoise creates a noise source for seed.
func NewNoise(seed int64) *Noise {
	return &Noise{p: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed)}
}

// sample returns 2D noise remapped to [0, 1].
func (n *Noise) sample(x, y float64) float64 {
	v := (n.p.Noise2D(x, y) + 1) / 2
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Get2D samples a heightmap value in [0, 1] for column (x, z). Coordinates
// are measured in chunks before scaling.
func (n *Noise) Get2D(x, z int, offset, scale float32) float32 {
	fx := (float64(x)+sampleNudge)/voxel.ChunkWidth*float64(scale) + float64(offset)
	fz := (float64(z)+sampleNudge)/voxel.ChunkWidth*float64(scale) + float64(offset)
	return float32(n.sample(fx, fz))
}

// Get3D reports whether the 3D noise at (x, y, z) exceeds threshold. The 3D
// value is the mean of the six axis-pair 2D samples.
func (n *Noise) Get3D(x, y, z int, offset, scale, threshold float32) bool {
	fx := (float64(x) + float64(offset) + sampleNudge) * float64(scale)
	fy := (float64(y) + float64(offset) + sampleNudge) * float64(scale)
	fz := (float64(z) + float64(offset) + sampleNudge) * float64(scale)

	ab := n.sample(fx, fy)
	bc := n.sample(fy, fz)
	ac := n.sample(fx, fz)
	ba := n.sample(fy, fx)
	cb := n.sample(fz, fy)
	ca := n.sample(fz, fx)

	return (ab+bc+ac+ba+cb+ca)/6 > float64(threshold)
}
