package terrain

import "math"

// Noise is a seeded sine-scramble value-noise kernel. Every query is a
// pure function of the seed and the coordinates, so terrain can be
// recomputed from scratch at any time and always match.
type Noise struct {
	seed float64
}

func NewNoise(seed int64) *Noise {
	return &Noise{seed: float64(seed)}
}

// Hash2 returns a deterministic pseudo-random value in [0, 1) for an
// integer lattice point.
func (n *Noise) Hash2(x, z int) float64 {
	s := math.Sin(float64(x)*12.9898+float64(z)*78.233+n.seed*0.5453) * 43758.5453
	return s - math.Floor(s)
}

// Hash3 is Hash2 with an extra axis, used for per-voxel decisions.
func (n *Noise) Hash3(x, y, z int) float64 {
	s := math.Sin(float64(x)*12.9898+float64(y)*37.719+float64(z)*78.233+n.seed*0.5453) * 43758.5453
	return s - math.Floor(s)
}

func fade(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smooth interpolates lattice hashes bilinearly with a smoothstep
// fade, giving continuous value noise in [0, 1).
func (n *Noise) Smooth(x, z float64) float64 {
	x0 := int(math.Floor(x))
	z0 := int(math.Floor(z))
	tx := fade(x - float64(x0))
	tz := fade(z - float64(z0))

	a := n.Hash2(x0, z0)
	b := n.Hash2(x0+1, z0)
	c := n.Hash2(x0, z0+1)
	d := n.Hash2(x0+1, z0+1)
	return lerp(lerp(a, b, tx), lerp(c, d, tx), tz)
}

// Fractal sums octaves of Smooth with halving amplitude and doubling
// frequency, normalized back to [0, 1).
func (n *Noise) Fractal(x, z float64, octaves int) float64 {
	var sum, amp, norm float64
	amp = 1
	freq := 1.0
	for i := 0; i < octaves; i++ {
		sum += n.Smooth(x*freq+float64(i)*offsetStep, z*freq+float64(i)*offsetStep) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}

// decorrelates octave lattices
const offsetStep = 1543.0
