package core

import (
	"math"
	"sort"
)

// Distribution1D is a piecewise-constant distribution over n equal bins of [0,1).
// CDF[i] holds the mass of bins 0..i, so CDF is non-decreasing and ends at 1.
type Distribution1D struct {
	PMF      []float64
	CDF      []float64
	integral float64
}

// NewDistribution1D builds a distribution proportional to f.
// Negative entries are treated as zero. If the total mass is zero the
// distribution falls back to uniform.
func NewDistribution1D(f []float64) *Distribution1D {
	n := len(f)
	d := &Distribution1D{PMF: make([]float64, n), CDF: make([]float64, n)}
	if n == 0 {
		return d
	}

	total := 0.0
	for _, v := range f {
		if v > 0 {
			total += v
		}
	}
	d.integral = total / float64(n)

	if total <= 0 {
		for i := range d.PMF {
			d.PMF[i] = 1 / float64(n)
			d.CDF[i] = float64(i+1) / float64(n)
		}
		return d
	}

	running := 0.0
	for i, v := range f {
		if v > 0 {
			d.PMF[i] = v / total
		}
		running += d.PMF[i]
		d.CDF[i] = running
	}
	d.CDF[n-1] = 1
	return d
}

// Len returns the number of bins
func (d *Distribution1D) Len() int {
	return len(d.PMF)
}

// Integral returns the average of f over the domain, before normalization
func (d *Distribution1D) Integral() float64 {
	return d.integral
}

// SampleDiscrete maps u in [0,1) to a bin index. Returns -1 for an empty distribution.
func (d *Distribution1D) SampleDiscrete(u float64) int {
	n := len(d.CDF)
	if n == 0 {
		return -1
	}
	// upper bound: first bin whose cdf exceeds u
	i := sort.Search(n, func(i int) bool { return d.CDF[i] > u })
	if i >= n {
		i = n - 1
		for i > 0 && d.PMF[i] == 0 {
			i--
		}
	}
	return i
}

// SampleContinuous maps u in [0,1) to a position in [0,1) with density PDF
func (d *Distribution1D) SampleContinuous(u float64) float64 {
	x, _ := d.sampleContinuous(u)
	return x
}

// sampleContinuous also returns the bin x falls in. x never rounds up into bin i+1.
func (d *Distribution1D) sampleContinuous(u float64) (float64, int) {
	n := len(d.CDF)
	if n == 0 {
		return 0, -1
	}
	i := d.SampleDiscrete(u)
	lower := 0.0
	if i > 0 {
		lower = d.CDF[i-1]
	}
	du := 0.0
	if d.PMF[i] > 0 {
		du = (u - lower) / d.PMF[i]
	}
	du = min(max(du, 0), 1)
	x := (float64(i) + du) / float64(n)
	if x >= 1 {
		x = math.Nextafter(1, 0)
	}
	for x > 0 && int(x*float64(n)) > i {
		x = math.Nextafter(x, 0)
	}
	return x, i
}

// Probability returns the mass of bin i
func (d *Distribution1D) Probability(i int) float64 {
	if i < 0 || i >= len(d.PMF) {
		return 0
	}
	return d.PMF[i]
}

// PDF returns the density at x in [0,1)
func (d *Distribution1D) PDF(x float64) float64 {
	n := len(d.PMF)
	if n == 0 || x < 0 || x > 1 {
		return 0
	}
	i := min(int(x*float64(n)), n-1)
	return d.PMF[i] * float64(n)
}

// Distribution2D samples a piecewise-constant function on a width x height grid.
// The marginal selects a row (v), the row's conditional selects a column (u).
type Distribution2D struct {
	Conditional []*Distribution1D
	Marginal    *Distribution1D
}

// NewDistribution2D builds a distribution from row-major samples f[y*width+x]
func NewDistribution2D(f []float64, width, height int) *Distribution2D {
	d := &Distribution2D{Conditional: make([]*Distribution1D, height)}
	rowIntegrals := make([]float64, height)
	for y := 0; y < height; y++ {
		d.Conditional[y] = NewDistribution1D(f[y*width : (y+1)*width])
		rowIntegrals[y] = d.Conditional[y].Integral()
	}
	d.Marginal = NewDistribution1D(rowIntegrals)
	return d
}

// Sample maps a uniform 2D sample to (u, v) in [0,1)^2
func (d *Distribution2D) Sample(sample Vec2) Vec2 {
	if d.Marginal.Len() == 0 {
		return Vec2{}
	}
	v, row := d.Marginal.sampleContinuous(sample.Y)
	u := d.Conditional[row].SampleContinuous(sample.X)
	return NewVec2(u, v)
}

// PDF returns the joint density at uv with respect to area in [0,1)^2
func (d *Distribution2D) PDF(uv Vec2) float64 {
	h := d.Marginal.Len()
	if h == 0 || uv.Y < 0 || uv.Y > 1 {
		return 0
	}
	row := min(int(uv.Y*float64(h)), h-1)
	return d.Marginal.PDF(uv.Y) * d.Conditional[row].PDF(uv.X)
}
