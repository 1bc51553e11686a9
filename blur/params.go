package blur

import "math"

// Default parameter values applied when a caller supplies zero or invalid
// fields. They match the renderer's tuned production defaults.
const (
	DefaultMinKernelSize = 9
	DefaultMaxKernelSize = 45
	DefaultFocusExponent = 2.5
	DefaultBaseWeight    = 0.35

	minKernelFloor = 3
)

// Params defines a public type used by goRedact APIs.
//
// Params instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Params struct {
	// MinKernelSize is the Gaussian kernel for the light blur pass. Odd, >= 3.
	MinKernelSize int
	// MaxKernelSize is the Gaussian kernel for the strong blur pass. Odd, >= MinKernelSize.
	MaxKernelSize int
	// FocusExponent shapes the feather falloff from center to edge. >= 0.
	FocusExponent float64
	// BaseWeight is the minimum strong-blur share at the region boundary. [0, 1].
	BaseWeight float64
}

// Sanitize returns a copy of p with every field forced into its legal range:
// kernels are floored at 3 and rounded up to odd, a swapped pair is corrected
// by raising the max to the min, the exponent is floored at zero, and the base
// weight is clamped to [0, 1]. Non-finite values fall back to defaults.
//
// The sanitized copy, not the raw input, is what rendering uses and what is
// echoed back to callers.
func (p Params) Sanitize() Params {
	out := p

	out.MinKernelSize = sanitizeKernel(p.MinKernelSize, DefaultMinKernelSize)
	out.MaxKernelSize = sanitizeKernel(p.MaxKernelSize, DefaultMaxKernelSize)
	if out.MaxKernelSize < out.MinKernelSize {
		out.MaxKernelSize = out.MinKernelSize
	}

	if math.IsNaN(out.FocusExponent) || math.IsInf(out.FocusExponent, 0) {
		out.FocusExponent = DefaultFocusExponent
	}
	if out.FocusExponent < 0 {
		out.FocusExponent = 0
	}

	if math.IsNaN(out.BaseWeight) || math.IsInf(out.BaseWeight, 0) {
		out.BaseWeight = DefaultBaseWeight
	}
	if out.BaseWeight < 0 {
		out.BaseWeight = 0
	}
	if out.BaseWeight > 1 {
		out.BaseWeight = 1
	}

	return out
}

// DefaultParams returns the tuned default parameter set, already sanitized.
func DefaultParams() Params {
	return Params{
		MinKernelSize: DefaultMinKernelSize,
		MaxKernelSize: DefaultMaxKernelSize,
		FocusExponent: DefaultFocusExponent,
		BaseWeight:    DefaultBaseWeight,
	}
}

func sanitizeKernel(k, fallback int) int {
	if k <= 0 {
		k = fallback
	}
	if k < minKernelFloor {
		k = minKernelFloor
	}
	if k%2 == 0 {
		k++
	}
	return k
}

// kernelSigma converts an odd kernel size to the Gaussian sigma the renderer
// feeds to the blur pass. Same mapping OpenCV applies when sigma is left zero,
// so tuned kernel values carry over unchanged.
func kernelSigma(kernel int) float64 {
	return 0.3*((float64(kernel)-1)*0.5-1) + 0.8
}
