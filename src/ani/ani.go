// Package ani converts containment and Jaccard estimates between genomic sketches into
// average nucleotide identity (ANI) estimates.
package ani

import (
	"fmt"
	"math"
)

// Estimate holds an ANI point estimate and an optional confidence interval
type Estimate struct {
	ANI     float64 // the ANI point estimate (0.0 - 1.0)
	ANILow  float64 // lower confidence bound (only meaningful when HasCI is set)
	ANIHigh float64 // upper confidence bound (only meaningful when HasCI is set)
	HasCI   bool    // whether a confidence interval was estimated
	Empty   bool    // whether the underlying comparison had no shared hashes
}

// FromContainment estimates ANI from a containment value at a given k-mer size. When estimateCI is
// set, a confidence interval is attached using a normal approximation of the containment variance
// (nHashes is the size of the sketch that the containment denominator was taken from).
func FromContainment(containment float64, ksize uint, nHashes int, confidence float64, estimateCI bool) (Estimate, error) {
	if containment < 0.0 || containment > 1.0 {
		return Estimate{}, fmt.Errorf("containment must be between 0 and 1, got %f", containment)
	}
	if ksize == 0 {
		return Estimate{}, fmt.Errorf("k-mer size must be greater than 0")
	}
	if containment == 0.0 {
		return Estimate{Empty: true}, nil
	}
	point := math.Pow(containment, 1.0/float64(ksize))
	estimate := Estimate{ANI: point}
	if !estimateCI {
		return estimate, nil
	}
	if confidence <= 0.0 || confidence >= 1.0 {
		return Estimate{}, fmt.Errorf("confidence must be between 0 and 1, got %f", confidence)
	}
	if nHashes <= 0 {
		return Estimate{}, fmt.Errorf("need the denominator sketch size to estimate a confidence interval")
	}

	// delta method: propagate the containment variance through the ANI transform
	varContainment := containment * (1.0 - containment) / float64(nHashes)
	derivative := math.Pow(containment, 1.0/float64(ksize)-1.0) / float64(ksize)
	sd := math.Sqrt(varContainment) * derivative
	z := math.Sqrt2 * math.Erfinv(confidence)
	estimate.ANILow = clampUnit(point - z*sd)
	estimate.ANIHigh = clampUnit(point + z*sd)
	estimate.HasCI = true
	return estimate, nil
}

// FromJaccard estimates ANI from a Jaccard index at a given k-mer size. No confidence interval is
// attached: the error of the Jaccard index is not well behaved under subsampling, so only the point
// estimate is reported.
func FromJaccard(jaccard float64, ksize uint) (Estimate, error) {
	if jaccard < 0.0 || jaccard > 1.0 {
		return Estimate{}, fmt.Errorf("jaccard must be between 0 and 1, got %f", jaccard)
	}
	if ksize == 0 {
		return Estimate{}, fmt.Errorf("k-mer size must be greater than 0")
	}
	if jaccard == 0.0 {
		return Estimate{Empty: true}, nil
	}
	point := math.Pow(2.0*jaccard/(1.0+jaccard), 1.0/float64(ksize))
	return Estimate{ANI: point}, nil
}

// clampUnit restricts a value to the unit interval
func clampUnit(value float64) float64 {
	if value < 0.0 {
		return 0.0
	}
	if value > 1.0 {
		return 1.0
	}
	return value
}
