// Package compare implements pairwise comparison of MinHash sketches under a shared normalisation
// protocol. Two sketches built with different parameters are brought into a common comparison space
// (same flavour, same resolution, abundance-stripped on request) before any statistic is derived;
// pairs that can't be made comparable are rejected at construction time.
package compare

import (
	"errors"
	"fmt"

	"github.com/sketchpair/sketchpair/src/ani"
	"github.com/sketchpair/sketchpair/src/sketch"
)

// the comparison error taxonomy - callers can test for these with errors.Is
var (
	// ErrNoResolution means no comparison resolution was supplied or derivable
	ErrNoResolution = errors.New("must specify a comparison num or scaled value")

	// ErrKindMismatch means the two sketches are not the same flavour
	ErrKindMismatch = errors.New("both sketches must be num or scaled")

	// ErrIncompatible means the normalised sketches still disagree on k-mer size, molecule type or resolution
	ErrIncompatible = errors.New("can't compare incompatible sketches")

	// ErrNoAbundance means an abundance-weighted statistic was requested without abundance data
	ErrNoAbundance = errors.New("angular similarity requires abundance-tracked sketches")
)

// baseComparison holds a pair of original sketches plus their comparison-ready forms. It is
// embedded by the two comparison variants and never constructed on its own.
type baseComparison struct {
	mh1, mh2        *sketch.MinHash // the original sketches (never mutated)
	cmp1, cmp2      *sketch.MinHash // the comparison-ready sketches (owned copies)
	ignoreAbundance bool            // whether abundances were stripped before comparison
	ksize           uint            // k-mer size (copied from sketch 1 once compatibility is confirmed)
	moltype         string          // molecule type (copied from sketch 1 once compatibility is confirmed)
}

// normalise produces the comparison-ready sketches: strip abundance if requested, downsample both
// to the requested resolution, then confirm the pair is compatible. Exactly one of num / scaled
// must be supplied. Called once, at construction, by the comparison variants.
func (baseComparison *baseComparison) normalise(num uint, scaled uint64) error {
	if baseComparison.mh1.Kind() != baseComparison.mh2.Kind() {
		return fmt.Errorf("%w: got %v and %v", ErrKindMismatch, baseComparison.mh1.Kind(), baseComparison.mh2.Kind())
	}

	// handle the abundance policy before downsampling
	cmp1, cmp2 := baseComparison.mh1, baseComparison.mh2
	if baseComparison.ignoreAbundance {
		cmp1 = cmp1.Flatten()
		cmp2 = cmp2.Flatten()
	}

	// apply the requested resolution to both sketches
	var err error
	switch {
	case scaled != 0:
		if cmp1, err = cmp1.DownsampleScaled(scaled); err != nil {
			return err
		}
		if cmp2, err = cmp2.DownsampleScaled(scaled); err != nil {
			return err
		}
	case num != 0:
		if cmp1, err = cmp1.DownsampleNum(num); err != nil {
			return err
		}
		if cmp2, err = cmp2.DownsampleNum(num); err != nil {
			return err
		}
	default:
		return ErrNoResolution
	}

	// the compatibility check must come after downsampling as resolutions have to match first
	if !cmp1.IsCompatible(cmp2) {
		return fmt.Errorf("%w: ksize %d/%d, moltype %v/%v", ErrIncompatible, cmp1.Ksize(), cmp2.Ksize(), cmp1.Moltype(), cmp2.Moltype())
	}
	baseComparison.cmp1 = cmp1
	baseComparison.cmp2 = cmp2
	baseComparison.ksize = baseComparison.mh1.Ksize()
	baseComparison.moltype = baseComparison.mh1.Moltype()
	return nil
}

// Ksize returns the k-mer size shared by the compared sketches
func (baseComparison *baseComparison) Ksize() uint {
	return baseComparison.ksize
}

// Moltype returns the molecule type shared by the compared sketches
func (baseComparison *baseComparison) Moltype() string {
	return baseComparison.moltype
}

// IgnoreAbundance reports whether abundances were stripped before comparison
func (baseComparison *baseComparison) IgnoreAbundance() bool {
	return baseComparison.ignoreAbundance
}

// Cmp1 returns the comparison-ready form of the first sketch
func (baseComparison *baseComparison) Cmp1() *sketch.MinHash {
	return baseComparison.cmp1
}

// Cmp2 returns the comparison-ready form of the second sketch
func (baseComparison *baseComparison) Cmp2() *sketch.MinHash {
	return baseComparison.cmp2
}

// IntersectMH returns the set intersection of the flattened comparison-ready sketches
func (baseComparison *baseComparison) IntersectMH() (*sketch.MinHash, error) {
	return baseComparison.cmp1.Flatten().Intersection(baseComparison.cmp2.Flatten())
}

// Jaccard returns the Jaccard index of the comparison-ready sketches
func (baseComparison *baseComparison) Jaccard() (float64, error) {
	return baseComparison.cmp1.Jaccard(baseComparison.cmp2)
}

// JaccardANI returns an ANI estimate derived from the Jaccard index
func (baseComparison *baseComparison) JaccardANI() (ani.Estimate, error) {
	return baseComparison.cmp1.JaccardANI(baseComparison.cmp2)
}

// AngularSimilarity returns the abundance-weighted angular similarity of the comparison-ready
// sketches. It errors if the comparison was constructed with abundances ignored, or if either
// sketch does not track abundance - the other comparison statistics remain usable.
func (baseComparison *baseComparison) AngularSimilarity() (float64, error) {
	if baseComparison.ignoreAbundance {
		return 0.0, fmt.Errorf("%w: abundances were ignored for this comparison", ErrNoAbundance)
	}
	if !baseComparison.cmp1.TrackAbundance() || !baseComparison.cmp2.TrackAbundance() {
		return 0.0, ErrNoAbundance
	}
	return baseComparison.cmp1.AngularSimilarity(baseComparison.cmp2)
}

// CosineSimilarity is an alias for AngularSimilarity
func (baseComparison *baseComparison) CosineSimilarity() (float64, error) {
	return baseComparison.AngularSimilarity()
}
