package compare

import (
	"fmt"

	"github.com/sketchpair/sketchpair/src/ani"
	"github.com/sketchpair/sketchpair/src/sketch"
)

// ScaledComparison is a comparison between two FracMinHash (scaled) sketches. On top of the shared
// statistics it offers directional and symmetric containment, containment-derived ANI estimates,
// a base-pair estimate of the overlap and reconstruction of abundances over the intersection.
type ScaledComparison struct {
	baseComparison
	cmpScaled     uint64  // the subsampling rate the comparison was normalised to
	thresholdBP   uint64  // minimum estimated overlap for PassThreshold
	estimateANICI bool    // whether containment ANI estimates carry confidence intervals
	aniConfidence float64 // confidence level for ANI intervals
}

// NewScaledComparison normalises a pair of scaled sketches and returns a comparison over them.
// Unless forced with WithScaled, the comparison rate is the coarser (larger) of the two sketches'
// own rates - resolution can only be coarsened, never invented finer than the data supports.
func NewScaledComparison(mh1, mh2 *sketch.MinHash, opts ...Option) (*ScaledComparison, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.cmpNum != 0 {
		return nil, fmt.Errorf("%w: a num value was supplied for a scaled comparison", ErrNoResolution)
	}

	// check the flavours before deriving a default resolution from the subsampling rates
	if mh1.Kind() != sketch.KindScaled || mh2.Kind() != sketch.KindScaled {
		return nil, fmt.Errorf("%w: got %v and %v", ErrKindMismatch, mh1.Kind(), mh2.Kind())
	}
	cmpScaled := options.cmpScaled
	if cmpScaled == 0 {
		cmpScaled = mh1.Scaled()
		if mh2.Scaled() > cmpScaled {
			cmpScaled = mh2.Scaled()
		}
	}
	comparison := &ScaledComparison{
		baseComparison: baseComparison{
			mh1:             mh1,
			mh2:             mh2,
			ignoreAbundance: options.ignoreAbundance,
		},
		cmpScaled:     cmpScaled,
		thresholdBP:   options.thresholdBP,
		estimateANICI: options.estimateANICI,
		aniConfidence: options.aniConfidence,
	}
	if err := comparison.normalise(0, cmpScaled); err != nil {
		return nil, err
	}
	return comparison, nil
}

// CmpScaled returns the subsampling rate the comparison was normalised to
func (ScaledComparison *ScaledComparison) CmpScaled() uint64 {
	return ScaledComparison.cmpScaled
}

// ThresholdBP returns the overlap threshold the comparison was constructed with
func (ScaledComparison *ScaledComparison) ThresholdBP() uint64 {
	return ScaledComparison.thresholdBP
}

// IntersectBP estimates the number of base pairs shared by the two sketches
func (ScaledComparison *ScaledComparison) IntersectBP() (uint64, error) {
	intersect, err := ScaledComparison.IntersectMH()
	if err != nil {
		return 0, err
	}
	return uint64(intersect.Len()) * ScaledComparison.cmpScaled, nil
}

// PassThreshold reports whether the estimated overlap reaches the comparison's threshold
func (ScaledComparison *ScaledComparison) PassThreshold() (bool, error) {
	intersectBP, err := ScaledComparison.IntersectBP()
	if err != nil {
		return false, err
	}
	return intersectBP >= ScaledComparison.thresholdBP, nil
}

// MH1Containment returns the fraction of sketch 1 contained by sketch 2
func (ScaledComparison *ScaledComparison) MH1Containment() (float64, error) {
	return ScaledComparison.cmp1.ContainedBy(ScaledComparison.cmp2)
}

// MH1ContainmentANI returns an ANI estimate derived from sketch 1's containment in sketch 2
func (ScaledComparison *ScaledComparison) MH1ContainmentANI() (ani.Estimate, error) {
	return ScaledComparison.cmp1.ContainmentANI(ScaledComparison.cmp2, ScaledComparison.aniConfidence, ScaledComparison.estimateANICI)
}

// MH2Containment returns the fraction of sketch 2 contained by sketch 1
func (ScaledComparison *ScaledComparison) MH2Containment() (float64, error) {
	return ScaledComparison.cmp2.ContainedBy(ScaledComparison.cmp1)
}

// MH2ContainmentANI returns an ANI estimate derived from sketch 2's containment in sketch 1
func (ScaledComparison *ScaledComparison) MH2ContainmentANI() (ani.Estimate, error) {
	return ScaledComparison.cmp2.ContainmentANI(ScaledComparison.cmp1, ScaledComparison.aniConfidence, ScaledComparison.estimateANICI)
}

// MaxContainment returns the larger of the two directional containments
func (ScaledComparison *ScaledComparison) MaxContainment() (float64, error) {
	return ScaledComparison.cmp1.MaxContainment(ScaledComparison.cmp2)
}

// MaxContainmentANI returns an ANI estimate derived from the max containment
func (ScaledComparison *ScaledComparison) MaxContainmentANI() (ani.Estimate, error) {
	return ScaledComparison.cmp1.MaxContainmentANI(ScaledComparison.cmp2, ScaledComparison.aniConfidence, ScaledComparison.estimateANICI)
}

// AvgContainment returns the arithmetic mean of the two directional containments
func (ScaledComparison *ScaledComparison) AvgContainment() (float64, error) {
	c1, err := ScaledComparison.MH1Containment()
	if err != nil {
		return 0.0, err
	}
	c2, err := ScaledComparison.MH2Containment()
	if err != nil {
		return 0.0, err
	}
	return (c1 + c2) / 2.0, nil
}

// AvgContainmentANI returns the arithmetic mean of the two directional containment ANI point
// estimates. Confidence interval bounds are not averaged.
func (ScaledComparison *ScaledComparison) AvgContainmentANI() (float64, error) {
	ani1, err := ScaledComparison.MH1ContainmentANI()
	if err != nil {
		return 0.0, err
	}
	ani2, err := ScaledComparison.MH2ContainmentANI()
	if err != nil {
		return 0.0, err
	}
	return (ani1.ANI + ani2.ANI) / 2.0, nil
}

// WeightedIntersection reconstructs abundances over the intersection hashes. A source sketch with
// abundance tracking takes precedence over the explicit mapping; any intersection hash absent from
// the chosen source defaults to abundance 1 rather than being dropped. With no source at all the
// plain intersection is returned.
// TODO: revisit the default-to-1 policy once downstream consumers agree on whether 0 is wanted.
func (ScaledComparison *ScaledComparison) WeightedIntersection(fromMH *sketch.MinHash, fromAbundances map[uint64]uint64) (*sketch.MinHash, error) {
	intersect, err := ScaledComparison.IntersectMH()
	if err != nil {
		return nil, err
	}

	// a source sketch takes precedence over the supplied mapping
	if fromMH != nil && fromMH.TrackAbundance() {
		fromAbundances = fromMH.Hashes()
	}
	if len(fromAbundances) == 0 {
		return intersect, nil
	}

	// map abundances onto the intersection hashes, defaulting any absentee to 1
	abundances := make(map[uint64]uint64, intersect.Len())
	for hash := range intersect.Hashes() {
		abundance, present := fromAbundances[hash]
		if !present {
			abundance = 1
		}
		abundances[hash] = abundance
	}
	weighted := intersect.CopyAndClear()
	if err := weighted.SetAbundances(abundances); err != nil {
		return nil, err
	}
	return weighted, nil
}
