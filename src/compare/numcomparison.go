package compare

import (
	"fmt"

	"github.com/sketchpair/sketchpair/src/sketch"
)

// NumComparison is a comparison between two bottom-num MinHash sketches. Containment statistics
// are not offered for this flavour as fixed sample counts don't support meaningful containment.
type NumComparison struct {
	baseComparison
	cmpNum uint // the sample count the comparison was normalised to
}

// NewNumComparison normalises a pair of bottom-num sketches and returns a comparison over them.
// Unless forced with WithNum, the comparison sample count is the smaller of the two sketches' own
// counts, guaranteeing both hold enough data to be downsampled to it.
func NewNumComparison(mh1, mh2 *sketch.MinHash, opts ...Option) (*NumComparison, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.cmpScaled != 0 {
		return nil, fmt.Errorf("%w: a scaled value was supplied for a num comparison", ErrNoResolution)
	}

	// check the flavours before deriving a default resolution from the sample counts
	if mh1.Kind() != sketch.KindNum || mh2.Kind() != sketch.KindNum {
		return nil, fmt.Errorf("%w: got %v and %v", ErrKindMismatch, mh1.Kind(), mh2.Kind())
	}
	cmpNum := options.cmpNum
	if cmpNum == 0 {
		cmpNum = mh1.Num()
		if mh2.Num() < cmpNum {
			cmpNum = mh2.Num()
		}
	}
	comparison := &NumComparison{
		baseComparison: baseComparison{
			mh1:             mh1,
			mh2:             mh2,
			ignoreAbundance: options.ignoreAbundance,
		},
		cmpNum: cmpNum,
	}
	if err := comparison.normalise(cmpNum, 0); err != nil {
		return nil, err
	}
	return comparison, nil
}

// CmpNum returns the sample count the comparison was normalised to
func (NumComparison *NumComparison) CmpNum() uint {
	return NumComparison.cmpNum
}
