package compare

// defaultANIConfidence is the confidence level used for ANI intervals unless overridden
const defaultANIConfidence = 0.95

// options holds the optional knobs shared by the comparison constructors
type options struct {
	ignoreAbundance bool    // strip abundances before comparison
	cmpNum          uint    // forced comparison num (0 = derive from the sketches)
	cmpScaled       uint64  // forced comparison scaled value (0 = derive from the sketches)
	thresholdBP     uint64  // minimum estimated overlap in base pairs (scaled comparisons)
	estimateANICI   bool    // attach confidence intervals to containment ANI estimates
	aniConfidence   float64 // confidence level for ANI intervals
}

// Option is a function for setting optional comparison parameters
type Option func(*options)

// defaultOptions returns the options used when the caller supplies none
func defaultOptions() *options {
	return &options{
		aniConfidence: defaultANIConfidence,
	}
}

// IgnoreAbundance strips abundance information from both sketches before comparison
func IgnoreAbundance() Option {
	return func(options *options) {
		options.ignoreAbundance = true
	}
}

// WithNum forces the sample count used for a num comparison, overriding the default of the
// smaller of the two sketches' own sample counts
func WithNum(num uint) Option {
	return func(options *options) {
		options.cmpNum = num
	}
}

// WithScaled forces the subsampling rate used for a scaled comparison, overriding the default of
// the coarser of the two sketches' own rates
func WithScaled(scaled uint64) Option {
	return func(options *options) {
		options.cmpScaled = scaled
	}
}

// WithThresholdBP sets the minimum estimated overlap (in base pairs) a scaled comparison must
// reach for PassThreshold to report true
func WithThresholdBP(thresholdBP uint64) Option {
	return func(options *options) {
		options.thresholdBP = thresholdBP
	}
}

// WithANIConfidenceInterval requests confidence intervals on containment ANI estimates
func WithANIConfidenceInterval() Option {
	return func(options *options) {
		options.estimateANICI = true
	}
}

// WithANIConfidence sets the confidence level for ANI intervals (default 0.95)
func WithANIConfidence(confidence float64) Option {
	return func(options *options) {
		options.aniConfidence = confidence
	}
}
