// Package sketch contains the MinHash sketch implementations used by sketchpair. Two flavours are
// implemented: FracMinHash (scaled) sketches, which keep every hash below a cutoff derived from the
// subsampling rate, and bottom-num sketches, which keep the smallest num hashes seen. Both flavours
// use the ntHash rolling hash function to decompose sequences into canonical k-mers.
package sketch

import (
	"fmt"
	"math"
	"sort"

	"github.com/will-rowe/ntHash"

	"github.com/sketchpair/sketchpair/src/ani"
)

// CANONICAL tells ntHash to return the canonical k-mer
const CANONICAL bool = true

// DNA is the default molecule type for a sketch
const DNA string = "DNA"

// Kind labels the flavour of a MinHash sketch - a sketch is always exactly one of these
type Kind int

const (
	// KindNum marks a bottom-num sketch (fixed sample count)
	KindNum Kind = iota

	// KindScaled marks a FracMinHash sketch (fixed subsampling rate)
	KindScaled
)

// String is a method to print the sketch kind
func (kind Kind) String() string {
	if kind == KindNum {
		return "num"
	}
	return "scaled"
}

// MinHash is the structure for a single sketch of k-mer content
type MinHash struct {
	ksize          uint              // the k-mer size used to build the sketch
	moltype        string            // the molecule type of the sketched sequences
	kind           Kind              // the sketch flavour (num or scaled)
	num            uint              // the sample count (KindNum only)
	scaled         uint64            // the subsampling rate (KindScaled only)
	maxHash        uint64            // the retention cutoff (KindScaled only)
	trackAbundance bool              // whether k-mer multiplicities are recorded
	hashes         map[uint64]uint64 // the retained hashes and their abundances (all 1 when not tracking)
}

// maxHashForScaled converts a subsampling rate to a hash retention cutoff
func maxHashForScaled(scaled uint64) uint64 {
	return math.MaxUint64 / scaled
}

// NewScaledMinHash is the constructor for a FracMinHash sketch
func NewScaledMinHash(ksize uint, moltype string, scaled uint64, trackAbundance bool) (*MinHash, error) {
	if ksize == 0 {
		return nil, fmt.Errorf("k-mer size must be greater than 0")
	}
	if scaled == 0 {
		return nil, fmt.Errorf("scaled value must be greater than 0")
	}
	return &MinHash{
		ksize:          ksize,
		moltype:        moltype,
		kind:           KindScaled,
		scaled:         scaled,
		maxHash:        maxHashForScaled(scaled),
		trackAbundance: trackAbundance,
		hashes:         make(map[uint64]uint64),
	}, nil
}

// NewNumMinHash is the constructor for a bottom-num MinHash sketch
func NewNumMinHash(ksize uint, moltype string, num uint, trackAbundance bool) (*MinHash, error) {
	if ksize == 0 {
		return nil, fmt.Errorf("k-mer size must be greater than 0")
	}
	if num == 0 {
		return nil, fmt.Errorf("num value must be greater than 0")
	}
	return &MinHash{
		ksize:          ksize,
		moltype:        moltype,
		kind:           KindNum,
		num:            num,
		trackAbundance: trackAbundance,
		hashes:         make(map[uint64]uint64),
	}, nil
}

// Ksize returns the k-mer size of the sketch
func (MinHash *MinHash) Ksize() uint {
	return MinHash.ksize
}

// Moltype returns the molecule type of the sketch
func (MinHash *MinHash) Moltype() string {
	return MinHash.moltype
}

// Kind returns the sketch flavour
func (MinHash *MinHash) Kind() Kind {
	return MinHash.kind
}

// Num returns the sample count of a bottom-num sketch (0 for scaled sketches)
func (MinHash *MinHash) Num() uint {
	return MinHash.num
}

// Scaled returns the subsampling rate of a FracMinHash sketch (0 for num sketches)
func (MinHash *MinHash) Scaled() uint64 {
	return MinHash.scaled
}

// TrackAbundance reports whether the sketch records k-mer multiplicities
func (MinHash *MinHash) TrackAbundance() bool {
	return MinHash.trackAbundance
}

// Len returns the number of hashes retained by the sketch
func (MinHash *MinHash) Len() int {
	return len(MinHash.hashes)
}

// Hashes returns a copy of the hash to abundance mapping held by the sketch
func (MinHash *MinHash) Hashes() map[uint64]uint64 {
	mapping := make(map[uint64]uint64, len(MinHash.hashes))
	for hash, abundance := range MinHash.hashes {
		mapping[hash] = abundance
	}
	return mapping
}

// GetSketch is a method to return the retained hashes as a sorted slice (min -> max)
func (MinHash *MinHash) GetSketch() []uint64 {
	sketch := make([]uint64, 0, len(MinHash.hashes))
	for hash := range MinHash.hashes {
		sketch = append(sketch, hash)
	}
	sort.Slice(sketch, func(i, j int) bool { return sketch[i] < sketch[j] })
	return sketch
}

// Add applies the retention rule of the sketch to a single hash value
func (MinHash *MinHash) Add(hash uint64) {
	MinHash.addWithAbundance(hash, 1)
}

// addWithAbundance applies the retention rule and accounts for multiplicity
func (MinHash *MinHash) addWithAbundance(hash uint64, abundance uint64) {
	if abundance == 0 {
		return
	}
	if !MinHash.trackAbundance {
		abundance = 1
	}

	// if the hash has been retained already, just update the abundance
	if current, retained := MinHash.hashes[hash]; retained {
		if MinHash.trackAbundance {
			MinHash.hashes[hash] = current + abundance
		}
		return
	}

	switch MinHash.kind {
	case KindScaled:

		// FracMinHash retention: keep every hash at or below the cutoff
		if hash <= MinHash.maxHash {
			MinHash.hashes[hash] = abundance
		}
	case KindNum:

		// bottom-num retention: keep the smallest num hashes seen
		if uint(len(MinHash.hashes)) < MinHash.num {
			MinHash.hashes[hash] = abundance
			return
		}

		// the sketch is at capacity, so evict the current maximum if the incoming hash is smaller
		currentMax := uint64(0)
		for retainedHash := range MinHash.hashes {
			if retainedHash > currentMax {
				currentMax = retainedHash
			}
		}
		if hash < currentMax {
			delete(MinHash.hashes, currentMax)
			MinHash.hashes[hash] = abundance
		}
	}
}

// AddHashes is a method to apply the retention rule to a batch of hash values
func (MinHash *MinHash) AddHashes(hashes ...uint64) {
	for _, hash := range hashes {
		MinHash.Add(hash)
	}
}

// AddSequence is a method to decompose a sequence to canonical k-mers, hash them and apply the retention rule
func (MinHash *MinHash) AddSequence(sequence []byte) error {
	if MinHash.moltype != DNA {
		return fmt.Errorf("can only sketch sequences for %v sketches, not %v", DNA, MinHash.moltype)
	}

	// check the sequence length
	if len(sequence) < int(MinHash.ksize) {
		return fmt.Errorf("sequence length (%d) is shorter than k-mer length (%d)", len(sequence), MinHash.ksize)
	}

	// initiate the rolling ntHash
	hasher, err := ntHash.New(&sequence, MinHash.ksize)
	if err != nil {
		return err
	}

	// get hashed k-mers from the sequence and evaluate them against the retention rule
	for hash := range hasher.Hash(CANONICAL) {
		MinHash.Add(hash)
	}
	return nil
}

// SetAbundances switches the sketch to abundance tracking and applies a hash to abundance mapping
func (MinHash *MinHash) SetAbundances(abundances map[uint64]uint64) error {
	MinHash.trackAbundance = true
	for hash, abundance := range abundances {
		if abundance == 0 {
			return fmt.Errorf("abundance for hash %d must be greater than 0", hash)
		}

		// replace the abundance of retained hashes, put new hashes through the retention rule
		if _, retained := MinHash.hashes[hash]; retained {
			MinHash.hashes[hash] = abundance
			continue
		}
		MinHash.addWithAbundance(hash, abundance)
	}
	return nil
}

// Copy returns a deep copy of the sketch
func (MinHash *MinHash) Copy() *MinHash {
	newSketch := MinHash.CopyAndClear()
	for hash, abundance := range MinHash.hashes {
		newSketch.hashes[hash] = abundance
	}
	return newSketch
}

// CopyAndClear returns an empty sketch with the same parameters as the receiver
func (mh *MinHash) CopyAndClear() *MinHash {
	return &MinHash{
		ksize:          mh.ksize,
		moltype:        mh.moltype,
		kind:           mh.kind,
		num:            mh.num,
		scaled:         mh.scaled,
		maxHash:        mh.maxHash,
		trackAbundance: mh.trackAbundance,
		hashes:         make(map[uint64]uint64),
	}
}

// Flatten returns a structural copy of the sketch with abundance tracking switched off
func (MinHash *MinHash) Flatten() *MinHash {
	newSketch := MinHash.CopyAndClear()
	newSketch.trackAbundance = false
	for hash := range MinHash.hashes {
		newSketch.hashes[hash] = 1
	}
	return newSketch
}

// DownsampleScaled returns a copy of a FracMinHash sketch re-filtered to a coarser subsampling rate
func (MinHash *MinHash) DownsampleScaled(scaled uint64) (*MinHash, error) {
	if MinHash.kind != KindScaled {
		return nil, fmt.Errorf("can't downsample a %v sketch by scaled value", MinHash.kind)
	}
	if scaled < MinHash.scaled {
		return nil, fmt.Errorf("new scaled value (%d) is finer than the sketch's scaled value (%d)", scaled, MinHash.scaled)
	}

	// a matching rate means nothing to do - return a copy so the caller owns the result
	if scaled == MinHash.scaled {
		return MinHash.Copy(), nil
	}

	// re-filter the retained hashes against the coarser cutoff
	newSketch := MinHash.CopyAndClear()
	newSketch.scaled = scaled
	newSketch.maxHash = maxHashForScaled(scaled)
	for hash, abundance := range MinHash.hashes {
		if hash <= newSketch.maxHash {
			newSketch.hashes[hash] = abundance
		}
	}
	return newSketch, nil
}

// DownsampleNum returns a copy of a bottom-num sketch restricted to a smaller sample count
func (MinHash *MinHash) DownsampleNum(num uint) (*MinHash, error) {
	if MinHash.kind != KindNum {
		return nil, fmt.Errorf("can't downsample a %v sketch by num value", MinHash.kind)
	}
	if num > MinHash.num {
		return nil, fmt.Errorf("new num value (%d) is larger than the sketch's num value (%d)", num, MinHash.num)
	}
	if num == MinHash.num {
		return MinHash.Copy(), nil
	}

	// keep the smallest num hashes
	newSketch := MinHash.CopyAndClear()
	newSketch.num = num
	for i, hash := range MinHash.GetSketch() {
		if uint(i) == num {
			break
		}
		newSketch.hashes[hash] = MinHash.hashes[hash]
	}
	return newSketch, nil
}

// IsCompatible checks that two sketches agree on k-mer size, molecule type, flavour and resolution
func (mh1 *MinHash) IsCompatible(mh2 *MinHash) bool {
	if mh1.ksize != mh2.ksize || mh1.moltype != mh2.moltype || mh1.kind != mh2.kind {
		return false
	}
	if mh1.kind == KindScaled {
		return mh1.scaled == mh2.scaled
	}
	return mh1.num == mh2.num
}

// Intersection returns the abundance-stripped set intersection of two compatible sketches
func (mh1 *MinHash) Intersection(mh2 *MinHash) (*MinHash, error) {
	if !mh1.IsCompatible(mh2) {
		return nil, fmt.Errorf("can't intersect incompatible sketches")
	}
	intersection := mh1.CopyAndClear()
	intersection.trackAbundance = false
	for hash := range mh1.hashes {
		if _, shared := mh2.hashes[hash]; shared {
			intersection.hashes[hash] = 1
		}
	}
	return intersection, nil
}

// Jaccard estimates the Jaccard index between two compatible sketches
func (mh1 *MinHash) Jaccard(mh2 *MinHash) (float64, error) {
	if !mh1.IsCompatible(mh2) {
		return 0.0, fmt.Errorf("can't compare incompatible sketches")
	}
	intersect := 0
	for hash := range mh1.hashes {
		if _, shared := mh2.hashes[hash]; shared {
			intersect++
		}
	}
	union := len(mh1.hashes) + len(mh2.hashes) - intersect
	if union == 0 {
		return 0.0, nil
	}
	return float64(intersect) / float64(union), nil
}

// ContainedBy estimates the fraction of the receiver's hashes found in the other sketch
func (mh1 *MinHash) ContainedBy(mh2 *MinHash) (float64, error) {
	if !mh1.IsCompatible(mh2) {
		return 0.0, fmt.Errorf("can't compare incompatible sketches")
	}
	if len(mh1.hashes) == 0 {
		return 0.0, nil
	}
	intersect := 0
	for hash := range mh1.hashes {
		if _, shared := mh2.hashes[hash]; shared {
			intersect++
		}
	}
	return float64(intersect) / float64(len(mh1.hashes)), nil
}

// MaxContainment returns the larger of the two directional containments
func (mh1 *MinHash) MaxContainment(mh2 *MinHash) (float64, error) {
	c1, err := mh1.ContainedBy(mh2)
	if err != nil {
		return 0.0, err
	}
	c2, err := mh2.ContainedBy(mh1)
	if err != nil {
		return 0.0, err
	}
	if c1 > c2 {
		return c1, nil
	}
	return c2, nil
}

// AngularSimilarity estimates the abundance-weighted angular similarity between two compatible sketches
func (mh1 *MinHash) AngularSimilarity(mh2 *MinHash) (float64, error) {
	if !mh1.IsCompatible(mh2) {
		return 0.0, fmt.Errorf("can't compare incompatible sketches")
	}
	if !mh1.trackAbundance || !mh2.trackAbundance {
		return 0.0, fmt.Errorf("both sketches must track abundance for angular similarity")
	}
	if len(mh1.hashes) == 0 || len(mh2.hashes) == 0 {
		return 0.0, nil
	}

	// take the dot product and norms over the union of hashes
	var dotProduct, norm1, norm2 float64
	for hash, abundance := range mh1.hashes {
		a := float64(abundance)
		norm1 += a * a
		if other, shared := mh2.hashes[hash]; shared {
			dotProduct += a * float64(other)
		}
	}
	for _, abundance := range mh2.hashes {
		b := float64(abundance)
		norm2 += b * b
	}
	cosine := dotProduct / (math.Sqrt(norm1) * math.Sqrt(norm2))

	// guard against floating point drift before taking the arccosine
	if cosine > 1.0 {
		cosine = 1.0
	}
	if cosine < -1.0 {
		cosine = -1.0
	}
	distance := 2.0 * math.Acos(cosine) / math.Pi
	return 1.0 - distance, nil
}

// JaccardANI estimates average nucleotide identity from the Jaccard index of two compatible sketches
func (mh1 *MinHash) JaccardANI(mh2 *MinHash) (ani.Estimate, error) {
	jaccard, err := mh1.Jaccard(mh2)
	if err != nil {
		return ani.Estimate{}, err
	}
	return ani.FromJaccard(jaccard, mh1.ksize)
}

// ContainmentANI estimates average nucleotide identity from the receiver's containment in the other sketch
func (mh1 *MinHash) ContainmentANI(mh2 *MinHash, confidence float64, estimateCI bool) (ani.Estimate, error) {
	containment, err := mh1.ContainedBy(mh2)
	if err != nil {
		return ani.Estimate{}, err
	}
	return ani.FromContainment(containment, mh1.ksize, len(mh1.hashes), confidence, estimateCI)
}

// MaxContainmentANI estimates average nucleotide identity from the max containment of two sketches
func (mh1 *MinHash) MaxContainmentANI(mh2 *MinHash, confidence float64, estimateCI bool) (ani.Estimate, error) {
	c1, err := mh1.ContainedBy(mh2)
	if err != nil {
		return ani.Estimate{}, err
	}
	c2, err := mh2.ContainedBy(mh1)
	if err != nil {
		return ani.Estimate{}, err
	}
	if c1 >= c2 {
		return ani.FromContainment(c1, mh1.ksize, len(mh1.hashes), confidence, estimateCI)
	}
	return ani.FromContainment(c2, mh2.ksize, len(mh2.hashes), confidence, estimateCI)
}
