package sketch

import (
	"testing"

	"github.com/adam-hanna/arrayOperations"
)

var (
	kmerSize        = uint(7)
	seqA            = []byte("ACTGCGTGCGTGAAACGTGCACGTGACGTG")
	seqArcomplement = []byte("CACGTCACGTGCACGTTTCACGCACGCAGT")
	hashSetA        = []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	hashSetB        = []uint64{6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
)

// intersection returns the common elements between two slices of uint64
func intersection(a, b []uint64) []uint64 {
	z, ok := arrayOperations.Intersect(a, b)
	if !ok {
		panic("Cannot find intersect")
	}
	slice, ok := z.Interface().([]uint64)
	if !ok {
		panic("Cannot convert to slice")
	}
	return slice
}

// Constructor tests
func TestConstructors(t *testing.T) {
	mhScaled, err := NewScaledMinHash(kmerSize, DNA, 10, false)
	if err != nil {
		t.Fatal(err)
	}
	if mhScaled.Kind() != KindScaled || mhScaled.Scaled() != 10 || mhScaled.Ksize() != kmerSize {
		t.Fatal("NewScaledMinHash constructor did not initiate the sketch correctly")
	}
	mhNum, err := NewNumMinHash(kmerSize, DNA, 500, false)
	if err != nil {
		t.Fatal(err)
	}
	if mhNum.Kind() != KindNum || mhNum.Num() != 500 || mhNum.Ksize() != kmerSize {
		t.Fatal("NewNumMinHash constructor did not initiate the sketch correctly")
	}

	// zero values should be rejected
	if _, err := NewScaledMinHash(kmerSize, DNA, 0, false); err == nil {
		t.Fatal("scaled value of 0 should be rejected")
	}
	if _, err := NewNumMinHash(0, DNA, 500, false); err == nil {
		t.Fatal("k-mer size of 0 should be rejected")
	}
}

// Add test for the scaled flavour
func TestScaledAdd(t *testing.T) {
	mh, err := NewScaledMinHash(kmerSize, DNA, 10, false)
	if err != nil {
		t.Fatal(err)
	}

	// try adding a sequence that is too short for the given k
	if err := mh.AddSequence(seqA[0:1]); err == nil {
		t.Fatal("should fault as sequences must be >= kmerSize")
	}

	// try adding a sequence that passes the length check
	if err := mh.AddSequence(seqA); err != nil {
		t.Fatal(err)
	}
	if mh.Len() == 0 {
		t.Fatal("no hashes were retained from the test sequence")
	}
}

// Add test for the num flavour
func TestNumAdd(t *testing.T) {
	mh, err := NewNumMinHash(kmerSize, DNA, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	mh.AddHashes(hashSetA...)

	// a num sketch only keeps the smallest num hashes
	if mh.Len() != 3 {
		t.Fatalf("num sketch should retain 3 hashes, retained %d", mh.Len())
	}
	sketch := mh.GetSketch()
	for i, expected := range []uint64{1, 2, 3} {
		if sketch[i] != expected {
			t.Fatalf("num sketch should retain the smallest hashes, got %v", sketch)
		}
	}
}

// canonical k-mers mean a sequence and its reverse complement yield identical sketches
func TestSimilarityEstimates(t *testing.T) {
	mh1, err := NewScaledMinHash(kmerSize, DNA, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := mh1.AddSequence(seqA); err != nil {
		t.Fatal(err)
	}
	mh2, err := NewScaledMinHash(kmerSize, DNA, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := mh2.AddSequence(seqArcomplement); err != nil {
		t.Fatal(err)
	}
	jaccard, err := mh1.Jaccard(mh2)
	if err != nil {
		t.Fatal(err)
	}
	if jaccard != 1.0 {
		t.Fatalf("similarity estimate for a sequence vs its reverse complement should be 1.0, not: %.2f", jaccard)
	}
	maxContainment, err := mh1.MaxContainment(mh2)
	if err != nil {
		t.Fatal(err)
	}
	if maxContainment != 1.0 {
		t.Fatalf("max containment for identical k-mer sets should be 1.0, not: %.2f", maxContainment)
	}
}

// set operations against a known intersection
func TestIntersectionAndContainment(t *testing.T) {
	mh1, err := NewScaledMinHash(kmerSize, DNA, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	mh1.AddHashes(hashSetA...)
	mh2, err := NewScaledMinHash(kmerSize, DNA, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	mh2.AddHashes(hashSetB...)

	// the expected intersection from plain set operations
	expected := intersection(hashSetA, hashSetB)
	intersect, err := mh1.Intersection(mh2)
	if err != nil {
		t.Fatal(err)
	}
	if intersect.Len() != len(expected) {
		t.Fatalf("intersection should hold %d hashes, got %d", len(expected), intersect.Len())
	}

	// directional containments for 10-element sets sharing 5 hashes
	c1, err := mh1.ContainedBy(mh2)
	if err != nil {
		t.Fatal(err)
	}
	if c1 != 0.5 {
		t.Fatalf("containment of mh1 in mh2 should be 0.5, got %.2f", c1)
	}
	jaccard, err := mh1.Jaccard(mh2)
	if err != nil {
		t.Fatal(err)
	}
	if jaccard != float64(len(expected))/15.0 {
		t.Fatalf("unexpected jaccard estimate: %.2f", jaccard)
	}
}

// Downsample tests
func TestDownsample(t *testing.T) {
	mh, err := NewScaledMinHash(kmerSize, DNA, 10, false)
	if err != nil {
		t.Fatal(err)
	}
	mh.AddHashes(hashSetA...)

	// coarsening is allowed and must not mutate the original
	coarser, err := mh.DownsampleScaled(20)
	if err != nil {
		t.Fatal(err)
	}
	if coarser.Scaled() != 20 {
		t.Fatalf("downsampled sketch should have scaled 20, got %d", coarser.Scaled())
	}
	if mh.Scaled() != 10 {
		t.Fatal("downsampling must not mutate the original sketch")
	}

	// refining is not allowed
	if _, err := mh.DownsampleScaled(5); err == nil {
		t.Fatal("downsampling to a finer scaled value should fail")
	}

	// downsampling by num is the wrong selector for a scaled sketch
	if _, err := mh.DownsampleNum(5); err == nil {
		t.Fatal("downsampling a scaled sketch by num should fail")
	}

	// num sketches downsample to the smallest hashes
	mhNum, err := NewNumMinHash(kmerSize, DNA, 10, false)
	if err != nil {
		t.Fatal(err)
	}
	mhNum.AddHashes(hashSetB...)
	smaller, err := mhNum.DownsampleNum(5)
	if err != nil {
		t.Fatal(err)
	}
	if smaller.Len() != 5 || smaller.GetSketch()[4] != 10 {
		t.Fatalf("num downsampling should keep the 5 smallest hashes, got %v", smaller.GetSketch())
	}
	if _, err := mhNum.DownsampleNum(20); err == nil {
		t.Fatal("downsampling to a larger num value should fail")
	}
}

// Flatten and abundance tests
func TestAbundance(t *testing.T) {
	mh, err := NewScaledMinHash(kmerSize, DNA, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := mh.SetAbundances(map[uint64]uint64{1: 4, 2: 2, 3: 1}); err != nil {
		t.Fatal(err)
	}
	if !mh.TrackAbundance() {
		t.Fatal("sketch should be tracking abundance")
	}

	// re-adding a retained hash bumps its abundance
	mh.Add(3)
	if mh.Hashes()[3] != 2 {
		t.Fatalf("abundance of hash 3 should be 2, got %d", mh.Hashes()[3])
	}

	// flattening strips the abundances but keeps the hashes
	flat := mh.Flatten()
	if flat.TrackAbundance() {
		t.Fatal("flattened sketch should not track abundance")
	}
	if flat.Len() != mh.Len() {
		t.Fatal("flattening should not change the retained hashes")
	}
	for _, abundance := range flat.Hashes() {
		if abundance != 1 {
			t.Fatal("flattened sketch should hold abundances of 1")
		}
	}

	// identical abundance vectors give an angular similarity of 1.0
	angular, err := mh.AngularSimilarity(mh.Copy())
	if err != nil {
		t.Fatal(err)
	}
	if angular < 0.9999 {
		t.Fatalf("angular similarity of a sketch with itself should be ~1.0, got %.6f", angular)
	}

	// flattened sketches can't provide angular similarity
	if _, err := flat.AngularSimilarity(flat.Copy()); err == nil {
		t.Fatal("angular similarity should fail without abundances")
	}
}

// Compatibility tests
func TestCompatibility(t *testing.T) {
	mhScaled10, _ := NewScaledMinHash(21, DNA, 10, false)
	mhScaled20, _ := NewScaledMinHash(21, DNA, 20, false)
	mhNum, _ := NewNumMinHash(21, DNA, 500, false)
	mhK31, _ := NewScaledMinHash(31, DNA, 10, false)
	if mhScaled10.IsCompatible(mhScaled20) {
		t.Fatal("sketches with different scaled values should be incompatible")
	}
	if mhScaled10.IsCompatible(mhNum) {
		t.Fatal("scaled and num sketches should be incompatible")
	}
	if mhScaled10.IsCompatible(mhK31) {
		t.Fatal("sketches with different k-mer sizes should be incompatible")
	}
	if !mhScaled10.IsCompatible(mhScaled10.CopyAndClear()) {
		t.Fatal("a sketch should be compatible with its own empty copy")
	}
	if _, err := mhScaled10.Jaccard(mhNum); err == nil {
		t.Fatal("jaccard between incompatible sketches should fail")
	}
}

// benchmark sequence sketching
func BenchmarkAddSequence(b *testing.B) {
	mh, err := NewScaledMinHash(kmerSize, DNA, 1, false)
	if err != nil {
		b.Fatal(err)
	}

	// run the add method b.N times
	for n := 0; n < b.N; n++ {
		if err := mh.AddSequence(seqA); err != nil {
			b.Fatal(err)
		}
	}
}
