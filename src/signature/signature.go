// Package signature handles reading and writing named sketches to disk.
package signature

import (
	"fmt"
	"io/ioutil"
	"sort"

	"gopkg.in/vmihailenco/msgpack.v2"

	"github.com/sketchpair/sketchpair/src/sketch"
)

// Signature is a named sketch, typically one per input file
type Signature struct {
	Name     string // the display name for the signature
	Filename string // the file the sketch was built from
	mh       *sketch.MinHash
}

// record is the serialisable form of a signature
type record struct {
	Name           string
	Filename       string
	Ksize          uint
	Moltype        string
	Kind           int
	Num            uint
	Scaled         uint64
	TrackAbundance bool
	Hashes         []uint64
	Abundances     []uint64
}

// New is the constructor for a Signature
func New(name, filename string, mh *sketch.MinHash) *Signature {
	return &Signature{
		Name:     name,
		Filename: filename,
		mh:       mh,
	}
}

// Sketch returns the sketch held by the signature
func (Signature *Signature) Sketch() *sketch.MinHash {
	return Signature.mh
}

// Dump is a method to write a signature to disk
func (Signature *Signature) Dump(path string) error {
	if Signature.mh == nil {
		return fmt.Errorf("signature holds no sketch")
	}

	// flatten the sketch to parallel hash and abundance slices, sorted for a stable encoding
	mapping := Signature.mh.Hashes()
	hashes := make([]uint64, 0, len(mapping))
	for hash := range mapping {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	abundances := make([]uint64, len(hashes))
	for i, hash := range hashes {
		abundances[i] = mapping[hash]
	}
	data, err := msgpack.Marshal(&record{
		Name:           Signature.Name,
		Filename:       Signature.Filename,
		Ksize:          Signature.mh.Ksize(),
		Moltype:        Signature.mh.Moltype(),
		Kind:           int(Signature.mh.Kind()),
		Num:            Signature.mh.Num(),
		Scaled:         Signature.mh.Scaled(),
		TrackAbundance: Signature.mh.TrackAbundance(),
		Hashes:         hashes,
		Abundances:     abundances,
	})
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0644)
}

// Load is a function to read a signature from disk
func Load(path string) (*Signature, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadFromBytes(data)
}

// LoadFromBytes is a function to populate a signature from a byte slice
func LoadFromBytes(data []byte) (*Signature, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no data received to load a signature from")
	}
	imported := &record{}
	if err := msgpack.Unmarshal(data, imported); err != nil {
		return nil, err
	}
	if len(imported.Hashes) != len(imported.Abundances) {
		return nil, fmt.Errorf("signature is corrupted: %d hashes but %d abundances", len(imported.Hashes), len(imported.Abundances))
	}

	// rebuild the sketch
	var mh *sketch.MinHash
	var err error
	switch sketch.Kind(imported.Kind) {
	case sketch.KindScaled:
		mh, err = sketch.NewScaledMinHash(imported.Ksize, imported.Moltype, imported.Scaled, imported.TrackAbundance)
	case sketch.KindNum:
		mh, err = sketch.NewNumMinHash(imported.Ksize, imported.Moltype, imported.Num, imported.TrackAbundance)
	default:
		err = fmt.Errorf("signature has unrecognised sketch kind: %d", imported.Kind)
	}
	if err != nil {
		return nil, err
	}
	if imported.TrackAbundance {
		abundances := make(map[uint64]uint64, len(imported.Hashes))
		for i, hash := range imported.Hashes {
			abundances[hash] = imported.Abundances[i]
		}
		if err := mh.SetAbundances(abundances); err != nil {
			return nil, err
		}
	} else {
		mh.AddHashes(imported.Hashes...)
	}
	return New(imported.Name, imported.Filename, mh), nil
}
