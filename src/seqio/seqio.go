/*
	the seqio package reads sequences from FASTA files (plain or gzipped) and feeds them into sketches
*/
package seqio

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	bioseqio "github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/sketchpair/sketchpair/src/sketch"
)

// Open returns a reader for a FASTA file, transparently handling gzip compression
func Open(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return fh, nil
	}
	gz, err := gzip.NewReader(fh)
	if err != nil {
		fh.Close()
		return nil, err
	}
	return &gzipCloser{gz: gz, fh: fh}, nil
}

// gzipCloser closes both the gzip reader and the underlying file
type gzipCloser struct {
	gz *gzip.Reader
	fh *os.File
}

func (gzipCloser *gzipCloser) Read(p []byte) (int, error) {
	return gzipCloser.gz.Read(p)
}

func (gzipCloser *gzipCloser) Close() error {
	if err := gzipCloser.gz.Close(); err != nil {
		gzipCloser.fh.Close()
		return err
	}
	return gzipCloser.fh.Close()
}

// SketchReader decomposes every FASTA record in a reader and adds it to the supplied sketch,
// returning the number of sequences processed
func SketchReader(reader io.Reader, mh *sketch.MinHash) (int, error) {
	template := linear.NewSeq("", nil, alphabet.DNAredundant)
	scanner := bioseqio.NewScanner(fasta.NewReader(reader, template))
	numSeqs := 0
	for scanner.Next() {
		record, ok := scanner.Seq().(*linear.Seq)
		if !ok {
			return numSeqs, fmt.Errorf("FASTA record is not a linear sequence")
		}

		// upper case the sequence before hashing as ntHash expects ACTGN
		sequence := bytes.ToUpper(alphabet.LettersToBytes(record.Seq))
		if err := mh.AddSequence(sequence); err != nil {
			return numSeqs, fmt.Errorf("%v: %v", record.ID, err)
		}
		numSeqs++
	}
	if err := scanner.Error(); err != nil {
		return numSeqs, err
	}
	if numSeqs == 0 {
		return 0, fmt.Errorf("no FASTA records found")
	}
	return numSeqs, nil
}

// SketchFile decomposes every FASTA record in a file and adds it to the supplied sketch
func SketchFile(path string, mh *sketch.MinHash) (int, error) {
	fh, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer fh.Close()
	return SketchReader(fh, mh)
}
