package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/sketchpair/sketchpair/src/misc"
	"github.com/sketchpair/sketchpair/src/seqio"
	"github.com/sketchpair/sketchpair/src/signature"
	"github.com/sketchpair/sketchpair/src/sketch"
	"github.com/sketchpair/sketchpair/src/version"
)

// the command line arguments
var (
	fasta          *string // the FASTA file to sketch
	sketchName     *string // the name to store in the signature
	outFile        *string // the signature file to write
	kmerSize       *int    // the k-mer size to sketch at
	sketchScaled   *int    // the subsampling rate for a scaled sketch
	sketchNum      *int    // the sample count for a num sketch
	trackAbundance *bool   // record k-mer multiplicities in the sketch
	sketchLog      *string // the log file for the sketch subcommand
)

// the sketch command (used by cobra)
var sketchCmd = &cobra.Command{
	Use:   "sketch",
	Short: "Sketch the k-mer content of a FASTA file and write a signature",
	Long:  `Sketch the k-mer content of a FASTA file and write a signature`,
	Run: func(cmd *cobra.Command, args []string) {
		misc.ErrorCheck(misc.CheckRequiredFlags(cmd.Flags()))
		runSketch()
	},
}

/*
  A function to initialise the command line arguments
*/
func init() {
	RootCmd.AddCommand(sketchCmd)
	fasta = sketchCmd.Flags().StringP("fasta", "f", "", "FASTA file to sketch")
	sketchName = sketchCmd.Flags().StringP("name", "n", "", "name to store in the signature (default: the FASTA filename)")
	outFile = sketchCmd.Flags().StringP("outFile", "o", "sketchpair.sig", "signature file to write")
	kmerSize = sketchCmd.Flags().IntP("kmerSize", "k", 31, "k-mer size to sketch at")
	sketchScaled = sketchCmd.Flags().Int("scaled", 1000, "subsampling rate for a scaled sketch")
	sketchNum = sketchCmd.Flags().Int("num", 0, "sample count for a num sketch (overrides --scaled)")
	trackAbundance = sketchCmd.Flags().Bool("trackAbundance", false, "record k-mer multiplicities in the sketch")
	sketchLog = sketchCmd.Flags().String("log", "sketchpair-sketch.log", "filename for the log")
	sketchCmd.MarkFlagRequired("fasta")
}

/*
  A function to check user supplied parameters
*/
func sketchParamCheck() error {
	if err := misc.CheckFile(*fasta); err != nil {
		return err
	}
	if err := misc.CheckExt(*fasta, []string{"fasta", "fna", "fa"}); err != nil {
		return err
	}
	if *kmerSize <= 0 {
		return fmt.Errorf("k-mer size must be greater than 0")
	}
	if *sketchNum < 0 || *sketchScaled <= 0 {
		return fmt.Errorf("sketch resolution values must be greater than 0")
	}
	if *sketchName == "" {
		*sketchName = filepath.Base(*fasta)
	}

	// set number of processors to use
	if *proc <= 0 || *proc > runtime.NumCPU() {
		*proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*proc)
	return nil
}

/*
  The main function for the sketch sub-command
*/
func runSketch() {

	// set up logging
	logFH := misc.StartLogging(*sketchLog)
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("sketchpair (version %s)", version.GetVersion())
	log.Printf("starting the sketch subcommand")
	startTime := time.Now()

	// check the supplied parameters
	misc.ErrorCheck(sketchParamCheck())
	log.Printf("\tFASTA file: %v", *fasta)
	log.Printf("\tk-mer size: %d", *kmerSize)

	// create the empty sketch
	var mh *sketch.MinHash
	var err error
	if *sketchNum > 0 {
		log.Printf("\tsketch flavour: num (%d)", *sketchNum)
		mh, err = sketch.NewNumMinHash(uint(*kmerSize), sketch.DNA, uint(*sketchNum), *trackAbundance)
	} else {
		log.Printf("\tsketch flavour: scaled (%d)", *sketchScaled)
		mh, err = sketch.NewScaledMinHash(uint(*kmerSize), sketch.DNA, uint64(*sketchScaled), *trackAbundance)
	}
	misc.ErrorCheck(err)

	// sketch the file
	numSeqs, err := seqio.SketchFile(*fasta, mh)
	misc.ErrorCheck(err)
	log.Printf("\tsequences sketched: %d", numSeqs)
	log.Printf("\thashes retained: %d", mh.Len())

	// write the signature to disk
	sig := signature.New(*sketchName, *fasta, mh)
	misc.ErrorCheck(sig.Dump(*outFile))
	log.Printf("\tsignature written to: %v", *outFile)
	log.Printf("finished in %s", time.Since(startTime))
	fmt.Fprintf(os.Stderr, "written %v (%d hashes)\n", *outFile, mh.Len())
}
