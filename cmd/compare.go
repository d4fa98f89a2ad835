package cmd

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/sketchpair/sketchpair/src/compare"
	"github.com/sketchpair/sketchpair/src/misc"
	"github.com/sketchpair/sketchpair/src/signature"
	"github.com/sketchpair/sketchpair/src/sketch"
	"github.com/sketchpair/sketchpair/src/version"
)

// the command line arguments
var (
	sigFile1        *string  // the first signature file
	sigFile2        *string  // the second signature file
	ignoreAbundance *bool    // strip abundances before comparison
	cmpScaled       *int     // force the comparison subsampling rate
	cmpNum          *int     // force the comparison sample count
	thresholdBP     *int     // minimum estimated overlap in base pairs
	estimateANICI   *bool    // attach confidence intervals to containment ANI estimates
	aniConfidence   *float64 // confidence level for ANI intervals
	compareLog      *string  // the log file for the compare subcommand
)

// the compare command (used by cobra)
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two signatures and report similarity and containment statistics",
	Long:  `Compare two signatures and report similarity and containment statistics`,
	Run: func(cmd *cobra.Command, args []string) {
		misc.ErrorCheck(misc.CheckRequiredFlags(cmd.Flags()))
		runCompare()
	},
}

/*
  A function to initialise the command line arguments
*/
func init() {
	RootCmd.AddCommand(compareCmd)
	sigFile1 = compareCmd.Flags().StringP("sig1", "1", "", "first signature file")
	sigFile2 = compareCmd.Flags().StringP("sig2", "2", "", "second signature file")
	ignoreAbundance = compareCmd.Flags().Bool("ignoreAbundance", false, "strip abundance information before comparing")
	cmpScaled = compareCmd.Flags().Int("scaled", 0, "force the comparison subsampling rate (default: the coarser of the two sketches)")
	cmpNum = compareCmd.Flags().Int("num", 0, "force the comparison sample count (default: the smaller of the two sketches)")
	thresholdBP = compareCmd.Flags().IntP("thresholdBP", "t", 0, "minimum estimated overlap (in bp) for the comparison to pass")
	estimateANICI = compareCmd.Flags().Bool("estimateANICI", false, "attach confidence intervals to containment ANI estimates")
	aniConfidence = compareCmd.Flags().Float64("aniConfidence", 0.95, "confidence level for ANI intervals")
	compareLog = compareCmd.Flags().String("log", "sketchpair-compare.log", "filename for the log")
	compareCmd.MarkFlagRequired("sig1")
	compareCmd.MarkFlagRequired("sig2")
}

/*
  A function to check user supplied parameters
*/
func compareParamCheck() error {
	for _, sigFile := range []string{*sigFile1, *sigFile2} {
		if sigFile == "" {
			return fmt.Errorf("need two signature files to run a comparison")
		}
		if err := misc.CheckFile(sigFile); err != nil {
			return err
		}
	}
	if *cmpScaled < 0 || *cmpNum < 0 || *thresholdBP < 0 {
		return fmt.Errorf("comparison parameters can't be negative")
	}
	if *aniConfidence <= 0.0 || *aniConfidence >= 1.0 {
		return fmt.Errorf("ANI confidence must be between 0 and 1")
	}

	// set number of processors to use
	if *proc <= 0 || *proc > runtime.NumCPU() {
		*proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*proc)
	return nil
}

/*
  The main function for the compare sub-command
*/
func runCompare() {

	// set up profiling
	if *profiling {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}

	// set up logging
	logFH := misc.StartLogging(*compareLog)
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("sketchpair (version %s)", version.GetVersion())
	log.Printf("starting the compare subcommand")
	startTime := time.Now()

	// check the supplied parameters
	misc.ErrorCheck(compareParamCheck())

	// load the signatures
	sig1, err := signature.Load(*sigFile1)
	misc.ErrorCheck(err)
	sig2, err := signature.Load(*sigFile2)
	misc.ErrorCheck(err)
	log.Printf("\tsignature 1: %v (%d hashes)", sig1.Name, sig1.Sketch().Len())
	log.Printf("\tsignature 2: %v (%d hashes)", sig2.Name, sig2.Sketch().Len())

	// collect the comparison options
	opts := []compare.Option{compare.WithANIConfidence(*aniConfidence)}
	if *ignoreAbundance {
		opts = append(opts, compare.IgnoreAbundance())
	}
	if *estimateANICI {
		opts = append(opts, compare.WithANIConfidenceInterval())
	}

	// run the kind-specific comparison
	if sig1.Sketch().Kind() == sketch.KindScaled && sig2.Sketch().Kind() == sketch.KindScaled {
		if *cmpScaled > 0 {
			opts = append(opts, compare.WithScaled(uint64(*cmpScaled)))
		}
		if *thresholdBP > 0 {
			opts = append(opts, compare.WithThresholdBP(uint64(*thresholdBP)))
		}
		misc.ErrorCheck(reportScaledComparison(sig1, sig2, opts))
	} else {
		if *cmpNum > 0 {
			opts = append(opts, compare.WithNum(uint(*cmpNum)))
		}
		misc.ErrorCheck(reportNumComparison(sig1, sig2, opts))
	}
	log.Printf("finished in %s", time.Since(startTime))
}

// reportScaledComparison runs a scaled comparison and prints the statistics
func reportScaledComparison(sig1, sig2 *signature.Signature, opts []compare.Option) error {
	comparison, err := compare.NewScaledComparison(sig1.Sketch(), sig2.Sketch(), opts...)
	if err != nil {
		return err
	}
	fmt.Printf("comparison of %v and %v (scaled %d, k %d)\n", sig1.Name, sig2.Name, comparison.CmpScaled(), comparison.Ksize())
	jaccard, err := comparison.Jaccard()
	if err != nil {
		return err
	}
	fmt.Printf("\tjaccard:\t\t%.4f\n", jaccard)
	jaccardANI, err := comparison.JaccardANI()
	if err != nil {
		return err
	}
	fmt.Printf("\tjaccard ANI:\t\t%.4f\n", jaccardANI.ANI)
	c1, err := comparison.MH1Containment()
	if err != nil {
		return err
	}
	c2, err := comparison.MH2Containment()
	if err != nil {
		return err
	}
	fmt.Printf("\tcontainment (1 in 2):\t%.4f\n", c1)
	fmt.Printf("\tcontainment (2 in 1):\t%.4f\n", c2)
	maxContainmentANI, err := comparison.MaxContainmentANI()
	if err != nil {
		return err
	}
	if maxContainmentANI.HasCI {
		fmt.Printf("\tmax containment ANI:\t%.4f (%.2f%% CI %.4f - %.4f)\n", maxContainmentANI.ANI, *aniConfidence*100, maxContainmentANI.ANILow, maxContainmentANI.ANIHigh)
	} else {
		fmt.Printf("\tmax containment ANI:\t%.4f\n", maxContainmentANI.ANI)
	}
	avgContainment, err := comparison.AvgContainment()
	if err != nil {
		return err
	}
	fmt.Printf("\tavg containment:\t%.4f\n", avgContainment)
	intersectBP, err := comparison.IntersectBP()
	if err != nil {
		return err
	}
	fmt.Printf("\testimated overlap:\t%d bp\n", intersectBP)
	passed, err := comparison.PassThreshold()
	if err != nil {
		return err
	}
	fmt.Printf("\tpasses threshold:\t%v (>= %d bp)\n", passed, comparison.ThresholdBP())

	// angular similarity is only available when both sketches kept their abundances
	if angular, err := comparison.AngularSimilarity(); err == nil {
		fmt.Printf("\tangular similarity:\t%.4f\n", angular)
	}
	return nil
}

// reportNumComparison runs a num comparison and prints the statistics
func reportNumComparison(sig1, sig2 *signature.Signature, opts []compare.Option) error {
	comparison, err := compare.NewNumComparison(sig1.Sketch(), sig2.Sketch(), opts...)
	if err != nil {
		return err
	}
	fmt.Printf("comparison of %v and %v (num %d, k %d)\n", sig1.Name, sig2.Name, comparison.CmpNum(), comparison.Ksize())
	jaccard, err := comparison.Jaccard()
	if err != nil {
		return err
	}
	fmt.Printf("\tjaccard:\t\t%.4f\n", jaccard)
	jaccardANI, err := comparison.JaccardANI()
	if err != nil {
		return err
	}
	fmt.Printf("\tjaccard ANI:\t\t%.4f\n", jaccardANI.ANI)
	if angular, err := comparison.AngularSimilarity(); err == nil {
		fmt.Printf("\tangular similarity:\t%.4f\n", angular)
	}
	return nil
}
