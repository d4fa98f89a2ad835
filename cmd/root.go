package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// the command line arguments
var (
	proc      *int  // number of processors to use
	profiling *bool // create profile for go pprof
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sketchpair",
	Short: "compare genomic MinHash sketches under a shared normalisation protocol",
	Long: `
#####################################################################################
		SKETCHPAIR: pairwise comparison of genomic sketches
#####################################################################################

 sketchpair builds MinHash sketches of genomic sequences and compares them pairwise.

 Two sketches built with different parameters (sample counts, subsampling rates,
 abundance tracking) are first brought into a common comparison space; similarity,
 containment and average nucleotide identity estimates are then derived from the
 normalised pair. Comparisons that can't be made meaningful are rejected.`,
}

/*
  A function to add all child commands to the root command and sets flags appropriately
*/
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

/*
  A function to initalise the command line arguments
*/
func init() {
	proc = RootCmd.PersistentFlags().IntP("processors", "p", 1, "number of processors to use")
	profiling = RootCmd.PersistentFlags().Bool("profiling", false, "create the files needed to profile sketchpair using the go tool pprof")
}
