/*
Copyright © 2025 Godwin Mafireyi (mafireyi@gmail.com)
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "peddy-whisperer",
	Short: "Sex and relatedness QC for per-sample VCF batches",
	Long: `Runs the peddy QC step of a germline pipeline:
1.	Fetch per-sample VCFs from a DNAnexus project (dx)
2.	Derive declared sex from filenames and build a FAM pedigree file
3.	Rewrite VCF sample names and merge the batch (bcftools)
4.	Cross-check declared vs genetic sex and relatedness (peddy)
5.	Route outputs for MultiQC and upload them back to the project
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cfgFile string
var project string

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file ")
	rootCmd.PersistentFlags().StringVarP(&project, "project", "p", "", "source/destination project ")
}
