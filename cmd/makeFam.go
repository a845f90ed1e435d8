/*
Copyright © 2025 Godwin Mafireyi (mafireyi@gmail.com)
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/gmaffy/peddy-whisperer/pedigree"
	"github.com/gmaffy/peddy-whisperer/storage"

	"github.com/spf13/cobra"
)

// makeFamCmd represents the makeFam command
var makeFamCmd = &cobra.Command{
	Use:   "makeFam -i <vcf dir> -f <fam file>",
	Short: "Builds a FAM pedigree file from a directory of per-sample VCFs",
	Long: `Derives one pedigree record per VCF. The declared sex is the
underscore-delimited M or F token of the filename (anything else becomes
unknown), the sample id is the filename with extensions and the trailing
pipeline suffix stripped, and family ids are a simple incrementing counter.`,
	Run: func(cmd *cobra.Command, args []string) {
		inputDir, iErr := cmd.Flags().GetString("input")
		if iErr != nil {
			log.Fatalf("Error getting input flag: %v", iErr)
		}

		famPath, fErr := cmd.Flags().GetString("fam")
		if fErr != nil {
			log.Fatalf("Error getting fam flag: %v", fErr)
		}

		vcfs, err := storage.ListVCFs(inputDir)
		if err != nil {
			log.Fatalf("Error listing VCFs: %v", err)
		}
		if len(vcfs) == 0 {
			log.Fatalf("No .vcf.gz files in %s", inputDir)
		}

		records := pedigree.BuildRecords(vcfs)
		if err := pedigree.WriteFam(records, famPath); err != nil {
			log.Fatalf("Error writing FAM file: %v", err)
		}
		fmt.Printf("Wrote %d pedigree records to %s\n", len(records), famPath)
	},
}

func init() {
	rootCmd.AddCommand(makeFamCmd)

	makeFamCmd.Flags().StringP("input", "i", ".", "Directory holding the per-sample VCFs")
	makeFamCmd.Flags().StringP("fam", "f", "batch.fam", "FAM file to write")
}
