/*
Copyright © 2025 Godwin Mafireyi (mafireyi@gmail.com)
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gmaffy/peddy-whisperer/pedigree"
	"github.com/gmaffy/peddy-whisperer/storage"
	"github.com/gmaffy/peddy-whisperer/utils"
	"github.com/gmaffy/peddy-whisperer/variants"

	"github.com/spf13/cobra"
)

// mergeVcfsCmd represents the mergeVcfs command
var mergeVcfsCmd = &cobra.Command{
	Use:   "mergeVcfs -i <vcf dir> -o <merged vcf>",
	Short: "Rewrites VCF sample names and merges the batch with bcftools",
	Long: `For each VCF the embedded sample name is replaced with the
filename-derived identifier and the file re-indexed, then the whole batch is
merged into one multi-sample VCF and indexed. Any bcftools failure aborts
the run.`,
	Run: func(cmd *cobra.Command, args []string) {
		inputDir, iErr := cmd.Flags().GetString("input")
		if iErr != nil {
			log.Fatalf("Error getting input flag: %v", iErr)
		}

		outVCF, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		threads, tErr := cmd.Flags().GetInt("threads")
		if tErr != nil {
			log.Fatalf("Error getting threads flag: %v", tErr)
		}

		vcfs, err := storage.ListVCFs(inputDir)
		if err != nil {
			log.Fatalf("Error listing VCFs: %v", err)
		}
		if len(vcfs) == 0 {
			log.Fatalf("No .vcf.gz files in %s", inputDir)
		}

		records := pedigree.BuildRecords(vcfs)
		ids := pedigree.SampleIDs(records)

		reheaderDir := filepath.Join(filepath.Dir(outVCF), "reheadered")
		if err := os.MkdirAll(reheaderDir, 0755); err != nil {
			log.Fatalf("Error creating directory: %v", err)
		}

		runner := utils.BashRunner{}
		reheadered, err := variants.ReheaderAll(runner, vcfs, ids, reheaderDir, threads)
		if err != nil {
			log.Fatalf("Reheader failed: %v", err)
		}

		if err := variants.Merge(runner, reheadered, outVCF, threads); err != nil {
			log.Fatalf("Merge failed: %v", err)
		}

		if err := variants.VerifyMergedSamples(outVCF, ids); err != nil {
			log.Fatalf("Merged header check failed: %v", err)
		}
		fmt.Printf("Merged %d VCFs into %s\n", len(vcfs), outVCF)
	},
}

func init() {
	rootCmd.AddCommand(mergeVcfsCmd)

	mergeVcfsCmd.Flags().StringP("input", "i", ".", "Directory holding the per-sample VCFs")
	mergeVcfsCmd.Flags().StringP("out", "o", "batch.vcf.gz", "Merged VCF to write")
	mergeVcfsCmd.Flags().IntP("threads", "t", 4, "Worker count passed to bcftools")
}
