/*
Copyright © 2025 Godwin Mafireyi (mafireyi@gmail.com)
*/
package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gmaffy/peddy-whisperer/peddy"
	"github.com/gmaffy/peddy-whisperer/utils"

	"github.com/spf13/cobra"
)

// runPeddyCmd represents the runPeddy command
var runPeddyCmd = &cobra.Command{
	Use:   "runPeddy -V <merged vcf> -f <fam file> -o <output dir>",
	Short: "Runs peddy on a merged VCF and routes its outputs",
	Long: `Invokes peddy with plots against the merged VCF and FAM file, then
routes the four files MultiQC reads into <out>/QC and everything else into
<out>/peddy_extra, together with the batch QC summary.`,
	Run: func(cmd *cobra.Command, args []string) {
		mergedVCF, vErr := cmd.Flags().GetString("vcf")
		if vErr != nil {
			log.Fatalf("Error getting vcf flag: %v", vErr)
		}

		famPath, fErr := cmd.Flags().GetString("fam")
		if fErr != nil {
			log.Fatalf("Error getting fam flag: %v", fErr)
		}

		outDir, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		threads, tErr := cmd.Flags().GetInt("threads")
		if tErr != nil {
			log.Fatalf("Error getting threads flag: %v", tErr)
		}

		prefixName, prErr := cmd.Flags().GetString("prefix")
		if prErr != nil {
			log.Fatalf("Error getting prefix flag: %v", prErr)
		}

		if _, err := os.Stat(mergedVCF); err != nil {
			log.Fatalf("Merged VCF %s is not a valid file path", mergedVCF)
		}
		if _, err := os.Stat(famPath); err != nil {
			log.Fatalf("FAM file %s is not a valid file path", famPath)
		}

		qcDir := filepath.Join(outDir, "QC")
		extraDir := filepath.Join(outDir, "peddy_extra")
		for _, dir := range []string{qcDir, extraDir} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Fatalf("Error creating directory: %v", err)
			}
		}

		runner := utils.BashRunner{}
		prefix := filepath.Join(outDir, prefixName)
		if err := peddy.Run(runner, mergedVCF, famPath, prefix, threads); err != nil {
			log.Fatalf("peddy failed: %v", err)
		}

		primary, extra, err := peddy.Partition(prefix, qcDir, extraDir)
		if err != nil {
			log.Fatalf("Partition failed: %v", err)
		}
		fmt.Printf("Routed %d files to %s and %d files to %s\n", len(primary), qcDir, len(extra), extraDir)

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		summary, err := peddy.Report(logger, qcDir, extraDir, prefixName)
		if err != nil {
			log.Fatalf("QC summary failed: %v", err)
		}
		fmt.Printf("Sex mismatches: %d, related pairs: %d\n", len(summary.Mismatches), len(summary.RelatedPairs))
	},
}

func init() {
	rootCmd.AddCommand(runPeddyCmd)

	runPeddyCmd.Flags().StringP("vcf", "V", "", "Merged multi-sample VCF")
	runPeddyCmd.Flags().StringP("fam", "f", "", "FAM pedigree file")
	runPeddyCmd.Flags().StringP("out", "o", ".", "Output directory")
	runPeddyCmd.Flags().IntP("threads", "t", 4, "Worker count passed to peddy")
	runPeddyCmd.Flags().String("prefix", "ped", "peddy output prefix")
}
