/*
Copyright © 2025 Godwin Mafireyi (mafireyi@gmail.com)
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/gmaffy/peddy-whisperer/pipeline"
	"github.com/gmaffy/peddy-whisperer/utils"

	"github.com/spf13/cobra"
)

// peddyCheckCmd represents the peddyCheck command
var peddyCheckCmd = &cobra.Command{
	Use:   "peddyCheck -p <project> [args]",
	Short: "Runs the whole peddy QC pipeline for one project batch",
	Long: `Runs the following pipeline:

1. dx download of the batch VCFs and indexes
2. FAM pedigree file derived from the filenames
3. bcftools reheader + index per sample, bcftools merge of the batch
4. peddy sex/relatedness check against the FAM file
5. Output partitioning for MultiQC and dx upload

Any step failing aborts the run. A restarted run skips steps already
recorded as completed in the run log.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Checking dependencies ...\n\n")

		if err := utils.CheckDeps(); err != nil {
			log.Fatalf("Dependency check failed: %v", err)
		}

		fmt.Printf("Dependencies OK\n\n----------------------------------------------------------\n\n")

		cfg := configFromFlags(cmd)
		if cfg.Project == "" {
			log.Fatalf("You must provide a project with -p or a config file")
		}

		if err := pipeline.Run(utils.BashRunner{}, cfg); err != nil {
			log.Fatalf("peddyCheck failed: %v", err)
		}
	},
}

// configFromFlags reads the config file if one was given, then lets flags
// override it.
func configFromFlags(cmd *cobra.Command) utils.Config {
	configFile, cErr := cmd.Flags().GetString("config")
	if cErr != nil {
		log.Fatalf("Error getting config flag: %v", cErr)
	}

	cfg := utils.Config{Prefix: "ped", Threads: 4}
	if configFile != "" {
		fmt.Printf("Running with config file %s\n", configFile)
		var err error
		cfg, err = utils.ReadConfig(configFile)
		if err != nil {
			log.Fatalf("Error reading config: %v", err)
		}
	}

	projectFlag, pErr := cmd.Flags().GetString("project")
	if pErr != nil {
		log.Fatalf("Error getting project flag: %v", pErr)
	}
	if projectFlag != "" {
		cfg.Project = projectFlag
	}

	if cmd.Flags().Changed("out") {
		outDir, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}
		cfg.OutputDir = outDir
	}

	if cmd.Flags().Changed("threads") {
		threads, tErr := cmd.Flags().GetInt("threads")
		if tErr != nil {
			log.Fatalf("Error getting threads flag: %v", tErr)
		}
		cfg.Threads = threads
	}

	if cmd.Flags().Changed("prefix") {
		prefix, prErr := cmd.Flags().GetString("prefix")
		if prErr != nil {
			log.Fatalf("Error getting prefix flag: %v", prErr)
		}
		cfg.Prefix = prefix
	}

	return cfg
}

func init() {
	rootCmd.AddCommand(peddyCheckCmd)

	peddyCheckCmd.Flags().StringP("out", "o", ".", "Output directory")
	peddyCheckCmd.Flags().IntP("threads", "t", 4, "Worker count passed to bcftools and peddy")
	peddyCheckCmd.Flags().String("prefix", "ped", "peddy output prefix")
}
