/*
Copyright © 2025 Godwin Mafireyi (mafireyi@gmail.com)
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/gmaffy/peddy-whisperer/storage"
	"github.com/gmaffy/peddy-whisperer/utils"

	"github.com/spf13/cobra"
)

// fetchVcfsCmd represents the fetchVcfs command
var fetchVcfsCmd = &cobra.Command{
	Use:   "fetchVcfs -p <project> -i <input dir>",
	Short: "Downloads the batch VCFs and indexes from the project",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := configFromFlags(cmd)
		if cfg.Project == "" {
			log.Fatalf("You must provide a project with -p or a config file")
		}

		inputDir, iErr := cmd.Flags().GetString("input")
		if iErr != nil {
			log.Fatalf("Error getting input flag: %v", iErr)
		}
		if inputDir == "" {
			inputDir = cfg.InputDir
		}
		if inputDir == "" {
			inputDir = "."
		}

		vcfs, err := storage.FetchVCFs(utils.BashRunner{}, cfg.Project, inputDir)
		if err != nil {
			log.Fatalf("fetchVcfs failed: %v", err)
		}
		fmt.Printf("Downloaded %d VCFs to %s\n", len(vcfs), inputDir)
	},
}

func init() {
	rootCmd.AddCommand(fetchVcfsCmd)

	fetchVcfsCmd.Flags().StringP("input", "i", "", "Directory to download into")
}
