package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gmaffy/peddy-whisperer/peddy"
	"github.com/gmaffy/peddy-whisperer/pedigree"
	"github.com/gmaffy/peddy-whisperer/storage"
	"github.com/gmaffy/peddy-whisperer/utils"
	"github.com/gmaffy/peddy-whisperer/variants"
	"golang.org/x/sync/errgroup"
)

const logName = "peddy_check.log"

// Run executes the whole peddy check: fetch -> FAM -> reheader -> merge ->
// verify -> peddy -> partition -> report -> upload. Every stage failure
// aborts the run. Stages whose COMPLETED record is in the run log are
// skipped, so a crashed run can be restarted in the same output directory.
func Run(runner utils.Runner, cfg utils.Config) error {
	if cfg.Project == "" {
		return fmt.Errorf("project is required")
	}
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ped"
	}
	out := cfg.OutputDir
	if out == "" {
		out = "."
	}

	inputDir := filepath.Join(out, "VCFs")
	reheaderDir := filepath.Join(out, "reheadered")
	mergedDir := filepath.Join(out, "merged")
	qcDir := filepath.Join(out, "QC")
	extraDir := filepath.Join(out, "peddy_extra")
	for _, dir := range []string{inputDir, reheaderDir, mergedDir, qcDir, extraDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	logPath := filepath.Join(out, logName)
	completed := utils.ParseLogFile(logPath)
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := utils.NewStageLogger(logFile)

	logger.Info("PEDDY CHECK", "STAGE", "INITIALISE", "SAMPLE", "ALL", "STATUS", "STARTED", "CMD", cfg.Project)

	// ------------------------------------------- Input acquisition ------------------------------------------------ //
	var vcfs []string
	if utils.StageHasCompleted(completed, "Fetch", "ALL") {
		logger.Info("PEDDY CHECK", "STAGE", "Fetch", "SAMPLE", "ALL", "STATUS", "SKIPPED")
		vcfs, err = storage.ListVCFs(inputDir)
		if err != nil {
			return err
		}
		if len(vcfs) == 0 {
			return fmt.Errorf("fetch marked completed but %s holds no VCFs", inputDir)
		}
	} else {
		logger.Info("PEDDY CHECK", "STAGE", "Fetch", "SAMPLE", "ALL", "STATUS", "STARTED")
		vcfs, err = storage.FetchVCFs(runner, cfg.Project, inputDir)
		if err != nil {
			logger.Error("PEDDY CHECK", "STAGE", "Fetch", "SAMPLE", "ALL", "STATUS", "FAILED", "error", err)
			return err
		}
		logger.Info("PEDDY CHECK", "STAGE", "Fetch", "SAMPLE", "ALL", "STATUS", "COMPLETED")
	}
	fmt.Printf("Batch has %d VCFs\n", len(vcfs))

	// ------------------------------------------- Pedigree derivation ---------------------------------------------- //
	records := pedigree.BuildRecords(vcfs)
	ids := pedigree.SampleIDs(records)
	famPath := filepath.Join(mergedDir, "batch.fam")
	if err := pedigree.WriteFam(records, famPath); err != nil {
		return fmt.Errorf("writing FAM file: %w", err)
	}
	logger.Info("PEDDY CHECK", "STAGE", "MakeFam", "SAMPLE", "ALL", "STATUS", "COMPLETED", "CMD", famPath)

	// ------------------------------------------- Header normalization --------------------------------------------- //
	reheadered := make([]string, len(vcfs))
	var g errgroup.Group
	g.SetLimit(cfg.Threads)
	for i := range vcfs {
		i := i
		if utils.StageHasCompleted(completed, "Reheader", ids[i]) {
			logger.Info("PEDDY CHECK", "STAGE", "Reheader", "SAMPLE", ids[i], "STATUS", "SKIPPED")
			reheadered[i] = filepath.Join(reheaderDir, ids[i]+".vcf.gz")
			continue
		}
		g.Go(func() error {
			logger.Info("PEDDY CHECK", "STAGE", "Reheader", "SAMPLE", ids[i], "STATUS", "STARTED")
			outVCF, rErr := variants.Reheader(runner, vcfs[i], ids[i], reheaderDir)
			if rErr != nil {
				logger.Error("PEDDY CHECK", "STAGE", "Reheader", "SAMPLE", ids[i], "STATUS", "FAILED", "error", rErr)
				return rErr
			}
			reheadered[i] = outVCF
			logger.Info("PEDDY CHECK", "STAGE", "Reheader", "SAMPLE", ids[i], "STATUS", "COMPLETED")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// ------------------------------------------------- Merge ------------------------------------------------------ //
	mergedVCF := filepath.Join(mergedDir, "batch.vcf.gz")
	if utils.StageHasCompleted(completed, "Merge", "ALL") {
		logger.Info("PEDDY CHECK", "STAGE", "Merge", "SAMPLE", "ALL", "STATUS", "SKIPPED")
	} else {
		logger.Info("PEDDY CHECK", "STAGE", "Merge", "SAMPLE", "ALL", "STATUS", "STARTED")
		if err := variants.Merge(runner, reheadered, mergedVCF, cfg.Threads); err != nil {
			logger.Error("PEDDY CHECK", "STAGE", "Merge", "SAMPLE", "ALL", "STATUS", "FAILED", "error", err)
			return err
		}
		logger.Info("PEDDY CHECK", "STAGE", "Merge", "SAMPLE", "ALL", "STATUS", "COMPLETED")
	}

	if err := variants.VerifyMergedSamples(mergedVCF, ids); err != nil {
		logger.Error("PEDDY CHECK", "STAGE", "Verify", "SAMPLE", "ALL", "STATUS", "FAILED", "error", err)
		return err
	}
	logger.Info("PEDDY CHECK", "STAGE", "Verify", "SAMPLE", "ALL", "STATUS", "COMPLETED")

	// ---------------------------------------------- QC invocation ------------------------------------------------- //
	prefix := filepath.Join(mergedDir, cfg.Prefix)
	if utils.StageHasCompleted(completed, "Peddy", "ALL") {
		logger.Info("PEDDY CHECK", "STAGE", "Peddy", "SAMPLE", "ALL", "STATUS", "SKIPPED")
	} else {
		logger.Info("PEDDY CHECK", "STAGE", "Peddy", "SAMPLE", "ALL", "STATUS", "STARTED")
		if err := peddy.Run(runner, mergedVCF, famPath, prefix, cfg.Threads); err != nil {
			logger.Error("PEDDY CHECK", "STAGE", "Peddy", "SAMPLE", "ALL", "STATUS", "FAILED", "error", err)
			return err
		}
		logger.Info("PEDDY CHECK", "STAGE", "Peddy", "SAMPLE", "ALL", "STATUS", "COMPLETED")
	}

	// --------------------------------------------- Output placement ----------------------------------------------- //
	if utils.StageHasCompleted(completed, "Partition", "ALL") {
		logger.Info("PEDDY CHECK", "STAGE", "Partition", "SAMPLE", "ALL", "STATUS", "SKIPPED")
	} else {
		primary, extra, pErr := peddy.Partition(prefix, qcDir, extraDir)
		if pErr != nil {
			logger.Error("PEDDY CHECK", "STAGE", "Partition", "SAMPLE", "ALL", "STATUS", "FAILED", "error", pErr)
			return pErr
		}
		fmt.Printf("Routed %d files to %s and %d files to %s\n", len(primary), qcDir, len(extra), extraDir)
		logger.Info("PEDDY CHECK", "STAGE", "Partition", "SAMPLE", "ALL", "STATUS", "COMPLETED")
	}

	if _, err := peddy.Report(logger, qcDir, extraDir, cfg.Prefix); err != nil {
		logger.Error("PEDDY CHECK", "STAGE", "Report", "SAMPLE", "ALL", "STATUS", "FAILED", "error", err)
		return err
	}
	logger.Info("PEDDY CHECK", "STAGE", "Report", "SAMPLE", "ALL", "STATUS", "COMPLETED")

	// -------------------------------------------------- Upload ---------------------------------------------------- //
	logger.Info("PEDDY CHECK", "STAGE", "Upload", "SAMPLE", "ALL", "STATUS", "STARTED")
	for _, dir := range []string{qcDir, extraDir} {
		if err := storage.Upload(runner, cfg.Project, dir); err != nil {
			logger.Error("PEDDY CHECK", "STAGE", "Upload", "SAMPLE", "ALL", "STATUS", "FAILED", "error", err)
			return err
		}
	}
	logger.Info("PEDDY CHECK", "STAGE", "Upload", "SAMPLE", "ALL", "STATUS", "COMPLETED")

	fmt.Printf("Peddy check done. MultiQC inputs in %s\n", qcDir)
	return nil
}
