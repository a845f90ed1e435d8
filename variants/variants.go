package variants

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gmaffy/peddy-whisperer/utils"
	"golang.org/x/sync/errgroup"
)

// Reheader rewrites the embedded sample name of one VCF to the derived
// sample id and re-indexes the result. bcftools reads the new name from a
// file, one per sample.
func Reheader(runner utils.Runner, vcf string, sampleID string, outDir string) (string, error) {
	nameFile := filepath.Join(outDir, sampleID+".name.txt")
	if err := os.WriteFile(nameFile, []byte(sampleID+"\n"), 0644); err != nil {
		return "", err
	}

	outVCF := filepath.Join(outDir, sampleID+".vcf.gz")
	rhCmdStr := fmt.Sprintf(`bcftools reheader -s %s -o %s %s`, nameFile, outVCF, vcf)
	fmt.Println(rhCmdStr)
	if err := runner.Run(rhCmdStr); err != nil {
		return "", fmt.Errorf("bcftools reheader failed for %s: %w", vcf, err)
	}

	idxCmdStr := fmt.Sprintf(`bcftools index -f -t %s`, outVCF)
	fmt.Println(idxCmdStr)
	if err := runner.Run(idxCmdStr); err != nil {
		return "", fmt.Errorf("bcftools index failed for %s: %w", outVCF, err)
	}
	return outVCF, nil
}

// ReheaderAll renames every VCF to its paired sample id, fanning the
// bcftools jobs out on a bounded group. The first failure cancels the run.
// Returned paths keep the input order so the merged header order matches
// the FAM file.
func ReheaderAll(runner utils.Runner, vcfs []string, sampleIDs []string, outDir string, threads int) ([]string, error) {
	if len(vcfs) != len(sampleIDs) {
		return nil, fmt.Errorf("got %d VCFs but %d sample ids", len(vcfs), len(sampleIDs))
	}
	if threads < 1 {
		threads = 1
	}

	outVCFs := make([]string, len(vcfs))
	var g errgroup.Group
	g.SetLimit(threads)

	for i := range vcfs {
		i := i
		g.Go(func() error {
			out, err := Reheader(runner, vcfs[i], sampleIDs[i], outDir)
			if err != nil {
				return err
			}
			outVCFs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outVCFs, nil
}

// Merge combines the reheadered VCFs into one multi-sample VCF and indexes
// it. bcftools merge refuses a single input, so a one-sample batch is
// copied through instead.
func Merge(runner utils.Runner, vcfs []string, outVCF string, threads int) error {
	if len(vcfs) == 0 {
		return fmt.Errorf("no VCF files to merge")
	}

	if len(vcfs) == 1 {
		fmt.Printf("Only one VCF in batch, copying %s ...\n", vcfs[0])
		if err := copyFile(vcfs[0], outVCF); err != nil {
			return err
		}
	} else {
		mergeCmdStr := fmt.Sprintf(`bcftools merge -m none --threads %d -O z -o %s %s`,
			threads, outVCF, strings.Join(vcfs, " "))
		fmt.Println(mergeCmdStr)
		if err := runner.Run(mergeCmdStr); err != nil {
			return fmt.Errorf("bcftools merge failed: %w", err)
		}
	}

	idxCmdStr := fmt.Sprintf(`bcftools index -f -t %s`, outVCF)
	fmt.Println(idxCmdStr)
	if err := runner.Run(idxCmdStr); err != nil {
		return fmt.Errorf("bcftools index failed for %s: %w", outVCF, err)
	}
	return nil
}

// VerifyMergedSamples checks the round trip: every FAM sample id must appear
// in the merged header, in the same order, or peddy cannot associate the
// two files.
func VerifyMergedSamples(mergedVCF string, sampleIDs []string) error {
	headerSamples, err := SampleNames(mergedVCF)
	if err != nil {
		return err
	}
	if len(headerSamples) != len(sampleIDs) {
		return fmt.Errorf("merged VCF has %d samples, FAM file has %d", len(headerSamples), len(sampleIDs))
	}
	for i, id := range sampleIDs {
		if headerSamples[i] != id {
			return fmt.Errorf("sample %d: merged header says %q, FAM file says %q", i+1, headerSamples[i], id)
		}
	}
	return nil
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
