package storage

import (
	"fmt"
	"path/filepath"

	"github.com/gmaffy/peddy-whisperer/utils"
	"golang.org/x/exp/slices"
)

// Fixed fetch patterns: the upstream caller stage deposits bgzipped,
// indexed per-sample VCFs at the project root.
const (
	vcfPattern   = "*.vcf.gz"
	indexPattern = "*.vcf.gz.tbi"
)

// FetchVCFs downloads the batch VCFs and their indexes from the project
// into inputDir and returns the VCF paths in name order.
func FetchVCFs(runner utils.Runner, project string, inputDir string) ([]string, error) {
	dlCmdStr := fmt.Sprintf(`dx download -f -o %s/ "%s:%s" "%s:%s"`,
		inputDir, project, vcfPattern, project, indexPattern)
	fmt.Println(dlCmdStr)
	if err := runner.Run(dlCmdStr); err != nil {
		return nil, fmt.Errorf("dx download from %s failed: %w", project, err)
	}

	vcfs, err := ListVCFs(inputDir)
	if err != nil {
		return nil, err
	}
	if len(vcfs) == 0 {
		return nil, fmt.Errorf("no %s files arrived from %s", vcfPattern, project)
	}
	return vcfs, nil
}

// ListVCFs returns the VCFs already present in dir, in name order. Index
// files do not match the pattern.
func ListVCFs(dir string) ([]string, error) {
	vcfs, err := filepath.Glob(filepath.Join(dir, vcfPattern))
	if err != nil {
		return nil, err
	}
	slices.Sort(vcfs)
	return vcfs, nil
}

// Upload pushes the whole output tree back to the project's QC folder.
func Upload(runner utils.Runner, project string, dir string) error {
	upCmdStr := fmt.Sprintf(`dx upload -r %s --destination "%s:/QC/" --brief`, dir, project)
	fmt.Println(upCmdStr)
	if err := runner.Run(upCmdStr); err != nil {
		return fmt.Errorf("dx upload to %s failed: %w", project, err)
	}
	return nil
}
