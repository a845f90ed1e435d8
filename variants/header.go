package variants

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// vcf columns before the per-sample genotype columns start
const fixedVCFColumns = 9

// SampleNames returns the sample columns of the #CHROM header line. Handles
// both bgzip-compressed and plain-text VCFs.
func SampleNames(vcfPath string) ([]string, error) {
	f, err := os.Open(vcfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(vcfPath, ".gz") {
		bgzfReader, bErr := bgzf.NewReader(f, 1)
		if bErr != nil {
			return nil, fmt.Errorf("opening %s as bgzf: %w", vcfPath, bErr)
		}
		defer bgzfReader.Close()
		reader = bgzfReader
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			if len(fields) <= fixedVCFColumns {
				return nil, fmt.Errorf("%s: #CHROM line has no sample columns", vcfPath)
			}
			return fields[fixedVCFColumns:], nil
		}
		if !strings.HasPrefix(line, "#") {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s: no #CHROM header line found", vcfPath)
}
