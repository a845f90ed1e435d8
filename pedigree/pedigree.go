package pedigree

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Sex codes as used in FAM/PED files.
const (
	SexUnknown = 0
	SexMale    = 1
	SexFemale  = 2
)

// Phenotype is constant for QC batches. peddy does not use the column and
// MultiQC only displays it.
const Phenotype = 2

// Record is one FAM file line: family id, sample id, father, mother, sex
// code, phenotype.
type Record struct {
	FamilyID string
	SampleID string
	FatherID string
	MotherID string
	Sex      int
	Pheno    int
}

var trailingRunNumber = regexp.MustCompile(`_\d+$`)

// SexCodeFromFileName scans the filename for an underscore-delimited single
// character M or F and maps it to the FAM sex code. Anything else degrades
// to unknown; a bad name must never fail the run. Only the trailing
// .vcf/.gz extensions are stripped before the scan, so a dot elsewhere in
// the name cannot hide the token.
func SexCodeFromFileName(name string) int {
	base := trimVCFExt(filepath.Base(name))
	for _, token := range strings.Split(base, "_") {
		switch token {
		case "M":
			return SexMale
		case "F":
			return SexFemale
		}
	}
	return SexUnknown
}

// SampleIDFromFileName derives the sample identifier: the base name is
// truncated at the first dot (peddy rejects sample names containing '.'),
// then everything from the sex token onward is dropped. Names without a sex
// token lose one trailing run-number marker such as _001.
func SampleIDFromFileName(name string) string {
	base := baseName(name)
	tokens := strings.Split(base, "_")
	for i, token := range tokens {
		if (token == "M" || token == "F") && i > 0 {
			return strings.Join(tokens[:i], "_")
		}
	}
	return trailingRunNumber.ReplaceAllString(base, "")
}

// baseName strips the directory and every extension. Cutting at the first
// dot guarantees the identifier carries no '.'.
func baseName(name string) string {
	base := filepath.Base(name)
	if i := strings.Index(base, "."); i != -1 {
		base = base[:i]
	}
	return base
}

// trimVCFExt removes the trailing .vcf/.vcf.gz extensions and nothing else.
func trimVCFExt(name string) string {
	for {
		switch {
		case strings.HasSuffix(name, ".gz"):
			name = strings.TrimSuffix(name, ".gz")
		case strings.HasSuffix(name, ".vcf"):
			name = strings.TrimSuffix(name, ".vcf")
		default:
			return name
		}
	}
}

// BuildRecords derives one pedigree record per VCF. Family ids are a simple
// incrementing counter, FAM1..FAMn. Colliding sample ids are uniquified with
// a -2, -3... suffix so the FAM file and the merged VCF header stay 1:1.
func BuildRecords(vcfNames []string) []Record {
	seen := make(map[string]int, len(vcfNames))
	records := make([]Record, 0, len(vcfNames))
	for i, name := range vcfNames {
		id := SampleIDFromFileName(name)
		seen[id]++
		if n := seen[id]; n > 1 {
			id = fmt.Sprintf("%s-%d", id, n)
		}
		records = append(records, Record{
			FamilyID: fmt.Sprintf("FAM%d", i+1),
			SampleID: id,
			FatherID: "0",
			MotherID: "0",
			Sex:      SexCodeFromFileName(name),
			Pheno:    Phenotype,
		})
	}
	return records
}

// SampleIDs returns the derived ids in record order.
func SampleIDs(records []Record) []string {
	return lo.Map(records, func(r Record, _ int) string { return r.SampleID })
}

// WriteFam writes the tab-delimited FAM file consumed by peddy.
func WriteFam(records []Record, path string) error {
	famFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer famFile.Close()

	for _, rec := range records {
		_, wErr := fmt.Fprintf(famFile, "%s\t%s\t%s\t%s\t%d\t%d\n",
			rec.FamilyID, rec.SampleID, rec.FatherID, rec.MotherID, rec.Sex, rec.Pheno)
		if wErr != nil {
			return wErr
		}
	}
	return nil
}
