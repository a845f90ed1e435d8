package peddy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// The four peddy outputs MultiQC reads. Everything else peddy produces
// (HTML reports, PNGs, background PCA json) is archived, not reported.
var primarySuffixes = []string{
	".peddy.ped",
	".het_check.csv",
	".ped_check.csv",
	".sex_check.csv",
}

// IsPrimary classifies one output filename against the fixed include list.
func IsPrimary(name string) bool {
	return lo.SomeBy(primarySuffixes, func(suffix string) bool {
		return strings.HasSuffix(name, suffix)
	})
}

// Partition moves every file produced for the prefix into the primary (QC)
// directory or the extra archive directory. Files already sitting in the
// destination directories count, so a run interrupted mid-move can be
// restarted. Returns the routed paths.
func Partition(prefix string, qcDir string, extraDir string) ([]string, []string, error) {
	outDir := filepath.Dir(prefix)
	base := filepath.Base(prefix) + "."

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), base) {
			continue
		}
		src := filepath.Join(outDir, entry.Name())
		dst := filepath.Join(extraDir, entry.Name())
		if IsPrimary(entry.Name()) {
			dst = filepath.Join(qcDir, entry.Name())
		}
		if err := os.Rename(src, dst); err != nil {
			return nil, nil, fmt.Errorf("moving %s: %w", src, err)
		}
	}

	primary, err := listPrefixed(qcDir, base)
	if err != nil {
		return nil, nil, err
	}
	extra, err := listPrefixed(extraDir, base)
	if err != nil {
		return nil, nil, err
	}
	if len(primary) == 0 {
		return nil, nil, fmt.Errorf("no peddy outputs found for prefix %s", prefix)
	}
	return primary, extra, nil
}

func listPrefixed(dir string, base string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), base) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}
