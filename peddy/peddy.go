package peddy

import (
	"fmt"

	"github.com/gmaffy/peddy-whisperer/utils"
)

// Run invokes peddy against the merged VCF and FAM file, requesting plots
// and the given worker count. peddy writes its whole output set next to the
// prefix.
func Run(runner utils.Runner, mergedVCF string, famFile string, prefix string, procs int) error {
	cmdStr := fmt.Sprintf(`peddy -p %d --plot --prefix %s %s %s`, procs, prefix, mergedVCF, famFile)
	fmt.Println(cmdStr)
	if err := runner.Run(cmdStr); err != nil {
		return fmt.Errorf("peddy failed: %w", err)
	}
	return nil
}
