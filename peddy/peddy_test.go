package peddy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	cmds []string
	err  error
}

func (f *fakeRunner) Run(cmdStr string) error {
	f.cmds = append(f.cmds, cmdStr)
	return f.err
}

func TestRunBuildsCommand(t *testing.T) {
	runner := &fakeRunner{}
	require.NoError(t, Run(runner, "merged.vcf.gz", "batch.fam", "/work/ped", 4))
	require.Len(t, runner.cmds, 1)
	assert.Equal(t, "peddy -p 4 --plot --prefix /work/ped merged.vcf.gz batch.fam", runner.cmds[0])
}

func TestRunFailsFast(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	err := Run(runner, "merged.vcf.gz", "batch.fam", "ped", 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peddy failed")
}

func TestIsPrimary(t *testing.T) {
	assert.True(t, IsPrimary("ped.X.peddy.ped"))
	assert.True(t, IsPrimary("ped.X.het_check.csv"))
	assert.True(t, IsPrimary("ped.X.ped_check.csv"))
	assert.True(t, IsPrimary("ped.X.sex_check.csv"))

	assert.False(t, IsPrimary("ped.X.html"))
	assert.False(t, IsPrimary("ped.X.vs.html"))
	assert.False(t, IsPrimary("ped.X.sex_check.png"))
	assert.False(t, IsPrimary("ped.X.background_pca.json"))
	assert.False(t, IsPrimary("ped.X.ped_check.rel-difference.csv"))
}

func TestPartition(t *testing.T) {
	workDir := t.TempDir()
	qcDir := filepath.Join(workDir, "QC")
	extraDir := filepath.Join(workDir, "peddy_extra")
	require.NoError(t, os.MkdirAll(qcDir, 0755))
	require.NoError(t, os.MkdirAll(extraDir, 0755))

	produced := []string{
		"ped.peddy.ped",
		"ped.het_check.csv",
		"ped.ped_check.csv",
		"ped.sex_check.csv",
		"ped.ped_check.rel-difference.csv",
		"ped.html",
		"ped.sex_check.png",
	}
	for _, name := range produced {
		require.NoError(t, os.WriteFile(filepath.Join(workDir, name), []byte("x"), 0644))
	}
	// unrelated file must be left alone
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "batch.fam"), []byte("x"), 0644))

	primary, extra, err := Partition(filepath.Join(workDir, "ped"), qcDir, extraDir)
	require.NoError(t, err)

	assert.Len(t, primary, 4)
	assert.Len(t, extra, 3)
	for _, p := range primary {
		assert.Equal(t, qcDir, filepath.Dir(p))
	}
	for _, e := range extra {
		assert.Equal(t, extraDir, filepath.Dir(e))
	}
	assert.FileExists(t, filepath.Join(qcDir, "ped.peddy.ped"))
	assert.FileExists(t, filepath.Join(extraDir, "ped.html"))
	assert.FileExists(t, filepath.Join(extraDir, "ped.ped_check.rel-difference.csv"))
	assert.FileExists(t, filepath.Join(workDir, "batch.fam"))
	assert.NoFileExists(t, filepath.Join(workDir, "ped.html"))
}

func TestPartitionAfterInterruptedMove(t *testing.T) {
	workDir := t.TempDir()
	qcDir := filepath.Join(workDir, "QC")
	extraDir := filepath.Join(workDir, "peddy_extra")
	require.NoError(t, os.MkdirAll(qcDir, 0755))
	require.NoError(t, os.MkdirAll(extraDir, 0755))

	// A previous run stopped after moving some of the outputs.
	require.NoError(t, os.WriteFile(filepath.Join(qcDir, "ped.peddy.ped"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(qcDir, "ped.het_check.csv"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(extraDir, "ped.html"), []byte("x"), 0644))
	// The rest is still where peddy wrote it.
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "ped.ped_check.csv"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "ped.sex_check.csv"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "ped.sex_check.png"), []byte("x"), 0644))

	primary, extra, err := Partition(filepath.Join(workDir, "ped"), qcDir, extraDir)
	require.NoError(t, err)
	assert.Len(t, primary, 4)
	assert.Len(t, extra, 2)
	assert.FileExists(t, filepath.Join(qcDir, "ped.sex_check.csv"))
	assert.FileExists(t, filepath.Join(extraDir, "ped.sex_check.png"))

	// Everything already routed: calling again still succeeds.
	primary, extra, err = Partition(filepath.Join(workDir, "ped"), qcDir, extraDir)
	require.NoError(t, err)
	assert.Len(t, primary, 4)
	assert.Len(t, extra, 2)
}

func TestPartitionNoOutputs(t *testing.T) {
	workDir := t.TempDir()
	_, _, err := Partition(filepath.Join(workDir, "ped"), workDir, workDir)
	require.Error(t, err)
}

const sexCheckCSV = `sample_id,ped_sex,predicted_sex,error,het_ratio
sample1,male,male,False,0.21
sample2,female,male,True,0.05
sample3,unknown,female,False,0.23
`

const hetCheckCSV = `sample_id,het_ratio,mean_depth
sample1,0.21,30.1
sample2,0.05,29.8
sample3,0.23,31.0
`

const pedCheckCSV = `sample_a,sample_b,rel,pedigree_relatedness
sample1,sample2,0.01,0
sample1,sample3,0.49,0
sample2,sample3,0.02,0
`

func writeSummaryFixtures(t *testing.T, qcDir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(qcDir, "ped.sex_check.csv"), []byte(sexCheckCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(qcDir, "ped.het_check.csv"), []byte(hetCheckCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(qcDir, "ped.ped_check.csv"), []byte(pedCheckCSV), 0644))
}

func TestBuildSummary(t *testing.T) {
	qcDir := t.TempDir()
	writeSummaryFixtures(t, qcDir)

	summary, err := BuildSummary(qcDir, "ped")
	require.NoError(t, err)

	require.Len(t, summary.Mismatches, 1)
	assert.Equal(t, SexMismatch{SampleID: "sample2", PedSex: "female", PredictedSex: "male"}, summary.Mismatches[0])

	require.Len(t, summary.RelatedPairs, 1)
	assert.Equal(t, "sample1", summary.RelatedPairs[0].SampleA)
	assert.Equal(t, "sample3", summary.RelatedPairs[0].SampleB)
	assert.InDelta(t, 0.49, summary.RelatedPairs[0].Rel, 1e-9)

	assert.Equal(t, []string{"sample1", "sample2", "sample3"}, summary.Samples)
	assert.InDelta(t, (0.21+0.05+0.23)/3, summary.HetMean, 1e-9)
	assert.Greater(t, summary.HetStdDev, 0.0)
}

func TestBuildSummaryMissingFile(t *testing.T) {
	_, err := BuildSummary(t.TempDir(), "ped")
	require.Error(t, err)
}

func TestWriteSummaryFiles(t *testing.T) {
	qcDir := t.TempDir()
	extraDir := t.TempDir()
	writeSummaryFixtures(t, qcDir)

	summary, err := BuildSummary(qcDir, "ped")
	require.NoError(t, err)

	tsvPath := filepath.Join(extraDir, "ped.qc_summary.tsv")
	require.NoError(t, WriteSummaryTSV(summary, tsvPath))
	data, err := os.ReadFile(tsvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sex_mismatch\tsample2")
	assert.Contains(t, string(data), "relatedness\tsample1/sample3")

	htmlPath := filepath.Join(extraDir, "ped.qc_summary.html")
	require.NoError(t, WriteSummaryChart(summary, htmlPath))
	assert.FileExists(t, htmlPath)
}
