package peddy

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"
)

// Observed relatedness above this in a cohort of supposedly unrelated
// samples means a duplicate or an unexpected relative.
const relatednessThreshold = 0.25

type SexMismatch struct {
	SampleID     string
	PedSex       string
	PredictedSex string
}

type RelatedPair struct {
	SampleA string
	SampleB string
	Rel     float64
}

type Summary struct {
	Samples      []string
	HetRatios    []float64
	Mismatches   []SexMismatch
	RelatedPairs []RelatedPair
	HetMean      float64
	HetStdDev    float64
	HetQ05       float64
	HetQ95       float64
}

// BuildSummary reads the partitioned peddy CSVs back and condenses them into
// the batch QC summary: declared-vs-predicted sex mismatches, suspiciously
// related pairs, and het-ratio statistics.
func BuildSummary(qcDir string, prefixBase string) (Summary, error) {
	var summary Summary

	sexDF, err := readCSVFrame(filepath.Join(qcDir, prefixBase+".sex_check.csv"))
	if err != nil {
		return summary, err
	}
	pedSex := sexDF.Col("ped_sex").Records()
	predictedSex := sexDF.Col("predicted_sex").Records()
	sexErr := sexDF.Col("error").Records()
	for i, id := range sexDF.Col("sample_id").Records() {
		if sexErr[i] == "True" || sexErr[i] == "TRUE" || sexErr[i] == "true" {
			summary.Mismatches = append(summary.Mismatches, SexMismatch{
				SampleID:     id,
				PedSex:       pedSex[i],
				PredictedSex: predictedSex[i],
			})
		}
	}

	hetDF, err := readCSVFrame(filepath.Join(qcDir, prefixBase+".het_check.csv"))
	if err != nil {
		return summary, err
	}
	summary.Samples = hetDF.Col("sample_id").Records()
	summary.HetRatios = hetDF.Col("het_ratio").Float()

	if len(summary.HetRatios) > 0 {
		summary.HetMean = stat.Mean(summary.HetRatios, nil)
		summary.HetStdDev = stat.StdDev(summary.HetRatios, nil)
		sorted := append([]float64(nil), summary.HetRatios...)
		sort.Float64s(sorted)
		summary.HetQ05 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
		summary.HetQ95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}

	pedDF, err := readCSVFrame(filepath.Join(qcDir, prefixBase+".ped_check.csv"))
	if err != nil {
		return summary, err
	}
	sampleA := pedDF.Col("sample_a").Records()
	sampleB := pedDF.Col("sample_b").Records()
	rel := pedDF.Col("rel").Float()
	for i := range rel {
		if rel[i] > relatednessThreshold {
			summary.RelatedPairs = append(summary.RelatedPairs, RelatedPair{
				SampleA: sampleA[i],
				SampleB: sampleB[i],
				Rel:     rel[i],
			})
		}
	}

	return summary, nil
}

func readCSVFrame(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return df, fmt.Errorf("reading %s: %w", path, df.Err)
	}
	return df, nil
}

// Report logs every flagged sample and writes the summary TSV and chart into
// the extra directory.
func Report(logger *slog.Logger, qcDir string, extraDir string, prefixBase string) (Summary, error) {
	summary, err := BuildSummary(qcDir, prefixBase)
	if err != nil {
		return summary, err
	}

	for _, m := range summary.Mismatches {
		logger.Warn("PEDDY CHECK", "STAGE", "SexCheck", "SAMPLE", m.SampleID,
			"DECLARED", m.PedSex, "PREDICTED", m.PredictedSex, "STATUS", "MISMATCH")
	}
	for _, p := range summary.RelatedPairs {
		logger.Warn("PEDDY CHECK", "STAGE", "RelatednessCheck",
			"SAMPLE", p.SampleA+"/"+p.SampleB, "REL", fmt.Sprintf("%.3f", p.Rel), "STATUS", "FLAGGED")
	}
	fmt.Printf("Sex mismatches: %d, related pairs: %d\n", len(summary.Mismatches), len(summary.RelatedPairs))
	fmt.Printf("Het ratio mean: %.4f sd: %.4f q05: %.4f q95: %.4f\n",
		summary.HetMean, summary.HetStdDev, summary.HetQ05, summary.HetQ95)

	if err := WriteSummaryTSV(summary, filepath.Join(extraDir, prefixBase+".qc_summary.tsv")); err != nil {
		return summary, err
	}
	if err := WriteSummaryChart(summary, filepath.Join(extraDir, prefixBase+".qc_summary.html")); err != nil {
		return summary, err
	}
	return summary, nil
}

func WriteSummaryTSV(summary Summary, path string) error {
	tsvFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer tsvFile.Close()

	if _, err := fmt.Fprintf(tsvFile, "CHECK\tSAMPLE\tDETAIL\n"); err != nil {
		return err
	}
	for _, m := range summary.Mismatches {
		if _, err := fmt.Fprintf(tsvFile, "sex_mismatch\t%s\tdeclared=%s predicted=%s\n",
			m.SampleID, m.PedSex, m.PredictedSex); err != nil {
			return err
		}
	}
	for _, p := range summary.RelatedPairs {
		if _, err := fmt.Fprintf(tsvFile, "relatedness\t%s/%s\trel=%.3f\n", p.SampleA, p.SampleB, p.Rel); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(tsvFile, "het_ratio\tALL\tmean=%.4f sd=%.4f q05=%.4f q95=%.4f\n",
		summary.HetMean, summary.HetStdDev, summary.HetQ05, summary.HetQ95)
	return err
}

// WriteSummaryChart renders a het-ratio scatter across the batch with the
// sex-mismatched samples as a second series.
func WriteSummaryChart(summary Summary, path string) error {
	mismatched := make(map[string]bool, len(summary.Mismatches))
	for _, m := range summary.Mismatches {
		mismatched[m.SampleID] = true
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Batch het ratio"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "het_ratio"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sample"}),
	)

	var okData []opts.ScatterData
	var badData []opts.ScatterData
	for i, sample := range summary.Samples {
		okData = append(okData, opts.ScatterData{Value: summary.HetRatios[i], Name: sample})
		if mismatched[sample] {
			badData = append(badData, opts.ScatterData{Value: summary.HetRatios[i], Name: sample})
		} else {
			// "-" keeps the series aligned with the category axis
			badData = append(badData, opts.ScatterData{Value: "-"})
		}
	}
	scatter.SetXAxis(summary.Samples).
		AddSeries("het_ratio", okData).
		AddSeries("sex_mismatch", badData)

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(scatter)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}
