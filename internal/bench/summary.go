package bench

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"

	"github.com/tensorplex-labs/rankbench/internal/ranking"
	"github.com/tensorplex-labs/rankbench/internal/scoring"
)

func meanStd(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

// Summarize aggregates upset rates per method over results, in the given
// method order. Methods absent from every result are skipped.
func Summarize(results []*Result, methods []string) []MethodSummary {
	var out []MethodSummary
	for _, m := range methods {
		var train, test []float64
		for _, res := range results {
			if res == nil {
				continue
			}
			v, ok := res.Train[m]
			if !ok {
				continue
			}
			train = append(train, v)
			test = append(test, res.Test[m])
		}
		if len(train) == 0 {
			continue
		}

		s := MethodSummary{Method: m, Inductive: ranking.Inductive(m), Runs: len(train)}
		s.TrainMean, s.TrainStd = meanStd(train)
		s.TestMean, s.TestStd = meanStd(test)
		out = append(out, s)
	}
	return out
}

// WriteSummary prints a table of the summaries followed by terminal plots of
// the mean train upsets and, for inductive methods, the mean test upsets.
func WriteSummary(w io.Writer, summaries []MethodSummary) {
	fmt.Fprintf(w, "\n%-9s %5s %10s %10s %10s %10s\n", "method", "runs", "train", "±", "test", "±")
	var (
		names, testNames      []string
		trainMeans, testMeans []float64
	)
	for _, s := range summaries {
		test, testStd := "-", "-"
		if s.Inductive {
			test, testStd = fmt.Sprintf("%.4f", s.TestMean), fmt.Sprintf("%.4f", s.TestStd)
			testNames = append(testNames, s.Method)
			testMeans = append(testMeans, s.TestMean)
		}
		fmt.Fprintf(w, "%-9s %5d %10.4f %10.4f %10s %10s\n", s.Method, s.Runs, s.TrainMean, s.TrainStd, test, testStd)
		names = append(names, s.Method)
		trainMeans = append(trainMeans, s.TrainMean)
	}

	scoring.PlotMethodScoresTerminal(w, names, trainMeans, "Mean train upset rate")
	scoring.PlotMethodScoresTerminal(w, testNames, testMeans, "Mean test upset rate (unseen teams)")
}
