package scoring

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// PlotMethodScoresTerminal draws one horizontal bar per method, sorted by
// ascending score.
func PlotMethodScoresTerminal(w io.Writer, methods []string, scores []float64, title string) {
	if len(methods) == 0 || len(methods) != len(scores) {
		return
	}

	type MethodScore struct {
		Method string
		Score  float64
	}

	methodScores := make([]MethodScore, len(scores))
	for i := range scores {
		methodScores[i] = MethodScore{
			Method: methods[i],
			Score:  scores[i],
		}
	}

	sort.SliceStable(methodScores, func(i, j int) bool {
		return methodScores[i].Score < methodScores[j].Score
	})

	sorted := make([]float64, len(methodScores))
	for i, ms := range methodScores {
		sorted[i] = ms.Score
	}
	scaled := MinMaxScale(sorted)
	minScore, maxScore := sorted[0], sorted[len(sorted)-1]

	fmt.Fprintf(w, "\n%s (Terminal Plot - Ascending Order):\n", title)
	fmt.Fprintln(w, "Method   | Score    | Bar Chart")
	fmt.Fprintln(w, "---------|----------|"+strings.Repeat("-", 50))

	maxBarWidth := 50
	for i, ms := range methodScores {
		barWidth := int(scaled[i] * float64(maxBarWidth))
		if maxScore == minScore {
			barWidth = maxBarWidth / 2
		}

		bar := strings.Repeat("█", barWidth)
		if barWidth == 0 {
			bar = "▏"
		}

		fmt.Fprintf(w, "%-8s | %.6f | %s (%.4f)\n", ms.Method, ms.Score, bar, ms.Score)
	}

	fmt.Fprintf(w, "\nScale: Min=%.6f, Max=%.6f\n", minScore, maxScore)
	fmt.Fprintf(w, "Bar width represents relative score (0 to %d chars)\n", maxBarWidth)
}
