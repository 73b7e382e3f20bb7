// Package report renders the batch comparator's results: a LaTeX table
// and a plain-text log-scale bar rendering standing in for a two-panel
// chart (see DESIGN.md for why this renderer is stdlib-only).
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/distribuidos-Coffee-Shop-Analysis/bully-election/internal/harness"
)

// WriteTex renders rows as a LaTeX tabular with columns
// #, std_msgs, std_time, imp_msgs, imp_time.
func WriteTex(w io.Writer, rows []harness.ComparisonRow) error {
	var b strings.Builder
	b.WriteString("\\begin{tabular}{rrrrr}\n")
	b.WriteString("\\toprule\n")
	b.WriteString("\\# & std\\_msgs & std\\_time & imp\\_msgs & imp\\_time \\\\\n")
	b.WriteString("\\midrule\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%d & %d & %.6f & %d & %.6f \\\\\n",
			r.Index, r.StandardMsgs, r.StandardElapsed.Seconds(), r.ImprovedMsgs, r.ImprovedElapsed.Seconds())
	}
	b.WriteString("\\bottomrule\n")
	b.WriteString("\\end{tabular}\n")

	_, err := w.Write([]byte(b.String()))
	return err
}

// barWidth is the widest a rendered bar may be, in characters.
const barWidth = 40

// WritePlot renders a two-panel log-scale bar chart as plain text: one
// panel for message counts, one for run time, each bar scaled against the
// panel's own maximum the way the source's ax.set_yscale('log') did.
func WritePlot(w io.Writer, rows []harness.ComparisonRow) error {
	var b strings.Builder

	b.WriteString("Message count (log scale)\n")
	writePanel(&b, rows,
		func(r harness.ComparisonRow) float64 { return float64(r.StandardMsgs) },
		func(r harness.ComparisonRow) float64 { return float64(r.ImprovedMsgs) },
		"%d")

	b.WriteString("\nRun time, seconds (log scale)\n")
	writePanel(&b, rows,
		func(r harness.ComparisonRow) float64 { return r.StandardElapsed.Seconds() },
		func(r harness.ComparisonRow) float64 { return r.ImprovedElapsed.Seconds() },
		"%.3f")

	_, err := w.Write([]byte(b.String()))
	return err
}

func writePanel(b *strings.Builder, rows []harness.ComparisonRow, std, imp func(harness.ComparisonRow) float64, format string) {
	var maxVal float64
	for _, r := range rows {
		maxVal = math.Max(maxVal, math.Max(std(r), imp(r)))
	}
	if maxVal <= 0 {
		maxVal = 1
	}
	logMax := math.Log10(maxVal + 1)

	bar := func(v float64) string {
		if v <= 0 {
			return ""
		}
		n := int((math.Log10(v+1) / logMax) * barWidth)
		if n < 1 {
			n = 1
		}
		return strings.Repeat("#", n)
	}

	for _, r := range rows {
		fmt.Fprintf(b, "  %2d std |%-*s "+format+"\n", r.Index, barWidth, bar(std(r)), std(r))
		fmt.Fprintf(b, "  %2d imp |%-*s "+format+"\n", r.Index, barWidth, bar(imp(r)), imp(r))
	}
}
