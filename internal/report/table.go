package report

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"hiddenunit-sweep/internal/sweep"
)

var (
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	headerStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true)
)

// Table returns the results as a terminal table, one row per configuration.
func Table(results []sweep.Result) string {
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		}).
		Headers("Hidden Units", "Mean Loss", "Mean Val Loss", "Final Loss", "Final Val Loss", "Final Val Acc", "Time")
	for _, r := range results {
		s := r.Summary
		table.Row(
			fmt.Sprintf("%d", r.HiddenUnits),
			formatMetric(s.MeanLoss),
			formatMetric(s.MeanValLoss),
			formatMetric(s.FinalLoss),
			formatMetric(s.FinalValLoss),
			formatMetric(s.FinalValAccuracy),
			r.Elapsed.Round(time.Millisecond).String(),
		)
	}
	return table.String()
}

func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}
