package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Backtest %s\n\n", shortID(r.Run.RunID))
	fmt.Fprintf(&b, "- **Pool**: %s\n", r.Run.Pool)
	fmt.Fprintf(&b, "- **Strategy**: %s\n", r.Run.StrategyID)
	fmt.Fprintf(&b, "- **Window**: %s .. %s\n",
		r.Run.StartTimestamp.Format(time.RFC3339), r.Run.EndTimestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Events**: %d processed, %d skipped\n",
		r.Run.EventCount, r.Run.SkippedCount)
	fmt.Fprintf(&b, "- **Rebalances**: %d\n", r.Run.RebalanceCount)
	fmt.Fprintf(&b, "- **Anomalies**: %d\n\n", r.Run.AnomalyCount)

	b.WriteString("## Performance\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Initial value (token1) | %.6f |\n", r.Stats.InitialValueY)
	fmt.Fprintf(&b, "| Final value (token1) | %.6f |\n", r.Stats.FinalValueY)
	fmt.Fprintf(&b, "| Total return | %.4f%% |\n", r.Stats.TotalReturn*100)
	fmt.Fprintf(&b, "| Max drawdown | %.4f%% |\n", r.Stats.MaxDrawdown*100)
	fmt.Fprintf(&b, "| Mean value (token1) | %.6f |\n", r.Stats.MeanValueY)
	fmt.Fprintf(&b, "| Price range | %.6f .. %.6f |\n", r.Stats.PriceMin, r.Stats.PriceMax)
	fmt.Fprintf(&b, "| Uncollected fees | %.6g token0, %.6g token1 |\n\n",
		r.Stats.UncollectedFeesX, r.Stats.UncollectedFeesY)

	if len(r.Stats.TagCounts) > 0 {
		b.WriteString("## Actions\n\n")
		b.WriteString("| Tag | Count |\n|---|---|\n")
		tags := make([]string, 0, len(r.Stats.TagCounts))
		for tag := range r.Stats.TagCounts {
			tags = append(tags, string(tag))
		}
		sort.Strings(tags)
		for _, tag := range tags {
			fmt.Fprintf(&b, "| %s | %d |\n", tag, r.Stats.TagCounts[domain.ActionTag(tag)])
		}
		b.WriteString("\n")
	}

	if len(r.Results.Anomalies) > 0 {
		b.WriteString("## Anomalies\n\n")
		b.WriteString("| Event | Kind | Position | Detail |\n|---|---|---|---|\n")
		for _, a := range r.Results.Anomalies {
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
				a.EventIndex, a.Kind, a.Position, a.Detail)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
