package report

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/flowlens/internal/models"
)

// formatReport renders an analysis result as a markdown document.
func formatReport(result *models.AnalysisResult) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Options Flow Report\n\n")
	sb.WriteString(fmt.Sprintf("**Range:** %s (%s to %s)\n",
		result.Range,
		result.WindowStart.Format("2006-01-02 15:04"),
		result.WindowEnd.Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", result.GeneratedAt.Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("**Records Analyzed:** %d\n\n", result.Summary.TotalRecords))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Market Sentiment:** %s\n", result.Summary.MarketSentiment))
	sb.WriteString(fmt.Sprintf("- **Risk Level:** %s\n", result.Summary.RiskLevel))
	sb.WriteString(fmt.Sprintf("- **Patterns Detected:** %d\n", result.Summary.PatternCount))
	sb.WriteString(fmt.Sprintf("- **Anomalies Detected:** %d\n\n", result.Summary.AnomalyCount))

	if len(result.Summary.TopTickers) > 0 {
		sb.WriteString("### Most Active Tickers\n\n")
		sb.WriteString("| Ticker | Trades |\n")
		sb.WriteString("|--------|--------|\n")
		for _, ta := range result.Summary.TopTickers {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", ta.Ticker, ta.Count))
		}
		sb.WriteString("\n")
	}

	// Insights
	sb.WriteString("## Insights\n\n")
	if len(result.Insights) == 0 {
		sb.WriteString("No insights detected over this window.\n\n")
	}
	for _, in := range result.Insights {
		sb.WriteString(fmt.Sprintf("### %s (confidence %.0f%%)\n\n", in.Title, in.Confidence*100))
		sb.WriteString(in.Description + "\n\n")
	}

	// Patterns
	sb.WriteString("## Patterns\n\n")
	if len(result.Patterns) == 0 {
		sb.WriteString("No patterns detected.\n\n")
	} else {
		sb.WriteString("| Ticker | Pattern | Occurrences | Detail |\n")
		sb.WriteString("|--------|---------|-------------|--------|\n")
		for _, p := range result.Patterns {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n", p.Ticker, p.PatternType, p.Occurrences, p.Description))
		}
		sb.WriteString("\n")
	}

	// Anomalies
	sb.WriteString("## Anomalies\n\n")
	if len(result.Anomalies) == 0 {
		sb.WriteString("No anomalies detected.\n")
	}
	for _, a := range result.Anomalies {
		sb.WriteString(fmt.Sprintf("- **[%s] %s** %s: %s\n", a.Severity, a.AnomalyType, a.Ticker, a.Description))
	}

	return sb.String()
}
