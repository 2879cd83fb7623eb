package reporter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Arpanmondalz/digital-health-daemon/internal/config"
	"github.com/Arpanmondalz/digital-health-daemon/internal/models"
)

// Store is the slice of the repository the reporter reads through.
type Store interface {
	GetBreakSummarySince(since time.Time) (*models.BreakSummary, error)
	CountKindSince(kind string, since time.Time) (int64, error)
	SumWorkDamageSince(since time.Time) (float64, error)
}

// Reporter handles report generation
type Reporter struct {
	config *config.Config
	store  Store
}

// New creates a new reporter
func New(cfg *config.Config, store Store) *Reporter {
	return &Reporter{
		config: cfg,
		store:  store,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	// SQL does the aggregation - runtime derives the rest
	breaks, err := r.store.GetBreakSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get break summary: %w", err)
	}

	if breaks.Breaks > 0 {
		breaks.AverageLength = float64(breaks.BreakMinutes) / float64(breaks.Breaks)
	}

	damage, err := r.store.SumWorkDamageSince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to sum work damage: %w", err)
	}
	// Damage scales as 100/LimitDeath per minute, so invert to get minutes.
	workMinutes := damage * float64(r.config.LimitDeathMinutes()) / 100.0

	deaths, err := r.store.CountKindSince(models.KindDeath, period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to count deaths: %w", err)
	}

	resurrects, err := r.store.CountKindSince(models.KindResurrect, period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to count resurrects: %w", err)
	}

	report := &models.Report{
		Period:      *period,
		Breaks:      *breaks,
		WorkMinutes: workMinutes,
		Deaths:      int(deaths),
		Resurrects:  int(resurrects),
		GeneratedAt: time.Now(),
	}

	return report, nil
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := time.Now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.Add(24 * time.Hour)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("Break Report - %s\n", report.Period.Type)
	output += fmt.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	output += fmt.Sprintf("Time Worked: %.0fm (%.1fh)\n\n", report.WorkMinutes, report.WorkMinutes/60.0)

	if report.Breaks.Breaks == 0 && report.WorkMinutes == 0 {
		output += "No activity recorded for this period.\n"
		return output
	}

	output += fmt.Sprintf("Breaks Taken:    %d\n", report.Breaks.Breaks)
	output += fmt.Sprintf("Time on Break:   %dm\n", report.Breaks.BreakMinutes)
	output += fmt.Sprintf("Longest Break:   %dm\n", report.Breaks.LongestBreak)
	if report.Breaks.Breaks > 0 {
		output += fmt.Sprintf("Average Break:   %.1fm\n", report.Breaks.AverageLength)
	}
	output += fmt.Sprintf("Full Resets:     %d\n", report.Breaks.FullResets)
	output += fmt.Sprintf("Wasted Breaks:   %d (too short to heal)\n", report.Breaks.WastedBreaks)
	output += fmt.Sprintf("HP Recovered:    %.0f\n", report.Breaks.HealedTotal)

	if report.Deaths > 0 || report.Resurrects > 0 {
		output += fmt.Sprintf("\nDeaths:          %d\n", report.Deaths)
		output += fmt.Sprintf("Resurrections:   %d\n", report.Resurrects)
	}

	return output
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}
