package app

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/sync/errgroup"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal"
	"energydash/internal/analytics"
	"energydash/ports"
)

// ReportService builds periodic energy reports comparing a period with the
// one of equal length before it.
type ReportService struct {
	buildings ports.BuildingRepository
	analytics *AnalyticsService
	logger    *internal.Logger
	now       func() time.Time
}

// NewReportService creates a report service
func NewReportService(buildings ports.BuildingRepository, analyticsService *AnalyticsService, logger *internal.Logger) *ReportService {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &ReportService{
		buildings: buildings,
		analytics: analyticsService,
		logger:    logger.With("reports"),
		now:       time.Now,
	}
}

// Build computes the report of a building for the calendar days spanned by [start, end].
func (s *ReportService) Build(ctx context.Context, buildingID int64, start, end time.Time) (*energy.Report, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, core.NewValidationError("dateRange", "a start date not after the end date is required")
	}

	building, err := s.buildings.Get(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	loc := building.Location()
	start, end = core.StartOfDay(start, loc), core.EndOfDay(end, loc)
	prevStart, prevEnd := core.PreviousPeriod(start, end)

	var (
		current, previous *energy.Analytics
		currentDaily      []energy.DailyUsage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, currentDaily, err = s.analytics.analyze(gctx, building, start, end, analytics.DefaultAnomalyThreshold)
		return err
	})
	g.Go(func() error {
		var err error
		previous, _, err = s.analytics.analyze(gctx, building, prevStart, prevEnd, analytics.DefaultAnomalyThreshold)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to analyse report periods: %w", err)
	}

	report := &energy.Report{
		Building:  *building,
		Current:   periodTotals(current, building),
		Previous:  periodTotals(previous, building),
		Monthly:   analytics.MonthlyBreakdown(currentDaily),
		Generated: s.now().UTC(),
	}
	if report.Monthly == nil {
		report.Monthly = []energy.MonthlyUsage{}
	}
	report.Change = energy.PeriodChange{
		Energy:    analytics.PercentageChange(report.Current.TotalEnergy, report.Previous.TotalEnergy),
		Cost:      analytics.PercentageChange(report.Current.TotalCost, report.Previous.TotalCost),
		CO2:       analytics.PercentageChange(report.Current.TotalCO2, report.Previous.TotalCO2),
		Intensity: analytics.PercentageChange(report.Current.EnergyUseIntensity, report.Previous.EnergyUseIntensity),
	}
	report.Narrative = Narrative(report)

	s.logger.Debug("built report for building %d: %d days, %.1f kWh", buildingID, report.Current.Days, report.Current.TotalEnergy)
	return report, nil
}

func periodTotals(a *energy.Analytics, b *energy.Building) energy.PeriodTotals {
	totals := energy.PeriodTotals{
		Range:     a.Range,
		Anomalies: a.Anomalies,
		Days:      len(a.Days),
	}
	for _, d := range a.Days {
		totals.TotalEnergy += d.KWh
		totals.TotalCost += d.Cost
		totals.TotalCO2 += d.CO2
		totals.WeatherNormalizedUsage += d.NormalizedUsage
		if d.KWh > totals.PeakUsage {
			totals.PeakUsage = d.KWh
		}
	}
	if totals.Days > 0 {
		totals.AvgDailyUsage = totals.TotalEnergy / float64(totals.Days)
	}
	if b.FloorArea > 0 {
		totals.EnergyUseIntensity = totals.TotalEnergy / b.FloorArea
	}
	return totals
}

// Narrative renders the report summary as markdown.
func Narrative(r *energy.Report) string {
	var sb strings.Builder
	cur := r.Current
	currency := r.Building.Currency

	fmt.Fprintf(&sb, "## %s\n\n", r.Building.Name)
	fmt.Fprintf(&sb, "Reporting period **%s** to **%s** (%d days with data).\n\n",
		cur.Range.Start.Format(core.DateLayout), cur.Range.End.Format(core.DateLayout), cur.Days)

	if cur.Days == 0 {
		sb.WriteString("No energy readings were recorded in this period.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "- Total consumption: **%s** (%s vs previous period)\n",
		analytics.FormatEnergy(cur.TotalEnergy), analytics.FormatChange(r.Change.Energy))
	fmt.Fprintf(&sb, "- Total cost: **%s** (%s)\n",
		analytics.FormatCurrency(cur.TotalCost, currency), analytics.FormatChange(r.Change.Cost))
	fmt.Fprintf(&sb, "- Emissions: **%s** (%s)\n",
		analytics.FormatCO2(cur.TotalCO2), analytics.FormatChange(r.Change.CO2))
	fmt.Fprintf(&sb, "- Average daily usage: %s, peak day %s\n",
		analytics.FormatEnergy(cur.AvgDailyUsage), analytics.FormatEnergy(cur.PeakUsage))
	if cur.EnergyUseIntensity > 0 {
		fmt.Fprintf(&sb, "- Energy use intensity: %.2f kWh/m²\n", cur.EnergyUseIntensity)
	}
	fmt.Fprintf(&sb, "- Weather-normalised usage: %s\n\n", analytics.FormatEnergy(cur.WeatherNormalizedUsage))

	switch {
	case cur.Anomalies == 0:
		sb.WriteString("No anomalous days were detected.\n")
	case cur.Anomalies == 1:
		fmt.Fprintf(&sb, "**1 anomalous day** deviated more than %.0f%% from the period average.\n", analytics.DefaultAnomalyThreshold)
	default:
		fmt.Fprintf(&sb, "**%d anomalous days** deviated more than %.0f%% from the period average.\n", cur.Anomalies, analytics.DefaultAnomalyThreshold)
	}

	if r.Change.Energy <= -5 {
		sb.WriteString("\nConsumption fell noticeably compared with the previous period.\n")
	} else if r.Change.Energy >= 5 {
		sb.WriteString("\nConsumption rose noticeably compared with the previous period; review the anomalous days and heating schedules.\n")
	}
	return sb.String()
}

// NarrativeHTML renders a report narrative to HTML.
func NarrativeHTML(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(md), p, renderer))
}
