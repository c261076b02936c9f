package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"energydash/adapters/ingest"
	"energydash/app"
	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal/analytics"
)

func newImportCmd() *cobra.Command {
	var buildingID int64

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Parse a CSV or XLSX readings file and store the valid rows",
		Long: `Parse a readings file with timestamp, kWh, cost and optional co2 and source
columns. Invalid rows are reported and skipped; readings already stored for the
same timestamp and source are left untouched.

Example: energyctl import meter-january.xlsx --building 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			result, err := c.UploadService.Import(cmd.Context(), buildingID, filepath.Base(args[0]), f)
			if result != nil {
				for _, e := range result.Parse.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), e)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "batch %s: stored %d of %d readings (%d rows rejected)\n",
				result.BatchID, result.Insert.RecordsCreated, result.Insert.TotalSubmitted, len(result.Parse.Errors))
			return nil
		},
	}

	cmd.Flags().Int64Var(&buildingID, "building", energy.DefaultBuildingID, "Building ID")
	return cmd
}

type analyzeOptions struct {
	weatherFile string
	threshold   float64
	timezone    string
	asJSON      bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a readings file offline",
		Long: `Aggregate a readings file into daily totals and print anomalous days and the
usage trend. With --weather, days are joined to a CSV of date,avgTemp rows and the
temperature correlation and weather model are printed too. No database is needed.

Example: energyctl analyze meter.csv --weather berlin-2024.csv --threshold 25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.weatherFile, "weather", "", "CSV of daily weather (date, avgTemp)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", analytics.DefaultAnomalyThreshold, "Anomaly threshold in percent")
	cmd.Flags().StringVar(&opts.timezone, "tz", "UTC", "Time zone used to cut days")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full result as JSON")
	return cmd
}

func runAnalyze(out io.Writer, path string, opts analyzeOptions) error {
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return core.NewValidationError("tz", err.Error())
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	parsed, err := ingest.Parse(filepath.Base(path), f)
	if err != nil {
		return err
	}
	if !parsed.Valid() {
		return core.NewValidationError("file", fmt.Sprintf("no valid rows (%d rejected)", len(parsed.Errors)))
	}

	var weather []energy.WeatherDay
	if opts.weatherFile != "" {
		wf, err := os.Open(opts.weatherFile)
		if err != nil {
			return err
		}
		defer wf.Close()
		if weather, err = ingest.ParseWeather(energy.DefaultStation, wf); err != nil {
			return err
		}
	}

	daily := analytics.DailySeries(parsed.Data, loc)
	result := app.Compute(daily, weather, opts.threshold)
	if len(daily) > 0 {
		result.Range = energy.DateRange{Start: daily[0].Date, End: daily[len(daily)-1].Date}
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printAnalytics(out, result, len(parsed.Errors))
	return nil
}

func printAnalytics(out io.Writer, result *energy.Analytics, rejected int) {
	fmt.Fprintf(out, "%d days from %s to %s", len(result.Days),
		result.Range.Start.Format(core.DateLayout), result.Range.End.Format(core.DateLayout))
	if rejected > 0 {
		fmt.Fprintf(out, " (%d rows rejected)", rejected)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Trend: %s kWh/day\n", formatMeasure(result.Trend.Slope, 2))
	if result.WeatherAvailable {
		fmt.Fprintf(out, "Temperature correlation: r=%s p=%s (n=%d)\n",
			formatMeasure(result.TemperatureCorrelation.Coefficient, 3),
			formatMeasure(result.TemperatureCorrelation.PValue, 4),
			result.TemperatureCorrelation.Samples)
		fmt.Fprintf(out, "Weather model: %s kWh + %s kWh per degree day\n",
			formatMeasure(result.WeatherModel.Intercept, 1), formatMeasure(result.WeatherModel.Slope, 2))
	}

	fmt.Fprintf(out, "Anomalies above %.0f%%: %d\n", result.Threshold, result.Anomalies)
	if result.Anomalies == 0 {
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tKWH\tDEVIATION\tSCORE")
	for _, d := range result.Days {
		if d.IsAnomaly {
			fmt.Fprintf(tw, "%s\t%.1f\t%+.1f%%\t%.2f\n", d.Date.Format(core.DateLayout), d.KWh, d.DeviationPct, d.AnomalyScore)
		}
	}
	tw.Flush()
}

func formatMeasure(m energy.Measure, prec int) string {
	if !m.Defined() {
		return "n/a (" + m.Reason + ")"
	}
	return fmt.Sprintf("%.*f", prec, *m.Value)
}

func newSweepCmd() *cobra.Command {
	var (
		buildingID int64
		days       int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one alert sweep",
		Long: `Evaluate recent daily usage against each building's alert thresholds and store
new alerts. Days that already have an alert of the same kind are skipped.

Example: energyctl sweep --days 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if days <= 0 {
				days = c.Config.Alerts.LookbackDays
			}

			var results []*app.SweepResult
			if buildingID > 0 {
				result, err := c.AlertService.Sweep(cmd.Context(), buildingID, days)
				if err != nil {
					return err
				}
				results = append(results, result)
			} else if results, err = c.AlertService.SweepAll(cmd.Context(), days); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BUILDING\tDAY\tKIND\tSEVERITY\tMESSAGE")
			created := 0
			for _, r := range results {
				for _, a := range r.Created {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.BuildingID, a.Day.Format(core.DateLayout), a.Kind, a.Severity, a.Message)
					created++
				}
			}
			tw.Flush()
			fmt.Fprintf(cmd.OutOrStdout(), "%d new alerts across %d buildings\n", created, len(results))
			return nil
		},
	}

	cmd.Flags().Int64Var(&buildingID, "building", 0, "Building ID (0 sweeps every building)")
	cmd.Flags().IntVar(&days, "days", 0, "Lookback in days (default from ALERT_LOOKBACK_DAYS)")
	return cmd
}
