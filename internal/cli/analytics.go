package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seuros/jogo/internal/analytics"
	"github.com/seuros/jogo/internal/calendar"
	"github.com/seuros/jogo/internal/config"
	"github.com/seuros/jogo/internal/store"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Print funnel analytics from the command line",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var analyticsDashboardCmd = &cobra.Command{
	Use:   "dashboard --user <email> [--period days] [--format text|json]",
	Short: "Show a user's dashboard totals",
	Long: `Show the same aggregates as GET /api/analytics/dashboard for one user.

Example:
  jogo analytics dashboard --user ada@example.com --period 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("user")
		period, _ := cmd.Flags().GetInt("period")
		format, _ := cmd.Flags().GetString("format")
		return withStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, st store.Store) error {
			reporter, userID, days, err := prepareReport(ctx, cfg, st, email, period)
			if err != nil {
				return err
			}
			dash, err := reporter.Dashboard(ctx, userID, days)
			if err != nil {
				return err
			}
			if format == "json" {
				return outputAnalyticsJSON(dash)
			}
			return outputDashboardText(dash, email)
		})
	},
}

var analyticsFunnelCmd = &cobra.Command{
	Use:   "funnel <funnel-id> --user <email> [--period days] [--format text|json]",
	Short: "Show daily analytics for one funnel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("user")
		period, _ := cmd.Flags().GetInt("period")
		format, _ := cmd.Flags().GetString("format")
		return withStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, st store.Store) error {
			reporter, userID, days, err := prepareReport(ctx, cfg, st, email, period)
			if err != nil {
				return err
			}
			report, err := reporter.FunnelReport(ctx, userID, args[0], days)
			if err != nil {
				return err
			}
			if format == "json" {
				return outputAnalyticsJSON(report)
			}
			return outputFunnelReportText(report)
		})
	},
}

// prepareReport resolves the user and period and builds a reporter in the
// configured timezone.
func prepareReport(ctx context.Context, cfg *config.Config, st store.Store, email string, period int) (*analytics.Reporter, string, int, error) {
	if strings.TrimSpace(email) == "" {
		return nil, "", 0, errors.New("--user is required")
	}
	if period == 0 {
		period = cfg.DefaultPeriod
	}
	if period < 1 || period > analytics.MaxPeriod {
		return nil, "", 0, fmt.Errorf("period must be between 1 and %d", analytics.MaxPeriod)
	}

	user, err := st.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", 0, fmt.Errorf("user '%s' not found", email)
	}
	if err != nil {
		return nil, "", 0, err
	}

	cal, err := calendar.Load(cfg.Timezone, time.Now)
	if err != nil {
		return nil, "", 0, err
	}
	return analytics.NewReporter(st, cal), user.ID, period, nil
}

func outputAnalyticsJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputDashboardText(dash *analytics.Dashboard, owner string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintf(w, "Dashboard for %s (last %d days)\n\n", owner, dash.Period)
	_, _ = fmt.Fprintf(w, "Total Visitors:\t%d\n", dash.Stats.TotalVisitors)
	_, _ = fmt.Fprintf(w, "Total Page Views:\t%d\n", dash.Stats.TotalPageViews)
	_, _ = fmt.Fprintf(w, "Total Conversions:\t%d\n", dash.Stats.TotalConversions)
	_, _ = fmt.Fprintf(w, "Total Revenue:\t%.2f\n", dash.Stats.TotalRevenue)
	_, _ = fmt.Fprintf(w, "Conversion Rate:\t%.1f%%\n", dash.Stats.ConversionRate)
	_, _ = fmt.Fprintf(w, "Avg Bounce Rate:\t%.1f%%\n", dash.Stats.AvgBounceRate)
	_, _ = fmt.Fprintf(w, "Avg Session Duration:\t%.1fs\n", dash.Stats.AvgSessionDuration)

	if len(dash.DailyAnalytics) > 0 {
		_, _ = fmt.Fprintln(w, "\nDATE\tVISITORS\tCONVERSIONS\tREVENUE")
		for _, p := range dash.DailyAnalytics {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\n", p.Date, p.Visitors, p.Conversions, p.Revenue)
		}
	}

	if len(dash.TopFunnels) > 0 {
		_, _ = fmt.Fprintln(w, "\nTOP FUNNELS\tSTATUS\tVISITORS\tCONVERSION RATE")
		for _, f := range dash.TopFunnels {
			var visitors int64
			var rate float64
			if f.Stats != nil {
				visitors, rate = f.Stats.Visitors, f.Stats.ConversionRate
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%.1f%%\n", f.Name, f.Status, visitors, rate)
		}
	}
	return nil
}

func outputFunnelReportText(report *analytics.FunnelReport) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintf(w, "Funnel %s (%s), last %d days\n\n", report.Funnel.Name, report.Funnel.Status, report.Period)
	_, _ = fmt.Fprintf(w, "Visitors:\t%d\n", report.Stats.TotalVisitors)
	_, _ = fmt.Fprintf(w, "Conversions:\t%d\n", report.Stats.TotalConversions)
	_, _ = fmt.Fprintf(w, "Revenue:\t%.2f\n", report.Stats.TotalRevenue)
	_, _ = fmt.Fprintf(w, "Conversion Rate:\t%.1f%%\n", report.Stats.ConversionRate)

	if len(report.Analytics) == 0 {
		_, _ = fmt.Fprintln(w, "\nNo activity in this period")
		return nil
	}
	_, _ = fmt.Fprintln(w, "\nDAY\tVISITORS\tPAGE VIEWS\tCONVERSIONS\tREVENUE")
	for _, s := range report.Analytics {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\n",
			s.Day, s.Metrics.Visitors, s.Metrics.PageViews, s.Metrics.Conversions, s.Metrics.Revenue)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{analyticsDashboardCmd, analyticsFunnelCmd} {
		c.Flags().StringP("user", "u", "", "Email of the funnel owner")
		c.Flags().IntP("period", "p", 0, "Number of days to include (default: configured default_period)")
		c.Flags().StringP("format", "f", "text", "Output format (text, json)")
	}

	analyticsCmd.AddCommand(analyticsDashboardCmd)
	analyticsCmd.AddCommand(analyticsFunnelCmd)
	RootCmd.AddCommand(analyticsCmd)
}
