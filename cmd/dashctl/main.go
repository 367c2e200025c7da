// dashctl inspects the embedded company datasets from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Dan9191/findash/internal/chart"
	"github.com/Dan9191/findash/internal/config"
	"github.com/Dan9191/findash/internal/models"
	"github.com/Dan9191/findash/internal/repository"
	"github.com/Dan9191/findash/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var svc *service.Service

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "dashctl",
	Short:         "Inspect financial statement datasets",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		level, err := logrus.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		logger.SetLevel(level)

		repo, err := repository.NewRepository()
		if err != nil {
			return fmt.Errorf("failed to load company data: %w", err)
		}
		cfg := &config.Config{HistoricalCutoff: viper.GetInt("cutoff")}
		svc = service.NewService(repo, repository.NewMemoryOverlayStore(), nil, logger, cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().Int("cutoff", models.DefaultHistoricalCutoff, "last fiscal year treated as historical")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(fmt.Sprintf("failed to bind flags: %v", err))
	}
	viper.SetEnvPrefix("DASHCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	seriesCmd.Flags().String("kind", string(models.KindAnnual), "series kind (annual, average, cagr)")
	industryCmd.Flags().String("kind", string(models.KindAverage), "series kind (average, cagr)")
	industryCmd.Flags().StringSlice("tickers", nil, "tickers to include (default: all)")

	rootCmd.AddCommand(companiesCmd, seriesCmd, industryCmd, paletteCmd, hasCmd)
}

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies with a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		companies := svc.Companies()
		return render(cmd.OutOrStdout(), companies, func(tw io.Writer) {
			fmt.Fprintln(tw, "TICKER\tNAME\tSECTOR\tFY END")
			for _, c := range companies {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Ticker, c.Name, c.Sector, c.FiscalYearEnd)
			}
		})
	},
}

var seriesCmd = &cobra.Command{
	Use:   "series TICKER METRIC",
	Short: "Print a metric series",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flag, _ := cmd.Flags().GetString("kind")
		kind, err := models.ParseSeriesKind(flag)
		if err != nil {
			return err
		}
		data, err := svc.GetSeries(strings.ToUpper(args[0]), args[1], kind, nil)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), data, func(tw io.Writer) {
			fmt.Fprintln(tw, "PERIOD\tVALUE\tBUCKET")
			for _, p := range data.Historical {
				fmt.Fprintf(tw, "%s\t%s\thistorical\n", p.Label, formatFloat(p.Value))
			}
			for _, p := range data.Future {
				fmt.Fprintf(tw, "%s\t%s\tfuture\n", p.Label, formatFloat(p.Value))
			}
			for _, p := range data.Series {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Label, formatFloat(p.Value), kind)
			}
		})
	},
}

var industryCmd = &cobra.Command{
	Use:   "industry METRIC",
	Short: "Average a metric's rolling figures across companies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flag, _ := cmd.Flags().GetString("kind")
		tickers, _ := cmd.Flags().GetStringSlice("tickers")
		for i := range tickers {
			tickers[i] = strings.ToUpper(tickers[i])
		}
		points, err := svc.CalculateIndustryAverages(context.Background(), tickers, args[0], models.SeriesKind(flag))
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), points, func(tw io.Writer) {
			fmt.Fprintln(tw, "PERIOD\tMEAN\tCOMPANIES")
			for _, p := range points {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Period, formatFloat(p.Value), p.Count)
			}
		})
	},
}

var paletteCmd = &cobra.Command{
	Use:   "palette N",
	Short: "Print N chart colors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("N must be an integer: %w", err)
		}
		colors := chart.GenerateColorPalette(n)
		return render(cmd.OutOrStdout(), colors, func(tw io.Writer) {
			for i, c := range colors {
				fmt.Fprintf(tw, "%d\t%s\n", i, c)
			}
		})
	},
}

var hasCmd = &cobra.Command{
	Use:   "has TICKER METRIC",
	Short: "Report whether a company defines a metric",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		present := svc.HasMetricData(strings.ToUpper(args[0]), args[1])
		return render(cmd.OutOrStdout(), map[string]bool{"present": present}, func(tw io.Writer) {
			fmt.Fprintln(tw, present)
		})
	},
}

func render(w io.Writer, v interface{}, table func(io.Writer)) error {
	switch viper.GetString("output") {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", viper.GetString("output"))
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
