package main

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"network-insights-go/internal/config"
	"network-insights-go/internal/filter"
	"network-insights-go/internal/logger"
	"network-insights-go/internal/processor"
)

var cfg *config.Config

var flags struct {
	data     string
	nps      string
	segments []string
	insurers []string
	states   []string
	cities   []string
	from     string
	to       string
}

var rootCmd = &cobra.Command{
	Use:           "netscore",
	Short:         "Coverage, performance and satisfaction analytics for a service-provider network",
	Long:          "Loads service records and survey counts, then scores cities by capillarity and providers by performance.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotEnv()
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if flags.data != "" {
			c.Dataset.Path = flags.data
		}
		if flags.nps != "" {
			c.Dataset.NPSPath = flags.nps
		}
		cfg = c

		// stdout carries the JSON result
		logger.Configure(logger.Options{
			Level:       cfg.Log.Level,
			Environment: cfg.Log.Environment,
			Output:      cmd.ErrOrStderr(),
		})
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.data, "data", "", "service records workbook (path or URL)")
	pf.StringVar(&flags.nps, "nps", "", "NPS counts workbook (path or URL)")
	pf.StringSliceVar(&flags.segments, "segment", nil, "segments to include")
	pf.StringSliceVar(&flags.insurers, "insurer", nil, "insurers to include")
	pf.StringSliceVar(&flags.states, "state", nil, "states to include")
	pf.StringSliceVar(&flags.cities, "city", nil, "cities to include")
	pf.StringVar(&flags.from, "from", "", "first opening day (YYYY-MM-DD)")
	pf.StringVar(&flags.to, "to", "", "last opening day (YYYY-MM-DD)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseDay(name, v string) (*time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, eris.Wrapf(err, "--%s", name)
	}
	return &t, nil
}

func criteria() (filter.Criteria, error) {
	c := filter.Criteria{
		Segments: flags.segments,
		Insurers: flags.insurers,
		States:   flags.states,
		Cities:   flags.cities,
	}
	var err error
	if c.From, err = parseDay("from", flags.from); err != nil {
		return c, err
	}
	if c.To, err = parseDay("to", flags.to); err != nil {
		return c, err
	}
	return c, nil
}

func service() *processor.Service {
	return processor.New(processor.OptionsFromConfig(cfg), logger.New().Entry)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
