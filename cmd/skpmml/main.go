// Command skpmml converts fitted scikit-learn estimator dumps to PMML.
//
//	skpmml convert --input model.json.zst --output model.pmml
//	skpmml convert --input a.json --input b.yaml --output-dir out/ --config skpmml.yaml
//	skpmml list
//	skpmml version
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/skpmml"
	"github.com/YuminosukeSato/skpmml/converter"
	"github.com/YuminosukeSato/skpmml/core/store"
	"github.com/YuminosukeSato/skpmml/pkg/config"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
	"github.com/YuminosukeSato/skpmml/pkg/metrics"
	"github.com/YuminosukeSato/skpmml/pmml"
)

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		log.GetLoggerWithName("skpmml").Error("Command failed", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "skpmml",
		Short:         "Convert scikit-learn estimator dumps to PMML",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", converter.Application, converter.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "PMML version: %s\n", pmml.Version)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List supported estimator types",
		Run: func(cmd *cobra.Command, args []string) {
			for _, key := range converter.NewRegistry().Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
		},
	})

	root.AddCommand(newConvertCmd(stderr))
	return root
}

type convertFlags struct {
	inputs          []string
	output          string
	outputDir       string
	configFile      string
	logLevel        string
	logFormat       string
	numIteration    int
	allowMissing    bool
	workers         int
	metricsTextfile string
}

func newConvertCmd(stderr io.Writer) *cobra.Command {
	var f convertFlags
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert estimator dumps to PMML",
		Long: `Convert reads JSON or YAML estimator dumps, optionally zstd or gzip
compressed, and writes one PMML document per dump.

A single --input is written to --output, or to stdout when --output is
omitted; "--input -" reads the dump from stdin. Several --input values are
converted in parallel into --output-dir.

Flags take precedence over the values of the --config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			if err := log.SetupLogger(cfg.Log.Level, cfg.Log.Format, stderr); err != nil {
				return err
			}
			return runConvert(cmd.InOrStdin(), cmd.OutOrStdout(), cfg, &f)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&f.inputs, "input", "i", nil, "estimator dump to convert (repeatable)")
	flags.StringVarP(&f.output, "output", "o", "", "PMML file for a single input")
	flags.StringVar(&f.outputDir, "output-dir", "", "directory for the PMML files of several inputs")
	flags.StringVarP(&f.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&f.logFormat, "log-format", "console", "log format (console, json, cloud)")
	flags.IntVar(&f.numIteration, "num-iteration", 0, "LightGBM boosting rounds to encode (0 for all)")
	flags.BoolVar(&f.allowMissing, "allow-missing", false, "keep default children in tree models")
	flags.IntVar(&f.workers, "workers", 0, "parallel conversions (0 for one per CPU)")
	flags.StringVar(&f.metricsTextfile, "metrics-textfile", "", "write conversion metrics to this file")
	_ = cmd.MarkFlagRequired("input")
	cmd.MarkFlagsMutuallyExclusive("output", "output-dir")
	return cmd
}

// loadConfig reads the configuration file and applies the flags the user
// set explicitly.
func loadConfig(cmd *cobra.Command, f *convertFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.Load(f.configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if flags.Changed("num-iteration") {
		cfg.Convert.NumIteration = f.numIteration
	}
	if flags.Changed("allow-missing") {
		cfg.Convert.AllowMissing = f.allowMissing
	}
	if flags.Changed("workers") {
		cfg.Convert.Workers = f.workers
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = f.metricsTextfile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConvert(stdin io.Reader, stdout io.Writer, cfg *config.Config, f *convertFlags) error {
	if len(f.inputs) > 1 && f.outputDir == "" {
		return errors.NewValueError("convert", "several inputs need --output-dir")
	}

	opts := []converter.Option{
		converter.WithOptions(cfg.Options()),
		converter.WithHeader(cfg.Header),
		converter.WithWorkers(cfg.Convert.Workers),
	}
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		m, err := metrics.New(reg)
		if err != nil {
			return err
		}
		opts = append(opts, converter.WithMetrics(m))
	}

	var err error
	if len(f.inputs) == 1 && f.inputs[0] == "-" && f.output == "" {
		err = skpmml.Convert(stdin, stdout, opts...)
	} else {
		err = convert(stdout, converter.New(opts...), f)
	}
	if reg != nil && cfg.Metrics.Textfile != "" {
		if werr := prometheus.WriteToTextfile(cfg.Metrics.Textfile, reg); werr != nil && err == nil {
			err = errors.Wrap(werr, "write metrics")
		}
	}
	return err
}

func convert(stdout io.Writer, c *converter.Converter, f *convertFlags) error {
	if f.outputDir != "" {
		if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", f.outputDir)
		}
		jobs := make([]converter.Job, len(f.inputs))
		for i, input := range f.inputs {
			jobs[i] = converter.Job{Input: input, Output: converter.OutputPath(f.outputDir, input)}
		}
		failed := 0
		for _, r := range c.ConvertAll(jobs) {
			if r.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return errors.Newf("%d of %d conversions failed", failed, len(jobs))
		}
		return nil
	}

	input := f.inputs[0]
	if f.output != "" {
		return c.ConvertFile(input, f.output)
	}
	obj, err := store.Open(input)
	if err != nil {
		return err
	}
	doc, err := c.Convert(obj)
	if err != nil {
		return errors.Wrapf(err, "convert %s", input)
	}
	return pmml.Marshal(stdout, doc)
}
