package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/libcert/pkg/config"
	"github.com/dd0wney/libcert/pkg/liberty"
	"github.com/dd0wney/libcert/pkg/logging"
	"github.com/dd0wney/libcert/pkg/metrics"
)

// globalFlags override values from the configuration file.
type globalFlags struct {
	configPath  string
	dialect     string
	class       string
	logLevel    string
	metricsFile string
	workers     int
}

// app carries state shared by every subcommand of one invocation.
type app struct {
	flags   globalFlags
	cfg     *config.RunConfig
	logger  logging.Logger
	metrics *metrics.Registry
	start   time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "libcert",
		Short: "Extract characterization tables from Liberty timing libraries",
		Long: `libcert reads nominal or statistical-variation Liberty libraries and
extracts their delay, slew and constraint lookup tables so they can be
compared against golden Monte-Carlo results.`,
		SilenceErrors:      true,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "run configuration file (YAML)")
	pf.StringVarP(&a.flags.dialect, "dialect", "d", "", "library dialect: nominal or variation")
	pf.StringVar(&a.flags.class, "class", "", "table class: all, constraint, delay or slew")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.flags.metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")
	pf.IntVarP(&a.flags.workers, "workers", "w", 0, "files parsed concurrently (default: number of CPUs)")

	cmd.AddCommand(
		newParseCmd(a),
		newCountCmd(a),
		newExportCmd(a),
		newBrowseCmd(a),
	)
	return cmd
}

// Execute runs the command line and reports a failure on stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.start = time.Now()

	cfg := config.DefaultConfig()
	if a.flags.configPath != "" {
		loaded, err := config.Load(a.flags.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dialect") {
		cfg.Dialect = strings.ToLower(a.flags.dialect)
	}
	if flags.Changed("class") {
		cfg.Class = strings.ToLower(a.flags.class)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(a.flags.logLevel)
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = a.flags.metricsFile
	}
	if flags.Changed("workers") {
		cfg.Workers = a.flags.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.NewJSONLogger(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel)).
		With(logging.Component("libcert"))
	a.metrics = metrics.NewRegistry()
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.cfg == nil || a.cfg.MetricsFile == "" {
		return nil
	}
	a.metrics.UpdateSystemMetrics(a.start)
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// newParser builds a parser from the effective configuration.
func (a *app) newParser() (*liberty.Parser, error) {
	opts, err := a.cfg.ParserOptions(a.logger, a.metrics)
	if err != nil {
		return nil, err
	}
	return liberty.NewParser(opts)
}

// parseOne parses a single library file.
func (a *app) parseOne(ctx context.Context, path string) (*liberty.Result, error) {
	p, err := a.newParser()
	if err != nil {
		return nil, err
	}
	timer := logging.StartTimer(a.logger, "parse", logging.File(path))
	res, err := p.ParseFile(ctx, path)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End(logging.Count(res.Stats.TablesExtracted))
	return res, nil
}
