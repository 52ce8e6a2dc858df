package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/banshee-data/residuals.report/internal/config"
	"github.com/banshee-data/residuals.report/internal/flatfile"
	"github.com/banshee-data/residuals.report/internal/fsutil"
	"github.com/banshee-data/residuals.report/internal/gmm"
	"github.com/banshee-data/residuals.report/internal/report"
	"github.com/banshee-data/residuals.report/internal/residual"
	"github.com/banshee-data/residuals.report/internal/store"
	"github.com/banshee-data/residuals.report/internal/timeutil"
	"github.com/banshee-data/residuals.report/internal/version"
)

// modelName identifies the evaluator on archived runs.
const modelName = "ba18"

// clock times runs and stamps archived ones.
var clock timeutil.Clock = timeutil.RealClock{}

type computeFlags struct {
	in           string
	out          string
	configPath   string
	coefficients string

	region           string
	vsSource         string
	mechanismFromSOF bool
	minAmp           float64
	workers          int
	z1Units          string

	summary string
	plot    string
	html    string
	db      string
}

// job is a fully resolved compute invocation.
type job struct {
	in, out      string
	coefficients string
	opts         residual.Options

	summary, plot, html, db string
}

func newComputeCmd(a *app) *cobra.Command {
	f := &computeFlags{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute residual columns for a flatfile",
		Example: `  fasresid compute --in flatfile.csv --out resid.csv --coefficients ba18_coeffs.csv
  fasresid compute --in flatfile.csv --out resid.csv --config run.yaml --summary summary.csv --plot resid.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := resolveJob(cmd, f)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runCompute(ctx, fsutil.OSFileSystem{}, a.logger, j)
		},
	}

	f.bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// bind registers the compute flags. Defaults mirror
// residual.DefaultOptions so --help shows the effective values.
func (f *computeFlags) bind(flags *pflag.FlagSet) {
	defaults := residual.DefaultOptions()
	flags.StringVar(&f.in, "in", "", "input flatfile CSV (required)")
	flags.StringVar(&f.out, "out", "", "output CSV with residual columns (required)")
	flags.StringVar(&f.configPath, "config", "", "JSON or YAML run configuration")
	flags.StringVar(&f.coefficients, "coefficients", "", "BA18 coefficient CSV")
	flags.StringVar(&f.region, "region", defaults.Region, "model region")
	flags.StringVar(&f.vsSource, "vs-source", defaults.VsSource, "Vs30 source: inferred or measured")
	flags.BoolVar(&f.mechanismFromSOF, "mechanism-from-sof", defaults.MechanismFromSOF, "classify mechanism from the SOF column")
	flags.Float64Var(&f.minAmp, "min-amp", defaults.MinAmp, "floor applied to observed amplitudes")
	flags.IntVar(&f.workers, "workers", defaults.Workers, "rows evaluated concurrently")
	flags.StringVar(&f.z1Units, "z1-units", defaults.Z1Units, "units of the Z1.0 column: km or m")
	flags.StringVar(&f.summary, "summary", "", "write per-frequency statistics CSV")
	flags.StringVar(&f.plot, "plot", "", "write a mean residual plot (.png, .svg or .pdf)")
	flags.StringVar(&f.html, "html", "", "write an interactive HTML chart")
	flags.StringVar(&f.db, "db", "", "archive the run in this SQLite database")
}

// resolveJob layers explicitly set flags over the config file over defaults.
func resolveJob(cmd *cobra.Command, f *computeFlags) (job, error) {
	cfg := config.EmptyResidualConfig()
	if f.configPath != "" {
		loaded, err := config.LoadResidualConfig(f.configPath)
		if err != nil {
			return job{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("region") {
		cfg.Region = &f.region
	}
	if flags.Changed("vs-source") {
		cfg.VsSource = &f.vsSource
	}
	if flags.Changed("mechanism-from-sof") {
		cfg.MechanismFromSOF = &f.mechanismFromSOF
	}
	if flags.Changed("min-amp") {
		cfg.MinAmp = &f.minAmp
	}
	if flags.Changed("workers") {
		cfg.Workers = &f.workers
	}
	if flags.Changed("z1-units") {
		cfg.Z1Units = &f.z1Units
	}
	if flags.Changed("coefficients") {
		cfg.Coefficients = &f.coefficients
	}
	if err := cfg.Validate(); err != nil {
		return job{}, fmt.Errorf("invalid options: %w", err)
	}

	j := job{
		in:           f.in,
		out:          f.out,
		coefficients: cfg.GetCoefficients(),
		opts:         cfg.ToOptions(),
		summary:      f.summary,
		plot:         f.plot,
		html:         f.html,
		db:           f.db,
	}
	if err := j.validate(); err != nil {
		return job{}, err
	}
	return j, nil
}

// validate rejects jobs that would fail only after outputs were written.
func (j job) validate() error {
	if j.coefficients == "" {
		return errors.New("no BA18 coefficient table: pass --coefficients or set coefficients in --config")
	}
	if j.plot != "" {
		if _, err := report.PlotFormat(j.plot); err != nil {
			return fmt.Errorf("--plot: %w", err)
		}
	}
	return nil
}

// runCompute loads the inputs, computes every residual and only then writes
// the outputs, so a failing row leaves no partial files behind.
func runCompute(ctx context.Context, fsys fsutil.FileSystem, logger *zap.Logger, j job) error {
	if err := j.validate(); err != nil {
		return err
	}
	start := clock.Now()

	tbl, err := flatfile.LoadTable(fsys, j.in)
	if err != nil {
		return err
	}
	logger.Info("loaded flatfile",
		zap.String("path", j.in),
		zap.Int("records", tbl.Len()),
		zap.Int("columns", len(tbl.Header)))

	model, err := gmm.LoadBA18(fsys, j.coefficients)
	if err != nil {
		return err
	}
	logger.Debug("loaded coefficients",
		zap.String("path", j.coefficients),
		zap.Int("frequencies", len(model.Freqs())))

	comp, err := residual.NewComputer(model, j.opts)
	if err != nil {
		return err
	}
	res, err := comp.Compute(ctx, tbl)
	if err != nil {
		return err
	}

	out, err := res.Augmented()
	if err != nil {
		return err
	}
	if err := flatfile.SaveIndexed(fsys, j.out, out); err != nil {
		return fmt.Errorf("write %s: %w", j.out, err)
	}
	logger.Info("wrote residuals",
		zap.String("path", j.out),
		zap.Int("records", out.Len()),
		zap.Int("frequencies", res.Columns.Len()),
		zap.Int("undefined", res.UndefinedCells()),
		zap.Duration("elapsed", clock.Since(start)))

	if err := writeSideOutputs(fsys, logger, j, res); err != nil {
		return err
	}

	if j.db != "" {
		if err := archiveRun(ctx, logger, j, res); err != nil {
			return err
		}
	}
	return nil
}

func writeSideOutputs(fsys fsutil.FileSystem, logger *zap.Logger, j job, res *residual.Result) error {
	if j.summary == "" && j.plot == "" && j.html == "" {
		return nil
	}
	summaries := res.Summarize()

	if j.summary != "" {
		err := fsutil.WriteFile(fsys, j.summary, func(w io.Writer) error {
			return residual.NewSummaryWriter(w).Write(summaries)
		})
		if err != nil {
			return fmt.Errorf("write summary %s: %w", j.summary, err)
		}
		logger.Info("wrote summary", zap.String("path", j.summary))
	}

	title := fmt.Sprintf("FAS residuals: %s", j.in)
	if j.plot != "" {
		if err := report.SavePlot(fsys, j.plot, title, summaries); err != nil {
			if !errors.Is(err, report.ErrNoData) {
				return fmt.Errorf("write plot %s: %w", j.plot, err)
			}
			logger.Warn("skipping plot: no defined residuals", zap.String("path", j.plot))
		} else {
			logger.Info("wrote plot", zap.String("path", j.plot))
		}
	}
	if j.html != "" {
		if err := report.SaveHTML(fsys, j.html, title, summaries); err != nil {
			if !errors.Is(err, report.ErrNoData) {
				return fmt.Errorf("write html %s: %w", j.html, err)
			}
			logger.Warn("skipping html chart: no defined residuals", zap.String("path", j.html))
		} else {
			logger.Info("wrote html chart", zap.String("path", j.html))
		}
	}
	return nil
}

func archiveRun(ctx context.Context, logger *zap.Logger, j job, res *residual.Result) error {
	db, err := store.Open(j.db)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", j.db, err)
	}
	defer db.Close()
	db.SetClock(clock)

	run := &store.Run{
		Input:            j.in,
		Output:           j.out,
		Model:            modelName,
		Region:           j.opts.Region,
		VsSource:         j.opts.VsSource,
		MechanismFromSOF: j.opts.MechanismFromSOF,
		MinAmp:           j.opts.MinAmp,
		Version:          version.Version,
	}
	if err := db.RecordRun(ctx, run, res.Columns.Freqs, res.Matrix); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	logger.Info("archived run", zap.String("run_id", run.ID), zap.String("db", j.db))
	return nil
}
