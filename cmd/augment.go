package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/augment-cli/internal/augment"
	"github.com/sells-group/augment-cli/internal/config"
	"github.com/sells-group/augment-cli/internal/membership"
)

var (
	augmentInput     string
	augmentOutput    string
	augmentInterval  float64
	augmentTraceHTTP bool
)

var augmentCmd = &cobra.Command{
	Use:   "augment",
	Short: "Add geocoded address and council district columns to a membership list",
	Long: `Reads a membership list (CSV, or XLSX by extension), geocodes each row's
address1/address2/city/state/zip/country, looks up the Austin city council
district, and writes the list with geocoded_address and city_council_district
appended. Rows that already have a city_council_district column are copied
unchanged.

The remote services are queried one row at a time with a pause after every
row. The output file is written only once every row is done.

Examples:
  augment-cli augment -i members.csv -o members_districts.csv -v
  augment-cli augment -i members.xlsx -o out.xlsx -n 5`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		interval := cfg.Augment.Interval()
		if cmd.Flags().Changed("interval") {
			if augmentInterval < 0 {
				return eris.Errorf("augment: --interval must not be negative, got %v", augmentInterval)
			}
			interval = time.Duration(augmentInterval * float64(time.Second))
		}
		if augmentTraceHTTP {
			cfg.Austin.TraceHTTP = true
		}

		_, err := augmentFile(ctx, cfg, augmentInput, augmentOutput, interval)
		return err
	},
}

func init() {
	f := augmentCmd.Flags()
	f.StringVarP(&augmentInput, "input", "i", "", "membership list to read (.csv or .xlsx)")
	f.StringVarP(&augmentOutput, "output", "o", "", "augmented list to write (.csv or .xlsx)")
	f.Float64VarP(&augmentInterval, "interval", "n", 30, "seconds to pause after each row")
	f.BoolVar(&augmentTraceHTTP, "trace-http", false, "dump HTTP exchanges at debug level")
	_ = augmentCmd.MarkFlagRequired("input")
	_ = augmentCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(augmentCmd)
}

// augmentFile reads in, augments every row and writes out.
func augmentFile(ctx context.Context, c *config.Config, in, out string, interval time.Duration) (augment.Summary, error) {
	log := zap.L().With(zap.String("run_id", uuid.NewString()))

	tbl, err := membership.ReadFile(in)
	if err != nil {
		return augment.Summary{}, eris.Wrap(err, "augment: read input")
	}
	log.Info("read membership list",
		zap.String("path", in),
		zap.Int("rows", len(tbl.Rows)),
		zap.Strings("columns", tbl.Columns),
	)

	client, err := newAustinClient(ctx, c.Austin, log)
	if err != nil {
		return augment.Summary{}, eris.Wrap(err, "augment: connect")
	}

	opts := augment.Options{Interval: interval, Logger: log}
	bar := newProgressBar(len(tbl.Rows), log)
	if bar != nil {
		opts.Progress = func(done, _ int) { _ = bar.Set(done) }
	}

	summary, err := augment.New(client, opts).Run(ctx, tbl.Rows)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return summary, err
	}

	if err := membership.WriteFile(out, tbl); err != nil {
		return summary, eris.Wrap(err, "augment: write output")
	}

	log.Info("augment complete",
		zap.String("output", out),
		zap.Int("rows", summary.Rows),
		zap.Int("skipped", summary.Skipped),
		zap.Int("geocoded", summary.Geocoded),
		zap.Int("not_found", summary.NotFound),
		zap.Int("unknown_district", summary.UnknownDistrict),
	)
	return summary, nil
}

// newProgressBar returns nil when stderr is not a terminal or when info logs
// would be written to it between updates.
func newProgressBar(n int, log *zap.Logger) *progressbar.ProgressBar {
	if n == 0 || log.Core().Enabled(zapcore.InfoLevel) || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription("Augmenting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
