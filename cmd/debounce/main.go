// Command debounce reads lines from standard input and writes them back in
// batches, one JSON array per line. Lines that arrive less than --delay apart
// end up in the same batch.
//
//	tail -f app.log | debounce --delay 200ms
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MasterOfBinary/debounce/batch"
	"github.com/MasterOfBinary/debounce/logging"
	"github.com/MasterOfBinary/debounce/metrics"
	"github.com/MasterOfBinary/debounce/source"
)

func main() {
	if err := NewRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd returns the debounce command reading from in and writing
// batches to out.
func NewRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var f Flags

	cmd := &cobra.Command{
		Use:          "debounce",
		Short:        "Group lines from stdin into time-based batches",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(&f, cmd.Flags())
			if err != nil {
				return err
			}

			zcfg := zap.NewProductionConfig()
			zcfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
			lggr, err := zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = lggr.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, in, out, lggr)
		},
	}
	f.register(cmd.Flags())

	return cmd
}

func run(ctx context.Context, cfg Config, in io.Reader, out io.Writer, lggr *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stats batch.StatsCollector = batch.NewBasicStatsCollector()
	reg := prometheus.NewRegistry()
	if cfg.MetricsAddr != "" {
		stats = metrics.NewPrometheus(reg, "")
	}

	values := batch.ConfigValues{Delay: cfg.Delay}
	d, err := newDebouncer(ctx, cfg.Flatten, in, batch.NewConstantConfig(&values))
	if err != nil {
		return err
	}
	d.WithLogger(logging.Zap(lggr.Named("debouncer"))).WithStats(stats)

	lggr.Info("debouncing stdin",
		zap.Stringer("id", d.ID()),
		zap.Duration("delay", cfg.Delay),
		zap.Bool("flatten", cfg.Flatten))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Serving metrics stops once the input is consumed.
		defer cancel()
		return consume(gctx, d, out)
	})
	if cfg.MetricsAddr != "" {
		serveMetrics(gctx, g, cfg.MetricsAddr, reg, lggr)
	}

	err = g.Wait()
	_ = d.Close()

	s := stats.GetStats()
	lggr.Info("done",
		zap.Uint64("items", s.ItemsPulled),
		zap.Uint64("batches", s.BatchesDelivered),
		zap.Float64("avg_batch_size", s.AverageBatchSize()),
		zap.Duration("avg_batch_age", s.AverageBatchAge()))

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newDebouncer(ctx context.Context, flatten bool, in io.Reader, config batch.Config) (*batch.Debouncer[string], error) {
	if flatten {
		return batch.NewFlatten[string](ctx, source.NewSeq2(words(in)), config)
	}
	return batch.New[string](ctx, source.NewSeq2(lines(in)), config)
}

// consume writes every batch to out until the input is exhausted.
func consume(ctx context.Context, d *batch.Debouncer[string], out io.Writer) error {
	enc := json.NewEncoder(out)
	for {
		items, err := d.Next(ctx)
		if errors.Is(err, batch.ErrDone) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := enc.Encode(items); err != nil {
			return errors.Wrap(err, "write batch")
		}
	}
}

func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, reg *prometheus.Registry, lggr *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		lggr.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "metrics server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// lines yields the lines of r.
func lines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if !yield(sc.Text(), nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield("", errors.Wrap(err, "read input"))
		}
	}
}

// words yields the whitespace separated words of each line of r. A blank
// line yields an empty slice.
func words(r io.Reader) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		for line, err := range lines(r) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(strings.Fields(line), nil) {
				return
			}
		}
	}
}
