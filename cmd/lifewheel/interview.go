package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-lifewheel/infrastructure/console"
	"github.com/ahrav/go-lifewheel/infrastructure/middleware"
	"github.com/ahrav/go-lifewheel/internal/application"
	"github.com/ahrav/go-lifewheel/internal/domain"
	"github.com/ahrav/go-lifewheel/internal/ports"
)

type interviewOptions struct {
	root        *rootOptions
	outputPath  string
	traceFile   string
	maxAttempts int
}

func (o *interviewOptions) bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.outputPath, "output", "o", "", "write the result as YAML to this file")
	flags.StringVar(&o.traceFile, "trace-file", "", "write OpenTelemetry spans as JSON to this file")
	flags.IntVar(&o.maxAttempts, "max-attempts", application.DefaultMaxAttempts,
		"how often the same answer is asked for before giving up (0 = forever)")
}

func (o *interviewOptions) run(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	cfg, err := o.root.loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, logCloser, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
		_ = logCloser.Close()
	}()

	if o.traceFile != "" {
		f, err := os.Create(o.traceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		defer f.Close()
		shutdown, err := initTracer(f)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if serr := shutdown(shutdownCtx); serr != nil {
				logger.Warn("trace shutdown failed", zap.Error(serr))
			}
		}()
	}

	reg := newMetricsRegistry()
	metrics := middleware.NewPrometheusMetrics(reg)

	var ln net.Listener
	if cfg.Metrics.Addr != "" {
		if ln, err = net.Listen("tcp", cfg.Metrics.Addr); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Metrics.Addr, err)
		}
		logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	}

	resp := buildRespondent(cfg, console.NewRespondent(cmd.InOrStdin(), cmd.OutOrStdout()), metrics, logger)
	runner := application.NewRunner(cfg,
		application.WithLogger(logger),
		application.WithMetrics(metrics),
		application.WithMaxAttempts(o.maxAttempts),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	if ln != nil {
		g.Go(func() error { return serveMetrics(gctx, ln, reg) })
	}

	var result domain.Result
	g.Go(func() error {
		defer cancel()
		var runErr error
		result, runErr = runner.Run(gctx, resp)
		return runErr
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ports.ErrInputClosed) {
			return fmt.Errorf("interview aborted: %w", err)
		}
		return err
	}

	printSummary(cmd.OutOrStdout(), result)
	if o.outputPath != "" {
		if err := writeResult(o.outputPath, result); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n結果已寫入 %s\n", o.outputPath)
	}
	return nil
}

// buildRespondent wraps base with the decorators the configuration asks
// for. The budget is outermost so refused questions are never shown.
func buildRespondent(
	cfg application.Config,
	base ports.Respondent,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
) ports.Respondent {
	resp := base
	if cfg.Presentation.SwapPositions {
		seed := cfg.Presentation.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		logger.Debug("position swapping enabled", zap.Int64("seed", seed))
		resp = middleware.NewPositionSwapRespondent(resp, uint64(seed))
	}
	if cfg.Budget.MaxQuestions > 0 {
		resp = middleware.NewQuestionBudget(
			middleware.BudgetFromConfig(cfg.Budget),
			resp,
			middleware.NewOTelQuestionObserver(metrics, nil),
		)
	}
	return resp
}

func printSummary(w io.Writer, r domain.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "生命之輪排序")
	for i, c := range r.Categories {
		fmt.Fprintf(w, "  %d. %s\n", i+1, c)
	}
	fmt.Fprintln(w, "關鍵字排序")
	for i, k := range r.Keywords {
		category, _ := r.CategoryOf(k)
		fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, k, category)
	}
	fmt.Fprintf(w, "共 %d 題 (%s)\n", r.Questions.Total(), strings.Join([]string{
		fmt.Sprintf("類別 %d", r.Questions.Categories),
		fmt.Sprintf("代表字 %d", r.Questions.Representative),
		fmt.Sprintf("關鍵字 %d", r.Questions.Keywords),
	}, ", "))
}

func writeResult(path string, r domain.Result) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
