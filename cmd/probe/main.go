package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/collection-probe/internal/app"
	"github.com/samvad-hq/collection-probe/internal/config"
	"github.com/samvad-hq/collection-probe/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		once    bool
		sources []string
	)

	cmd := &cobra.Command{
		Use:           "probe",
		Short:         "Probe museum collection APIs and publish availability reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyFlags(cfg, once, sources)
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single probe pass and exit")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "probe only this source id (repeatable)")
	return cmd
}

// applyFlags lets command line flags override file and env configuration.
func applyFlags(cfg *config.Config, once bool, sources []string) {
	if once {
		cfg.ProbeInterval = 0
		cfg.ProbeSchedule = ""
	}
	if len(sources) > 0 {
		cfg.SourceIDs = sources
	}
}

func run(parent context.Context, cfg *config.Config) error {
	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("probe starting", "config", cfg)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prober, err := app.NewProber(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize prober", "error", err.Error())
		return err
	}

	if err := prober.Run(ctx); err != nil {
		return fmt.Errorf("probe run: %w", err)
	}
	return nil
}
