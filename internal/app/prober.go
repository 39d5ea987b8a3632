package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/samvad-hq/collection-probe/internal/config"
	"github.com/samvad-hq/collection-probe/internal/logger"
	"github.com/samvad-hq/collection-probe/internal/probe"
	"github.com/samvad-hq/collection-probe/pkg/fetcher"
	"github.com/samvad-hq/collection-probe/pkg/httpclient"
	"github.com/samvad-hq/collection-probe/pkg/museums"
	"github.com/samvad-hq/collection-probe/pkg/publishers"
)

// Prober represents the collection probe runtime. It loads sources and
// publishers from config files and drives probe passes, once or on an interval.
type Prober struct {
	cfg      *config.Config
	sources  []museums.Source
	fanout   *publishers.Fanout
	service  *probe.Service
	interval time.Duration
	schedule string
	log      logger.Logger
}

// NewProber builds a prober runtime from config files.
func NewProber(ctx context.Context, cfg *config.Config, log logger.Logger) (*Prober, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.ProbeSchedule != "" {
		if _, err := cron.ParseStandard(cfg.ProbeSchedule); err != nil {
			return nil, fmt.Errorf("invalid probe_schedule %q: %w", cfg.ProbeSchedule, err)
		}
	}

	sourceReg, err := museums.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	sources, err := sourceReg.Select(cfg.SourceIDs)
	if err != nil {
		return nil, fmt.Errorf("select sources: %w", err)
	}
	sourceIDs := make([]string, 0, len(sources))
	for _, s := range sources {
		sourceIDs = append(sourceIDs, s.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(sourceIDs),
		"ids":   sourceIDs,
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	clientOpts := []httpclient.Option{}
	if logger.S != nil {
		clientOpts = append(clientOpts, httpclient.WithLogger(logger.S))
	}
	f := fetcher.New(httpclient.NewRestyClient(cfg.RequestTimeout, clientOpts...), fetcher.Options{
		RedactParams: secretParams(sources),
		Logger:       log,
	})

	svc := probe.NewService(f, probe.Options{
		Publisher:      fanout,
		Secrets:        cfg.Secret,
		Logger:         log,
		MaxConcurrency: cfg.MaxConcurrency,
	})

	return &Prober{
		cfg:      cfg,
		sources:  sources,
		fanout:   fanout,
		service:  svc,
		interval: cfg.ProbeInterval,
		schedule: cfg.ProbeSchedule,
		log:      log,
	}, nil
}

// buildFanout loads enabled publishers. An empty publishers_file or an empty
// list leaves the prober in log-only mode.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.InfoObj("no publishers file configured; reports are logged only", "publishers_file", "")
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

func secretParams(sources []museums.Source) []string {
	var names []string
	for _, s := range sources {
		names = append(names, s.SecretParams()...)
	}
	return names
}

// Run performs a probe pass and, when a schedule or an interval is configured,
// keeps probing until the context is cancelled. A single pass returns the
// joined probe errors; the loop only logs them.
func (p *Prober) Run(ctx context.Context) error {
	if p == nil || p.service == nil {
		return fmt.Errorf("prober is not initialized")
	}
	defer p.closePublishers()

	if len(p.sources) == 0 {
		return fmt.Errorf("no sources configured in %s", p.cfg.SourcesFile)
	}

	p.log.InfoObj("probe loop starting", "prober_state", map[string]any{
		"sources_count":    len(p.sources),
		"publishers_count": p.fanout.Size(),
		"probe_interval":   p.interval.String(),
		"probe_schedule":   p.schedule,
	})

	err := p.runOnce(ctx)
	if p.interval <= 0 && p.schedule == "" {
		return err
	}
	if err != nil {
		p.log.ErrorObj("initial probe failed", "error", err.Error())
	}
	if p.schedule != "" {
		return p.runScheduled(ctx)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoObj("probe loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := p.runOnce(ctx); err != nil {
				p.log.ErrorObj("scheduled probe failed", "error", err.Error())
			}
		}
	}
}

// runScheduled probes on the cron schedule. A pass still running when the
// next one is due is skipped.
func (p *Prober) runScheduled(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(p.schedule, func() {
		if err := p.runOnce(ctx); err != nil {
			p.log.ErrorObj("scheduled probe failed", "error", err.Error())
		}
	}); err != nil {
		return fmt.Errorf("schedule probes: %w", err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	p.log.InfoObj("probe loop exiting", "reason", ctx.Err().Error())
	return nil
}

// runOnce performs a single probe pass across all sources.
func (p *Prober) runOnce(ctx context.Context) error {
	start := time.Now()
	reports, err := p.service.Run(ctx, p.sources)

	failed := 0
	for _, r := range reports {
		if !r.OK() {
			failed++
		}
	}
	p.log.InfoObj("probe pass completed", "probe_meta", map[string]any{
		"sources_count": len(p.sources),
		"probed":        len(reports),
		"failed":        failed,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	if ctx.Err() != nil {
		// shutdown interrupted the pass
		return nil
	}
	return err
}

func (p *Prober) closePublishers() {
	if err := p.fanout.Close(); err != nil {
		p.log.ErrorObj("publisher close failed", "error", err.Error())
	}
}
