package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/collection-probe/internal/domain"
	"github.com/samvad-hq/collection-probe/internal/logger"
	"github.com/samvad-hq/collection-probe/pkg/fetcher"
	"github.com/samvad-hq/collection-probe/pkg/museums"
	"github.com/samvad-hq/collection-probe/pkg/publishers"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// ErrEmptyPayload marks a response that decoded fine but carried nothing.
var ErrEmptyPayload = errors.New("empty collection payload")

// Service probes collection sources and publishes one report per source.
type Service struct {
	fetcher     *fetcher.Fetcher
	inspectors  museums.InspectorRegistry
	publisher   EventPublisher
	secrets     SecretLookup
	log         logger.Logger
	concurrency int
	now         func() time.Time
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Inspectors     museums.InspectorRegistry
	Publisher      EventPublisher
	Secrets        SecretLookup
	Logger         logger.Logger
	MaxConcurrency int
}

// NewService wires a probe service around a shared fetcher.
func NewService(f *fetcher.Fetcher, opts Options) *Service {
	if f == nil {
		f = fetcher.New(nil, fetcher.Options{})
	}
	if opts.Inspectors == nil {
		opts.Inspectors = museums.DefaultInspectorRegistry()
	}
	if opts.Secrets == nil {
		opts.Secrets = func(string) string { return "" }
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultConcurrency
	}
	return &Service{
		fetcher:     f,
		inspectors:  opts.Inspectors,
		publisher:   opts.Publisher,
		secrets:     opts.Secrets,
		log:         opts.Logger,
		concurrency: opts.MaxConcurrency,
		now:         time.Now,
	}
}

// Run probes every source once and returns the reports in source order.
// Sources not yet started when ctx is cancelled are skipped. Per-source
// failures are joined into the returned error; reports are returned either way.
func (s *Service) Run(ctx context.Context, sources []museums.Source) ([]domain.Report, error) {
	if s == nil || s.fetcher == nil {
		return nil, fmt.Errorf("probe service is not initialized")
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured for probing")
	}

	reports := make([]*domain.Report, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, src := range sources {
		if ctx.Err() != nil {
			break
		}
		i, src := i, src
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			report, err := s.probeSource(ctx, src)
			reports[i] = &report
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, errors.Join(errs...)
}

// probeSource fetches, inspects and publishes the report for one source.
func (s *Service) probeSource(ctx context.Context, src museums.Source) (domain.Report, error) {
	apiKey := ""
	if src.APIKeySecret != "" {
		apiKey = s.secrets(src.APIKeySecret)
		if apiKey == "" {
			s.log.WarnObj("api key secret is empty", "source_secret", map[string]any{
				"source_id": src.ID,
				"secret":    src.APIKeySecret,
			})
		}
	}
	params := src.Query(apiKey)

	report := domain.Report{CheckedAt: s.now().UTC()}
	out, err := s.fetcher.WithHeaders(museums.Headers(src)).Fetch(ctx, src.BaseURL, params, src.ParseJSON())
	if out != nil {
		report.URL = out.URL
		report.StatusCode = out.StatusCode
		report.BodyBytes = len(out.Raw)
		report.ElapsedMs = out.Elapsed.Milliseconds()
	} else if u, uerr := fetcher.BuildURL(src.BaseURL, params); uerr == nil {
		report.URL = u
	} else {
		report.URL = src.BaseURL
	}
	report.URL = fetcher.RedactURL(report.URL, src.SecretParams()...)

	if err == nil && out.Empty() {
		err = ErrEmptyPayload
	}
	if err == nil {
		err = s.inspect(src, out, &report)
	}
	if err != nil {
		report.FailureKind = failureKind(err)
		report.Error = err.Error()
	}

	s.logReport(src, report)

	perr := s.publish(ctx, src, report)
	if err != nil {
		err = fmt.Errorf("probe source %s: %w", src.ID, err)
	}
	return report, errors.Join(err, perr)
}

type inspectError struct{ err error }

func (e *inspectError) Error() string { return "inspect: " + e.err.Error() }
func (e *inspectError) Unwrap() error { return e.err }

func (s *Service) inspect(src museums.Source, out *fetcher.Outcome, report *domain.Report) error {
	in, err := s.inspectors.InspectorFor(src)
	if err != nil {
		return &inspectError{err: err}
	}
	summary, err := in.Inspect(src, out)
	if err != nil {
		return &inspectError{err: err}
	}
	if summary.Title == "" {
		summary.Title = src.Name
	}
	report.Summary = &summary
	return nil
}

func (s *Service) publish(ctx context.Context, src museums.Source, report domain.Report) error {
	if s.publisher == nil {
		return nil
	}
	delivered, err := s.publisher.Publish(ctx, publishers.NewEvent(src.ID, src.Name, report))
	if err != nil {
		s.log.ErrorObj("report publish failed", "publish_error", map[string]any{
			"source_id": src.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return fmt.Errorf("publish report for source %s: %w", src.ID, err)
	}
	return nil
}

func (s *Service) logReport(src museums.Source, r domain.Report) {
	fields := map[string]any{
		"source_id":   src.ID,
		"url":         r.URL,
		"status_code": r.StatusCode,
		"body_bytes":  r.BodyBytes,
		"elapsed_ms":  r.ElapsedMs,
	}
	if !r.OK() {
		fields["failure_kind"] = r.FailureKind
		fields["error"] = r.Error
		s.log.WarnObj("source probe failed", "probe_result", fields)
		return
	}
	if r.Summary != nil {
		fields["item_count"] = r.Summary.ItemCount
		fields["total_count"] = r.Summary.TotalCount
	}
	s.log.InfoObj("source probe completed", "probe_result", fields)
}

// failureKind maps a probe error onto a report failure kind. Invalid URLs
// count as transport failures since no request was made.
func failureKind(err error) string {
	var ie *inspectError
	switch {
	case err == nil:
		return domain.FailureNone
	case errors.As(err, &ie):
		return domain.FailureInspect
	case errors.Is(err, fetcher.ErrTransport), errors.Is(err, fetcher.ErrInvalidURL):
		return domain.FailureTransport
	case errors.Is(err, fetcher.ErrBadStatus):
		return domain.FailureBadStatus
	case errors.Is(err, fetcher.ErrParse):
		return domain.FailureParse
	case errors.Is(err, ErrEmptyPayload):
		return domain.FailureEmptyPayload
	}
	return domain.FailureInspect
}
