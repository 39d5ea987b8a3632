package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/samvad-hq/collection-probe/pkg/httpclient"
)

const (
	defaultTimeout = 15 * time.Second
	redactedValue  = "<redacted>"
)

// Logger defines the logging surface the fetcher relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}

// Options tunes a Fetcher.
type Options struct {
	// IgnoreBadStatus keeps non-200 responses from being returned as errors.
	// The status code is recorded on the outcome either way.
	IgnoreBadStatus bool
	// Headers are sent with every request.
	Headers map[string]string
	// RedactParams names query parameters whose values are masked in errors
	// and logs.
	RedactParams []string
	Logger       Logger
}

// Outcome is the result of one request/response cycle.
type Outcome struct {
	URL        string
	StatusCode int
	Raw        string
	// Data is the decoded JSON value when parsing was requested and succeeded.
	Data     any
	ParseErr error
	Elapsed  time.Duration
}

// Empty reports whether the body or the decoded value carries nothing.
func (o *Outcome) Empty() bool {
	if o == nil || strings.TrimSpace(o.Raw) == "" {
		return true
	}
	switch v := o.Data.(type) {
	case nil:
		return isJSONNull(o.Raw)
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return v == ""
	}
	return false
}

func isJSONNull(raw string) bool {
	return strings.TrimSpace(raw) == "null"
}

// Decode unmarshals the raw body into v.
func (o *Outcome) Decode(v any) error {
	if o == nil {
		return errors.New("nil outcome")
	}
	if err := json.Unmarshal([]byte(o.Raw), v); err != nil {
		return &ParseError{Message: err.Error()}
	}
	return nil
}

// Fetcher performs GET requests against JSON collection endpoints.
// It holds no per-request state and is safe for concurrent use.
type Fetcher struct {
	client httpclient.Client
	opts   Options
	log    Logger
}

// New builds a Fetcher on top of client. A nil client gets a resty client with
// a 15 second timeout.
func New(client httpclient.Client, opts Options) *Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout)
	}
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}
	return &Fetcher{client: client, opts: opts, log: log}
}

// Fetch is shorthand for New(nil, Options{}).Fetch.
func Fetch(ctx context.Context, baseURL string, params Query, parse bool) (*Outcome, error) {
	return New(nil, Options{}).Fetch(ctx, baseURL, params, parse)
}

// WithHeaders returns a copy of f that also sends headers.
func (f *Fetcher) WithHeaders(headers map[string]string) *Fetcher {
	cp := *f
	merged := make(map[string]string, len(f.opts.Headers)+len(headers))
	maps.Copy(merged, f.opts.Headers)
	maps.Copy(merged, headers)
	cp.opts.Headers = merged
	return &cp
}

// Fetch builds the request URL from baseURL and params, performs one GET and
// returns the accumulated body. When parse is true the body is decoded as JSON.
//
// A transport failure returns (nil, *TransportError). A non-200 status returns
// the outcome together with *StatusError unless IgnoreBadStatus is set. A parse
// failure returns the outcome with *ParseError; if the status was also bad the
// status error wins and the parse failure is only on Outcome.ParseErr.
func (f *Fetcher) Fetch(ctx context.Context, baseURL string, params Query, parse bool) (*Outcome, error) {
	target, err := BuildURL(baseURL, params)
	if err != nil {
		return nil, err
	}
	redact := f.redactor(params)

	start := time.Now()
	resp, err := f.client.Get(ctx, target, f.opts.Headers)
	if err != nil {
		return nil, &TransportError{Message: redact(err.Error()), Err: err}
	}

	out := &Outcome{
		URL:        target,
		StatusCode: resp.StatusCode(),
		Raw:        strings.ToValidUTF8(string(resp.Body()), "\uFFFD"),
		Elapsed:    time.Since(start),
	}

	if parse {
		data, perr := decodeJSON(out.Raw)
		if perr != nil {
			out.ParseErr = perr
		} else {
			out.Data = data
		}
	}

	f.log.DebugObj("collection fetched", "fetch_result", map[string]any{
		"url":         redact(target),
		"status_code": out.StatusCode,
		"body_bytes":  len(out.Raw),
		"elapsed_ms":  out.Elapsed.Milliseconds(),
		"parsed":      parse && out.ParseErr == nil,
	})

	if out.StatusCode != http.StatusOK && !f.opts.IgnoreBadStatus {
		return out, &StatusError{Code: out.StatusCode}
	}
	if out.ParseErr != nil {
		return out, out.ParseErr
	}
	return out, nil
}

func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Message: "empty body"}
		}
		return nil, &ParseError{Message: err.Error()}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Message: "unexpected data after top-level value"}
	}
	return v, nil
}

// redactor masks configured parameter values in free text.
func (f *Fetcher) redactor(params Query) func(string) string {
	if len(f.opts.RedactParams) == 0 {
		return func(s string) string { return s }
	}
	var pairs []string
	for _, p := range params {
		for _, name := range f.opts.RedactParams {
			if p.Name != name || p.Value == "" {
				continue
			}
			pairs = append(pairs, url.QueryEscape(p.Value), redactedValue)
			if esc := url.QueryEscape(p.Value); esc != p.Value {
				pairs = append(pairs, p.Value, redactedValue)
			}
		}
	}
	if len(pairs) == 0 {
		return func(s string) string { return s }
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace
}

// RedactURL masks the non-empty values of the named query parameters in raw.
func RedactURL(raw string, names ...string) string {
	u, err := url.Parse(raw)
	if err != nil || len(names) == 0 {
		return raw
	}
	var b strings.Builder
	for i, part := range strings.Split(u.RawQuery, "&") {
		if i > 0 {
			b.WriteByte('&')
		}
		key, value, _ := strings.Cut(part, "=")
		name, err := url.QueryUnescape(key)
		if value != "" && err == nil && slices.Contains(names, name) {
			fmt.Fprintf(&b, "%s=%s", key, redactedValue)
			continue
		}
		b.WriteString(part)
	}
	u.RawQuery = b.String()
	return u.String()
}
