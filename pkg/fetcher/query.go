package fetcher

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Param is a single query parameter.
type Param struct {
	Name  string
	Value string
}

// Query is an ordered list of query parameters. Names may repeat.
type Query []Param

// Add appends name=value, stringifying value with fmt.Sprint.
func (q Query) Add(name string, value any) Query {
	var s string
	switch v := value.(type) {
	case nil:
		s = ""
	case string:
		s = v
	default:
		s = fmt.Sprint(v)
	}
	return append(q, Param{Name: name, Value: s})
}

// Names returns parameter names in order.
func (q Query) Names() []string {
	out := make([]string, 0, len(q))
	for _, p := range q {
		out = append(out, p.Name)
	}
	return out
}

// BuildURL appends params to baseURL in order, percent-encoding names and values.
// A query already present on baseURL is kept in front. The result is parsed back
// and every configured parameter must be present with its value.
func BuildURL(baseURL string, params Query) (string, error) {
	raw := strings.TrimSpace(baseURL)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute url", ErrInvalidURL, baseURL)
	}

	expected, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", fmt.Errorf("%w: base query: %v", ErrInvalidURL, err)
	}

	var b strings.Builder
	b.WriteString(u.RawQuery)
	for i, p := range params {
		if strings.TrimSpace(p.Name) == "" {
			return "", fmt.Errorf("query parameter %d has an empty name", i)
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
		expected[p.Name] = append(expected[p.Name], p.Value)
	}
	u.RawQuery = b.String()
	out := u.String()

	if err := verifyQuery(out, expected); err != nil {
		return "", err
	}
	return out, nil
}

func verifyQuery(built string, expected url.Values) error {
	parsed, err := url.Parse(built)
	if err != nil {
		return fmt.Errorf("reparse built url: %w", err)
	}
	got, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return fmt.Errorf("reparse built query: %w", err)
	}
	for name, want := range expected {
		if !slices.Equal(got[name], want) {
			return fmt.Errorf("query parameter %q lost in built url (want %q, got %q)", name, want, got[name])
		}
	}
	if len(got) != len(expected) {
		return fmt.Errorf("built url carries %d parameter names, want %d", len(got), len(expected))
	}
	return nil
}
