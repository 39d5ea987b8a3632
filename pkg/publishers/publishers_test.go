package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: HTTP
    http:
      url: " https://example.com/2 "
      method: put
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
	cfg := enabled[0]
	if cfg.Type != TypeHTTP || cfg.HTTP.URL != "https://example.com/2" || cfg.HTTP.Method != "PUT" {
		t.Fatalf("config not sanitized: %#v", cfg.HTTP)
	}
	if cfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("expected default timeout, got %d", cfg.HTTP.TimeoutSeconds)
	}
	if _, ok := reg.ByID("http1"); !ok {
		t.Fatalf("disabled publishers should still be addressable by id")
	}
}

func TestLoadRegistryAWSInlineSettings(t *testing.T) {
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: queue
    type: sqs
    sqs:
      uri: http://localhost:4566/000000000000/probe
      region: eu-west-1
      endpoint: http://localhost:4566
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:eu-west-1:000000000000:probe
      region: eu-west-1
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	q, ok := reg.ByID("queue")
	if !ok || q.SQS.Region != "eu-west-1" || q.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("sqs settings not decoded: %#v", q.SQS)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 publishers, got %d", len(reg.All()))
	}
}

func TestLoadRegistryJSONAndEmpty(t *testing.T) {
	path := writeFile(t, "publishers.json", `{"publishers":[]}`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Enabled()) != 0 {
		t.Fatalf("expected no publishers")
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: hook
    type: http
    http: {url: https://example.com}
  - id: hook
    type: http
    http: {url: https://example.com/2}
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing id":         {Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://x"}},
		"missing type":       {ID: "x"},
		"missing http":       {ID: "h1", Type: TypeHTTP},
		"sqs without region": {ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		"sns without topic":  {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{AWSSettings: AWSSettings{Region: "eu-west-1"}}},
		"pubsub no topic":    {ID: "p", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "proj"}},
	}
	for name, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
