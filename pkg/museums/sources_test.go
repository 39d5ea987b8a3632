package museums

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samvad-hq/collection-probe/pkg/fetcher"
)

const sampleSourcesYAML = `
sources:
  - id: rijksmuseum
    name: Rijksmuseum
    type: rijksmuseum
    base_url: https://www.rijksmuseum.nl/api/nl/collection
    format: json
    api_key_secret: RIJKS_API_KEY
    api_key_param: key
    params:
      - name: ps
        value: 100
      - name: imgOnly
        value: true
      - name: type
        value: ketting
    config:
      accept: application/json
  - id: british-museum
    name: British Museum
    type: british_museum
    base_url: https://www.britishmuseum.org/collection/search
    format: HTML
    params:
      - name: keyword
        value: ring
      - name: page
        value: 1
`

func writeSources(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write sources file: %v", err)
	}
	return file
}

func TestLoadRegistryYAML(t *testing.T) {
	reg, err := LoadRegistry(writeSources(t, "museums.yaml", sampleSourcesYAML))
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(all))
	}
	if all[0].ID != "rijksmuseum" || all[1].ID != "british-museum" {
		t.Fatalf("sources out of file order: %v, %v", all[0].ID, all[1].ID)
	}

	bm, ok := reg.ByID("british-museum")
	if !ok {
		t.Fatalf("expected british-museum to be loaded")
	}
	if bm.Format != FormatHTML || bm.ParseJSON() {
		t.Fatalf("expected html format to be normalised, got %q", bm.Format)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	content := `{"sources":[{"id":"cma","name":"Cleveland","type":"generic_json","base_url":"https://openaccess-api.clevelandart.org/api/artworks","params":[{"name":"limit","value":5}]}]}`
	reg, err := LoadRegistry(writeSources(t, "museums.json", content))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	src, _ := reg.ByID("cma")
	if src.Format != FormatJSON {
		t.Fatalf("expected json default format, got %q", src.Format)
	}
	q := src.Query("")
	if len(q) != 1 || q[0].Value != "5" {
		t.Fatalf("expected numeric value stringified, got %#v", q)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	content := `
sources:
  - id: dup
    name: One
    type: generic_json
    base_url: https://one.example
  - id: dup
    name: Two
    type: generic_json
    base_url: https://two.example
`
	if _, err := LoadRegistry(writeSources(t, "museums.yaml", content)); err == nil {
		t.Fatalf("expected duplicate source error, got nil")
	}
}

func TestLoadRegistryRejectsInvalidSources(t *testing.T) {
	cases := map[string]string{
		"relative url": `
sources:
  - id: a
    name: A
    type: generic_json
    base_url: /api
`,
		"key secret without param": `
sources:
  - id: a
    name: A
    type: generic_json
    base_url: https://a.example
    api_key_secret: A_KEY
`,
		"bad format": `
sources:
  - id: a
    name: A
    type: generic_json
    base_url: https://a.example
    format: xml
`,
	}
	for name, content := range cases {
		if _, err := LoadRegistry(writeSources(t, "museums.yaml", content)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestSourceQueryPutsKeyFirst(t *testing.T) {
	reg, err := ParseRegistry([]byte(sampleSourcesYAML), ".yaml")
	if err != nil {
		t.Fatalf("ParseRegistry: %v", err)
	}
	src, _ := reg.ByID("rijksmuseum")

	q := src.Query("abc")
	want := fetcher.Query{
		{Name: "key", Value: "abc"},
		{Name: "ps", Value: "100"},
		{Name: "imgOnly", Value: "true"},
		{Name: "type", Value: "ketting"},
	}
	if len(q) != len(want) {
		t.Fatalf("expected %d params, got %#v", len(want), q)
	}
	for i := range want {
		if q[i] != want[i] {
			t.Fatalf("param %d: got %#v want %#v", i, q[i], want[i])
		}
	}
	if names := src.SecretParams(); len(names) != 1 || names[0] != "key" {
		t.Fatalf("unexpected secret params %v", names)
	}
}

func TestRegistrySelect(t *testing.T) {
	reg, err := ParseRegistry([]byte(sampleSourcesYAML), "")
	if err != nil {
		t.Fatalf("ParseRegistry: %v", err)
	}
	picked, err := reg.Select([]string{"british-museum"})
	if err != nil || len(picked) != 1 || picked[0].ID != "british-museum" {
		t.Fatalf("unexpected selection %v err=%v", picked, err)
	}
	if _, err := reg.Select([]string{"louvre"}); err == nil {
		t.Fatalf("expected unknown source error")
	}
}

func TestHeadersFromConfig(t *testing.T) {
	headers := Headers(Source{Config: map[string]any{
		ConfigUserAgentKey: " probe/1.0 ",
		ConfigAcceptKey:    "application/json",
		"unrelated":        "x",
	}})
	if len(headers) != 2 || headers["User-Agent"] != "probe/1.0" || headers["Accept"] != "application/json" {
		t.Fatalf("unexpected headers %v", headers)
	}
}
