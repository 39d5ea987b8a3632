package museums

import (
	"testing"

	"github.com/samvad-hq/collection-probe/pkg/fetcher"
)

const sampleRijksResponse = `{
  "elapsedMilliseconds": 12,
  "count": 340,
  "countFacets": {"hasimage": 320, "ondisplay": 8},
  "artObjects": [
    {"id": "nl-BK-1", "objectNumber": "BK-1", "title": "Ketting van goud", "principalOrFirstMaker": "anoniem"},
    {"id": "nl-BK-2", "objectNumber": "BK-2", "title": "Ketting met parels", "principalOrFirstMaker": "anoniem",
     "webImage": {"guid": "g", "width": 10, "height": 10, "url": "https://lh3.example/img"},
     "productionPlaces": ["Amsterdam"]}
  ],
  "facets": []
}`

func TestRijksmuseumInspectorSummarises(t *testing.T) {
	src := Source{ID: "rijksmuseum", Name: "Rijksmuseum"}
	summary, err := NewRijksmuseumInspector().Inspect(src, &fetcher.Outcome{Raw: sampleRijksResponse})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if summary.ItemCount != 2 || summary.TotalCount != 340 {
		t.Fatalf("unexpected counts %+v", summary)
	}
	if summary.Sample == nil || summary.Sample.ID != "nl-BK-2" {
		t.Fatalf("expected second art object as sample, got %+v", summary.Sample)
	}
	if summary.Sample.ImageURL != "https://lh3.example/img" || len(summary.Sample.Places) != 1 {
		t.Fatalf("sample fields not mapped: %+v", summary.Sample)
	}
}

func TestRijksmuseumInspectorRejectsEmptyResults(t *testing.T) {
	_, err := NewRijksmuseumInspector().Inspect(Source{ID: "rijksmuseum"}, &fetcher.Outcome{Raw: `{"count":0,"artObjects":[]}`})
	if err == nil {
		t.Fatalf("expected error when no art objects are returned")
	}
}

const sampleBritishMuseumPage = `<!doctype html>
<html><head>
<title>Collection search | British Museum</title>
<meta property="og:description" content="Search the collection">
</head><body>
<ul class="results">
  <li><a href="/collection/object/H_AF-1234"><img src="/media/ring1.jpg" alt="silver ring">Finger-ring</a></li>
  <li><a href="/collection/object/H_AF-1234">duplicate link to the same object</a></li>
  <li><a href="/collection/object/H_1888-0512-1">Ring</a></li>
  <li><a href="/about">About</a></li>
</ul>
</body></html>`

func TestBritishMuseumInspectorCountsResults(t *testing.T) {
	src := Source{ID: "british-museum", Name: "British Museum"}
	out := &fetcher.Outcome{
		URL: "https://www.britishmuseum.org/collection/search?keyword=ring",
		Raw: sampleBritishMuseumPage,
	}
	summary, err := NewBritishMuseumInspector().Inspect(src, out)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if summary.ItemCount != 2 {
		t.Fatalf("expected 2 distinct objects, got %d", summary.ItemCount)
	}
	if summary.Title != "Collection search | British Museum" || summary.Description != "Search the collection" {
		t.Fatalf("unexpected page meta %+v", summary)
	}
	if summary.Sample == nil || summary.Sample.ID != "H_AF-1234" || summary.Sample.Title != "Finger-ring" {
		t.Fatalf("unexpected sample %+v", summary.Sample)
	}
	if summary.Sample.ImageURL != "https://www.britishmuseum.org/media/ring1.jpg" {
		t.Fatalf("image url not resolved: %s", summary.Sample.ImageURL)
	}
}

func TestBritishMuseumInspectorCustomSelector(t *testing.T) {
	src := Source{ID: "bm", Name: "BM", Config: map[string]any{ConfigResultSelectorKey: `a[href="/about"]`}}
	summary, err := NewBritishMuseumInspector().Inspect(src, &fetcher.Outcome{Raw: sampleBritishMuseumPage})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if summary.ItemCount != 1 {
		t.Fatalf("expected custom selector to match one link, got %d", summary.ItemCount)
	}
}

func TestGenericJSONInspector(t *testing.T) {
	in := NewGenericJSONInspector()

	summary, err := in.Inspect(Source{ID: "g", Name: "G"}, &fetcher.Outcome{Raw: `[1,2,3]`, Data: []any{1, 2, 3}})
	if err != nil || summary.ItemCount != 3 {
		t.Fatalf("array: summary=%+v err=%v", summary, err)
	}

	summary, err = in.Inspect(Source{ID: "g"}, &fetcher.Outcome{Raw: `{"a":1,"b":2}`})
	if err != nil || summary.ItemCount != 2 {
		t.Fatalf("object decoded lazily: summary=%+v err=%v", summary, err)
	}

	if _, err := in.Inspect(Source{ID: "g"}, &fetcher.Outcome{Raw: `"text"`}); err == nil {
		t.Fatalf("expected error for scalar payload")
	}
}

func TestInspectorRegistryPrefersID(t *testing.T) {
	special := NewGenericJSONInspector()
	reg := NewInspectorRegistry(map[string]Inspector{TypeRijksmuseum: NewRijksmuseumInspector()}, special)

	in, err := reg.InspectorFor(Source{ID: TypeGenericJSON, Type: TypeRijksmuseum})
	if err != nil || in.ID() != TypeGenericJSON {
		t.Fatalf("expected id match to win, got %v err=%v", in, err)
	}

	in, err = reg.InspectorFor(Source{ID: "rijks-nl", Type: "RijksMuseum"})
	if err != nil || in.ID() != TypeRijksmuseum {
		t.Fatalf("expected type match, got %v err=%v", in, err)
	}

	if _, err := reg.InspectorFor(Source{ID: "x", Type: "unknown"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
