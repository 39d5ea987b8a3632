package museums

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/collection-probe/internal/domain"
	"github.com/samvad-hq/collection-probe/pkg/fetcher"
)

const (
	maxHTMLBodyBytes             = 2 << 20 // 2 MiB
	defaultBritishResultSelector = `a[href*="/collection/object/"]`
)

// britishMuseumInspector reads the British Museum collection search page, which
// is served as HTML rather than JSON.
type britishMuseumInspector struct{}

func NewBritishMuseumInspector() Inspector { return britishMuseumInspector{} }

func (britishMuseumInspector) ID() string { return TypeBritishMuseum }

func (britishMuseumInspector) Inspect(src Source, out *fetcher.Outcome) (domain.CollectionSummary, error) {
	body := out.Raw
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return domain.CollectionSummary{}, fmt.Errorf("parse html: %w", err)
	}

	meta := parseMeta(doc)
	summary := domain.CollectionSummary{
		Title:       firstNonEmpty(meta.Title, src.Name),
		Description: meta.Description,
	}

	selector := ConfigString(src, ConfigResultSelectorKey, defaultBritishResultSelector)
	seen := make(map[string]struct{})
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		if summary.Sample == nil {
			summary.Sample = htmlSample(out.URL, href, sel)
		}
	})
	summary.ItemCount = len(seen)

	return summary, nil
}

func htmlSample(pageURL, href string, sel *goquery.Selection) *domain.ArtObject {
	art := &domain.ArtObject{
		ID:    path.Base(strings.TrimRight(href, "/")),
		Title: strings.Join(strings.Fields(sel.Text()), " "),
	}
	if alt, ok := sel.Find("img").First().Attr("alt"); ok && art.Title == "" {
		art.Title = strings.TrimSpace(alt)
	}
	if src, ok := sel.Find("img").First().Attr("src"); ok {
		art.ImageURL = resolveRef(pageURL, strings.TrimSpace(src))
	}
	return art
}

func resolveRef(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

type pageMeta struct {
	Title       string
	Description string
}

func parseMeta(doc *goquery.Document) pageMeta {
	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
