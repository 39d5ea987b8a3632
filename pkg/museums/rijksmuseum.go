package museums

import (
	"fmt"

	"github.com/samvad-hq/collection-probe/internal/domain"
	"github.com/samvad-hq/collection-probe/pkg/fetcher"
)

type rijksImage struct {
	GUID              string  `json:"guid"`
	OffsetPercentageX float64 `json:"offsetPercentageX"`
	OffsetPercentageY float64 `json:"offsetPercentageY"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	URL               string  `json:"url"`
}

type rijksObject struct {
	Links struct {
		Self string `json:"self"`
		Web  string `json:"web"`
	} `json:"links"`
	ID                    string      `json:"id"`
	ObjectNumber          string      `json:"objectNumber"`
	Title                 string      `json:"title"`
	HasImage              bool        `json:"hasImage"`
	PrincipalOrFirstMaker string      `json:"principalOrFirstMaker"`
	LongTitle             string      `json:"longTitle"`
	ShowImage             bool        `json:"showImage"`
	PermitDownload        bool        `json:"permitDownload"`
	WebImage              *rijksImage `json:"webImage"`
	HeaderImage           *rijksImage `json:"headerImage"`
	ProductionPlaces      []string    `json:"productionPlaces"`
}

type rijksResponse struct {
	ElapsedMilliseconds int `json:"elapsedMilliseconds"`
	Count               int `json:"count"`
	CountFacets         struct {
		HasImage  int `json:"hasimage"`
		OnDisplay int `json:"ondisplay"`
	} `json:"countFacets"`
	ArtObjects []rijksObject `json:"artObjects"`
}

// rijksmuseumInspector reads the Rijksmuseum collection API search response.
type rijksmuseumInspector struct{}

func NewRijksmuseumInspector() Inspector { return rijksmuseumInspector{} }

func (rijksmuseumInspector) ID() string { return TypeRijksmuseum }

func (rijksmuseumInspector) Inspect(src Source, out *fetcher.Outcome) (domain.CollectionSummary, error) {
	var resp rijksResponse
	if err := out.Decode(&resp); err != nil {
		return domain.CollectionSummary{}, fmt.Errorf("decode rijksmuseum response: %w", err)
	}
	if len(resp.ArtObjects) == 0 {
		return domain.CollectionSummary{}, fmt.Errorf("%s returned no art objects (count %d)", src.ID, resp.Count)
	}

	// sample the second hit when there is one
	sample := resp.ArtObjects[0]
	if len(resp.ArtObjects) > 1 {
		sample = resp.ArtObjects[1]
	}

	return domain.CollectionSummary{
		Title: src.Name,
		Description: fmt.Sprintf("%d with image, %d on display, searched in %dms",
			resp.CountFacets.HasImage, resp.CountFacets.OnDisplay, resp.ElapsedMilliseconds),
		TotalCount: resp.Count,
		ItemCount:  len(resp.ArtObjects),
		Sample:     rijksSample(sample),
	}, nil
}

func rijksSample(o rijksObject) *domain.ArtObject {
	art := &domain.ArtObject{
		ID:           o.ID,
		ObjectNumber: o.ObjectNumber,
		Title:        o.Title,
		Maker:        o.PrincipalOrFirstMaker,
		Places:       o.ProductionPlaces,
	}
	if o.WebImage != nil {
		art.ImageURL = o.WebImage.URL
	}
	return art
}
