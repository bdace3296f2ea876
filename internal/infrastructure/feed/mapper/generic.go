package mapper

import (
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/feedsync"
)

// GenericMapper maps RSS-style listings with items at rss/channel/item.
// Each field accepts a primary element name and one alternate.
type GenericMapper struct {
	opts options
}

// NewGenericMapper creates a GenericMapper
func NewGenericMapper(opts ...Option) *GenericMapper {
	return &GenericMapper{opts: buildOptions(opts)}
}

// Format returns feedsync.FormatRSS
func (m *GenericMapper) Format() feedsync.Format {
	return feedsync.FormatRSS
}

// Items returns every item element of the channel
func (m *GenericMapper) Items(doc *feedsync.Node) []*feedsync.Node {
	return doc.Path("rss", "channel", "item")
}

// Map converts one item element
func (m *GenericMapper) Map(item *feedsync.Node, source feedsync.FeedSource) (result feedsync.MapResult) {
	defer func() {
		if r := recover(); r != nil {
			result = feedsync.Failed(fmt.Errorf("panic while mapping: %v", r))
		}
	}()

	name := NormalizeText(item.FirstValue("title", "name"))
	if name == "" {
		return feedsync.Skipped("missing title")
	}
	externalID := strings.TrimSpace(item.FirstValue("id", "guid"))
	if externalID == "" {
		return feedsync.Failed(fmt.Errorf("%w: missing id and guid", feedsync.ErrInvalidProduct))
	}

	image := item.FirstValue("image", "thumbnail")
	images := []string{}
	if image != "" {
		images = append(images, image)
	}

	product := &feedsync.CanonicalProduct{
		ExternalID:   externalID,
		Name:         name,
		Description:  StripHTML(item.FirstValue("description", "summary")),
		Price:        ExtractPrice(item.FirstValue("price", "cost")),
		Category:     source.Name,
		Brand:        firstNonEmpty(NormalizeText(item.Value("brand")), source.Name),
		PrimaryImage: image,
		Images:       images,
		TotalStock:   ExtractStock(item.FirstValue("stock", "availability")),
		SourceName:   source.Name,
		LastUpdated:  m.opts.now(),
		ProductURL:   item.Value("link"),
		SalesUnit:    DefaultSalesUnit,
		Rating:       ExtractRating(item.Value("rating")),
		ReviewCount:  ExtractStock(item.Value("reviewCount")),
	}

	if err := product.Validate(); err != nil {
		return feedsync.Failed(err)
	}
	return feedsync.Mapped(product)
}
