package mapper

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/feedsync"
)

const (
	// DefaultCategory is used when an item carries no category
	DefaultCategory = "Genel"
	// DefaultSalesUnit is used when an item carries no sales unit
	DefaultSalesUnit = "ADET"
)

// TicimaxMapper maps the variation-bearing Ticimax product export.
//
// Items live at Root/Urunler/Urun. Price and stock are not item fields; they
// are derived from the UrunSecenek/Secenek variations.
type TicimaxMapper struct {
	opts options
}

// NewTicimaxMapper creates a TicimaxMapper
func NewTicimaxMapper(opts ...Option) *TicimaxMapper {
	return &TicimaxMapper{opts: buildOptions(opts)}
}

// Format returns feedsync.FormatTicimax
func (m *TicimaxMapper) Format() feedsync.Format {
	return feedsync.FormatTicimax
}

// Items returns every Urun element of the document
func (m *TicimaxMapper) Items(doc *feedsync.Node) []*feedsync.Node {
	return doc.Path("Root", "Urunler", "Urun")
}

// Map converts one Urun element
func (m *TicimaxMapper) Map(item *feedsync.Node, source feedsync.FeedSource) (result feedsync.MapResult) {
	defer func() {
		if r := recover(); r != nil {
			result = feedsync.Failed(fmt.Errorf("panic while mapping: %v", r))
		}
	}()

	name := NormalizeText(item.Value("UrunAdi"))
	if name == "" {
		return feedsync.Skipped("missing UrunAdi")
	}
	externalID := strings.TrimSpace(item.Value("UrunKartiID"))
	if externalID == "" {
		return feedsync.Failed(fmt.Errorf("%w: missing UrunKartiID", feedsync.ErrInvalidProduct))
	}

	images := item.Child("Resimler").Values("Resim")
	variations := item.Path("UrunSecenek", "Secenek")
	price, stock := summarizeVariations(variations)

	categoryTree := item.Value("KategoriTree")
	product := &feedsync.CanonicalProduct{
		ExternalID:     externalID,
		Name:           name,
		Description:    StripHTML(item.Child("Aciklama").DeepText()),
		Price:          price,
		Category:       mainCategory(categoryTree, item.Value("Kategori")),
		Brand:          firstNonEmpty(NormalizeText(item.Value("Marka")), source.Name),
		Images:         images,
		TotalStock:     stock,
		VariationCount: len(variations),
		SourceName:     source.Name,
		LastUpdated:    m.opts.now(),
		ProductURL:     item.Value("UrunUrl"),
		SalesUnit:      firstNonEmpty(item.Value("SatisBirimi"), DefaultSalesUnit),
		CategoryTree:   categoryTree,
		Rating:         decimal.Zero,
	}
	if len(images) > 0 {
		product.PrimaryImage = images[0]
	}

	if err := product.Validate(); err != nil {
		return feedsync.Failed(err)
	}
	return feedsync.Mapped(product)
}

// summarizeVariations returns the lowest effective price and the stock total.
// Without variations both are zero.
func summarizeVariations(variations []*feedsync.Node) (decimal.Decimal, int) {
	price := decimal.Zero
	stock := 0
	for i, v := range variations {
		effective := EffectivePrice(ExtractPrice(v.Value("IndirimliFiyat")), ExtractPrice(v.Value("SatisFiyati")))
		if i == 0 || effective.LessThan(price) {
			price = effective
		}
		stock += ParseQuantity(v.Value("StokAdedi"))
	}
	return price, stock
}

// mainCategory returns the first segment of a "A/B/C" category tree
func mainCategory(tree, fallback string) string {
	raw := tree
	if strings.TrimSpace(raw) == "" {
		raw = fallback
	}
	head, _, _ := strings.Cut(raw, "/")
	return firstNonEmpty(NormalizeText(head), DefaultCategory)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
