package mapper

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/feedsync"
	"github.com/storefront/backend/internal/infrastructure/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

var hugluSource = feedsync.FeedSource{
	Name:        "Huglu Outdoor",
	URL:         "https://feeds.example.com/ticimax",
	TenantScope: feedsync.TenantScopeAll,
	Format:      feedsync.FormatTicimax,
	Priority:    1,
}

func parse(t *testing.T, body string) *feedsync.Node {
	t.Helper()
	doc, err := feed.ParseDocument([]byte(body))
	require.NoError(t, err)
	return doc
}

func ticimaxItems(t *testing.T, urunler string) []*feedsync.Node {
	t.Helper()
	m := NewTicimaxMapper(WithNow(func() time.Time { return fixedNow }))
	return m.Items(parse(t, "<Root><Urunler>"+urunler+"</Urunler></Root>"))
}

func mapTicimax(t *testing.T, urun string) feedsync.MapResult {
	t.Helper()
	items := ticimaxItems(t, urun)
	require.Len(t, items, 1)
	return NewTicimaxMapper(WithNow(func() time.Time { return fixedNow })).Map(items[0], hugluSource)
}

func TestTicimaxMapper_Map(t *testing.T) {
	result := mapTicimax(t, `<Urun>
		<UrunKartiID>5501</UrunKartiID>
		<UrunAdi>  Trekking   Backpack 45L </UrunAdi>
		<Aciklama><![CDATA[<p>Light <b>frame</b>&amp; rain cover</p>]]></Aciklama>
		<KategoriTree>Outdoor/Bags/Backpacks</KategoriTree>
		<Marka>Huglu</Marka>
		<UrunUrl>https://shop.example.com/backpack</UrunUrl>
		<Resimler>
			<Resim>https://cdn.example.com/a.jpg</Resim>
			<Resim>https://cdn.example.com/b.jpg</Resim>
		</Resimler>
		<UrunSecenek>
			<Secenek><StokAdedi>3</StokAdedi><IndirimliFiyat>0</IndirimliFiyat><SatisFiyati>150,00</SatisFiyati></Secenek>
			<Secenek><StokAdedi>4</StokAdedi><IndirimliFiyat>99,90</IndirimliFiyat><SatisFiyati>150,00</SatisFiyati></Secenek>
		</UrunSecenek>
	</Urun>`)

	require.Equal(t, feedsync.MapProduct, result.Kind)
	p := result.Product
	assert.Equal(t, "5501", p.ExternalID)
	assert.Equal(t, "Trekking Backpack 45L", p.Name)
	assert.Equal(t, "Light frame & rain cover", p.Description)
	assert.True(t, decimal.RequireFromString("99.90").Equal(p.Price), "got %s", p.Price)
	assert.Equal(t, 7, p.TotalStock)
	assert.Equal(t, 2, p.VariationCount)
	assert.Equal(t, "Outdoor", p.Category)
	assert.Equal(t, "Huglu", p.Brand)
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.PrimaryImage)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, p.Images)
	assert.Equal(t, "Huglu Outdoor", p.SourceName)
	assert.Equal(t, "ADET", p.SalesUnit)
	assert.Equal(t, "https://shop.example.com/backpack", p.ProductURL)
	assert.Equal(t, fixedNow, p.LastUpdated)
}

func TestTicimaxMapper_EffectivePrice(t *testing.T) {
	tests := []struct {
		name       string
		variations string
		want       string
	}{
		{"zero discount falls back to regular", `<Secenek><IndirimliFiyat>0</IndirimliFiyat><SatisFiyati>150</SatisFiyati></Secenek>`, "150"},
		{"discount wins when positive", `<Secenek><IndirimliFiyat>99</IndirimliFiyat><SatisFiyati>150</SatisFiyati></Secenek>`, "99"},
		{"missing discount", `<Secenek><SatisFiyati>75.5</SatisFiyati></Secenek>`, "75.5"},
		{"minimum across variations", `<Secenek><SatisFiyati>120</SatisFiyati></Secenek><Secenek><IndirimliFiyat>80</IndirimliFiyat><SatisFiyati>100</SatisFiyati></Secenek>`, "80"},
		{"no variations", ``, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mapTicimax(t, `<Urun><UrunKartiID>1</UrunKartiID><UrunAdi>Lamp</UrunAdi><UrunSecenek>`+tt.variations+`</UrunSecenek></Urun>`)
			require.Equal(t, feedsync.MapProduct, result.Kind)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(result.Product.Price), "got %s", result.Product.Price)
		})
	}
}

func TestTicimaxMapper_PriceRoundedToCents(t *testing.T) {
	result := mapTicimax(t, `<Urun><UrunKartiID>1</UrunKartiID><UrunAdi>Lamp</UrunAdi><UrunSecenek>
		<Secenek><SatisFiyati>99.999</SatisFiyati></Secenek>
		<Secenek><SatisFiyati>120,004</SatisFiyati></Secenek>
	</UrunSecenek></Urun>`)

	require.Equal(t, feedsync.MapProduct, result.Kind)
	assert.Equal(t, "100", result.Product.Price.String())
}

func TestTicimaxMapper_UnescapedDescriptionMarkup(t *testing.T) {
	result := mapTicimax(t, `<Urun><UrunKartiID>1</UrunKartiID><UrunAdi>Tent</UrunAdi>
		<Aciklama>Light <b>two person</b> tent for <i>summer</i> trips</Aciklama>
	</Urun>`)

	require.Equal(t, feedsync.MapProduct, result.Kind)
	assert.Equal(t, "Light two person tent for summer trips", result.Product.Description)
}

func TestTicimaxMapper_Stock(t *testing.T) {
	result := mapTicimax(t, `<Urun><UrunKartiID>1</UrunKartiID><UrunAdi>Lamp</UrunAdi><UrunSecenek>
		<Secenek><StokAdedi>5</StokAdedi></Secenek>
		<Secenek><StokAdedi>-2</StokAdedi></Secenek>
		<Secenek><StokAdedi>n/a</StokAdedi></Secenek>
		<Secenek><StokAdedi>3 adet</StokAdedi></Secenek>
		<Secenek></Secenek>
		<Secenek><StokAdedi>7</StokAdedi></Secenek>
	</UrunSecenek></Urun>`)

	require.Equal(t, feedsync.MapProduct, result.Kind)
	assert.Equal(t, 15, result.Product.TotalStock)
	assert.Equal(t, 6, result.Product.VariationCount)
}

func TestTicimaxMapper_SingleElementLists(t *testing.T) {
	items := ticimaxItems(t, `<Urun><UrunKartiID>9</UrunKartiID><UrunAdi>Stove</UrunAdi>
		<Resimler><Resim>https://cdn.example.com/only.jpg</Resim></Resimler>
		<UrunSecenek><Secenek><StokAdedi>2</StokAdedi><SatisFiyati>40</SatisFiyati></Secenek></UrunSecenek>
	</Urun>`)
	require.Len(t, items, 1)

	result := NewTicimaxMapper().Map(items[0], hugluSource)
	require.Equal(t, feedsync.MapProduct, result.Kind)
	assert.Equal(t, []string{"https://cdn.example.com/only.jpg"}, result.Product.Images)
	assert.Equal(t, 2, result.Product.TotalStock)
	assert.True(t, decimal.NewFromInt(40).Equal(result.Product.Price))
}

func TestTicimaxMapper_Defaults(t *testing.T) {
	result := mapTicimax(t, `<Urun><UrunKartiID>1</UrunKartiID><UrunAdi>Lamp</UrunAdi></Urun>`)

	require.Equal(t, feedsync.MapProduct, result.Kind)
	p := result.Product
	assert.Equal(t, "Genel", p.Category)
	assert.Equal(t, "Huglu Outdoor", p.Brand)
	assert.Equal(t, "", p.PrimaryImage)
	assert.Empty(t, p.Images)
	assert.NotNil(t, p.Images)
	assert.Zero(t, p.TotalStock)
}

func TestTicimaxMapper_CategoryFallback(t *testing.T) {
	result := mapTicimax(t, `<Urun><UrunKartiID>1</UrunKartiID><UrunAdi>Lamp</UrunAdi><Kategori>Kamp/Aydinlatma</Kategori></Urun>`)
	require.Equal(t, feedsync.MapProduct, result.Kind)
	assert.Equal(t, "Kamp", result.Product.Category)
}

func TestTicimaxMapper_SkipAndError(t *testing.T) {
	t.Run("missing name is skipped", func(t *testing.T) {
		result := mapTicimax(t, `<Urun><UrunKartiID>1</UrunKartiID><UrunAdi>   </UrunAdi></Urun>`)
		assert.Equal(t, feedsync.MapSkip, result.Kind)
		assert.Nil(t, result.Product)
	})

	t.Run("missing external id is an error", func(t *testing.T) {
		result := mapTicimax(t, `<Urun><UrunAdi>Lamp</UrunAdi></Urun>`)
		assert.Equal(t, feedsync.MapError, result.Kind)
		assert.ErrorIs(t, result.Err, feedsync.ErrInvalidProduct)
	})

	t.Run("nil item is skipped", func(t *testing.T) {
		var item *feedsync.Node
		result := NewTicimaxMapper().Map(item, hugluSource)
		assert.Equal(t, feedsync.MapSkip, result.Kind)
	})
}

func TestGenericMapper_Map(t *testing.T) {
	m := NewGenericMapper(WithNow(func() time.Time { return fixedNow }))
	source := feedsync.FeedSource{Name: "Camp Deals", URL: "https://feeds.example.com/rss", Format: feedsync.FormatRSS}
	doc := parse(t, `<rss><channel>
		<item>
			<guid>g-1</guid>
			<name>Folding Chair</name>
			<summary>&lt;b&gt;Sturdy&lt;/b&gt; chair</summary>
			<cost>1.299,90 TL</cost>
			<availability>12 in stock</availability>
			<rating>7.5</rating>
			<reviewCount>31</reviewCount>
			<thumbnail>https://cdn.example.com/chair.jpg</thumbnail>
		</item>
		<item><id>g-2</id><title></title></item>
		<item><title>No id</title></item>
	</channel></rss>`)

	items := m.Items(doc)
	require.Len(t, items, 3)

	first := m.Map(items[0], source)
	require.Equal(t, feedsync.MapProduct, first.Kind)
	p := first.Product
	assert.Equal(t, "g-1", p.ExternalID)
	assert.Equal(t, "Folding Chair", p.Name)
	assert.Equal(t, "Sturdy chair", p.Description)
	assert.True(t, decimal.RequireFromString("1299.90").Equal(p.Price), "got %s", p.Price)
	assert.Equal(t, 12, p.TotalStock)
	assert.True(t, decimal.NewFromInt(5).Equal(p.Rating))
	assert.Equal(t, 31, p.ReviewCount)
	assert.Equal(t, "Camp Deals", p.Category)
	assert.Equal(t, "https://cdn.example.com/chair.jpg", p.PrimaryImage)
	assert.Equal(t, []string{"https://cdn.example.com/chair.jpg"}, p.Images)

	assert.Equal(t, feedsync.MapSkip, m.Map(items[1], source).Kind)
	assert.Equal(t, feedsync.MapError, m.Map(items[2], source).Kind)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	m, err := r.MapperFor(feedsync.FormatTicimax)
	require.NoError(t, err)
	assert.Equal(t, feedsync.FormatTicimax, m.Format())

	m, err = r.MapperFor(feedsync.FormatRSS)
	require.NoError(t, err)
	assert.Equal(t, feedsync.FormatRSS, m.Format())

	_, err = r.MapperFor("csv")
	assert.ErrorIs(t, err, feedsync.ErrUnknownFormat)

	assert.Error(t, r.Register(NewGenericMapper()))
	assert.Equal(t, []string{"rss", "ticimax"}, r.Formats())
}
