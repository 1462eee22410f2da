package goquery_test

import (
	"testing"

	"github.com/fwojciec/thronewatch"
	"github.com/fwojciec/thronewatch/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wishlistURL = "https://throne.com/u/alice/wishlist"

const nextDataHTML = `<!DOCTYPE html>
<html>
<head><title>Alice's Wishlist</title></head>
<body>
<div id="__next"></div>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"wishlist":{"items":[
	{"id":"abc123","name":"Desk Lamp","price":2499,"currency":"usd","url":"https://shop.example.com/lamp?utm_source=throne","imageUrl":"https://cdn.example.com/lamp.jpg","available":true},
	{"id":"def456","name":"Notebook &amp; Pen","price":"$12.50","url":"/u/alice/item/def456"}
]}}}}
</script>
</body>
</html>`

const cardsHTML = `<!DOCTYPE html>
<html>
<body>
<div class="wishlist">
	<div data-testid="wishlist-item-1">
		<a href="/u/alice/item/aaa111"><img src="/img/candle.jpg" alt="Candle"><h3>Scented Candle</h3></a>
		<span class="price">$12.50</span>
	</div>
	<div data-testid="wishlist-item-2">
		<a href="https://shop.example.com/cookbook"><h3>Cookbook</h3></a>
		<span class="price">Contact for price</span>
	</div>
	<div data-testid="wishlist-item-3">
		<a href="https://shop.example.com/mug"><h3>Mug</h3></a>
		<span class="price">£8</span>
		<span>Sold out</span>
	</div>
</div>
</body>
</html>`

func extract(t *testing.T, html string) *thronewatch.Extraction {
	t.Helper()

	e := goquery.NewExtractor()
	ex, err := e.Extract(&thronewatch.Page{URL: wishlistURL, HTML: html})
	require.NoError(t, err)
	return ex
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("reads items from embedded page data", func(t *testing.T) {
		t.Parallel()

		ex := extract(t, nextDataHTML)

		assert.Equal(t, "next-data", ex.Strategy)
		require.Len(t, ex.Items, 2)

		lamp := ex.Items[0]
		assert.Equal(t, "native:abc123", lamp.ID)
		assert.Equal(t, "Desk Lamp", lamp.Name)
		require.NotNil(t, lamp.PriceCents)
		assert.Equal(t, int64(2499), *lamp.PriceCents)
		assert.Equal(t, "USD", lamp.Currency)
		assert.Equal(t, "https://shop.example.com/lamp", lamp.ProductURL)
		assert.Equal(t, "https://cdn.example.com/lamp.jpg", lamp.ImageURL)
		require.NotNil(t, lamp.Available)
		assert.True(t, *lamp.Available)

		notebook := ex.Items[1]
		assert.Equal(t, "Notebook & Pen", notebook.Name)
		require.NotNil(t, notebook.PriceCents)
		assert.Equal(t, int64(1250), *notebook.PriceCents)
		assert.Equal(t, "USD", notebook.Currency)
		assert.Equal(t, "https://throne.com/u/alice/item/def456", notebook.ProductURL)
		assert.Nil(t, notebook.Available)
	})

	t.Run("searches page data for an items array at an unknown path", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"initialState":{"profile":{"items":[
	{"title":"Yoga Mat","price":35.5,"currencyCode":"EUR","productUrl":"https://shop.example.com/mat"}
]}}}}}
</script></body></html>`

		ex := extract(t, html)

		assert.Equal(t, "next-data", ex.Strategy)
		require.Len(t, ex.Items, 1)
		assert.Equal(t, "Yoga Mat", ex.Items[0].Name)
		require.NotNil(t, ex.Items[0].PriceCents)
		assert.Equal(t, int64(3550), *ex.Items[0].PriceCents)
		assert.Equal(t, "EUR", ex.Items[0].Currency)
	})

	t.Run("reads decimal page data prices as major units", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"items":[
	{"name":"Lamp","price":25.0,"currency":"USD","url":"https://shop.example.com/lamp"},
	{"name":"Vase","price":25.5,"currency":"USD","url":"https://shop.example.com/vase"},
	{"name":"Rug","price":2.5e1,"currency":"USD","url":"https://shop.example.com/rug"},
	{"name":"Chair","price":2500,"currency":"USD","url":"https://shop.example.com/chair"}
]}}}
</script></body></html>`

		ex := extract(t, html)

		require.Len(t, ex.Items, 4)
		want := map[string]int64{"Lamp": 2500, "Vase": 2550, "Rug": 2500, "Chair": 2500}
		for _, item := range ex.Items {
			require.NotNil(t, item.PriceCents, item.Name)
			assert.Equal(t, want[item.Name], *item.PriceCents, item.Name)
		}
	})

	t.Run("keeps items whose price overflows without a price", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"items":[
	{"name":"Yacht","price":1e30,"currency":"USD","url":"https://shop.example.com/yacht"}
]}}}
</script></body></html>`

		ex := extract(t, html)

		require.Len(t, ex.Items, 1)
		assert.Nil(t, ex.Items[0].PriceCents)
		assert.Empty(t, ex.Items[0].Currency)
	})

	t.Run("reads items from linked data item lists", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><script type="application/ld+json">
{"@context":"https://schema.org","@type":"ItemList","itemListElement":[
	{"@type":"ListItem","position":1,"item":{"@type":"Product","name":"Headphones","url":"https://www.amazon.com/dp/B08N5WRWNW","offers":{"@type":"Offer","price":"199.99","priceCurrency":"USD","availability":"https://schema.org/OutOfStock"}}}
]}
</script></head><body></body></html>`

		ex := extract(t, html)

		assert.Equal(t, "json-ld", ex.Strategy)
		require.Len(t, ex.Items, 1)
		headphones := ex.Items[0]
		assert.Equal(t, "asin:B08N5WRWNW", headphones.ID)
		require.NotNil(t, headphones.PriceCents)
		assert.Equal(t, int64(19999), *headphones.PriceCents)
		assert.Equal(t, "USD", headphones.Currency)
		require.NotNil(t, headphones.Available)
		assert.False(t, *headphones.Available)
	})

	t.Run("falls back to cards when page data is absent", func(t *testing.T) {
		t.Parallel()

		ex := extract(t, cardsHTML)

		assert.Equal(t, "cards", ex.Strategy)
		require.Len(t, ex.Items, 3)

		candle := ex.Items[0]
		assert.Equal(t, "Scented Candle", candle.Name)
		assert.Equal(t, "item:aaa111", candle.ID)
		assert.Equal(t, "https://throne.com/u/alice/item/aaa111", candle.ProductURL)
		assert.Equal(t, "https://throne.com/img/candle.jpg", candle.ImageURL)
		require.NotNil(t, candle.PriceCents)
		assert.Equal(t, int64(1250), *candle.PriceCents)
		assert.Equal(t, "USD", candle.Currency)

		cookbook := ex.Items[1]
		assert.Equal(t, "Cookbook", cookbook.Name)
		assert.Nil(t, cookbook.PriceCents)
		assert.Empty(t, cookbook.Currency)

		mug := ex.Items[2]
		require.NotNil(t, mug.PriceCents)
		assert.Equal(t, int64(800), *mug.PriceCents)
		assert.Equal(t, "GBP", mug.Currency)
		require.NotNil(t, mug.Available)
		assert.False(t, *mug.Available)
	})

	t.Run("falls back when page data has no items", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"user":{"name":"alice"}}}}</script>
<article><a href="https://shop.example.com/scarf">Wool Scarf</a> $30</article>
</body></html>`

		ex := extract(t, html)

		assert.Equal(t, "cards", ex.Strategy)
		require.Len(t, ex.Items, 1)
		assert.Equal(t, "Wool Scarf", ex.Items[0].Name)
	})

	t.Run("ignores malformed page data", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<script id="__NEXT_DATA__" type="application/json">{"props": </script>
<li><a href="https://shop.example.com/socks">Socks</a></li>
</body></html>`

		ex := extract(t, html)

		assert.Equal(t, "cards", ex.Strategy)
		require.Len(t, ex.Items, 1)
	})

	t.Run("prefers page data over cards", func(t *testing.T) {
		t.Parallel()

		html := nextDataHTML + cardsHTML

		ex := extract(t, html)

		assert.Equal(t, "next-data", ex.Strategy)
	})

	t.Run("drops duplicate products", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<li><a href="https://shop.example.com/lamp?utm_source=a">Lamp</a></li>
<li><a href="https://shop.example.com/lamp/">Lamp again</a></li>
<li><a href="https://shop.example.com/vase">Vase</a></li>
</body></html>`

		ex := extract(t, html)

		require.Len(t, ex.Items, 2)
		assert.Equal(t, "Lamp", ex.Items[0].Name)
		assert.Equal(t, "Vase", ex.Items[1].Name)
	})

	t.Run("keeps same-path products from different shops", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<li><a href="https://shop-a.example.com/item/blue-mug">Blue mug from A</a></li>
<li><a href="https://shop-b.example.org/item/blue-mug">Blue mug from B</a></li>
</body></html>`

		ex := extract(t, html)

		require.Len(t, ex.Items, 2)
		assert.Equal(t, "Blue mug from A", ex.Items[0].Name)
		assert.Equal(t, "Blue mug from B", ex.Items[1].Name)
		assert.NotEqual(t, ex.Items[0].ID, ex.Items[1].ID)
	})

	t.Run("skips cards without product links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<li><a href="#top">Back to top</a></li>
<li><a href="javascript:void(0)">Share</a></li>
<li><a href="https://shop.example.com/kettle">Kettle</a></li>
</body></html>`

		ex := extract(t, html)

		require.Len(t, ex.Items, 1)
		assert.Equal(t, "Kettle", ex.Items[0].Name)
	})

	t.Run("assigns the same IDs on repeated extraction", func(t *testing.T) {
		t.Parallel()

		first := extract(t, cardsHTML)
		second := extract(t, cardsHTML)

		require.Len(t, second.Items, len(first.Items))
		for i := range first.Items {
			assert.Equal(t, first.Items[i].ID, second.Items[i].ID)
		}
	})

	t.Run("returns EEXTRACT when nothing matches", func(t *testing.T) {
		t.Parallel()

		e := goquery.NewExtractor()
		_, err := e.Extract(&thronewatch.Page{URL: wishlistURL, HTML: `<html><body><p>Nothing here</p></body></html>`})

		assert.Equal(t, thronewatch.EEXTRACT, thronewatch.ErrorCode(err))
	})

	t.Run("uses only the given strategies", func(t *testing.T) {
		t.Parallel()

		e := goquery.NewExtractor(goquery.NewJSONLDStrategy())
		_, err := e.Extract(&thronewatch.Page{URL: wishlistURL, HTML: cardsHTML})

		assert.Equal(t, thronewatch.EEXTRACT, thronewatch.ErrorCode(err))
	})
}
