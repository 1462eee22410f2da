package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/thronewatch"
)

// CardSelectors are tried in order; the first selector that yields at least
// one card with a product link wins.
var CardSelectors = []string{
	"[data-testid*='wishlist-item']",
	"[data-testid*='item-card']",
	"[class*='WishlistItem']",
	"[class*='wishlist-item']",
	"[class*='ItemCard']",
	"[class*='item-card']",
	"[class*='card']",
	"[class*='Card']",
	"[data-testid*='item']",
	"article",
	"li",
}

// Sub-selectors applied inside a card.
const (
	CardNameSelector  = "h3, h2, h4, [class*='title'], [class*='Title'], [class*='name'], [class*='Name']"
	CardPriceSelector = "[class*='price'], [class*='Price'], [data-testid*='price']"
	CardLinkSelector  = "a[href]"
	CardImageSelector = "img"
)

// UnavailableMarkers mark a card as out of stock when found in its text.
var UnavailableMarkers = []string{
	"out of stock",
	"sold out",
	"unavailable",
	"no longer available",
	"purchased",
}

// cardNameLimit bounds the card text used as a last-resort name.
const cardNameLimit = 120

// CardStrategy reads items from rendered product cards.
type CardStrategy struct {
	Selectors          []string
	NameSelector       string
	PriceSelector      string
	LinkSelector       string
	ImageSelector      string
	UnavailableMarkers []string
}

// NewCardStrategy returns a strategy configured with the default tables.
func NewCardStrategy() *CardStrategy {
	return &CardStrategy{
		Selectors:          CardSelectors,
		NameSelector:       CardNameSelector,
		PriceSelector:      CardPriceSelector,
		LinkSelector:       CardLinkSelector,
		ImageSelector:      CardImageSelector,
		UnavailableMarkers: UnavailableMarkers,
	}
}

func (s *CardStrategy) Name() string {
	return "cards"
}

func (s *CardStrategy) Extract(doc *goquery.Document, base *url.URL) []*thronewatch.Item {
	for _, sel := range s.Selectors {
		var items []*thronewatch.Item
		doc.Find(sel).Each(func(_ int, card *goquery.Selection) {
			if item := s.card(card, base); item != nil {
				items = append(items, item)
			}
		})
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

// card maps one card to an item, or returns nil when it has no usable link.
func (s *CardStrategy) card(card *goquery.Selection, base *url.URL) *thronewatch.Item {
	link := card
	if !card.Is(s.LinkSelector) {
		link = card.Find(s.LinkSelector).First()
	}
	href, ok := resolveLink(base, link.AttrOr("href", ""))
	if !ok {
		return nil
	}

	text := strings.Join(strings.Fields(card.Text()), " ")
	item := &thronewatch.Item{
		Name:       s.name(card, link, text),
		ProductURL: href,
		ImageURL:   s.image(card),
	}

	priceText := card.Find(s.PriceSelector).First().Text()
	p, ok := ParsePrice(priceText)
	if !ok {
		p, ok = ParsePrice(text)
	}
	if ok {
		cents := p.Cents
		item.PriceCents = &cents
		item.Currency = p.Currency
	}

	lower := strings.ToLower(text)
	for _, marker := range s.UnavailableMarkers {
		if strings.Contains(lower, marker) {
			available := false
			item.Available = &available
			break
		}
	}

	return item
}

func (s *CardStrategy) name(card, link *goquery.Selection, text string) string {
	if name := cleanText(card.Find(s.NameSelector).First().Text()); name != "" {
		return name
	}
	if name := cleanText(link.Text()); name != "" {
		return name
	}
	if name := cleanText(card.Find(s.ImageSelector).First().AttrOr("alt", "")); name != "" {
		return name
	}
	return truncate(text, cardNameLimit)
}

func (s *CardStrategy) image(card *goquery.Selection) string {
	img := card.Find(s.ImageSelector).First()
	for _, attr := range []string{"src", "data-src"} {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	return firstSrcset(img.AttrOr("srcset", ""))
}
