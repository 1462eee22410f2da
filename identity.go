package thronewatch

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Item ID namespaces. Native and path-derived IDs are prefixed so they can
// never collide with hash-derived ones.
const (
	NativeIDPrefix = "native:"
	URLIDPrefix    = "url:"
)

// IDPattern recovers a stable identifier from the path of a product URL on
// the hosts where that path shape is known to name a product.
type IDPattern struct {
	Name string
	Host *regexp.Regexp // matched against the normalized host
	Re   *regexp.Regexp // first capture group is the identifier
}

var (
	amazonHost = regexp.MustCompile(`(?:^|\.)amazon\.[a-z]{2,3}(?:\.[a-z]{2})?$`)
	throneHost = regexp.MustCompile(`(?:^|\.)throne\.com$`)
)

// IDPatterns are tried in order against the normalized product URL.
var IDPatterns = []IDPattern{
	{Name: "asin", Host: amazonHost, Re: regexp.MustCompile(`/dp/([A-Z0-9]{10})(?:/|$)`)},
	{Name: "asin", Host: amazonHost, Re: regexp.MustCompile(`/gp/product/([A-Z0-9]{10})(?:/|$)`)},
	{Name: "item", Host: throneHost, Re: regexp.MustCompile(`/items?/([A-Za-z0-9_-]{6,})$`)},
}

// trackingParamPrefixes and trackingParams list query parameters that only
// carry attribution data and never select a different product.
var (
	trackingParamPrefixes = []string{"utm_"}
	trackingParams        = map[string]struct{}{
		"fbclid":  {},
		"gclid":   {},
		"dclid":   {},
		"gbraid":  {},
		"wbraid":  {},
		"msclkid": {},
		"yclid":   {},
		"igshid":  {},
		"mc_cid":  {},
		"mc_eid":  {},
		"_ga":     {},
		"_gl":     {},
		"ref":     {},
		"ref_":    {},
		"spm":     {},
	}
)

// NormalizeURL returns the canonical form of a product URL. The steps are part
// of the item identity contract:
//
//  1. trim surrounding whitespace and parse
//  2. require an http or https scheme and a host
//  3. lowercase scheme and host, drop the default port
//  4. drop the fragment
//  5. remove tracking query parameters (utm_* and a fixed list)
//  6. sort the remaining parameters by key, then value
//  7. strip trailing slashes from the path
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", Errorf(EINVALID, "empty URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", raw, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", Errorf(EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", Errorf(EINVALID, "URL %q has no host", raw)
	}

	u.Scheme = scheme
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && !isDefaultPort(scheme, port) {
		host = host + ":" + port
	}
	u.Host = host
	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = normalizeQuery(u.Query())

	return u.String(), nil
}

func isDefaultPort(scheme, port string) bool {
	return scheme == "http" && port == "80" || scheme == "https" && port == "443"
}

func normalizeQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if isTrackingParam(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf strings.Builder
	for _, k := range keys {
		vals := params[k]
		sort.Strings(vals)
		for _, v := range vals {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			buf.WriteString(url.QueryEscape(k))
			buf.WriteByte('=')
			buf.WriteString(url.QueryEscape(v))
		}
	}
	return buf.String()
}

func isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	if _, ok := trackingParams[key]; ok {
		return true
	}
	for _, prefix := range trackingParamPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// ResolveID assigns the stable identity of an item. It prefers the page's
// native identifier, then an identifier recovered from the product URL path,
// and finally a hash of the normalized product URL. ResolveID never fails.
func ResolveID(item *Item) string {
	if id := strings.TrimSpace(item.NativeID); id != "" {
		return NativeIDPrefix + id
	}

	normalized, err := NormalizeURL(item.ProductURL)
	if err != nil {
		// Unparseable URLs still hash deterministically.
		normalized = strings.TrimSpace(item.ProductURL)
	} else if u, err := url.Parse(normalized); err == nil {
		for _, p := range IDPatterns {
			if !p.Host.MatchString(u.Hostname()) {
				continue
			}
			if m := p.Re.FindStringSubmatch(u.Path); m != nil {
				return p.Name + ":" + m[1]
			}
		}
	}

	return URLIDPrefix + HashURL(normalized)
}

// HashURL returns the 16 hex digit xxHash64 of a normalized URL.
func HashURL(normalized string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(normalized))
}
