package thronewatch

import (
	"net/url"
	"strings"
)

// DefaultWishlistURL is the URL template used when a target is given as a bare username.
const DefaultWishlistURL = "https://throne.com/u/%s/wishlist"

// Target is one monitored wishlist.
type Target struct {
	// Key identifies the target in storage. It is derived from the URL so the
	// same wishlist maps to the same key whether configured by name or URL.
	Key string `json:"key"`
	URL string `json:"url"`
}

// ParseTarget accepts a username or a full wishlist URL.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, Errorf(EINVALID, "target required")
	}

	raw := s
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		if strings.ContainsAny(s, "/?# ") {
			return Target{}, Errorf(EINVALID, "invalid target username %q", s)
		}
		raw = strings.Replace(DefaultWishlistURL, "%s", url.PathEscape(s), 1)
	}

	key, err := NormalizeURL(raw)
	if err != nil {
		return Target{}, Errorf(EINVALID, "invalid target %q: %s", s, ErrorMessage(err))
	}

	return Target{Key: key, URL: raw}, nil
}

// ParseTargets parses every entry, skipping blanks. Duplicate targets are
// collapsed so a wishlist is never processed twice in the same pass.
func ParseTargets(entries []string) ([]Target, error) {
	var targets []Target
	seen := make(map[string]struct{})
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		t, err := ParseTarget(entry)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[t.Key]; ok {
			continue
		}
		seen[t.Key] = struct{}{}
		targets = append(targets, t)
	}
	return targets, nil
}
