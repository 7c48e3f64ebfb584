package integration

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSlug lowercases s, strips accents and replaces every run of
// characters outside [a-z0-9] with a single hyphen.
func NormalizeSlug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var sb strings.Builder
	sb.Grow(len(plain))
	pendingHyphen := false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingHyphen = false
			sb.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return sb.String()
}

// BuildEntityURL returns the public URL of a slug on the given shop
func BuildEntityURL(shop, shopDomain, slug string) string {
	return "https://" + shop + "." + strings.TrimPrefix(shopDomain, ".") + "/" + slug
}
