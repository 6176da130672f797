package inventory

import "strings"

// SKUDelimiter separates the style, color and size tokens of a compound SKU
const SKUDelimiter = "_"

// OneSize labels variants whose SKU and row carry no size token
const OneSize = "ONE SIZE"

// ProductDictionary maps a lowercase base SKU to a display name
type ProductDictionary map[string]string

// SizeDictionary maps a raw size token to a display label
type SizeDictionary map[string]string

// BaseSKU returns the style+color part of a compound SKU, lowercased.
// SKUs with fewer than two tokens are returned whole.
func BaseSKU(sku string) string {
	tokens := strings.Split(strings.TrimSpace(sku), SKUDelimiter)
	if len(tokens) < 2 {
		return strings.ToLower(strings.TrimSpace(sku))
	}
	return strings.ToLower(tokens[0] + SKUDelimiter + tokens[1])
}

// SizeToken returns the raw size token of a SKU: the text after the last
// delimiter when the SKU has at least three tokens, otherwise fallback.
func SizeToken(sku, fallback string) string {
	sku = strings.TrimSpace(sku)
	if strings.Count(sku, SKUDelimiter) >= 2 {
		if token := sku[strings.LastIndex(sku, SKUDelimiter)+1:]; token != "" {
			return token
		}
	}
	return strings.TrimSpace(fallback)
}

// Label resolves a raw size token through the dictionary
func (d SizeDictionary) Label(token string) string {
	if token == "" {
		return OneSize
	}
	if label, ok := d[token]; ok && label != "" {
		return label
	}
	return token
}

// Lookup returns the display name for a base SKU
func (d ProductDictionary) Lookup(baseSKU string) (string, bool) {
	name, ok := d[strings.ToLower(baseSKU)]
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}
