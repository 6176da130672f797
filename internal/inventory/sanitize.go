package inventory

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"stockpulse/pkg/contracts/domain"
)

// NumericConvention decides what a blank or unparseable metric cell becomes
type NumericConvention string

const (
	// ConventionUnknown keeps the cell as an explicit unknown quantity
	ConventionUnknown NumericConvention = "unknown"
	// ConventionZero turns the cell into a known zero
	ConventionZero NumericConvention = "zero"
)

// Valid reports whether c is a supported convention
func (c NumericConvention) Valid() bool {
	return c == ConventionUnknown || c == ConventionZero
}

const (
	fallbackStoreID   = "unknown-store"
	fallbackStoreName = "UNKNOWN STORE"
)

// stripDiacritics removes combining marks ("Tránsito" -> "Transito").
// A transformer is built per call since transform chains are stateful.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeLabel folds a header cell for comparison: diacritics stripped,
// lowercased, underscores as spaces, whitespace collapsed.
func normalizeLabel(s string) string {
	s = stripDiacritics(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeStoreID derives a stable store identifier from a header cell
func SanitizeStoreID(raw string) string {
	folded := strings.ToLower(stripDiacritics(raw))
	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallbackStoreID
	}
	return b.String()
}

// SanitizeStoreName produces the display form of a store header cell
func SanitizeStoreName(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return fallbackStoreName
	}
	return strings.ToUpper(name)
}

// cleanText trims a descriptive cell and collapses inner whitespace
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseQuantity sanitizes a metric cell. The boolean result reports that the
// cell did not hold a usable non-negative number and a fallback was applied.
func ParseQuantity(cell string, convention NumericConvention) (domain.Quantity, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ',':
			return -1
		case unicode.IsSpace(r):
			return -1
		case unicode.Is(unicode.Sc, r):
			return -1
		}
		return r
	}, cell)

	if cleaned == "" {
		return fallbackQuantity(convention), true
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallbackQuantity(convention), true
	}
	if v < 0 {
		return domain.KnownQuantity(0), true
	}
	return domain.KnownQuantity(v), false
}

func fallbackQuantity(convention NumericConvention) domain.Quantity {
	if convention == ConventionZero {
		return domain.KnownQuantity(0)
	}
	return domain.UnknownQuantity()
}
