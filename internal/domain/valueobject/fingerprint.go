package valueobject

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fingerprint hashes "date|amount|description" with SHA-256.
// The date is taken in the zone it carries, the amount is signed with two decimals and
// the description goes through NormalizeDescription.
func Fingerprint(date time.Time, signedAmount decimal.Decimal, description string) string {
	input := date.Format("2006-01-02") + "|" + signedAmount.StringFixed(PercentageScale) + "|" + NormalizeDescription(description)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// NormalizeDescription strips accents, lowercases and collapses whitespace.
func NormalizeDescription(description string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, description)
	if err != nil {
		normalized = description
	}
	return strings.Join(strings.Fields(strings.ToLower(normalized)), " ")
}
