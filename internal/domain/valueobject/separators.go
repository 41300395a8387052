package valueobject

import (
	"strings"

	"golang.org/x/text/language"
)

// NumberSeparators holds the decimal and digit-grouping characters of a locale.
type NumberSeparators struct {
	Decimal  string
	Grouping string
}

// DefaultSeparators applies to every locale without an entry in the table.
var DefaultSeparators = NumberSeparators{Decimal: ".", Grouping: ","}

var localeSeparators = map[string]NumberSeparators{
	language.BrazilianPortuguese.String(): {Decimal: ",", Grouping: "."},
}

// SeparatorsForLocale returns the separators for a BCP 47 tag ("pt-BR", "pt_BR", "en-US").
// Only language and region are considered; unknown or malformed tags get DefaultSeparators.
func SeparatorsForLocale(locale string) NumberSeparators {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if err != nil {
		return DefaultSeparators
	}

	base, _ := tag.Base()
	region, confidence := tag.Region()
	if confidence != language.Exact {
		return DefaultSeparators
	}

	key, err := language.Compose(base, region)
	if err != nil {
		return DefaultSeparators
	}
	if separators, ok := localeSeparators[key.String()]; ok {
		return separators
	}
	return DefaultSeparators
}
