// Package csv reads delimited-text statements described by a column mapping.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
	"github.com/finance-tracker/importer/internal/domain/valueobject"
)

// DefaultDelimiter is used when the configuration leaves the delimiter empty.
const DefaultDelimiter = ','

// Parser implements adapter.StatementParser for delimited text. It holds no state.
type Parser struct{}

// NewParser creates a new delimited-text parser.
func NewParser() *Parser {
	return &Parser{}
}

type layout struct {
	columns    map[entity.ColumnRole]int
	layouts    []string
	separators valueobject.NumberSeparators
}

// Parse reads the header, resolves the configured columns and emits one entry per non-blank row.
// Rows whose date or amount cannot be read are still emitted, with the parsed field left nil.
func (p *Parser) Parse(ctx context.Context, content []byte, cfg *entity.ImportConfiguration, loc *time.Location) ([]entity.ImportedEntry, error) {
	if cfg == nil || cfg.CSV == nil || !cfg.CSV.ContainsHeader {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeMissingCSVConfiguration,
			"delimited-text import requires a csv configuration with a header row",
			domainerror.ErrMissingCSVConfiguration,
		)
	}
	csvCfg := cfg.CSV

	decoded, err := decode(content, csvCfg.Encoding)
	if err != nil {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeUnreadableDelimitedText,
			fmt.Sprintf("failed to decode statement as %q", csvCfg.Encoding),
			err,
		)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = Delimiter(csvCfg.Delimiter)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeUnreadableDelimitedText,
			"failed to read header row",
			err,
		)
	}

	l, err := resolveLayout(header, csvCfg)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.ImportedEntry, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domainerror.NewImportError(
				domainerror.ErrCodeUnreadableDelimitedText,
				"failed to read delimited text",
				err,
			)
		}
		if isBlank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		entries = append(entries, l.entry(line, record, loc))
	}

	return entries, nil
}

// Delimiter converts the configured delimiter into a rune. "\t" and "tab" name the tab character.
func Delimiter(configured string) rune {
	switch strings.ToLower(configured) {
	case "":
		return DefaultDelimiter
	case `\t`, "tab":
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(configured)
	return r
}

func decode(content []byte, charset string) ([]byte, error) {
	enc, err := valueobject.LookupCharset(charset)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		if content, err = enc.NewDecoder().Bytes(content); err != nil {
			return nil, err
		}
	}
	return bytes.TrimPrefix(content, []byte("\ufeff")), nil
}

func resolveLayout(header []string, cfg *entity.CSVConfiguration) (*layout, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	l := &layout{
		columns:    make(map[entity.ColumnRole]int),
		separators: separators(cfg),
	}

	var missing []string
	for _, role := range entity.RequiredColumns {
		idx, ok := positions[strings.ToLower(cfg.ColumnName(role))]
		if !ok {
			missing = append(missing, cfg.ColumnName(role))
			continue
		}
		l.columns[role] = idx
	}
	if len(missing) > 0 {
		return nil, domainerror.NewImportError(
			domainerror.ErrCodeMissingColumn,
			"header is missing required columns: "+strings.Join(missing, ", "),
			domainerror.ErrMissingColumn,
		)
	}

	for _, role := range entity.OptionalColumns {
		if idx, ok := positions[strings.ToLower(cfg.ColumnName(role))]; ok {
			l.columns[role] = idx
		}
	}

	patterns := cfg.DatePatterns
	if len(patterns) == 0 {
		patterns = valueobject.DefaultDatePatterns
	}
	for _, pattern := range patterns {
		l.layouts = append(l.layouts, valueobject.DateLayout(pattern))
	}

	return l, nil
}

// separators applies explicit overrides on top of the locale defaults.
func separators(cfg *entity.CSVConfiguration) valueobject.NumberSeparators {
	result := valueobject.SeparatorsForLocale(cfg.Locale)
	if cfg.DecimalSeparator != "" {
		result.Decimal = cfg.DecimalSeparator
	}
	if cfg.GroupingSeparator != "" {
		result.Grouping = cfg.GroupingSeparator
	}
	return result
}

func (l *layout) field(record []string, role entity.ColumnRole) string {
	idx, ok := l.columns[role]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func (l *layout) entry(line int, record []string, loc *time.Location) entity.ImportedEntry {
	entry := entity.ImportedEntry{
		LineNumber:       line,
		ExternalID:       l.field(record, entity.ColumnExternalID),
		RawDate:          l.field(record, entity.ColumnDate),
		Description:      l.field(record, entity.ColumnDescription),
		RawAmount:        l.field(record, entity.ColumnAmount),
		TypeCode:         l.field(record, entity.ColumnType),
		SubtypeCode:      l.field(record, entity.ColumnSubtype),
		SourceCode:       l.field(record, entity.ColumnSource),
		CategoryCode:     l.field(record, entity.ColumnCategory),
		SubcategoryCode:  l.field(record, entity.ColumnSubcategory),
		SourceEntityCode: l.field(record, entity.ColumnSourceEntity),
	}

	if date, ok := ParseDate(entry.RawDate, l.layouts, loc); ok {
		entry.Date = &date
	}
	if amount, err := ParseAmount(entry.RawAmount, l.separators); err == nil {
		entry.Amount = &amount
	}

	if t, ok := entity.ParseTransactionType(entry.TypeCode); ok {
		entry.Type = t
	} else {
		entry.Type = entity.TransactionTypeIncome
		if entry.Amount != nil {
			entry.Type = entity.TypeFromSign(*entry.Amount)
		}
		entry.TypeInferred = true
	}

	return entry
}

// ParseDate tries each layout in order and returns the first successful parse.
func ParseDate(raw string, layouts []string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if parsed, err := time.ParseInLocation(l, raw, loc); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// ParseAmount reads a localized amount such as "R$ 1.234,56", "(12.00)" or "7,5-".
// One currency symbol or ISO code may precede or follow the number, and one sign may lead
// or trail it unless parentheses already mark it negative. Grouping separators are only
// accepted between full groups of three digits. Anything else is an error.
func ParseAmount(raw string, separators valueobject.NumberSeparators) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	negative := false
	signs := 0
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		signs++
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	currencies := 0
	for _, fromEnd := range []bool{false, true} {
		for {
			if sign, rest, ok := cutSign(s, fromEnd); ok {
				signs++
				negative = negative != (sign == '-')
				s = rest
				continue
			}
			token, rest := cutAffix(s, fromEnd, separators)
			if token == "" {
				break
			}
			if !isCurrency(token) {
				return decimal.Zero, fmt.Errorf("invalid amount %q: unexpected %q", raw, token)
			}
			currencies++
			s = rest
		}
	}
	if signs > 1 || currencies > 1 {
		return decimal.Zero, fmt.Errorf("invalid amount %q: repeated sign or currency", raw)
	}

	number, err := normalizeNumber(s, separators)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	amount, err := decimal.NewFromString(number)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount.Round(valueobject.PercentageScale), nil
}

func cutSign(s string, fromEnd bool) (rune, string, bool) {
	if s == "" {
		return 0, s, false
	}
	if fromEnd {
		if last := s[len(s)-1]; last == '-' || last == '+' {
			return rune(last), strings.TrimSpace(s[:len(s)-1]), true
		}
		return 0, s, false
	}
	if first := s[0]; first == '-' || first == '+' {
		return rune(first), strings.TrimSpace(s[1:]), true
	}
	return 0, s, false
}

// cutAffix splits off the run of runes at one end of s that cannot belong to the number.
func cutAffix(s string, fromEnd bool, separators valueobject.NumberSeparators) (string, string) {
	isNumberRune := func(r rune) bool {
		return unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == '+' ||
			string(r) == separators.Decimal || string(r) == separators.Grouping
	}
	if fromEnd {
		i := strings.LastIndexFunc(s, isNumberRune)
		return s[i+1:], strings.TrimSpace(s[:i+1])
	}
	i := strings.IndexFunc(s, isNumberRune)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// isCurrency accepts a currency symbol optionally prefixed by up to three capitals ("$", "R$",
// "US$", "€") or a bare ISO 4217 code ("BRL").
func isCurrency(token string) bool {
	letters := 0
	symbols := 0
	for _, r := range token {
		switch {
		case r >= 'A' && r <= 'Z' && symbols == 0:
			letters++
		case unicode.Is(unicode.Sc, r):
			symbols++
		default:
			return false
		}
	}
	if symbols == 0 {
		return letters == 3
	}
	return letters <= 3
}

// normalizeNumber validates digits and separators and rewrites them in decimal.NewFromString form.
func normalizeNumber(s string, separators valueobject.NumberSeparators) (string, error) {
	if s == "" {
		return "", errors.New("no digits")
	}

	integer, fraction, hasFraction := s, "", false
	if separators.Decimal != "" {
		integer, fraction, hasFraction = strings.Cut(s, separators.Decimal)
	}
	if hasFraction && !allDigits(fraction) {
		return "", fmt.Errorf("malformed fraction %q", fraction)
	}

	if separators.Grouping != "" && strings.Contains(integer, separators.Grouping) {
		groups := strings.Split(integer, separators.Grouping)
		if len(groups[0]) == 0 || len(groups[0]) > 3 || !allDigits(groups[0]) {
			return "", fmt.Errorf("malformed digit grouping %q", integer)
		}
		for _, g := range groups[1:] {
			if len(g) != 3 || !allDigits(g) {
				return "", fmt.Errorf("malformed digit grouping %q", integer)
			}
		}
		integer = strings.Join(groups, "")
	} else if integer != "" && !allDigits(integer) {
		return "", fmt.Errorf("malformed number %q", integer)
	}

	if integer == "" && !hasFraction {
		return "", errors.New("no digits")
	}
	if integer == "" {
		integer = "0"
	}
	if !hasFraction {
		return integer, nil
	}
	return integer + "." + fraction, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
