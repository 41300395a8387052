// Package statement wires statement format detection and the per-format parsers.
package statement

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
	"github.com/finance-tracker/importer/internal/integration/statement/csv"
	"github.com/finance-tracker/importer/internal/integration/statement/ofx"
)

// sampleSize is how much of the file is inspected when sniffing the format.
const sampleSize = 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Detector implements adapter.FormatDetector by content sniffing with the file extension as tie-breaker.
type Detector struct{}

// NewDetector creates a new format detector.
func NewDetector() adapter.FormatDetector {
	return &Detector{}
}

// NewParsers returns the parser registry keyed by resolved format.
func NewParsers() map[entity.ImportFormat]adapter.StatementParser {
	return map[entity.ImportFormat]adapter.StatementParser{
		entity.ImportFormatOFX: ofx.NewParser(),
		entity.ImportFormatCSV: csv.NewParser(),
	}
}

// Detect resolves the statement format. Explicit preferences are returned untouched.
func (d *Detector) Detect(preference entity.ImportFormat, fileName string, content []byte) (entity.ImportFormat, error) {
	if preference == entity.ImportFormatOFX || preference == entity.ImportFormatCSV {
		return preference, nil
	}

	sample := bytes.TrimPrefix(content, utf8BOM)
	sample = bytes.TrimLeft(sample, " \t\r\n")
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	if len(sample) == 0 {
		return "", domainerror.NewImportError(
			domainerror.ErrCodeUnrecognizedFormat,
			"statement file is empty",
			domainerror.ErrUnrecognizedFormat,
		)
	}

	if looksLikeOFX(sample) {
		return entity.ImportFormatOFX, nil
	}

	if bytes.IndexByte(sample, 0) >= 0 || (!validUTF8Prefix(sample) && !looksLikeText(sample)) {
		return "", domainerror.NewImportError(
			domainerror.ErrCodeUnrecognizedFormat,
			"statement file is neither OFX nor delimited text",
			domainerror.ErrUnrecognizedFormat,
		)
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".ofx", ".qfx":
		return entity.ImportFormatOFX, nil
	}

	return entity.ImportFormatCSV, nil
}

func looksLikeOFX(sample []byte) bool {
	upper := strings.ToUpper(string(sample))
	if strings.HasPrefix(upper, "OFXHEADER") || strings.HasPrefix(upper, "<OFX>") {
		return true
	}
	if strings.HasPrefix(upper, "<?XML") || strings.HasPrefix(upper, "<?OFX") {
		return strings.Contains(upper, "<?OFX") || strings.Contains(upper, "<OFX")
	}
	for _, line := range strings.Split(upper, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "OFXHEADER:") {
			return true
		}
	}
	return false
}

// validUTF8Prefix tolerates a rune cut at the sample boundary.
func validUTF8Prefix(sample []byte) bool {
	for i := 0; i < utf8.UTFMax && i < len(sample); i++ {
		if utf8.Valid(sample[:len(sample)-i]) {
			return true
		}
	}
	return false
}

// looksLikeText accepts single-byte encoded text (latin-1 and friends) with few control characters.
func looksLikeText(sample []byte) bool {
	control := 0
	for _, b := range sample {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			control++
		}
	}
	return control*10 < len(sample)
}
