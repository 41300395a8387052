package statement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		preference entity.ImportFormat
		fileName   string
		content    string
		expected   entity.ImportFormat
		errCode    domainerror.ImportErrorCode
	}{
		{
			name:       "explicit preference is kept",
			preference: entity.ImportFormatCSV,
			fileName:   "statement.ofx",
			content:    "OFXHEADER:100",
			expected:   entity.ImportFormatCSV,
		},
		{
			name:     "sgml header",
			content:  "\n  OFXHEADER:100\nDATA:OFXSGML\n<OFX>",
			expected: entity.ImportFormatOFX,
		},
		{
			name:     "xml envelope",
			content:  `<?xml version="1.0"?><?OFX OFXHEADER="200" VERSION="220"?><OFX></OFX>`,
			expected: entity.ImportFormatOFX,
		},
		{
			name:     "bare ofx root with bom",
			content:  "\ufeff<OFX><SIGNONMSGSRSV1>",
			expected: entity.ImportFormatOFX,
		},
		{
			name:     "plain delimited text",
			fileName: "extrato.csv",
			content:  "date,description,amount\n2024-01-01,Coffee,-3.00\n",
			expected: entity.ImportFormatCSV,
		},
		{
			name:     "sgml header after a banner line",
			content:  "Exported by Home Banking\r\nOFXHEADER:100\r\nDATA:OFXSGML\r\n",
			expected: entity.ImportFormatOFX,
		},
		{
			name:     "header token inside a csv memo",
			fileName: "extrato.csv",
			content:  "date,description,amount\n2024-01-01,Ref OFXHEADER:100 import,-3.00\n",
			expected: entity.ImportFormatCSV,
		},
		{
			name:     "extension breaks the tie for text",
			fileName: "export.QFX",
			content:  "some text without a header",
			expected: entity.ImportFormatOFX,
		},
		{
			name:     "latin-1 text is still delimited text",
			content:  "Data;Descri\xe7\xe3o;Valor\n",
			expected: entity.ImportFormatCSV,
		},
		{
			name:    "empty content",
			content: " \n\t",
			errCode: domainerror.ErrCodeUnrecognizedFormat,
		},
		{
			name:    "binary content",
			content: "PK\x03\x04\x00\x00\x08\x00",
			errCode: domainerror.ErrCodeUnrecognizedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preference := tt.preference
			if preference == "" {
				preference = entity.ImportFormatAuto
			}

			format, err := NewDetector().Detect(preference, tt.fileName, []byte(tt.content))
			if tt.errCode != "" {
				var importErr *domainerror.ImportError
				require.True(t, errors.As(err, &importErr))
				assert.Equal(t, tt.errCode, importErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestNewParsers(t *testing.T) {
	parsers := NewParsers()
	assert.Contains(t, parsers, entity.ImportFormatOFX)
	assert.Contains(t, parsers, entity.ImportFormatCSV)
}
