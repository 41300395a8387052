package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeparatorsForLocale(t *testing.T) {
	brazilian := NumberSeparators{Decimal: ",", Grouping: "."}

	tests := []struct {
		locale   string
		expected NumberSeparators
	}{
		{"pt-BR", brazilian},
		{"pt_BR", brazilian},
		{"PT-br", brazilian},
		{"en-US", DefaultSeparators},
		{"pt-PT", DefaultSeparators},
		{"pt", DefaultSeparators},
		{"", DefaultSeparators},
		{"not a locale", DefaultSeparators},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.expected, SeparatorsForLocale(tt.locale))
		})
	}
}

func TestLookupCharset(t *testing.T) {
	enc, err := LookupCharset("")
	require.NoError(t, err)
	assert.Nil(t, enc)

	enc, err = LookupCharset("ISO-8859-1")
	require.NoError(t, err)
	require.NotNil(t, enc)
	decoded, err := enc.NewDecoder().String("Caf\xe9")
	require.NoError(t, err)
	assert.Equal(t, "Café", decoded)

	_, err = LookupCharset("definitely-not-a-charset")
	assert.Error(t, err)
}
