package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "padaria sao joao", NormalizeDescription("  Padaria   São João "))
	assert.Equal(t, "cafe", NormalizeDescription("CAFÉ"))
}

func TestFingerprint(t *testing.T) {
	date := time.Date(2024, time.January, 10, 9, 30, 0, 0, time.UTC)
	sameDay := time.Date(2024, time.January, 10, 22, 0, 0, 0, time.UTC)

	base := Fingerprint(date, dec("-50.00"), "Padaria São João")

	assert.Len(t, base, 64)
	assert.Equal(t, base, Fingerprint(sameDay, dec("-50"), "padaria sao  joao"))
	assert.NotEqual(t, base, Fingerprint(date, dec("50.00"), "Padaria São João"))
	assert.NotEqual(t, base, Fingerprint(date.AddDate(0, 0, 1), dec("-50.00"), "Padaria São João"))
	assert.NotEqual(t, base, Fingerprint(date, dec("-50.00"), "Padaria"))
}
