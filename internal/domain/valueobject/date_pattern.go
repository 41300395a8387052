package valueobject

import "strings"

// DefaultDatePatterns are tried when a delimited-text configuration declares none.
var DefaultDatePatterns = []string{"yyyy-MM-dd", "dd/MM/yyyy"}

var datePatternTokens = []struct {
	token  string
	layout string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"SSS", "000"},
	{"a", "PM"},
}

// DateLayout converts a date pattern such as "dd/MM/yyyy HH:mm" into a Go time layout.
// Text between single quotes is copied literally. Patterns that already look like Go
// layouts (they mention 2006) are returned unchanged.
func DateLayout(pattern string) string {
	if strings.Contains(pattern, "2006") {
		return pattern
	}

	var b strings.Builder
	for i := 0; i < len(pattern); {
		if pattern[i] == '\'' {
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				b.WriteString(pattern[i+1:])
				break
			}
			b.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range datePatternTokens {
			if strings.HasPrefix(pattern[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pattern[i])
			i++
		}
	}
	return b.String()
}
