package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// A comma or period followed by exactly three digits and then a
	// non-digit (or end of string) is a thousands separator.
	reThousands = regexp.MustCompile(`[.,](\d{3})(\D|$)`)

	// A trailing comma followed by one or two digits is a decimal
	// separator written European-style.
	reDecimalComma = regexp.MustCompile(`,(\d{1,2})$`)
)

// NumberLike coerces a raw JSON value into a float. It accepts a native
// number or a string; anything else, an empty string, or an unparseable
// string yields nil. Absence and zero stay distinguishable downstream,
// so a failed parse is never reported as zero.
func NumberLike(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		return parseNumberString(n)
	}
	return nil
}

func parseNumberString(s string) *float64 {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil
	}

	// Drop thousands separators, repeatedly: "1,234,567" needs two
	// passes because each match consumes the following character.
	for {
		replaced := reThousands.ReplaceAllString(s, "$1$2")
		if replaced == s {
			break
		}
		s = replaced
	}

	s = reDecimalComma.ReplaceAllString(s, ".$1")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// StringLike coerces a raw JSON value into a string. Numbers are
// stringified; an empty or missing value stays absent (empty string).
func StringLike(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}
