package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/inflationfighter/price-service/internal/catalog"
)

var currencySuffix = regexp.MustCompile(`\s*(CAD|USD|EUR|\$|€)\s*$`)

// ParsePrice parses a price string to cents.
// Handles "5.49", "5,49", "$5.49", "5,49 $", "1 299,00" and "1,299.00".
func ParsePrice(value string) (catalog.Cents, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, fmt.Errorf("empty price value")
	}

	cleaned = strings.ToUpper(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = currencySuffix.ReplaceAllString(cleaned, "")
	cleaned = strings.Map(func(r rune) rune {
		// thousands separators written as spaces
		if r == ' ' || r == '\u00a0' || r == '\u202f' {
			return -1
		}
		return r
	}, cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric value found in %q", value)
	}

	// The separator that comes last is the decimal one
	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	if lastComma > lastDot {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else if lastDot > lastComma {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price format %q", value)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative price %q", value)
	}
	return catalog.CentsFromFloat(v), nil
}
