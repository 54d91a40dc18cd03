package normalize

import "strings"

// Price reads the digits out of a formatted price: "$1,149,900" -> 1149900.
// Anything after a decimal point or a range dash is ignored.
func Price(s string) int {
	if i := strings.IndexAny(s, ".-"); i >= 0 {
		s = s[:i]
	}
	var result int
	for _, c := range s {
		if c >= '0' && c <= '9' {
			result = result*10 + int(c-'0')
		}
	}
	return result
}

// ShortPrice understands "1.15M" and "850K" as well as plain prices.
func ShortPrice(s string) int {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	mult := 1
	switch {
	case strings.HasSuffix(strings.ToUpper(s), "M"):
		mult = 1_000_000
		s = s[:len(s)-1]
	case strings.HasSuffix(strings.ToUpper(s), "K"):
		mult = 1_000
		s = s[:len(s)-1]
	default:
		return Price(s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	value := Price(whole) * mult
	scale := mult / 10
	for _, c := range frac {
		if c < '0' || c > '9' || scale == 0 {
			break
		}
		value += int(c-'0') * scale
		scale /= 10
	}
	return value
}

// LeadingInt returns the first run of digits: "752 results" -> 752,
// "3 + 1" -> 3.
func LeadingInt(s string) int {
	var result int
	started := false
	for _, c := range s {
		if c >= '0' && c <= '9' {
			result = result*10 + int(c-'0')
			started = true
		} else if started && c != ',' {
			break
		}
	}
	return result
}

// Bedrooms splits "3 + 1" into (3, 1).
func Bedrooms(s string) (int, int) {
	main, plus, found := strings.Cut(s, "+")
	if !found {
		return LeadingInt(s), 0
	}
	return LeadingInt(main), LeadingInt(plus)
}
