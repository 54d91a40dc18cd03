package normalize

import (
	"regexp"
	"strings"
)

var (
	streetReplacements = map[string]string{
		"street":    "st",
		"avenue":    "ave",
		"drive":     "dr",
		"road":      "rd",
		"boulevard": "blvd",
		"lane":      "ln",
		"court":     "ct",
		"place":     "pl",
		"circle":    "cir",
		"crescent":  "cres",
		"terrace":   "ter",
		"highway":   "hwy",
		"parkway":   "pkwy",
		"square":    "sq",
		"apartment": "apt",
		"suite":     "ste",
	}
	provinceReplacements = map[string]string{
		"ontario":          "on",
		"quebec":           "qc",
		"british columbia": "bc",
		"alberta":          "ab",
		"manitoba":         "mb",
		"saskatchewan":     "sk",
		"nova scotia":      "ns",
		"new brunswick":    "nb",
	}
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
	wordRegex       = regexp.MustCompile(`[a-z0-9]+`)
)

// Address lowercases, strips punctuation and abbreviates street and province
// words so UI text and fixture text compare equal.
func Address(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	addr = strings.ReplaceAll(addr, "|", " ")
	addr = nonAlnumRegex.ReplaceAllString(addr, " ")
	addr = multiSpaceRegex.ReplaceAllString(addr, " ")
	for full, abbrev := range provinceReplacements {
		addr = strings.ReplaceAll(addr, full, abbrev)
	}
	words := wordRegex.FindAllString(addr, -1)
	for i, w := range words {
		if abbrev, ok := streetReplacements[w]; ok {
			words[i] = abbrev
		}
	}
	return strings.Join(words, " ")
}

// Postcode uppercases and drops whitespace: "m5v 2t6" -> "M5V2T6".
func Postcode(pc string) string {
	return strings.ToUpper(multiSpaceRegex.ReplaceAllString(strings.TrimSpace(pc), ""))
}

// City pulls the city out of "Street|City, Province Postcode" style text.
func City(address string) string {
	parts := strings.FieldsFunc(address, func(r rune) bool { return r == '|' || r == ',' })
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) >= 2 {
		return kept[len(kept)-2]
	}
	return ""
}

// Mentions reports whether the normalised haystack contains the normalised
// needle, so "Toronto, ON" matches "123 King Street|Toronto, Ontario".
func Mentions(haystack, needle string) bool {
	n := Address(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Address(haystack), n)
}
