package netmock

import "strings"

// MatchGlob reports whether url matches a Playwright-style URL glob where
// "**" spans anything and "*" spans anything but "/".
func MatchGlob(pattern, url string) bool {
	return matchFrom(pattern, url)
}

func matchFrom(p, s string) bool {
	for len(p) > 0 {
		switch {
		case strings.HasPrefix(p, "**"):
			rest := strings.TrimLeft(p, "*")
			if rest == "" {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchFrom(rest, s[i:]) {
					return true
				}
			}
			return false
		case p[0] == '*':
			rest := p[1:]
			for i := 0; i <= len(s); i++ {
				if matchFrom(rest, s[i:]) {
					return true
				}
				if i < len(s) && s[i] == '/' {
					break
				}
			}
			return false
		default:
			if len(s) == 0 || p[0] != s[0] {
				return false
			}
			p, s = p[1:], s[1:]
		}
	}
	return len(s) == 0
}
