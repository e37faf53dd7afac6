package wildcard

// Pattern is a glob as KEYS understands it:
// * matches any run of bytes, ? matches one byte, [abc] [^abc] [a-z] match
// one byte against a class and \ escapes the next byte
type Pattern struct {
	src string
}

func CompilePattern(src string) *Pattern {
	return &Pattern{src: src}
}

// LiteralPrefix returns the bytes every match must start with
func (p *Pattern) LiteralPrefix() string {
	for i := 0; i < len(p.src); i++ {
		switch p.src[i] {
		case '*', '?', '[', '\\':
			return p.src[:i]
		}
	}
	return p.src
}

// IsMatch reports whether s matches the whole pattern
func (p *Pattern) IsMatch(s string) bool {
	pattern := p.src
	pi, si := 0, 0
	// resume point of the last star: pattern index after it and the input index it consumed up to
	starP, starS := -1, 0

	for si < len(s) {
		if pi < len(pattern) {
			switch pattern[pi] {
			case '*':
				starP, starS = pi+1, si
				pi++
				continue
			case '?':
				pi++
				si++
				continue
			case '[':
				if next, ok := matchClass(pattern, pi, s[si]); ok {
					pi = next
					si++
					continue
				}
			case '\\':
				if pi+1 < len(pattern) && pattern[pi+1] == s[si] {
					pi += 2
					si++
					continue
				}
			default:
				if pattern[pi] == s[si] {
					pi++
					si++
					continue
				}
			}
		}
		if starP < 0 {
			return false
		}
		starS++
		pi, si = starP, starS
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}

// matchClass matches c against the class opening at pattern[start], it
// returns the index after the closing bracket
func matchClass(pattern string, start int, c byte) (int, bool) {
	i := start + 1
	negate := false
	if i < len(pattern) && pattern[i] == '^' {
		negate = true
		i++
	}
	matched := false
	for i < len(pattern) && pattern[i] != ']' {
		switch {
		case pattern[i] == '\\' && i+1 < len(pattern):
			if pattern[i+1] == c {
				matched = true
			}
			i += 2
		case i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']':
			lo, hi := pattern[i], pattern[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				matched = true
			}
			i += 3
		default:
			if pattern[i] == c {
				matched = true
			}
			i++
		}
	}
	if i >= len(pattern) {
		// unterminated class never matches
		return 0, false
	}
	return i + 1, matched != negate
}
