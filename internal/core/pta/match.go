package pta

import "bytes"

// Match reports whether path is authorized by pattern.
//
// Pattern bytes are compared with path bytes from the start. A "\*" pair
// matches a literal '*' and turns wildcard handling off for the rest of the
// pattern. Otherwise a '*' ends the prefix: whatever follows it must be a
// suffix of path, and an empty remainder matches anything.
func Match(pattern, path []byte) bool {
	escaped := false
	idx := 0

	for wdx := 0; wdx < len(pattern); wdx++ {
		if pattern[wdx] == '\\' && wdx+1 < len(pattern) && pattern[wdx+1] == '*' {
			wdx++
			escaped = true
		}
		if !escaped && pattern[wdx] == '*' {
			return matchSuffix(pattern[wdx+1:], path, idx)
		}
		if idx >= len(path) || path[idx] != pattern[wdx] {
			return false
		}
		idx++
	}

	return idx == len(path)
}

// matchSuffix checks the tail of path after a wildcard. matched is the
// number of path bytes consumed by the prefix.
func matchSuffix(suffix, path []byte, matched int) bool {
	if len(suffix) == 0 {
		return true
	}
	if len(path)-matched < len(suffix) {
		return false
	}
	return bytes.Equal(path[len(path)-len(suffix):], suffix)
}

// MatchPayload matches the payload's URL pattern against path. It re-checks
// the padding value rather than trusting the parser.
func MatchPayload(p *Payload, path string) bool {
	if p == nil || !validPadding(p.padding) {
		return false
	}
	return Match(p.Pattern(), []byte(path))
}
