package pta

import (
	"net/http"
	"strings"
)

// ParamName is the query parameter and cookie name carrying the token.
const ParamName = "pta"

// Request is the part of an HTTP request the validator looks at.
type Request struct {
	// Path is the decoded request path the token must authorize.
	Path string

	// RawQuery is the query string without the leading '?'.
	RawQuery string

	// Cookies holds every Cookie header value in arrival order.
	Cookies []string
}

// RequestFromHTTP adapts r without modifying it.
func RequestFromHTTP(r *http.Request) Request {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	return Request{
		Path:     path,
		RawQuery: r.URL.RawQuery,
		Cookies:  r.Header.Values("Cookie"),
	}
}

// QueryToken returns the raw value of the first pta argument in rawQuery.
// The name is matched case-insensitively and the value is not unescaped.
func QueryToken(rawQuery string) (string, bool) {
	for rawQuery != "" {
		var arg string
		arg, rawQuery, _ = strings.Cut(rawQuery, "&")

		name, value, ok := strings.Cut(arg, "=")
		if ok && strings.EqualFold(name, ParamName) {
			return value, true
		}
	}
	return "", false
}

// StripQueryToken removes every pta argument from rawQuery.
func StripQueryToken(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	args := strings.Split(rawQuery, "&")
	kept := args[:0]
	for _, arg := range args {
		name, _, ok := strings.Cut(arg, "=")
		if ok && strings.EqualFold(name, ParamName) {
			continue
		}
		kept = append(kept, arg)
	}
	return strings.Join(kept, "&")
}

// CookieTokens returns every pta cookie value across headers, in header
// then occurrence order. Values run up to the next ';'; spaces around the
// name, around '=' and after ';' are skipped. Scanning resumes at the start
// of each matched value, so "pta=pta=abc" yields "pta=abc" and then "abc".
func CookieTokens(headers []string) []string {
	var tokens []string
	for _, h := range headers {
		tokens = appendCookieTokens(tokens, h)
	}
	return tokens
}

func appendCookieTokens(dst []string, h string) []string {
	if len(h) < len(ParamName) {
		return dst
	}

	pos := 0
	for pos < len(h) {
		if value, start, ok := matchCookie(h, pos); ok {
			dst = append(dst, value)
			pos = start
			continue
		}

		// skip past the current pair
		for pos < len(h) {
			c := h[pos]
			pos++
			if c == ';' {
				break
			}
		}
		for pos < len(h) && h[pos] == ' ' {
			pos++
		}
	}
	return dst
}

// matchCookie checks for a pta assignment at h[pos:]. On success it returns
// the value and the index where it starts, which is always past pos.
func matchCookie(h string, pos int) (string, int, bool) {
	end := pos + len(ParamName)
	if end > len(h) || !strings.EqualFold(h[pos:end], ParamName) {
		return "", 0, false
	}

	p := end
	for p < len(h) && h[p] == ' ' {
		p++
	}
	if p == len(h) || h[p] != '=' {
		return "", 0, false
	}
	p++
	for p < len(h) && h[p] == ' ' {
		p++
	}

	last := strings.IndexByte(h[p:], ';')
	if last < 0 {
		return h[p:], p, true
	}
	return h[p : p+last], p, true
}
