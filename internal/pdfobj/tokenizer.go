package pdfobj

import (
	"bytes"
	"strconv"
)

// Low-level byte scanning, adapted from the teacher's
// internal/pdf/merge/parser.go (FindObjectBoundaries, SkipStringLiteral,
// SkipHexString, SkipDictionary, SkipArray, FindEndObj): that file only
// ever skipped over these constructs to find object boundaries for a
// byte-patching merge. Here the same scanning rules drive a real
// recursive-descent parser that builds a typed Object tree instead of
// leaving the bytes opaque.

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func skipWS(data []byte, p int) int {
	n := len(data)
	for p < n {
		if isWhitespace(data[p]) {
			p++
			continue
		}
		if data[p] == '%' {
			for p < n && data[p] != '\r' && data[p] != '\n' {
				p++
			}
			continue
		}
		break
	}
	return p
}

// parseValue parses a single PDF object starting at p (whitespace already
// allowed before it) and returns the object and the position just past it.
func parseValue(data []byte, p int) (Object, int, bool) {
	p = skipWS(data, p)
	n := len(data)
	if p >= n {
		return nil, p, false
	}

	switch {
	case data[p] == '/':
		return parseName(data, p)
	case data[p] == '(':
		return parseLiteralString(data, p)
	case data[p] == '<' && p+1 < n && data[p+1] == '<':
		return parseDictOrStream(data, p)
	case data[p] == '<':
		return parseHexString(data, p)
	case data[p] == '[':
		return parseArray(data, p)
	case matchKeyword(data, p, "true"):
		return Boolean(true), p + 4, true
	case matchKeyword(data, p, "false"):
		return Boolean(false), p + 5, true
	case matchKeyword(data, p, "null"):
		return Null{}, p + 4, true
	case data[p] == '+' || data[p] == '-' || data[p] == '.' || (data[p] >= '0' && data[p] <= '9'):
		return parseNumberOrReference(data, p)
	}
	return nil, p, false
}

func matchKeyword(data []byte, p int, kw string) bool {
	n := len(data)
	if p+len(kw) > n {
		return false
	}
	if string(data[p:p+len(kw)]) != kw {
		return false
	}
	end := p + len(kw)
	if end < n && !isWhitespace(data[end]) && !isDelimiter(data[end]) {
		return false
	}
	return true
}

func parseName(data []byte, p int) (Object, int, bool) {
	n := len(data)
	p++ // skip '/'
	start := p
	var buf []byte
	for p < n && !isWhitespace(data[p]) && !isDelimiter(data[p]) {
		if data[p] == '#' && p+2 < n && isHexDigit(data[p+1]) && isHexDigit(data[p+2]) {
			if buf == nil {
				buf = append(buf, data[start:p]...)
			}
			v, _ := strconv.ParseUint(string(data[p+1:p+3]), 16, 8)
			buf = append(buf, byte(v))
			p += 3
			continue
		}
		if buf != nil {
			buf = append(buf, data[p])
		}
		p++
	}
	if buf != nil {
		return Name(buf), p, true
	}
	return Name(data[start:p]), p, true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func parseLiteralString(data []byte, p int) (Object, int, bool) {
	n := len(data)
	p++ // skip '('
	depth := 1
	var buf []byte
	for p < n && depth > 0 {
		c := data[p]
		switch {
		case c == '\\' && p+1 < n:
			p++
			e := data[p]
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '(', ')', '\\':
				buf = append(buf, e)
			case '\r':
				if p+1 < n && data[p+1] == '\n' {
					p++
				}
			case '\n':
				// line continuation, emits nothing
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && p+1 < n && data[p+1] >= '0' && data[p+1] <= '7'; k++ {
						p++
						val = val*8 + int(data[p]-'0')
					}
					buf = append(buf, byte(val))
				} else {
					buf = append(buf, e)
				}
			}
			p++
		case c == '(':
			depth++
			buf = append(buf, c)
			p++
		case c == ')':
			depth--
			p++
			if depth > 0 {
				buf = append(buf, c)
			}
		default:
			buf = append(buf, c)
			p++
		}
	}
	return String(buf), p, true
}

func parseHexString(data []byte, p int) (Object, int, bool) {
	n := len(data)
	p++ // skip '<'
	var hex []byte
	for p < n && data[p] != '>' {
		if isHexDigit(data[p]) {
			hex = append(hex, data[p])
		}
		p++
	}
	if p < n {
		p++ // skip '>'
	}
	if len(hex)%2 == 1 {
		hex = append(hex, '0')
	}
	out := make([]byte, len(hex)/2)
	for i := 0; i < len(out); i++ {
		v, _ := strconv.ParseUint(string(hex[i*2:i*2+2]), 16, 8)
		out[i] = byte(v)
	}
	return String(out), p, true
}

func parseArray(data []byte, p int) (Object, int, bool) {
	n := len(data)
	p++ // skip '['
	arr := Array{}
	for {
		p = skipWS(data, p)
		if p >= n {
			return arr, p, true
		}
		if data[p] == ']' {
			return arr, p + 1, true
		}
		v, next, ok := parseValue(data, p)
		if !ok {
			return arr, p + 1, true
		}
		arr = append(arr, v)
		p = next
	}
}

func parseDictOrStream(data []byte, p int) (Object, int, bool) {
	n := len(data)
	p += 2 // skip '<<'
	dict := Dict{}
	for {
		p = skipWS(data, p)
		if p >= n {
			break
		}
		if data[p] == '>' && p+1 < n && data[p+1] == '>' {
			p += 2
			break
		}
		if data[p] != '/' {
			// Malformed dictionary entry: skip one byte and keep going
			// rather than aborting the whole object (spec.md §7: a
			// malformed element is left untouched, never fatal).
			p++
			continue
		}
		keyObj, next, ok := parseName(data, p)
		if !ok {
			break
		}
		key := keyObj.(Name)
		p = skipWS(data, next)
		val, next2, ok := parseValue(data, p)
		if !ok {
			break
		}
		dict[key] = val
		p = next2
	}

	// Look ahead for `stream`.
	lookahead := skipWSNoComment(data, p)
	if matchKeyword(data, lookahead, "stream") {
		sp := lookahead + len("stream")
		if sp < n && data[sp] == '\r' {
			sp++
		}
		if sp < n && data[sp] == '\n' {
			sp++
		}
		length, haveLen := lengthFromDict(dict)
		var raw []byte
		var end int
		if haveLen && sp+length <= n {
			raw = data[sp : sp+length]
			end = sp + length
			end = skipWS(data, end)
			if matchKeyword(data, end, "endstream") {
				end += len("endstream")
			} else {
				// Declared /Length didn't land on endstream: fall back
				// to scanning for the keyword, a corrupt-but-recoverable
				// input per spec.md §7.
				raw, end = scanForEndstream(data, sp)
			}
		} else {
			raw, end = scanForEndstream(data, sp)
		}
		return Stream{Dict: dict, Raw: raw}, end, true
	}

	return dict, p, true
}

// skipWSNoComment skips only literal whitespace, not comments, since a
// `%` right after a dictionary is vanishingly rare and comments before
// `stream` are not part of the grammar PDF producers emit in practice;
// kept separate from skipWS to avoid swallowing a `%PDF` style token.
func skipWSNoComment(data []byte, p int) int {
	n := len(data)
	for p < n && isWhitespace(data[p]) {
		p++
	}
	return p
}

func lengthFromDict(dict Dict) (int, bool) {
	v, ok := dict[Name("Length")]
	if !ok {
		return 0, false
	}
	i, ok := AsInt(v)
	if !ok {
		return 0, false
	}
	if i < 0 {
		return 0, false
	}
	return int(i), true
}

func scanForEndstream(data []byte, from int) ([]byte, int) {
	idx := bytes.Index(data[from:], []byte("endstream"))
	if idx == -1 {
		return data[from:], len(data)
	}
	end := from + idx
	content := data[from:end]
	for len(content) > 0 {
		last := content[len(content)-1]
		if last == '\r' || last == '\n' {
			content = content[:len(content)-1]
		} else {
			break
		}
	}
	return content, end + len("endstream")
}

func parseNumberOrReference(data []byte, p int) (Object, int, bool) {
	n := len(data)
	start := p
	isReal := false
	if data[p] == '+' || data[p] == '-' {
		p++
	}
	for p < n && ((data[p] >= '0' && data[p] <= '9') || data[p] == '.') {
		if data[p] == '.' {
			isReal = true
		}
		p++
	}
	text := string(data[start:p])
	if isReal {
		f, _ := strconv.ParseFloat(text, 64)
		return Real(f), p, true
	}

	num, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		f, _ := strconv.ParseFloat(text, 64)
		return Real(f), p, true
	}

	// Look ahead for "G R" to decide whether this is an indirect
	// reference rather than a bare integer.
	save := p
	q := skipWS(data, p)
	genStart := q
	for q < n && data[q] >= '0' && data[q] <= '9' {
		q++
	}
	if q > genStart {
		gen, _ := strconv.Atoi(string(data[genStart:q]))
		r := skipWS(data, q)
		if matchKeyword(data, r, "R") {
			return Reference{Num: int(num), Gen: gen}, r + 1, true
		}
	}
	return Integer(num), save, true
}
