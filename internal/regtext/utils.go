package regtext

import (
	"errors"
	"fmt"
	"strings"
)

// unescapeRegString unescapes a string from .reg format.
// .reg files escape backslashes as \\ and quotes as \"
func unescapeRegString(s string) string {
	// Fast path: no backslashes = no escapes
	if strings.IndexByte(s, '\\') == -1 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '"') {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, Backslash, EscapedBackslash)
	s = strings.ReplaceAll(s, Quote, EscapedQuote)
	return s
}

// findClosingQuote finds the position of the closing quote in a line,
// accounting for escaped quotes (preceded by an odd number of backslashes).
// Returns -1 if no valid closing quote is found.
// The search starts at position 1 (assuming the opening quote is at position 0).
func findClosingQuote(line string) int {
	for i := 1; i < len(line); i++ {
		if line[i] != '"' {
			continue
		}
		numBackslashes := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			numBackslashes++
		}
		if numBackslashes%2 == 1 {
			continue
		}
		return i
	}
	return -1
}

// parseHexBytes parses hex data from .reg format (hex(2):01,02,03,...).
// The prefix up to and including the colon is skipped; whitespace and line
// continuations between bytes are ignored.
func parseHexBytes(hexStr string) ([]byte, error) {
	colonPos := strings.IndexByte(hexStr, ':')
	if colonPos == -1 {
		return nil, errors.New("invalid hex data format: missing colon")
	}
	hexStr = hexStr[colonPos+1:]

	result := make([]byte, 0, len(hexStr)/3+1)
	for _, p := range strings.Split(hexStr, HexByteSeparator) {
		p = strings.Trim(p, " \t\r\n\\")
		if p == "" {
			continue
		}
		if len(p) > 2 {
			return nil, fmt.Errorf("invalid hex byte %q", p)
		}
		var v byte
		for i := 0; i < len(p); i++ {
			n := hexCharToNibble(p[i])
			if n == 0xFF {
				return nil, fmt.Errorf("invalid hex byte %q", p)
			}
			v = v<<4 | n
		}
		result = append(result, v)
	}
	return result, nil
}

// hexCharToNibble converts a hex character to its 4-bit value
// Returns 0xFF for invalid characters.
func hexCharToNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0xFF
	}
}

// formatHex renders data as comma separated bytes, wrapped with line
// continuations. prefixLen is the number of characters already written on the
// first line.
func formatHex(data []byte, prefixLen int) string {
	if len(data) == 0 {
		return ""
	}
	var b strings.Builder
	col := prefixLen
	for i, c := range data {
		fmt.Fprintf(&b, HexByteFormat, c)
		col += 2
		if i == len(data)-1 {
			break
		}
		b.WriteString(HexByteSeparator)
		col++
		if col >= hexLineWidth {
			b.WriteString(LineContinuation + CRLF + "  ")
			col = 2
		}
	}
	return b.String()
}
