package regtext

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

// Parse decodes a .reg file into a Document. Both the regedit 5.00 header
// (UTF-16LE or UTF-8) and REGEDIT4 (Windows-1252) are accepted.
func Parse(data []byte) (*Document, error) {
	text, isANSI, err := decodeInput(data)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, ScannerInitialBufferSize), ScannerMaxLineSize)

	doc := &Document{ANSI: isANSI}
	seenHeader := false
	var current *Section
	var pending strings.Builder

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), CR)
		trim := strings.TrimSpace(line)

		// Hex payloads continue across lines ending with a backslash.
		if pending.Len() > 0 {
			pending.WriteString(trim)
			if strings.HasSuffix(trim, LineContinuation) {
				continue
			}
			trim = pending.String()
			pending.Reset()
		} else if current != nil && isContinued(trim) {
			pending.WriteString(trim)
			continue
		}

		if trim == "" || strings.HasPrefix(trim, CommentPrefix) {
			continue
		}
		if !seenHeader {
			switch trim {
			case RegFileHeader:
			case RegFileHeaderANSI:
				doc.ANSI = true
			default:
				return nil, errors.New("regtext: missing header")
			}
			seenHeader = true
			continue
		}
		if strings.HasPrefix(trim, KeyOpenBracket) {
			if !strings.HasSuffix(trim, KeyCloseBracket) {
				return nil, fmt.Errorf("regtext: malformed section %q", trim)
			}
			sec := Section{Path: strings.TrimSuffix(strings.TrimPrefix(trim, KeyOpenBracket), KeyCloseBracket)}
			if strings.HasPrefix(sec.Path, DeleteKeyPrefix) {
				sec.Delete = true
				sec.Path = strings.TrimSpace(sec.Path[len(DeleteKeyPrefix):])
			}
			if sec.Path == "" {
				return nil, fmt.Errorf("regtext: empty section %q", trim)
			}
			doc.Sections = append(doc.Sections, sec)
			current = &doc.Sections[len(doc.Sections)-1]
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("regtext: value without section: %q", trim)
		}
		if current.Delete {
			return nil, fmt.Errorf("regtext: value under deleted section %q", current.Path)
		}
		v, err := parseValueLine(trim, doc.ANSI)
		if err != nil {
			return nil, err
		}
		current.Values = append(current.Values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if pending.Len() > 0 {
		return nil, errors.New("regtext: unterminated line continuation")
	}
	if !seenHeader {
		return nil, errors.New("regtext: missing header")
	}
	return doc, nil
}

// isContinued reports whether a value line carries an unterminated hex
// payload.
func isContinued(line string) bool {
	if !strings.HasSuffix(line, LineContinuation) || strings.HasPrefix(line, KeyOpenBracket) {
		return false
	}
	return strings.Contains(line, ValueAssignment+HexPrefix)
}

func parseValueLine(line string, isANSI bool) (Value, error) {
	if strings.HasPrefix(line, DefaultValuePrefix) {
		return parsePayload("", line[len(DefaultValuePrefix):], isANSI)
	}
	if !strings.HasPrefix(line, Quote) {
		return Value{}, fmt.Errorf("regtext: malformed value line %q", line)
	}
	end := findClosingQuote(line)
	if end < 0 {
		return Value{}, fmt.Errorf("regtext: unterminated value name in %q", line)
	}
	name := unescapeRegString(line[1:end])
	rest := line[end+1:]
	if !strings.HasPrefix(rest, ValueAssignment) {
		return Value{}, fmt.Errorf("regtext: missing '=' in %q", line)
	}
	return parsePayload(name, rest[len(ValueAssignment):], isANSI)
}

func parsePayload(name, payload string, isANSI bool) (Value, error) {
	payload = strings.TrimSpace(payload)
	v := Value{Name: name}

	switch {
	case payload == DeleteValueToken:
		v.Delete = true
	case strings.HasPrefix(payload, Quote):
		if len(payload) < 2 || findClosingQuote(payload) != len(payload)-1 {
			return Value{}, fmt.Errorf("regtext: unterminated string %q", payload)
		}
		v.Kind = KindString
		v.Data = unescapeRegString(payload[1 : len(payload)-1])
	case strings.HasPrefix(payload, HexSZPrefix), strings.HasPrefix(payload, HexExpandSZPrefix):
		raw, err := parseHexBytes(payload)
		if err != nil {
			return Value{}, fmt.Errorf("regtext: value %q: %w", name, err)
		}
		decode := DecodeUTF16Z
		if isANSI {
			decode = DecodeANSIZ
		}
		s, err := decode(raw)
		if err != nil {
			return Value{}, fmt.Errorf("regtext: value %q: %w", name, err)
		}
		v.Kind = KindString
		if strings.HasPrefix(payload, HexExpandSZPrefix) {
			v.Kind = KindExpandString
		}
		v.Data = s
	case strings.HasPrefix(payload, HexPrefix), strings.HasPrefix(payload, "dword:"):
		v.Kind = KindRaw
		v.Raw = strings.ReplaceAll(payload, LineContinuation, "")
	default:
		return Value{}, fmt.Errorf("regtext: unsupported value %q", payload)
	}
	return v, nil
}
