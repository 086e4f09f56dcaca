package regtext

import (
	"fmt"
	"strings"
)

// EncodeOptions controls .reg output.
type EncodeOptions struct {
	// Encoding is EncodingUTF16LE (default, with BOM), EncodingUTF8 or
	// EncodingANSI. ANSI output uses the REGEDIT4 header. When empty and the
	// document was parsed from REGEDIT4, ANSI is used.
	Encoding string
}

// Encode renders doc as .reg text in the requested encoding. Sections and
// values are written in document order.
func Encode(doc *Document, opts EncodeOptions) ([]byte, error) {
	enc := strings.ToUpper(opts.Encoding)
	if enc == "" && doc.ANSI {
		enc = EncodingANSI
	}
	isANSI := enc == EncodingANSI

	var buf strings.Builder
	if isANSI {
		buf.WriteString(RegFileHeaderANSI + CRLF + CRLF)
	} else {
		buf.WriteString(RegFileHeader + CRLF + CRLF)
	}

	for _, sec := range doc.Sections {
		buf.WriteString(KeyOpenBracket)
		if sec.Delete {
			buf.WriteString(DeleteKeyPrefix)
		}
		buf.WriteString(sec.Path)
		buf.WriteString(KeyCloseBracket + CRLF)
		for _, v := range sec.Values {
			if err := emitValue(&buf, v, isANSI); err != nil {
				return nil, fmt.Errorf("regtext: section %q: %w", sec.Path, err)
			}
		}
		buf.WriteString(CRLF)
	}
	return encodeOutput(buf.String(), enc)
}

func emitValue(buf *strings.Builder, v Value, isANSI bool) error {
	var head string
	if v.Name == "" {
		head = DefaultValuePrefix
	} else {
		head = Quote + escapeString(v.Name) + Quote + ValueAssignment
	}
	buf.WriteString(head)

	switch {
	case v.Delete:
		buf.WriteString(DeleteValueToken)
	case v.Kind == KindString && !strings.ContainsAny(v.Data, "\r\n"):
		buf.WriteString(Quote)
		buf.WriteString(escapeString(v.Data))
		buf.WriteString(Quote)
	case v.Kind == KindString, v.Kind == KindExpandString:
		// Line breaks cannot appear in a quoted string; such REG_SZ data
		// goes out as hex(1).
		prefix := HexSZPrefix
		if v.Kind == KindExpandString {
			prefix = HexExpandSZPrefix
		}
		encode := EncodeUTF16Z
		if isANSI {
			encode = EncodeANSIZ
		}
		data, err := encode(v.Data)
		if err != nil {
			return fmt.Errorf("value %q: %w", v.Name, err)
		}
		buf.WriteString(prefix)
		buf.WriteString(formatHex(data, len(head)+len(prefix)))
	case v.Kind == KindRaw:
		buf.WriteString(v.Raw)
	default:
		return fmt.Errorf("value %q: unknown kind %d", v.Name, v.Kind)
	}
	buf.WriteString(CRLF)
	return nil
}
