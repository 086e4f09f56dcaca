package regtext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	errUnsupportedEncoding = errors.New("regtext: unsupported encoding")

	utf16LE    = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	utf16LEBOM = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	ansi       encoding.Encoding = charmap.Windows1252
)

// EncodeUTF16Z marshals s as a NUL-terminated UTF-16LE REG_SZ payload.
func EncodeUTF16Z(s string) ([]byte, error) {
	b, err := utf16LE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("regtext: encode utf-16le: %w", err)
	}
	return append(b, 0, 0), nil
}

// DecodeUTF16Z unmarshals a UTF-16LE REG_SZ payload, dropping the terminator
// and anything after it.
func DecodeUTF16Z(b []byte) (string, error) {
	if len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			b = b[:i]
			break
		}
	}
	out, err := utf16LE.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("regtext: decode utf-16le: %w", err)
	}
	return string(out), nil
}

// EncodeANSIZ marshals s as a NUL-terminated Windows-1252 payload, one byte
// per character.
func EncodeANSIZ(s string) ([]byte, error) {
	b, err := ansi.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("regtext: encode windows-1252: %w", err)
	}
	return append(b, 0), nil
}

// DecodeANSIZ unmarshals a Windows-1252 payload up to the first NUL.
func DecodeANSIZ(b []byte) (string, error) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	out, err := ansi.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("regtext: decode windows-1252: %w", err)
	}
	return string(out), nil
}

// decodeInput converts file bytes to UTF-8 text. UTF-16LE is recognised by its
// BOM (or by a zero high byte on the first character), UTF-8 by its BOM, and
// REGEDIT4 files by their header.
func decodeInput(data []byte) (string, bool, error) {
	switch {
	case bytes.HasPrefix(data, UTF16LEBOM), len(data) >= 2 && data[0] != 0 && data[1] == 0:
		out, err := utf16LEBOM.NewDecoder().Bytes(data)
		if err != nil {
			return "", false, fmt.Errorf("regtext: decode utf-16le: %w", err)
		}
		return string(out), false, nil
	case bytes.HasPrefix(data, UTF8BOM):
		return string(data[len(UTF8BOM):]), false, nil
	case bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte(RegFileHeaderANSI)):
		out, err := ansi.NewDecoder().Bytes(data)
		if err != nil {
			return "", true, fmt.Errorf("regtext: decode windows-1252: %w", err)
		}
		return string(out), true, nil
	default:
		return string(data), false, nil
	}
}

// encodeOutput converts UTF-8 text to the requested file encoding.
func encodeOutput(text string, enc string) ([]byte, error) {
	switch strings.ToUpper(enc) {
	case "", EncodingUTF16LE:
		out, err := utf16LEBOM.NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("regtext: encode utf-16le: %w", err)
		}
		return out, nil
	case EncodingUTF8:
		return []byte(text), nil
	case EncodingANSI:
		out, err := ansi.NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("regtext: encode windows-1252: %w", err)
		}
		return out, nil
	default:
		return nil, errUnsupportedEncoding
	}
}
