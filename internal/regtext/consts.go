package regtext

const (
	// ============================================================================
	// .reg File Format Tokens
	// ============================================================================

	// RegFileHeader is the header line for Unicode .reg files (regedit 5.00)
	RegFileHeader = "Windows Registry Editor Version 5.00"

	// RegFileHeaderANSI is the header line for legacy ANSI .reg files
	RegFileHeaderANSI = "REGEDIT4"

	// ============================================================================
	// Delimiters and Structural Tokens
	// ============================================================================

	// KeyOpenBracket marks the start of a registry key path
	KeyOpenBracket = "["

	// KeyCloseBracket marks the end of a registry key path
	KeyCloseBracket = "]"

	// DeleteKeyPrefix marks a key for deletion (e.g., [-HKEY_CURRENT_USER\...])
	DeleteKeyPrefix = "-"

	// ValueAssignment separates value names from their data
	ValueAssignment = "="

	// DefaultValuePrefix marks the default (unnamed) value
	DefaultValuePrefix = "@="

	// DeleteValueToken marks a value for deletion
	DeleteValueToken = "-"

	// CommentPrefix marks a comment line
	CommentPrefix = ";"

	// LineContinuation ends a hex line that continues on the next line
	LineContinuation = "\\"

	// ============================================================================
	// Quote and Escape Characters
	// ============================================================================

	Quote            = "\""
	Backslash        = "\\"
	EscapedQuote     = "\\\""
	EscapedBackslash = "\\\\"

	// ============================================================================
	// Line Endings
	// ============================================================================

	CRLF = "\r\n"
	CR   = "\r"

	// ============================================================================
	// Value Type Prefixes
	// ============================================================================

	// HexPrefix identifies binary data in .reg format
	HexPrefix = "hex"

	// HexExpandSZPrefix identifies REG_EXPAND_SZ values (type 2)
	HexExpandSZPrefix = "hex(2):"

	// HexSZPrefix identifies REG_SZ values written as hex (type 1)
	HexSZPrefix = "hex(1):"

	// HexByteSeparator separates bytes in hex data
	HexByteSeparator = ","

	// HexByteFormat is the format string for a single hex byte
	HexByteFormat = "%02x"

	// hexLineWidth wraps emitted hex data the way regedit does
	hexLineWidth = 76

	// ============================================================================
	// Encoding Names
	// ============================================================================

	// EncodingUTF16LE is the regedit 5.00 default
	EncodingUTF16LE = "UTF-16LE"

	// EncodingUTF8 is accepted on input and available on output
	EncodingUTF8 = "UTF-8"

	// EncodingANSI selects REGEDIT4 with Windows-1252 text
	EncodingANSI = "ANSI"

	// ============================================================================
	// Scanner Sizes
	// ============================================================================

	ScannerInitialBufferSize = 64 * 1024   // 64KB
	ScannerMaxLineSize       = 1024 * 1024 // 1MB
)

var (
	// UTF16LEBOM is the byte order mark for UTF-16 little-endian
	UTF16LEBOM = []byte{0xFF, 0xFE}

	// UTF8BOM is the byte order mark for UTF-8
	UTF8BOM = []byte{0xEF, 0xBB, 0xBF}
)
