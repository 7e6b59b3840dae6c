// Package chars holds lookup tables used to classify every byte the parser consumes.
package chars

// Class is a bitmask of the grammatical roles a byte may play.
type Class uint8

const (
	// Token is tchar from RFC 9110 5.6.2: header names and methods.
	Token Class = 1 << iota
	// URL marks bytes allowed inside the request-target.
	URL
	// Value marks bytes allowed inside a field value: HTAB, SP, VCHAR and obs-text.
	Value
	// Space is SP or HTAB.
	Space
	// Digit is 0-9.
	Digit
	// Hex is 0-9, a-f and A-F.
	Hex
	// Alpha is a-z and A-Z.
	Alpha
)

const noHex = 0xFF

var (
	table    = buildTable()
	halfbyte = buildHalfbyte()
)

func buildTable() (t [256]Class) {
	for c := 0; c < 256; c++ {
		var class Class

		switch {
		case c >= '0' && c <= '9':
			class |= Token | Digit | Hex
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			class |= Token | Alpha
			if lower := c | 0x20; lower >= 'a' && lower <= 'f' {
				class |= Hex
			}
		}

		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
			class |= Token
		case ' ', '\t':
			class |= Space | Value
		}

		if c > 0x20 && c != 0x7F {
			class |= URL | Value
		}

		t[c] = class
	}

	return t
}

func buildHalfbyte() (t [256]byte) {
	for i := range t {
		t[i] = noHex
	}

	for c := '0'; c <= '9'; c++ {
		t[c] = byte(c - '0')
	}

	for c := 'a'; c <= 'f'; c++ {
		t[c] = byte(c-'a') + 10
		t[c-0x20] = byte(c-'a') + 10
	}

	return t
}

// Is reports whether c belongs to the class.
func Is(c byte, class Class) bool {
	return table[c]&class != 0
}

func IsToken(c byte) bool {
	return table[c]&Token != 0
}

func IsURL(c byte) bool {
	return table[c]&URL != 0
}

func IsValue(c byte) bool {
	return table[c]&Value != 0
}

func IsSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func IsAlpha(c byte) bool {
	return table[c]&Alpha != 0
}

// Halfbyte returns the value of a hex digit and false if c isn't one.
func Halfbyte(c byte) (byte, bool) {
	v := halfbyte[c]
	return v, v != noHex
}

// Lower folds an ASCII letter to lower case. Other bytes are returned as is.
func Lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c | 0x20
	}

	return c
}
