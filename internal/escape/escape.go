// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON string contents.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// ErrIncomplete is reported by Unquote for an escape sequence that is cut
// off by the end of its input.
var ErrIncomplete = errors.New("incomplete escape sequence")

// ErrInvalid is reported by Unquote for an unknown escape sequence, or a \u
// sequence without four hexadecimal digits.
var ErrInvalid = errors.New("invalid escape sequence")

// shortEsc maps control bytes that have a two-character escape to the letter
// following the backslash.
var shortEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  0, // sentinel
}

const hexDigit = "0123456789abcdef"

// AppendQuote appends the JSON string encoding of src to dst, including the
// enclosing double quotation marks, and returns the extended slice.
func AppendQuote(dst []byte, src mem.RO) []byte {
	dst = append(dst, '"')
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		src = src.SliceFrom(max(n, 1))

		switch {
		case r == '"' || r == '\\':
			dst = append(dst, '\\', byte(r))
		case r < ' ':
			if b := shortEsc[r]; b != 0 {
				dst = append(dst, '\\', b)
			} else {
				dst = append(dst, '\\', 'u', '0', '0', hexDigit[r>>4], hexDigit[r&15])
			}
		case r < utf8.RuneSelf:
			dst = append(dst, byte(r))
		case r == utf8.RuneError, r == '\u2028', r == '\u2029':
			dst = fmt.Appendf(dst, `\u%04x`, r)
		default:
			dst = utf8.AppendRune(dst, r)
		}
	}
	return append(dst, '"')
}

// Unquote decodes the contents of a JSON string, with the enclosing quotation
// marks already removed. Escape sequences are replaced by the bytes they
// denote, and a UTF-16 surrogate pair written as two \u escapes becomes a
// single rune. An unpaired surrogate becomes the Unicode replacement rune.
//
// Unquote reports ErrIncomplete if src ends inside an escape sequence, and
// ErrInvalid if src contains an unknown or malformed escape sequence.
func Unquote(src mem.RO) ([]byte, error) {
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(nil, src), nil
	}
	dec := make([]byte, 0, src.Len())
	for i >= 0 {
		dec = mem.Append(dec, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, ErrIncomplete
		}

		c := src.At(0)
		src = src.SliceFrom(1)
		switch c {
		case '"', '\\', '/':
			dec = append(dec, c)
		case 'b':
			dec = append(dec, '\b')
		case 'f':
			dec = append(dec, '\f')
		case 'n':
			dec = append(dec, '\n')
		case 'r':
			dec = append(dec, '\r')
		case 't':
			dec = append(dec, '\t')
		case 'u':
			v, err := unquoteHex4(src)
			if err != nil {
				return nil, err
			}
			src = src.SliceFrom(4)
			if utf16.IsSurrogate(v) {
				// Look for the low half of a pair.
				if src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
					if w, err := unquoteHex4(src.SliceFrom(2)); err == nil {
						if r := utf16.DecodeRune(v, w); r != utf8.RuneError {
							v = r
							src = src.SliceFrom(6)
						}
					}
				}
				if utf16.IsSurrogate(v) {
					v = utf8.RuneError
				}
			}
			dec = utf8.AppendRune(dec, v)
		default:
			return nil, fmt.Errorf("%w: \\%c", ErrInvalid, c)
		}
		i = mem.IndexByte(src, '\\')
	}
	return mem.Append(dec, src), nil
}

// unquoteHex4 decodes the four hexadecimal digits at the front of src.
func unquoteHex4(src mem.RO) (rune, error) {
	if src.Len() < 4 {
		return 0, ErrIncomplete
	}
	v, ok := parseHex4(src.SliceTo(4))
	if !ok {
		return 0, fmt.Errorf("%w: \\u%s", ErrInvalid, src.SliceTo(4).StringCopy())
	}
	return v, nil
}

func parseHex4(data mem.RO) (rune, bool) {
	var v rune
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		switch {
		case '0' <= b && b <= '9':
			v += rune(b - '0')
		case 'a' <= b && b <= 'f':
			v += rune(b - 'a' + 10)
		case 'A' <= b && b <= 'F':
			v += rune(b - 'A' + 10)
		default:
			return 0, false
		}
	}
	return v, true
}
