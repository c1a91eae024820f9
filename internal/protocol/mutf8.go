package protocol

import "unicode/utf16"

// appendModifiedUTF8 encodes s as a u16 length followed by modified UTF-8:
// UTF-16 code units, with U+0000 written as C0 80 and surrogates encoded
// individually as three-byte sequences.
func appendModifiedUTF8(dst []byte, s string) ([]byte, error) {
	units := utf16.Encode([]rune(s))
	n := 0
	for _, c := range units {
		switch {
		case c >= 0x0001 && c <= 0x007f:
			n++
		case c <= 0x07ff:
			n += 2
		default:
			n += 3
		}
	}
	if n > 0xffff {
		return dst, ErrStringTooLong
	}
	dst = append(dst, byte(n>>8), byte(n))
	for _, c := range units {
		switch {
		case c >= 0x0001 && c <= 0x007f:
			dst = append(dst, byte(c))
		case c <= 0x07ff:
			dst = append(dst,
				byte(0xc0|(c>>6)&0x1f),
				byte(0x80|c&0x3f))
		default:
			dst = append(dst,
				byte(0xe0|(c>>12)&0x0f),
				byte(0x80|(c>>6)&0x3f),
				byte(0x80|c&0x3f))
		}
	}
	return dst, nil
}

// decodeModifiedUTF8 parses a u16-length-prefixed modified UTF-8 block that
// must fill b exactly.
func decodeModifiedUTF8(b []byte) (string, error) {
	if len(b) < 2 {
		return "", ErrMalformedString
	}
	n := int(b[0])<<8 | int(b[1])
	b = b[2:]
	if n != len(b) {
		return "", ErrMalformedString
	}
	units := make([]uint16, 0, n)
	for i := 0; i < n; {
		c := b[i]
		switch {
		case c&0x80 == 0:
			units = append(units, uint16(c))
			i++
		case c&0xe0 == 0xc0:
			if i+1 >= n || b[i+1]&0xc0 != 0x80 {
				return "", ErrMalformedString
			}
			units = append(units, uint16(c&0x1f)<<6|uint16(b[i+1]&0x3f))
			i += 2
		case c&0xf0 == 0xe0:
			if i+2 >= n || b[i+1]&0xc0 != 0x80 || b[i+2]&0xc0 != 0x80 {
				return "", ErrMalformedString
			}
			units = append(units,
				uint16(c&0x0f)<<12|uint16(b[i+1]&0x3f)<<6|uint16(b[i+2]&0x3f))
			i += 3
		default:
			return "", ErrMalformedString
		}
	}
	return string(utf16.Decode(units)), nil
}
