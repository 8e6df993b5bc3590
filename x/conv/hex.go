package conv

const hexd = "0123456789ABCDEF"

// Hex8 writes b as two uppercase hex digits without 0x.
func Hex8(buf []byte, b byte) []byte {
	if len(buf) < 2 {
		return buf[:0]
	}
	i := len(buf) - 2
	buf[i] = hexd[b>>4]
	buf[i+1] = hexd[b&0xF]
	return buf[i:]
}

// AppendHex appends bytes as space separated hex pairs, e.g. "28 FF 0C".
func AppendHex(dst []byte, bs []byte) []byte {
	var pair [2]byte
	for i, b := range bs {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = append(dst, Hex8(pair[:], b)...)
	}
	return dst
}
