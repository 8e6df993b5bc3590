package conv

// Itoa writes base-10 representation of n into buf and returns the used slice.
// buf should be length >= 20 for int64. Negative numbers supported.
// No allocations; no fmt/strconv dependency.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	if len(buf) < 2 {
		return buf[:0]
	}
	out := Utoa(buf[1:], uint64(-n))
	if len(out) == 0 {
		return buf[:0]
	}
	// out ends at len(buf), so the sign slot directly precedes it.
	i := len(buf) - len(out) - 1
	buf[i] = '-'
	return buf[i:]
}
