package onewire

// CRC8 computes the Dallas/Maxim CRC-8 (x^8 + x^5 + x^4 + 1, reflected 0x8C,
// initial value 0). Running it over data followed by its CRC yields 0.
func CRC8(data []byte) uint8 {
	var crc uint8
	for _, b := range data {
		for i := 0; i < 8; i++ {
			mix := (crc ^ b) & 0x01
			crc >>= 1
			if mix != 0 {
				crc ^= 0x8C
			}
			b >>= 1
		}
	}
	return crc
}
