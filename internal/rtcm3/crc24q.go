package rtcm3

// CRC24Q implements the Qualcomm CRC-24 (polynomial 0x1864CFB, seed 0)
// carried at the end of every RTCM 3 frame.
func CRC24Q(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = ((crc << 8) & 0xFFFFFF) ^ crc24qTable[byte(crc>>16)^b]
	}
	return crc
}

var crc24qTable = func() [256]uint32 {
	var table [256]uint32
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 16
		for bit := 0; bit < 8; bit++ {
			if (crc & 0x800000) != 0 {
				crc = (crc << 1) ^ 0x1864CFB
			} else {
				crc <<= 1
			}
		}
		table[i] = crc & 0xFFFFFF
	}
	return table
}()
