package uni

import "encoding/binary"

// CRC32 implements the UNI message checksum: a table-driven reflected
// CRC-32 (polynomial 0xEDB88320) seeded with 0 and without a final xor.
//
// NOTE: the table matches ISO-3309/zlib but the seed and final value do
// not, so hash/crc32 cannot be used here.
func CRC32(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = crc32Table[(crc^uint32(b))&0xFF] ^ (crc >> 8)
	}
	return crc
}

// AppendCRC appends the little-endian CRC of data to data.
func AppendCRC(data []byte) []byte {
	return binary.LittleEndian.AppendUint32(data, CRC32(data))
}

// IsValidChecksum reports whether the trailing 4 bytes of a complete
// message match the CRC of the bytes before them.
func IsValidChecksum(message []byte) bool {
	if len(message) < CRCLen {
		return false
	}
	n := len(message) - CRCLen
	return binary.LittleEndian.Uint32(message[n:]) == CRC32(message[:n])
}

var crc32Table = func() [256]uint32 {
	var table [256]uint32
	for i := 0; i < 256; i++ {
		crc := uint32(i)
		for bit := 0; bit < 8; bit++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xEDB88320
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}()
