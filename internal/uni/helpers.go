package uni

import (
	"fmt"
	"strconv"
	"strings"
)

// Escape renders every byte as \xNN, e.g. b'\x73\x00'.
func Escape(b []byte) string {
	var sb strings.Builder
	sb.Grow(3 + 4*len(b))
	sb.WriteString("b'")
	for _, c := range b {
		fmt.Fprintf(&sb, `\x%02x`, c)
	}
	sb.WriteByte('\'')
	return sb.String()
}

// GetBits returns the value of the masked bits in a bitfield of up to 8
// bytes, read most significant byte first.
//
//	GetBits([]byte{0x89}, 0b11000000) == 2
func GetBits(bitfield []byte, mask uint64) uint64 {
	if mask == 0 {
		return 0
	}
	var v uint64
	for _, b := range bitfield {
		v = v<<8 | uint64(b)
	}
	shift := 0
	for mask&1 == 0 {
		mask >>= 1
		shift++
	}
	return (v >> shift) & mask
}

// AttrName strips group indices from an attribute name: svid_06 -> svid.
func AttrName(attr string) string {
	name, _ := splitIndex(attr)
	return name
}

// AttrIndex returns the group indices of an attribute name:
// svid_06 -> [6], gsid_03_04 -> [3 4], tow -> nil.
func AttrIndex(attr string) []int {
	_, idx := splitIndex(attr)
	return idx
}

// splitIndex peels trailing _NN segments off a name. Attribute names may
// themselves contain underscores, so only trailing numeric segments count.
func splitIndex(attr string) (string, []int) {
	parts := strings.Split(attr, "_")
	end := len(parts)
	for end > 1 {
		if _, err := strconv.Atoi(parts[end-1]); err != nil {
			break
		}
		end--
	}
	if end == len(parts) {
		return attr, nil
	}
	idx := make([]int, 0, len(parts)-end)
	for _, p := range parts[end:] {
		n, _ := strconv.Atoi(p)
		idx = append(idx, n)
	}
	return strings.Join(parts[:end], "_"), idx
}

// suffixed appends one _NN segment per active group level, skipping zero
// indices.
func suffixed(name string, index []int) string {
	if len(index) == 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	for _, i := range index {
		if i > 0 {
			fmt.Fprintf(&sb, "_%02d", i)
		}
	}
	return sb.String()
}
